package validate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"slices"
	"strconv"

	"github.com/cofrn/cofrn-monitor/internal/logger"
)

var (
	errMissing        = errors.New("required field is missing")
	errNotAllowedType = errors.New("value type is not allowed")
	errRegexMismatch  = errors.New("value does not match pattern")
	errNotExact       = errors.New("value is not one of the allowed values")
	errNaN            = errors.New("value is not a number")
	errInfinite       = errors.New("value is not finite")
	errParse          = errors.New("value cannot be parsed")
)

// Check validates raw against schema.
//
// On success it returns the validated values keyed by field name and an empty
// list; optional fields absent from raw are absent from the result. On failure
// it returns nil and every failed field name in schema order. A raw value that
// is not an object fails every field.
func Check(ctx context.Context, raw any, schema Schema) (map[string]any, []string) {
	object, ok := asObject(raw)
	if !ok {
		logger.DebugKV(ctx, "Payload is not an object", "kind", kindOf(raw).String())

		return nil, schema.Names()
	}

	var (
		result = make(map[string]any, len(schema))
		bad    []string
	)

	for _, field := range schema {
		value, err := field.validate(object)

		switch {
		case errors.Is(err, errSkip):
			continue
		case err != nil:
			logger.DebugKV(ctx, "Invalid field", "field", field.Name, "reason", err.Error())

			bad = append(bad, field.Name)
		default:
			result[field.Name] = value
		}
	}

	if len(bad) > 0 {
		return nil, bad
	}

	return result, []string{}
}

// Decode validates raw against schema and binds the result into a new T through
// its json tags.
func Decode[T any](ctx context.Context, raw any, schema Schema) (*T, []string) {
	values, bad := Check(ctx, raw, schema)
	if len(bad) > 0 {
		return nil, bad
	}

	data, err := json.Marshal(values)
	if err != nil {
		logger.ErrorKV(ctx, "Cannot encode validated payload", "error", err)

		return nil, schema.Names()
	}

	result := new(T)
	if err = json.Unmarshal(data, result); err != nil {
		logger.ErrorKV(ctx, "Cannot bind validated payload", "error", err)

		return nil, schema.Names()
	}

	return result, []string{}
}

// errSkip marks an optional field that is absent from the payload.
var errSkip = errors.New("skip")

func (f Field) validate(object map[string]any) (any, error) {
	value, present := object[f.Name]
	if !present {
		if f.Required {
			return nil, errMissing
		}

		return nil, errSkip
	}

	if s, isString := value.(string); isString && f.Parse != nil {
		parsed, err := f.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errParse, err)
		}

		value = parsed
	}

	if err := f.check(value); err != nil {
		return nil, err
	}

	return value, nil
}

func (f Field) check(value any) error {
	kind := kindOf(value)

	for _, constraint := range f.Types {
		if constraint.kind() != kind {
			continue
		}

		switch c := constraint.(type) {
		case String:
			return c.check(value.(string)) //nolint:forcetypeassert // Kind was checked above.
		case Number:
			n, _ := toFloat(value)
			return c.check(n)
		case Bool:
			return c.check(value.(bool)) //nolint:forcetypeassert // Kind was checked above.
		case Array:
			return c.check(value)
		case Null:
			return nil
		}
	}

	return fmt.Errorf("%w: %s", errNotAllowedType, kind)
}

func (c String) check(v string) error {
	if c.Regex != nil && !c.Regex.MatchString(v) {
		return fmt.Errorf("%w: %q", errRegexMismatch, v)
	}

	if len(c.Exact) > 0 && !slices.Contains(c.Exact, v) {
		return fmt.Errorf("%w: %q", errNotExact, v)
	}

	return nil
}

func (c Number) check(v float64) error {
	if math.IsNaN(v) {
		return errNaN
	}

	if math.IsInf(v, 0) {
		return errInfinite
	}

	if c.Regex != nil && !c.Regex.MatchString(formatNumber(v)) {
		return fmt.Errorf("%w: %s", errRegexMismatch, formatNumber(v))
	}

	if len(c.Exact) > 0 && !slices.Contains(c.Exact, v) {
		return fmt.Errorf("%w: %s", errNotExact, formatNumber(v))
	}

	return nil
}

func (c Bool) check(v bool) error {
	if c.Regex != nil && !c.Regex.MatchString(strconv.FormatBool(v)) {
		return fmt.Errorf("%w: %t", errRegexMismatch, v)
	}

	if len(c.Exact) > 0 && !slices.Contains(c.Exact, v) {
		return fmt.Errorf("%w: %t", errNotExact, v)
	}

	return nil
}

func (c Array) check(v any) error {
	list := reflect.ValueOf(v)

	for i := range list.Len() {
		element := stringify(list.Index(i).Interface())

		if c.Regex != nil && !c.Regex.MatchString(element) {
			return fmt.Errorf("%w: element %d %q", errRegexMismatch, i, element)
		}

		if len(c.Exact) > 0 && !slices.Contains(c.Exact, element) {
			return fmt.Errorf("%w: element %d %q", errNotExact, i, element)
		}
	}

	return nil
}

// asObject normalises the accepted payload shapes into a map.
func asObject(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, v != nil
	case map[string]string:
		if v == nil {
			return nil, false
		}

		object := make(map[string]any, len(v))
		for key, value := range v {
			object[key] = value
		}

		return object, true
	case url.Values:
		if v == nil {
			return nil, false
		}

		object := make(map[string]any, len(v))
		for key := range v {
			object[key] = v.Get(key)
		}

		return object, true
	default:
		return nil, false
	}
}

func kindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case bool:
		return KindBool
	}

	if _, ok := toFloat(v); ok {
		return KindNumber
	}

	switch reflect.ValueOf(v).Kind() { //nolint:exhaustive // Only lists matter here.
	case reflect.Slice, reflect.Array:
		return KindArray
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN(), true
		}

		return f, true
	default:
		return 0, false
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return "null"
	}

	if n, ok := toFloat(v); ok {
		return formatNumber(n)
	}

	return fmt.Sprint(v)
}
