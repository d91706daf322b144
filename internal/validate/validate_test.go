package validate

import (
	"context"
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var serverName = regexp.MustCompile(`^[a-z0-9-]+$`)

// heartbeatSchema mirrors the heartbeat ingestion body used by the API.
func heartbeatSchema() Schema {
	return Schema{
		{Name: "server", Required: true, Types: []Constraint{String{Regex: serverName}}},
		{Name: "isPrimary", Types: []Constraint{Bool{}}},
		{Name: "tone", Types: []Constraint{Number{Exact: []float64{1, 2, 3}}, Null{}}},
		{Name: "talkgroups", Types: []Constraint{Array{Regex: regexp.MustCompile(`^\d+$`)}}},
	}
}

// TestCheck_RoundTrip ensures valid payloads come back unchanged with no errors.
func TestCheck_RoundTrip(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"server":     "saguache-1",
		"isPrimary":  true,
		"tone":       float64(2),
		"talkgroups": []any{"8198", "8332"},
	}

	got, bad := Check(context.Background(), raw, heartbeatSchema())
	require.Empty(t, bad)
	require.Equal(t, raw, got)
}

// TestCheck_WrongType rejects a string where only a number is allowed.
func TestCheck_WrongType(t *testing.T) {
	t.Parallel()

	schema := Schema{{Name: "count", Required: true, Types: []Constraint{Number{}}}}

	got, bad := Check(context.Background(), map[string]any{"count": "3"}, schema)
	require.Nil(t, got)
	require.Equal(t, []string{"count"}, bad)
}

// TestCheck_RequiredOmission covers required and optional absent fields.
func TestCheck_RequiredOmission(t *testing.T) {
	t.Parallel()

	// Required missing.
	got, bad := Check(context.Background(), map[string]any{"isPrimary": false}, heartbeatSchema())
	require.Nil(t, got)
	require.Equal(t, []string{"server"}, bad)

	// Optional missing: absent from the result, not a zero value.
	got, bad = Check(context.Background(), map[string]any{"server": "a"}, heartbeatSchema())
	require.Empty(t, bad)
	require.Len(t, got, 1)

	_, present := got["isPrimary"]
	require.False(t, present)
}

// TestCheck_NotAnObject fails every field for non-object payloads.
func TestCheck_NotAnObject(t *testing.T) {
	t.Parallel()

	names := heartbeatSchema().Names()

	for _, raw := range []any{nil, "server", float64(1), []any{"a"}, map[string]any(nil)} {
		got, bad := Check(context.Background(), raw, heartbeatSchema())
		require.Nil(t, got)
		require.Equal(t, names, bad)
	}
}

// TestCheck_ExactAndRegex requires both constraints to hold when both are set.
func TestCheck_ExactAndRegex(t *testing.T) {
	t.Parallel()

	schema := Schema{{
		Name:     "state",
		Required: true,
		Types: []Constraint{String{
			Regex: regexp.MustCompile(`^[A-Z]+$`),
			Exact: []string{"ALARM", "OK", "ok"},
		}},
	}}

	cases := map[string]bool{
		"ALARM":             true,
		"OK":                true,
		"ok":                false, // exact but not regex
		"INSUFFICIENT_DATA": false, // neither
		"PENDING":           false, // regex but not exact
	}

	for value, valid := range cases {
		_, bad := Check(context.Background(), map[string]any{"state": value}, schema)
		require.Equal(t, valid, len(bad) == 0, value)
	}
}

// TestCheck_Number covers NaN, infinity, regex on the decimal form, and exact values.
func TestCheck_Number(t *testing.T) {
	t.Parallel()

	schema := Schema{{
		Name:     "port",
		Required: true,
		Types:    []Constraint{Number{Regex: regexp.MustCompile(`^\d{4}$`)}},
	}}

	_, bad := Check(context.Background(), map[string]any{"port": float64(8080)}, schema)
	require.Empty(t, bad)

	_, bad = Check(context.Background(), map[string]any{"port": 80}, schema)
	require.Equal(t, []string{"port"}, bad)

	_, bad = Check(context.Background(), map[string]any{"port": math.NaN()}, schema)
	require.Equal(t, []string{"port"}, bad)

	_, bad = Check(context.Background(), map[string]any{"port": math.Inf(1)}, Schema{{Name: "port", Types: []Constraint{Number{}}}})
	require.Equal(t, []string{"port"}, bad)

	_, bad = Check(context.Background(), map[string]any{"port": json.Number("1234")}, schema)
	require.Empty(t, bad)
}

// TestCheck_BoolAndNull covers boolean exact values and explicit nulls.
func TestCheck_BoolAndNull(t *testing.T) {
	t.Parallel()

	schema := Schema{
		{Name: "enabled", Required: true, Types: []Constraint{Bool{Exact: []bool{true}}}},
		{Name: "tone", Types: []Constraint{Null{}}},
	}

	_, bad := Check(context.Background(), map[string]any{"enabled": true, "tone": nil}, schema)
	require.Empty(t, bad)

	_, bad = Check(context.Background(), map[string]any{"enabled": false, "tone": "x"}, schema)
	require.Equal(t, []string{"enabled", "tone"}, bad)

	// Null without a Null constraint is rejected.
	_, bad = Check(context.Background(), map[string]any{"enabled": nil}, schema)
	require.Equal(t, []string{"enabled"}, bad)
}

// TestCheck_ArrayElements checks regex and exact elementwise.
func TestCheck_ArrayElements(t *testing.T) {
	t.Parallel()

	schema := Schema{{
		Name:     "departments",
		Required: true,
		Types:    []Constraint{Array{Exact: []string{"crestone", "saguache", "1"}}},
	}}

	_, bad := Check(context.Background(), map[string]any{"departments": []any{"crestone", float64(1)}}, schema)
	require.Empty(t, bad)

	_, bad = Check(context.Background(), map[string]any{"departments": []any{"crestone", "baca"}}, schema)
	require.Equal(t, []string{"departments"}, bad)

	_, bad = Check(context.Background(), map[string]any{"departments": []any{}}, schema)
	require.Empty(t, bad)
}

// TestCheck_ParseQueryValues applies parsers to path and query strings.
func TestCheck_ParseQueryValues(t *testing.T) {
	t.Parallel()

	schema := Schema{
		{Name: "primary", Parse: ParseBool, Types: []Constraint{Bool{}}},
		{Name: "limit", Parse: ParseNumber, Types: []Constraint{Number{}}},
		{Name: "servers", Parse: ParseList, Types: []Constraint{Array{Regex: serverName}}},
	}

	query := url.Values{
		"primary": {"true"},
		"limit":   {"25"},
		"servers": {"a-1, b-2"},
	}

	got, bad := Check(context.Background(), query, schema)
	require.Empty(t, bad)
	require.Equal(t, true, got["primary"])
	require.InDelta(t, 25.0, got["limit"], 0)
	require.Equal(t, []any{"a-1", "b-2"}, got["servers"])

	// Parse errors invalidate the field.
	_, bad = Check(context.Background(), map[string]string{"primary": "maybe", "limit": "NaN"}, schema)
	require.Equal(t, []string{"primary", "limit"}, bad)
}

// TestDecode_InfiniteNumber reports only the infinite field.
func TestDecode_InfiniteNumber(t *testing.T) {
	t.Parallel()

	type listQuery struct {
		Primary *bool    `json:"primary"`
		Limit   *float64 `json:"limit"`
	}

	schema := Schema{
		{Name: "primary", Parse: ParseBool, Types: []Constraint{Bool{}}},
		{Name: "limit", Parse: ParseNumber, Types: []Constraint{Number{}}},
	}

	for _, raw := range []string{"Inf", "-Inf", "1e400"} {
		got, bad := Decode[listQuery](context.Background(), url.Values{"primary": {"true"}, "limit": {raw}}, schema)
		require.Nil(t, got, raw)
		require.Equal(t, []string{"limit"}, bad, raw)
	}
}

// TestDecode binds validated values into a typed struct.
func TestDecode(t *testing.T) {
	t.Parallel()

	type heartbeatBody struct {
		Server    string   `json:"server"`
		IsPrimary *bool    `json:"isPrimary"`
		Tone      *float64 `json:"tone"`
	}

	got, bad := Decode[heartbeatBody](context.Background(), map[string]any{
		"server":    "crestone-2",
		"isPrimary": false,
	}, heartbeatSchema())
	require.Empty(t, bad)
	require.Equal(t, "crestone-2", got.Server)
	require.NotNil(t, got.IsPrimary)
	require.False(t, *got.IsPrimary)
	require.Nil(t, got.Tone)

	got, bad = Decode[heartbeatBody](context.Background(), map[string]any{"server": "Bad Name"}, heartbeatSchema())
	require.Nil(t, got)
	require.Equal(t, []string{"server"}, bad)
}
