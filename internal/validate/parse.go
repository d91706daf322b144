package validate

import (
	"strconv"
	"strings"
)

// ParseBool parses "true"/"false" style query values.
func ParseBool(raw string) (any, error) {
	return strconv.ParseBool(strings.TrimSpace(raw))
}

// ParseNumber parses decimal query values.
func ParseNumber(raw string) (any, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

// ParseList splits a comma separated value into a list, dropping empty items.
func ParseList(raw string) (any, error) {
	list := make([]any, 0)

	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}

	return list, nil
}
