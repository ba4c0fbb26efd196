package utils

import (
	"strconv"
	"strings"
)

// ToBool coerces a decoded JSON claim value into a bool. Backend versions
// have emitted flags as booleans, numbers and strings.
func ToBool(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case float64:
		return value != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes":
			return true
		}
	}
	return false
}

// ToString coerces a decoded JSON claim value into a string. Numeric IDs are
// rendered without an exponent or trailing fraction.
func ToString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return ""
}
