package engine

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// isEmptyAnswer treats nil, "" and empty lists as unanswered.
func isEmptyAnswer(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	}
	return false
}

// asList returns the answer as a list of strings, and false when the answer
// is not a list at all.
func asList(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return x, true
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := asScalarString(item)
			if !ok {
				continue
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// asScalarString renders strings and numbers as text; lists and objects fail.
func asScalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

// parseNumber mirrors parse-as-float: surrounding whitespace is ignored and
// anything else that is not a finite number fails.
func parseNumber(v any) (float64, bool) {
	f, ok := rawNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func rawNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func toNumber(v any) (float64, bool) {
	switch v.(type) {
	case float64, float32, int, int64, json.Number:
		return parseNumber(v)
	}
	return 0, false
}

// strictEqual compares like-typed scalars. Lists and objects never compare
// equal, and a string never equals a number.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if an, ok := toNumber(a); ok {
		bn, ok := toNumber(b)
		return ok && an == bn
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}
