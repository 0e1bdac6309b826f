package accounting

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LLM output is decoded into map[string]any. The helpers below turn its loosely
// typed values into the document's types: numeric strings become numbers and
// placeholder strings become null.

func isNullString(s string) bool {
	switch strings.ToLower(s) {
	case "", "n/a", "na", "null", "none", "-":
		return true
	}
	return false
}

func floatPtr(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return &t
	case float32:
		f := float64(t)
		return &f
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		return parseNumber(t)
	default:
		return nil
	}
}

func floatOr(v any, def float64) float64 {
	if f := floatPtr(v); f != nil {
		return *f
	}
	return def
}

func intPtr(v any) *int {
	f := floatPtr(v)
	if f == nil {
		return nil
	}
	i := int(math.Round(*f))
	return &i
}

func intOr(v any, def int) int {
	if i := intPtr(v); i != nil {
		return *i
	}
	return def
}

// parseNumber accepts "123.45", "123,45", "1.234,56", "1,234.56", "₺12,50",
// "%20" and similar renderings.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if isNullString(s) {
		return nil
	}
	s = strings.NewReplacer("₺", "", "TL", "", "TRY", "", "%", "", " ", "", " ", "").Replace(s)
	if s == "" {
		return nil
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func stringPtr(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(t)
		if isNullString(s) {
			return nil
		}
		return &s
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	case json.Number:
		s := t.String()
		return &s
	case int:
		s := strconv.Itoa(t)
		return &s
	default:
		return nil
	}
}

func stringOr(v any, def string) string {
	if s := stringPtr(v); s != nil {
		return *s
	}
	return def
}

func objectAt(m map[string]any, key string) (map[string]any, bool) {
	if m == nil {
		return nil, false
	}
	o, ok := m[key].(map[string]any)
	return o, ok
}

func listAt(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	l, _ := m[key].([]any)
	return l
}

func has(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	_, ok := m[key]
	return ok
}

// numberOrDefault returns the coerced number when the key is present, def when
// it is absent, and nil when it is explicitly null.
func numberOrDefault(m map[string]any, key string, def float64) *float64 {
	v, ok := m[key]
	if !ok {
		return &def
	}
	return floatPtr(v)
}

func intOrDefault(m map[string]any, key string, def int) *int {
	v, ok := m[key]
	if !ok {
		return &def
	}
	return intPtr(v)
}

func stringList(v any) []string {
	out := []string{}
	l, ok := v.([]any)
	if !ok {
		return out
	}
	for _, e := range l {
		if s := stringPtr(e); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
