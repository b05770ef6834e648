package data

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ToNumeric coerces a cell value into a number when it looks like one.
// Strings may carry thousands separators (`1,234.50`). Values that do not
// parse come back unchanged, so free text survives coercion. Empty strings
// normalize to nil.
func ToNumeric(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case int, int32, int64, float32, float64:
		return v
	case decimal.Decimal:
		f, _ := t.Float64()
		return f
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		if cleaned == "" {
			return nil
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return v
		}
		if d.IsInteger() {
			return d.IntPart()
		}
		f, _ := d.Float64()
		return f
	default:
		return v
	}
}

// AsDecimal parses a value into a decimal for exact accumulation; ok is
// false for anything non-numeric.
func AsDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt32(t), true
	case int64:
		return decimal.NewFromInt(t), true
	case float32:
		return decimal.NewFromFloat32(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	case decimal.Decimal:
		return t, true
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		if cleaned == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// IsEmptyValue reports whether a value counts as absent for fallback
// purposes: nil, or a blank string.
func IsEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
