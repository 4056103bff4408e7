package condition

import (
	"math"
	"strconv"
)

// ParseInteger parses s as a base-10 integer. The parse is strict: s must be
// exactly the canonical rendering of the result, so "007", "+1", " 1", "-0"
// and out-of-range values are rejected.
func ParseInteger(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	if strconv.FormatInt(n, 10) != s {
		return 0, false
	}
	return n, true
}

// ParseBoolean accepts exactly "true" and "false".
func ParseBoolean(s string) (bool, bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// literal classifies a Go value as a constant. Strings that parse as an
// integer or boolean take that type.
func literal(op string, v any) (any, ValueType, error) {
	switch x := v.(type) {
	case int:
		return int64(x), TypeInteger, nil
	case int8:
		return int64(x), TypeInteger, nil
	case int16:
		return int64(x), TypeInteger, nil
	case int32:
		return int64(x), TypeInteger, nil
	case int64:
		return x, TypeInteger, nil
	case uint8:
		return int64(x), TypeInteger, nil
	case uint16:
		return int64(x), TypeInteger, nil
	case uint32:
		return int64(x), TypeInteger, nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, 0, invalidArgument(op, "integer %d overflows int64", x)
		}
		return int64(x), TypeInteger, nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, 0, invalidArgument(op, "integer %d overflows int64", x)
		}
		return int64(x), TypeInteger, nil
	case bool:
		return x, TypeBoolean, nil
	case string:
		if n, ok := ParseInteger(x); ok {
			return n, TypeInteger, nil
		}
		if b, ok := ParseBoolean(x); ok {
			return b, TypeBoolean, nil
		}
		return x, TypeString, nil
	case nil:
		return nil, 0, invalidArgument(op, "nil literal")
	default:
		return nil, 0, invalidArgument(op, "unsupported literal type %T", v)
	}
}
