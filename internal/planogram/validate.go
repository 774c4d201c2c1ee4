package planogram

// Validate reports whether value satisfies the required kind. The check is
// strict: the string "true" is not a boolean, the string "5" is not a
// number, and nil satisfies nothing. Numbers accept every numeric type the
// JSON decoder or Go callers can hand us; booleans accept only bool;
// objects accept only a map with string keys.
func Validate(value any, kind Kind) bool {
	if value == nil {
		return false
	}
	switch kind {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindNumber:
		return isNumber(value)
	case KindBoolean:
		_, ok := value.(bool)
		return ok
	case KindObject:
		_, ok := value.(map[string]any)
		return ok
	default:
		return false
	}
}

func isNumber(value any) bool {
	switch value.(type) {
	case float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}
