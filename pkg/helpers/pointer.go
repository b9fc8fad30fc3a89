package helpers

// Ptr returns a pointer to val. Used to populate optional bound fields.
func Ptr[T any](val T) *T {
	return &val
}

// ValueOr dereferences val, falling back to the given default when nil.
func ValueOr[T any](val *T, fallback T) T {
	if val == nil {
		return fallback
	}
	return *val
}
