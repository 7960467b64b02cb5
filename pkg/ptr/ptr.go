package ptr

// New creates and returns a pointer to the provided value.
func New[T any](v T) *T { return &v }

// Deref returns the value v points to, or the zero value when v is nil.
func Deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
