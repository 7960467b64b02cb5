package zerror

// Status classifies a ZError independently of any transport.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusBadRequest
	StatusNotFound
	StatusValidationFailed
	StatusInternalServerError
)
