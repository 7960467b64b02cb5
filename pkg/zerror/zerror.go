package zerror

import "fmt"

// ZError is a status-coded application error. Handlers use the status to pick
// an HTTP response code without inspecting the underlying cause.
type ZError struct {
	parent error
	status Status
	code   string
	msg    string
}

// NewZError initializes a ZError instance.
//
// code example: PRODUCT_NOT_FOUND
func NewZError(parent error, status Status, code, msg string) ZError {
	return ZError{
		parent: parent,
		status: status,
		code:   code,
		msg:    msg,
	}
}

// Error returns the error message for the ZError.
func (e ZError) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("Code=%s, Msg=%s, Parent=(%v)", e.code, e.msg, e.parent)
	}
	return fmt.Sprintf("Code=%s, Msg=%s", e.code, e.msg)
}

// WrapParent attaches an underlying error to an existing predefined ZError.
func (e ZError) WrapParent(parent error) ZError {
	if parent == nil {
		return e
	}
	e.parent = parent
	return e
}

// Unwrap returns the underlying error for the ZError.
func (e *ZError) Unwrap() error {
	return e.parent
}

// Status returns the status of the ZError.
func (e ZError) Status() Status {
	return e.status
}

// Code returns the code of the ZError.
func (e ZError) Code() string {
	return e.code
}

// Msg returns the message of the ZError.
func (e ZError) Msg() string {
	return e.msg
}

func NewNotFound(code, msg string) ZError {
	return NewZError(nil, StatusNotFound, code, msg)
}

func NewBadRequest(code, msg string) ZError {
	return NewZError(nil, StatusBadRequest, code, msg)
}

func NewValidationFailed(code, msg string) ZError {
	return NewZError(nil, StatusValidationFailed, code, msg)
}

func NewInternalServerError(code, msg string) ZError {
	return NewZError(nil, StatusInternalServerError, code, msg)
}
