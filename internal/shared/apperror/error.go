package apperror

import "fmt"

// AppError is a client-facing failure. Feature packages declare them as
// package-level sentinels and compare with errors.Is.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error

	base *AppError
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is e or the sentinel e was derived from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t == nil {
		return false
	}
	return e == t || (e.base != nil && e.base == t)
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// WithCause returns a copy of the sentinel carrying cause for logs. The copy
// still matches the sentinel under errors.Is and renders the same to clients.
func (e *AppError) WithCause(cause error) *AppError {
	if cause == nil {
		return e
	}
	base := e
	if e.base != nil {
		base = e.base
	}
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		HTTPStatus: e.HTTPStatus,
		Err:        cause,
		base:       base,
	}
}
