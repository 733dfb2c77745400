package service

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")        // 401
	ErrForbidden          = errors.New("forbidden")           // 403
	ErrInvalidCredentials = errors.New("invalid credentials") // 401
	ErrNotFound           = errors.New("not found")           // 404
	ErrValidation         = errors.New("validation")          // 400
	ErrOperationFailed    = errors.New("operation failed")    // 500
)

const (
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeInvalidCredentials = "invalid_credentials"
	CodeNotFound           = "not_found"
	CodeValidation         = "validation"
	CodeOperationFailed    = "operation_failed"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrUnauthorized, CodeUnauthorized},
	{ErrForbidden, CodeForbidden},
	{ErrInvalidCredentials, CodeInvalidCredentials},
	{ErrNotFound, CodeNotFound},
	{ErrValidation, CodeValidation},
	{ErrOperationFailed, CodeOperationFailed},
}

// Classify maps err onto the stable code used on the wire.
func Classify(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeOperationFailed
}

// FromCode is the inverse of Classify.
func FromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return ErrOperationFailed
}

// errNoChange aborts a collection update without writing.
var errNoChange = errors.New("no change")
