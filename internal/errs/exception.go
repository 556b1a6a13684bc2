package errs

import (
	"errors"
	"fmt"
)

// Exception is a domain error whose message is safe to show an admin user.
//
// Code is optional; zero means "no code". It mirrors the few places the
// storefront needs to branch on why an operation failed.
type Exception struct {
	Code    int
	Message string

	// Err is the underlying cause, if any. It is never shown to users.
	Err error
}

// NewException builds an Exception with a formatted message and no code.
func NewException(format string, args ...any) *Exception {
	return &Exception{Message: fmt.Sprintf(format, args...)}
}

// NewCodedException builds an Exception carrying code.
func NewCodedException(code int, format string, args ...any) *Exception {
	return &Exception{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Exception) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exception code %d", e.Code)
	}
	return e.Message
}

func (e *Exception) Unwrap() error {
	return e.Err
}

// Wrap returns a copy of the Exception carrying cause; e is left untouched.
func (e *Exception) Wrap(cause error) *Exception {
	c := *e
	c.Err = cause
	return &c
}

// CodeOf returns the code of the first Exception in err's chain, or 0.
func CodeOf(err error) int {
	var ex *Exception
	if errors.As(err, &ex) {
		return ex.Code
	}
	return 0
}

// UserMessage returns the message to flash for err.
//
// Exceptions and HTTP errors marked Override carry messages written for
// users; anything else is replaced by fallback so driver or network
// details do not leak.
func UserMessage(err error, fallback string) string {
	var ex *Exception
	if errors.As(err, &ex) && ex.Message != "" {
		return ex.Message
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Override && httpErr.Message != "" {
		return httpErr.Message
	}
	return fallback
}
