// Package service contains the business logic.
//
// It sits between the handler and repository layers. Admin actions
// follow one shape: apply the change, record the outcome as a flash
// message on the admin session and answer with the page to go to next.
// Failures the admin can act on become error messages, not HTTP errors.
package service

import (
	"time"

	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/deppfellow/go-commerce/internal/sqlerr"
)

// userMessage returns the text to flash for err: the error's own message
// when it was written for users, else the mapped database message, else
// fallback.
func userMessage(err error, fallback string) string {
	if msg := errs.UserMessage(err, ""); msg != "" {
		return msg
	}
	return errs.UserMessage(sqlerr.HandleError(err), fallback)
}

// clock returns the current time; services replace it in tests.
type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
