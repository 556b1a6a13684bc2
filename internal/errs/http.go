package errs

import "strings"

// FieldError is a validation error attached to one request field.
//
//	{ "field": "rate", "error": "must not exceed 100" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType names a follow-up the client should perform.
type ActionType string

const (
	// ActionTypeRedirect asks the client to navigate to Action.Value.
	ActionTypeRedirect ActionType = "redirect"
)

// Action is an optional instruction sent along with an error, e.g. the
// admin page to go back to after a failed save.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the JSON error body of every failed API call.
//
// Override tells the global error handler the message was written for
// users and may be shown as is.
type HTTPError struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Status   int          `json:"status"`
	Override bool         `json:"override"`
	Errors   []FieldError `json:"errors"`
	Action   *Action      `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError regardless of its fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
		Action:   e.Action,
	}
}

// WithRedirect returns a copy of e carrying a redirect action.
func (e *HTTPError) WithRedirect(path string) *HTTPError {
	c := e.WithMessage(e.Message)
	c.Action = &Action{Type: ActionTypeRedirect, Message: e.Message, Value: path}
	return c
}

// MakeUpperCaseWithUnderscores turns status text into an error code:
// "Bad Request" -> "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
