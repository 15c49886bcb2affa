package auction

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an expected rejection. Code is the HTTP status the API answers
// with and Details lets the caller react, e.g. top up and bid again.
type Error struct {
	Code    int
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}

	return nil, false
}

func badRequest(msg string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: msg}
}

func notFound(msg string) *Error {
	return &Error{Code: http.StatusNotFound, Message: msg}
}

func conflict(msg string) *Error {
	return &Error{Code: http.StatusConflict, Message: msg}
}

// errBidRecordedConcurrently means another call with the same idempotency key
// stored its bid first.
var errBidRecordedConcurrently = errors.New("bid recorded concurrently")
