package remote

import (
	"fmt"
	"net/http"
)

// Client-side error codes; server codes are listed in pkg/api.
const (
	CodeNetwork = "network" // хранилище недоступно или соединение прервано
	CodeDecode  = "decode"  // ответ не удалось разобрать
	CodeEncode  = "encode"  // запрос не удалось сериализовать
)

// Error describes why a remote call did not succeed.
type Error struct {
	Code    string
	Message string
	Details string
	Hint    string
	Status  int // HTTP status, 0 for transport failures
}

// Error implements error.
func (e *Error) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Status == 0 {
		return fmt.Sprintf("remote %s: %s", e.Code, msg)
	}
	if e.Code == "" {
		return fmt.Sprintf("remote error (%d): %s", e.Status, msg)
	}
	return fmt.Sprintf("remote error (%d %s): %s", e.Status, e.Code, msg)
}

// Unavailable reports whether the store could not be reached at all.
func (e *Error) Unavailable() bool {
	return e.Code == CodeNetwork || e.Status >= 500
}

// Rejected reports whether the store refused the request data itself, so
// sending the same request again cannot succeed. Auth failures are not rejections.
func (e *Error) Rejected() bool {
	switch {
	case e.Code == CodeEncode:
		return true
	case e.Status == http.StatusBadRequest, e.Status == http.StatusConflict, e.Status == http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// Result is the outcome of a remote call: either Value or Err.
type Result[T any] struct {
	Value T
	Err   *Error
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// OK wraps a successful value.
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps an error.
func Fail[T any](err *Error) Result[T] {
	return Result[T]{Err: err}
}
