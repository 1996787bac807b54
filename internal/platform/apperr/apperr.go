// Package apperr defines the error taxonomy shared by the HTTP layer and
// the domain services. Every error that can reach a client carries a
// stable machine code and a bilingual message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shifa-health/shifa/internal/platform/i18n"
)

// Code classifies an error for clients and for HTTP status mapping.
type Code string

const (
	// CodeFormat marks malformed field values, such as a time string
	// that is not HH:MM.
	CodeFormat Code = "format_error"
	// CodeLogic marks values that parse but contradict each other,
	// such as a closing time at or before the opening time.
	CodeLogic Code = "logic_error"
	// CodeContainment marks a child schedule that escapes its parent's
	// working hours.
	CodeContainment Code = "containment_error"
	// CodeNotFound marks a missing entity.
	CodeNotFound Code = "not_found"
	// CodeBadRequest marks a structurally invalid request, such as an
	// unknown entity type.
	CodeBadRequest Code = "bad_request"
	// CodeTransaction marks a persistence failure after validation
	// passed. The request may be retried unchanged.
	CodeTransaction Code = "transaction_error"
)

// Error is a classified, client-presentable error.
type Error struct {
	Code    Code         `json:"code"`
	Message i18n.Message `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message.En, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message.En)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with the given code and message.
func New(code Code, msg i18n.Message) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying cause. The cause is
// logged server-side and never serialized to clients.
func Wrap(code Code, msg i18n.Message, cause error) *Error {
	return &Error{Code: code, Message: msg, cause: cause}
}

// NotFound builds a not-found error for a named entity kind and id.
func NotFound(kind, id string) *Error {
	return New(CodeNotFound, i18n.Msgf(
		"%[1]s غير موجود: %[2]s",
		"%[1]s not found: %[2]s",
		kind, id,
	))
}

// CodeOf extracts the Code from err, unwrapping as needed. Unclassified
// errors report CodeTransaction so they map to a retryable 500.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeTransaction
}

// MessageOf extracts the bilingual message from err, or a generic
// internal-error pair when err is unclassified.
func MessageOf(err error) i18n.Message {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return i18n.Message{
		Ar: "حدث خطأ داخلي، يرجى المحاولة مرة أخرى",
		En: "an internal error occurred, please retry",
	}
}

// HTTPStatus maps an error code to its HTTP response status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeFormat, CodeLogic, CodeContainment:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
