package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags an error so callers can distinguish user-actionable failures
// from system failures without string matching.
type Kind int

const (
	KindSystem Kind = iota
	KindNotFound
	KindInsufficientStock
	KindInvalidState
	KindDuplicateOrder
	KindGatewayFailure
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func InsufficientStockf(format string, args ...any) error {
	return &Error{Kind: KindInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(msg string) error {
	return &Error{Kind: KindInvalidState, Message: msg}
}

func DuplicateOrder(msg string) error {
	return &Error{Kind: KindDuplicateOrder, Message: msg}
}

// GatewayFailure wraps a provider-rejected response. msg should carry the
// provider's own message when one exists, never raw transport detail.
func GatewayFailure(msg string, err error) error {
	return &Error{Kind: KindGatewayFailure, Message: msg, Err: err}
}

func System(msg string, err error) error {
	return &Error{Kind: KindSystem, Message: msg, Err: err}
}

// KindOf returns the tagged kind, or KindSystem for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSystem
}

// UserMessage is the text safe to show to the caller. System errors get a
// generic message; the original goes to the logs only.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindSystem {
		return e.Message
	}
	return "something went wrong, please contact support"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientStock, KindDuplicateOrder:
		return http.StatusConflict
	case KindInvalidState:
		return http.StatusUnprocessableEntity
	case KindGatewayFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
