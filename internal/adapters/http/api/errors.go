package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("internal error")
)

// Error ties a failure to the handler operation that produced it.
// Kind is one of the sentinels above and is what errors.Is matches.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Kind != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
}

// Message is the text safe to show a client: the kind, plus the cause for
// bad requests. The operation name stays in logs.
func (e *Error) Message() string {
	kind := e.Kind
	if kind == nil {
		kind = ErrInternal
	}
	if errors.Is(kind, ErrBadRequest) && e.Err != nil {
		return fmt.Sprintf("%v: %v", kind, e.Err)
	}
	return kind.Error()
}

// clientMessage returns the client-facing text for err, or fallback when
// err carries no kind.
func clientMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return fallback
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind returns an error of kind raised by op with an underlying cause.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap annotates err with op and classifies it as internal.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: ErrInternal, Err: err}
}
