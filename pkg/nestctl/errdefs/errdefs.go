package errdefs

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrAuthFlow          = errors.New("authorization flow failed")
	ErrPermission        = errors.New("permission error")
	ErrIO                = errors.New("i/o error")
	ErrNetwork           = errors.New("network error")
	ErrDeviceNotFound    = errors.New("device not found")
	ErrAuth              = errors.New("authorization rejected")
	ErrAmbiguousSetpoint = errors.New("ambiguous setpoint")
	ErrInvalidMode       = errors.New("invalid mode")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// Error carries a kind sentinel, a human readable message and an optional cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind with a formatted message.
func New(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of the given kind around err. A nil err yields nil.
func Wrap(kind error, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}
