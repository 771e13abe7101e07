package util

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return e.msg + ": " + e.orig.Error()
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

// Is reports whether target is the code this error was classified with.
func (e *Error) Is(target error) bool {
	return e.code != nil && e.code == target
}

// WrapErrorf classifies orig with one of the sentinel codes below. orig may be nil.
func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

// Message returns the message without the wrapped cause.
func (e *Error) Message() string {
	return e.msg
}

var (
	ErrInternalServerError = errors.New("internal server error")
	ErrNotFound            = errors.New("your requested item is not found")
	ErrBadParamInput       = errors.New("given param is not valid")
	ErrConfiguration       = errors.New("invalid configuration")
	ErrStorageCorruption   = errors.New("storage cannot be opened")
	ErrRemoteProtocol      = errors.New("remote memory returned an error")
	ErrUnauthorized        = errors.New("session is not authenticated")
	ErrClosed              = errors.New("memory is closed")
)

var MessageInternalServerError string = "internal server error"

// CodeOf returns the sentinel code carried by err, or ErrInternalServerError.
func CodeOf(err error) error {
	var e *Error
	if errors.As(err, &e) && e.code != nil {
		return e.code
	}
	for _, code := range []error{ErrNotFound, ErrBadParamInput, ErrConfiguration,
		ErrStorageCorruption, ErrRemoteProtocol, ErrUnauthorized, ErrClosed} {
		if errors.Is(err, code) {
			return code
		}
	}
	return ErrInternalServerError
}
