// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the HTTP layer can pick a status code and the
// client gets a stable error name.
type Kind string

const (
	KindNotFound        Kind = "NotFound"
	KindDuplicateName   Kind = "DuplicateName"
	KindDuplicateKey    Kind = "DuplicateKey"
	KindAlreadyVoted    Kind = "AlreadyVoted"
	KindUnauthenticated Kind = "Unauthenticated"
	KindNoActiveSession Kind = "NoActiveSession"
	KindInvalidInput    Kind = "InvalidInput"
	KindInternal        Kind = "Internal"
)

// Sentinels for errors.Is checks. Any *Error of the same kind matches.
var (
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrDuplicateName   = &Error{Kind: KindDuplicateName, Message: "duplicate name"}
	ErrDuplicateKey    = &Error{Kind: KindDuplicateKey, Message: "duplicate key"}
	ErrAlreadyVoted    = &Error{Kind: KindAlreadyVoted, Message: "already voted"}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "voter not verified"}
	ErrNoActiveSession = &Error{Kind: KindNoActiveSession, Message: "no active election session"}
	ErrInvalidInput    = &Error{Kind: KindInvalidInput, Message: "invalid input"}
)

// Error is a classified application error. Message is safe to show to clients;
// Err holds the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New creates a classified error with a client-facing message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err, keeping it as the cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message for err. Unclassified errors
// get a generic message so storage details never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal error"
}
