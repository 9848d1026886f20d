// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package jsonify

import "fmt"

// An ErrKind classifies the failures reported by this module and its
// subpackages.
type ErrKind byte

// Constants defining the valid ErrKind values.
const (
	ErrType        ErrKind = 1 + iota // kind mismatch on a read-only accessor
	ErrRange                          // array index out of bounds
	ErrBuilder                        // builder handle used out of protocol
	ErrReader                         // reader handle used out of protocol
	ErrDeserialize                    // input does not parse
)

var errKindStr = [...]string{
	ErrType:        "type",
	ErrRange:       "range",
	ErrBuilder:     "builder",
	ErrReader:      "reader",
	ErrDeserialize: "deserialize",
}

func (k ErrKind) String() string {
	if k == 0 || int(k) >= len(errKindStr) {
		return "invalid error kind"
	}
	return errKindStr[k]
}

// Error is the concrete type of all structured errors reported by this
// module. Deserialize errors carry the byte offset in the input at which the
// problem was detected.
type Error struct {
	Kind    ErrKind
	Offset  int // byte offset in the input; meaningful for ErrDeserialize only
	Message string

	err error
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	if e.Kind == ErrDeserialize {
		return fmt.Sprintf("%s: %s (offset %d)", e.Kind, e.Message, e.Offset)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap supports error wrapping.
func (e *Error) Unwrap() error { return e.err }

// Errorf constructs an *Error of the given kind with a formatted message.
// A %w verb wraps its operand as the cause.
func Errorf(kind ErrKind, msg string, args ...any) *Error {
	err := fmt.Errorf(msg, args...)
	return &Error{Kind: kind, Message: err.Error(), err: unwrapOnce(err)}
}

func unwrapOnce(err error) error {
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return u.Unwrap()
	}
	return nil
}
