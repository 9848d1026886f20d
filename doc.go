// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

// Package jsonify implements a streaming JSON codec.
//
// This package is the token layer: a Serializer that emits JSON tokens to an
// io.Writer, and a Deserializer that pulls JSON tokens from an io.Reader.
// The interesting interaction models live in the subpackages built on top of
// it:
//
//   - builder produces a document incrementally through short-lived handles
//     to not-yet-written positions; handle lifetimes decide when brackets
//     close and where null defaults are injected.
//   - reader consumes a document incrementally through short-lived handles
//     that share a single parsing cursor; advancing a handle discards the
//     unread children of deeper handles.
//   - dom is an owning, mutable value tree with lenient reads and coercing
//     writes, for one-shot serialization and deserialization.
//   - view is an immutable document stored as a flat entry arena plus one
//     shared string blob, for repeated traversal without re-parsing.
//   - pointer parses, emits, and resolves RFC 6901 JSON pointers against
//     dom and view values.
//
// # Serializing
//
// The Serializer type exposes the token-emission operations used by the
// builder and the one-shot writers: Begin and End bracket composites,
// ObjectKey and ArrayValue place separators, and Primitive emits leaf
// values. The Any method writes one complete value of any JSON-like shape,
// including implementations of the Encoder interface:
//
//	s := jsonify.NewSerializer(w, "  ")
//	s.Any(map[string]any{"a": 1})
//	s.Flush()
//
// # Deserializing
//
// The Deserializer type is a pull parser. OpenNext classifies the upcoming
// value, the Read methods consume it, and Done verifies that no trailing
// garbage follows:
//
//	d := jsonify.NewDeserializer(r)
//	kind, err := d.OpenNext()
//	...
//	err = d.Done()
//
// Deserialize failures have concrete type *Error with kind ErrDeserialize
// and carry the byte offset of the offending input.
//
// # Errors
//
// All structured failures of this module share the *Error type, classified
// by an ErrKind. Data-dependent failures are returned from the operation
// that caused them; using a builder or reader handle out of protocol is a
// programmer error and panics with an *Error of kind ErrBuilder or
// ErrReader. The one exception is opening a stale reader composite, which
// returns an *Error of kind ErrReader instead.
package jsonify
