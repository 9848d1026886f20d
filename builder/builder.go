// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

// Package builder implements a streaming JSON producer with a tree-shaped
// API over a forward-only token stream.
//
// A builder hands out short-lived handles to not-yet-written positions: a
// Value is exactly one pending value, an Object or Array is an open
// composite. Handle lifetimes, not an explicit tree, decide when brackets
// close: operating on a composite that is not the deepest open one first
// force-closes everything above it, and a pending value that was abandoned
// is emitted as null. The resulting output is well-formed JSON regardless
// of the order in which handles are used or dropped, provided the root
// composite is eventually closed.
//
// Using a handle that is closed or stale is a programmer error and panics
// with a *jsonify.Error of kind ErrBuilder. Write errors of the underlying
// sink are sticky and reported through Err on every handle.
package builder

import (
	"cmp"
	"io"

	"github.com/BjoernBoss/jsonify"
)

type hKind byte

const (
	hClosed hKind = iota
	hValue
	hArr
	hObj
)

// state is shared by every handle issued from one New call.
type state struct {
	s          *jsonify.Serializer
	active     []*handle // open composites, root at the bottom
	valueStamp uint64    // stamp of the most recently issued pending value
	awaiting   bool      // a pending value handle is outstanding
	done       bool
}

type handle struct {
	st    *state
	stamp uint64 // issue stamp, pending values only
	kind  hKind
}

// capture validates that h may operate and synchronizes the stream up to
// it: an outstanding pending value is abandoned as null, and every
// composite open above h is force-closed.
func (h *handle) capture() {
	st := h.st
	if st == nil || st.done || h.kind == hClosed ||
		(h.kind == hValue && (h.stamp != st.valueStamp || !st.awaiting)) {
		panic(jsonify.Errorf(jsonify.ErrBuilder, "builder handle is not in an active state"))
	}
	if h.kind == hValue {
		return
	}

	if st.awaiting {
		st.awaiting = false
		st.s.Primitive(nil)
	}
	for st.active[len(st.active)-1] != h {
		st.active[len(st.active)-1].close(true)
	}
}

// close retires h. Composites emit their closing bracket and pop off the
// active stack; the current pending value clears the awaiting flag and, if
// the close was unsolicited, becomes null. Once the last composite is
// popped the document is complete and the serializer is flushed.
func (h *handle) close(unsolicited bool) {
	st := h.st
	if h.kind != hValue {
		st.s.End(h.kind == hObj)
		st.active = st.active[:len(st.active)-1]
	} else if h.stamp == st.valueStamp && st.awaiting {
		st.awaiting = false
		if unsolicited {
			st.s.Primitive(nil)
		}
	}

	h.kind = hClosed
	if len(st.active) == 0 {
		st.s.Flush()
		st.done = true
	}
}

// open pushes a fresh composite onto the active stack and emits its
// opening bracket.
func (h *handle) open(obj bool) *handle {
	st := h.st
	kind := hArr
	if obj {
		kind = hObj
	}
	nh := &handle{st: st, kind: kind}
	st.active = append(st.active, nh)
	st.s.Begin(obj)
	return nh
}

// nextValue issues a fresh pending-value handle, invalidating all earlier
// ones.
func (st *state) nextValue() *handle {
	st.valueStamp++
	st.awaiting = true
	return &handle{st: st, kind: hValue, stamp: st.valueStamp}
}

func (h *handle) done() bool   { return h.st.done }
func (h *handle) closed() bool { return h.kind == hClosed }
func (h *handle) err() error   { return h.st.s.Err() }

// New starts building a document written to w and returns the handle for
// its single top-level value. The indent string selects pretty output as
// described at jsonify.NewSerializer.
func New(w io.Writer, indent string) *Value {
	st := &state{s: jsonify.NewSerializer(w, indent), awaiting: true}
	return &Value{h: &handle{st: st, kind: hValue}}
}

// A Value represents exactly one not-yet-written value. It is consumed by
// Set, SetJSON, Obj, or Arr; a Value that is instead abandoned is written
// as null when the builder next advances.
type Value struct{ h *handle }

// Done reports whether the document has been completed.
func (v *Value) Done() bool { return v.h.done() }

// Closed reports whether this handle has been consumed.
func (v *Value) Closed() bool { return v.h.closed() }

// Err returns the first write error of the underlying sink, or nil.
func (v *Value) Err() error { return v.h.err() }

// Set writes elem, which may have any shape accepted by the serializer's
// Any method, as this value and consumes the handle.
func (v *Value) Set(elem any) error {
	v.h.capture()
	st := v.h.st
	err := st.s.Any(elem)
	v.h.close(false)
	return cmp.Or(err, st.s.Err())
}

// SetJSON writes the raw text of an already-formed JSON value, unvalidated,
// as this value and consumes the handle.
func (v *Value) SetJSON(raw string) error {
	v.h.capture()
	st := v.h.st
	st.s.Insert(raw)
	v.h.close(false)
	return st.s.Err()
}

// Obj opens this value as an object and returns its handle, consuming v.
func (v *Value) Obj() *Object {
	v.h.capture()
	nh := v.h.open(true)
	v.h.close(false)
	return &Object{h: nh}
}

// Arr opens this value as an array and returns its handle, consuming v.
func (v *Value) Arr() *Array {
	v.h.capture()
	nh := v.h.open(false)
	v.h.close(false)
	return &Array{h: nh}
}

// An Object represents an open object. Add operations force-close any
// deeper open state first (see the package comment).
type Object struct{ h *handle }

// Done reports whether the document has been completed.
func (o *Object) Done() bool { return o.h.done() }

// Closed reports whether this handle has been closed.
func (o *Object) Closed() bool { return o.h.closed() }

// Err returns the first write error of the underlying sink, or nil.
func (o *Object) Err() error { return o.h.err() }

// Close emits the closing bracket. Open composites nested below this
// object are force-closed first.
func (o *Object) Close() error {
	o.h.capture()
	st := o.h.st
	o.h.close(false)
	return st.s.Err()
}

// AddVal emits the key and returns a handle for the member's pending value.
func (o *Object) AddVal(key string) *Value {
	o.h.capture()
	st := o.h.st
	st.s.ObjectKey(key)
	return &Value{h: st.nextValue()}
}

// AddObj emits the key and opens the member's value as an object.
func (o *Object) AddObj(key string) *Object {
	o.h.capture()
	o.h.st.s.ObjectKey(key)
	return &Object{h: o.h.open(true)}
}

// AddArr emits the key and opens the member's value as an array.
func (o *Object) AddArr(key string) *Array {
	o.h.capture()
	o.h.st.s.ObjectKey(key)
	return &Array{h: o.h.open(false)}
}

// Add emits the key and value of a member in one step.
func (o *Object) Add(key string, elem any) error {
	o.h.capture()
	st := o.h.st
	st.s.ObjectKey(key)
	err := st.s.Any(elem)
	return cmp.Or(err, st.s.Err())
}

// An Array represents an open array. Push operations force-close any
// deeper open state first (see the package comment).
type Array struct{ h *handle }

// Done reports whether the document has been completed.
func (a *Array) Done() bool { return a.h.done() }

// Closed reports whether this handle has been closed.
func (a *Array) Closed() bool { return a.h.closed() }

// Err returns the first write error of the underlying sink, or nil.
func (a *Array) Err() error { return a.h.err() }

// Close emits the closing bracket. Open composites nested below this array
// are force-closed first.
func (a *Array) Close() error {
	a.h.capture()
	st := a.h.st
	a.h.close(false)
	return st.s.Err()
}

// PushVal returns a handle for the next element's pending value.
func (a *Array) PushVal() *Value {
	a.h.capture()
	st := a.h.st
	st.s.ArrayValue()
	return &Value{h: st.nextValue()}
}

// PushObj opens the next element as an object.
func (a *Array) PushObj() *Object {
	a.h.capture()
	a.h.st.s.ArrayValue()
	return &Object{h: a.h.open(true)}
}

// PushArr opens the next element as an array.
func (a *Array) PushArr() *Array {
	a.h.capture()
	a.h.st.s.ArrayValue()
	return &Array{h: a.h.open(false)}
}

// Push emits the next element in one step.
func (a *Array) Push(elem any) error {
	a.h.capture()
	st := a.h.st
	st.s.ArrayValue()
	err := st.s.Any(elem)
	return cmp.Or(err, st.s.Err())
}
