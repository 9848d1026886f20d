// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

// Package reader implements a streaming JSON consumer with a tree-shaped
// API over a single parsing cursor.
//
// A reader hands out short-lived handles to positions of the document: a
// Value is one already-classified value (primitives are materialized
// immediately; objects and arrays are opened on demand), an Obj or Arr
// iterates an open composite. All handles share one cursor: advancing a
// handle first drains every composite opened below it, so skipped subtrees
// are discarded silently and the stream stays synchronized no matter which
// handles the caller ignores. Dropping handles never desynchronizes the
// stream; an unread remainder is consumed by whichever ancestor advances
// next, or by Close.
//
// Opening a composite through a stale Value, or advancing a composite that
// an ancestor has already drained past, is a protocol violation: the former
// reports an error of kind ErrReader, the latter panics with one. Parse
// errors are sticky: every handle becomes inert and reports the error
// through Err.
package reader

import (
	"io"
	"slices"

	"github.com/BjoernBoss/jsonify"
)

// state is shared by every handle issued from one New call.
type state struct {
	d      *jsonify.Deserializer
	active []*instance // open composites, root at the bottom
	stamp  uint64      // invalidates references to superseded positions
	err    error       // sticky deserialize error
}

// instance is the per-composite record: whether it is an object, whether
// its first child has been consumed, and the current child slot that is
// overwritten on each advance.
type instance struct {
	object bool
	opened bool
	live   bool // not yet claimed through Arr or Obj
	key    string
	cur    *Value
}

func (st *state) fail(err error) error {
	if st.err == nil {
		st.err = err
	}
	return st.err
}

// value classifies and consumes the upcoming value. Primitives are read
// inline; a composite is pushed onto the active stack and referenced by
// stamp.
func (st *state) value() (*Value, error) {
	kind, err := st.d.OpenNext()
	if err != nil {
		return nil, st.fail(err)
	}
	switch kind {
	case jsonify.Uint, jsonify.Int, jsonify.Real:
		num, err := st.d.ReadNumber()
		if err != nil {
			return nil, st.fail(err)
		}
		switch num.Kind() {
		case jsonify.Uint:
			return &Value{kind: jsonify.Uint, u: num.Uint()}, nil
		case jsonify.Int:
			return &Value{kind: jsonify.Int, i: num.Int()}, nil
		}
		return &Value{kind: jsonify.Real, f: num.Real()}, nil
	case jsonify.Bool:
		b, err := st.d.ReadBool()
		if err != nil {
			return nil, st.fail(err)
		}
		return &Value{kind: jsonify.Bool, b: b}, nil
	case jsonify.String:
		s, err := st.d.ReadString(false)
		if err != nil {
			return nil, st.fail(err)
		}
		return &Value{kind: jsonify.String, s: s}, nil
	case jsonify.Array, jsonify.Object:
		inst := &instance{object: kind == jsonify.Object, live: true}
		st.active = append(st.active, inst)
		st.stamp++
		return &Value{kind: kind, ref: &compRef{st: st, stamp: st.stamp}}, nil
	}
	if err := st.d.ReadNull(); err != nil {
		return nil, st.fail(err)
	}
	return &Value{kind: jsonify.Null}, nil
}

// advance consumes the next child of the deepest open composite, or its
// closing bracket, in which case the composite pops. When the last
// composite pops the input must be exhausted.
func (st *state) advance() (bool, error) {
	inst := st.active[len(st.active)-1]

	var closed bool
	var err error
	if inst.opened {
		closed, err = st.d.CloseElseSep(inst.object)
	} else {
		closed, err = st.d.IsEmpty(inst.object)
	}
	if err != nil {
		return false, st.fail(err)
	}
	if closed {
		st.active = st.active[:len(st.active)-1]
		st.stamp++
		if len(st.active) == 0 {
			if err := st.d.Done(); err != nil {
				return false, st.fail(err)
			}
		}
		return false, nil
	}

	inst.opened = true
	if inst.object {
		if inst.key, err = st.d.ReadString(true); err != nil {
			return false, st.fail(err)
		}
	}
	inst.cur, err = st.value()
	return err == nil, err
}

// next advances inst, first draining every composite open below it. It
// panics if inst is no longer on the active stack.
func (st *state) next(inst *instance) (bool, error) {
	idx := slices.Index(st.active, inst)
	if idx < 0 {
		panic(jsonify.Errorf(jsonify.ErrReader, "reader handle is not in an active state"))
	}
	for len(st.active) > idx+1 {
		if _, err := st.advance(); err != nil {
			return false, err
		}
	}
	return st.advance()
}

// open claims the composite most recently pushed by value. The reference
// must still be current and unclaimed.
func (st *state) open(stamp uint64, obj bool) (*instance, error) {
	label := "array"
	if obj {
		label = "object"
	}
	if stamp != st.stamp || len(st.active) == 0 || !st.active[len(st.active)-1].live {
		return nil, jsonify.Errorf(jsonify.ErrReader, "%s has already been opened or superseded", label)
	}
	inst := st.active[len(st.active)-1]
	inst.live = false
	return inst, nil
}

// New reads the root value of the document from r. A primitive root
// consumes the entire input immediately; a composite root is consumed as
// its handles advance, and the final closing bracket verifies that no
// trailing garbage follows.
func New(r io.Reader) (*Value, error) {
	st := &state{d: jsonify.NewDeserializer(r)}
	v, err := st.value()
	if err != nil {
		return nil, err
	}
	if len(st.active) == 0 {
		if err := st.d.Done(); err != nil {
			return nil, st.fail(err)
		}
	}
	return v, nil
}

// A Value is one value of the document. Primitive contents were captured
// when the value was classified and stay readable for the life of the
// handle; composite contents are streamed and must be opened while the
// reference is still current.
type Value struct {
	kind jsonify.Kind
	b    bool
	u    uint64
	i    int64
	f    float64
	s    string
	ref  *compRef
}

type compRef struct {
	st    *state
	stamp uint64
}

// Kind returns the classified kind of the value.
func (v *Value) Kind() jsonify.Kind { return v.kind }

// IsNull reports whether the value is null.
func (v *Value) IsNull() bool { return v.kind == jsonify.Null }

// IsBool reports whether the value is a boolean.
func (v *Value) IsBool() bool { return v.kind == jsonify.Bool }

// IsStr reports whether the value is a string.
func (v *Value) IsStr() bool { return v.kind == jsonify.String }

// IsUint reports whether the value reads as an unsigned integer.
func (v *Value) IsUint() bool {
	return v.kind == jsonify.Uint || (v.kind == jsonify.Int && v.i >= 0)
}

// IsInt reports whether the value reads as a signed integer.
func (v *Value) IsInt() bool {
	return v.kind == jsonify.Int || v.kind == jsonify.Uint
}

// IsReal reports whether the value reads as a real.
func (v *Value) IsReal() bool {
	return v.kind == jsonify.Real || v.kind == jsonify.Int || v.kind == jsonify.Uint
}

// IsArr reports whether the value is an array.
func (v *Value) IsArr() bool { return v.kind == jsonify.Array }

// IsObj reports whether the value is an object.
func (v *Value) IsObj() bool { return v.kind == jsonify.Object }

// Is reports whether the value reads as kind k under the lenient numeric
// rules.
func (v *Value) Is(k jsonify.Kind) bool {
	switch k {
	case jsonify.Uint:
		return v.IsUint()
	case jsonify.Int:
		return v.IsInt()
	case jsonify.Real:
		return v.IsReal()
	}
	return v.kind == k
}

func (v *Value) typeErr(want string) error {
	return jsonify.Errorf(jsonify.ErrType, "read value is not %s but %v", want, v.kind)
}

// Bool returns the boolean value.
func (v *Value) Bool() (bool, error) {
	if v.kind != jsonify.Bool {
		return false, v.typeErr("a boolean")
	}
	return v.b, nil
}

// Str returns the string value.
func (v *Value) Str() (string, error) {
	if v.kind != jsonify.String {
		return "", v.typeErr("a string")
	}
	return v.s, nil
}

// Uint returns the value as an unsigned integer. Non-negative signed
// integers and reals are converted.
func (v *Value) Uint() (uint64, error) {
	switch v.kind {
	case jsonify.Uint:
		return v.u, nil
	case jsonify.Int:
		if v.i >= 0 {
			return uint64(v.i), nil
		}
	case jsonify.Real:
		if v.f >= 0 {
			return uint64(v.f), nil
		}
	}
	return 0, v.typeErr("an unsigned number")
}

// Int returns the value as a signed integer. Unsigned integers and reals
// are converted.
func (v *Value) Int() (int64, error) {
	switch v.kind {
	case jsonify.Int:
		return v.i, nil
	case jsonify.Uint:
		return int64(v.u), nil
	case jsonify.Real:
		return int64(v.f), nil
	}
	return 0, v.typeErr("a signed number")
}

// Real returns the value as a float. Integers are converted.
func (v *Value) Real() (float64, error) {
	switch v.kind {
	case jsonify.Real:
		return v.f, nil
	case jsonify.Int:
		return float64(v.i), nil
	case jsonify.Uint:
		return float64(v.u), nil
	}
	return 0, v.typeErr("a real number")
}

// Arr opens the value as an array for iteration. The value must be the
// most recently classified composite and not yet opened.
func (v *Value) Arr() (*Arr, error) {
	if v.kind != jsonify.Array {
		return nil, v.typeErr("an array")
	}
	inst, err := v.ref.st.open(v.ref.stamp, false)
	if err != nil {
		return nil, err
	}
	return &Arr{st: v.ref.st, inst: inst}, nil
}

// Obj opens the value as an object for iteration. The value must be the
// most recently classified composite and not yet opened.
func (v *Value) Obj() (*Obj, error) {
	if v.kind != jsonify.Object {
		return nil, v.typeErr("an object")
	}
	inst, err := v.ref.st.open(v.ref.stamp, true)
	if err != nil {
		return nil, err
	}
	return &Obj{st: v.ref.st, inst: inst}, nil
}

// An Arr iterates the elements of an open array in the scanner idiom:
//
//	arr, _ := v.Arr()
//	for arr.Next() {
//		elem := arr.Cur()
//		...
//	}
//	if arr.Err() != nil { ... }
type Arr struct {
	st   *state
	inst *instance
	done bool
}

// Next advances to the next element, reporting whether one is available.
// Composites opened below this array are drained first.
func (a *Arr) Next() bool { return next(a.st, a.inst, &a.done) }

// Cur returns the current element. It is valid after Next has reported
// true and is overwritten by the following Next.
func (a *Arr) Cur() *Value { return a.inst.cur }

// Done reports whether the array has been fully consumed.
func (a *Arr) Done() bool { return a.done }

// Err returns the sticky parse error of the shared cursor, or nil.
func (a *Arr) Err() error { return a.st.err }

// Close consumes and discards the unread remainder of the array.
func (a *Arr) Close() error { return drain(a.st, a.inst, &a.done) }

// An Obj iterates the members of an open object, like Arr with a key for
// each position. Repeated keys are visited individually.
type Obj struct {
	st   *state
	inst *instance
	done bool
}

// Next advances to the next member, reporting whether one is available.
// Composites opened below this object are drained first.
func (o *Obj) Next() bool { return next(o.st, o.inst, &o.done) }

// Key returns the key of the current member.
func (o *Obj) Key() string { return o.inst.key }

// Cur returns the value of the current member. It is valid after Next has
// reported true and is overwritten by the following Next.
func (o *Obj) Cur() *Value { return o.inst.cur }

// Done reports whether the object has been fully consumed.
func (o *Obj) Done() bool { return o.done }

// Err returns the sticky parse error of the shared cursor, or nil.
func (o *Obj) Err() error { return o.st.err }

// Close consumes and discards the unread remainder of the object.
func (o *Obj) Close() error { return drain(o.st, o.inst, &o.done) }

func next(st *state, inst *instance, done *bool) bool {
	if *done || st.err != nil {
		return false
	}
	ok, err := st.next(inst)
	if err != nil || !ok {
		*done = true
	}
	return ok && err == nil
}

func drain(st *state, inst *instance, done *bool) error {
	if *done {
		return st.err
	}
	if st.err != nil {
		*done = true
		return st.err
	}
	if !slices.Contains(st.active, inst) {
		// An ancestor already drained past this composite.
		*done = true
		return nil
	}
	for {
		ok, err := st.next(inst)
		if err != nil {
			*done = true
			return err
		}
		if !ok {
			*done = true
			return nil
		}
	}
}
