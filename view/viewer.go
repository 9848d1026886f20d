// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package view

import (
	"iter"

	"github.com/BjoernBoss/jsonify"
)

// A Viewer is a lightweight read-only handle to one value of a parsed
// document. It can be copied freely; all copies share the immutable arena.
// The zero Viewer is a null value.
type Viewer struct {
	st  *state
	ent entry
	last *int // arena index of the most recently matched key, or -1
}

func makeViewer(st *state, ent entry) Viewer {
	last := -1
	return Viewer{st: st, ent: ent, last: &last}
}

func viewerAt(st *state, i int) Viewer {
	return makeViewer(st, st.entries[i])
}

// Kind returns the stored kind of the viewed value.
func (v Viewer) Kind() jsonify.Kind { return v.ent.kind }

// IsNull reports whether the value is null.
func (v Viewer) IsNull() bool { return v.ent.kind == jsonify.Null }

// IsBool reports whether the value is a boolean.
func (v Viewer) IsBool() bool { return v.ent.kind == jsonify.Bool }

// IsStr reports whether the value is a string.
func (v Viewer) IsStr() bool { return v.ent.kind == jsonify.String }

// IsUint reports whether the value reads as an unsigned integer.
func (v Viewer) IsUint() bool { return v.ent.isUint() }

// IsInt reports whether the value reads as a signed integer.
func (v Viewer) IsInt() bool { return v.ent.isInt() }

// IsReal reports whether the value reads as a real.
func (v Viewer) IsReal() bool { return v.ent.isReal() }

// IsArr reports whether the value is an array.
func (v Viewer) IsArr() bool { return v.ent.kind == jsonify.Array }

// IsObj reports whether the value is an object.
func (v Viewer) IsObj() bool { return v.ent.kind == jsonify.Object }

// Is reports whether the value reads as kind k under the lenient numeric
// rules.
func (v Viewer) Is(k jsonify.Kind) bool { return v.ent.is(k) }

func (e entry) isUint() bool {
	return e.kind == jsonify.Uint || (e.kind == jsonify.Int && e.i >= 0)
}

func (e entry) isInt() bool {
	return e.kind == jsonify.Int || e.kind == jsonify.Uint
}

func (e entry) isReal() bool {
	return e.kind == jsonify.Real || e.kind == jsonify.Int || e.kind == jsonify.Uint
}

func (e entry) is(k jsonify.Kind) bool {
	switch k {
	case jsonify.Uint:
		return e.isUint()
	case jsonify.Int:
		return e.isInt()
	case jsonify.Real:
		return e.isReal()
	}
	return e.kind == k
}

func (v Viewer) typeErr(want string) error {
	return jsonify.Errorf(jsonify.ErrType, "viewed value is not %s but %v", want, v.ent.kind)
}

// Bool returns the boolean value.
func (v Viewer) Bool() (bool, error) {
	if v.ent.kind != jsonify.Bool {
		return false, v.typeErr("a boolean")
	}
	return v.ent.b, nil
}

// Str returns the string value, sliced out of the shared blob.
func (v Viewer) Str() (string, error) {
	if v.ent.kind != jsonify.String {
		return "", v.typeErr("a string")
	}
	return string(v.st.blob[v.ent.off : v.ent.off+v.ent.count]), nil
}

// Uint returns the value as an unsigned integer. Non-negative signed
// integers and reals are converted.
func (v Viewer) Uint() (uint64, error) {
	switch v.ent.kind {
	case jsonify.Uint:
		return v.ent.u, nil
	case jsonify.Int:
		if v.ent.i >= 0 {
			return uint64(v.ent.i), nil
		}
	case jsonify.Real:
		if v.ent.f >= 0 {
			return uint64(v.ent.f), nil
		}
	}
	return 0, v.typeErr("an unsigned number")
}

// Int returns the value as a signed integer. Unsigned integers and reals
// are converted.
func (v Viewer) Int() (int64, error) {
	switch v.ent.kind {
	case jsonify.Int:
		return v.ent.i, nil
	case jsonify.Uint:
		return int64(v.ent.u), nil
	case jsonify.Real:
		return int64(v.ent.f), nil
	}
	return 0, v.typeErr("a signed number")
}

// Real returns the value as a float. Integers are converted.
func (v Viewer) Real() (float64, error) {
	switch v.ent.kind {
	case jsonify.Real:
		return v.ent.f, nil
	case jsonify.Int:
		return float64(v.ent.i), nil
	case jsonify.Uint:
		return float64(v.ent.u), nil
	}
	return 0, v.typeErr("a real number")
}

// Arr returns an array viewer for an array value.
func (v Viewer) Arr() (ArrViewer, error) {
	if v.ent.kind != jsonify.Array {
		return ArrViewer{}, v.typeErr("an array")
	}
	return ArrViewer{st: v.st, off: v.ent.off, count: v.ent.count}, nil
}

// Obj returns an object viewer for an object value.
func (v Viewer) Obj() (ObjViewer, error) {
	if v.ent.kind != jsonify.Object {
		return ObjViewer{}, v.typeErr("an object")
	}
	last := -1
	return ObjViewer{st: v.st, off: v.ent.off, count: v.ent.count, last: &last}, nil
}

// Len returns the element count of an array, the member count of an object,
// or the byte length of a string, and zero otherwise.
func (v Viewer) Len() int {
	switch v.ent.kind {
	case jsonify.Array:
		return v.ent.count
	case jsonify.Object:
		return v.ent.count / 2
	case jsonify.String:
		return v.ent.count
	}
	return 0
}

// LenOf is Len filtered by kind.
func (v Viewer) LenOf(k jsonify.Kind) int {
	if v.ent.kind != k {
		return 0
	}
	return v.Len()
}

// Empty reports whether the container or string value has no contents.
// Values of any other kind are empty.
func (v Viewer) Empty() bool { return v.Len() == 0 }

// EmptyOf is Empty filtered by kind.
func (v Viewer) EmptyOf(k jsonify.Kind) bool { return v.LenOf(k) == 0 }

// lookup returns the arena index of the value paired with the first member
// named key, consulting the handle's cached slot first.
func (v Viewer) lookup(key string) (int, bool) {
	if i := *v.last; i >= 0 && v.st.str(i) == key {
		return i + 1, true
	}
	for i := v.ent.off; i < v.ent.off+v.ent.count; i += 2 {
		if v.st.str(i) == key {
			*v.last = i
			return i + 1, true
		}
	}
	return 0, false
}

// At returns the member of an object value named key. A missing key yields
// a null viewer. Repeated lookups of the same key are served from a
// per-handle cache.
func (v Viewer) At(key string) (Viewer, error) {
	if v.ent.kind != jsonify.Object {
		return Viewer{}, v.typeErr("an object")
	}
	if i, ok := v.lookup(key); ok {
		return viewerAt(v.st, i), nil
	}
	return Viewer{}, nil
}

// Contains reports whether the value is an object with a member named key.
func (v Viewer) Contains(key string) bool {
	if v.ent.kind != jsonify.Object {
		return false
	}
	_, ok := v.lookup(key)
	return ok
}

// ContainsKind reports whether the value is an object whose first member
// named key reads as kind k.
func (v Viewer) ContainsKind(key string, k jsonify.Kind) bool {
	if v.ent.kind != jsonify.Object {
		return false
	}
	i, ok := v.lookup(key)
	return ok && v.st.entries[i].is(k)
}

// TypedObject reports whether the value is an object all of whose members
// read as kind k.
func (v Viewer) TypedObject(k jsonify.Kind) bool {
	if v.ent.kind != jsonify.Object {
		return false
	}
	for i := v.ent.off; i < v.ent.off+v.ent.count; i += 2 {
		if !v.st.entries[i+1].is(k) {
			return false
		}
	}
	return true
}

// TypedArray reports whether the value is an array all of whose elements
// read as kind k.
func (v Viewer) TypedArray(k jsonify.Kind) bool {
	if v.ent.kind != jsonify.Array {
		return false
	}
	for i := v.ent.off; i < v.ent.off+v.ent.count; i++ {
		if !v.st.entries[i].is(k) {
			return false
		}
	}
	return true
}

// Index returns the element of an array value at index i, or an ErrRange
// error if i is out of bounds.
func (v Viewer) Index(i int) (Viewer, error) {
	if v.ent.kind != jsonify.Array {
		return Viewer{}, v.typeErr("an array")
	}
	if i < 0 || i >= v.ent.count {
		return Viewer{}, jsonify.Errorf(jsonify.ErrRange, "array index %d out of range [0, %d)", i, v.ent.count)
	}
	return viewerAt(v.st, v.ent.off+i), nil
}

// Has reports whether the value is an array with an element at index i.
func (v Viewer) Has(i int) bool {
	return v.ent.kind == jsonify.Array && i >= 0 && i < v.ent.count
}

// HasKind reports whether the value is an array whose element at index i
// reads as kind k.
func (v Viewer) HasKind(i int, k jsonify.Kind) bool {
	return v.Has(i) && v.st.entries[v.ent.off+i].is(k)
}

// An ArrViewer iterates the elements of an array value.
type ArrViewer struct {
	st  *state
	off, count int
}

// Len returns the element count.
func (a ArrViewer) Len() int { return a.count }

// Empty reports whether the array has no elements.
func (a ArrViewer) Empty() bool { return a.count == 0 }

// At returns the element at index i, or an ErrRange error if i is out of
// bounds.
func (a ArrViewer) At(i int) (Viewer, error) {
	if i < 0 || i >= a.count {
		return Viewer{}, jsonify.Errorf(jsonify.ErrRange, "array index %d out of range [0, %d)", i, a.count)
	}
	return viewerAt(a.st, a.off+i), nil
}

// Values ranges over the elements in order.
func (a ArrViewer) Values() iter.Seq[Viewer] {
	return func(yield func(Viewer) bool) {
		for i := 0; i < a.count; i++ {
			if !yield(viewerAt(a.st, a.off+i)) {
				return
			}
		}
	}
}

// An ObjViewer iterates the members of an object value in input order,
// visiting repeated keys individually.
type ObjViewer struct {
	st  *state
	off, count int // count is keys and values combined
	last *int
}

// Len returns the member count.
func (o ObjViewer) Len() int { return o.count / 2 }

// Empty reports whether the object has no members.
func (o ObjViewer) Empty() bool { return o.count == 0 }

func (o ObjViewer) lookup(key string) (int, bool) {
	if i := *o.last; i >= 0 && o.st.str(i) == key {
		return i + 1, true
	}
	for i := o.off; i < o.off+o.count; i += 2 {
		if o.st.str(i) == key {
			*o.last = i
			return i + 1, true
		}
	}
	return 0, false
}

// Contains reports whether the object has a member named key.
func (o ObjViewer) Contains(key string) bool {
	_, ok := o.lookup(key)
	return ok
}

// At returns the first member named key, or a null viewer if the key is
// missing.
func (o ObjViewer) At(key string) Viewer {
	if i, ok := o.lookup(key); ok {
		return viewerAt(o.st, i)
	}
	return Viewer{}
}

// Lookup returns the first member named key and reports whether it exists.
func (o ObjViewer) Lookup(key string) (Viewer, bool) {
	if i, ok := o.lookup(key); ok {
		return viewerAt(o.st, i), true
	}
	return Viewer{}, false
}

// Entries ranges over the members in input order.
func (o ObjViewer) Entries() iter.Seq2[string, Viewer] {
	return func(yield func(string, Viewer) bool) {
		for i := o.off; i < o.off+o.count; i += 2 {
			if !yield(o.st.str(i), viewerAt(o.st, i+1)) {
				return
			}
		}
	}
}
