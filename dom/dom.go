// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

// Package dom defines an owning, mutable tree of JSON values, usable both as
// a producer for serialization and as the product of deserialization.
//
// Reads are lenient: a signed integer that is non-negative tests and reads
// as unsigned, any integer reads as a real, and an unsigned integer reads as
// signed. Writes coerce: the As accessors rewrite a mismatched slot to the
// requested kind, preserving the value across numeric kinds where it is
// representable.
package dom

import (
	"math"

	"github.com/BjoernBoss/jsonify"
)

// An Arr is the ordered element sequence of an array value.
type Arr []*Value

// An Obj is the unordered key-to-value mapping of an object value. The
// serialized form orders members by key.
type Obj map[string]*Value

// A Value is a single JSON value of any of the eight kinds. The zero value
// is null.
type Value struct {
	kind jsonify.Kind
	b    bool
	u    uint64
	i    int64
	f    float64
	s    string
	arr  Arr
	obj  Obj
}

// Null constructs a null value.
func Null() *Value { return new(Value) }

// Kind returns the stored kind of v.
func (v *Value) Kind() jsonify.Kind { return v.kind }

// IsNull reports whether v is null.
func (v *Value) IsNull() bool { return v.kind == jsonify.Null }

// IsBool reports whether v is a boolean.
func (v *Value) IsBool() bool { return v.kind == jsonify.Bool }

// IsStr reports whether v is a string.
func (v *Value) IsStr() bool { return v.kind == jsonify.String }

// IsUint reports whether v reads as an unsigned integer: it is one, or it is
// a non-negative signed integer.
func (v *Value) IsUint() bool {
	return v.kind == jsonify.Uint || (v.kind == jsonify.Int && v.i >= 0)
}

// IsInt reports whether v reads as a signed integer: it is a signed or
// unsigned integer.
func (v *Value) IsInt() bool {
	return v.kind == jsonify.Int || v.kind == jsonify.Uint
}

// IsReal reports whether v reads as a real: it is any number.
func (v *Value) IsReal() bool {
	return v.kind == jsonify.Real || v.kind == jsonify.Int || v.kind == jsonify.Uint
}

// IsArr reports whether v is an array.
func (v *Value) IsArr() bool { return v.kind == jsonify.Array }

// IsObj reports whether v is an object.
func (v *Value) IsObj() bool { return v.kind == jsonify.Object }

// Is reports whether v reads as kind k under the lenient numeric rules.
func (v *Value) Is(k jsonify.Kind) bool {
	switch k {
	case jsonify.Bool:
		return v.IsBool()
	case jsonify.Uint:
		return v.IsUint()
	case jsonify.Int:
		return v.IsInt()
	case jsonify.Real:
		return v.IsReal()
	case jsonify.String:
		return v.IsStr()
	case jsonify.Array:
		return v.IsArr()
	case jsonify.Object:
		return v.IsObj()
	}
	return v.IsNull()
}

func (v *Value) typeErr(want string) error {
	return jsonify.Errorf(jsonify.ErrType, "value is not %s but %v", want, v.kind)
}

// Bool returns the boolean value of v.
func (v *Value) Bool() (bool, error) {
	if v.kind != jsonify.Bool {
		return false, v.typeErr("a boolean")
	}
	return v.b, nil
}

// Str returns the string value of v.
func (v *Value) Str() (string, error) {
	if v.kind != jsonify.String {
		return "", v.typeErr("a string")
	}
	return v.s, nil
}

// Uint returns the value of v as an unsigned integer. Non-negative signed
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

// Int returns the value of v as a signed integer. Unsigned integers and
// reals are converted.
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

// Real returns the value of v as a float. Integers are converted.
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

// Arr returns the element sequence of an array value.
func (v *Value) Arr() (Arr, error) {
	if v.kind != jsonify.Array {
		return nil, v.typeErr("an array")
	}
	return v.arr, nil
}

// Obj returns the member mapping of an object value.
func (v *Value) Obj() (Obj, error) {
	if v.kind != jsonify.Object {
		return nil, v.typeErr("an object")
	}
	return v.obj, nil
}

// reset clears every payload and sets the kind.
func (v *Value) reset(k jsonify.Kind) {
	*v = Value{kind: k}
}

// AsBool coerces v to a boolean and returns a reference to the slot.
func (v *Value) AsBool() *bool {
	if v.kind != jsonify.Bool {
		v.reset(jsonify.Bool)
	}
	return &v.b
}

// AsStr coerces v to a string and returns a reference to the slot. A
// mismatched slot is rewritten to the empty string.
func (v *Value) AsStr() *string {
	if v.kind != jsonify.String {
		v.reset(jsonify.String)
	}
	return &v.s
}

// AsUint coerces v to an unsigned integer, preserving the value of a
// non-negative signed integer or of an integral real in range, and returns a
// reference to the slot.
func (v *Value) AsUint() *uint64 {
	if v.kind != jsonify.Uint {
		u := uint64(0)
		if v.kind == jsonify.Int && v.i >= 0 {
			u = uint64(v.i)
		} else if v.kind == jsonify.Real && v.f == math.Trunc(v.f) && v.f >= 0 && v.f < math.MaxUint64 {
			u = uint64(v.f)
		}
		v.reset(jsonify.Uint)
		v.u = u
	}
	return &v.u
}

// AsInt coerces v to a signed integer, preserving the value of an unsigned
// integer or of an integral real in range, and returns a reference to the
// slot.
func (v *Value) AsInt() *int64 {
	if v.kind != jsonify.Int {
		i := int64(0)
		if v.kind == jsonify.Uint && v.u <= math.MaxInt64 {
			i = int64(v.u)
		} else if v.kind == jsonify.Real && v.f == math.Trunc(v.f) && v.f >= math.MinInt64 && v.f < math.MaxInt64 {
			i = int64(v.f)
		}
		v.reset(jsonify.Int)
		v.i = i
	}
	return &v.i
}

// AsReal coerces v to a real, preserving the value of any integer, and
// returns a reference to the slot.
func (v *Value) AsReal() *float64 {
	if v.kind != jsonify.Real {
		f := float64(0)
		if v.kind == jsonify.Uint {
			f = float64(v.u)
		} else if v.kind == jsonify.Int {
			f = float64(v.i)
		}
		v.reset(jsonify.Real)
		v.f = f
	}
	return &v.f
}

// AsArr coerces v to an array and returns a reference to its element
// sequence.
func (v *Value) AsArr() *Arr {
	if v.kind != jsonify.Array {
		v.reset(jsonify.Array)
	}
	return &v.arr
}

// AsObj coerces v to an object and returns its member mapping.
func (v *Value) AsObj() Obj {
	if v.kind != jsonify.Object {
		v.reset(jsonify.Object)
		v.obj = make(Obj)
	}
	return v.obj
}

// Len returns the element count of an array, the member count of an object,
// or the byte length of a string, and zero otherwise.
func (v *Value) Len() int {
	switch v.kind {
	case jsonify.Array:
		return len(v.arr)
	case jsonify.Object:
		return len(v.obj)
	case jsonify.String:
		return len(v.s)
	}
	return 0
}

// LenOf is Len filtered by kind: it returns zero unless v stores kind k.
func (v *Value) LenOf(k jsonify.Kind) int {
	if v.kind != k {
		return 0
	}
	return v.Len()
}

// Empty reports whether the container or string value of v has no contents.
// Values of any other kind are empty.
func (v *Value) Empty() bool { return v.Len() == 0 }

// EmptyOf is Empty filtered by kind.
func (v *Value) EmptyOf(k jsonify.Kind) bool { return v.LenOf(k) == 0 }

// Contains reports whether v is an object with a member named key.
func (v *Value) Contains(key string) bool {
	if v.kind != jsonify.Object {
		return false
	}
	_, ok := v.obj[key]
	return ok
}

// ContainsKind reports whether v is an object whose member named key reads
// as kind k.
func (v *Value) ContainsKind(key string, k jsonify.Kind) bool {
	if v.kind != jsonify.Object {
		return false
	}
	m, ok := v.obj[key]
	return ok && m.Is(k)
}

// TypedObject reports whether v is an object all of whose members read as
// kind k.
func (v *Value) TypedObject(k jsonify.Kind) bool {
	if v.kind != jsonify.Object {
		return false
	}
	for _, m := range v.obj {
		if !m.Is(k) {
			return false
		}
	}
	return true
}

// TypedArray reports whether v is an array all of whose elements read as
// kind k.
func (v *Value) TypedArray(k jsonify.Kind) bool {
	if v.kind != jsonify.Array {
		return false
	}
	for _, e := range v.arr {
		if !e.Is(k) {
			return false
		}
	}
	return true
}

// Has reports whether v is an array with an element at index i.
func (v *Value) Has(i int) bool {
	return v.kind == jsonify.Array && i >= 0 && i < len(v.arr)
}

// HasKind reports whether v is an array whose element at index i reads as
// kind k.
func (v *Value) HasKind(i int, k jsonify.Kind) bool {
	return v.Has(i) && v.arr[i].Is(k)
}

// Get returns the member of an object value named key for reading. A
// missing key yields a null value; mutating it does not affect v.
func (v *Value) Get(key string) (*Value, error) {
	if v.kind != jsonify.Object {
		return nil, v.typeErr("an object")
	}
	if m, ok := v.obj[key]; ok {
		return m, nil
	}
	return Null(), nil
}

// At returns the member of v named key for writing, coercing v to an object
// and inserting a null member if the key is missing.
func (v *Value) At(key string) *Value {
	obj := v.AsObj()
	m, ok := obj[key]
	if !ok {
		m = Null()
		obj[key] = m
	}
	return m
}

// Index returns the element of an array value at index i, or an ErrRange
// error if i is out of bounds.
func (v *Value) Index(i int) (*Value, error) {
	if v.kind != jsonify.Array {
		return nil, v.typeErr("an array")
	}
	if i < 0 || i >= len(v.arr) {
		return nil, jsonify.Errorf(jsonify.ErrRange, "array index %d out of range [0, %d)", i, len(v.arr))
	}
	return v.arr[i], nil
}

// Append coerces v to an array, appends elem converted by ToValue, and
// returns the appended value.
func (v *Value) Append(elem any) *Value {
	e := ToValue(elem)
	arr := v.AsArr()
	*arr = append(*arr, e)
	return e
}

// Pop removes the last element of an array value. It is a no-op on an empty
// array or a non-array.
func (v *Value) Pop() {
	if v.kind == jsonify.Array && len(v.arr) > 0 {
		v.arr = v.arr[:len(v.arr)-1]
	}
}

// Resize coerces v to an array and grows it with nulls or shrinks it to
// exactly n elements.
func (v *Value) Resize(n int) {
	arr := v.AsArr()
	for len(*arr) < n {
		*arr = append(*arr, Null())
	}
	*arr = (*arr)[:n]
}

// Erase coerces v to an object and removes the member named key.
func (v *Value) Erase(key string) {
	delete(v.AsObj(), key)
}

// Equal reports structural equality between v and o. Numbers compare by
// value across the three numeric kinds, so uint 3, int 3, and real 3.0 are
// all equal.
func (v *Value) Equal(o *Value) bool {
	switch v.kind {
	case jsonify.Null:
		return o.kind == jsonify.Null
	case jsonify.Bool:
		return o.kind == jsonify.Bool && v.b == o.b
	case jsonify.String:
		return o.kind == jsonify.String && v.s == o.s
	case jsonify.Uint, jsonify.Int, jsonify.Real:
		return numEqual(v, o)
	case jsonify.Array:
		if o.kind != jsonify.Array || len(v.arr) != len(o.arr) {
			return false
		}
		for i, e := range v.arr {
			if !e.Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case jsonify.Object:
		if o.kind != jsonify.Object || len(v.obj) != len(o.obj) {
			return false
		}
		for key, m := range v.obj {
			om, ok := o.obj[key]
			if !ok || !m.Equal(om) {
				return false
			}
		}
		return true
	}
	return false
}

func numEqual(v, o *Value) bool {
	switch o.kind {
	case jsonify.Uint, jsonify.Int, jsonify.Real:
	default:
		return false
	}

	// Two integers of any signedness compare exactly; a real on either side
	// compares as floats.
	if v.kind != jsonify.Real && o.kind != jsonify.Real {
		vi, vu := intParts(v)
		oi, ou := intParts(o)
		if (vi < 0) != (oi < 0) {
			return false
		}
		if vi < 0 {
			return vi == oi
		}
		return vu == ou
	}
	vf, _ := v.Real()
	of, _ := o.Real()
	return vf == of
}

func intParts(v *Value) (int64, uint64) {
	if v.kind == jsonify.Int {
		if v.i < 0 {
			return v.i, 0
		}
		return v.i, uint64(v.i)
	}
	if v.u > math.MaxInt64 {
		return 0, v.u
	}
	return int64(v.u), v.u
}
