// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package jsonify

// Kind is the type of a JSON value. Numbers are split into three kinds:
// unsigned integers, signed integers, and reals. The deserializer chooses
// among them by syntax and range; consumers apply lenient conversions
// between them (see the dom and view packages).
type Kind byte

// Constants defining the valid Kind values.
const (
	Null   Kind = iota // the null constant
	Bool               // true or false
	Uint               // number: unsigned integer
	Int                // number: signed integer
	Real               // number with fraction and/or exponent
	String             // quoted string
	Array              // array "[...]"
	Object             // object "{...}"
)

var kindStr = [...]string{
	Null:   "null",
	Bool:   "boolean",
	Uint:   "unsigned number",
	Int:    "signed number",
	Real:   "real number",
	String: "string",
	Array:  "array",
	Object: "object",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return "invalid kind"
	}
	return kindStr[k]
}

// A Num is the decoded value of a JSON number. Its kind is one of Uint, Int,
// or Real, chosen by the deserializer: an unsigned integer if the text is an
// integer without sign, a signed integer if a sign was present, and a real if
// the text had a fraction or exponent or the integer parse overflowed.
type Num struct {
	kind Kind
	u    uint64
	i    int64
	f    float64
}

// UintNum constructs a Num of kind Uint.
func UintNum(u uint64) Num { return Num{kind: Uint, u: u} }

// IntNum constructs a Num of kind Int.
func IntNum(i int64) Num { return Num{kind: Int, i: i} }

// RealNum constructs a Num of kind Real.
func RealNum(f float64) Num { return Num{kind: Real, f: f} }

// Kind reports which of Uint, Int, or Real the number was classified as.
func (n Num) Kind() Kind { return n.kind }

// Uint returns the value converted to an unsigned integer.
func (n Num) Uint() uint64 {
	switch n.kind {
	case Int:
		return uint64(n.i)
	case Real:
		return uint64(n.f)
	}
	return n.u
}

// Int returns the value converted to a signed integer.
func (n Num) Int() int64 {
	switch n.kind {
	case Uint:
		return int64(n.u)
	case Real:
		return int64(n.f)
	}
	return n.i
}

// Real returns the value converted to a float.
func (n Num) Real() float64 {
	switch n.kind {
	case Uint:
		return float64(n.u)
	case Int:
		return float64(n.i)
	}
	return n.f
}
