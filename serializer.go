// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package jsonify

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/BjoernBoss/jsonify/internal/escape"

	"go4.org/mem"
)

// An Encoder writes itself to a token serializer as a single JSON value.
// The dom package's Value implements this interface; the builder and the
// serializer's Any method accept any implementation.
type Encoder interface {
	EncodeJSON(s *Serializer) error
}

// A Serializer emits a stream of JSON tokens to an io.Writer. Callers are
// responsible for issuing tokens in a well-formed order; the streaming
// builder maintains that order automatically.
//
// A failed write makes the serializer sticky: all further operations are
// discarded and report the original error, also available through Err.
type Serializer struct {
	w        *bufio.Writer
	indent   string
	depth    int
	hasValue bool
	err      error
	nbuf     []byte // scratch for number formatting
}

// NewSerializer constructs a serializer writing to w. The indent string is
// stripped of every character that is not a space or horizontal tab; a
// non-empty remainder selects pretty output, an empty one compact output.
func NewSerializer(w io.Writer, indent string) *Serializer {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &Serializer{w: bw, indent: sanitizeIndent(indent), nbuf: make([]byte, 0, 32)}
}

func sanitizeIndent(indent string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return r
		}
		return -1
	}, indent)
}

// Err returns the first error encountered by the serializer, or nil.
func (s *Serializer) Err() error { return s.err }

// Flush writes any buffered output to the underlying writer.
func (s *Serializer) Flush() error {
	if s.err != nil {
		return s.err
	}
	s.err = s.w.Flush()
	return s.err
}

func (s *Serializer) write(text string) error {
	if s.err == nil {
		_, s.err = s.w.WriteString(text)
	}
	return s.err
}

func (s *Serializer) writeByte(b byte) error {
	if s.err == nil {
		s.err = s.w.WriteByte(b)
	}
	return s.err
}

func (s *Serializer) writeBytes(text []byte) error {
	if s.err == nil {
		_, s.err = s.w.Write(text)
	}
	return s.err
}

func (s *Serializer) newline() error {
	if s.indent == "" {
		return s.err
	}
	s.writeByte('\n')
	for i := 0; i < s.depth; i++ {
		s.write(s.indent)
	}
	return s.err
}

func (s *Serializer) quoted(text string) error {
	s.writeByte('"')
	s.writeBytes(escape.Quote(mem.S(text)))
	return s.writeByte('"')
}

// Begin emits the opening bracket of an object (obj true) or array.
func (s *Serializer) Begin(obj bool) error {
	s.depth++
	s.hasValue = false
	if obj {
		return s.writeByte('{')
	}
	return s.writeByte('[')
}

// ObjectKey emits the separator from a preceding member (if any), the quoted
// key, and the key-value separator.
func (s *Serializer) ObjectKey(key string) error {
	if s.hasValue {
		s.writeByte(',')
	}
	s.hasValue = true

	s.newline()
	s.quoted(key)
	if s.indent == "" {
		return s.writeByte(':')
	}
	return s.write(": ")
}

// ArrayValue emits the separator from a preceding element, if any.
func (s *Serializer) ArrayValue() error {
	if s.hasValue {
		s.writeByte(',')
	}
	s.hasValue = true
	return s.newline()
}

// End emits the closing bracket of an object (obj true) or array, and marks
// the completed composite as a value of its parent.
func (s *Serializer) End(obj bool) error {
	s.depth--

	if s.hasValue {
		s.newline()
	}
	s.hasValue = true
	if obj {
		return s.writeByte('}')
	}
	return s.writeByte(']')
}

// Insert emits the raw text of an already-formed JSON fragment without any
// escaping or validation. The caller is trusted to supply a single
// well-formed value.
func (s *Serializer) Insert(raw string) error { return s.write(raw) }

// Primitive emits a single primitive token: null, a boolean, a number, or a
// quoted string, depending on the runtime type of v. Composite values are
// handled by Any.
func (s *Serializer) Primitive(v any) error {
	switch t := v.(type) {
	case nil:
		return s.write("null")
	case bool:
		if t {
			return s.write("true")
		}
		return s.write("false")
	case string:
		return s.quoted(t)
	case int:
		return s.writeInt(int64(t))
	case int8:
		return s.writeInt(int64(t))
	case int16:
		return s.writeInt(int64(t))
	case int32:
		return s.writeInt(int64(t))
	case int64:
		return s.writeInt(t)
	case uint:
		return s.writeUint(uint64(t))
	case uint8:
		return s.writeUint(uint64(t))
	case uint16:
		return s.writeUint(uint64(t))
	case uint32:
		return s.writeUint(uint64(t))
	case uint64:
		return s.writeUint(t)
	case uintptr:
		return s.writeUint(uint64(t))
	case float32:
		return s.writeReal(float64(t))
	case float64:
		return s.writeReal(t)
	case Num:
		switch t.Kind() {
		case Uint:
			return s.writeUint(t.Uint())
		case Int:
			return s.writeInt(t.Int())
		default:
			return s.writeReal(t.Real())
		}
	default:
		return fmt.Errorf("unsupported primitive type %T", v)
	}
}

func (s *Serializer) writeInt(v int64) error {
	return s.writeBytes(strconv.AppendInt(s.nbuf[:0], v, 10))
}

func (s *Serializer) writeUint(v uint64) error {
	return s.writeBytes(strconv.AppendUint(s.nbuf[:0], v, 10))
}

// writeReal formats v in the shortest general form. JSON has no inf or nan
// tokens, so non-finite values are clamped to the largest finite float of
// the matching sign.
func (s *Serializer) writeReal(v float64) error {
	if math.IsNaN(v) {
		v = math.MaxFloat64
	} else if math.IsInf(v, 1) {
		v = math.MaxFloat64
	} else if math.IsInf(v, -1) {
		v = -math.MaxFloat64
	}
	return s.writeBytes(strconv.AppendFloat(s.nbuf[:0], v, 'g', -1, 64))
}

// Any emits one complete JSON value of any JSON-like shape: a primitive, an
// Encoder, a slice or array (as a JSON array), or a string-keyed map (as a
// JSON object, members in sorted key order). Pointers are followed; a nil
// pointer emits null.
func (s *Serializer) Any(v any) error {
	switch t := v.(type) {
	case Encoder:
		return t.EncodeJSON(s)
	case []any:
		s.Begin(false)
		for _, elem := range t {
			s.ArrayValue()
			if err := s.Any(elem); err != nil {
				return err
			}
		}
		return s.End(false)
	case map[string]any:
		s.Begin(true)
		for _, key := range slices.Sorted(maps.Keys(t)) {
			s.ObjectKey(key)
			if err := s.Any(t[key]); err != nil {
				return err
			}
		}
		return s.End(true)
	}
	if err := s.Primitive(v); err == nil || s.err != nil {
		return s.err
	}
	return s.anyReflect(reflect.ValueOf(v))
}

func (s *Serializer) anyReflect(rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return s.write("null")
		}
		return s.Any(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		s.Begin(false)
		for i := 0; i < rv.Len(); i++ {
			s.ArrayValue()
			if err := s.Any(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return s.End(false)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("unsupported map key type %v", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		s.Begin(true)
		for _, key := range keys {
			s.ObjectKey(key)
			if err := s.Any(rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key())).Interface()); err != nil {
				return err
			}
		}
		return s.End(true)
	default:
		return fmt.Errorf("unsupported value type %v", rv.Type())
	}
}
