// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package dom

import (
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/BjoernBoss/jsonify"
)

// EncodeJSON writes v to the token serializer as a single value, satisfying
// the jsonify.Encoder interface. A nil value is null; object members are
// written in sorted key order.
func (v *Value) EncodeJSON(s *jsonify.Serializer) error {
	if v == nil {
		return s.Primitive(nil)
	}
	switch v.kind {
	case jsonify.Bool:
		return s.Primitive(v.b)
	case jsonify.Uint:
		return s.Primitive(v.u)
	case jsonify.Int:
		return s.Primitive(v.i)
	case jsonify.Real:
		return s.Primitive(v.f)
	case jsonify.String:
		return s.Primitive(v.s)
	case jsonify.Array:
		s.Begin(false)
		for _, elem := range v.arr {
			s.ArrayValue()
			if err := elem.EncodeJSON(s); err != nil {
				return err
			}
		}
		return s.End(false)
	case jsonify.Object:
		s.Begin(true)
		for _, key := range slices.Sorted(maps.Keys(v.obj)) {
			s.ObjectKey(key)
			if err := v.obj[key].EncodeJSON(s); err != nil {
				return err
			}
		}
		return s.End(true)
	}
	return s.Primitive(nil)
}

// Format serializes v to w. A non-empty indent selects pretty output.
func Format(w io.Writer, v *Value, indent string) error {
	s := jsonify.NewSerializer(w, indent)
	if err := v.EncodeJSON(s); err != nil {
		return err
	}
	return s.Flush()
}

// FormatToString serializes v to a string. In case of error in formatting,
// it returns an empty string.
func FormatToString(v *Value, indent string) string {
	var sb strings.Builder
	if Format(&sb, v, indent) != nil {
		return ""
	}
	return sb.String()
}
