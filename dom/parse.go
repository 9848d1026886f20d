// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package dom

import (
	"io"
	"strings"

	"github.com/BjoernBoss/jsonify"
)

// Parse deserializes a single JSON value from r. The entire input must be
// one value with optional whitespace padding. For objects with repeated
// keys, the last occurrence wins. In case of error, the returned error has
// concrete type *jsonify.Error.
func Parse(r io.Reader) (*Value, error) {
	d := jsonify.NewDeserializer(r)
	out := Null()
	if err := parseValue(d, out); err != nil {
		return nil, err
	}
	if err := d.Done(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseString is Parse applied to a string of source text.
func ParseString(s string) (*Value, error) {
	return Parse(strings.NewReader(s))
}

func parseValue(d *jsonify.Deserializer, out *Value) error {
	kind, err := d.OpenNext()
	if err != nil {
		return err
	}
	switch kind {
	case jsonify.Object:
		return parseObject(d, out.AsObj())
	case jsonify.Array:
		return parseArray(d, out.AsArr())
	case jsonify.String:
		s, err := d.ReadString(false)
		if err != nil {
			return err
		}
		*out.AsStr() = s
	case jsonify.Bool:
		b, err := d.ReadBool()
		if err != nil {
			return err
		}
		*out.AsBool() = b
	case jsonify.Uint, jsonify.Int, jsonify.Real:
		num, err := d.ReadNumber()
		if err != nil {
			return err
		}
		switch num.Kind() {
		case jsonify.Uint:
			*out.AsUint() = num.Uint()
		case jsonify.Int:
			*out.AsInt() = num.Int()
		default:
			*out.AsReal() = num.Real()
		}
	default:
		if err := d.ReadNull(); err != nil {
			return err
		}
		out.reset(jsonify.Null)
	}
	return nil
}

func parseObject(d *jsonify.Deserializer, out Obj) error {
	if empty, err := d.IsEmpty(true); err != nil || empty {
		return err
	}
	for {
		key, err := d.ReadString(true)
		if err != nil {
			return err
		}

		m := Null()
		if err := parseValue(d, m); err != nil {
			return err
		}
		out[key] = m

		closed, err := d.CloseElseSep(true)
		if err != nil || closed {
			return err
		}
	}
}

func parseArray(d *jsonify.Deserializer, out *Arr) error {
	if empty, err := d.IsEmpty(false); err != nil || empty {
		return err
	}
	for {
		elem := Null()
		if err := parseValue(d, elem); err != nil {
			return err
		}
		*out = append(*out, elem)

		closed, err := d.CloseElseSep(false)
		if err != nil || closed {
			return err
		}
	}
}
