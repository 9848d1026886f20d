// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

// Package view implements a read-only JSON document optimized for repeated
// traversal. A document is parsed once into a flat arena of tagged entries
// plus a single shared string blob; viewers are lightweight handles into the
// arena and can be copied freely.
package view

import (
	"io"
	"strings"

	"github.com/BjoernBoss/jsonify"
)

// An entry is one slot of the arena. Objects and arrays span a range of the
// entry array itself; strings span a range of the blob.
type entry struct {
	kind jsonify.Kind
	off  int // composite: first child entry; string: first blob byte
	count int // composite: child entries (objects: 2 per member); string: blob bytes
	b    bool
	u    uint64
	i    int64
	f    float64
}

type state struct {
	entries []entry
	blob    []byte
}

// str returns the decoded contents of the string entry at index i.
func (st *state) str(i int) string {
	e := st.entries[i]
	return string(st.blob[e.off : e.off+e.count])
}

// Parse deserializes a single JSON value from r into an immutable view. The
// entire input must be one value with optional whitespace padding. Objects
// with repeated keys keep every occurrence: iteration visits all of them in
// input order, and key lookup returns the first match.
func Parse(r io.Reader) (Viewer, error) {
	d := jsonify.NewDeserializer(r)
	st := &state{entries: make([]entry, 1)}

	root, err := parseValue(d, st)
	if err != nil {
		return Viewer{}, err
	}
	if err := d.Done(); err != nil {
		return Viewer{}, err
	}
	st.entries[0] = root
	return makeViewer(st, root), nil
}

// ParseString is Parse applied to a string of source text.
func ParseString(s string) (Viewer, error) {
	return Parse(strings.NewReader(s))
}

func parseValue(d *jsonify.Deserializer, st *state) (entry, error) {
	kind, err := d.OpenNext()
	if err != nil {
		return entry{}, err
	}
	switch kind {
	case jsonify.String:
		return parseString(d, st, false)
	case jsonify.Object:
		return parseComposite(d, st, true)
	case jsonify.Array:
		return parseComposite(d, st, false)
	case jsonify.Bool:
		b, err := d.ReadBool()
		return entry{kind: jsonify.Bool, b: b}, err
	case jsonify.Uint, jsonify.Int, jsonify.Real:
		num, err := d.ReadNumber()
		if err != nil {
			return entry{}, err
		}
		switch num.Kind() {
		case jsonify.Uint:
			return entry{kind: jsonify.Uint, u: num.Uint()}, nil
		case jsonify.Int:
			return entry{kind: jsonify.Int, i: num.Int()}, nil
		}
		return entry{kind: jsonify.Real, f: num.Real()}, nil
	}
	return entry{}, d.ReadNull()
}

func parseString(d *jsonify.Deserializer, st *state, key bool) (entry, error) {
	start := len(st.blob)
	blob, err := d.AppendString(st.blob, key)
	st.blob = blob
	return entry{kind: jsonify.String, off: start, count: len(blob) - start}, err
}

// parseComposite reads the children of an already-opened object or array
// into a scratch list, then splices them into the arena after all deeper
// descendants, so a composite's children occupy one contiguous range. The
// composite's own entry is placed later by its parent, after that range
// (the root's entry is slot 0).
func parseComposite(d *jsonify.Deserializer, st *state, obj bool) (entry, error) {
	kind := jsonify.Array
	if obj {
		kind = jsonify.Object
	}
	out := entry{kind: kind}
	if empty, err := d.IsEmpty(obj); err != nil || empty {
		return out, err
	}

	var scratch []entry
	for {
		if obj {
			key, err := parseString(d, st, true)
			if err != nil {
				return out, err
			}
			scratch = append(scratch, key)
		}
		elem, err := parseValue(d, st)
		if err != nil {
			return out, err
		}
		scratch = append(scratch, elem)

		closed, err := d.CloseElseSep(obj)
		if err != nil {
			return out, err
		}
		if closed {
			break
		}
	}

	out.off = len(st.entries)
	out.count = len(scratch)
	st.entries = append(st.entries, scratch...)
	return out, nil
}
