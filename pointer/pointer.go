// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

// Package pointer implements RFC 6901 JSON pointers and their resolution
// against dom values and views.
package pointer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BjoernBoss/jsonify/dom"
	"github.com/BjoernBoss/jsonify/view"
)

// ErrUnresolved is reported when a pointer does not designate a value:
// a missing key, an invalid or out-of-range index, a step into a
// non-container, or a malformed pointer.
var ErrUnresolved = errors.New("unresolved pointer")

// A Pointer is a parsed JSON pointer: the sequence of its decoded reference
// tokens. The empty Pointer designates the root.
type Pointer []string

// Parse parses s as a JSON pointer. The empty string is the root pointer;
// any other pointer is a sequence of /-separated tokens in which ~0 decodes
// to "~" and ~1 decodes to "/". An unpaired "~" or a missing leading "/"
// is a parse failure reported as ErrUnresolved.
func Parse(s string) (Pointer, error) {
	if s == "" {
		return Pointer{}, nil
	}
	rest, ok := strings.CutPrefix(s, "/")
	if !ok {
		return nil, fmt.Errorf("%w: missing leading slash", ErrUnresolved)
	}

	var out Pointer
	for {
		token, tail, more := strings.Cut(rest, "/")
		dec, err := decodeToken(token)
		if err != nil {
			return nil, err
		}
		out = append(out, dec)
		if !more {
			return out, nil
		}
		rest = tail
	}
}

func decodeToken(token string) (string, error) {
	if !strings.ContainsRune(token, '~') {
		return token, nil
	}
	var sb strings.Builder
	for i := 0; i < len(token); i++ {
		c := token[i]
		if c != '~' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(token) {
			return "", fmt.Errorf("%w: unpaired \"~\"", ErrUnresolved)
		}
		switch token[i] {
		case '0':
			sb.WriteByte('~')
		case '1':
			sb.WriteByte('/')
		default:
			return "", fmt.Errorf("%w: invalid escape \"~%c\"", ErrUnresolved, token[i])
		}
	}
	return sb.String(), nil
}

// Path constructs a pointer from a sequence of steps. Each step must be a
// string (an object key) or an int, uint, or uint64 (an array index); Path
// panics on any other type.
func Path(steps ...any) Pointer {
	out := make(Pointer, len(steps))
	for i, step := range steps {
		switch t := step.(type) {
		case string:
			out[i] = t
		case int:
			out[i] = strconv.Itoa(t)
		case uint:
			out[i] = strconv.FormatUint(uint64(t), 10)
		case uint64:
			out[i] = strconv.FormatUint(t, 10)
		default:
			panic("invalid pointer step")
		}
	}
	return out
}

// String emits the RFC 6901 text of the pointer, escaping "~" as ~0 and
// "/" as ~1 within each token.
func (p Pointer) String() string {
	var sb strings.Builder
	for _, token := range p {
		sb.WriteByte('/')
		for i := 0; i < len(token); i++ {
			switch token[i] {
			case '~':
				sb.WriteString("~0")
			case '/':
				sb.WriteString("~1")
			default:
				sb.WriteByte(token[i])
			}
		}
	}
	return sb.String()
}

// index interprets a token as an array index. Leading zeros are rejected.
func index(token string, size int) (int, bool) {
	if len(token) > 1 && token[0] == '0' {
		return 0, false
	}
	i, err := strconv.ParseUint(token, 10, 63)
	if err != nil || int(i) >= size {
		return 0, false
	}
	return int(i), true
}

func unresolved(token string) error {
	return fmt.Errorf("%w at %q", ErrUnresolved, token)
}

// Resolve walks the pointer from root and returns the designated value.
// An object step matches by key equality on the decoded token; an array
// step interprets the token as an unsigned decimal index.
func (p Pointer) Resolve(root *dom.Value) (*dom.Value, error) {
	cur := root
	for _, token := range p {
		switch {
		case cur.IsObj():
			obj, _ := cur.Obj()
			next, ok := obj[token]
			if !ok {
				return nil, unresolved(token)
			}
			cur = next
		case cur.IsArr():
			arr, _ := cur.Arr()
			i, ok := index(token, len(arr))
			if !ok {
				return nil, unresolved(token)
			}
			cur = arr[i]
		default:
			return nil, unresolved(token)
		}
	}
	return cur, nil
}

// ResolveView is Resolve against a view. For objects with repeated keys the
// first occurrence is matched, like view key lookup.
func (p Pointer) ResolveView(root view.Viewer) (view.Viewer, error) {
	cur := root
	for _, token := range p {
		switch {
		case cur.IsObj():
			obj, _ := cur.Obj()
			next, ok := obj.Lookup(token)
			if !ok {
				return view.Viewer{}, unresolved(token)
			}
			cur = next
		case cur.IsArr():
			arr, _ := cur.Arr()
			i, ok := index(token, arr.Len())
			if !ok {
				return view.Viewer{}, unresolved(token)
			}
			cur, _ = arr.At(i)
		default:
			return view.Viewer{}, unresolved(token)
		}
	}
	return cur, nil
}
