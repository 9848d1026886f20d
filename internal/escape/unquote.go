// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON string contents.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Unquote decodes a byte slice containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. Unicode
// escapes are interpreted as UTF-16 code units, and a high surrogate
// immediately followed by a low surrogate escape is combined into a single
// codepoint. Invalid escapes and unpaired surrogates are replaced by the
// Unicode replacement rune. Unquote reports an error for an incomplete
// escape sequence.
func Unquote(src mem.RO) ([]byte, error) {
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(nil, src), nil
	}

	dec := make([]byte, 0, src.Len())
	for src.Len() != 0 {
		i = mem.IndexByte(src, '\\')
		if i < 0 {
			dec = mem.Append(dec, src)
			break
		}
		dec = mem.Append(dec, src.SliceTo(i))

		r, rest, err := decodeEscape(src.SliceFrom(i))
		if err != nil {
			return nil, err
		}
		dec = utf8.AppendRune(dec, r)
		src = rest
	}
	return dec, nil
}

// decodeEscape decodes one escape sequence from the front of src, which must
// begin with a backslash. It consumes a paired low surrogate escape along
// with its high counterpart.
func decodeEscape(src mem.RO) (rune, mem.RO, error) {
	if src.Len() < 2 {
		return 0, src, errors.New("incomplete escape sequence")
	}
	c := src.At(1)
	src = src.SliceFrom(2)
	switch c {
	case '"', '\\', '/':
		return rune(c), src, nil
	case 'b':
		return '\b', src, nil
	case 'f':
		return '\f', src, nil
	case 'n':
		return '\n', src, nil
	case 'r':
		return '\r', src, nil
	case 't':
		return '\t', src, nil
	case 'u':
		if src.Len() < 4 {
			return 0, src, errors.New("incomplete Unicode escape")
		}
		u1, rest, err := parseHex4(src)
		if err != nil {
			return utf8.RuneError, rest, nil
		}
		src = rest
		if !utf16.IsSurrogate(rune(u1)) {
			return rune(u1), src, nil
		}

		// A high surrogate may pair with an immediately following \u escape.
		if isHighSurrogate(u1) && src.Len() >= 6 && src.At(0) == '\\' && src.At(1) == 'u' {
			u2, rest, err := parseHex4(src.SliceFrom(2))
			if err == nil && isLowSurrogate(u2) {
				return utf16.DecodeRune(rune(u1), rune(u2)), rest, nil
			}
		}
		return utf8.RuneError, src, nil // unpaired surrogate
	default:
		return utf8.RuneError, src, nil // unknown escape
	}
}

func isHighSurrogate(v uint16) bool { return v >= 0xd800 && v < 0xdc00 }
func isLowSurrogate(v uint16) bool  { return v >= 0xdc00 && v < 0xe000 }

func parseHex4(data mem.RO) (uint16, mem.RO, error) {
	if data.Len() < 4 {
		return 0, data, errors.New("incomplete Unicode escape")
	}
	var v uint16
	for i := 0; i < 4; i++ {
		b := data.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += uint16(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += uint16(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += uint16(b - 'A' + 10)
		} else {
			return 0, data.SliceFrom(4), fmt.Errorf("invalid hex digit %q", b)
		}
	}
	return v, data.SliceFrom(4), nil
}
