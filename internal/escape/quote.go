// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package escape

import (
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

func appendU16(buf []byte, v uint16) []byte {
	return append(buf, '\\', 'u',
		hexDigit[v>>12&15], hexDigit[v>>8&15], hexDigit[v>>4&15], hexDigit[v&15])
}

// Quote encodes a string to escape characters for inclusion in a JSON
// string. Quotation marks, backslashes, and the short control escapes use
// their named forms. Codepoints outside the basic multilingual plane are
// written as a \u-escaped surrogate pair; U+FFFD, which also stands in for
// malformed UTF-8, is always \u-escaped; all other codepoints are written
// verbatim if printable and \u-escaped otherwise.
func Quote(src mem.RO) []byte {
	buf := make([]byte, 0, src.Len())

	for src.Len() > 0 {
		r, n := mem.DecodeRune(src)
		if r < utf8.RuneSelf {
			if r < ' ' {
				if b := controlEsc[r]; b != 0 {
					buf = append(buf, '\\', b)
				} else {
					buf = appendU16(buf, uint16(r))
				}
			} else if r == '\\' || r == '"' {
				buf = append(buf, '\\', byte(r))
			} else if r == 0x7f {
				buf = appendU16(buf, 0x7f)
			} else {
				buf = append(buf, byte(r))
			}
			src = src.SliceFrom(n)
			continue
		}

		switch {
		case r > 0xffff:
			h, l := utf16.EncodeRune(r)
			buf = appendU16(appendU16(buf, uint16(h)), uint16(l))
		case r == utf8.RuneError || !unicode.IsPrint(r):
			buf = appendU16(buf, uint16(r))
		default:
			buf = utf8.AppendRune(buf, r)
		}
		src = src.SliceFrom(n)
	}
	return buf
}
