// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package jsonify

import (
	"errors"
	"strings"

	"github.com/BjoernBoss/jsonify/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	sb.Write(escape.Quote(mem.S(src)))
	sb.WriteByte('"')
	return sb.String()
}

// Unquote decodes a JSON string value. Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents,
// interpreting \u escapes as UTF-16 with surrogate pairs combined.
//
// Invalid escapes and unpaired surrogates are replaced by the Unicode
// replacement rune. Unquote reports an error for an incomplete escape
// sequence.
func Unquote(src string) ([]byte, error) {
	if len(src) < 2 || !strings.HasPrefix(src, `"`) || !strings.HasSuffix(src, `"`) {
		return nil, errors.New("missing quotations")
	}
	return escape.Unquote(mem.S(src[1 : len(src)-1]))
}
