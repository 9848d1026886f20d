// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package jsonify

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"math"
	"strconv"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// An Invalid policy selects how the deserializer treats malformed input at
// the codepoint level: invalid UTF-8 sequences and unpaired \u-escaped
// surrogates.
type Invalid byte

// Constants defining the valid Invalid policies.
const (
	ReplaceInvalid Invalid = iota // substitute the Unicode replacement rune (default)
	SkipInvalid                   // drop the malformed unit
	FailInvalid                   // report a deserialize error
)

// A Deserializer reads a stream of JSON tokens from an io.Reader. It is a
// pull parser: the caller classifies the upcoming value with OpenNext and
// then invokes the matching Read method. The streaming reader, the dom
// parser, and the view builder all drive their input through it.
//
// Errors are reported as *Error with kind ErrDeserialize, carrying the byte
// offset in the input at which the problem was detected.
type Deserializer struct {
	r   *bufio.Reader
	pol Invalid
	buf bytes.Buffer // text of the current number or constant

	pos     int  // byte offset of the next unconsumed codepoint
	cur     rune // lookahead codepoint, valid if haveCur
	curSize int
	haveCur bool
}

// NewDeserializer constructs a deserializer that consumes input from r.
func NewDeserializer(r io.Reader) *Deserializer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Deserializer{r: br}
}

// InvalidPolicy configures how malformed input is handled. The default is
// ReplaceInvalid.
func (d *Deserializer) InvalidPolicy(p Invalid) { d.pol = p }

// Offset returns the byte offset of the next unconsumed codepoint.
func (d *Deserializer) Offset() int { return d.pos }

func (d *Deserializer) failf(msg string, args ...any) error {
	e := Errorf(ErrDeserialize, msg, args...)
	e.Offset = d.pos
	return e
}

// peek returns the upcoming codepoint without consuming it. At the end of
// the input it returns io.EOF; malformed codepoints are handled per the
// configured policy.
func (d *Deserializer) peek() (rune, error) {
	if d.haveCur {
		return d.cur, nil
	}
	for {
		ch, nb, err := d.r.ReadRune()
		if err != nil {
			if err == io.EOF {
				return 0, io.EOF
			}
			return 0, d.failf("read failed: %w", err)
		}
		if ch == utf8.RuneError && nb == 1 {
			switch d.pol {
			case SkipInvalid:
				d.pos++
				continue
			case FailInvalid:
				return 0, d.failf("malformed input encountered")
			}
			// ReplaceInvalid falls through with the replacement rune.
		}
		d.cur, d.curSize, d.haveCur = ch, nb, true
		return ch, nil
	}
}

func (d *Deserializer) consume() {
	d.pos += d.curSize
	d.haveCur = false
}

// skipSpace returns the next codepoint that is not JSON whitespace, without
// consuming it. Whitespace is consumed.
func (d *Deserializer) skipSpace() (rune, error) {
	for {
		ch, err := d.peek()
		if err != nil {
			return 0, err
		}
		if ch != ' ' && ch != '\n' && ch != '\r' && ch != '\t' {
			return ch, nil
		}
		d.consume()
	}
}

// skipSpaceValue is skipSpace with end-of-input reported as an error, for
// positions where a value or token must follow.
func (d *Deserializer) skipSpaceValue(want string) (rune, error) {
	ch, err := d.skipSpace()
	if err == io.EOF {
		return 0, d.failf("unexpected end of input, want %s", want)
	}
	return ch, err
}

// OpenNext skips whitespace and classifies the upcoming value by its first
// codepoint. The opening bracket of an object or array is consumed; the
// first codepoint of any other value is left for the matching Read method.
// Numbers are reported as Int regardless of their eventual classification,
// which ReadNumber performs.
func (d *Deserializer) OpenNext() (Kind, error) {
	ch, err := d.skipSpaceValue("a value")
	if err != nil {
		return Null, err
	}
	switch {
	case ch == '{':
		d.consume()
		return Object, nil
	case ch == '[':
		d.consume()
		return Array, nil
	case ch == '"':
		return String, nil
	case ch == '-' || (ch >= '0' && ch <= '9'):
		return Int, nil
	case ch == 'n':
		return Null, nil
	case ch == 't' || ch == 'f':
		return Bool, nil
	}
	return Null, d.failf("unexpected %q where a value was expected", ch)
}

// IsEmpty reports whether the upcoming token is the closing bracket of an
// object (obj true) or array, consuming it if so.
func (d *Deserializer) IsEmpty(obj bool) (bool, error) {
	close, label := closingOf(obj)
	ch, err := d.skipSpaceValue(label)
	if err != nil {
		return false, err
	}
	if ch != close {
		return false, nil
	}
	d.consume()
	return true, nil
}

// CloseElseSep consumes either the closing bracket of an object (obj true)
// or array, or the separating comma, and reports whether the bracket was
// consumed. Any other token is a deserialize error.
func (d *Deserializer) CloseElseSep(obj bool) (bool, error) {
	close, label := closingOf(obj)
	ch, err := d.skipSpaceValue(label)
	if err != nil {
		return false, err
	}
	if ch != close && ch != ',' {
		return false, d.failf("unexpected %q, want \",\" or %s", ch, label)
	}
	d.consume()
	return ch == close, nil
}

func closingOf(obj bool) (rune, string) {
	if obj {
		return '}', "closing object bracket"
	}
	return ']', "closing array bracket"
}

// readName consumes a run of lowercase letters into the token buffer.
func (d *Deserializer) readName() (mem.RO, error) {
	d.buf.Reset()
	for {
		ch, err := d.peek()
		if err == io.EOF {
			break
		} else if err != nil {
			return mem.RO{}, err
		}
		if ch < 'a' || ch > 'z' {
			break
		}
		d.buf.WriteByte(byte(ch))
		d.consume()
	}
	return mem.B(d.buf.Bytes()), nil
}

// ReadNull verifies the null keyword.
func (d *Deserializer) ReadNull() error {
	got, err := d.readName()
	if err != nil {
		return err
	}
	if !got.Equal(mem.S("null")) {
		return d.failf("unknown constant %q", got.StringCopy())
	}
	return nil
}

// ReadBool verifies and returns the true or false keyword.
func (d *Deserializer) ReadBool() (bool, error) {
	got, err := d.readName()
	if err != nil {
		return false, err
	}
	if got.Equal(mem.S("true")) {
		return true, nil
	}
	if !got.Equal(mem.S("false")) {
		return false, d.failf("unknown constant %q", got.StringCopy())
	}
	return false, nil
}

// States of the JSON number grammar.
type numState byte

const (
	numPreSign numState = iota
	numPreDigits
	numInDigits
	numPostDigits // after a leading zero
	numPreFraction
	numInFraction
	numPreExpSign
	numPreExponent
	numInExponent
)

// ReadNumber accumulates and classifies a JSON number. An unsigned integer
// yields kind Uint, an integer with a minus sign (including -0) kind Int,
// and any number with a
// fraction or exponent kind Real. An integer that overflows its 64-bit type
// falls back to the float parse; a number whose float parse is not finite is
// a deserialize error.
func (d *Deserializer) ReadNumber() (Num, error) {
	state := numPreSign
	neg := false

	d.buf.Reset()
	for {
		ch, err := d.peek()
		if err == io.EOF {
			break
		} else if err != nil {
			return Num{}, err
		}

		if ch == '-' && (state == numPreSign || state == numPreExpSign) {
			if state == numPreSign {
				neg = true
				state = numPreDigits
			} else {
				state = numPreExponent
			}
		} else if ch == '+' && state == numPreExpSign {
			state = numPreExponent
		} else if ch == '.' && (state == numInDigits || state == numPostDigits) {
			state = numPreFraction
		} else if (ch == 'e' || ch == 'E') && (state == numInDigits || state == numPostDigits || state == numInFraction) {
			state = numPreExpSign
		} else if ch >= '0' && ch <= '9' && state != numPostDigits {
			switch state {
			case numPreSign, numPreDigits:
				if ch == '0' {
					state = numPostDigits
				} else {
					state = numInDigits
				}
			case numPreFraction:
				state = numInFraction
			case numPreExpSign, numPreExponent:
				state = numInExponent
			}
		} else {
			break
		}

		d.buf.WriteByte(byte(ch))
		d.consume()
	}

	switch state {
	case numInDigits, numPostDigits, numInFraction, numInExponent:
	default:
		return Num{}, d.failf("malformed number encountered")
	}
	text := d.buf.String()

	// Integral text parses as an integer first, falling back to the float
	// parse if it does not fit the 64-bit range.
	if state == numInDigits || state == numPostDigits {
		if neg {
			i, err := strconv.ParseInt(text, 10, 64)
			if err == nil {
				return IntNum(i), nil
			}
			if !errors.Is(err, strconv.ErrRange) {
				return Num{}, d.failf("malformed number %q", text)
			}
		} else {
			u, err := strconv.ParseUint(text, 10, 64)
			if err == nil {
				return UintNum(u), nil
			}
			if !errors.Is(err, strconv.ErrRange) {
				return Num{}, d.failf("malformed number %q", text)
			}
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Num{}, d.failf("malformed number %q", text)
	}
	if math.IsInf(f, 0) {
		return Num{}, d.failf("number %q out of range", text)
	}
	return RealNum(f), nil
}

// ReadString decodes a string value, consuming its enclosing quotation
// marks. If key is true, the string is an object key and the following
// colon is consumed as well.
func (d *Deserializer) ReadString(key bool) (string, error) {
	text, err := d.AppendString(nil, key)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

// AppendString is ReadString appending the decoded contents to dst, which
// may be nil. The view builder uses it to accumulate all strings of a
// document into one blob.
func (d *Deserializer) AppendString(dst []byte, key bool) ([]byte, error) {
	ch, err := d.skipSpaceValue("a string")
	if err != nil {
		return dst, err
	}
	if ch != '"' {
		return dst, d.failf("unexpected %q, want '\"' at start of a string", ch)
	}
	d.consume()

	for {
		ch, err := d.peek()
		if err == io.EOF {
			return dst, d.failf("unexpected end of input in string")
		} else if err != nil {
			return dst, err
		}

		if ch == '"' {
			d.consume()
			if key {
				return dst, d.keySep()
			}
			return dst, nil
		}
		if ch == '\\' {
			d.consume()
			if dst, err = d.appendEscape(dst); err != nil {
				return dst, err
			}
			continue
		}
		if unicode.IsControl(ch) {
			return dst, d.failf("control character %q in string encountered", ch)
		}
		dst = utf8.AppendRune(dst, ch)
		d.consume()
	}
}

// keySep consumes the colon following an object key.
func (d *Deserializer) keySep() error {
	ch, err := d.skipSpaceValue("\":\" after object key")
	if err != nil {
		return err
	}
	if ch != ':' {
		return d.failf("unexpected %q, want \":\" after object key", ch)
	}
	d.consume()
	return nil
}

// appendEscape decodes one escape sequence whose backslash is already
// consumed. Unicode escapes are UTF-16 code units; a high surrogate joins
// with an immediately following low surrogate escape, and unpaired
// surrogates are handled per the configured policy.
func (d *Deserializer) appendEscape(dst []byte) ([]byte, error) {
	ch, err := d.peekEscapeChar()
	if err != nil {
		return dst, err
	}
	switch ch {
	case '"', '\\', '/':
		d.consume()
		return append(dst, byte(ch)), nil
	case 'b':
		d.consume()
		return append(dst, '\b'), nil
	case 'f':
		d.consume()
		return append(dst, '\f'), nil
	case 'n':
		d.consume()
		return append(dst, '\n'), nil
	case 'r':
		d.consume()
		return append(dst, '\r'), nil
	case 't':
		d.consume()
		return append(dst, '\t'), nil
	case 'u':
		d.consume()
		u, err := d.readHex4()
		if err != nil {
			return dst, err
		}
		return d.appendUnit(dst, u)
	}
	return dst, d.failf("unknown escape %q in string encountered", ch)
}

// appendUnit resolves the UTF-16 code unit u of a \u escape, pairing high
// surrogates with a directly following \u low surrogate.
func (d *Deserializer) appendUnit(dst []byte, u uint16) ([]byte, error) {
	for {
		if !utf16.IsSurrogate(rune(u)) {
			return utf8.AppendRune(dst, rune(u)), nil
		}
		if u >= 0xdc00 { // low surrogate with no preceding high
			return d.appendLoneSurrogate(dst, u)
		}

		// A continuation requires another escape, and that escape must be a
		// \u unit. Anything else first flushes the lone high surrogate.
		ch, err := d.peek()
		if err != nil || ch != '\\' {
			return d.appendLoneSurrogate(dst, u)
		}
		d.consume()
		ch, err = d.peekEscapeChar()
		if err != nil {
			return dst, err
		}
		if ch != 'u' {
			dst, err = d.appendLoneSurrogate(dst, u)
			if err != nil {
				return dst, err
			}
			return d.appendEscape(dst)
		}
		d.consume()
		next, err := d.readHex4()
		if err != nil {
			return dst, err
		}
		if next >= 0xdc00 && next < 0xe000 {
			return utf8.AppendRune(dst, utf16.DecodeRune(rune(u), rune(next))), nil
		}
		if dst, err = d.appendLoneSurrogate(dst, u); err != nil {
			return dst, err
		}
		u = next
	}
}

func (d *Deserializer) appendLoneSurrogate(dst []byte, u uint16) ([]byte, error) {
	switch d.pol {
	case SkipInvalid:
		return dst, nil
	case FailInvalid:
		return dst, d.failf("unpaired surrogate escape \\u%04x in string", u)
	}
	return utf8.AppendRune(dst, utf8.RuneError), nil
}

func (d *Deserializer) peekEscapeChar() (rune, error) {
	ch, err := d.peek()
	if err == io.EOF {
		return 0, d.failf("unexpected end of input in escape sequence")
	}
	return ch, err
}

// readHex4 reads exactly 4 hexadecimal digits from the input.
func (d *Deserializer) readHex4() (uint16, error) {
	var v uint16
	for i := 0; i < 4; i++ {
		ch, err := d.peekEscapeChar()
		if err != nil {
			return 0, err
		}
		v <<= 4
		if ch >= '0' && ch <= '9' {
			v += uint16(ch - '0')
		} else if ch >= 'a' && ch <= 'f' {
			v += uint16(ch - 'a' + 10)
		} else if ch >= 'A' && ch <= 'F' {
			v += uint16(ch - 'A' + 10)
		} else {
			return 0, d.failf("invalid \\u escape in string encountered")
		}
		d.consume()
	}
	return v, nil
}

// Done skips whitespace and verifies that the input is exhausted.
func (d *Deserializer) Done() error {
	ch, err := d.skipSpace()
	if err == io.EOF {
		return nil
	} else if err != nil {
		return err
	}
	return d.failf("unexpected %q after end of value", ch)
}
