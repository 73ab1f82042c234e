/*
Package literal decodes the literal-structure text stored in recommendation tables.

Only literals are accepted: integers, floats, quoted strings, True/False/None, lists,
tuples, sets and dicts. Names, calls, operators (other than a leading sign on a number)
and attribute access are rejected, so decoding a field can never execute anything.

Decoded values use these Go types:

	int64, float64, string, bool, nil, []any (list, tuple, set), Dict
*/
package literal

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxDepth bounds container nesting.
const maxDepth = 64

// Pair is one key/value entry of a Dict.
type Pair struct {
	Key   any
	Value any
}

// Dict is a decoded mapping. Entries keep their source order.
type Dict []Pair

// Get returns the value stored under key. Only scalar keys are compared.
func (d Dict) Get(key any) (any, bool) {
	for _, p := range d {
		if scalarEqual(p.Key, key) {
			return p.Value, true
		}
	}
	return nil, false
}

// SyntaxError reports where decoding stopped.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("literal: %s at offset %d", e.Msg, e.Offset)
}

// Parse decodes a single literal. Surrounding whitespace is ignored; any other
// trailing text is an error.
func Parse(s string) (any, error) {
	p := &parser{src: s}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("empty input")
	}
	v, err := p.value(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q after value", p.peek())
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) value(depth int) (any, error) {
	if depth > maxDepth {
		return nil, p.errorf("nesting deeper than %d", maxDepth)
	}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}

	c := p.peek()
	switch {
	case c == '[':
		p.pos++
		return p.sequence(']', depth)
	case c == '(':
		p.pos++
		return p.parens(depth)
	case c == '{':
		p.pos++
		return p.braces(depth)
	case c == '\'' || c == '"':
		return p.str()
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return p.number()
	case isIdentStart(c):
		return p.keyword()
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}

// sequence parses list or tuple items up to the closing byte.
func (p *parser) sequence(closing byte, depth int) (any, error) {
	items := []any{}
	for {
		p.skipSpace()
		if p.peek() == closing {
			p.pos++
			return items, nil
		}
		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closing:
			p.pos++
			return items, nil
		default:
			if p.eof() {
				return nil, p.errorf("unterminated container")
			}
			return nil, p.errorf("expected ',' or %q, got %q", closing, p.peek())
		}
	}
}

// parens parses a tuple, or a parenthesized value when a single item has
// no trailing comma: (1) is 1 but (1,) is a one-item tuple.
func (p *parser) parens(depth int) (any, error) {
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return []any{}, nil
	}

	first, err := p.value(depth + 1)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	switch p.peek() {
	case ')':
		p.pos++
		return first, nil
	case ',':
		p.pos++
	default:
		if p.eof() {
			return nil, p.errorf("unterminated container")
		}
		return nil, p.errorf("expected ',' or ')', got %q", p.peek())
	}

	rest, err := p.sequence(')', depth)
	if err != nil {
		return nil, err
	}
	return append([]any{first}, rest.([]any)...), nil
}

// braces parses a dict, or a set when the first item has no colon.
func (p *parser) braces(depth int) (any, error) {
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return Dict{}, nil
	}

	first, err := p.value(depth + 1)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != ':' {
		return p.setRest(first, depth)
	}

	dict := Dict{}
	key := first
	for {
		if !isKey(key) {
			return nil, p.errorf("unhashable dict key")
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':' in dict")
		}
		p.pos++
		val, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		dict = append(dict, Pair{Key: key, Value: val})

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return dict, nil
		default:
			if p.eof() {
				return nil, p.errorf("unterminated dict")
			}
			return nil, p.errorf("expected ',' or '}', got %q", p.peek())
		}

		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return dict, nil
		}
		key, err = p.value(depth + 1)
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) setRest(first any, depth int) (any, error) {
	items := []any{first}
	for {
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return items, nil
		default:
			if p.eof() {
				return nil, p.errorf("unterminated set")
			}
			return nil, p.errorf("expected ',' or '}', got %q", p.peek())
		}
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return items, nil
		}
		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
}

func (p *parser) keyword() (any, error) {
	start := p.pos
	for !p.eof() && isIdentPart(p.peek()) {
		p.pos++
	}
	switch word := p.src[start:p.pos]; word {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None":
		return nil, nil
	default:
		p.pos = start
		return nil, p.errorf("name %q is not a literal", word)
	}
}

func (p *parser) number() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
		p.skipSpace()
	}
	sign := strings.TrimSpace(p.src[start:p.pos])

	digitsStart := p.pos
	if p.pos+1 < len(p.src) && p.src[p.pos] == '0' && strings.IndexByte("xXoObB", p.src[p.pos+1]) >= 0 {
		return p.prefixedInt(start, sign)
	}

	isFloat := false
scan:
	for !p.eof() {
		c := p.peek()
		switch {
		case isDigit(c) || c == '_':
			p.pos++
		case c == '.':
			isFloat = true
			p.pos++
		case c == 'e' || c == 'E':
			isFloat = true
			p.pos++
			if n := p.peek(); n == '-' || n == '+' {
				p.pos++
			}
		default:
			break scan
		}
	}
	text := p.src[digitsStart:p.pos]
	if text == "" || text == "." {
		p.pos = start
		return nil, p.errorf("malformed number")
	}
	if !p.eof() && isIdentPart(p.peek()) {
		return nil, p.errorf("malformed number %q", text+string(p.peek()))
	}
	if strings.IndexByte(text, '_') >= 0 {
		if !underscoresBetweenDigits(text) {
			return nil, p.errorf("malformed number %q", text)
		}
		text = strings.ReplaceAll(text, "_", "")
	}

	if !isFloat {
		n, err := strconv.ParseInt(sign+text, 10, 64)
		if err == nil {
			return n, nil
		}
		// Integers outside int64 degrade to float.
	}
	f, err := strconv.ParseFloat(sign+text, 64)
	if err != nil && !isRangeErr(err) {
		p.pos = start
		return nil, p.errorf("malformed number %q", sign+text)
	}
	if math.IsNaN(f) {
		return nil, p.errorf("malformed number %q", sign+text)
	}
	return f, nil
}

// prefixedInt parses 0x, 0o and 0b integers. Values beyond int64 degrade to
// float like decimal ones.
func (p *parser) prefixedInt(start int, sign string) (any, error) {
	digitsStart := p.pos
	p.pos += 2
	for !p.eof() && (isHexDigit(p.peek()) || p.peek() == '_') {
		p.pos++
	}
	text := p.src[digitsStart:p.pos]
	if !p.eof() && isIdentPart(p.peek()) {
		return nil, p.errorf("malformed number %q", text+string(p.peek()))
	}

	n, err := strconv.ParseInt(sign+text, 0, 64)
	if err == nil {
		return n, nil
	}
	if isRangeErr(err) {
		if b, ok := new(big.Int).SetString(strings.TrimPrefix(sign+text, "+"), 0); ok {
			f, _ := new(big.Float).SetInt(b).Float64()
			return f, nil
		}
	}
	p.pos = start
	return nil, p.errorf("malformed number %q", sign+text)
}

// underscoresBetweenDigits reports whether every '_' in text sits between two digits.
func underscoresBetweenDigits(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] != '_' {
			continue
		}
		if i == 0 || i == len(text)-1 || !isDigit(text[i-1]) || !isDigit(text[i+1]) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (p *parser) str() (any, error) {
	quote := p.peek()
	p.pos++
	var b strings.Builder
	for {
		if p.eof() {
			return nil, p.errorf("unterminated string")
		}
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\n':
			return nil, p.errorf("newline in string")
		case c == '\\':
			p.pos++
			if err := p.escape(&b); err != nil {
				return nil, err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
}

func (p *parser) escape(b *strings.Builder) error {
	if p.eof() {
		return p.errorf("unterminated escape")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '0':
		b.WriteByte(0)
	case 'x':
		return p.hexRune(b, 2)
	case 'u':
		return p.hexRune(b, 4)
	case 'U':
		return p.hexRune(b, 8)
	default:
		// Unknown escapes are kept verbatim.
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *parser) hexRune(b *strings.Builder, n int) error {
	if p.pos+n > len(p.src) {
		return p.errorf("truncated escape")
	}
	v, err := strconv.ParseUint(p.src[p.pos:p.pos+n], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return p.errorf("invalid escape")
	}
	b.WriteRune(rune(v))
	p.pos += n
	return nil
}

func isKey(v any) bool {
	switch k := v.(type) {
	case []any:
		for _, item := range k {
			if !isKey(item) {
				return false
			}
		}
		return true
	case Dict:
		return false
	default:
		return true
	}
}

func scalarEqual(a, b any) bool {
	switch av := a.(type) {
	case int64:
		switch bv := b.(type) {
		case int64:
			return av == bv
		case float64:
			return float64(av) == bv
		}
	case float64:
		switch bv := b.(type) {
		case float64:
			return av == bv
		case int64:
			return av == float64(bv)
		}
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return false
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
