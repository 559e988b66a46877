package token

import (
	"fmt"

	"github.com/arloliu/jobscan/errs"
	"github.com/arloliu/jobscan/format"
	"github.com/arloliu/jobscan/internal/options"
	"github.com/arloliu/jobscan/internal/pool"
)

const (
	// defaultTokenCapacity is the floor for initial token storage.
	defaultTokenCapacity = 256
	// maxInitialTokenCapacity caps the pre-allocation for large inputs;
	// storage still grows on demand past this point.
	maxInitialTokenCapacity = 64 * 1024
)

// TokenizeOption configures a single Tokenize call.
type TokenizeOption = options.Option[*tokenizer]

// WithCapacityHint sets the initial token storage capacity. Useful when the
// caller knows the approximate token count, for example from a previous parse
// of a similarly shaped document. Hints below 1 are ignored.
func WithCapacityHint(n int) TokenizeOption {
	return options.NoError(func(tk *tokenizer) {
		tk.capHint = n
	})
}

// Tokenize converts src into the Document describing its first JSON value.
//
// The input must contain one complete JSON value, optionally surrounded by
// whitespace before it and arbitrary ignored bytes after it. The returned
// Document holds byte offsets into src, so src must stay alive and
// unmodified while the Document is in use.
//
// Parameters:
//   - src: Raw bytes of one JSON document
//   - opts: Optional tokenizer settings, e.g. WithCapacityHint
//
// Returns:
//   - Document: Preorder token sequence for the first JSON value in src
//   - error: errs.ErrInvalidJSON when a byte cannot be part of valid JSON,
//     errs.ErrTruncatedJSON when the input ends before the value is complete
//
// Example:
//
//	doc, err := token.Tokenize([]byte(`{"flops":{"series":[]}}`))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(doc), doc[0].Count)
func Tokenize(src []byte, opts ...TokenizeOption) (Document, error) {
	tk := &tokenizer{src: src}
	if err := options.Apply(tk, opts...); err != nil {
		return nil, err
	}

	if tk.capHint < 1 {
		tk.capHint = estimateTokenCount(len(src))
	}
	tk.tokens = make([]Token, 0, tk.capHint)

	tk.stack = pool.GetParseStack()
	defer pool.PutParseStack(tk.stack)

	if err := tk.run(); err != nil {
		return nil, err
	}

	return Document(tk.tokens), nil
}

// estimateTokenCount guesses the token storage to pre-allocate for an input
// of srcLen bytes. Metric documents run well under one token per eight
// bytes; small inputs round up to a useful floor and huge inputs are capped
// so the first allocation stays modest.
func estimateTokenCount(srcLen int) int {
	est := srcLen / 8
	if est < defaultTokenCapacity {
		return defaultTokenCapacity
	}
	if est > maxInitialTokenCapacity {
		return maxInitialTokenCapacity
	}

	return est
}

// expectation is the scanner's position in the JSON grammar: the class of
// byte allowed next.
type expectation uint8

const (
	expectValue          expectation = iota // a value: top level, after ':' or after ',' in an array
	expectElementOrClose                    // first array slot: a value or ']'
	expectKeyOrClose                        // first object slot: a key or '}'
	expectKey                               // after ',' in an object: a key
	expectColon                             // after a key: ':'
	expectObjectNext                        // after a member value: ',' or '}'
	expectArrayNext                         // after an element: ',' or ']'
)

// tokenizer is the single-pass scanner state. It tracks open containers on a
// stack of token indices so each closing brace can finalize its container's
// span, and routes between grammar expectations without recursion.
type tokenizer struct {
	src     []byte
	pos     int
	tokens  []Token
	stack   *pool.ParseStack
	expect  expectation
	done    bool
	capHint int
}

func (tk *tokenizer) run() error {
	for !tk.done {
		c, ok := tk.skipSpace()
		if !ok {
			return fmt.Errorf("%w: input ended at offset %d", errs.ErrTruncatedJSON, tk.pos)
		}

		var err error
		switch tk.expect {
		case expectValue, expectElementOrClose:
			err = tk.scanValue(c)
		case expectKeyOrClose, expectKey:
			err = tk.scanKey(c)
		case expectColon:
			err = tk.scanColon(c)
		case expectObjectNext:
			err = tk.scanObjectNext(c)
		case expectArrayNext:
			err = tk.scanArrayNext(c)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// skipSpace advances past insignificant whitespace and returns the next
// significant byte without consuming it.
func (tk *tokenizer) skipSpace() (byte, bool) {
	for tk.pos < len(tk.src) {
		c := tk.src[tk.pos]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return c, true
		}
		tk.pos++
	}

	return 0, false
}

func (tk *tokenizer) scanValue(c byte) error {
	if c == ']' && tk.expect == expectElementOrClose {
		tk.closeContainer()
		return nil
	}

	switch c {
	case '{':
		tk.openContainer(format.KindObject)
		tk.expect = expectKeyOrClose
	case '[':
		tk.openContainer(format.KindArray)
		tk.expect = expectElementOrClose
	case '"':
		start, end, err := tk.scanString()
		if err != nil {
			return err
		}
		tk.emitValue(Token{Kind: format.KindString, Start: start, End: end})
		tk.valueDone()
	case 't', 'f', 'n', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		start := tk.pos
		if err := tk.scanPrimitive(c); err != nil {
			return err
		}
		tk.emitValue(Token{Kind: format.KindPrimitive, Start: start, End: tk.pos})
		tk.valueDone()
	default:
		return fmt.Errorf("%w: unexpected character %q at offset %d", errs.ErrInvalidJSON, c, tk.pos)
	}

	return nil
}

func (tk *tokenizer) scanKey(c byte) error {
	if c == '}' && tk.expect == expectKeyOrClose {
		tk.closeContainer()
		return nil
	}

	if c != '"' {
		return fmt.Errorf("%w: expected object key at offset %d, got %q", errs.ErrInvalidJSON, tk.pos, c)
	}

	start, end, err := tk.scanString()
	if err != nil {
		return err
	}

	// A key starts a new member pair of the enclosing object.
	tk.tokens[tk.stack.Top()].Count++
	tk.appendToken(Token{Kind: format.KindString, Start: start, End: end})
	tk.expect = expectColon

	return nil
}

func (tk *tokenizer) scanColon(c byte) error {
	if c != ':' {
		return fmt.Errorf("%w: expected ':' at offset %d, got %q", errs.ErrInvalidJSON, tk.pos, c)
	}
	tk.pos++
	tk.expect = expectValue

	return nil
}

func (tk *tokenizer) scanObjectNext(c byte) error {
	switch c {
	case ',':
		tk.pos++
		tk.expect = expectKey
	case '}':
		tk.closeContainer()
	default:
		return fmt.Errorf("%w: expected ',' or '}' at offset %d, got %q", errs.ErrInvalidJSON, tk.pos, c)
	}

	return nil
}

func (tk *tokenizer) scanArrayNext(c byte) error {
	switch c {
	case ',':
		tk.pos++
		tk.expect = expectValue
	case ']':
		tk.closeContainer()
	default:
		return fmt.Errorf("%w: expected ',' or ']' at offset %d, got %q", errs.ErrInvalidJSON, tk.pos, c)
	}

	return nil
}

// openContainer emits the container's token with an open span and pushes its
// index so the matching close can finalize it.
func (tk *tokenizer) openContainer(kind format.Kind) {
	idx := tk.emitValue(Token{Kind: kind, Start: tk.pos, End: -1})
	tk.stack.Push(idx)
	tk.pos++
}

func (tk *tokenizer) closeContainer() {
	idx := tk.stack.Pop()
	tk.pos++
	tk.tokens[idx].End = tk.pos
	tk.valueDone()
}

// valueDone routes the scanner after a complete value: to the enclosing
// container's separator expectation, or to completion when the value was the
// top-level one. Scanning stops there; trailing bytes are never inspected.
func (tk *tokenizer) valueDone() {
	if tk.stack.Len() == 0 {
		tk.done = true
		return
	}

	if tk.tokens[tk.stack.Top()].Kind == format.KindObject {
		tk.expect = expectObjectNext
	} else {
		tk.expect = expectArrayNext
	}
}

// emitValue appends a token in value position, crediting it to a directly
// enclosing array. Object members are credited at their keys instead, so
// member values add nothing here.
func (tk *tokenizer) emitValue(t Token) int {
	if tk.stack.Len() > 0 {
		parent := &tk.tokens[tk.stack.Top()]
		if parent.Kind == format.KindArray {
			parent.Count++
		}
	}

	return tk.appendToken(t)
}

func (tk *tokenizer) appendToken(t Token) int {
	if len(tk.tokens) == cap(tk.tokens) {
		tk.growTokens()
	}
	tk.tokens = append(tk.tokens, t)

	return len(tk.tokens) - 1
}

// growTokens enlarges token storage geometrically: doubling while small,
// then 25% steps so large documents do not overshoot.
func (tk *tokenizer) growTokens() {
	newCap := cap(tk.tokens) * 2
	if cap(tk.tokens) > 4*maxInitialTokenCapacity {
		newCap = cap(tk.tokens) + cap(tk.tokens)/4
	}

	grown := make([]Token, len(tk.tokens), newCap)
	copy(grown, tk.tokens)
	tk.tokens = grown
}

// scanString consumes a string from its opening quote through its closing
// quote and returns the content's [start, end) span. Escape sequences are
// validated but kept verbatim in the span.
func (tk *tokenizer) scanString() (int, int, error) {
	tk.pos++ // opening quote
	start := tk.pos

	for tk.pos < len(tk.src) {
		c := tk.src[tk.pos]
		switch {
		case c == '"':
			end := tk.pos
			tk.pos++

			return start, end, nil
		case c == '\\':
			if err := tk.scanEscape(); err != nil {
				return 0, 0, err
			}
		case c < 0x20:
			return 0, 0, fmt.Errorf("%w: unescaped control character 0x%02x at offset %d", errs.ErrInvalidJSON, c, tk.pos)
		default:
			tk.pos++
		}
	}

	return 0, 0, fmt.Errorf("%w: unterminated string starting at offset %d", errs.ErrTruncatedJSON, start-1)
}

func (tk *tokenizer) scanEscape() error {
	tk.pos++ // backslash
	if tk.pos >= len(tk.src) {
		return fmt.Errorf("%w: input ended inside escape sequence", errs.ErrTruncatedJSON)
	}

	switch tk.src[tk.pos] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		tk.pos++
		return nil
	case 'u':
		tk.pos++
		for i := 0; i < 4; i++ {
			if tk.pos >= len(tk.src) {
				return fmt.Errorf("%w: input ended inside unicode escape", errs.ErrTruncatedJSON)
			}
			if !isHexDigit(tk.src[tk.pos]) {
				return fmt.Errorf("%w: malformed unicode escape at offset %d", errs.ErrInvalidJSON, tk.pos)
			}
			tk.pos++
		}

		return nil
	}

	return fmt.Errorf("%w: invalid escape character %q at offset %d", errs.ErrInvalidJSON, tk.src[tk.pos], tk.pos)
}

func (tk *tokenizer) scanPrimitive(c byte) error {
	switch c {
	case 't':
		return tk.scanLiteral("true")
	case 'f':
		return tk.scanLiteral("false")
	case 'n':
		return tk.scanLiteral("null")
	}

	return tk.scanNumber()
}

func (tk *tokenizer) scanLiteral(word string) error {
	for i := 0; i < len(word); i++ {
		if tk.pos+i >= len(tk.src) {
			return fmt.Errorf("%w: input ended inside literal at offset %d", errs.ErrTruncatedJSON, tk.pos)
		}
		if tk.src[tk.pos+i] != word[i] {
			return fmt.Errorf("%w: malformed literal at offset %d", errs.ErrInvalidJSON, tk.pos)
		}
	}
	tk.pos += len(word)

	return tk.checkPrimitiveEnd()
}

func (tk *tokenizer) scanNumber() error {
	if tk.src[tk.pos] == '-' {
		tk.pos++
	}

	// Integer part: a lone zero, or a nonzero digit run.
	switch {
	case tk.pos >= len(tk.src):
		return fmt.Errorf("%w: input ended inside number", errs.ErrTruncatedJSON)
	case tk.src[tk.pos] == '0':
		tk.pos++
	case isDigit(tk.src[tk.pos]):
		for tk.pos < len(tk.src) && isDigit(tk.src[tk.pos]) {
			tk.pos++
		}
	default:
		return fmt.Errorf("%w: malformed number at offset %d", errs.ErrInvalidJSON, tk.pos)
	}

	if tk.pos < len(tk.src) && tk.src[tk.pos] == '.' {
		tk.pos++
		if err := tk.scanDigits(); err != nil {
			return err
		}
	}

	if tk.pos < len(tk.src) && (tk.src[tk.pos] == 'e' || tk.src[tk.pos] == 'E') {
		tk.pos++
		if tk.pos < len(tk.src) && (tk.src[tk.pos] == '+' || tk.src[tk.pos] == '-') {
			tk.pos++
		}
		if err := tk.scanDigits(); err != nil {
			return err
		}
	}

	return tk.checkPrimitiveEnd()
}

// scanDigits consumes one or more digits.
func (tk *tokenizer) scanDigits() error {
	if tk.pos >= len(tk.src) {
		return fmt.Errorf("%w: input ended inside number", errs.ErrTruncatedJSON)
	}
	if !isDigit(tk.src[tk.pos]) {
		return fmt.Errorf("%w: malformed number at offset %d", errs.ErrInvalidJSON, tk.pos)
	}
	for tk.pos < len(tk.src) && isDigit(tk.src[tk.pos]) {
		tk.pos++
	}

	return nil
}

// checkPrimitiveEnd verifies that a just-scanned literal or number ends at a
// structural boundary, so inputs like "truex" or "12abc" are rejected
// instead of being split into a value plus trailing garbage.
func (tk *tokenizer) checkPrimitiveEnd() error {
	if tk.pos >= len(tk.src) {
		return nil
	}

	switch tk.src[tk.pos] {
	case ' ', '\t', '\n', '\r', ',', ']', '}':
		return nil
	}

	return fmt.Errorf("%w: unexpected character %q at offset %d", errs.ErrInvalidJSON, tk.src[tk.pos], tk.pos)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
