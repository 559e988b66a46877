package token

import "github.com/arloliu/jobscan/format"

// Token is one flattened node of a JSON value tree.
//
// Start and End delimit the token's half-open byte range [Start, End) in the
// source buffer. For strings the range covers the content between the quotes,
// with escape sequences kept verbatim; for every other kind it covers the
// full literal text, including the braces or brackets of a container.
//
// Count is the number of direct children: member pairs for an object,
// elements for an array, zero for strings and primitives.
type Token struct {
	Kind  format.Kind
	Start int
	End   int
	Count int
}

// Span returns the token's raw bytes as a subslice of src. The result
// aliases src and is valid only while src stays unmodified.
func (t Token) Span(src []byte) []byte {
	return src[t.Start:t.End]
}

// Text returns the token's raw bytes as a freshly allocated string. Unlike
// Span, the result does not alias src, so it survives reuse or release of
// the source buffer.
func (t Token) Text(src []byte) string {
	return string(src[t.Start:t.End])
}

// IsContainer reports whether the token is an object or an array.
func (t Token) IsContainer() bool {
	return t.Kind.IsContainer()
}

// Document is the ordered token sequence produced by tokenizing one JSON
// value. Index 0 is always the top-level value; the remaining tokens follow
// in preorder. A Document is immutable once produced.
type Document []Token
