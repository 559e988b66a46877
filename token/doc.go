// Package token flattens a JSON document into an ordered token sequence.
//
// The tokenizer converts the raw bytes of exactly one top-level JSON value
// into a Document: a flat, preorder slice of Token descriptors. No tree is
// built and no values are decoded; each Token records only its kind, its byte
// span in the source buffer, and how many direct children it has. Walking the
// sequence front to back visits every value in document order.
//
// # Token Layout
//
// Tokens appear in preorder: a container's token comes before every token of
// its descendants, and all of its descendants come before any later sibling.
// Count stores member pairs for objects and element counts for arrays, so the
// direct children of an object occupy the 2*Count tokens (key and value per
// pair) immediately following it, and the direct children of an array occupy
// the next Count tokens plus whatever those elements contain.
//
// For example, tokenizing
//
//	{"flops":{"series":[]}}
//
// produces five tokens:
//
//	0: Object  Count=1   the whole document
//	1: String  "flops"   key of pair 0
//	2: Object  Count=1   value of pair 0
//	3: String  "series"  key of pair 0 of token 2
//	4: Array   Count=0   value of pair 0 of token 2
//
// # Usage
//
//	doc, err := token.Tokenize(data)
//	if err != nil {
//	    // errs.ErrInvalidJSON or errs.ErrTruncatedJSON
//	}
//	root := doc[0]
//	fmt.Println(root.Kind, root.Count)
//
// Tokens hold offsets, not bytes: extracting text requires the original
// source buffer via Token.Span or Token.Text. The buffer must therefore stay
// alive and unmodified for as long as spans into it are used.
//
// # Input Contract
//
// The input must contain one complete JSON value, optionally preceded by
// whitespace. Bytes after the value are ignored, so a document followed by
// trailing garbage still tokenizes. Invalid bytes inside the value fail with
// errs.ErrInvalidJSON; input that ends before the value is complete,
// including empty input, fails with errs.ErrTruncatedJSON.
package token
