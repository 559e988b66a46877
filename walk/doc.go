// Package walk extracts data payloads from tokenized job metric documents.
//
// A job metric document maps metric names to metric records. Each record may
// carry a "series" array of per-node records, and each node record may carry
// a "data" member holding either an array of sample values or a scalar
// string. The walker locates every data payload in one forward pass over the
// token sequence, reporting the element count of array payloads and the text
// of scalar ones:
//
//	{
//	    "flops_any": {
//	        "unit": "GF/s",                               <- skipped
//	        "series": [
//	            {"hostname": "n01", "data": [1.0, 2.5]},  <- payload, 2 samples
//	            {"hostname": "n02", "data": "n/a"}        <- payload, scalar
//	        ]
//	    }
//	}
//
// Members other than "series" and "data" are tolerated and skipped at any
// depth. Shape violations fail fast with a sentinel from the errs package:
// a non-object root, a non-string key, or a value whose type does not match
// its position in the schema.
//
// # Counter-Based Traversal
//
// The token sequence is flat and carries no parent links, so the walker
// cannot ask "where does this subtree end". Instead it tracks a single
// pending-token counter: starting at one for the top-level value, every
// consumed token redeems one unit and adds the number of direct children it
// promises. The counter reaches zero exactly on the last token of the
// top-level value. Skipping an irrelevant subtree runs the same accounting
// on a second counter seeded with just that subtree, while the outer counter
// keeps advancing in parallel. Nesting of any depth costs a handful of
// integers, with no recursion and no stack.
//
// # Usage
//
//	doc, err := token.Tokenize(src)
//	if err != nil {
//	    return err
//	}
//	w, err := walk.NewWalker(doc, src)
//	if err != nil {
//	    return err
//	}
//	res, err := w.Walk()
//	if err != nil {
//	    return err
//	}
//	for _, p := range res.Payloads {
//	    if p.IsScalar() {
//	        fmt.Printf("%s[%d] = %q\n", p.Metric, p.NodeIndex, p.Scalar)
//	    } else {
//	        fmt.Printf("%s[%d] = %d samples\n", p.Metric, p.NodeIndex, p.Count)
//	    }
//	}
//
// The walker visits each token exactly once and holds only scalar state, so
// walking runs in time linear in token count and constant extra space.
// Concurrent documents need independent Walker instances; there is no shared
// state between walks.
package walk
