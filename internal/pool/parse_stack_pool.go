package pool

import "sync"

// parseStackMaxThreshold caps the capacity of stacks returned to the pool.
// Documents nested deeper than this are rare enough that their stacks are
// better dropped than kept alive.
const parseStackMaxThreshold = 4096

// ParseStack is a reusable stack of token indices. The tokenizer pushes the
// index of every open container and pops it when the container closes, so the
// stack depth equals the current nesting depth.
type ParseStack struct {
	s []int
}

// Push appends an index to the top of the stack.
func (ps *ParseStack) Push(idx int) {
	ps.s = append(ps.s, idx)
}

// Pop removes and returns the top index. It panics on an empty stack; callers
// track depth and only pop while a container is open.
func (ps *ParseStack) Pop() int {
	idx := ps.s[len(ps.s)-1]
	ps.s = ps.s[:len(ps.s)-1]

	return idx
}

// Top returns the top index without removing it.
func (ps *ParseStack) Top() int {
	return ps.s[len(ps.s)-1]
}

// Len returns the current stack depth.
func (ps *ParseStack) Len() int {
	return len(ps.s)
}

// Reset empties the stack while keeping its allocation for reuse.
func (ps *ParseStack) Reset() {
	ps.s = ps.s[:0]
}

var parseStackPool = sync.Pool{
	New: func() any { return &ParseStack{} },
}

// GetParseStack retrieves an empty ParseStack from the pool.
func GetParseStack() *ParseStack {
	ps, _ := parseStackPool.Get().(*ParseStack)
	return ps
}

// PutParseStack returns a ParseStack to the pool for reuse.
func PutParseStack(ps *ParseStack) {
	if ps == nil {
		return
	}

	if cap(ps.s) > parseStackMaxThreshold {
		return
	}

	ps.Reset()
	parseStackPool.Put(ps)
}
