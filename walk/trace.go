package walk

import (
	"fmt"
	"io"

	"github.com/arloliu/jobscan/internal/options"
	"github.com/arloliu/jobscan/token"
)

// TraceEvent describes one token visit: which token is about to be consumed
// and the state consuming it. Events are diagnostic only; they carry no
// correctness guarantees beyond reflecting the walk order.
type TraceEvent struct {
	// Index is the token's position in the document.
	Index int
	// Token is the token being consumed.
	Token token.Token
	// State is the walker state consuming the token.
	State State
}

// TraceFunc receives one TraceEvent per visited token.
type TraceFunc func(TraceEvent)

// WalkerOption configures a Walker at construction time.
type WalkerOption = options.Option[*Walker]

// WithTrace registers fn to be called for every token the walk visits,
// including tokens consumed in skip mode. A nil fn disables tracing.
func WithTrace(fn TraceFunc) WalkerOption {
	return options.NoError(func(w *Walker) {
		w.trace = fn
	})
}

// WithTraceWriter streams one line per visited token to out, annotated with
// the token index, the consuming state, the token kind and its span. Handy
// for debugging unexpected documents:
//
//	w, err := walk.NewWalker(doc, src, walk.WithTraceWriter(os.Stderr))
func WithTraceWriter(out io.Writer) WalkerOption {
	return options.NoError(func(w *Walker) {
		w.trace = func(ev TraceEvent) {
			fmt.Fprintf(out, "#%04d %-12s %-9s count=%d span=[%d,%d)\n",
				ev.Index, ev.State, ev.Token.Kind, ev.Token.Count, ev.Token.Start, ev.Token.End)
		}
	})
}
