package walk

import (
	"fmt"

	"github.com/arloliu/jobscan/errs"
	"github.com/arloliu/jobscan/format"
	"github.com/arloliu/jobscan/internal/hash"
	"github.com/arloliu/jobscan/internal/options"
	"github.com/arloliu/jobscan/token"
)

// Recognized member keys. Both are compared against raw string spans, so a
// key written with escape sequences does not match.
const (
	keySeries = "series"
	keyData   = "data"
)

// Walker traverses one token document in a single forward pass, validates it
// against the metric document schema and collects every data payload.
//
// The walker never backtracks and never builds a tree: nesting is tracked by
// integer bookkeeping alone. One counter bounds the whole top-level value,
// an independent counter bounds the subtree being skipped, and small
// per-level counters track how many pairs or elements of the container under
// inspection are still unmatched.
//
// Note: The Walker is NOT thread-safe. Each instance must be used by a
// single goroutine.
//
// Note: The Walker is NOT reusable. After calling Walk, create a new walker
// for the next document.
type Walker struct {
	doc token.Document
	src []byte

	state State
	idx   int

	// remaining counts the tokens still owed to the top-level value: each
	// consumed token redeems one and promises its direct children. The walk
	// is complete exactly when it reaches zero.
	remaining int

	// skipRemaining applies the same accounting to the subtree being
	// discarded while state is StateSkip.
	skipRemaining int

	// resume is the member list whose pair completes when a skip ends:
	// StateMetricMember or StateNodeMember.
	resume State

	memberPairs int // unmatched pairs of the current metric record
	nodeCount   int // unvisited elements of the current series array
	nodePairs   int // unmatched pairs of the current node record
	nodeIndex   int // position of the current node record in its series

	metric   string
	metricID uint64

	result Result
	trace  TraceFunc
}

// NewWalker creates a Walker over a tokenized document and the source buffer
// it was produced from. The buffer is needed to compare member keys and to
// extract metric names and scalar payloads.
//
// Parameters:
//   - doc: Token document, as produced by token.Tokenize
//   - src: The exact byte buffer doc was tokenized from
//   - opts: Optional walker settings, e.g. WithTrace
//
// Returns:
//   - *Walker: Walker positioned at the first token
//   - error: errs.ErrTruncatedJSON when doc is empty, or an option error
func NewWalker(doc token.Document, src []byte, opts ...WalkerOption) (*Walker, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: document has no tokens", errs.ErrTruncatedJSON)
	}

	w := &Walker{
		doc:       doc,
		src:       src,
		state:     StateStart,
		remaining: 1,
		nodeIndex: -1,
	}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// Walk consumes the document and returns the collected payloads and
// aggregate counts.
//
// The walk is fail-fast: the first structural mismatch stops it and the
// partially filled Result is returned alongside the error. Unknown members
// anywhere in the structure are skipped without error, whatever their type
// or nesting depth.
//
// Returns:
//   - Result: Discovered payloads plus metric, node and sample counts
//   - error: errs.ErrUnexpectedRoot, errs.ErrUnexpectedKeyType or
//     errs.ErrUnexpectedValueType on a schema mismatch;
//     errs.ErrTruncatedJSON when the document holds fewer tokens than its
//     child counts promise
//
// Example:
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
//	for _, p := range res.Payloads {
//	    fmt.Println(p.Metric, p.NodeIndex, p.Count)
//	}
func (w *Walker) Walk() (Result, error) {
	for w.remaining > 0 {
		if w.idx >= len(w.doc) {
			return w.result, fmt.Errorf("%w: token stream ended with %d values pending",
				errs.ErrTruncatedJSON, w.remaining)
		}

		tok := w.doc[w.idx]
		if w.trace != nil {
			w.trace(TraceEvent{Index: w.idx, Token: tok, State: w.state})
		}

		w.remaining--
		w.remaining += contribution(tok)
		w.idx++

		if err := w.consume(tok); err != nil {
			return w.result, err
		}
	}

	return w.result, nil
}

// contribution is the number of direct-child tokens a consumed token adds to
// a pending count: key and value per pair for objects, one per element for
// arrays, none for leaves.
func contribution(tok token.Token) int {
	switch tok.Kind {
	case format.KindObject:
		return 2 * tok.Count
	case format.KindArray:
		return tok.Count
	default:
		return 0
	}
}

func (w *Walker) consume(tok token.Token) error {
	switch w.state {
	case StateSkip:
		w.consumeSkipped(tok)
		return nil
	case StateStart:
		return w.consumeRoot(tok)
	case StateMetricKey:
		return w.consumeMetricKey(tok)
	case StateMetricValue:
		return w.consumeMetricValue(tok)
	case StateMetricMember:
		return w.consumeMetricMember(tok)
	case StateSeries:
		return w.consumeSeries(tok)
	case StateNodeArray:
		return w.consumeNodeElement(tok)
	case StateNodeMember:
		return w.consumeNodeMember(tok)
	case StateData:
		return w.consumeData(tok)
	}

	return nil
}

func (w *Walker) consumeRoot(tok token.Token) error {
	if tok.Kind != format.KindObject {
		return fmt.Errorf("%w: document root is %s", errs.ErrUnexpectedRoot, tok.Kind)
	}

	w.state = StateMetricKey

	return nil
}

func (w *Walker) consumeMetricKey(tok token.Token) error {
	if tok.Kind != format.KindString {
		return fmt.Errorf("%w: metric key is %s", errs.ErrUnexpectedKeyType, tok.Kind)
	}

	w.metric = tok.Text(w.src)
	w.metricID = hash.Sum(tok.Span(w.src))
	w.state = StateMetricValue

	return nil
}

func (w *Walker) consumeMetricValue(tok token.Token) error {
	if tok.Kind != format.KindObject {
		return fmt.Errorf("%w: metric %q value is %s, want Object",
			errs.ErrUnexpectedValueType, w.metric, tok.Kind)
	}

	w.result.Metrics++
	w.memberPairs = tok.Count
	if w.memberPairs == 0 {
		w.completeMetric()
		return nil
	}
	w.state = StateMetricMember

	return nil
}

func (w *Walker) consumeMetricMember(tok token.Token) error {
	if tok.Kind != format.KindString {
		return fmt.Errorf("%w: member key of metric %q is %s",
			errs.ErrUnexpectedKeyType, w.metric, tok.Kind)
	}

	if string(tok.Span(w.src)) == keySeries {
		w.state = StateSeries
	} else {
		w.skipNextValue(StateMetricMember)
	}

	return nil
}

func (w *Walker) consumeSeries(tok token.Token) error {
	if tok.Kind != format.KindArray {
		return fmt.Errorf("%w: series of metric %q is %s, want Array",
			errs.ErrUnexpectedValueType, w.metric, tok.Kind)
	}

	w.nodeCount = tok.Count
	w.nodeIndex = -1
	if w.nodeCount == 0 {
		w.completeMetricMember()
		return nil
	}
	w.state = StateNodeArray

	return nil
}

func (w *Walker) consumeNodeElement(tok token.Token) error {
	if tok.Kind != format.KindObject {
		return fmt.Errorf("%w: series entry %d of metric %q is %s, want Object",
			errs.ErrUnexpectedValueType, w.nodeIndex+1, w.metric, tok.Kind)
	}

	w.nodeCount--
	w.nodeIndex++
	w.result.Nodes++
	w.nodePairs = tok.Count
	if w.nodePairs == 0 {
		w.completeNode()
		return nil
	}
	w.state = StateNodeMember

	return nil
}

func (w *Walker) consumeNodeMember(tok token.Token) error {
	if tok.Kind != format.KindString {
		return fmt.Errorf("%w: member key of series entry %d in metric %q is %s",
			errs.ErrUnexpectedKeyType, w.nodeIndex, w.metric, tok.Kind)
	}

	if string(tok.Span(w.src)) == keyData {
		w.state = StateData
	} else {
		w.skipNextValue(StateNodeMember)
	}

	return nil
}

func (w *Walker) consumeData(tok token.Token) error {
	switch tok.Kind {
	case format.KindArray:
		w.result.Payloads = append(w.result.Payloads, Payload{
			Metric:    w.metric,
			MetricID:  w.metricID,
			NodeIndex: w.nodeIndex,
			Kind:      format.KindArray,
			Count:     tok.Count,
		})
		w.result.Samples += tok.Count

		// The samples themselves are not interpreted; discard the elements.
		w.skipChildren(tok, StateNodeMember)
	case format.KindString:
		w.result.Payloads = append(w.result.Payloads, Payload{
			Metric:    w.metric,
			MetricID:  w.metricID,
			NodeIndex: w.nodeIndex,
			Kind:      format.KindString,
			Scalar:    tok.Text(w.src),
		})
		w.completeNodeMember()
	default:
		return fmt.Errorf("%w: data of series entry %d in metric %q is %s, want Array or String",
			errs.ErrUnexpectedValueType, w.nodeIndex, w.metric, tok.Kind)
	}

	return nil
}

// consumeSkipped advances the skip counter by the standard accounting until
// the discarded subtree is exhausted, then completes the member pair the
// subtree belonged to.
func (w *Walker) consumeSkipped(tok token.Token) {
	w.skipRemaining--
	w.skipRemaining += contribution(tok)
	if w.skipRemaining > 0 {
		return
	}

	if w.resume == StateNodeMember {
		w.completeNodeMember()
	} else {
		w.completeMetricMember()
	}
}

// skipNextValue enters skip mode for a value token that has not been
// consumed yet. The seed of one covers leaves and containers alike: the
// value token's own consumption redeems it and promises its children.
func (w *Walker) skipNextValue(resume State) {
	w.skipRemaining = 1
	w.resume = resume
	w.state = StateSkip
}

// skipChildren enters skip mode for the children of a container that has
// already been consumed. A container without children completes its member
// pair immediately.
func (w *Walker) skipChildren(tok token.Token, resume State) {
	n := contribution(tok)
	if n == 0 {
		if resume == StateNodeMember {
			w.completeNodeMember()
		} else {
			w.completeMetricMember()
		}

		return
	}

	w.skipRemaining = n
	w.resume = resume
	w.state = StateSkip
}

// completeMetricMember marks one pair of the current metric record matched,
// moving on to the next pair or finishing the record.
func (w *Walker) completeMetricMember() {
	w.memberPairs--
	if w.memberPairs == 0 {
		w.completeMetric()
	} else {
		w.state = StateMetricMember
	}
}

// completeMetric finishes one metric record. The walk expects the next
// metric key; when the root object is exhausted the outer counter reaches
// zero instead and the walk ends.
func (w *Walker) completeMetric() {
	w.state = StateMetricKey
}

// completeNode finishes one node record: the next series element follows,
// or the series is exhausted and its member pair completes.
func (w *Walker) completeNode() {
	if w.nodeCount == 0 {
		w.completeMetricMember()
	} else {
		w.state = StateNodeArray
	}
}

// completeNodeMember marks one pair of the current node record matched,
// moving on to the next pair or finishing the node.
func (w *Walker) completeNodeMember() {
	w.nodePairs--
	if w.nodePairs == 0 {
		w.completeNode()
	} else {
		w.state = StateNodeMember
	}
}
