package walk

import "github.com/arloliu/jobscan/format"

// Payload describes one extracted "data" value: which metric and node it
// belongs to and either its element count or its scalar text.
//
// Kind is format.KindArray or format.KindString and selects which of Count
// and Scalar is meaningful. Metric and Scalar are copies, so a Payload stays
// valid after the source buffer is released or reused.
type Payload struct {
	// Metric is the metric name the payload belongs to.
	Metric string
	// MetricID is the xxHash64 of the metric name.
	MetricID uint64
	// NodeIndex is the position of the node record in its series array,
	// starting at 0.
	NodeIndex int
	// Kind is the payload's value kind: KindArray or KindString.
	Kind format.Kind
	// Count is the number of direct elements of an array payload.
	Count int
	// Scalar is the text of a string payload, escapes kept verbatim.
	Scalar string
}

// IsScalar reports whether the payload is a scalar string rather than a
// sample array.
func (p Payload) IsScalar() bool {
	return p.Kind == format.KindString
}

// Result is the outcome of one complete walk.
type Result struct {
	// Payloads lists every discovered data payload in document order.
	Payloads []Payload
	// Metrics is the number of metric records visited.
	Metrics int
	// Nodes is the number of node records visited across all series.
	Nodes int
	// Samples is the total direct element count over all array payloads.
	Samples int
}
