package walk

// State identifies the walker's position in the metric document schema: the
// class of token it expects to consume next.
type State uint8

const (
	// StateStart expects the top-level value, which must be an object.
	StateStart State = iota
	// StateMetricKey expects a metric name key of the root object.
	StateMetricKey
	// StateMetricValue expects a metric record, which must be an object.
	StateMetricValue
	// StateMetricMember expects a member key inside a metric record.
	StateMetricMember
	// StateSeries expects the value of a "series" member, which must be an
	// array.
	StateSeries
	// StateNodeArray expects an element of a series array, which must be an
	// object describing one node.
	StateNodeArray
	// StateNodeMember expects a member key inside a node record.
	StateNodeMember
	// StateData expects the value of a "data" member, which must be an array
	// of samples or a scalar string.
	StateData
	// StateSkip consumes tokens of an irrelevant subtree without schema
	// checks until the subtree is exhausted.
	StateSkip
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "Start"
	case StateMetricKey:
		return "MetricKey"
	case StateMetricValue:
		return "MetricValue"
	case StateMetricMember:
		return "MetricMember"
	case StateSeries:
		return "Series"
	case StateNodeArray:
		return "NodeArray"
	case StateNodeMember:
		return "NodeMember"
	case StateData:
		return "Data"
	case StateSkip:
		return "Skip"
	default:
		return "Unknown"
	}
}
