package walk

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/jobscan/errs"
	"github.com/arloliu/jobscan/format"
	"github.com/arloliu/jobscan/internal/hash"
	"github.com/arloliu/jobscan/token"
)

// walkString tokenizes input and walks it in one step.
func walkString(t *testing.T, input string, opts ...WalkerOption) (Result, error) {
	t.Helper()

	src := []byte(input)
	doc, err := token.Tokenize(src)
	require.NoError(t, err, "input must tokenize: %q", input)

	w, err := NewWalker(doc, src, opts...)
	require.NoError(t, err)

	return w.Walk()
}

func TestWalk_SingleArrayPayload(t *testing.T) {
	res, err := walkString(t, `{"flops":{"series":[{"nodeId":1,"data":[1,2,3]}]}}`)
	require.NoError(t, err)

	require.Len(t, res.Payloads, 1)
	p := res.Payloads[0]
	assert.Equal(t, "flops", p.Metric)
	assert.Equal(t, hash.ID("flops"), p.MetricID)
	assert.Equal(t, 0, p.NodeIndex)
	assert.Equal(t, format.KindArray, p.Kind)
	assert.Equal(t, 3, p.Count)
	assert.False(t, p.IsScalar())

	assert.Equal(t, 1, res.Metrics)
	assert.Equal(t, 1, res.Nodes)
	assert.Equal(t, 3, res.Samples)
}

func TestWalk_ScalarPayload(t *testing.T) {
	res, err := walkString(t, `{"flops":{"unit":"GF/s","series":[{"data":"n/a"}]}}`)
	require.NoError(t, err)

	require.Len(t, res.Payloads, 1)
	p := res.Payloads[0]
	assert.Equal(t, "flops", p.Metric)
	assert.Equal(t, 0, p.NodeIndex)
	assert.Equal(t, format.KindString, p.Kind)
	assert.Equal(t, "n/a", p.Scalar)
	assert.True(t, p.IsScalar())
	assert.Equal(t, 0, res.Samples)
}

func TestWalk_EmptySeries(t *testing.T) {
	res, err := walkString(t, `{"flops":{"series":[]}}`)
	require.NoError(t, err)

	assert.Empty(t, res.Payloads)
	assert.Equal(t, 1, res.Metrics)
	assert.Equal(t, 0, res.Nodes)
}

func TestWalk_EmptyDataArray(t *testing.T) {
	res, err := walkString(t, `{"flops":{"series":[{"data":[]}]}}`)
	require.NoError(t, err)

	require.Len(t, res.Payloads, 1)
	assert.Equal(t, format.KindArray, res.Payloads[0].Kind)
	assert.Equal(t, 0, res.Payloads[0].Count)
}

func TestWalk_EmptyScalarPayload(t *testing.T) {
	res, err := walkString(t, `{"flops":{"series":[{"data":""}]}}`)
	require.NoError(t, err)

	require.Len(t, res.Payloads, 1)
	assert.True(t, res.Payloads[0].IsScalar())
	assert.Equal(t, "", res.Payloads[0].Scalar)
}

func TestWalk_EmptyRoot(t *testing.T) {
	res, err := walkString(t, `{}`)
	require.NoError(t, err)

	assert.Empty(t, res.Payloads)
	assert.Equal(t, 0, res.Metrics)
}

func TestWalk_EmptyMetricRecord(t *testing.T) {
	res, err := walkString(t, `{"flops":{},"mem_bw":{"series":[]}}`)
	require.NoError(t, err)

	assert.Empty(t, res.Payloads)
	assert.Equal(t, 2, res.Metrics)
}

func TestWalk_MetricWithoutSeries(t *testing.T) {
	res, err := walkString(t, `{"flops":{"unit":"GF/s","timestep":60}}`)
	require.NoError(t, err)

	assert.Empty(t, res.Payloads)
	assert.Equal(t, 1, res.Metrics)
}

func TestWalk_MultipleMetricsAndNodes(t *testing.T) {
	input := `{
		"flops_any": {
			"unit": "GF/s",
			"series": [
				{"hostname": "node001", "statistics": {"min": 0.1, "avg": 3.5, "max": 7.1}, "data": [1.0, 2.5, 3.0]},
				{"hostname": "node002", "data": [4.0, 5.5]}
			]
		},
		"mem_bw": {
			"unit": "GB/s",
			"series": [{"hostname": "node001", "data": "n/a"}]
		}
	}`

	res, err := walkString(t, input)
	require.NoError(t, err)

	require.Len(t, res.Payloads, 3)

	assert.Equal(t, "flops_any", res.Payloads[0].Metric)
	assert.Equal(t, 0, res.Payloads[0].NodeIndex)
	assert.Equal(t, 3, res.Payloads[0].Count)

	assert.Equal(t, "flops_any", res.Payloads[1].Metric)
	assert.Equal(t, 1, res.Payloads[1].NodeIndex)
	assert.Equal(t, 2, res.Payloads[1].Count)

	assert.Equal(t, "mem_bw", res.Payloads[2].Metric)
	assert.Equal(t, 0, res.Payloads[2].NodeIndex, "node index restarts per series")
	assert.Equal(t, "n/a", res.Payloads[2].Scalar)

	assert.Equal(t, 2, res.Metrics)
	assert.Equal(t, 3, res.Nodes)
	assert.Equal(t, 5, res.Samples)
}

// TestWalk_UnknownMemberTolerance inserts extra members of assorted types
// and depths around the recognized keys. The reported payloads must be
// identical to the plain document's.
func TestWalk_UnknownMemberTolerance(t *testing.T) {
	baseline, err := walkString(t, `{"flops":{"series":[{"data":[1,2]}]}}`)
	require.NoError(t, err)

	extras := []struct {
		name  string
		value string
	}{
		{name: "string", value: `"text"`},
		{name: "number", value: `-12.5e3`},
		{name: "null", value: `null`},
		{name: "bool", value: `true`},
		{name: "empty object", value: `{}`},
		{name: "empty array", value: `[]`},
		{name: "nested object", value: `{"a":{"b":{"c":[1,{"d":2}]}}}`},
		{name: "nested array", value: `[[[["deep"]],{}],null]`},
		{name: "array of objects", value: `[{"x":1},{"y":[2,3]}]`},
	}

	layouts := []struct {
		name   string
		format string // two %s verbs: one extra member in the metric record, one in the node record
	}{
		{
			name:   "before recognized keys",
			format: `{"flops":{"extra":%s,"series":[{"pad":%s,"data":[1,2]}]}}`,
		},
		{
			name:   "after recognized keys",
			format: `{"flops":{"series":[{"data":[1,2],"pad":%s}],"extra":%s}}`,
		},
		{
			name:   "interleaved",
			format: `{"flops":{"extra":%s,"series":[{"data":[1,2]}],"more":%s}}`,
		},
	}

	for _, layout := range layouts {
		for _, extra := range extras {
			t.Run(layout.name+"/"+extra.name, func(t *testing.T) {
				input := fmt.Sprintf(layout.format, extra.value, extra.value)
				res, err := walkString(t, input)
				require.NoError(t, err)
				assert.Equal(t, baseline.Payloads, res.Payloads)
			})
		}
	}
}

func TestWalk_SeriesKeyInNodeRecordIsNotSpecial(t *testing.T) {
	// A "series" member of a node record is just an unknown member.
	res, err := walkString(t, `{"flops":{"series":[{"series":[1,2,3],"data":[9]}]}}`)
	require.NoError(t, err)

	require.Len(t, res.Payloads, 1)
	assert.Equal(t, 1, res.Payloads[0].Count)
}

func TestWalk_DataKeyInMetricRecordIsNotSpecial(t *testing.T) {
	// A "data" member of a metric record is just an unknown member.
	res, err := walkString(t, `{"flops":{"data":[1,2,3],"series":[]}}`)
	require.NoError(t, err)

	assert.Empty(t, res.Payloads)
}

func TestWalk_NestedDataArrayElements(t *testing.T) {
	// Count reports direct elements only; nested structure is discarded.
	res, err := walkString(t, `{"flops":{"series":[{"data":[[1,2],[3],{"v":4}]},{"data":[5]}]}}`)
	require.NoError(t, err)

	require.Len(t, res.Payloads, 2)
	assert.Equal(t, 3, res.Payloads[0].Count)
	assert.Equal(t, 0, res.Payloads[0].NodeIndex)
	assert.Equal(t, 1, res.Payloads[1].Count)
	assert.Equal(t, 1, res.Payloads[1].NodeIndex)
}

func TestWalk_MixedDataElementTypes(t *testing.T) {
	res, err := walkString(t, `{"flops":{"series":[{"data":[1,"x",null,true]}]}}`)
	require.NoError(t, err)

	require.Len(t, res.Payloads, 1)
	assert.Equal(t, 4, res.Payloads[0].Count)
}

func TestWalk_SchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "array root", input: `[1,2,3]`, want: errs.ErrUnexpectedRoot},
		{name: "string root", input: `"flops"`, want: errs.ErrUnexpectedRoot},
		{name: "primitive root", input: `42`, want: errs.ErrUnexpectedRoot},
		{name: "metric value not object", input: `{"flops":[1]}`, want: errs.ErrUnexpectedValueType},
		{name: "metric value primitive", input: `{"flops":17}`, want: errs.ErrUnexpectedValueType},
		{name: "series not array", input: `{"flops":{"series":{"a":1}}}`, want: errs.ErrUnexpectedValueType},
		{name: "series scalar", input: `{"flops":{"series":"x"}}`, want: errs.ErrUnexpectedValueType},
		{name: "node record not object", input: `{"flops":{"series":[42]}}`, want: errs.ErrUnexpectedValueType},
		{name: "node record array", input: `{"flops":{"series":[[1]]}}`, want: errs.ErrUnexpectedValueType},
		{name: "data primitive", input: `{"flops":{"series":[{"data":42}]}}`, want: errs.ErrUnexpectedValueType},
		{name: "data object", input: `{"flops":{"series":[{"data":{"a":1}}]}}`, want: errs.ErrUnexpectedValueType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := walkString(t, tt.input)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWalk_FailFastKeepsPartialResult(t *testing.T) {
	src := []byte(`{"good":{"series":[{"data":[1,2]}]},"bad":{"series":7}}`)
	doc, err := token.Tokenize(src)
	require.NoError(t, err)

	w, err := NewWalker(doc, src)
	require.NoError(t, err)

	res, err := w.Walk()
	require.ErrorIs(t, err, errs.ErrUnexpectedValueType)
	require.Len(t, res.Payloads, 1, "payloads before the failure are retained")
	assert.Equal(t, "good", res.Payloads[0].Metric)
}

// Key type errors cannot come out of the tokenizer, which rejects non-string
// keys as invalid JSON. Hand-built documents exercise the walker's guard.
func TestWalk_UnexpectedKeyType(t *testing.T) {
	t.Run("metric key", func(t *testing.T) {
		src := []byte(`{1:2}`)
		doc := token.Document{
			{Kind: format.KindObject, Start: 0, End: 5, Count: 1},
			{Kind: format.KindPrimitive, Start: 1, End: 2},
			{Kind: format.KindPrimitive, Start: 3, End: 4},
		}

		w, err := NewWalker(doc, src)
		require.NoError(t, err)

		_, err = w.Walk()
		require.ErrorIs(t, err, errs.ErrUnexpectedKeyType)
	})

	t.Run("metric member key", func(t *testing.T) {
		src := []byte(`{"m":{1:2}}`)
		doc := token.Document{
			{Kind: format.KindObject, Start: 0, End: 11, Count: 1},
			{Kind: format.KindString, Start: 2, End: 3},
			{Kind: format.KindObject, Start: 5, End: 10, Count: 1},
			{Kind: format.KindPrimitive, Start: 6, End: 7},
			{Kind: format.KindPrimitive, Start: 8, End: 9},
		}

		w, err := NewWalker(doc, src)
		require.NoError(t, err)

		_, err = w.Walk()
		require.ErrorIs(t, err, errs.ErrUnexpectedKeyType)
	})
}

func TestNewWalker_EmptyDocument(t *testing.T) {
	_, err := NewWalker(token.Document{}, nil)
	require.ErrorIs(t, err, errs.ErrTruncatedJSON)
}

func TestWalk_ShortDocument(t *testing.T) {
	// The root promises one pair but the key and value tokens are missing.
	src := []byte(`{"a":1}`)
	doc := token.Document{
		{Kind: format.KindObject, Start: 0, End: 7, Count: 1},
	}

	w, err := NewWalker(doc, src)
	require.NoError(t, err)

	_, err = w.Walk()
	require.ErrorIs(t, err, errs.ErrTruncatedJSON)
}

func TestWalk_MetricIDMatchesName(t *testing.T) {
	res, err := walkString(t, `{"cpu_load":{"series":[{"data":[1]}]},"nv_mem_util":{"series":[{"data":[2]}]}}`)
	require.NoError(t, err)

	require.Len(t, res.Payloads, 2)
	for _, p := range res.Payloads {
		assert.Equal(t, hash.ID(p.Metric), p.MetricID, "metric %q", p.Metric)
	}
}

func TestWalk_PayloadsSurviveSourceMutation(t *testing.T) {
	src := []byte(`{"flops":{"series":[{"data":"ok"}]}}`)
	doc, err := token.Tokenize(src)
	require.NoError(t, err)

	w, err := NewWalker(doc, src)
	require.NoError(t, err)

	res, err := w.Walk()
	require.NoError(t, err)

	for i := range src {
		src[i] = 'X'
	}

	require.Len(t, res.Payloads, 1)
	assert.Equal(t, "flops", res.Payloads[0].Metric)
	assert.Equal(t, "ok", res.Payloads[0].Scalar)
}

func BenchmarkWalk(b *testing.B) {
	src := []byte(`{
		"flops_any": {
			"unit": "GF/s",
			"series": [
				{"hostname": "node001", "statistics": {"min": 0.1, "avg": 3.5, "max": 7.1}, "data": [1.0, 2.5, 3.0]},
				{"hostname": "node002", "data": [4.0, 5.5]}
			]
		}
	}`)
	doc, err := token.Tokenize(src)
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		w, err := NewWalker(doc, src)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := w.Walk(); err != nil {
			b.Fatal(err)
		}
	}
}
