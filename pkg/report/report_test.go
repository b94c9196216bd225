package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mathReport() *Report {
	r := NewComposite("Math")
	r.Add(NewSuccess("add", 3*time.Millisecond))
	r.Add(NewFailure("sub", "bad", FailureTest, 2*time.Millisecond))
	r.Add(NewSkipped("mul"))

	return r
}

func TestReport_Aggregate(t *testing.T) {
	tests := []struct {
		name          string
		build         func() *Report
		result        Result
		numberOfTests int
	}{
		{
			name:          "one failure fails the composite",
			build:         mathReport,
			result:        ResultFailure,
			numberOfTests: 3,
		},
		{
			name: "success and skipped succeed",
			build: func() *Report {
				r := NewComposite("S")
				r.Add(NewSuccess("a", 0))
				r.Add(NewSkipped("b"))

				return r
			},
			result:        ResultSuccess,
			numberOfTests: 2,
		},
		{
			name: "nested failure propagates",
			build: func() *Report {
				inner := NewComposite("Inner")
				inner.Add(NewFailure("x", "boom", FailureHook, 0))

				root := NewComposite("Root")
				root.Add(NewSuccess("a", 0))
				root.Add(inner)

				return root
			},
			result:        ResultFailure,
			numberOfTests: 2,
		},
		{
			name:          "empty composite succeeds",
			build:         func() *Report { return NewComposite("Empty") },
			result:        ResultSuccess,
			numberOfTests: 0,
		},
		{
			name:          "leaf counts itself",
			build:         func() *Report { return NewSkipped("lonely") },
			result:        ResultSkipped,
			numberOfTests: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.build()
			assert.Equal(t, tt.result, r.Result())
			assert.Equal(t, tt.numberOfTests, r.NumberOfTests())
		})
	}
}

func TestReport_AggregateIsNotCached(t *testing.T) {
	r := NewComposite("S")
	r.Add(NewSuccess("a", 0))
	assert.Equal(t, ResultSuccess, r.Result())

	r.Add(NewFailure("b", "late", FailureTest, 0))
	assert.Equal(t, ResultFailure, r.Result())
	assert.Equal(t, 2, r.NumberOfTests())
}

func TestReport_AddOnLeafIsIgnored(t *testing.T) {
	leaf := NewSuccess("a", 0)
	leaf.Add(NewFailure("b", "x", FailureTest, 0))

	assert.Empty(t, leaf.Children)
	assert.Equal(t, ResultSuccess, leaf.Result())
}

func TestReport_Stats(t *testing.T) {
	r := mathReport()
	r.Add(NewFailure("slow", "test has timed out", FailureTimeout, 50*time.Millisecond))

	assert.Equal(t, Stats{Total: 4, Passed: 1, Failed: 2, Skipped: 1, TimedOut: 1}, r.Stats())
	assert.InDelta(t, 55.0, r.DurationMs(), 0.001)
}

func TestReport_WalkAndFind(t *testing.T) {
	inner := NewComposite("Inner")
	inner.Add(NewSuccess("x", 0))

	root := NewComposite("Root")
	root.Add(NewSkipped("a"))
	root.Add(inner)

	var paths []string

	root.Walk(func(path []string, _ *Report) {
		paths = append(paths, joinPath(path))
	})

	assert.Equal(t, []string{"Root", "Root/a", "Root/Inner", "Root/Inner/x"}, paths)

	node, ok := root.Find("Inner", "x")
	require.True(t, ok)
	assert.Equal(t, KindSuccess, node.Kind)

	_, ok = root.Find("Inner", "missing")
	assert.False(t, ok)
	assert.Len(t, root.Leaves(), 2)
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "/"
		}

		out += p
	}

	return out
}

func TestReport_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(mathReport())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "composite", decoded["kind"])
	assert.Equal(t, "failure", decoded["result"])
	assert.EqualValues(t, 3, decoded["number_of_tests"])

	children, ok := decoded["children"].([]any)
	require.True(t, ok)
	require.Len(t, children, 3)

	sub := children[1].(map[string]any)
	assert.Equal(t, "bad", sub["reason"])
	assert.Equal(t, "test", sub["failure"])
	assert.EqualValues(t, 2, sub["duration_ms"])

	skipped := children[2].(map[string]any)
	assert.NotContains(t, skipped, "reason")
	assert.Equal(t, "skipped", skipped["result"])

	empty, err := json.Marshal(NewComposite("Empty"))
	require.NoError(t, err)
	assert.Contains(t, string(empty), `"children":[]`)
}

type countingObserver struct {
	entered, exited, settled, hooks int
}

func (c *countingObserver) SuiteEntered(SuiteEvent) { c.entered++ }
func (c *countingObserver) SuiteExited(SuiteEvent)  { c.exited++ }
func (c *countingObserver) TestSettled(TestEvent)   { c.settled++ }
func (c *countingObserver) HookFailed(HookEvent)    { c.hooks++ }

func TestObservers_FanOut(t *testing.T) {
	a, b := &countingObserver{}, &countingObserver{}
	obs := Observers{a, NopObserver{}, b}

	obs.SuiteEntered(SuiteEvent{Name: "S"})
	obs.TestSettled(TestEvent{Name: "t"})
	obs.HookFailed(HookEvent{Suite: "S"})
	obs.SuiteExited(SuiteEvent{Name: "S"})

	for _, c := range []*countingObserver{a, b} {
		assert.Equal(t, countingObserver{entered: 1, exited: 1, settled: 1, hooks: 1}, *c)
	}

	assert.Equal(t, "a/b", TestEvent{Path: []string{"a", "b"}}.PathString())
}
