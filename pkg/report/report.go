package report

import (
	"encoding/json"
	"time"
)

// Kind tags the variant of a Report.
type Kind string

const (
	KindSuccess   Kind = "success"
	KindFailure   Kind = "failure"
	KindSkipped   Kind = "skipped"
	KindComposite Kind = "composite"
)

// Result is the outcome of a report. Composite reports are only ever
// ResultSuccess or ResultFailure.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
	ResultSkipped Result = "skipped"
)

// FailureKind tells what produced a failure.
type FailureKind string

const (
	FailureTest    FailureKind = "test"
	FailureHook    FailureKind = "hook"
	FailureTimeout FailureKind = "timeout"
)

// Report is one node of a result tree. Which fields are meaningful depends on Kind:
//   - success: Name, Duration
//   - failure: Name, Reason, Failure, Duration
//   - skipped: Name
//   - composite: Name, Children
type Report struct {
	Kind     Kind
	Name     string
	Reason   string
	Failure  FailureKind
	Duration time.Duration
	Children []*Report
}

// NewSuccess creates a passed test report.
func NewSuccess(name string, duration time.Duration) *Report {
	return &Report{Kind: KindSuccess, Name: name, Duration: duration}
}

// NewFailure creates a failed test report.
func NewFailure(name, reason string, kind FailureKind, duration time.Duration) *Report {
	return &Report{Kind: KindFailure, Name: name, Reason: reason, Failure: kind, Duration: duration}
}

// NewSkipped creates a skipped test report.
func NewSkipped(name string) *Report {
	return &Report{Kind: KindSkipped, Name: name}
}

// NewComposite creates an empty suite report.
func NewComposite(name string) *Report {
	return &Report{Kind: KindComposite, Name: name}
}

// Add appends child to a composite report, in completion order. It is a no-op
// on leaf reports.
func (r *Report) Add(child *Report) {
	if r.Kind != KindComposite || child == nil {
		return
	}

	r.Children = append(r.Children, child)
}

// IsLeaf reports whether r is a test report rather than a suite report.
func (r *Report) IsLeaf() bool {
	return r.Kind != KindComposite
}

// Result returns the outcome of r. A composite fails when any descendant
// failed and succeeds otherwise, skipped tests included.
func (r *Report) Result() Result {
	switch r.Kind {
	case KindSuccess:
		return ResultSuccess
	case KindFailure:
		return ResultFailure
	case KindSkipped:
		return ResultSkipped
	}

	for _, child := range r.Children {
		if child.Result() == ResultFailure {
			return ResultFailure
		}
	}

	return ResultSuccess
}

// NumberOfTests counts the leaf reports below r, r included when it is a leaf.
func (r *Report) NumberOfTests() int {
	if r.IsLeaf() {
		return 1
	}

	n := 0
	for _, child := range r.Children {
		n += child.NumberOfTests()
	}

	return n
}

// DurationMs returns the duration in milliseconds. Composite reports sum
// the durations of their leaves.
func (r *Report) DurationMs() float64 {
	return float64(r.TotalDuration()) / float64(time.Millisecond)
}

// TotalDuration returns Duration for leaves and the sum over all leaves for
// composites.
func (r *Report) TotalDuration() time.Duration {
	if r.IsLeaf() {
		return r.Duration
	}

	var total time.Duration
	for _, child := range r.Children {
		total += child.TotalDuration()
	}

	return total
}

// Walk calls fn for every node of the tree, depth-first, parents before
// children. path holds the names from the root down to the node.
func (r *Report) Walk(fn func(path []string, node *Report)) {
	r.walk(nil, fn)
}

func (r *Report) walk(parents []string, fn func([]string, *Report)) {
	path := append(parents[:len(parents):len(parents)], r.Name)
	fn(path, r)

	for _, child := range r.Children {
		child.walk(path, fn)
	}
}

// Leaves returns the leaf reports in order.
func (r *Report) Leaves() []*Report {
	var leaves []*Report

	r.Walk(func(_ []string, node *Report) {
		if node.IsLeaf() {
			leaves = append(leaves, node)
		}
	})

	return leaves
}

// Find returns the node at the given path below r, r itself excluded.
func (r *Report) Find(path ...string) (*Report, bool) {
	node := r

	for _, name := range path {
		var next *Report

		for _, child := range node.Children {
			if child.Name == name {
				next = child

				break
			}
		}

		if next == nil {
			return nil, false
		}

		node = next
	}

	return node, true
}

// MarshalJSON renders only the fields that belong to the report kind, with
// aggregate values computed at encoding time.
func (r *Report) MarshalJSON() ([]byte, error) {
	if r.IsLeaf() {
		return json.Marshal(struct {
			Kind       Kind        `json:"kind"`
			Name       string      `json:"name"`
			Result     Result      `json:"result"`
			Reason     string      `json:"reason,omitempty"`
			Failure    FailureKind `json:"failure,omitempty"`
			DurationMs float64     `json:"duration_ms"`
		}{
			Kind:       r.Kind,
			Name:       r.Name,
			Result:     r.Result(),
			Reason:     r.Reason,
			Failure:    r.Failure,
			DurationMs: r.DurationMs(),
		})
	}

	children := r.Children
	if children == nil {
		children = []*Report{}
	}

	return json.Marshal(struct {
		Kind          Kind      `json:"kind"`
		Name          string    `json:"name"`
		Result        Result    `json:"result"`
		NumberOfTests int       `json:"number_of_tests"`
		DurationMs    float64   `json:"duration_ms"`
		Stats         Stats     `json:"stats"`
		Children      []*Report `json:"children"`
	}{
		Kind:          r.Kind,
		Name:          r.Name,
		Result:        r.Result(),
		NumberOfTests: r.NumberOfTests(),
		DurationMs:    r.DurationMs(),
		Stats:         r.Stats(),
		Children:      children,
	})
}
