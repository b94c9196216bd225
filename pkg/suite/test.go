package suite

import (
	"context"
	"time"
)

// DefaultTimeout is applied to tests registered without an explicit timeout.
const DefaultTimeout = 2000 * time.Millisecond

// TestFunc is the body of a test. sc is the nearest enclosing suite context and
// args are the test's arguments, if it was registered with any.
//
// ctx carries the test deadline. Bodies that keep working after ctx is done are
// not stopped: the runner only stops waiting for them.
type TestFunc func(ctx context.Context, sc any, args ...any) error

// Case is one parameter set of a parameterized test.
type Case struct {
	Name string
	Args []any
}

// Test is a registered test. It is read-only once registered.
type Test struct {
	name    string
	body    TestFunc
	status  Status
	timeout time.Duration
	args    []any
}

// Name returns the test name, unique within its parent suite.
func (t *Test) Name() string {
	return t.name
}

// Status returns the registered status, or the effective one on a normalized tree.
func (t *Test) Status() Status {
	return t.status
}

// Timeout returns the registered timeout. Zero means the runner default applies.
func (t *Test) Timeout() time.Duration {
	return t.timeout
}

// Args returns the arguments passed to the body. The slice must not be modified.
func (t *Test) Args() []any {
	return t.args
}

// Run invokes the body with the given suite context.
func (t *Test) Run(ctx context.Context, sc any) error {
	return t.body(ctx, sc, t.args...)
}

func (t *Test) node() {}

// withStatus returns t itself when the status is unchanged, otherwise a copy.
func (t *Test) withStatus(status Status) *Test {
	if t.status == status {
		return t
	}

	cp := *t
	cp.status = status

	return &cp
}

// TestOption configures a test at registration.
type TestOption func(*testSpec)

type testSpec struct {
	status  Status
	timeout time.Duration
	cases   []Case
	args    []any
}

// WithTimeout sets the time the runner waits for the body before failing the test.
func WithTimeout(d time.Duration) TestOption {
	return func(s *testSpec) {
		s.timeout = d
	}
}

// WithTestStatus sets the test status. Test, FTest and XTest set it already.
func WithTestStatus(status Status) TestOption {
	return func(s *testSpec) {
		s.status = status
	}
}

// WithArgs passes fixed arguments to the body.
func WithArgs(args ...any) TestOption {
	return func(s *testSpec) {
		s.args = args
	}
}

// WithCases turns the test into one test per case. The cases are grouped
// under a suite named after the test and reported individually. Arguments given
// with WithArgs come first, followed by the case arguments.
func WithCases(cases ...Case) TestOption {
	return func(s *testSpec) {
		s.cases = append(s.cases, cases...)
	}
}
