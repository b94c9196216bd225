package suite

import (
	"errors"
	"fmt"
)

// Node is either a *Test or a *Suite.
type Node interface {
	Name() string
	Status() Status
	node()
}

// Suite is an ordered collection of tests and nested suites that share one
// context value and one hook chain.
//
// A Suite is built once through New and its registration methods. Everything
// downstream treats it as read-only; Normalize and filter.Select derive copies.
type Suite struct {
	name      string
	status    Status
	context   any
	hooks     [hookKindCount][]HookFunc
	bases     []*Suite
	children  []Node
	index     map[string]int
	caseGroup bool
	errs      []error

	// extendedBy names the first suite that extended s. Children cannot be
	// registered on s afterwards.
	extendedBy string
}

// Option configures a suite at creation.
type Option func(*Suite)

// WithStatus sets the suite status. An Ignored suite skips its whole subtree,
// focused tests included.
func WithStatus(status Status) Option {
	return func(s *Suite) {
		s.status = status
	}
}

// WithContext sets the value handed to every hook and test of the suite, and of
// nested suites that have no context of their own.
//
// The value is created once by the caller and is never reset by the runner.
// Running the same tree twice in one process reuses whatever state the first
// run left in it.
func WithContext(sc any) Option {
	return func(s *Suite) {
		s.context = sc
	}
}

// New creates a suite.
func New(name string, opts ...Option) *Suite {
	s := &Suite{
		name:  name,
		index: make(map[string]int, 8),
	}

	for _, opt := range opts {
		opt(s)
	}

	if name == "" {
		s.errs = append(s.errs, fmt.Errorf("suite name is required: %w", ErrInvalidRegistration))
	}

	return s
}

// Name returns the suite name.
func (s *Suite) Name() string {
	return s.name
}

// Status returns the suite status.
func (s *Suite) Status() Status {
	return s.status
}

// Context returns the value given with WithContext, or nil.
func (s *Suite) Context() any {
	return s.context
}

// IsCaseGroup reports whether the suite was generated from a parameterized test.
func (s *Suite) IsCaseGroup() bool {
	return s.caseGroup
}

// Children returns the children in execution order. The slice must not be modified.
func (s *Suite) Children() []Node {
	return s.children
}

// Child returns the child registered under name.
func (s *Suite) Child(name string) (Node, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}

	return s.children[i], true
}

func (s *Suite) node() {}

// Test registers a test with Normal status.
func (s *Suite) Test(name string, body TestFunc, opts ...TestOption) *Suite {
	return s.addTest(name, body, Normal, opts)
}

// FTest registers a focused test.
func (s *Suite) FTest(name string, body TestFunc, opts ...TestOption) *Suite {
	return s.addTest(name, body, Focused, opts)
}

// XTest registers an ignored test.
func (s *Suite) XTest(name string, body TestFunc, opts ...TestOption) *Suite {
	return s.addTest(name, body, Ignored, opts)
}

// Add nests child under s.
func (s *Suite) Add(child *Suite) *Suite {
	if child == nil {
		s.errs = append(s.errs, fmt.Errorf("suite %q: nil child suite: %w", s.name, ErrInvalidRegistration))

		return s
	}

	if child == s || child.contains(s) {
		s.errs = append(s.errs, fmt.Errorf("suite %q: cannot nest %q inside itself: %w",
			s.name, child.name, ErrInvalidRegistration))

		return s
	}

	s.add(child)

	return s
}

// Extend makes s inherit from base: base hooks run before the hooks of s, with
// the context of s, and the tests of base are registered into s.
//
// The tests of base are copied at this point, so base must be complete: any
// test or suite registered on base afterwards is rejected with
// ErrInvalidRegistration. Hooks of base are resolved at run time.
func (s *Suite) Extend(base *Suite) *Suite {
	if base == nil || base == s || base.inherits(s) {
		s.errs = append(s.errs, fmt.Errorf("suite %q: invalid base suite: %w", s.name, ErrInvalidRegistration))

		return s
	}

	s.bases = append(s.bases, base)

	if base.extendedBy == "" {
		base.extendedBy = s.name
	}

	for _, child := range base.children {
		s.add(child)
	}

	return s
}

// BeforeAll registers a hook that runs once before the first child.
func (s *Suite) BeforeAll(hook HookFunc) *Suite {
	return s.Hook(BeforeAll, hook)
}

// BeforeEach registers a hook that runs before every test of the subtree.
func (s *Suite) BeforeEach(hook HookFunc) *Suite {
	return s.Hook(BeforeEach, hook)
}

// AfterEach registers a hook that runs after every test of the subtree.
func (s *Suite) AfterEach(hook HookFunc) *Suite {
	return s.Hook(AfterEach, hook)
}

// AfterAll registers a hook that runs once after the last child.
func (s *Suite) AfterAll(hook HookFunc) *Suite {
	return s.Hook(AfterAll, hook)
}

// Hook registers a hook of the given kind.
func (s *Suite) Hook(kind HookKind, hook HookFunc) *Suite {
	if hook == nil || kind < 0 || kind >= hookKindCount {
		s.errs = append(s.errs, fmt.Errorf("suite %q: invalid %s hook: %w", s.name, kind, ErrInvalidRegistration))

		return s
	}

	s.hooks[kind] = append(s.hooks[kind], hook)

	return s
}

// Err returns the registration errors recorded on s itself.
func (s *Suite) Err() error {
	return errors.Join(s.errs...)
}

// Validate returns every configuration error of the subtree: registration
// errors and suites without any test.
func (s *Suite) Validate() error {
	var errs []error

	s.validate(&errs)

	return errors.Join(errs...)
}

func (s *Suite) validate(errs *[]error) {
	*errs = append(*errs, s.errs...)

	for _, base := range s.bases {
		*errs = append(*errs, base.errs...)
	}

	if s.NumberOfTests() == 0 {
		*errs = append(*errs, fmt.Errorf("suite %q: %w", s.name, ErrNoTests))

		return
	}

	for _, child := range s.children {
		if nested, ok := child.(*Suite); ok {
			nested.validate(errs)
		}
	}
}

// NumberOfTests counts the leaves of the subtree whatever their status.
func (s *Suite) NumberOfTests() int {
	n := 0

	s.Walk(func(_ []*Suite, _ *Test) {
		n++
	})

	return n
}

// RunnableCount counts the leaves of the subtree that are not Ignored.
// On a normalized tree this is the number of tests that will run.
func (s *Suite) RunnableCount() int {
	n := 0

	s.Walk(func(_ []*Suite, t *Test) {
		if t.status != Ignored {
			n++
		}
	})

	return n
}

// Walk calls fn for every test of the subtree in execution order. parents runs
// from s down to the suite holding the test.
func (s *Suite) Walk(fn func(parents []*Suite, t *Test)) {
	s.walk([]*Suite{s}, fn)
}

func (s *Suite) walk(parents []*Suite, fn func([]*Suite, *Test)) {
	for _, child := range s.children {
		switch c := child.(type) {
		case *Test:
			fn(parents, c)
		case *Suite:
			c.walk(append(parents[:len(parents):len(parents)], c), fn)
		}
	}
}

func (s *Suite) addTest(name string, body TestFunc, status Status, opts []TestOption) *Suite {
	spec := testSpec{status: status}

	for _, opt := range opts {
		opt(&spec)
	}

	if name == "" {
		s.errs = append(s.errs, fmt.Errorf("suite %q: test name is required: %w", s.name, ErrInvalidRegistration))

		return s
	}

	if body == nil {
		s.errs = append(s.errs, fmt.Errorf("suite %q: test %q has no body: %w", s.name, name, ErrInvalidRegistration))

		return s
	}

	if spec.timeout < 0 {
		s.errs = append(s.errs, fmt.Errorf("suite %q: test %q has a negative timeout: %w",
			s.name, name, ErrInvalidRegistration))

		return s
	}

	if len(spec.cases) == 0 {
		s.add(&Test{
			name:    name,
			body:    body,
			status:  spec.status,
			timeout: spec.timeout,
			args:    spec.args,
		})

		return s
	}

	group := New(name)
	group.caseGroup = true

	for i, c := range spec.cases {
		if c.Name == "" {
			group.errs = append(group.errs, fmt.Errorf("suite %q: case %d of test %q has no name: %w",
				s.name, i, name, ErrInvalidRegistration))

			continue
		}

		group.add(&Test{
			name:    c.Name,
			body:    body,
			status:  spec.status,
			timeout: spec.timeout,
			args:    append(append(make([]any, 0, len(spec.args)+len(c.Args)), spec.args...), c.Args...),
		})
	}

	s.add(group)

	return s
}

func (s *Suite) add(child Node) {
	if s.extendedBy != "" {
		s.errs = append(s.errs, fmt.Errorf("suite %q: %q registered after %q extended it: %w",
			s.name, child.Name(), s.extendedBy, ErrInvalidRegistration))

		return
	}

	if _, exists := s.index[child.Name()]; exists {
		s.errs = append(s.errs, fmt.Errorf("suite %q: %q is already registered: %w",
			s.name, child.Name(), ErrDuplicateName))

		return
	}

	s.index[child.Name()] = len(s.children)
	s.children = append(s.children, child)
}

// contains reports whether target is nested anywhere below s.
func (s *Suite) contains(target *Suite) bool {
	for _, child := range s.children {
		if nested, ok := child.(*Suite); ok {
			if nested == target || nested.contains(target) {
				return true
			}
		}
	}

	return false
}

// inherits reports whether target is anywhere in the base chain of s.
func (s *Suite) inherits(target *Suite) bool {
	for _, base := range s.bases {
		if base == target || base.inherits(target) {
			return true
		}
	}

	return false
}
