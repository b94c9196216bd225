package suite

import "context"

// HookKind identifies when a hook runs.
type HookKind int

const (
	BeforeAll HookKind = iota
	BeforeEach
	AfterEach
	AfterAll

	hookKindCount
)

// String returns the hook kind as written in reports and logs.
func (k HookKind) String() string {
	switch k {
	case BeforeAll:
		return "before-all"
	case BeforeEach:
		return "before-each"
	case AfterEach:
		return "after-each"
	case AfterAll:
		return "after-all"
	default:
		return "unknown"
	}
}

// HookFunc is a setup or teardown function. sc is the context of the suite the
// hook is bound to.
type HookFunc func(ctx context.Context, sc any) error

// BoundHook is a hook paired with the context it runs against.
type BoundHook struct {
	Kind    HookKind
	Suite   string
	Context any
	Func    HookFunc
}

// Call invokes the hook with its bound context.
func (h BoundHook) Call(ctx context.Context) error {
	return h.Func(ctx, h.Context)
}

// Chain holds the hooks that apply to one suite and to each of its tests.
type Chain struct {
	BeforeAll  []BoundHook
	BeforeEach []BoundHook
	AfterEach  []BoundHook
	AfterAll   []BoundHook
}

// ResolveHooks returns the hook chain of the last suite of path. path starts at
// the root.
//
// BeforeAll and AfterAll only hold the hooks of that suite. BeforeEach and
// AfterEach hold the hooks of every suite on the path, outermost first. Within
// one suite, hooks inherited through Extend come before the suite's own. After
// hooks are not reversed.
func ResolveHooks(path []*Suite) Chain {
	var chain Chain

	if len(path) == 0 {
		return chain
	}

	last := len(path) - 1
	chain.BeforeAll = bind(path[last], BeforeAll, EffectiveContext(path))
	chain.AfterAll = bind(path[last], AfterAll, EffectiveContext(path))

	for i := range path {
		sc := EffectiveContext(path[:i+1])
		chain.BeforeEach = append(chain.BeforeEach, bind(path[i], BeforeEach, sc)...)
		chain.AfterEach = append(chain.AfterEach, bind(path[i], AfterEach, sc)...)
	}

	return chain
}

// EffectiveContext returns the context of the innermost suite of path that has one.
func EffectiveContext(path []*Suite) any {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i].context != nil {
			return path[i].context
		}
	}

	return nil
}

func bind(s *Suite, kind HookKind, sc any) []BoundHook {
	funcs := s.declaredHooks(kind)
	if len(funcs) == 0 {
		return nil
	}

	bound := make([]BoundHook, 0, len(funcs))
	for _, fn := range funcs {
		bound = append(bound, BoundHook{
			Kind:    kind,
			Suite:   s.name,
			Context: sc,
			Func:    fn,
		})
	}

	return bound
}

// declaredHooks returns the hooks of kind along the inheritance chain of s,
// base suites first.
func (s *Suite) declaredHooks(kind HookKind) []HookFunc {
	var funcs []HookFunc

	for _, base := range s.bases {
		funcs = append(funcs, base.declaredHooks(kind)...)
	}

	return append(funcs, s.hooks[kind]...)
}
