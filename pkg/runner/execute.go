package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethpandaops/testoor/pkg/report"
	"github.com/ethpandaops/testoor/pkg/suite"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// execution holds the state of a single Run call.
type execution struct {
	log            logrus.FieldLogger
	tracer         trace.Tracer
	obs            report.Observer
	defaultTimeout time.Duration
}

// visitSuite executes the last suite of path. path starts at the root.
func (e *execution) visitSuite(ctx context.Context, path []*suite.Suite) *report.Report {
	s := path[len(path)-1]
	names := pathNames(path)
	depth := len(path) - 1

	ctx, span := e.tracer.Start(ctx, fmt.Sprintf("suite %s", s.Name()))
	defer span.End()

	e.obs.SuiteEntered(report.SuiteEvent{Name: s.Name(), Path: names, Depth: depth})

	// A suite without runnable tests only produces skipped reports: no hook runs.
	rep := e.runSuite(ctx, path, s.RunnableCount() > 0)

	if rep.Result() == report.ResultFailure {
		span.SetStatus(codes.Error, "suite failed")
	}

	e.obs.SuiteExited(report.SuiteEvent{
		Name:          s.Name(),
		Path:          names,
		Depth:         depth,
		Result:        rep.Result(),
		NumberOfTests: rep.NumberOfTests(),
	})

	return rep
}

func (e *execution) runSuite(ctx context.Context, path []*suite.Suite, withHooks bool) *report.Report {
	s := path[len(path)-1]
	chain := suite.ResolveHooks(path)

	if withHooks {
		if hook, err := runHooks(ctx, chain.BeforeAll); err != nil {
			e.hookFailed(path, hook, err)

			return e.failedSubtree(path, FailureMessage(err), true)
		}
	}

	rep := report.NewComposite(s.Name())

	for _, child := range s.Children() {
		switch c := child.(type) {
		case *suite.Test:
			rep.Add(e.runTest(ctx, path, chain, c))
		case *suite.Suite:
			rep.Add(e.visitSuite(ctx, append(path[:len(path):len(path)], c)))
		}
	}

	if withHooks {
		if hook, err := runHooks(ctx, chain.AfterAll); err != nil {
			e.hookFailed(path, hook, err)

			// The tests already reported their own outcome; only the suite
			// report is replaced.
			return e.failedSubtree(path, FailureMessage(err), false)
		}
	}

	return rep
}

func (e *execution) runTest(
	ctx context.Context,
	path []*suite.Suite,
	chain suite.Chain,
	t *suite.Test,
) *report.Report {
	if t.Status() == suite.Ignored {
		return e.settle(path, report.NewSkipped(t.Name()))
	}

	ctx, span := e.tracer.Start(ctx, fmt.Sprintf("test %s", t.Name()))
	defer span.End()

	if hook, err := runHooks(ctx, chain.BeforeEach); err != nil {
		e.logHookError(path, hook, err).Warn("Hook failed, test not run")
		span.SetStatus(codes.Error, FailureMessage(err))

		return e.settle(path, report.NewFailure(t.Name(), FailureMessage(err), report.FailureHook, 0))
	}

	timeout := t.Timeout()
	if timeout == 0 {
		timeout = e.defaultTimeout
	}

	var rep *report.Report

	elapsed, err := invoke(ctx, t, suite.EffectiveContext(path), timeout)

	switch {
	case errors.Is(err, ErrTestTimeout):
		rep = report.NewFailure(t.Name(), ErrTestTimeout.Error(), report.FailureTimeout, elapsed)
	case err != nil:
		e.logPanic(t, err)
		rep = report.NewFailure(t.Name(), FailureMessage(err), report.FailureTest, elapsed)
	default:
		rep = report.NewSuccess(t.Name(), elapsed)
	}

	if hook, herr := runHooks(ctx, chain.AfterEach); herr != nil {
		if rep.Kind == report.KindSuccess {
			e.logHookError(path, hook, herr).Warn("Hook failed after test")
			rep = report.NewFailure(t.Name(), FailureMessage(herr), report.FailureHook, elapsed)
		} else {
			e.logHookError(path, hook, herr).Warn("Hook failed after failed test, keeping test failure")
		}
	}

	if rep.Kind == report.KindFailure {
		span.SetStatus(codes.Error, rep.Reason)
	}

	return e.settle(path, rep)
}

// settle emits the event of a test report and returns it.
func (e *execution) settle(path []*suite.Suite, rep *report.Report) *report.Report {
	names := append(pathNames(path), rep.Name)

	e.log.WithFields(logrus.Fields{
		"test":     strings.Join(names, "/"),
		"result":   rep.Result(),
		"duration": rep.Duration,
	}).Debug("Test settled")

	e.obs.TestSettled(report.TestEvent{
		Name:     rep.Name,
		Path:     names,
		Depth:    len(path),
		Result:   rep.Result(),
		Reason:   rep.Reason,
		Failure:  rep.Failure,
		Duration: rep.Duration,
	})

	return rep
}

// failedSubtree builds the report of a suite whose once-hook failed: every
// test of the subtree fails with reason and a zero duration. When emit is set
// the nested suites and tests are announced to the observer, as they never ran.
func (e *execution) failedSubtree(path []*suite.Suite, reason string, emit bool) *report.Report {
	s := path[len(path)-1]
	rep := report.NewComposite(s.Name())

	for _, child := range s.Children() {
		switch c := child.(type) {
		case *suite.Test:
			leaf := report.NewFailure(c.Name(), reason, report.FailureHook, 0)
			if emit {
				e.settle(path, leaf)
			}

			rep.Add(leaf)
		case *suite.Suite:
			nested := append(path[:len(path):len(path)], c)
			if !emit {
				rep.Add(e.failedSubtree(nested, reason, false))

				continue
			}

			ev := report.SuiteEvent{Name: c.Name(), Path: pathNames(nested), Depth: len(path)}
			e.obs.SuiteEntered(ev)

			sub := e.failedSubtree(nested, reason, true)

			ev.Result = sub.Result()
			ev.NumberOfTests = sub.NumberOfTests()
			e.obs.SuiteExited(ev)

			rep.Add(sub)
		}
	}

	return rep
}

func (e *execution) hookFailed(path []*suite.Suite, hook suite.BoundHook, err error) {
	e.logHookError(path, hook, err).Warn("Hook failed, failing every test of the suite")

	e.obs.HookFailed(report.HookEvent{
		Suite:  path[len(path)-1].Name(),
		Path:   pathNames(path),
		Depth:  len(path) - 1,
		Hook:   hook.Kind.String(),
		Reason: FailureMessage(err),
	})
}

func (e *execution) logHookError(path []*suite.Suite, hook suite.BoundHook, err error) logrus.FieldLogger {
	return e.log.WithError(err).WithFields(logrus.Fields{
		"suite":       strings.Join(pathNames(path), "/"),
		"hook":        hook.Kind.String(),
		"hook_source": hook.Suite,
	})
}

func (e *execution) logPanic(t *suite.Test, err error) {
	var perr *PanicError
	if errors.As(err, &perr) {
		e.log.WithField("test", t.Name()).Debugf("Test panicked: %s\n%s", perr.Error(), perr.Stack)
	}
}

// runHooks calls hooks in order and stops at the first failure, returning the
// failing hook.
func runHooks(ctx context.Context, hooks []suite.BoundHook) (suite.BoundHook, error) {
	for _, h := range hooks {
		if err := call(func() error { return h.Call(ctx) }); err != nil {
			return h, err
		}
	}

	return suite.BoundHook{}, nil
}

func pathNames(path []*suite.Suite) []string {
	names := make([]string, 0, len(path)+1)
	for _, s := range path {
		names = append(names, s.Name())
	}

	return names
}
