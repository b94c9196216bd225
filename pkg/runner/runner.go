package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ethpandaops/testoor/pkg/filter"
	"github.com/ethpandaops/testoor/pkg/report"
	"github.com/ethpandaops/testoor/pkg/suite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "testoor runner"

// Runner executes a suite tree and builds its report.
type Runner interface {
	// Run validates, selects and normalizes root, then executes it depth-first.
	// Only configuration errors are returned: hook, test and timeout failures
	// end up in the report.
	Run(ctx context.Context, root *suite.Suite) (*report.Report, error)
}

// Config for the runner.
type Config struct {
	// DefaultTimeout applies to tests registered without a timeout.
	DefaultTimeout time.Duration

	// Filter holds doublestar patterns matched against slash-joined test
	// paths. Tests matching none of them are skipped.
	Filter []string

	// Observer receives traversal events. Nil means no observer.
	Observer report.Observer
}

// NewRunner creates a new runner instance.
func NewRunner(log logrus.FieldLogger, cfg *Config) Runner {
	if cfg == nil {
		cfg = &Config{}
	}

	if cfg.DefaultTimeout == 0 {
		cfg.DefaultTimeout = suite.DefaultTimeout
	}

	if cfg.Observer == nil {
		cfg.Observer = report.NopObserver{}
	}

	return &runner{
		log:    log.WithField("component", "runner"),
		cfg:    cfg,
		tracer: otel.Tracer(tracerName),
	}
}

type runner struct {
	log    logrus.FieldLogger
	cfg    *Config
	tracer trace.Tracer
}

// Ensure interface compliance.
var _ Runner = (*runner)(nil)

// Run executes root and returns its report.
func (r *runner) Run(ctx context.Context, root *suite.Suite) (*report.Report, error) {
	if root == nil {
		return nil, fmt.Errorf("nil root suite: %w", suite.ErrInvalidRegistration)
	}

	if err := root.Validate(); err != nil {
		return nil, fmt.Errorf("validating suite %q: %w", root.Name(), err)
	}

	selected, err := filter.Select(root, r.cfg.Filter)
	if err != nil {
		return nil, fmt.Errorf("applying filter: %w", err)
	}

	normalized := suite.Normalize(selected)
	if normalized.RunnableCount() == 0 {
		return nil, fmt.Errorf("suite %q has no runnable test: %w", root.Name(), suite.ErrNoTests)
	}

	runID := uuid.New().String()
	log := r.log.WithFields(logrus.Fields{
		"run_id": runID,
		"suite":  root.Name(),
	})

	// Cancelling the caller's context does not abort a run.
	ctx, span := r.tracer.Start(context.WithoutCancel(ctx), fmt.Sprintf("run %s", root.Name()),
		trace.WithAttributes(attribute.String("testoor.run_id", runID)))
	defer span.End()

	log.WithField("tests", normalized.RunnableCount()).Info("Starting run")

	start := time.Now()
	exec := &execution{
		log:            log,
		tracer:         r.tracer,
		obs:            r.cfg.Observer,
		defaultTimeout: r.cfg.DefaultTimeout,
	}

	rep := exec.visitSuite(ctx, []*suite.Suite{normalized})
	stats := rep.Stats()

	log.WithFields(logrus.Fields{
		"result":   rep.Result(),
		"passed":   stats.Passed,
		"failed":   stats.Failed,
		"skipped":  stats.Skipped,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Run finished")

	return rep, nil
}
