package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethpandaops/testoor/pkg/api"
	"github.com/ethpandaops/testoor/pkg/config"
	"github.com/ethpandaops/testoor/pkg/report"
	"github.com/ethpandaops/testoor/pkg/reporter"
	"github.com/ethpandaops/testoor/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ErrRunFailed is returned when at least one test failed.
var ErrRunFailed = errors.New("run failed")

// loadConfig loads the config file and applies the flags set on cmd.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(a.opts.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()

	if flags.Changed("log-level") {
		cfg.Global.LogLevel = a.opts.logLevel
	}

	if flags.Changed("filter") {
		cfg.Run.Filter = a.opts.filters
	}

	if flags.Changed("timeout") {
		cfg.Run.DefaultTimeout = a.opts.timeout
	}

	if flags.Changed("output") {
		cfg.Run.Output = a.opts.output
	}

	if flags.Changed("summary") {
		cfg.Run.Summary = a.opts.summary
	}

	if flags.Changed("markdown-summary") {
		cfg.Run.MarkdownSummary = a.opts.markdown
	}

	if flags.Changed("api-listen") {
		cfg.API.Enabled = true
		cfg.API.Server.Listen = a.opts.apiListen
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.Global.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Global.LogLevel, err)
	}

	a.log.SetLevel(level)

	return cfg, nil
}

func (a *app) run(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	// Setup context with signal handling.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := reporter.NewProgress()
	observers := report.Observers{progress}

	if cfg.Run.Output == config.OutputConsole {
		observers = append(observers, reporter.NewConsole(a.out))
	}

	var gatherer prometheus.Gatherer

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		observers = append(observers, reporter.NewMetrics(registry, cfg.Metrics.Namespace))
		gatherer = registry
	}

	r := runner.NewRunner(a.log, &runner.Config{
		DefaultTimeout: cfg.Run.DefaultTimeout,
		Filter:         cfg.Run.Filter,
		Observer:       observers,
	})

	// Closed once the report is complete.
	finished := make(chan struct{})

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.API.Enabled {
		srv := api.NewServer(a.log, &cfg.API, progress, gatherer)
		if err := srv.Start(gCtx); err != nil {
			return fmt.Errorf("starting status server: %w", err)
		}

		g.Go(func() error {
			select {
			case <-finished:
				if a.opts.apiWait {
					a.log.WithField("listen", srv.Addr()).Info("Run finished, serving status until interrupted")
					<-gCtx.Done()
				}
			case <-gCtx.Done():
			}

			return srv.Stop()
		})
	}

	var (
		rep     *report.Report
		elapsed time.Duration
	)

	g.Go(func() error {
		start := time.Now()

		// Interrupting stops the status server but never the run itself.
		var runErr error

		rep, runErr = r.Run(ctx, a.root)
		if runErr != nil {
			return fmt.Errorf("running suites: %w", runErr)
		}

		elapsed = time.Since(start)
		progress.Finish(rep)
		close(finished)

		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if err := a.write(cfg, rep, elapsed); err != nil {
		return err
	}

	if rep.Result() == report.ResultFailure {
		stats := rep.Stats()

		return fmt.Errorf("%w: %d of %d tests failed", ErrRunFailed, stats.Failed, stats.Total)
	}

	return nil
}

func (a *app) write(cfg *config.Config, rep *report.Report, elapsed time.Duration) error {
	if cfg.Run.MarkdownSummary != "" {
		if err := reporter.AppendMarkdown(cfg.Run.MarkdownSummary, rep, elapsed); err != nil {
			return err
		}

		a.log.WithField("path", cfg.Run.MarkdownSummary).Info("Markdown summary written")
	}

	switch cfg.Run.Output {
	case config.OutputJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")

		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}

		return nil
	case config.OutputNone:
		return nil
	}

	if cfg.Run.Summary {
		fmt.Fprintln(a.out)
		reporter.WriteSummary(a.out, rep, elapsed)
	}

	return nil
}
