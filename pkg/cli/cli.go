// Package cli builds the command line of a test binary around a root suite.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ethpandaops/testoor/pkg/suite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information set at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

type options struct {
	cfgFile   string
	logLevel  string
	filters   []string
	timeout   time.Duration
	output    string
	summary   bool
	apiListen string
	apiWait   bool
	markdown  string
	format    string
}

type app struct {
	root *suite.Suite
	log  *logrus.Logger
	out  io.Writer
	opts options
}

// Execute runs the command line for root and exits non-zero on failure.
func Execute(root *suite.Suite) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := NewCommand(root, log, os.Stdout).Execute(); err != nil {
		log.WithError(err).Fatal("Failed to execute command")
	}
}

// NewCommand returns the root command. Running it without a subcommand runs
// the suite. Reports are written to out and logs to log.
func NewCommand(root *suite.Suite, log *logrus.Logger, out io.Writer) *cobra.Command {
	a := &app{root: root, log: log, out: out}

	rootCmd := &cobra.Command{
		Use:   "testoor",
		Short: "Run registered test suites",
		Long: `Runs the test suites registered in this binary, depth-first, with
focus and ignore markers, per-test timeouts and contained failures.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(a.opts.logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", a.opts.logLevel, err)
			}

			a.log.SetLevel(level)

			return nil
		},
		RunE: a.run,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.opts.cfgFile, "config", "", "config file path (.yaml, .yml or .toml)")
	flags.StringVar(&a.opts.logLevel, "log-level", "info",
		"log level ("+strings.Join(logLevels(), ", ")+")")
	flags.StringSliceVar(&a.opts.filters, "filter", nil,
		"only run tests whose path matches one of these patterns (comma-separated or repeated flag)")
	flags.DurationVar(&a.opts.timeout, "timeout", 0, "default per-test timeout")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the suites",
		RunE:  a.run,
	}

	for _, fs := range []*cobra.Command{rootCmd, runCmd} {
		fs.Flags().StringVar(&a.opts.output, "output", "", "report output (console, json, none)")
		fs.Flags().BoolVar(&a.opts.summary, "summary", true, "print the summary table after the run")
		fs.Flags().StringVar(&a.opts.apiListen, "api-listen", "", "serve run status on this address")
		fs.Flags().BoolVar(&a.opts.apiWait, "api-wait", false,
			"keep serving run status after the run until interrupted")
		fs.Flags().StringVar(&a.opts.markdown, "markdown-summary", "",
			"append a markdown summary to this file, e.g. $GITHUB_STEP_SUMMARY")
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the tests that would run",
		RunE:  a.list,
	}
	listCmd.Flags().StringVar(&a.opts.format, "format", "text", "list format (text, yaml)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "testoor %s\n", Version)
			fmt.Fprintf(a.out, "  commit: %s\n", Commit)
			fmt.Fprintf(a.out, "  built:  %s\n", Date)
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, versionCmd)

	return rootCmd
}

func logLevels() []string {
	levels := make([]string, 0, len(logrus.AllLevels))
	for _, level := range logrus.AllLevels {
		levels = append(levels, level.String())
	}

	return levels
}
