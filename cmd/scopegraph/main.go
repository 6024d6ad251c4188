package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jward/scopegraph/internal/config"
)

// errDiagnostics is returned when the declarations have problems. The
// diagnostics themselves were already printed.
var errDiagnostics = errors.New("declarations have errors")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code: 0 on success,
// 1 on failure, 2 when diagnostics were reported.
func run(args []string, stdout, stderr io.Writer) int {
	c := newCLI(stdout, stderr)
	defer c.sync()

	cmd := c.rootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errDiagnostics):
		return 2
	default:
		if !c.errorHandled {
			fmt.Fprintf(stderr, "Error: %s\n", err)
		}
		return 1
	}
}

// cli holds flag values and output streams for one invocation.
type cli struct {
	stdout, stderr io.Writer

	envFile     string
	db          string
	format      string
	verbose     bool
	incremental bool
	requires    string

	cfg  *config.Config
	log  logr.Logger
	sync func()

	// errorHandled is set by outputError so run doesn't double-print.
	errorHandled bool
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{
		stdout: stdout,
		stderr: stderr,
		log:    logr.Discard(),
		sync:   func() {},
	}
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "scopegraph",
		Short:         "Resolve dependency-injection scope graphs",
		Long:          "Scopegraph validates a hierarchy of dependency-injection scopes and computes the contracts each scope requires from outside and from its parents.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.configure(cmd)
		},
		// No Run: prints help by default.
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.envFile, "env-file", ".env", "optional dotenv file with SCOPEGRAPH_* settings")
	pf.StringVar(&c.db, "db", config.DefaultDBPath, "database path for stored generations ($"+config.EnvDB+")")
	pf.StringVar(&c.format, "format", config.DefaultFormat, "output format: json|text ($"+config.EnvFormat+")")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "verbose logging ($"+config.EnvVerbose+")")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.contractsCommand())
	return root
}

// configure merges the environment into flags the user did not set, then
// validates the result and builds the logger.
func (c *cli) configure(cmd *cobra.Command) error {
	cfg, err := config.Load(c.envFile, os.LookupEnv)
	if err != nil {
		return err
	}
	c.cfg = cfg

	flags := cmd.Flags()
	if !flags.Changed("db") {
		c.db = cfg.DBPath
	}
	if !flags.Changed("format") {
		c.format = cfg.Format
	}
	if !flags.Changed("verbose") {
		c.verbose = cfg.Verbose
	}
	if f := flags.Lookup("incremental"); f != nil && !f.Changed {
		c.incremental = cfg.Incremental
	}

	if err := validateFormat(c.format); err != nil {
		return err
	}
	return c.buildLogger()
}

// buildLogger creates a zap logger, development style when verbose, and
// adapts it to logr.
func (c *cli) buildLogger() error {
	var (
		z   *zap.Logger
		err error
	)
	if c.verbose {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	c.log = zapr.NewLogger(z)
	c.sync = func() { _ = z.Sync() }
	return nil
}
