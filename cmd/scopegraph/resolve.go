package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/scopegraph"
)

func (c *cli) resolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve FILE...",
		Short: "Resolve scope declarations and print their contracts",
		Long: "Loads scope declarations from IR documents (.yaml, .yml, .json) or Risor scripts (.risor), " +
			"resolves them as one graph and prints the generated contracts, or the diagnostics when the graph is invalid.",
		Args: cobra.MinimumNArgs(1),
		RunE: c.runResolve,
	}
	cmd.Flags().BoolVar(&c.incremental, "incremental", false, "reuse stored parent contracts of unchanged scopes")
	return cmd
}

func (c *cli) runResolve(cmd *cobra.Command, args []string) error {
	start := time.Now()

	engine, err := scopegraph.New(c.db,
		scopegraph.WithLogger(c.log),
		scopegraph.WithIncremental(c.incremental),
	)
	if err != nil {
		return c.outputError("resolve", fmt.Errorf("creating engine: %w", err))
	}
	defer engine.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := engine.CompileFiles(ctx, args...)
	if err != nil {
		return c.outputError("resolve", err)
	}
	c.log.V(1).Info("resolved", "files", len(args), "scopes", res.Graph.Len(),
		"reused", len(res.Reused), "duration", time.Since(start).Round(time.Millisecond).String())

	result := CLIResult{
		Command:     "resolve",
		Results:     toCLIScopes(res),
		Diagnostics: toCLIDiagnostics(res.Errors),
	}
	if err := c.outputResult(result); err != nil {
		return err
	}
	if !res.Errors.IsEmpty() {
		return errDiagnostics
	}
	return nil
}
