package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/scopegraph"
)

func (c *cli) contractsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contracts [SCOPE]",
		Short: "List contracts stored by earlier resolutions",
		Long:  "Reads the generations stored in the database. With SCOPE, prints only that scope; with --requires, lists the contract methods supplying a type.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.runContracts,
	}
	cmd.Flags().StringVar(&c.requires, "requires", "", "list stored contract methods that supply this type")
	return cmd
}

func (c *cli) runContracts(cmd *cobra.Command, args []string) error {
	engine, err := scopegraph.New(c.db, scopegraph.WithLogger(c.log))
	if err != nil {
		return c.outputError("contracts", fmt.Errorf("creating engine: %w", err))
	}
	defer engine.Close()
	q := engine.Query()

	if c.requires != "" {
		reqs, err := q.Requiring(c.requires)
		if err != nil {
			return c.outputError("contracts", err)
		}
		out := []CLIRequirement{}
		for _, r := range reqs {
			out = append(out, CLIRequirement{Scope: r.Scope, Contract: r.Contract, Method: r.Method, Type: r.TypeExpr})
		}
		return c.outputResult(CLIResult{Command: "contracts", Results: out})
	}

	var gens []*scopegraph.Generation
	if len(args) == 1 {
		g, err := q.Generation(args[0])
		if err != nil {
			return c.outputError("contracts", err)
		}
		if g == nil {
			return c.outputError("contracts", fmt.Errorf("no stored contracts for %s", args[0]))
		}
		gens = append(gens, g)
	} else {
		gens, err = q.Generations()
		if err != nil {
			return c.outputError("contracts", err)
		}
	}

	out := []CLIGeneration{}
	for _, g := range gens {
		out = append(out, toCLIGeneration(g))
	}
	return c.outputResult(CLIResult{Command: "contracts", Results: out})
}
