package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

var (
	headingColor = color.New(color.Bold)
	errorColor   = color.RGB(229, 50, 50)
	validColor   = color.RGB(50, 108, 229)
)

// outputResult writes result in the selected format to stdout.
func (c *cli) outputResult(result CLIResult) error {
	if c.format == "text" {
		return outputResultText(c.stdout, result)
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func (c *cli) outputError(command string, err error) error {
	c.errorHandled = true
	if c.format == "text" {
		fmt.Fprintf(c.stderr, "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	if len(result.Diagnostics) > 0 {
		formatDiagnosticsText(w, result.Diagnostics)
		return nil
	}

	switch v := result.Results.(type) {
	case []CLIScope:
		formatScopesText(w, v)
		fmt.Fprintln(w, validColor.Sprint("Valid!"), fmt.Sprintf("%d scopes resolved.", len(v)))
	case []CLIGeneration:
		formatGenerationsText(w, v)
	case []CLIRequirement:
		formatRequirementsText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// formatDiagnosticsText prints one line per diagnostic.
func formatDiagnosticsText(w io.Writer, diags []CLIDiagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, errorColor.Sprint("Error!"), d.Message)
	}
}

// formatScopesText prints the contracts of every resolved scope.
func formatScopesText(w io.Writer, scopes []CLIScope) {
	for _, s := range scopes {
		heading := "Scope " + s.Scope
		if s.Root {
			heading += " (root)"
		}
		if s.Reused {
			heading += " (reused)"
		}
		fmt.Fprintln(w, headingColor.Sprint(heading))
		fmt.Fprintf(w, "  Impl: %s\n", s.Impl)
		formatContractsText(w, s.Dependencies, s.Parent)
		fmt.Fprintln(w)
	}
}

// formatGenerationsText prints stored generations.
func formatGenerationsText(w io.Writer, gens []CLIGeneration) {
	for _, g := range gens {
		fmt.Fprintln(w, headingColor.Sprint("Scope "+g.Scope))
		fmt.Fprintf(w, "  Impl: %s\n", g.Impl)
		fmt.Fprintf(w, "  Hash: %s\n", g.SignatureHash)
		if !g.GeneratedAt.IsZero() {
			fmt.Fprintf(w, "  Generated: %s\n", g.GeneratedAt.Format("2006-01-02 15:04:05"))
		}
		formatContractsText(w, g.Dependencies, g.Parent)
		fmt.Fprintln(w)
	}
}

func formatContractsText(w io.Writer, deps *CLIDependencies, parent *CLIParent) {
	if deps != nil {
		fmt.Fprintf(w, "  Dependencies: %s\n", deps.Name)
		if len(deps.Methods) > 0 {
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "    METHOD\tTYPE\tREQUESTED FROM")
			for _, m := range deps.Methods {
				fmt.Fprintf(tw, "    %s\t%s\t%s\n", m.Name, m.Type, strings.Join(m.RequestedFrom, ", "))
			}
			tw.Flush()
		}
	}
	if parent != nil {
		fmt.Fprintf(w, "  Parent: %s (%s)\n", parent.Name, parent.Mode)
		if len(parent.Methods) > 0 {
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "    METHOD\tTYPE\tTRANSITIVE")
			for _, m := range parent.Methods {
				fmt.Fprintf(tw, "    %s\t%s\t%t\n", m.Name, m.Type, m.Transitive)
			}
			tw.Flush()
		}
	}
}

// formatRequirementsText prints stored contract methods as aligned columns.
func formatRequirementsText(w io.Writer, reqs []CLIRequirement) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCOPE\tCONTRACT\tMETHOD\tTYPE")
	for _, r := range reqs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Scope, r.Contract, r.Method, r.Type)
	}
	tw.Flush()
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
