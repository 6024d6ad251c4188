package main

import (
	"time"

	"github.com/jward/scopegraph"
	"github.com/jward/scopegraph/internal/graph"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command     string          `json:"command"`
	Results     any             `json:"results"`
	Diagnostics []CLIDiagnostic `json:"diagnostics,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// CLIScope is the JSON-friendly form of everything generated for a scope.
type CLIScope struct {
	Scope        string           `json:"scope"`
	Impl         string           `json:"impl"`
	Root         bool             `json:"root"`
	Reused       bool             `json:"reused,omitempty"`
	Dependencies *CLIDependencies `json:"dependencies,omitempty"`
	Parent       *CLIParent       `json:"parent,omitempty"`
}

type CLIDependencies struct {
	Name    string                `json:"name"`
	Methods []CLIDependencyMethod `json:"methods"`
}

type CLIDependencyMethod struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	RequestedFrom []string `json:"requested_from"`
}

type CLIParent struct {
	Name    string            `json:"name"`
	Mode    string            `json:"mode"`
	Methods []CLIParentMethod `json:"methods"`
}

type CLIParentMethod struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Transitive bool   `json:"transitive"`
}

// CLIDiagnostic is one problem found in the declarations.
type CLIDiagnostic struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// CLIGeneration is a JSON-friendly stored generation.
type CLIGeneration struct {
	Scope         string           `json:"scope"`
	Impl          string           `json:"impl"`
	SignatureHash string           `json:"signature_hash"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Dependencies  *CLIDependencies `json:"dependencies,omitempty"`
	Parent        *CLIParent       `json:"parent,omitempty"`
}

// CLIRequirement is a JSON-friendly stored contract method.
type CLIRequirement struct {
	Scope    string `json:"scope"`
	Contract string `json:"contract"`
	Method   string `json:"method"`
	Type     string `json:"type"`
}

// --- Conversion helpers ---

func toCLIScopes(res *scopegraph.Result) []CLIScope {
	reused := make(map[string]bool, len(res.Reused))
	for _, t := range res.Reused {
		reused[t.Key()] = true
	}

	var out []CLIScope
	for _, sc := range res.Scopes() {
		cs := CLIScope{
			Scope:  sc.Scope.String(),
			Impl:   sc.Impl.String(),
			Root:   sc.Root,
			Reused: reused[sc.Scope.Key()],
		}
		if d := sc.Dependencies; d != nil {
			cs.Dependencies = &CLIDependencies{Name: d.Name.String(), Methods: []CLIDependencyMethod{}}
			for _, m := range d.Methods() {
				cm := CLIDependencyMethod{Name: m.Name, Type: m.Type.String()}
				for _, r := range m.Requesters {
					cm.RequestedFrom = append(cm.RequestedFrom, r.String())
				}
				cs.Dependencies.Methods = append(cs.Dependencies.Methods, cm)
			}
		}
		if p := sc.Parent; p != nil {
			cs.Parent = &CLIParent{Name: p.Name.String(), Mode: p.Mode.String(), Methods: []CLIParentMethod{}}
			for _, m := range p.Methods {
				cs.Parent.Methods = append(cs.Parent.Methods, CLIParentMethod{
					Name: m.Name, Type: m.Type.String(), Transitive: m.Transitive,
				})
			}
		}
		out = append(out, cs)
	}
	return out
}

func toCLIDiagnostics(errs *graph.GraphErrors) []CLIDiagnostic {
	var out []CLIDiagnostic
	for _, err := range errs.Errors() {
		out = append(out, CLIDiagnostic{Kind: diagnosticKind(err), Message: err.Error()})
	}
	return out
}

func diagnosticKind(err error) string {
	switch {
	case graph.AsScopeCycleError(err) != nil:
		return "scope_cycle"
	case graph.AsMissingDependenciesError(err) != nil:
		return "missing_dependencies"
	case graph.AsDependencyCycleError(err) != nil:
		return "dependency_cycle"
	case graph.AsDuplicateFactoryMethodsError(err) != nil:
		return "duplicate_factory_methods"
	default:
		return "error"
	}
}

func toCLIGeneration(g *scopegraph.Generation) CLIGeneration {
	out := CLIGeneration{
		Scope:         g.ScopeType,
		Impl:          g.ImplType,
		SignatureHash: g.SignatureHash,
		GeneratedAt:   g.GeneratedAt,
	}
	if g.ParentName != "" {
		out.Parent = &CLIParent{Name: g.ParentName, Mode: g.ParentMode, Methods: []CLIParentMethod{}}
		for _, m := range g.ParentMethods {
			out.Parent.Methods = append(out.Parent.Methods, CLIParentMethod{
				Name: m.Name, Type: m.TypeExpr, Transitive: m.Transitive,
			})
		}
	}
	if g.DependenciesName != "" {
		out.Dependencies = &CLIDependencies{Name: g.DependenciesName, Methods: []CLIDependencyMethod{}}
		for _, m := range g.DependencyMethods {
			cm := CLIDependencyMethod{Name: m.Name, Type: m.TypeExpr}
			for _, r := range m.Requesters {
				cm.RequestedFrom = append(cm.RequestedFrom, r.String())
			}
			out.Dependencies.Methods = append(out.Dependencies.Methods, cm)
		}
	}
	return out
}
