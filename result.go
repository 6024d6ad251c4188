package scopegraph

import (
	"github.com/jward/scopegraph/internal/contract"
	"github.com/jward/scopegraph/internal/graph"
	"github.com/jward/scopegraph/internal/ir"
	"github.com/jward/scopegraph/internal/names"
)

// Result is the outcome of one compilation. Contracts are computed even
// when Errors is not empty, but an emitter should only consume them when
// Errors.IsEmpty() is true.
type Result struct {
	Graph      *graph.Graph
	Resolution *graph.Resolution
	Errors     *graph.GraphErrors

	// Reused lists the scopes whose parent contract was read back from an
	// earlier generation, in Type order.
	Reused []ir.Type

	dependencies map[string]*contract.Dependencies
	parents      map[string]*contract.ResolvedParent
	hashes       map[string]string
}

// Dependencies returns the external contract of a root scope.
func (r *Result) Dependencies(scope ir.Type) (*contract.Dependencies, bool) {
	d, ok := r.dependencies[scope.Key()]
	return d, ok
}

// ResolvedParent returns the parent contract of a non-root scope.
func (r *Result) ResolvedParent(scope ir.Type) (*contract.ResolvedParent, bool) {
	p, ok := r.parents[scope.Key()]
	return p, ok
}

// SignatureHash returns the signature hash computed for scope. It is empty
// when the graph has a scope cycle.
func (r *Result) SignatureHash(scope ir.Type) string {
	return r.hashes[scope.Key()]
}

// ScopeContracts gathers everything generated for one scope.
type ScopeContracts struct {
	Scope        ir.Type
	Impl         ir.Type
	Root         bool
	Dependencies *contract.Dependencies
	Parent       *contract.ResolvedParent
}

// Scopes returns the contracts of every scope in Type order.
func (r *Result) Scopes() []ScopeContracts {
	scopes := r.Graph.Scopes()
	out := make([]ScopeContracts, 0, len(scopes))
	for _, s := range scopes {
		sc := ScopeContracts{
			Scope: s.Type,
			Impl:  names.ScopeImpl(s.Type),
			Root:  r.Graph.IsRoot(s.Type),
		}
		sc.Dependencies, _ = r.Dependencies(s.Type)
		sc.Parent, _ = r.ResolvedParent(s.Type)
		out = append(out, sc)
	}
	return out
}
