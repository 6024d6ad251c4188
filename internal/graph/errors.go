package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jward/scopegraph/internal/ir"
)

// Fatal construction errors. These indicate a broken front end, not a user
// mistake, and abort before any diagnostics are computed.
var (
	ErrDanglingChild  = errors.New("child scope is not declared")
	ErrDuplicateScope = errors.New("scope is declared more than once")
)

// ScopeCycleError reports a scope that is reachable from itself through
// child references. Path starts and ends with the same scope.
type ScopeCycleError struct {
	Path []ir.Type
}

func (e *ScopeCycleError) Error() string {
	return "scope cycle: " + joinTypes(e.Path, " -> ")
}

// MissingDependency is one unmet Type and everyone who asked for it.
type MissingDependency struct {
	Type       ir.Type
	Requesters []ir.Requester
}

// MissingDependenciesError lists the Types requested by sinks declared in
// Scope that no ancestor provides.
type MissingDependenciesError struct {
	Scope   ir.Type
	Missing []MissingDependency
}

func (e *MissingDependenciesError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "missing dependencies in %s:", e.Scope)
	for _, m := range e.Missing {
		reqs := make([]string, len(m.Requesters))
		for i, r := range m.Requesters {
			reqs[i] = r.String()
		}
		fmt.Fprintf(&b, " %s (requested from %s);", m.Type, strings.Join(reqs, ", "))
	}
	return strings.TrimSuffix(b.String(), ";")
}

// DependencyCycle is a closed path of Types within one scope, where each
// Type's factory requires the next.
type DependencyCycle struct {
	Scope ir.Type
	Path  []ir.Type
}

func (c DependencyCycle) String() string {
	return c.Scope.String() + ": " + joinTypes(c.Path, " -> ")
}

// DependencyCycleError aggregates every dependency cycle in the graph.
type DependencyCycleError struct {
	Cycles []DependencyCycle
}

func (e *DependencyCycleError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		parts[i] = c.String()
	}
	return "dependency cycle: " + strings.Join(parts, "; ")
}

// DuplicateFactoryMethods is one Type produced by more than one factory in
// the same scope.
type DuplicateFactoryMethods struct {
	Scope     ir.Type
	Type      ir.Type
	Producers []string
}

// DuplicateFactoryMethodsError aggregates duplicated producers across the
// graph.
type DuplicateFactoryMethodsError struct {
	Duplicates []DuplicateFactoryMethods
}

func (e *DuplicateFactoryMethodsError) Error() string {
	parts := make([]string, len(e.Duplicates))
	for i, d := range e.Duplicates {
		parts[i] = fmt.Sprintf("%s: %s produced by %s", d.Scope, d.Type, strings.Join(d.Producers, ", "))
	}
	return "duplicate factory methods: " + strings.Join(parts, "; ")
}

// GraphErrors is the diagnostic report of one compilation. Each kind is
// computed independently of the others.
type GraphErrors struct {
	ScopeCycle              *ScopeCycleError
	MissingDependencies     []*MissingDependenciesError
	DependencyCycle         *DependencyCycleError
	DuplicateFactoryMethods *DuplicateFactoryMethodsError
}

// IsEmpty reports whether the graph is valid.
func (g *GraphErrors) IsEmpty() bool {
	return g.ScopeCycle == nil &&
		len(g.MissingDependencies) == 0 &&
		g.DependencyCycle == nil &&
		g.DuplicateFactoryMethods == nil
}

// Errors returns the diagnostics in report order.
func (g *GraphErrors) Errors() []error {
	var errs []error
	if g.ScopeCycle != nil {
		errs = append(errs, g.ScopeCycle)
	}
	for _, m := range g.MissingDependencies {
		errs = append(errs, m)
	}
	if g.DependencyCycle != nil {
		errs = append(errs, g.DependencyCycle)
	}
	if g.DuplicateFactoryMethods != nil {
		errs = append(errs, g.DuplicateFactoryMethods)
	}
	return errs
}

// Err joins every diagnostic into one error, or returns nil.
func (g *GraphErrors) Err() error {
	return errors.Join(g.Errors()...)
}

// AsScopeCycleError returns the ScopeCycleError in err's chain, or nil.
func AsScopeCycleError(err error) *ScopeCycleError {
	var e *ScopeCycleError
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// AsMissingDependenciesError returns the first MissingDependenciesError in
// err's chain, or nil.
func AsMissingDependenciesError(err error) *MissingDependenciesError {
	var e *MissingDependenciesError
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// AsDependencyCycleError returns the DependencyCycleError in err's chain, or nil.
func AsDependencyCycleError(err error) *DependencyCycleError {
	var e *DependencyCycleError
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// AsDuplicateFactoryMethodsError returns the DuplicateFactoryMethodsError in
// err's chain, or nil.
func AsDuplicateFactoryMethodsError(err error) *DuplicateFactoryMethodsError {
	var e *DuplicateFactoryMethodsError
	if errors.As(err, &e) {
		return e
	}
	return nil
}

func joinTypes(types []ir.Type, sep string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}
