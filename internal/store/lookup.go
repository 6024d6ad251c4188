package store

import (
	"context"
	"fmt"

	"github.com/jward/scopegraph/internal/contract"
	"github.com/jward/scopegraph/internal/ir"
)

// Compile-time check: *Store can answer prior generation lookups.
var _ contract.PriorLookup = (*Store)(nil)

// FindGenerated returns the stored implementation of scope as a
// contract.GeneratedScope, or nil when scope was never generated.
func (s *Store) FindGenerated(ctx context.Context, scope ir.Type) (*contract.GeneratedScope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := s.GenerationByScope(scope.String())
	if err != nil || g == nil {
		return nil, err
	}
	impl, err := ir.ParseType(g.ImplType)
	if err != nil {
		return nil, fmt.Errorf("find generated %s: %w", scope, err)
	}
	out := &contract.GeneratedScope{Scope: scope, Impl: impl}
	if g.ParentName == "" {
		return out, nil
	}

	name, err := ir.ParseType(g.ParentName)
	if err != nil {
		return nil, fmt.Errorf("find generated %s: %w", scope, err)
	}
	parent := &contract.GeneratedParent{Name: name}
	for _, m := range g.ParentMethods {
		t, err := ir.ParseType(m.TypeExpr)
		if err != nil {
			return nil, fmt.Errorf("find generated %s: method %s: %w", scope, m.Name, err)
		}
		parent.Methods = append(parent.Methods, contract.ParentMethod{Name: m.Name, Type: t, Transitive: m.Transitive})
	}
	out.Parent = parent
	return out, nil
}
