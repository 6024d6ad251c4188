package scopegraph

import (
	"fmt"

	"github.com/jward/scopegraph/internal/ir"
	"github.com/jward/scopegraph/internal/store"
)

// QueryBuilder provides read access to the contracts stored by earlier
// compilations.
type QueryBuilder struct {
	store *store.Store
}

// Requirement is one stored contract method that supplies a Type.
type Requirement struct {
	Scope    string
	Contract string // "parent" or "dependencies"
	Method   string
	TypeExpr string
}

// Generations returns every stored generation in scope order.
func (q *QueryBuilder) Generations() ([]*Generation, error) {
	return q.store.Generations()
}

// Generation returns the stored generation of scope, or nil if the scope
// was never generated. scope is parsed so any spelling of the type works.
func (q *QueryBuilder) Generation(scope string) (*Generation, error) {
	t, err := ir.ParseType(scope)
	if err != nil {
		return nil, fmt.Errorf("generation: %w", err)
	}
	return q.store.GenerationByScope(t.String())
}

// Requiring lists the stored contract methods that supply typeExpr, across
// parent contracts and dependencies contracts, ordered by scope and method.
func (q *QueryBuilder) Requiring(typeExpr string) ([]Requirement, error) {
	t, err := ir.ParseType(typeExpr)
	if err != nil {
		return nil, fmt.Errorf("requiring: %w", err)
	}

	rows, err := q.store.DB().Query(
		`SELECT g.scope_type, 'parent', m.name, m.type_expr
		   FROM parent_methods m JOIN generated_scopes g ON g.id = m.scope_id
		  WHERE m.type_expr = ?
		 UNION ALL
		 SELECT g.scope_type, 'dependencies', m.name, m.type_expr
		   FROM dependency_methods m JOIN generated_scopes g ON g.id = m.scope_id
		  WHERE m.type_expr = ?
		 ORDER BY 1, 3`,
		t.String(), t.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("requiring: query: %w", err)
	}
	defer rows.Close()

	var out []Requirement
	for rows.Next() {
		var r Requirement
		if err := rows.Scan(&r.Scope, &r.Contract, &r.Method, &r.TypeExpr); err != nil {
			return nil, fmt.Errorf("requiring: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("requiring: rows: %w", err)
	}
	return out, nil
}

// Stale returns the stored scopes whose signature hash differs from the one
// in result, or which result no longer declares, in scope order.
func (q *QueryBuilder) Stale(result *Result) ([]string, error) {
	hashes, err := q.store.SignatureHashes()
	if err != nil {
		return nil, fmt.Errorf("stale: %w", err)
	}
	gens, err := q.store.Generations()
	if err != nil {
		return nil, fmt.Errorf("stale: %w", err)
	}
	var out []string
	for _, g := range gens {
		t, err := ir.ParseType(g.ScopeType)
		if err != nil {
			return nil, fmt.Errorf("stale: %w", err)
		}
		if _, ok := result.Graph.Scope(t); !ok || result.SignatureHash(t) != hashes[g.ScopeType] {
			out = append(out, g.ScopeType)
		}
	}
	return out, nil
}
