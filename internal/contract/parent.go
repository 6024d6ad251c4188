package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/jward/scopegraph/internal/graph"
	"github.com/jward/scopegraph/internal/ir"
	"github.com/jward/scopegraph/internal/names"
)

var (
	// ErrPriorGenerationNotFound means a scope was marked for reuse but no
	// previously generated implementation exists. This is a bug in the
	// incremental build, not a user error.
	ErrPriorGenerationNotFound = errors.New("previously generated scope implementation not found")
	// ErrParentContractNotFound means the generated implementation exists
	// but neither it nor the scope declares a parent contract.
	ErrParentContractNotFound = errors.New("generated parent contract not found")
)

// Mode is how a ResolvedParent was constructed.
type Mode int

const (
	ModeDerived Mode = iota + 1
	ModeExplicit
	ModeGenerated
)

func (m Mode) String() string {
	switch m {
	case ModeDerived:
		return "derived"
	case ModeExplicit:
		return "explicit"
	case ModeGenerated:
		return "generated"
	default:
		return "unknown"
	}
}

// ParentMethod is one accessor a scope requires its parent to implement.
// Transitive means the parent does not produce the value either and must
// obtain it further up.
type ParentMethod struct {
	Name       string
	Type       ir.Type
	Transitive bool
}

// ResolvedParent is the contract a non-root scope requires from its parent.
type ResolvedParent struct {
	Name    ir.Type
	Scope   ir.Type
	Mode    Mode
	Methods []ParentMethod
}

// MethodFor returns the first method supplying t.
func (p *ResolvedParent) MethodFor(t ir.Type) (ParentMethod, bool) {
	for _, m := range p.Methods {
		if m.Type.Equal(t) {
			return m, true
		}
	}
	return ParentMethod{}, false
}

// FromCalculated derives the parent contract from the scope's needs, which
// arrive in Type order. Names come from one shared allocator.
func FromCalculated(scope ir.Type, needs []graph.Need) *ResolvedParent {
	used := names.NewUniqueNameSet()
	methods := make([]ParentMethod, 0, len(needs))
	for _, n := range needs {
		methods = append(methods, ParentMethod{
			Name:       used.Unique(n.Type.PreferredName()),
			Type:       n.Type,
			Transitive: n.Transitive,
		})
	}
	return &ResolvedParent{
		Name:    names.GeneratedParent(scope),
		Scope:   scope,
		Mode:    ModeDerived,
		Methods: methods,
	}
}

// FromExplicit returns the authored contract verbatim. Transitive flags are
// taken from needs when a need of the same Type exists.
func FromExplicit(scope ir.Type, pc *ir.ParentContract, needs []graph.Need) *ResolvedParent {
	transitive := make(map[string]bool, len(needs))
	for _, n := range needs {
		transitive[n.Type.Key()] = n.Transitive
	}
	methods := make([]ParentMethod, len(pc.Methods))
	for i, m := range pc.Methods {
		methods[i] = ParentMethod{Name: m.Name, Type: m.Type, Transitive: transitive[m.Type.Key()]}
	}
	return &ResolvedParent{
		Name:    pc.Type,
		Scope:   scope,
		Mode:    ModeExplicit,
		Methods: methods,
	}
}

// GeneratedScope is a previously generated scope implementation.
type GeneratedScope struct {
	Scope  ir.Type
	Impl   ir.Type
	Parent *GeneratedParent
}

// GeneratedParent is the parent contract nested in a generated
// implementation.
type GeneratedParent struct {
	Name    ir.Type
	Methods []ParentMethod
}

// PriorLookup finds artifacts of an earlier generation. FindGenerated
// returns nil and no error when nothing was generated for scope.
type PriorLookup interface {
	FindGenerated(ctx context.Context, scope ir.Type) (*GeneratedScope, error)
}

// FromGenerated reads the contract of a previously generated implementation
// of scope, falling back to the scope's own explicit contract when the
// implementation carries none.
func FromGenerated(ctx context.Context, lookup PriorLookup, scope *ir.Scope) (*ResolvedParent, error) {
	gen, err := lookup.FindGenerated(ctx, scope.Type)
	if err != nil {
		return nil, fmt.Errorf("contract: find generated %s: %w", scope.Type, err)
	}
	if gen == nil {
		return nil, fmt.Errorf("contract: %s (%s): %w", scope.Type, names.ScopeImpl(scope.Type), ErrPriorGenerationNotFound)
	}

	rp := &ResolvedParent{Scope: scope.Type, Mode: ModeGenerated}
	switch {
	case gen.Parent != nil:
		rp.Name = gen.Parent.Name
		rp.Methods = append([]ParentMethod(nil), gen.Parent.Methods...)
	case scope.ParentContract != nil:
		rp.Name = scope.ParentContract.Type
		for _, m := range scope.ParentContract.Methods {
			rp.Methods = append(rp.Methods, ParentMethod{Name: m.Name, Type: m.Type})
		}
	default:
		return nil, fmt.Errorf("contract: %s: %w", gen.Impl, ErrParentContractNotFound)
	}
	return rp, nil
}

// ParentResolver picks the construction mode for each scope. Reuse marks
// scopes whose implementation from an earlier generation must be kept; it
// is only consulted when Lookup is set.
type ParentResolver struct {
	Lookup PriorLookup
	Reuse  func(scope ir.Type) bool
	Log    logr.Logger
}

// Resolve returns the parent contract of scope, or nil for a root.
func (p *ParentResolver) Resolve(ctx context.Context, res *graph.Resolution, scope *ir.Scope) (*ResolvedParent, error) {
	if res.Graph().IsRoot(scope.Type) {
		return nil, nil
	}

	var (
		rp  *ResolvedParent
		err error
	)
	switch {
	case p.Lookup != nil && p.Reuse != nil && p.Reuse(scope.Type):
		rp, err = FromGenerated(ctx, p.Lookup, scope)
		if err != nil {
			return nil, err
		}
	case scope.ParentContract != nil:
		rp = FromExplicit(scope.Type, scope.ParentContract, res.Needs(scope.Type))
	default:
		rp = FromCalculated(scope.Type, res.Needs(scope.Type))
	}
	p.Log.V(1).Info("resolved parent contract", "scope", scope.Type.String(), "mode", rp.Mode.String(), "methods", len(rp.Methods))
	return rp, nil
}
