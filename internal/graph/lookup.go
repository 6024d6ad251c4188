package graph

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/jward/scopegraph/internal/ir"
)

// Graph returns the resolved graph.
func (r *Resolution) Graph() *Graph {
	return r.graph
}

// Errors returns the diagnostic report. It is never nil.
func (r *Resolution) Errors() *GraphErrors {
	return r.errors
}

func (r *Resolution) info(scope ir.Type) (int, *scopeInfo, bool) {
	i, ok := r.graph.index[scope.Key()]
	if !ok {
		return 0, nil, false
	}
	return i, r.infos[i], true
}

// Produced returns the Types available inside scope without asking a
// parent: its factory outputs and its own Type, in Type order.
func (r *Resolution) Produced(scope ir.Type) []ir.Type {
	_, info, ok := r.info(scope)
	if !ok {
		return nil
	}
	types := info.sortedFactoryTypes()
	if _, hasFactory := info.factories[scope.Key()]; !hasFactory {
		types = append(types, scope)
		ir.SortTypes(types)
	}
	return types
}

// Unsatisfied returns the sinks declared by scope that scope cannot satisfy
// itself, in sink order. For a root these make up its Dependencies.
func (r *Resolution) Unsatisfied(scope ir.Type) []ir.Sink {
	_, info, ok := r.info(scope)
	if !ok {
		return nil
	}
	return info.unsatisfied
}

// ExternalSinks returns, for a root, every sink served by its Dependencies
// contract: its own unsatisfied sinks plus descendant sinks of the same
// Types, in sink order. It is nil for other scopes.
func (r *Resolution) ExternalSinks(scope ir.Type) []ir.Sink {
	_, info, ok := r.info(scope)
	if !ok {
		return nil
	}
	return info.external
}

// Needs returns what scope requires from its parents, in Type order. Roots
// have no needs.
func (r *Resolution) Needs(scope ir.Type) []Need {
	_, info, ok := r.info(scope)
	if !ok {
		return nil
	}
	return info.needs
}

// TransitiveDependencies returns every Type needed, directly or indirectly,
// to build t inside scope, in Type order. Types produced elsewhere end the
// walk but are included.
func (r *Resolution) TransitiveDependencies(scope, t ir.Type) []ir.Type {
	_, info, ok := r.info(scope)
	if !ok {
		return nil
	}
	seen := sets.New[string]()
	var out []ir.Type
	queue := []ir.Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, f := range info.factories[cur.Key()] {
			for _, p := range f.Requires() {
				if seen.Has(p.Key()) {
					continue
				}
				seen.Insert(p.Key())
				out = append(out, p)
				queue = append(queue, p)
			}
		}
	}
	ir.SortTypes(out)
	return out
}

// Bindings returns the providers of t as seen from scope: its own producers
// if any, otherwise the nearest producing ancestor along each parent path,
// or a root's Dependencies accessor. In a valid tree there is exactly one.
func (r *Resolution) Bindings(scope, t ir.Type) []Binding {
	start, _, ok := r.info(scope)
	if !ok {
		return nil
	}
	key := t.Key()
	visited := sets.New[int]()
	found := sets.New[string]()
	var out []Binding

	add := func(b Binding) {
		id := b.Kind.String() + "|" + b.Provider.Key()
		if found.Has(id) {
			return
		}
		found.Insert(id)
		out = append(out, b)
	}

	queue := []int{start}
	visited.Insert(start)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		n, info := r.graph.nodes[i], r.infos[i]

		if info.produced.Has(key) {
			kind := BindingAncestor
			if i == start {
				kind = BindingOwn
			}
			b := Binding{Kind: kind, Provider: n.scope.Type}
			if fs := info.factories[key]; len(fs) > 0 {
				f := fs[0]
				b.Factory = &f
			}
			add(b)
			continue
		}
		if len(n.parents) == 0 {
			for _, s := range info.unsatisfied {
				if s.Type.Key() == key {
					add(Binding{Kind: BindingExternal, Provider: n.scope.Type})
					break
				}
			}
			continue
		}
		for _, p := range n.parents {
			if !visited.Has(p) {
				visited.Insert(p)
				queue = append(queue, p)
			}
		}
	}
	return out
}
