package graph

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/jward/scopegraph/internal/ir"
)

// demand accumulates sinks per Type, de-duplicated by sink identity.
type demand struct {
	types map[string]ir.Type
	sinks map[string][]ir.Sink
	seen  sets.Set[string]
}

func newDemand() *demand {
	return &demand{
		types: make(map[string]ir.Type),
		sinks: make(map[string][]ir.Sink),
		seen:  sets.New[string](),
	}
}

func (d *demand) add(s ir.Sink) {
	id := s.ID()
	if d.seen.Has(id) {
		return
	}
	d.seen.Insert(id)
	key := s.Type.Key()
	d.types[key] = s.Type
	d.sinks[key] = append(d.sinks[key], s)
}

func (d *demand) needs() []Need {
	out := make([]Need, 0, len(d.types))
	for key, t := range d.types {
		sinks := d.sinks[key]
		sort.SliceStable(sinks, func(i, j int) bool {
			return ir.CompareSinks(sinks[i], sinks[j]) < 0
		})
		out = append(out, Need{Type: t, Sinks: sinks})
	}
	sort.Slice(out, func(i, j int) bool {
		return ir.Compare(out[i].Type, out[j].Type) < 0
	})
	return out
}

// missingSet groups unmet sinks by the scope that declared them.
type missingSet struct {
	byScope map[string]*missingScope
	seen    sets.Set[string]
}

type missingScope struct {
	scope ir.Type
	types map[string]ir.Type
	reqs  map[string]sets.Set[ir.Requester]
}

func newMissingSet() *missingSet {
	return &missingSet{byScope: make(map[string]*missingScope), seen: sets.New[string]()}
}

func (m *missingSet) add(s ir.Sink) {
	if m.seen.Has(s.ID()) {
		return
	}
	m.seen.Insert(s.ID())

	ms, ok := m.byScope[s.Scope.Key()]
	if !ok {
		ms = &missingScope{
			scope: s.Scope,
			types: make(map[string]ir.Type),
			reqs:  make(map[string]sets.Set[ir.Requester]),
		}
		m.byScope[s.Scope.Key()] = ms
	}
	key := s.Type.Key()
	ms.types[key] = s.Type
	if ms.reqs[key] == nil {
		ms.reqs[key] = sets.New[ir.Requester]()
	}
	ms.reqs[key].Insert(s.Requester())
}

func (m *missingSet) errors() []*MissingDependenciesError {
	var out []*MissingDependenciesError
	for _, ms := range m.byScope {
		e := &MissingDependenciesError{Scope: ms.scope}
		for key, t := range ms.types {
			reqs := ms.reqs[key].UnsortedList()
			sort.Slice(reqs, func(i, j int) bool {
				return reqs[i].String() < reqs[j].String()
			})
			e.Missing = append(e.Missing, MissingDependency{Type: t, Requesters: reqs})
		}
		sort.Slice(e.Missing, func(i, j int) bool {
			return ir.Compare(e.Missing[i].Type, e.Missing[j].Type) < 0
		})
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return ir.Compare(out[i].Scope, out[j].Scope) < 0
	})
	return out
}

// resolveNeeds computes what every non-root scope needs from its parents
// and reports what can never be satisfied. Needs bubble up from children;
// a scope absorbs the ones it produces. A scope with an explicit parent
// contract replaces its needs with the contract, and anything the contract
// does not cover is missing. At a root, a bubbled need that the root neither
// produces nor lists in its own Dependencies is missing; one it does list is
// served by that Dependencies accessor and recorded as an external sink.
func (r *Resolution) resolveNeeds(missing *missingSet) {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make([]int, len(r.graph.nodes))
	demands := make([]*demand, len(r.graph.nodes))

	var visit func(i int) *demand
	visit = func(i int) *demand {
		switch state[i] {
		case done:
			return demands[i]
		case onPath:
			// Scope cycle, already reported by Build.
			return nil
		}
		state[i] = onPath

		n, info := r.graph.nodes[i], r.infos[i]
		d := newDemand()
		for _, s := range info.unsatisfied {
			d.add(s)
		}
		for _, c := range n.children {
			cd := visit(c)
			if cd == nil {
				continue
			}
			for key, sinks := range cd.sinks {
				if info.produced.Has(key) {
					continue
				}
				for _, s := range sinks {
					d.add(s)
				}
			}
		}

		if len(n.parents) == 0 {
			// Root: its own unsatisfied sinks form the Dependencies contract.
			external := sets.New[string]()
			for _, s := range info.unsatisfied {
				external.Insert(s.Type.Key())
			}
			for key, sinks := range d.sinks {
				if external.Has(key) {
					info.external = append(info.external, sinks...)
					continue
				}
				for _, s := range sinks {
					missing.add(s)
				}
			}
			sort.SliceStable(info.external, func(i, j int) bool {
				return ir.CompareSinks(info.external[i], info.external[j]) < 0
			})
		} else if pc := n.scope.ParentContract; pc != nil {
			covered := sets.New[string]()
			for _, m := range pc.Methods {
				covered.Insert(m.Type.Key())
			}
			for key, sinks := range d.sinks {
				if covered.Has(key) {
					continue
				}
				for _, s := range sinks {
					missing.add(s)
				}
			}
			d = newDemand()
			for _, s := range n.scope.ContractSinks() {
				d.add(s)
			}
		}

		state[i] = done
		demands[i] = d
		return d
	}

	for i := range r.graph.nodes {
		visit(i)
	}

	for i, n := range r.graph.nodes {
		if len(n.parents) == 0 || demands[i] == nil {
			continue
		}
		needs := demands[i].needs()
		for j := range needs {
			key := needs[j].Type.Key()
			for _, p := range n.parents {
				if !r.infos[p].produced.Has(key) {
					needs[j].Transitive = true
					break
				}
			}
		}
		r.infos[i].needs = needs
	}
}
