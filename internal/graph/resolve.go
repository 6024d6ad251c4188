package graph

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/jward/scopegraph/internal/ir"
)

// Need is a value a non-root scope must obtain from its parents, with the
// sinks that caused it. Transitive is set when at least one parent does not
// produce the value itself and has to pass it further up.
type Need struct {
	Type       ir.Type
	Sinks      []ir.Sink
	Transitive bool
}

// BindingKind says where a sink's value comes from.
type BindingKind int

const (
	// BindingOwn is a factory (or the scope itself) in the requesting scope.
	BindingOwn BindingKind = iota + 1
	// BindingAncestor is a factory (or the scope itself) in an ancestor.
	BindingAncestor
	// BindingExternal is an accessor of a root's Dependencies contract.
	BindingExternal
)

func (k BindingKind) String() string {
	switch k {
	case BindingOwn:
		return "own"
	case BindingAncestor:
		return "ancestor"
	case BindingExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Binding is one provider of a Type for a scope. Factory is nil when the
// provider is the scope's own Type or an external accessor.
type Binding struct {
	Kind     BindingKind
	Provider ir.Type
	Factory  *ir.Factory
}

type scopeInfo struct {
	produced    sets.Set[string]
	factories   map[string][]ir.Factory
	unsatisfied []ir.Sink
	external    []ir.Sink
	needs       []Need
}

// Resolution is the result of resolving a Graph. All per-call traversal
// state lives here, never on the graph nodes.
type Resolution struct {
	graph  *Graph
	infos  []*scopeInfo
	errors *GraphErrors
}

// Resolve computes producers, needs and diagnostics for every scope of g.
// It never fails: problems are collected into Errors.
func Resolve(g *Graph) *Resolution {
	r := &Resolution{
		graph:  g,
		infos:  make([]*scopeInfo, len(g.nodes)),
		errors: &GraphErrors{ScopeCycle: g.scopeCycle},
	}
	for i, n := range g.nodes {
		r.infos[i] = newScopeInfo(n.scope)
	}

	r.findDuplicates()
	r.findDependencyCycles()

	missing := newMissingSet()
	r.resolveNeeds(missing)
	r.errors.MissingDependencies = missing.errors()
	return r
}

func newScopeInfo(s *ir.Scope) *scopeInfo {
	info := &scopeInfo{
		produced:  sets.New(s.Type.Key()),
		factories: make(map[string][]ir.Factory),
	}
	for _, f := range s.Factories {
		key := f.Returns.Key()
		info.produced.Insert(key)
		info.factories[key] = append(info.factories[key], f)
	}
	for _, sink := range s.Sinks() {
		if !info.produced.Has(sink.Type.Key()) {
			info.unsatisfied = append(info.unsatisfied, sink)
		}
	}
	sort.SliceStable(info.unsatisfied, func(i, j int) bool {
		return ir.CompareSinks(info.unsatisfied[i], info.unsatisfied[j]) < 0
	})
	return info
}

// sortedFactoryTypes returns the produced Types with a factory, in Type order.
func (info *scopeInfo) sortedFactoryTypes() []ir.Type {
	types := make([]ir.Type, 0, len(info.factories))
	for _, fs := range info.factories {
		types = append(types, fs[0].Returns)
	}
	ir.SortTypes(types)
	return types
}

func (r *Resolution) findDuplicates() {
	var dups []DuplicateFactoryMethods
	for i, n := range r.graph.nodes {
		info := r.infos[i]
		for _, t := range info.sortedFactoryTypes() {
			fs := info.factories[t.Key()]
			if len(fs) < 2 {
				continue
			}
			producers := make([]string, len(fs))
			for j, f := range fs {
				producers[j] = f.Method.String()
			}
			dups = append(dups, DuplicateFactoryMethods{Scope: n.scope.Type, Type: t, Producers: producers})
		}
	}
	if len(dups) > 0 {
		r.errors.DuplicateFactoryMethods = &DuplicateFactoryMethodsError{Duplicates: dups}
	}
}

// edges returns the Types required to build t inside the scope, restricted
// to Types the scope itself produces by factory, in Type order.
func (info *scopeInfo) edges(t ir.Type) []ir.Type {
	seen := sets.New[string]()
	var out []ir.Type
	for _, f := range info.factories[t.Key()] {
		for _, p := range f.Requires() {
			key := p.Key()
			if _, ok := info.factories[key]; !ok || seen.Has(key) {
				continue
			}
			seen.Insert(key)
			out = append(out, p)
		}
	}
	ir.SortTypes(out)
	return out
}

type typeFrame struct {
	t     ir.Type
	edges []ir.Type
	next  int
}

// findDependencyCycles runs an iterative depth-first search over factory
// edges in each scope. Every back edge yields one closed cycle path. A
// cyclic Type that no such path passes through, because its cycle runs
// through an already finished Type, gets its shortest cycle reported too.
func (r *Resolution) findDependencyCycles() {
	const (
		unvisited = iota
		onPath
		done
	)
	var cycles []DependencyCycle
	for i, n := range r.graph.nodes {
		info := r.infos[i]
		state := make(map[string]int, len(info.factories))
		reported := sets.New[string]()

		for _, start := range info.sortedFactoryTypes() {
			if state[start.Key()] != unvisited {
				continue
			}
			state[start.Key()] = onPath
			stack := []typeFrame{{t: start, edges: info.edges(start)}}
			for len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.next == len(top.edges) {
					state[top.t.Key()] = done
					stack = stack[:len(stack)-1]
					continue
				}
				next := top.edges[top.next]
				top.next++
				switch state[next.Key()] {
				case unvisited:
					state[next.Key()] = onPath
					stack = append(stack, typeFrame{t: next, edges: info.edges(next)})
				case onPath:
					path := cyclePath(stack, next)
					key := joinTypes(path, ",")
					if reported.Has(key) {
						continue
					}
					reported.Insert(key)
					cycles = append(cycles, DependencyCycle{Scope: n.scope.Type, Path: path})
				}
			}
		}

		covered := sets.New[string]()
		for _, c := range cycles {
			if c.Scope.Equal(n.scope.Type) {
				for _, t := range c.Path {
					covered.Insert(t.Key())
				}
			}
		}
		for _, t := range info.sortedFactoryTypes() {
			if covered.Has(t.Key()) {
				continue
			}
			path := info.shortestCycle(t)
			if path == nil {
				continue
			}
			for _, p := range path {
				covered.Insert(p.Key())
			}
			cycles = append(cycles, DependencyCycle{Scope: n.scope.Type, Path: path})
		}
	}
	if len(cycles) > 0 {
		r.errors.DependencyCycle = &DependencyCycleError{Cycles: cycles}
	}
}

// shortestCycle returns the shortest closed path from start back to start
// over factory edges, or nil when start is not cyclic.
func (info *scopeInfo) shortestCycle(start ir.Type) []ir.Type {
	prev := make(map[string]ir.Type)
	seen := sets.New[string]()
	queue := []ir.Type{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range info.edges(cur) {
			if next.Equal(start) {
				back := []ir.Type{cur}
				for t := cur; !t.Equal(start); {
					t = prev[t.Key()]
					back = append(back, t)
				}
				path := make([]ir.Type, 0, len(back)+1)
				for i := len(back) - 1; i >= 0; i-- {
					path = append(path, back[i])
				}
				return append(path, start)
			}
			if seen.Has(next.Key()) {
				continue
			}
			seen.Insert(next.Key())
			prev[next.Key()] = cur
			queue = append(queue, next)
		}
	}
	return nil
}

// cyclePath returns the stack segment from closing to the top, closed with
// closing again.
func cyclePath(stack []typeFrame, closing ir.Type) []ir.Type {
	var path []ir.Type
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].t.Equal(closing) {
			for _, f := range stack[i:] {
				path = append(path, f.t)
			}
			break
		}
	}
	return append(path, closing)
}
