// Package graph builds the scope graph from normalized scope declarations
// and resolves it: which values each scope produces, which it must obtain
// from its parents, and which diagnostics apply.
package graph

import (
	"fmt"
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/jward/scopegraph/internal/ir"
)

// node is one scope in the arena. Edges are arena indexes.
type node struct {
	scope    *ir.Scope
	children []int
	parents  []int
}

// Graph owns every scope of one compilation, indexed by Type. It is
// immutable after Build.
type Graph struct {
	nodes      []*node
	index      map[string]int
	scopeCycle *ScopeCycleError
}

// Build assembles scopes into a Graph. A child reference to an undeclared
// scope or a scope declared twice is a fatal error. Scope cycles are not
// fatal; they are reported through ScopeCycle.
func Build(scopes []*ir.Scope) (*Graph, error) {
	sorted := make([]*ir.Scope, len(scopes))
	copy(sorted, scopes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ir.Compare(sorted[i].Type, sorted[j].Type) < 0
	})

	g := &Graph{
		nodes: make([]*node, len(sorted)),
		index: make(map[string]int, len(sorted)),
	}
	for i, s := range sorted {
		key := s.Type.Key()
		if _, ok := g.index[key]; ok {
			return nil, fmt.Errorf("graph: build: %s: %w", s.Type, ErrDuplicateScope)
		}
		g.index[key] = i
		g.nodes[i] = &node{scope: s}
	}

	for i, n := range g.nodes {
		seen := sets.New[int]()
		for _, c := range n.scope.Children {
			ci, ok := g.index[c.Scope.Key()]
			if !ok {
				return nil, fmt.Errorf("graph: build: %s#%s returns %s: %w", n.scope.Type, c.Method, c.Scope, ErrDanglingChild)
			}
			if seen.Has(ci) {
				continue
			}
			seen.Insert(ci)
			n.children = append(n.children, ci)
			g.nodes[ci].parents = append(g.nodes[ci].parents, i)
		}
	}

	g.scopeCycle = g.findScopeCycle()
	return g, nil
}

// findScopeCycle walks child edges depth first from every scope in Type
// order and returns the first cycle found, with its full path.
func (g *Graph) findScopeCycle() *ScopeCycleError {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make([]int, len(g.nodes))

	type frame struct {
		node int
		next int
	}

	for start := range g.nodes {
		if state[start] != unvisited {
			continue
		}
		stack := []frame{{node: start}}
		state[start] = onPath
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			n := g.nodes[top.node]
			if top.next == len(n.children) {
				state[top.node] = done
				stack = stack[:len(stack)-1]
				continue
			}
			child := n.children[top.next]
			top.next++
			switch state[child] {
			case unvisited:
				state[child] = onPath
				stack = append(stack, frame{node: child})
			case onPath:
				var path []ir.Type
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i].node == child {
						for _, f := range stack[i:] {
							path = append(path, g.nodes[f.node].scope.Type)
						}
						break
					}
				}
				path = append(path, g.nodes[child].scope.Type)
				return &ScopeCycleError{Path: path}
			}
		}
	}
	return nil
}

// ScopeCycle returns the scope cycle found during Build, if any.
func (g *Graph) ScopeCycle() *ScopeCycleError {
	return g.scopeCycle
}

// Len returns the number of scopes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Scopes returns every scope in Type order.
func (g *Graph) Scopes() []*ir.Scope {
	out := make([]*ir.Scope, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.scope
	}
	return out
}

// Roots returns the scopes that are nobody's child, in Type order.
func (g *Graph) Roots() []*ir.Scope {
	var out []*ir.Scope
	for _, n := range g.nodes {
		if len(n.parents) == 0 {
			out = append(out, n.scope)
		}
	}
	return out
}

// Scope looks up a scope by Type.
func (g *Graph) Scope(t ir.Type) (*ir.Scope, bool) {
	i, ok := g.index[t.Key()]
	if !ok {
		return nil, false
	}
	return g.nodes[i].scope, true
}

// IsRoot reports whether t is a declared scope with no parents.
func (g *Graph) IsRoot(t ir.Type) bool {
	i, ok := g.index[t.Key()]
	return ok && len(g.nodes[i].parents) == 0
}

// Children returns the child scopes of t in declaration order.
func (g *Graph) Children(t ir.Type) []*ir.Scope {
	i, ok := g.index[t.Key()]
	if !ok {
		return nil
	}
	return g.collect(g.nodes[i].children)
}

// Parents returns the scopes that declare t as a child, in Type order.
func (g *Graph) Parents(t ir.Type) []*ir.Scope {
	i, ok := g.index[t.Key()]
	if !ok {
		return nil
	}
	return g.collect(g.nodes[i].parents)
}

func (g *Graph) collect(idx []int) []*ir.Scope {
	out := make([]*ir.Scope, len(idx))
	for i, n := range idx {
		out[i] = g.nodes[n].scope
	}
	return out
}
