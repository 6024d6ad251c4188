// Package contract computes the generated contracts of a resolved graph:
// the external Dependencies of each root scope and the parent contract of
// every other scope.
package contract

import (
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/jward/scopegraph/internal/ir"
	"github.com/jward/scopegraph/internal/names"
)

// Method is one synthesized accessor of a Dependencies contract.
type Method struct {
	Name       string
	Type       ir.Type
	Requesters []ir.Requester
}

// Doc renders the accessor's documentation block listing its requesters.
func (m Method) Doc() string {
	var b strings.Builder
	b.WriteString("Requested from:\n")
	for _, r := range m.Requesters {
		b.WriteString("  ")
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Dependencies is the contract of values a root scope needs from outside
// the graph. Methods are ordered by Type.
type Dependencies struct {
	Name    ir.Type
	Scope   ir.Type
	methods []Method
	byType  map[string]int
}

// NewDependencies groups sinks by Type and synthesizes one uniquely named
// accessor per Type. Names are allocated in Type order so the same input
// always yields the same contract.
func NewDependencies(scope ir.Type, sinks []ir.Sink) *Dependencies {
	types := make(map[string]ir.Type)
	reqs := make(map[string]sets.Set[ir.Requester])
	for _, s := range sinks {
		key := s.Type.Key()
		if _, ok := types[key]; !ok {
			types[key] = s.Type
			reqs[key] = sets.New[ir.Requester]()
		}
		reqs[key].Insert(s.Requester())
	}

	ordered := make([]ir.Type, 0, len(types))
	for _, t := range types {
		ordered = append(ordered, t)
	}
	ir.SortTypes(ordered)

	d := &Dependencies{
		Name:    names.DependenciesOf(scope),
		Scope:   scope,
		methods: make([]Method, 0, len(ordered)),
		byType:  make(map[string]int, len(ordered)),
	}
	used := names.NewUniqueNameSet()
	for _, t := range ordered {
		rs := reqs[t.Key()].UnsortedList()
		sort.Slice(rs, func(i, j int) bool {
			return rs[i].String() < rs[j].String()
		})
		d.byType[t.Key()] = len(d.methods)
		d.methods = append(d.methods, Method{
			Name:       used.Unique(t.PreferredName()),
			Type:       t,
			Requesters: rs,
		})
	}
	return d
}

// IsEmpty reports whether nothing has to be supplied from outside.
func (d *Dependencies) IsEmpty() bool {
	return len(d.methods) == 0
}

// Methods returns the accessors in Type order.
func (d *Dependencies) Methods() []Method {
	return d.methods
}

// Types returns the external Types in order.
func (d *Dependencies) Types() []ir.Type {
	out := make([]ir.Type, len(d.methods))
	for i, m := range d.methods {
		out[i] = m.Type
	}
	return out
}

// MethodFor returns the accessor synthesized for t.
func (d *Dependencies) MethodFor(t ir.Type) (Method, bool) {
	i, ok := d.byType[t.Key()]
	if !ok {
		return Method{}, false
	}
	return d.methods[i], true
}
