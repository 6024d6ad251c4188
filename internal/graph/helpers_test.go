package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jward/scopegraph/internal/ir"
)

type scopeBuilder struct {
	s *ir.Scope
}

func newScope(name string) *scopeBuilder {
	return &scopeBuilder{s: &ir.Scope{Type: ir.MustParseType(name)}}
}

// provide adds a factory method on "<scope>.Objects".
func (b *scopeBuilder) provide(method, returns string, params ...string) *scopeBuilder {
	f := ir.Factory{
		Method: ir.MethodRef{
			Owner: ir.Named(b.s.Type.QualifiedName + ".Objects"),
			Name:  method,
		},
		Returns: ir.MustParseType(returns),
	}
	for _, p := range params {
		f.Method.Params = append(f.Method.Params, ir.MustParseType(p))
	}
	b.s.Factories = append(b.s.Factories, f)
	return b
}

func (b *scopeBuilder) access(method, typ string) *scopeBuilder {
	b.s.AccessMethods = append(b.s.AccessMethods, ir.AccessMethod{Name: method, Type: ir.MustParseType(typ)})
	return b
}

func (b *scopeBuilder) child(scopes ...string) *scopeBuilder {
	for _, c := range scopes {
		t := ir.MustParseType(c)
		b.s.Children = append(b.s.Children, ir.ChildRef{Method: strings.ToLower(t.SimpleName()), Scope: t})
	}
	return b
}

// parent declares an explicit parent contract from name=type pairs.
func (b *scopeBuilder) parent(methods ...string) *scopeBuilder {
	pc := &ir.ParentContract{Type: ir.Named(b.s.Type.QualifiedName + ".Parent")}
	for _, m := range methods {
		name, typ, _ := strings.Cut(m, "=")
		pc.Methods = append(pc.Methods, ir.ParentMethod{Name: name, Type: ir.MustParseType(typ)})
	}
	b.s.ParentContract = pc
	return b
}

func (b *scopeBuilder) build() *ir.Scope {
	return b.s
}

func resolve(t *testing.T, builders ...*scopeBuilder) *Resolution {
	t.Helper()
	scopes := make([]*ir.Scope, len(builders))
	for i, b := range builders {
		scopes[i] = b.build()
	}
	g, err := Build(scopes)
	require.NoError(t, err)
	return Resolve(g)
}

func typ(s string) ir.Type {
	return ir.MustParseType(s)
}

func requesters(md MissingDependency) []string {
	out := make([]string, len(md.Requesters))
	for i, r := range md.Requesters {
		out[i] = r.String()
	}
	return out
}
