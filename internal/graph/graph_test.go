package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/scopegraph/internal/ir"
)

func TestBuild_Structure(t *testing.T) {
	t.Parallel()

	g, err := Build([]*ir.Scope{
		newScope("a.Leaf").build(),
		newScope("a.Root").child("a.Mid", "a.Leaf").build(),
		newScope("a.Mid").child("a.Leaf", "a.Leaf").build(),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Nil(t, g.ScopeCycle())

	var names []string
	for _, s := range g.Scopes() {
		names = append(names, s.Type.String())
	}
	assert.Equal(t, []string{"a.Leaf", "a.Mid", "a.Root"}, names)

	roots := g.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, "a.Root", roots[0].Type.String())
	assert.True(t, g.IsRoot(typ("a.Root")))
	assert.False(t, g.IsRoot(typ("a.Mid")))
	assert.False(t, g.IsRoot(typ("a.Missing")))

	children := g.Children(typ("a.Root"))
	require.Len(t, children, 2)
	assert.Equal(t, "a.Mid", children[0].Type.String())
	assert.Equal(t, "a.Leaf", children[1].Type.String())

	// Repeated child references collapse to one edge.
	assert.Len(t, g.Children(typ("a.Mid")), 1)

	parents := g.Parents(typ("a.Leaf"))
	require.Len(t, parents, 2)
	assert.Equal(t, "a.Mid", parents[0].Type.String())
	assert.Equal(t, "a.Root", parents[1].Type.String())

	s, ok := g.Scope(typ("a.Mid"))
	require.True(t, ok)
	assert.Equal(t, "a.Mid", s.Type.String())
	_, ok = g.Scope(typ("a.Nope"))
	assert.False(t, ok)
}

func TestBuild_DanglingChild(t *testing.T) {
	t.Parallel()

	_, err := Build([]*ir.Scope{newScope("a.Root").child("a.Ghost").build()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDanglingChild))
	assert.Contains(t, err.Error(), "a.Ghost")
}

func TestBuild_DuplicateScope(t *testing.T) {
	t.Parallel()

	_, err := Build([]*ir.Scope{newScope("a.Root").build(), newScope("a.Root").build()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateScope))
}

func TestBuild_TwoScopeCycle(t *testing.T) {
	t.Parallel()

	g, err := Build([]*ir.Scope{
		newScope("a.B").child("a.A").build(),
		newScope("a.A").child("a.B").build(),
	})
	require.NoError(t, err)

	cycle := g.ScopeCycle()
	require.NotNil(t, cycle)
	assert.Equal(t, []ir.Type{typ("a.A"), typ("a.B"), typ("a.A")}, cycle.Path)
	assert.Equal(t, "scope cycle: a.A -> a.B -> a.A", cycle.Error())
	assert.Empty(t, g.Roots())
}

func TestBuild_SelfCycle(t *testing.T) {
	t.Parallel()

	g, err := Build([]*ir.Scope{
		newScope("a.Root").child("a.Self").build(),
		newScope("a.Self").child("a.Self").build(),
	})
	require.NoError(t, err)
	require.NotNil(t, g.ScopeCycle())
	assert.Equal(t, []ir.Type{typ("a.Self"), typ("a.Self")}, g.ScopeCycle().Path)
}

func TestBuild_LongCycleReportsFullPath(t *testing.T) {
	t.Parallel()

	g, err := Build([]*ir.Scope{
		newScope("a.Root").child("a.A").build(),
		newScope("a.A").child("a.B").build(),
		newScope("a.B").child("a.C").build(),
		newScope("a.C").child("a.A").build(),
	})
	require.NoError(t, err)
	require.NotNil(t, g.ScopeCycle())
	assert.Equal(t, []ir.Type{typ("a.A"), typ("a.B"), typ("a.C"), typ("a.A")}, g.ScopeCycle().Path)
}
