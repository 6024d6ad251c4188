package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/scopegraph/internal/contract"
	"github.com/jward/scopegraph/internal/ir"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func childGeneration(hash string) *GeneratedScope {
	return &GeneratedScope{
		ScopeType:     "com.example.Child",
		ImplType:      "com.example.ChildImpl",
		SignatureHash: hash,
		ParentName:    "com.example.ChildImpl.Parent",
		ParentMode:    "derived",
		GeneratedAt:   time.Now().UTC().Truncate(time.Second),
		ParentMethods: []*ParentMethod{
			{Name: "db", TypeExpr: "com.example.Db"},
			{Name: "stringList", TypeExpr: "java.util.List<java.lang.String>", Transitive: true},
		},
	}
}

func rootGeneration() *GeneratedScope {
	return &GeneratedScope{
		ScopeType:        "com.example.Root",
		ImplType:         "com.example.RootImpl",
		SignatureHash:    "root-hash",
		DependenciesName: "com.example.RootImpl.Dependencies",
		DependencyMethods: []*DependencyMethod{{
			Name:     "config",
			TypeExpr: "com.example.Config",
			Requesters: []ir.Requester{
				{CallerQualifiedName: "com.example.Root.Objects", CallerMethodName: "db"},
			},
		}},
	}
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"generated_scopes", "parent_methods", "dependency_methods"} {
		var name string
		err := s.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

// =============================================================================
// Generations
// =============================================================================

func TestSaveGeneration_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	gen := childGeneration("hash-1")
	require.NoError(t, s.SaveGeneration(gen))
	require.Positive(t, gen.ID)

	got, err := s.GenerationByScope("com.example.Child")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "com.example.ChildImpl", got.ImplType)
	assert.Equal(t, "hash-1", got.SignatureHash)
	assert.Equal(t, "com.example.ChildImpl.Parent", got.ParentName)
	assert.Equal(t, "derived", got.ParentMode)
	assert.True(t, gen.GeneratedAt.Equal(got.GeneratedAt))
	require.Len(t, got.ParentMethods, 2)
	assert.Equal(t, "db", got.ParentMethods[0].Name)
	assert.Equal(t, 0, got.ParentMethods[0].Ordinal)
	assert.False(t, got.ParentMethods[0].Transitive)
	assert.Equal(t, "java.util.List<java.lang.String>", got.ParentMethods[1].TypeExpr)
	assert.True(t, got.ParentMethods[1].Transitive)
	assert.Empty(t, got.DependencyMethods)
}

func TestSaveGeneration_Replaces(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.SaveGeneration(childGeneration("hash-1")))
	_, err := s.GenerationByScope("com.example.Child") // warm the cache
	require.NoError(t, err)

	next := childGeneration("hash-2")
	next.ParentMethods = next.ParentMethods[:1]
	require.NoError(t, s.SaveGeneration(next))

	got, err := s.GenerationByScope("com.example.Child")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", got.SignatureHash)
	assert.Len(t, got.ParentMethods, 1)

	var count int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM parent_methods").Scan(&count))
	assert.Equal(t, 1, count, "old method rows are removed with their scope")
}

func TestGenerationByScope_Missing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	got, err := s.GenerationByScope("com.example.Nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDependencyMethods_Requesters(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.SaveGeneration(rootGeneration()))
	got, err := s.GenerationByScope("com.example.Root")
	require.NoError(t, err)
	require.Len(t, got.DependencyMethods, 1)
	assert.Equal(t, "config", got.DependencyMethods[0].Name)
	assert.Equal(t, []ir.Requester{
		{CallerQualifiedName: "com.example.Root.Objects", CallerMethodName: "db"},
	}, got.DependencyMethods[0].Requesters)
	assert.Empty(t, got.ParentName)
}

func TestDependencyMethods_CorruptRequesters(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.SaveGeneration(rootGeneration()))
	_, err := s.db.Exec("UPDATE dependency_methods SET requesters = ?", "{not json")
	require.NoError(t, err)

	_, err = s.GenerationByScope("com.example.Root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency method config: requesters")

	_, err = s.Generations()
	require.Error(t, err)
}

func TestGenerations_OrderedWithHashes(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.SaveGenerations([]*GeneratedScope{rootGeneration(), childGeneration("hash-1")}))

	gens, err := s.Generations()
	require.NoError(t, err)
	require.Len(t, gens, 2)
	assert.Equal(t, "com.example.Child", gens[0].ScopeType)
	assert.Equal(t, "com.example.Root", gens[1].ScopeType)
	assert.Len(t, gens[0].ParentMethods, 2)
	assert.Len(t, gens[1].DependencyMethods, 1)

	hashes, err := s.SignatureHashes()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"com.example.Child": "hash-1",
		"com.example.Root":  "root-hash",
	}, hashes)
}

func TestDeleteGenerationsExcept(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.SaveGenerations([]*GeneratedScope{rootGeneration(), childGeneration("hash-1")}))
	_, err := s.GenerationByScope("com.example.Child")
	require.NoError(t, err)

	n, err := s.DeleteGenerationsExcept([]string{"com.example.Root"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.GenerationByScope("com.example.Child")
	require.NoError(t, err)
	assert.Nil(t, got, "cache is purged on delete")

	n, err = s.DeleteGenerationsExcept(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

// =============================================================================
// Prior generation lookup
// =============================================================================

func TestFindGenerated(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveGenerations([]*GeneratedScope{rootGeneration(), childGeneration("hash-1")}))

	gen, err := s.FindGenerated(ctx, ir.Named("com.example.Child"))
	require.NoError(t, err)
	require.NotNil(t, gen)
	assert.Equal(t, "com.example.ChildImpl", gen.Impl.String())
	require.NotNil(t, gen.Parent)
	assert.Equal(t, "com.example.ChildImpl.Parent", gen.Parent.Name.String())
	assert.Equal(t, []contract.ParentMethod{
		{Name: "db", Type: ir.Named("com.example.Db")},
		{Name: "stringList", Type: ir.Named("java.util.List", ir.Named("java.lang.String")), Transitive: true},
	}, gen.Parent.Methods)

	root, err := s.FindGenerated(ctx, ir.Named("com.example.Root"))
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Nil(t, root.Parent)

	none, err := s.FindGenerated(ctx, ir.Named("com.example.Nope"))
	require.NoError(t, err)
	assert.Nil(t, none)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.FindGenerated(cancelled, ir.Named("com.example.Child"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindGenerated_DrivesParentResolution(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.SaveGeneration(childGeneration("hash-1")))
	rp, err := contract.FromGenerated(context.Background(), s, &ir.Scope{Type: ir.Named("com.example.Child")})
	require.NoError(t, err)
	assert.Equal(t, contract.ModeGenerated, rp.Mode)
	assert.Len(t, rp.Methods, 2)

	_, err = contract.FromGenerated(context.Background(), s, &ir.Scope{Type: ir.Named("com.example.Other")})
	assert.ErrorIs(t, err, contract.ErrPriorGenerationNotFound)
}

// =============================================================================
// Signature hash
// =============================================================================

func TestComputeSignatureHash(t *testing.T) {
	t.Parallel()

	scopes, err := ir.DecodeDocument([]byte(`
scopes:
  - type: a.Scope
    accessMethods:
      - {name: a, type: a.A}
      - {name: b, type: a.B}
    factories:
      - {name: a, returns: a.A, params: [a.B, a.C]}
      - {name: b, returns: a.B}
  - type: a.Scope
    accessMethods:
      - {name: b, type: a.B}
      - {name: a, type: a.A}
    factories:
      - {name: b, returns: a.B}
      - {name: a, returns: a.A, params: [a.B, a.C]}
  - type: a.Scope
    factories:
      - {name: a, returns: a.A, params: [a.C, a.B]}
`))
	require.NoError(t, err)

	h1 := ComputeSignatureHash(scopes[0], []string{"x", "y"}, []string{"p"})
	h2 := ComputeSignatureHash(scopes[1], []string{"y", "x"}, []string{"p"})
	assert.Equal(t, h1, h2, "declaration order does not matter")
	assert.Len(t, h1, 64)

	assert.NotEqual(t, h1, ComputeSignatureHash(scopes[0], []string{"x"}, []string{"p"}))
	assert.NotEqual(t, h1, ComputeSignatureHash(scopes[0], []string{"x", "y"}, []string{"q"}))
	assert.NotEqual(t,
		ComputeSignatureHash(scopes[2], nil, nil),
		ComputeSignatureHash(&ir.Scope{Type: scopes[2].Type, Factories: []ir.Factory{{
			Method:  ir.MethodRef{Owner: ir.Named("a.Scope.Objects"), Name: "a", Params: []ir.Type{ir.Named("a.B"), ir.Named("a.C")}},
			Returns: ir.Named("a.A"),
		}}}, nil, nil),
		"parameter order matters")
}
