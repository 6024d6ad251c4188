package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []string{
		"com.example.Foo",
		"java.util.List<java.lang.String>",
		"java.util.Map<java.lang.String, java.util.List<com.example.Bar>>",
		"@Named(\"prod\") com.example.Db",
		"@Singleton java.util.Set<@Red com.example.Color>",
		"int[]",
		"com.example.Outer$Inner",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			t.Parallel()
			typ, err := ParseType(src)
			require.NoError(t, err)
			assert.Equal(t, src, typ.String())
		})
	}
}

func TestParseType_Structure(t *testing.T) {
	t.Parallel()

	typ, err := ParseType("@Named(\"a b\") java.util.Map< java.lang.String ,com.example.Bar >")
	require.NoError(t, err)
	assert.Equal(t, "java.util.Map", typ.QualifiedName)
	assert.Equal(t, `Named("a b")`, typ.Qualifier)
	require.Len(t, typ.Args, 2)
	assert.Equal(t, "java.lang.String", typ.Args[0].QualifiedName)
	assert.Equal(t, "com.example.Bar", typ.Args[1].QualifiedName)
}

func TestParseType_Errors(t *testing.T) {
	t.Parallel()

	for _, src := range []string{
		"",
		"List<",
		"List<A",
		"List<A;B>",
		"@ Foo",
		"@Named(\"x\" Foo",
		"Foo Bar",
	} {
		_, err := ParseType(src)
		assert.Error(t, err, "expected error for %q", src)
	}
}

func TestCompare_TotalOrder(t *testing.T) {
	t.Parallel()

	a := Named("a.A")
	b := Named("a.B")
	listA := Named("java.util.List", a)
	listB := Named("java.util.List", b)
	list := Named("java.util.List")
	qualified := a.WithQualifier("@Red")

	assert.Negative(t, Compare(a, b))
	assert.Positive(t, Compare(b, a))
	assert.Zero(t, Compare(a, Named("a.A")))
	assert.Negative(t, Compare(listA, listB))
	assert.Negative(t, Compare(list, listA))
	assert.Negative(t, Compare(a, qualified))
	assert.True(t, qualified.Equal(Named("a.A").WithQualifier("Red")))
	assert.False(t, a.Equal(qualified))

	types := []Type{listB, qualified, b, listA, a, list}
	SortTypes(types)
	assert.Equal(t, []Type{a, qualified, b, list, listA, listB}, types)
}

func TestPreferredName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  string
		want string
	}{
		{"com.example.Foo", "foo"},
		{"java.util.List<java.lang.String>", "stringList"},
		{"@Named(\"prod\") com.example.Db", "namedProdDb"},
		{"java.util.Map<java.lang.String, com.example.Bar>", "stringBarMap"},
		{"int[]", "intArray"},
		{"com.example.URL", "uRL"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MustParseType(tt.typ).PreferredName())
		})
	}
}

func TestSimpleName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Foo", Named("com.example.Foo").SimpleName())
	assert.Equal(t, "Foo", Named("Foo").SimpleName())
	assert.True(t, Type{}.IsZero())
}

func TestSink_Requester(t *testing.T) {
	t.Parallel()

	foo := Named("com.example.Foo")
	bar := Named("com.example.Bar")
	baz := Named("com.example.Baz")
	scope := &Scope{
		Type:          Named("com.example.Scope"),
		AccessMethods: []AccessMethod{{Name: "foo", Type: foo}},
		Factories: []Factory{
			{
				Method:  MethodRef{Owner: foo, Params: []Type{bar, baz}, Constructor: true},
				Returns: foo,
			},
			{
				Method:  MethodRef{Owner: Named("com.example.Scope.Objects"), Name: "bar", Params: []Type{baz}},
				Returns: bar,
			},
		},
	}

	sinks := scope.Sinks()
	require.Len(t, sinks, 4)

	assert.Equal(t, SinkAccessMethod, sinks[0].Kind)
	assert.Equal(t, "com.example.Scope#foo", sinks[0].Requester().String())

	assert.Equal(t, SinkFactoryParameter, sinks[1].Kind)
	assert.Equal(t, Requester{
		CallerQualifiedName: "com.example.Foo",
		CallerMethodName:    "Foo(com.example.Bar,com.example.Baz)",
	}, sinks[1].Requester())
	assert.Equal(t, 1, sinks[2].Param)
	assert.Equal(t, baz, sinks[2].Type)

	assert.Equal(t, "com.example.Scope.Objects#bar", sinks[3].Requester().String())
	assert.NotEqual(t, sinks[1].ID(), sinks[2].ID())
}

func TestSink_UnknownKindPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { Sink{}.Requester() })
}

func TestScope_ContractSinks(t *testing.T) {
	t.Parallel()

	s := &Scope{
		Type: Named("com.example.Child"),
		ParentContract: &ParentContract{
			Type:    Named("com.example.Child.Parent"),
			Methods: []ParentMethod{{Name: "db", Type: Named("com.example.Db")}},
		},
	}
	sinks := s.ContractSinks()
	require.Len(t, sinks, 1)
	assert.Equal(t, "com.example.Child.Parent#db", sinks[0].Requester().String())
	assert.Nil(t, (&Scope{}).ContractSinks())
}
