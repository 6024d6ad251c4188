package ir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `
scopes:
  - type: com.example.Root
    accessMethods:
      - name: service
        type: com.example.Service
    factories:
      - name: service
        returns: com.example.Service
        params: [com.example.Db]
      - constructor: true
        returns: com.example.Db
        params: ["@Named(\"url\") java.lang.String"]
    children:
      - name: child
        scope: com.example.Child
  - type: com.example.Child
    parent:
      methods:
        - name: db
          type: com.example.Db
`

func TestDecodeDocument(t *testing.T) {
	t.Parallel()

	scopes, err := DecodeDocument([]byte(sampleDocument))
	require.NoError(t, err)
	require.Len(t, scopes, 2)

	root := scopes[0]
	assert.Equal(t, "com.example.Root", root.Type.String())
	require.Len(t, root.Factories, 2)

	svc := root.Factories[0]
	assert.Equal(t, "com.example.Root.Objects", svc.Method.Owner.String())
	assert.Equal(t, "service", svc.Method.Name)
	assert.Equal(t, []Type{Named("com.example.Db")}, svc.Requires())

	ctor := root.Factories[1]
	assert.True(t, ctor.Method.Constructor)
	assert.Equal(t, "com.example.Db", ctor.Method.Owner.String())
	assert.Equal(t, "Db(java.lang.String)", ctor.Method.DisplayName())
	assert.Equal(t, `Named("url")`, ctor.Requires()[0].Qualifier)

	require.Len(t, root.Children, 1)
	assert.Equal(t, ChildRef{Method: "child", Scope: Named("com.example.Child")}, root.Children[0])

	child := scopes[1]
	require.NotNil(t, child.ParentContract)
	assert.Equal(t, "com.example.Child.Parent", child.ParentContract.Type.String())
	assert.Equal(t, []ParentMethod{{Name: "db", Type: Named("com.example.Db")}}, child.ParentContract.Methods)
}

func TestDecodeDocument_JSON(t *testing.T) {
	t.Parallel()

	scopes, err := DecodeDocument([]byte(`{"scopes":[{"type":"a.Scope","accessMethods":[{"name":"x","type":"a.X"}]}]}`))
	require.NoError(t, err)
	require.Len(t, scopes, 1)
	assert.Equal(t, []AccessMethod{{Name: "x", Type: Named("a.X")}}, scopes[0].AccessMethods)
}

func TestDecodeDocument_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"unknown field":   "scopes:\n  - type: a.B\n    bogus: 1\n",
		"missing type":    "scopes:\n  - accessMethods: []\n",
		"bad type":        "scopes:\n  - type: 'a.B<'\n",
		"factory returns": "scopes:\n  - type: a.B\n    factories:\n      - name: x\n",
		"factory name":    "scopes:\n  - type: a.B\n    factories:\n      - returns: a.C\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeDocument([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestScopeDoc_RoundTrip(t *testing.T) {
	t.Parallel()

	scopes, err := DecodeDocument([]byte(sampleDocument))
	require.NoError(t, err)

	for _, s := range scopes {
		d := s.Doc()
		again, err := d.Scope()
		require.NoError(t, err)
		assert.Equal(t, s, again)
	}
}

func TestLoadDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0o644))

	scopes, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Len(t, scopes, 2)

	_, err = LoadDocument(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
