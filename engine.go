package scopegraph

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/jward/scopegraph/internal/contract"
	"github.com/jward/scopegraph/internal/graph"
	"github.com/jward/scopegraph/internal/ir"
	"github.com/jward/scopegraph/internal/names"
	"github.com/jward/scopegraph/internal/runtime"
	"github.com/jward/scopegraph/internal/store"
)

// Engine orchestrates one compilation: graph construction, resolution,
// contract computation and persistence of the generated contracts.
type Engine struct {
	store      *store.Store // nil when running without a database
	log        logr.Logger
	scriptsDir string
	scriptsFS  fs.FS

	// incremental reuses stored parent contracts of scopes whose signature
	// hash did not change since the last successful compilation.
	incremental bool

	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the Engine and the script runtime.
func WithLogger(l logr.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithIncremental enables reuse of previously generated parent contracts.
// It has no effect without a database.
func WithIncremental(incremental bool) Option {
	return func(e *Engine) {
		e.incremental = incremental
	}
}

// WithScriptsDir sets the directory that relative .risor paths and Risor
// import statements resolve against. By default each script resolves
// imports next to itself.
func WithScriptsDir(dir string) Option {
	return func(e *Engine) {
		e.scriptsDir = dir
	}
}

// WithScriptsFS loads .risor scripts from fsys instead of disk. This
// enables embedding declaration scripts via go:embed.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.scriptsFS = fsys
	}
}

// New creates an Engine backed by a SQLite database at dbPath. An empty
// dbPath creates an Engine that keeps nothing between compilations.
func New(dbPath string, opts ...Option) (*Engine, error) {
	e := &Engine{
		log: logr.Discard(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if dbPath == "" {
		return e, nil
	}

	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("scopegraph: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("scopegraph: migrate: %w", err)
	}
	e.store = s
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Store returns the underlying Store, or nil without a database.
func (e *Engine) Store() *Store {
	return e.store
}

// Query returns a QueryBuilder over the stored generations. It returns nil
// without a database.
func (e *Engine) Query() *QueryBuilder {
	if e.store == nil {
		return nil
	}
	return &QueryBuilder{store: e.store}
}

// CompileFiles loads scope declarations from paths and compiles them as
// one graph. Supported inputs are IR documents (.yaml, .yml, .json) and
// Risor declaration scripts (.risor).
func (e *Engine) CompileFiles(ctx context.Context, paths ...string) (*Result, error) {
	var scopes []*ir.Scope
	for _, p := range paths {
		loaded, err := e.loadFile(ctx, p)
		if err != nil {
			return nil, err
		}
		e.log.V(1).Info("loaded scopes", "path", p, "scopes", len(loaded))
		scopes = append(scopes, loaded...)
	}
	return e.Compile(ctx, scopes)
}

func (e *Engine) loadFile(ctx context.Context, path string) ([]*ir.Scope, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		scopes, err := ir.LoadDocument(path)
		if err != nil {
			return nil, fmt.Errorf("scopegraph: load: %w", err)
		}
		return scopes, nil
	case ".risor":
		rt, script := e.runtimeFor(path)
		scopes, err := rt.RunScript(ctx, script, nil)
		if err != nil {
			return nil, fmt.Errorf("scopegraph: load: %w", err)
		}
		return scopes, nil
	default:
		return nil, fmt.Errorf("scopegraph: load %s: unsupported file type", path)
	}
}

// runtimeFor returns the Runtime that evaluates the script at path and the
// path to hand to it.
func (e *Engine) runtimeFor(path string) (*runtime.Runtime, string) {
	opts := []runtime.RuntimeOption{runtime.WithRuntimeLogger(e.log)}
	switch {
	case e.scriptsFS != nil:
		opts = append(opts, runtime.WithRuntimeFS(e.scriptsFS))
		return runtime.NewRuntime(e.scriptsDir, opts...), path
	case e.scriptsDir != "":
		return runtime.NewRuntime(e.scriptsDir, opts...), path
	default:
		return runtime.NewRuntime(filepath.Dir(path), opts...), filepath.Base(path)
	}
}

// Compile builds and resolves the graph formed by scopes and computes
// every contract. Structural problems in the input (a dangling child
// reference, a scope declared twice) and a missing prior generation are
// returned as errors. Diagnostics about the declarations themselves are
// reported in Result.Errors. Contracts are persisted only when there are
// no diagnostics.
func (e *Engine) Compile(ctx context.Context, scopes []*ir.Scope) (*Result, error) {
	g, err := graph.Build(scopes)
	if err != nil {
		return nil, fmt.Errorf("scopegraph: %w", err)
	}
	res := graph.Resolve(g)
	diags := res.Errors()
	e.log.V(1).Info("graph resolved",
		"scopes", g.Len(), "roots", len(g.Roots()), "diagnostics", len(diags.Errors()))

	result := &Result{
		Graph:        g,
		Resolution:   res,
		Errors:       diags,
		dependencies: make(map[string]*contract.Dependencies),
		parents:      make(map[string]*contract.ResolvedParent),
		hashes:       make(map[string]string),
	}

	if g.ScopeCycle() == nil {
		for _, s := range g.Scopes() {
			result.hashes[s.Type.Key()] = e.signatureHash(res, s.Type, result.hashes)
		}
	}
	reuse, err := e.reusable(result)
	if err != nil {
		return nil, err
	}

	resolver := &contract.ParentResolver{Log: e.log}
	if len(reuse) > 0 {
		resolver.Lookup = e.store
		resolver.Reuse = func(t ir.Type) bool { return reuse[t.Key()] }
	}

	for _, s := range g.Scopes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.IsRoot(s.Type) {
			if s.ParentContract != nil {
				e.log.V(1).Info("ignoring explicit parent contract of root scope",
					"scope", s.Type.String(), "contract", s.ParentContract.Type.String())
			}
			deps := contract.NewDependencies(s.Type, res.ExternalSinks(s.Type))
			result.dependencies[s.Type.Key()] = deps
			e.log.V(1).Info("computed dependencies", "scope", s.Type.String(), "methods", len(deps.Methods()))
			continue
		}
		rp, err := resolver.Resolve(ctx, res, s)
		if err != nil {
			return nil, fmt.Errorf("scopegraph: %w", err)
		}
		result.parents[s.Type.Key()] = rp
		if reuse[s.Type.Key()] {
			result.Reused = append(result.Reused, s.Type)
		}
	}

	if e.store != nil && diags.IsEmpty() {
		if err := e.persist(result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// signatureHash computes the hash of scope from its declaration, the
// hashes of its children and the Types its parents produce. memo holds the
// hashes computed so far. The graph must be free of scope cycles.
func (e *Engine) signatureHash(res *graph.Resolution, scope ir.Type, memo map[string]string) string {
	if h, ok := memo[scope.Key()]; ok {
		return h
	}
	g := res.Graph()
	s, _ := g.Scope(scope)

	var childHashes []string
	for _, c := range g.Children(scope) {
		childHashes = append(childHashes, e.signatureHash(res, c.Type, memo))
	}
	var parentProduced []string
	for _, p := range g.Parents(scope) {
		for _, t := range res.Produced(p.Type) {
			parentProduced = append(parentProduced, p.Type.String()+"="+t.String())
		}
	}
	h := store.ComputeSignatureHash(s, childHashes, parentProduced)
	memo[scope.Key()] = h
	return h
}

// reusable returns the non-root scopes whose stored generation can be
// reused as is.
func (e *Engine) reusable(result *Result) (map[string]bool, error) {
	if e.store == nil || !e.incremental || !result.Errors.IsEmpty() {
		return nil, nil
	}
	prior, err := e.store.SignatureHashes()
	if err != nil {
		return nil, fmt.Errorf("scopegraph: %w", err)
	}
	reuse := make(map[string]bool)
	for _, s := range result.Graph.Scopes() {
		if result.Graph.IsRoot(s.Type) {
			continue
		}
		if h, ok := prior[s.Type.String()]; ok && h == result.hashes[s.Type.Key()] {
			reuse[s.Type.Key()] = true
		}
	}
	e.log.V(1).Info("incremental compilation", "stored", len(prior), "reused", len(reuse))
	return reuse, nil
}

// persist stores the generation of every scope and prunes scopes that are
// no longer declared.
func (e *Engine) persist(result *Result) error {
	now := e.now().UTC().Truncate(time.Second)
	scopes := result.Graph.Scopes()
	gens := make([]*store.GeneratedScope, 0, len(scopes))
	keep := make([]string, 0, len(scopes))
	for _, s := range scopes {
		gen := &store.GeneratedScope{
			ScopeType:     s.Type.String(),
			ImplType:      names.ScopeImpl(s.Type).String(),
			SignatureHash: result.hashes[s.Type.Key()],
			GeneratedAt:   now,
		}
		if rp, ok := result.ResolvedParent(s.Type); ok {
			gen.ParentName = rp.Name.String()
			gen.ParentMode = rp.Mode.String()
			for _, m := range rp.Methods {
				gen.ParentMethods = append(gen.ParentMethods, &store.ParentMethod{
					Name: m.Name, TypeExpr: m.Type.String(), Transitive: m.Transitive,
				})
			}
		}
		if deps, ok := result.Dependencies(s.Type); ok {
			gen.DependenciesName = deps.Name.String()
			for _, m := range deps.Methods() {
				gen.DependencyMethods = append(gen.DependencyMethods, &store.DependencyMethod{
					Name: m.Name, TypeExpr: m.Type.String(), Requesters: m.Requesters,
				})
			}
		}
		gens = append(gens, gen)
		keep = append(keep, gen.ScopeType)
	}

	if err := e.store.SaveGenerations(gens); err != nil {
		return fmt.Errorf("scopegraph: %w", err)
	}
	pruned, err := e.store.DeleteGenerationsExcept(keep)
	if err != nil {
		return fmt.Errorf("scopegraph: %w", err)
	}
	e.log.V(1).Info("persisted generations", "saved", len(gens), "pruned", pruned)
	return nil
}
