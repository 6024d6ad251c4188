// Package scopegraph resolves a hierarchy of dependency-injection scopes
// into a validated object graph and computes the contracts each scope must
// expose to, or require from, its neighbors.
//
// # Pipeline
//
// One compilation runs these steps:
//
//  1. Load: scope declarations come from IR documents (YAML or JSON) or
//     from Risor scripts calling the scope host function.
//
//  2. Build: the scopes are assembled into a [Graph]. A child reference to
//     an undeclared scope, or a scope declared twice, aborts the
//     compilation.
//
//  3. Resolve: producers, unsatisfied sinks and needs-from-parent are
//     computed for every scope. Scope cycles, dependency cycles, duplicate
//     factories and missing dependencies are all reported together in
//     [GraphErrors].
//
//  4. Contracts: every root scope gets a [Dependencies] contract of values
//     supplied from outside the graph, and every other scope gets a
//     [ResolvedParent] contract it requires from its parents.
//
//  5. Persist: when the graph is valid, the contracts are stored in SQLite
//     together with a signature hash per scope.
//
// # Usage
//
//	e, err := scopegraph.New("scopegraph.db", scopegraph.WithIncremental(true))
//	if err != nil { ... }
//	defer e.Close()
//
//	res, err := e.CompileFiles(ctx, "app.yaml", "request.risor")
//	if err != nil { ... }
//	if !res.Errors.IsEmpty() {
//		return res.Errors.Err()
//	}
//	for _, sc := range res.Scopes() { ... }
//
// # Incremental compilation
//
// With [WithIncremental], a non-root scope whose signature hash (its own
// declaration, its subtree and the Types its parents produce) is unchanged
// since the last stored generation reads its parent contract back from the
// store instead of deriving it again, so method names stay stable.
//
// # Scripts
//
// Declaration scripts see these globals:
//
//   - scope(decl): declares a scope; decl has the shape of a document entry
//   - type_of(expr): canonical rendering of a type expression
//   - preferred_name(expr): the accessor name a contract would prefer
//   - log.info/debug/warn/error(msg): write through the Engine's logger
package scopegraph
