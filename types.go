package scopegraph

import (
	"github.com/jward/scopegraph/internal/contract"
	"github.com/jward/scopegraph/internal/graph"
	"github.com/jward/scopegraph/internal/ir"
	"github.com/jward/scopegraph/internal/store"
)

// Public type aliases for internal types used in the Engine and
// QueryBuilder API. These are Go type aliases (=), so no conversion is
// needed.

type Store = store.Store
type Generation = store.GeneratedScope

type Type = ir.Type
type Scope = ir.Scope
type Sink = ir.Sink
type Requester = ir.Requester

type Graph = graph.Graph
type Resolution = graph.Resolution
type GraphErrors = graph.GraphErrors

type Dependencies = contract.Dependencies
type ResolvedParent = contract.ResolvedParent
