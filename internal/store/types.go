package store

import (
	"time"

	"github.com/jward/scopegraph/internal/ir"
)

// GeneratedScope is one stored generation of a scope: the contracts that
// were emitted for it and the signature they were computed from.
type GeneratedScope struct {
	ID               int64
	ScopeType        string
	ImplType         string
	SignatureHash    string
	ParentName       string
	ParentMode       string
	DependenciesName string
	GeneratedAt      time.Time

	ParentMethods     []*ParentMethod
	DependencyMethods []*DependencyMethod
}

type ParentMethod struct {
	ID         int64
	ScopeID    int64
	Ordinal    int
	Name       string
	TypeExpr   string
	Transitive bool
}

type DependencyMethod struct {
	ID         int64
	ScopeID    int64
	Ordinal    int
	Name       string
	TypeExpr   string
	Requesters []ir.Requester
}
