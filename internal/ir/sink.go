package ir

import (
	"fmt"
	"strconv"
)

// SinkKind tags the two consumer variants.
type SinkKind int

const (
	// SinkAccessMethod is a value exposed to external callers.
	SinkAccessMethod SinkKind = iota + 1
	// SinkFactoryParameter is a value a factory needs internally.
	SinkFactoryParameter
)

func (k SinkKind) String() string {
	switch k {
	case SinkAccessMethod:
		return "access-method"
	case SinkFactoryParameter:
		return "factory-parameter"
	default:
		return "sink(" + strconv.Itoa(int(k)) + ")"
	}
}

// Sink is a declared requirement for a value of Type within Scope.
// Access is set for SinkAccessMethod; Factory and Param for
// SinkFactoryParameter.
type Sink struct {
	Kind  SinkKind
	Type  Type
	Scope Type
	Owner Type

	Access AccessMethod

	Factory Factory
	Param   int
}

// Requester identifies who asked for a value, for diagnostics.
type Requester struct {
	CallerQualifiedName string `json:"caller"`
	CallerMethodName    string `json:"method"`
}

func (r Requester) String() string {
	return r.CallerQualifiedName + "#" + r.CallerMethodName
}

// Requester renders the identity of the code that declared the sink.
func (s Sink) Requester() Requester {
	switch s.Kind {
	case SinkFactoryParameter:
		return Requester{
			CallerQualifiedName: s.Factory.Method.Owner.QualifiedName,
			CallerMethodName:    s.Factory.Method.DisplayName(),
		}
	case SinkAccessMethod:
		return Requester{
			CallerQualifiedName: s.Owner.QualifiedName,
			CallerMethodName:    s.Access.Name,
		}
	default:
		panic(fmt.Sprintf("ir: unknown sink kind %d", s.Kind))
	}
}

// ID distinguishes sinks declared at different sites.
func (s Sink) ID() string {
	return fmt.Sprintf("%s|%s|%s|%d|%s", s.Kind, s.Scope.Key(), s.Requester(), s.Param, s.Type.Key())
}

// CompareSinks orders sinks by Type, then requester, then parameter index.
func CompareSinks(a, b Sink) int {
	if c := Compare(a.Type, b.Type); c != 0 {
		return c
	}
	ra, rb := a.Requester().String(), b.Requester().String()
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	return a.Param - b.Param
}
