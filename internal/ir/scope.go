package ir

import "strings"

// MethodRef names a declared method for diagnostics: the declaring type,
// the method name and its parameter types. Constructors have no name of
// their own.
type MethodRef struct {
	Owner       Type
	Name        string
	Params      []Type
	Constructor bool
}

// DisplayName is the method name used in diagnostics. Constructors render
// as Simple(qualified.P1,qualified.P2).
func (m MethodRef) DisplayName() string {
	if !m.Constructor {
		return m.Name
	}
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.QualifiedName
	}
	return m.Owner.SimpleName() + "(" + strings.Join(params, ",") + ")"
}

// String renders Owner#DisplayName.
func (m MethodRef) String() string {
	return m.Owner.QualifiedName + "#" + m.DisplayName()
}

// Factory produces one Type from zero or more required Types.
type Factory struct {
	Method  MethodRef
	Returns Type
}

// Requires returns the Types the factory consumes, in declaration order.
func (f Factory) Requires() []Type {
	return f.Method.Params
}

// AccessMethod exposes a value of Type to callers of the scope.
type AccessMethod struct {
	Name string
	Type Type
}

// ChildRef is a declared child scope, reached through Method.
type ChildRef struct {
	Method string
	Scope  Type
}

// ParentMethod is one method of an explicitly authored parent contract.
type ParentMethod struct {
	Name string
	Type Type
}

// ParentContract is a hand-written declaration of what a scope requires
// from its parent.
type ParentContract struct {
	Type    Type
	Methods []ParentMethod
}

// Scope is the normalized declaration of one DI container.
type Scope struct {
	Type           Type
	Factories      []Factory
	AccessMethods  []AccessMethod
	Children       []ChildRef
	ParentContract *ParentContract
}

// Sinks returns every consumer declared by the scope: one per access method
// followed by one per factory parameter, in declaration order.
func (s *Scope) Sinks() []Sink {
	var sinks []Sink
	for _, am := range s.AccessMethods {
		sinks = append(sinks, Sink{
			Kind:   SinkAccessMethod,
			Type:   am.Type,
			Scope:  s.Type,
			Owner:  s.Type,
			Access: am,
		})
	}
	for _, f := range s.Factories {
		for i, p := range f.Requires() {
			sinks = append(sinks, Sink{
				Kind:    SinkFactoryParameter,
				Type:    p,
				Scope:   s.Type,
				Owner:   f.Method.Owner,
				Factory: f,
				Param:   i,
			})
		}
	}
	return sinks
}

// ContractSinks renders each explicit parent contract method as an access
// method sink owned by the contract type.
func (s *Scope) ContractSinks() []Sink {
	if s.ParentContract == nil {
		return nil
	}
	sinks := make([]Sink, 0, len(s.ParentContract.Methods))
	for _, m := range s.ParentContract.Methods {
		sinks = append(sinks, Sink{
			Kind:   SinkAccessMethod,
			Type:   m.Type,
			Scope:  s.Type,
			Owner:  s.ParentContract.Type,
			Access: AccessMethod{Name: m.Name, Type: m.Type},
		})
	}
	return sinks
}
