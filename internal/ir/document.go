package ir

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Document is the serialized IR handed over by a front end. YAML and JSON
// are both accepted.
type Document struct {
	Scopes []ScopeDoc `json:"scopes"`
}

// ScopeDoc is the serialized form of one Scope.
type ScopeDoc struct {
	Type          string       `json:"type"`
	AccessMethods []MemberDoc  `json:"accessMethods,omitempty"`
	Factories     []FactoryDoc `json:"factories,omitempty"`
	Children      []ChildDoc   `json:"children,omitempty"`
	Parent        *ParentDoc   `json:"parent,omitempty"`
}

// FactoryDoc describes a producer. Owner defaults to "<scope>.Objects";
// a constructor defaults its owner and return type to each other.
type FactoryDoc struct {
	Owner       string   `json:"owner,omitempty"`
	Name        string   `json:"name,omitempty"`
	Constructor bool     `json:"constructor,omitempty"`
	Returns     string   `json:"returns,omitempty"`
	Params      []string `json:"params,omitempty"`
}

// ChildDoc is a child method returning another scope.
type ChildDoc struct {
	Name  string `json:"name"`
	Scope string `json:"scope"`
}

// ParentDoc is an explicitly authored parent contract.
type ParentDoc struct {
	Type    string      `json:"type,omitempty"`
	Methods []MemberDoc `json:"methods"`
}

// MemberDoc is a name and a type expression.
type MemberDoc struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// LoadDocument reads and decodes an IR document from path.
func LoadDocument(path string) ([]*Scope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	scopes, err := DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scopes, nil
}

// DecodeDocument decodes YAML or JSON IR into Scopes. Unknown fields are
// rejected.
func DecodeDocument(data []byte) ([]*Scope, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	scopes := make([]*Scope, 0, len(doc.Scopes))
	for i := range doc.Scopes {
		s, err := doc.Scopes[i].Scope()
		if err != nil {
			return nil, fmt.Errorf("scope %d: %w", i, err)
		}
		scopes = append(scopes, s)
	}
	return scopes, nil
}

// DecodeScope decodes a single ScopeDoc given as YAML or JSON.
func DecodeScope(data []byte) (*Scope, error) {
	var d ScopeDoc
	if err := yaml.UnmarshalStrict(data, &d); err != nil {
		return nil, fmt.Errorf("decode scope: %w", err)
	}
	return d.Scope()
}

// Scope converts the document form into a Scope, parsing every type
// expression.
func (d *ScopeDoc) Scope() (*Scope, error) {
	if d.Type == "" {
		return nil, fmt.Errorf("scope type is required")
	}
	st, err := ParseType(d.Type)
	if err != nil {
		return nil, err
	}
	s := &Scope{Type: st}

	for _, am := range d.AccessMethods {
		t, err := ParseType(am.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: access method %s: %w", d.Type, am.Name, err)
		}
		s.AccessMethods = append(s.AccessMethods, AccessMethod{Name: am.Name, Type: t})
	}

	for _, fd := range d.Factories {
		f, err := fd.factory(st)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Type, err)
		}
		s.Factories = append(s.Factories, f)
	}

	for _, c := range d.Children {
		t, err := ParseType(c.Scope)
		if err != nil {
			return nil, fmt.Errorf("%s: child %s: %w", d.Type, c.Name, err)
		}
		s.Children = append(s.Children, ChildRef{Method: c.Name, Scope: t})
	}

	if d.Parent != nil {
		pc := &ParentContract{}
		if d.Parent.Type != "" {
			if pc.Type, err = ParseType(d.Parent.Type); err != nil {
				return nil, fmt.Errorf("%s: parent: %w", d.Type, err)
			}
		} else {
			pc.Type = Named(st.QualifiedName + ".Parent")
		}
		for _, m := range d.Parent.Methods {
			t, err := ParseType(m.Type)
			if err != nil {
				return nil, fmt.Errorf("%s: parent method %s: %w", d.Type, m.Name, err)
			}
			pc.Methods = append(pc.Methods, ParentMethod{Name: m.Name, Type: t})
		}
		s.ParentContract = pc
	}
	return s, nil
}

func (fd *FactoryDoc) factory(scope Type) (Factory, error) {
	owner, returns := fd.Owner, fd.Returns
	if fd.Constructor {
		if owner == "" {
			owner = returns
		}
		if returns == "" {
			returns = owner
		}
	} else if owner == "" {
		owner = scope.QualifiedName + ".Objects"
	}
	if returns == "" {
		return Factory{}, fmt.Errorf("factory %s: returns is required", fd.Name)
	}
	if !fd.Constructor && fd.Name == "" {
		return Factory{}, fmt.Errorf("factory returning %s: name is required", returns)
	}

	ot, err := ParseType(owner)
	if err != nil {
		return Factory{}, fmt.Errorf("factory %s: owner: %w", fd.Name, err)
	}
	rt, err := ParseType(returns)
	if err != nil {
		return Factory{}, fmt.Errorf("factory %s: returns: %w", fd.Name, err)
	}
	params := make([]Type, 0, len(fd.Params))
	for _, p := range fd.Params {
		pt, err := ParseType(p)
		if err != nil {
			return Factory{}, fmt.Errorf("factory %s: param: %w", fd.Name, err)
		}
		params = append(params, pt)
	}
	return Factory{
		Method: MethodRef{
			Owner:       ot,
			Name:        fd.Name,
			Params:      params,
			Constructor: fd.Constructor,
		},
		Returns: rt,
	}, nil
}

// Doc converts a Scope back into its document form.
func (s *Scope) Doc() ScopeDoc {
	d := ScopeDoc{Type: s.Type.String()}
	for _, am := range s.AccessMethods {
		d.AccessMethods = append(d.AccessMethods, MemberDoc{Name: am.Name, Type: am.Type.String()})
	}
	for _, f := range s.Factories {
		fd := FactoryDoc{
			Owner:       f.Method.Owner.String(),
			Name:        f.Method.Name,
			Constructor: f.Method.Constructor,
			Returns:     f.Returns.String(),
		}
		for _, p := range f.Method.Params {
			fd.Params = append(fd.Params, p.String())
		}
		d.Factories = append(d.Factories, fd)
	}
	for _, c := range s.Children {
		d.Children = append(d.Children, ChildDoc{Name: c.Method, Scope: c.Scope.String()})
	}
	if s.ParentContract != nil {
		pd := &ParentDoc{Type: s.ParentContract.Type.String()}
		for _, m := range s.ParentContract.Methods {
			pd.Methods = append(pd.Methods, MemberDoc{Name: m.Name, Type: m.Type.String()})
		}
		d.Parent = pd
	}
	return d
}
