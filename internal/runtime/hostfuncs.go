package runtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/risor-io/risor/object"

	"github.com/jward/scopegraph/internal/ir"
)

// declarations collects the scopes declared during one evaluation.
type declarations struct {
	scopes []*ir.Scope
}

// makeScopeFn returns the scope(decl) builtin. decl is a map in the same
// shape as a scope entry of an IR document. The declared scope's type is
// returned as a canonical string.
func makeScopeFn(decls *declarations) *object.Builtin {
	return object.NewBuiltin("scope", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("scope", 1, len(args))
		}
		m, err := extractMap(args[0])
		if err != nil {
			return object.Errorf("scope: %v", err)
		}
		decl, err := toGo(object.NewMap(m))
		if err != nil {
			return object.Errorf("scope: %v", err)
		}
		data, err := json.Marshal(decl)
		if err != nil {
			return object.Errorf("scope: %v", err)
		}
		s, err := ir.DecodeScope(data)
		if err != nil {
			return object.Errorf("scope %q: %v", getString(m, "type"), err)
		}
		decls.scopes = append(decls.scopes, s)
		return object.NewString(s.Type.String())
	})
}

// makeTypeOfFn returns the type_of(expr) builtin, which parses a type
// expression and returns its canonical rendering.
func makeTypeOfFn() *object.Builtin {
	return object.NewBuiltin("type_of", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("type_of", 1, len(args))
		}
		expr, err := toString(args[0])
		if err != nil {
			return object.Errorf("type_of: %v", err)
		}
		t, err := ir.ParseType(expr)
		if err != nil {
			return object.Errorf("type_of: %v", err)
		}
		return object.NewString(t.String())
	})
}

// makePreferredNameFn returns the preferred_name(expr) builtin: the method
// name a generated contract would prefer for the type.
func makePreferredNameFn() *object.Builtin {
	return object.NewBuiltin("preferred_name", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("preferred_name", 1, len(args))
		}
		expr, err := toString(args[0])
		if err != nil {
			return object.Errorf("preferred_name: %v", err)
		}
		t, err := ir.ParseType(expr)
		if err != nil {
			return object.Errorf("preferred_name: %v", err)
		}
		return object.NewString(t.PreferredName())
	})
}

// logModule provides log.info/warn/error for Risor scripts, backed by l.
func logModule(l logr.Logger) *object.Module {
	logFn := func(name string, emit func(msg string)) *object.Builtin {
		return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
			if len(args) != 1 {
				return object.NewArgsError("log."+name, 1, len(args))
			}
			msg, err := toString(args[0])
			if err != nil {
				msg = args[0].Inspect()
			}
			emit(msg)
			return object.Nil
		})
	}
	return object.NewBuiltinsModule("log", map[string]object.Object{
		"info":  logFn("info", func(msg string) { l.Info(msg) }),
		"debug": logFn("debug", func(msg string) { l.V(1).Info(msg) }),
		"warn":  logFn("warn", func(msg string) { l.Info(msg, "level", "warn") }),
		"error": logFn("error", func(msg string) { l.Error(nil, msg) }),
	})
}

// --- Risor value helpers ---

func extractMap(obj object.Object) (map[string]object.Object, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %s", obj.Type())
	}
	return m.Value(), nil
}

func getString(m map[string]object.Object, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	if s, ok := v.(*object.String); ok {
		return s.Value()
	}
	return ""
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}

// toGo converts a Risor value into plain Go values that encoding/json can
// serialize. Only the shapes a scope declaration can contain are accepted.
func toGo(obj object.Object) (any, error) {
	switch v := obj.(type) {
	case *object.NilType:
		return nil, nil
	case *object.String:
		return v.Value(), nil
	case *object.Bool:
		return v.Value(), nil
	case *object.Int:
		return v.Value(), nil
	case *object.Float:
		return v.Value(), nil
	case *object.List:
		items := v.Value()
		out := make([]any, len(items))
		for i, item := range items {
			g, err := toGo(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = g
		}
		return out, nil
	case *object.Map:
		out := make(map[string]any, len(v.Value()))
		for k, item := range v.Value() {
			g, err := toGo(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = g
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", obj.Type())
	}
}
