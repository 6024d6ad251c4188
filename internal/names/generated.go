package names

import (
	"strings"
	"unicode"

	"github.com/jward/scopegraph/internal/ir"
)

const (
	implSuffix       = "Impl"
	parentName       = "Parent"
	dependenciesName = "Dependencies"
)

// ScopeImpl names the generated implementation of scope. Nested class
// segments are flattened with underscores:
//
//	com.example.Outer.Scope -> com.example.Outer_ScopeImpl
func ScopeImpl(scope ir.Type) ir.Type {
	pkg, classes := splitClasses(scope.QualifiedName)
	name := strings.Join(classes, "_") + implSuffix
	if pkg != "" {
		name = pkg + "." + name
	}
	return ir.Named(name)
}

// GeneratedParent names the parent contract generated inside ScopeImpl.
func GeneratedParent(scope ir.Type) ir.Type {
	return ir.Named(ScopeImpl(scope).QualifiedName + "." + parentName)
}

// DependenciesOf names the external dependencies contract of a root scope.
func DependenciesOf(scope ir.Type) ir.Type {
	return ir.Named(ScopeImpl(scope).QualifiedName + "." + dependenciesName)
}

// splitClasses separates the package path from the class segments. A '$'
// marks nesting explicitly (pkg.Outer$Inner). Otherwise the classes begin at
// the first segment that starts upper-case and also contains a lower-case
// letter, so version-like package segments such as T019 stay in the package.
func splitClasses(qualified string) (string, []string) {
	if i := strings.IndexByte(qualified, '$'); i >= 0 {
		dot := strings.LastIndexByte(qualified[:i], '.')
		return qualified[:max(dot, 0)], strings.Split(qualified[dot+1:], "$")
	}
	segments := strings.Split(qualified, ".")
	for i, seg := range segments {
		if isClassSegment(seg) {
			return strings.Join(segments[:i], "."), segments[i:]
		}
	}
	last := len(segments) - 1
	return strings.Join(segments[:last], "."), segments[last:]
}

func isClassSegment(seg string) bool {
	r := []rune(seg)
	if len(r) == 0 || !unicode.IsUpper(r[0]) {
		return false
	}
	for _, c := range r[1:] {
		if unicode.IsLower(c) {
			return true
		}
	}
	return false
}
