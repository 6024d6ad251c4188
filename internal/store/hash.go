package store

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/jward/scopegraph/internal/ir"
)

// ComputeSignatureHash computes a deterministic hash of everything a scope's
// generated contracts depend on: its own declaration, the signature hashes
// of its children and the Types its parents produce. Declaration order of
// factories and access methods does NOT affect the hash.
func ComputeSignatureHash(scope *ir.Scope, childHashes []string, parentProduced []string) string {
	h := sha256.New()

	// Core identity.
	fmt.Fprintf(h, "scope:%s\n", scope.Type)

	// Access methods, sorted by name.
	access := make([]string, len(scope.AccessMethods))
	for i, am := range scope.AccessMethods {
		access[i] = am.Name + ":" + am.Type.String()
	}
	sort.Strings(access)
	for _, a := range access {
		fmt.Fprintf(h, "access:%s\n", a)
	}

	// Factories, sorted by their full rendering. Parameter order is kept.
	factories := make([]string, len(scope.Factories))
	for i, f := range scope.Factories {
		params := make([]string, len(f.Method.Params))
		for j, p := range f.Method.Params {
			params[j] = p.String()
		}
		factories[i] = fmt.Sprintf("%s:%v:%s:%s", f.Method.String(), f.Method.Constructor, f.Returns, strings.Join(params, ","))
	}
	sort.Strings(factories)
	for _, f := range factories {
		fmt.Fprintf(h, "factory:%s\n", f)
	}

	// Explicit parent contract, in declaration order.
	if pc := scope.ParentContract; pc != nil {
		fmt.Fprintf(h, "parent:%s\n", pc.Type)
		for _, m := range pc.Methods {
			fmt.Fprintf(h, "parent-method:%s:%s\n", m.Name, m.Type)
		}
	}

	// Children and parents, sorted.
	children := append([]string(nil), childHashes...)
	sort.Strings(children)
	fmt.Fprintf(h, "children:%s\n", strings.Join(children, ","))

	produced := append([]string(nil), parentProduced...)
	sort.Strings(produced)
	fmt.Fprintf(h, "parent-produced:%s\n", strings.Join(produced, ","))

	return fmt.Sprintf("%x", h.Sum(nil))
}
