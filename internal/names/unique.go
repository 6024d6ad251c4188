// Package names allocates collision-free method names and derives the
// names of generated types.
package names

import (
	"strconv"

	"k8s.io/apimachinery/pkg/util/sets"
)

// UniqueNameSet hands out names that are unique within one generated
// contract. A taken name gets a numeric suffix starting at 2.
type UniqueNameSet struct {
	used sets.Set[string]
}

// NewUniqueNameSet returns a set with the given names already taken.
func NewUniqueNameSet(reserved ...string) *UniqueNameSet {
	return &UniqueNameSet{used: sets.New(reserved...)}
}

// Unique returns preferred if it is free, otherwise preferred2, preferred3
// and so on. The returned name is marked as taken.
func (s *UniqueNameSet) Unique(preferred string) string {
	name := preferred
	for i := 2; s.Contains(name); i++ {
		name = preferred + strconv.Itoa(i)
	}
	s.used.Insert(name)
	return name
}

// Contains reports whether name has been handed out or reserved.
func (s *UniqueNameSet) Contains(name string) bool {
	return s.used.Has(name)
}
