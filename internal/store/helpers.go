package store

import (
	"encoding/json"
	"strings"

	"github.com/jward/scopegraph/internal/ir"
)

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// stringsToArgs converts []string to []any for use with database/sql.
func stringsToArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}

// marshalRequesters converts requesters to JSON text for storage.
func marshalRequesters(reqs []ir.Requester) string {
	if len(reqs) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(reqs)
	return string(b)
}

// unmarshalRequesters converts JSON text back to requesters.
func unmarshalRequesters(s string) ([]ir.Requester, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	var reqs []ir.Requester
	if err := json.Unmarshal([]byte(s), &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}
