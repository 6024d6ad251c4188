package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// SaveGenerations replaces the stored generation of every given scope in a
// single transaction. Child method rows are rewritten in ordinal order.
func (s *Store) SaveGenerations(gens []*GeneratedScope) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save generations: begin: %w", err)
	}
	defer tx.Rollback()

	for _, g := range gens {
		if err := saveGenerationTx(tx, g); err != nil {
			return fmt.Errorf("save generations: %s: %w", g.ScopeType, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save generations: commit: %w", err)
	}
	for _, g := range gens {
		s.cache.Remove(g.ScopeType)
	}
	return nil
}

// SaveGeneration stores one generation, replacing any earlier one for the
// same scope.
func (s *Store) SaveGeneration(g *GeneratedScope) error {
	return s.SaveGenerations([]*GeneratedScope{g})
}

func saveGenerationTx(tx *sql.Tx, g *GeneratedScope) error {
	if _, err := tx.Exec("DELETE FROM generated_scopes WHERE scope_type = ?", g.ScopeType); err != nil {
		return fmt.Errorf("delete previous: %w", err)
	}
	res, err := tx.Exec(
		`INSERT INTO generated_scopes (scope_type, impl_type, signature_hash, parent_name, parent_mode, dependencies_name, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ScopeType, g.ImplType, g.SignatureHash, g.ParentName, g.ParentMode, g.DependenciesName, g.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("insert scope: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	g.ID = id

	for i, m := range g.ParentMethods {
		m.ScopeID, m.Ordinal = id, i
		res, err := tx.Exec(
			`INSERT INTO parent_methods (scope_id, ordinal, name, type_expr, transitive) VALUES (?, ?, ?, ?, ?)`,
			m.ScopeID, m.Ordinal, m.Name, m.TypeExpr, m.Transitive,
		)
		if err != nil {
			return fmt.Errorf("insert parent method %q: %w", m.Name, err)
		}
		if m.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
	}

	for i, m := range g.DependencyMethods {
		m.ScopeID, m.Ordinal = id, i
		res, err := tx.Exec(
			`INSERT INTO dependency_methods (scope_id, ordinal, name, type_expr, requesters) VALUES (?, ?, ?, ?, ?)`,
			m.ScopeID, m.Ordinal, m.Name, m.TypeExpr, marshalRequesters(m.Requesters),
		)
		if err != nil {
			return fmt.Errorf("insert dependency method %q: %w", m.Name, err)
		}
		if m.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
	}
	return nil
}

const generatedScopeCols = `id, scope_type, impl_type, signature_hash, parent_name, parent_mode, dependencies_name, generated_at`

func scanGeneratedScope(row interface{ Scan(...any) error }) (*GeneratedScope, error) {
	g := &GeneratedScope{}
	var parentName, parentMode, depsName sql.NullString
	var generatedAt sql.NullTime
	if err := row.Scan(&g.ID, &g.ScopeType, &g.ImplType, &g.SignatureHash, &parentName, &parentMode, &depsName, &generatedAt); err != nil {
		return nil, err
	}
	g.ParentName = parentName.String
	g.ParentMode = parentMode.String
	g.DependenciesName = depsName.String
	g.GeneratedAt = generatedAt.Time
	return g, nil
}

// GenerationByScope returns the stored generation for scopeType, or nil if
// there is none. Results are served from an LRU cache when possible.
func (s *Store) GenerationByScope(scopeType string) (*GeneratedScope, error) {
	if g, ok := s.cache.Get(scopeType); ok {
		return g, nil
	}
	g, err := scanGeneratedScope(s.db.QueryRow(
		"SELECT "+generatedScopeCols+" FROM generated_scopes WHERE scope_type = ?", scopeType,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("generation by scope: %w", err)
	}
	if err := s.loadMethods(g); err != nil {
		return nil, err
	}
	s.cache.Add(scopeType, g)
	return g, nil
}

// Generations returns every stored generation ordered by scope type, with
// their methods.
func (s *Store) Generations() ([]*GeneratedScope, error) {
	rows, err := s.db.Query("SELECT " + generatedScopeCols + " FROM generated_scopes ORDER BY scope_type")
	if err != nil {
		return nil, fmt.Errorf("generations: %w", err)
	}
	var gens []*GeneratedScope
	for rows.Next() {
		g, err := scanGeneratedScope(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		gens = append(gens, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("generations: %w", err)
	}
	for _, g := range gens {
		if err := s.loadMethods(g); err != nil {
			return nil, err
		}
	}
	return gens, nil
}

// SignatureHashes maps every stored scope type to its signature hash.
func (s *Store) SignatureHashes() (map[string]string, error) {
	rows, err := s.db.Query("SELECT scope_type, signature_hash FROM generated_scopes")
	if err != nil {
		return nil, fmt.Errorf("signature hashes: %w", err)
	}
	defer rows.Close()
	hashes := make(map[string]string)
	for rows.Next() {
		var scopeType, hash string
		if err := rows.Scan(&scopeType, &hash); err != nil {
			return nil, fmt.Errorf("scan signature hash: %w", err)
		}
		hashes[scopeType] = hash
	}
	return hashes, rows.Err()
}

// DeleteGenerationsExcept removes every stored generation whose scope type
// is not in keep. It returns the number of generations removed.
func (s *Store) DeleteGenerationsExcept(keep []string) (int64, error) {
	query := "DELETE FROM generated_scopes"
	if len(keep) > 0 {
		query += " WHERE scope_type NOT IN (" + placeholderList(len(keep)) + ")"
	}
	res, err := s.db.Exec(query, stringsToArgs(keep)...)
	if err != nil {
		return 0, fmt.Errorf("delete generations: %w", err)
	}
	s.cache.Purge()
	return res.RowsAffected()
}

func (s *Store) loadMethods(g *GeneratedScope) error {
	rows, err := s.db.Query(
		"SELECT id, scope_id, ordinal, name, type_expr, transitive FROM parent_methods WHERE scope_id = ? ORDER BY ordinal", g.ID,
	)
	if err != nil {
		return fmt.Errorf("parent methods: %w", err)
	}
	for rows.Next() {
		m := &ParentMethod{}
		if err := rows.Scan(&m.ID, &m.ScopeID, &m.Ordinal, &m.Name, &m.TypeExpr, &m.Transitive); err != nil {
			rows.Close()
			return fmt.Errorf("scan parent method: %w", err)
		}
		g.ParentMethods = append(g.ParentMethods, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("parent methods: %w", err)
	}

	rows, err = s.db.Query(
		"SELECT id, scope_id, ordinal, name, type_expr, requesters FROM dependency_methods WHERE scope_id = ? ORDER BY ordinal", g.ID,
	)
	if err != nil {
		return fmt.Errorf("dependency methods: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		m := &DependencyMethod{}
		var reqs sql.NullString
		if err := rows.Scan(&m.ID, &m.ScopeID, &m.Ordinal, &m.Name, &m.TypeExpr, &reqs); err != nil {
			return fmt.Errorf("scan dependency method: %w", err)
		}
		m.Requesters, err = unmarshalRequesters(reqs.String)
		if err != nil {
			return fmt.Errorf("dependency method %s: requesters: %w", m.Name, err)
		}
		g.DependencyMethods = append(g.DependencyMethods, m)
	}
	return rows.Err()
}
