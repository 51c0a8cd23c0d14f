// Package sqlite provides a SQLite implementation of storage.TreeStore for
// single-file deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lineage-works/lineage/internal/storage"
	"github.com/lineage-works/lineage/pkg/types"
)

// TreeStore implements storage.TreeStore using SQLite.
type TreeStore struct {
	db *sql.DB
}

// NewTreeStore opens a SQLite database and ensures the schema exists.
func NewTreeStore(dsn string) (*TreeStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer; a single connection
	// avoids SQLITE_BUSY under concurrent readers in WAL mode.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}

	return &TreeStore{db: db}, nil
}

// GetDB returns the underlying database connection. Tests use it to seed
// fixture rows; the import pipeline owns writes in production.
func (s *TreeStore) GetDB() *sql.DB {
	return s.db
}

// ResolvePersonRef implements storage.TreeStore.
func (s *TreeStore) ResolvePersonRef(ctx context.Context, ref string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM person WHERE id = ? OR alias_id = ? LIMIT 1",
		ref, ref,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: person %s", storage.ErrNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: failed to resolve person ref: %w", err)
	}
	return id, nil
}

// FamilyByRef implements storage.TreeStore.
func (s *TreeStore) FamilyByRef(ctx context.Context, ref string) (*types.Family, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, alias_id, father_id, mother_id, is_private
		FROM family
		WHERE id = ? OR alias_id = ?
		LIMIT 1
	`, ref, ref)

	fam, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: family %s", storage.ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to load family: %w", err)
	}

	children, err := s.childIDs(ctx, fam.ID)
	if err != nil {
		return nil, err
	}
	fam.Children = children
	return fam, nil
}

// PeopleByIDs implements storage.TreeStore.
func (s *TreeStore) PeopleByIDs(ctx context.Context, ids []string) (map[string]*types.Person, error) {
	out := make(map[string]*types.Person, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`
		SELECT id, alias_id, display_name, given_name, surname, gender,
		       birth_text, death_text, birth_date, death_date,
		       is_living, is_private, is_living_override
		FROM person
		WHERE id IN (%s)
	`, placeholders(len(ids)))

	rows, err := s.db.QueryContext(ctx, query, toArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query people: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan person: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// ParentEdgesTouching implements storage.TreeStore.
func (s *TreeStore) ParentEdgesTouching(ctx context.Context, ids []string) ([]types.ParentEdge, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ph := placeholders(len(ids))
	query := fmt.Sprintf(`
		SELECT child_id, parent_id
		FROM person_parent
		WHERE child_id IN (%s) OR parent_id IN (%s)
	`, ph, ph)

	args := append(toArgs(ids), toArgs(ids)...)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query parent edges: %w", err)
	}
	defer rows.Close()

	var edges []types.ParentEdge
	for rows.Next() {
		var e types.ParentEdge
		if err := rows.Scan(&e.ChildID, &e.ParentID); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan parent edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// FamiliesTouching implements storage.TreeStore.
func (s *TreeStore) FamiliesTouching(ctx context.Context, ids []string) ([]*types.Family, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ph := placeholders(len(ids))
	query := fmt.Sprintf(`
		SELECT DISTINCT f.id, f.alias_id, f.father_id, f.mother_id, f.is_private
		FROM family f
		LEFT JOIN family_child fc ON fc.family_id = f.id
		WHERE f.father_id IN (%s) OR f.mother_id IN (%s) OR fc.child_id IN (%s)
	`, ph, ph, ph)

	args := append(append(toArgs(ids), toArgs(ids)...), toArgs(ids)...)
	families, err := s.queryFamilies(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := s.populateChildren(ctx, families); err != nil {
		return nil, err
	}
	return families, nil
}

// CoupleFamiliesOf implements storage.TreeStore.
func (s *TreeStore) CoupleFamiliesOf(ctx context.Context, ids []string) ([]*types.Family, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ph := placeholders(len(ids))
	query := fmt.Sprintf(`
		SELECT id, alias_id, father_id, mother_id, is_private
		FROM family
		WHERE father_id IS NOT NULL AND father_id != ''
		  AND mother_id IS NOT NULL AND mother_id != ''
		  AND (father_id IN (%s) OR mother_id IN (%s))
	`, ph, ph)

	args := append(toArgs(ids), toArgs(ids)...)
	return s.queryFamilies(ctx, query, args...)
}

// FamiliesByIDs implements storage.TreeStore.
func (s *TreeStore) FamiliesByIDs(ctx context.Context, ids []string) ([]*types.Family, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, alias_id, father_id, mother_id, is_private
		FROM family
		WHERE id IN (%s)
	`, placeholders(len(ids)))

	families, err := s.queryFamilies(ctx, query, toArgs(ids)...)
	if err != nil {
		return nil, err
	}
	if err := s.populateChildren(ctx, families); err != nil {
		return nil, err
	}
	return families, nil
}

// BirthFamilyLinks implements storage.TreeStore.
func (s *TreeStore) BirthFamilyLinks(ctx context.Context, childIDs []string) ([]types.FamilyChildLink, error) {
	if len(childIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT family_id, child_id
		FROM family_child
		WHERE child_id IN (%s)
	`, placeholders(len(childIDs)))

	rows, err := s.db.QueryContext(ctx, query, toArgs(childIDs)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query birth family links: %w", err)
	}
	defer rows.Close()

	var links []types.FamilyChildLink
	for rows.Next() {
		var l types.FamilyChildLink
		if err := rows.Scan(&l.FamilyID, &l.ChildID); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan family child link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// ChildCounts implements storage.TreeStore.
func (s *TreeStore) ChildCounts(ctx context.Context, familyIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(familyIDs))
	if len(familyIDs) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`
		SELECT family_id, COUNT(*)
		FROM family_child
		WHERE family_id IN (%s)
		GROUP BY family_id
	`, placeholders(len(familyIDs)))

	rows, err := s.db.QueryContext(ctx, query, toArgs(familyIDs)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query child counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan child count: %w", err)
		}
		out[id] = n
	}
	return out, rows.Err()
}

// MarriageDates implements storage.TreeStore.
//
// First pass: non-private marriage/wedding events linked directly to the
// family. Fallback for the rest: a non-private marriage/wedding event that
// both parents are independently linked to, evidence of a shared ceremony.
// Rows are ordered (date, text, id) and the first per family wins.
func (s *TreeStore) MarriageDates(ctx context.Context, familyIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(familyIDs))
	if len(familyIDs) == 0 {
		return out, nil
	}

	direct := fmt.Sprintf(`
		SELECT fe.family_id, e.event_date, e.event_date_text
		FROM family_event fe
		JOIN event e ON e.id = fe.event_id
		WHERE fe.family_id IN (%s)
		  AND COALESCE(e.is_private, 0) = 0
		  AND (LOWER(e.event_type) LIKE '%%marriage%%' OR LOWER(e.event_type) LIKE '%%wedding%%')
		ORDER BY fe.family_id,
		         e.event_date IS NULL, e.event_date,
		         e.event_date_text IS NULL, e.event_date_text,
		         e.id
	`, placeholders(len(familyIDs)))

	if err := s.collectMarriageRows(ctx, out, direct, toArgs(familyIDs)...); err != nil {
		return nil, err
	}

	var missing []string
	for _, id := range familyIDs {
		if _, ok := out[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	shared := fmt.Sprintf(`
		SELECT f.id, e.event_date, e.event_date_text
		FROM family f
		JOIN person_event pf ON pf.person_id = f.father_id
		JOIN person_event pm ON pm.person_id = f.mother_id AND pm.event_id = pf.event_id
		JOIN event e ON e.id = pf.event_id
		WHERE f.id IN (%s)
		  AND f.father_id IS NOT NULL AND f.father_id != ''
		  AND f.mother_id IS NOT NULL AND f.mother_id != ''
		  AND COALESCE(e.is_private, 0) = 0
		  AND (LOWER(e.event_type) LIKE '%%marriage%%' OR LOWER(e.event_type) LIKE '%%wedding%%')
		ORDER BY f.id,
		         e.event_date IS NULL, e.event_date,
		         e.event_date_text IS NULL, e.event_date_text,
		         e.id
	`, placeholders(len(missing)))

	if err := s.collectMarriageRows(ctx, out, shared, toArgs(missing)...); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping implements storage.TreeStore.
func (s *TreeStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements storage.TreeStore.
func (s *TreeStore) Close() error {
	return s.db.Close()
}

// collectMarriageRows scans ordered (family_id, date, text) rows, keeping the
// first row per family.
func (s *TreeStore) collectMarriageRows(ctx context.Context, out map[string]string, query string, args ...interface{}) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: failed to query marriage events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fid string
		var date, text sql.NullString
		if err := rows.Scan(&fid, &date, &text); err != nil {
			return fmt.Errorf("sqlite: failed to scan marriage event: %w", err)
		}
		if _, ok := out[fid]; ok {
			continue
		}
		switch {
		case date.Valid && date.String != "":
			out[fid] = date.String
		case text.Valid && text.String != "":
			out[fid] = text.String
		}
	}
	return rows.Err()
}

// childIDs returns the child ids of one family.
func (s *TreeStore) childIDs(ctx context.Context, familyID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT child_id FROM family_child WHERE family_id = ?", familyID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query family children: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan child id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// populateChildren fills Children on each family in one query.
func (s *TreeStore) populateChildren(ctx context.Context, families []*types.Family) error {
	if len(families) == 0 {
		return nil
	}

	byID := make(map[string]*types.Family, len(families))
	ids := make([]string, 0, len(families))
	for _, f := range families {
		byID[f.ID] = f
		ids = append(ids, f.ID)
	}

	query := fmt.Sprintf(`
		SELECT family_id, child_id
		FROM family_child
		WHERE family_id IN (%s)
	`, placeholders(len(ids)))

	rows, err := s.db.QueryContext(ctx, query, toArgs(ids)...)
	if err != nil {
		return fmt.Errorf("sqlite: failed to query family children: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fid, cid string
		if err := rows.Scan(&fid, &cid); err != nil {
			return fmt.Errorf("sqlite: failed to scan family child: %w", err)
		}
		if f, ok := byID[fid]; ok {
			f.Children = append(f.Children, cid)
		}
	}
	return rows.Err()
}

// queryFamilies runs a family SELECT and scans the rows. Children are left
// nil; callers populate them where needed.
func (s *TreeStore) queryFamilies(ctx context.Context, query string, args ...interface{}) ([]*types.Family, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query families: %w", err)
	}
	defer rows.Close()

	var out []*types.Family
	for rows.Next() {
		fam, err := scanFamily(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan family: %w", err)
		}
		out = append(out, fam)
	}
	return out, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFamily(r rowScanner) (*types.Family, error) {
	var fam types.Family
	var aliasID, fatherID, motherID sql.NullString
	var isPrivate sql.NullBool

	if err := r.Scan(&fam.ID, &aliasID, &fatherID, &motherID, &isPrivate); err != nil {
		return nil, err
	}

	fam.AliasID = aliasID.String
	fam.FatherID = fatherID.String
	fam.MotherID = motherID.String
	fam.IsPrivate = isPrivate.Valid && isPrivate.Bool
	return &fam, nil
}

func scanPerson(r rowScanner) (*types.Person, error) {
	var p types.Person
	var aliasID, displayName, givenName, surname, gender sql.NullString
	var birthText, deathText, birthDate, deathDate sql.NullString
	var isLiving, isPrivate, isLivingOverride sql.NullBool

	if err := r.Scan(
		&p.ID, &aliasID, &displayName, &givenName, &surname, &gender,
		&birthText, &deathText, &birthDate, &deathDate,
		&isLiving, &isPrivate, &isLivingOverride,
	); err != nil {
		return nil, err
	}

	p.AliasID = aliasID.String
	p.DisplayName = displayName.String
	p.GivenName = givenName.String
	p.Surname = surname.String
	p.Gender = gender.String
	p.BirthText = birthText.String
	p.DeathText = deathText.String
	p.BirthDate = parseDate(birthDate)
	p.DeathDate = parseDate(deathDate)
	p.IsLiving = nullableBool(isLiving)
	p.IsPrivate = isPrivate.Valid && isPrivate.Bool
	p.IsLivingOverride = nullableBool(isLivingOverride)
	return &p, nil
}

// parseDate converts an ISO TEXT date column to a time, nil when absent or
// malformed. Malformed structured dates degrade to the text fallback rather
// than failing the whole query.
func parseDate(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullableBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}

// placeholders returns "?, ?, ..." for n parameters.
func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func toArgs(ids []string) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
