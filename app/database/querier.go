package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// resolveCategoryIDs maps category names to ids, failing with ErrUnknownCategory
// when any name does not exist
func resolveCategoryIDs(ctx context.Context, q querier, names []string) (map[string]string, error) {
	unique := uniqueFold(names)
	if len(unique) == 0 {
		return map[string]string{}, nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, name FROM categories WHERE name IN (`+placeholders(len(unique))+`)`,
		toArgs(unique)...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve categories: %w", err)
	}
	defer rows.Close()

	resolved := make(map[string]string, len(unique))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		resolved[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	if len(resolved) != len(unique) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, strings.Join(missingNames(unique, resolved), ", "))
	}

	return resolved, nil
}

// uniqueFold trims names and drops empty and case-insensitive duplicates,
// keeping first occurrence order
func uniqueFold(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func missingNames(requested []string, resolved map[string]string) []string {
	found := make(map[string]bool, len(resolved))
	for _, name := range resolved {
		found[strings.ToLower(name)] = true
	}

	var missing []string
	for _, name := range requested {
		if !found[strings.ToLower(name)] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
