package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// CategoryRepo handles database operations for categories and their admins
type CategoryRepo struct {
	db *DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// CreateCategory inserts a category; names are unique regardless of case
func (r *CategoryRepo) CreateCategory(ctx context.Context, name string) (*Category, error) {
	category := &Category{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		AdminIDs:  []string{},
		CreatedAt: now(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)`,
		category.ID, category.Name, category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category %s", ErrDuplicate, category.Name)
		}
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	return category, nil
}

// GetCategory retrieves a category by id, returning nil when it does not exist
func (r *CategoryRepo) GetCategory(ctx context.Context, id string) (*Category, error) {
	categories, err := queryCategories(ctx, r.db, `SELECT id, name, created_at FROM categories WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if len(categories) == 0 {
		return nil, nil
	}
	return &categories[0], nil
}

// ListCategories returns every category ordered by name
func (r *CategoryRepo) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := queryCategories(ctx, r.db, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes the category and pulls it from every user's list.
// Users themselves are never deleted.
func (r *CategoryRepo) DeleteCategory(ctx context.Context, id string) error {
	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_categories WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("failed to detach category from users: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SetCategoryAdmins replaces the admins assigned to a category. Every id must
// belong to a user of type admin.
func (r *CategoryRepo) SetCategoryAdmins(ctx context.Context, id string, adminIDs []string) (*Category, error) {
	adminIDs = uniqueStrings(adminIDs)

	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check category: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}

		if len(adminIDs) > 0 {
			args := append([]any{UserTypeAdmin}, toArgs(adminIDs)...)
			var admins int
			err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM users WHERE user_type = ? AND id IN (`+placeholders(len(adminIDs))+`)`,
				args...).Scan(&admins)
			if err != nil {
				return fmt.Errorf("failed to check admins: %w", err)
			}
			if admins != len(adminIDs) {
				return ErrNotAdmin
			}
		}

		_, err = tx.ExecContext(ctx, `
			DELETE FROM user_categories
			WHERE category_id = ?
			  AND user_id IN (SELECT id FROM users WHERE user_type = ?)
		`, id, UserTypeAdmin)
		if err != nil {
			return fmt.Errorf("failed to clear category admins: %w", err)
		}

		for _, adminID := range adminIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_categories (user_id, category_id) VALUES (?, ?)`, adminID, id); err != nil {
				return fmt.Errorf("failed to assign category admin: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	category, err := r.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

func queryCategories(ctx context.Context, q querier, query string, args ...any) ([]Category, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []Category{}
	index := map[string]int{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		c.AdminIDs = []string{}
		index[c.ID] = len(categories)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	rows.Close()

	if len(categories) == 0 {
		return categories, nil
	}

	ids := make([]string, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}

	adminRows, err := q.QueryContext(ctx, `
		SELECT uc.category_id, uc.user_id
		FROM user_categories uc
		JOIN users u ON u.id = uc.user_id
		WHERE u.user_type = ? AND uc.category_id IN (`+placeholders(len(ids))+`)
	`, append([]any{UserTypeAdmin}, toArgs(ids)...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load category admins: %w", err)
	}
	defer adminRows.Close()

	for adminRows.Next() {
		var categoryID, userID string
		if err := adminRows.Scan(&categoryID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan category admin row: %w", err)
		}
		i := index[categoryID]
		categories[i].AdminIDs = append(categories[i].AdminIDs, userID)
	}
	if err := adminRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category admin rows: %w", err)
	}

	for i := range categories {
		sort.Strings(categories[i].AdminIDs)
	}
	return categories, nil
}
