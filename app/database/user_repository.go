package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// UserRepo handles database operations for users and their category lists
type UserRepo struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, name, email, password_hash, user_type, status, created_at, updated_at`

// CreateUser inserts a user together with its category memberships
func (r *UserRepo) CreateUser(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Status == "" {
		user.Status = UserStatusActive
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt

	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, user.ID, user.Name, user.Email, user.PasswordHash, user.UserType, user.Status,
			user.CreatedAt, user.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: email %s", ErrDuplicate, user.Email)
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		names, err := replaceUserCategories(ctx, tx, user.ID, user.Categories)
		if err != nil {
			return err
		}
		user.Categories = names
		return nil
	})
	return err
}

// GetUser retrieves a user by id, returning nil when it does not exist
func (r *UserRepo) GetUser(ctx context.Context, id string) (*User, error) {
	return r.getUserWhere(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email (case-insensitive)
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.getUserWhere(ctx, "email = ?", strings.TrimSpace(email))
}

func (r *UserRepo) getUserWhere(ctx context.Context, where string, arg any) (*User, error) {
	users, err := r.queryUsers(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// GetUsersByIDs returns the users that exist among ids; unknown ids are skipped
func (r *UserRepo) GetUsersByIDs(ctx context.Context, ids []string) ([]User, error) {
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return []User{}, nil
	}

	users, err := r.queryUsers(ctx, r.db,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders(len(ids))+`) ORDER BY created_at, id`,
		toArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	return users, nil
}

// ListUsers returns all users, optionally restricted to one user type
func (r *UserRepo) ListUsers(ctx context.Context, userType string) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if userType != "" {
		query += ` WHERE user_type = ?`
		args = append(args, userType)
	}
	query += ` ORDER BY created_at, id`

	users, err := r.queryUsers(ctx, r.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListSubscribers returns active users of type "user" subscribed to any of the categories
func (r *UserRepo) ListSubscribers(ctx context.Context, categories []string) ([]User, error) {
	categories = uniqueFold(categories)
	if len(categories) == 0 {
		return []User{}, nil
	}

	args := []any{UserTypeUser, UserStatusActive}
	args = append(args, toArgs(categories)...)

	users, err := r.queryUsers(ctx, r.db, `
		SELECT `+userColumns+` FROM users
		WHERE user_type = ? AND status = ?
		  AND id IN (
			SELECT uc.user_id FROM user_categories uc
			JOIN categories c ON c.id = uc.category_id
			WHERE c.name IN (`+placeholders(len(categories))+`)
		  )
		ORDER BY name, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of update
func (r *UserRepo) UpdateUser(ctx context.Context, id string, update UserUpdate) (*User, error) {
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		sets := []string{"updated_at = ?"}
		args := []any{now()}

		if update.Name != nil {
			sets = append(sets, "name = ?")
			args = append(args, *update.Name)
		}
		if update.Status != nil {
			sets = append(sets, "status = ?")
			args = append(args, *update.Status)
		}
		if update.UserType != nil {
			sets = append(sets, "user_type = ?")
			args = append(args, *update.UserType)
		}
		args = append(args, id)

		res, err := tx.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		if update.Categories != nil {
			if _, err := replaceUserCategories(ctx, tx, id, *update.Categories); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	user, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// DeleteUser removes a user; memberships, notifications and recipient entries cascade
func (r *UserRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) queryUsers(ctx context.Context, q querier, query string, args ...any) ([]User, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.UserType, &u.Status,
			&u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		u.Categories = []string{}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	rows.Close()

	if err := loadUserCategories(ctx, q, users); err != nil {
		return nil, err
	}
	return users, nil
}

func loadUserCategories(ctx context.Context, q querier, users []User) error {
	if len(users) == 0 {
		return nil
	}

	index := make(map[string]int, len(users))
	ids := make([]string, 0, len(users))
	for i, u := range users {
		index[u.ID] = i
		ids = append(ids, u.ID)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT uc.user_id, c.name
		FROM user_categories uc
		JOIN categories c ON c.id = uc.category_id
		WHERE uc.user_id IN (`+placeholders(len(ids))+`)
	`, toArgs(ids)...)
	if err != nil {
		return fmt.Errorf("failed to load user categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, name string
		if err := rows.Scan(&userID, &name); err != nil {
			return fmt.Errorf("failed to scan user category row: %w", err)
		}
		i := index[userID]
		users[i].Categories = append(users[i].Categories, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating user category rows: %w", err)
	}

	for i := range users {
		sort.Strings(users[i].Categories)
	}
	return nil
}

func replaceUserCategories(ctx context.Context, tx *sql.Tx, userID string, names []string) ([]string, error) {
	resolved, err := resolveCategoryIDs(ctx, tx, names)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_categories WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("failed to clear user categories: %w", err)
	}

	canonical := make([]string, 0, len(resolved))
	for categoryID, name := range resolved {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_categories (user_id, category_id) VALUES (?, ?)`, userID, categoryID); err != nil {
			return nil, fmt.Errorf("failed to insert user category: %w", err)
		}
		canonical = append(canonical, name)
	}
	sort.Strings(canonical)
	return canonical, nil
}
