package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, _, err = RunMigrations(db)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *DB, email, userType string, categories ...string) *User {
	t.Helper()

	user := &User{
		Name:         email,
		Email:        email,
		PasswordHash: "hash",
		UserType:     userType,
		Categories:   categories,
	}
	require.NoError(t, NewUserRepository(db).CreateUser(context.Background(), user))
	return user
}

func createTestCategory(t *testing.T, db *DB, name string) *Category {
	t.Helper()

	category, err := NewCategoryRepository(db).CreateCategory(context.Background(), name)
	require.NoError(t, err)
	return category
}
