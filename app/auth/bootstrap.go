package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Arihant027/VS-News/app/database"
)

// EnsureSuperadmin creates a superadmin with the given credentials unless a
// user with that email already exists. It reports whether a user was created.
func EnsureSuperadmin(ctx context.Context, users database.UserRepository, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}

	existing, err := users.GetUserByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to look up bootstrap user: %w", err)
	}
	if existing != nil {
		if !existing.IsSuperadmin() {
			slog.Warn("Bootstrap email belongs to a non-superadmin user", "email", email, "user_type", existing.UserType)
		}
		return false, nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}

	user := &database.User{
		Name:         "Superadmin",
		Email:        email,
		PasswordHash: hash,
		UserType:     database.UserTypeSuperadmin,
		Status:       database.UserStatusActive,
	}
	if err := users.CreateUser(ctx, user); err != nil {
		return false, fmt.Errorf("failed to create bootstrap superadmin: %w", err)
	}

	slog.Info("Bootstrap superadmin created", "user_id", user.ID, "email", email)
	return true, nil
}
