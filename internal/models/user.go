package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventreg/internal/auth"
)

type User struct {
	ID          int
	Username    string
	Password    string
	TOTPSecret  string
	TOTPEnabled bool
	CreatedAt   time.Time
}

const userColumns = "id, username, password, totp_secret, totp_enabled, created_at"

func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(&user.ID, &user.Username, &user.Password, &user.TOTPSecret, &user.TOTPEnabled, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return user, nil
}

func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*User, error) {
	return scanUser(db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username))
}

func GetUserByID(ctx context.Context, db *sql.DB, id int) (*User, error) {
	return scanUser(db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

func CreateUser(ctx context.Context, db *sql.DB, username, hashedPassword string) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO users (username, password) VALUES (?, ?)",
		username, hashedPassword,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// EnsureAdminExists creates the admin user if it doesn't exist, or updates
// the stored hash when the configured password no longer matches it, so a
// changed ADMIN_PASS takes effect on restart.
func EnsureAdminExists(ctx context.Context, db *sql.DB, username, plainPassword string) error {
	var currentHash string
	err := db.QueryRowContext(ctx, "SELECT password FROM users WHERE username = ?", username).Scan(&currentHash)

	if errors.Is(err, sql.ErrNoRows) {
		hash, err := auth.HashPassword(plainPassword)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		return CreateUser(ctx, db, username, hash)
	}
	if err != nil {
		return fmt.Errorf("failed to check admin existence: %w", err)
	}

	if auth.CheckPassword(currentHash, plainPassword) {
		return nil
	}

	hash, err := auth.HashPassword(plainPassword)
	if err != nil {
		return fmt.Errorf("failed to hash updated admin password: %w", err)
	}
	if _, err := db.ExecContext(ctx, "UPDATE users SET password = ? WHERE username = ?", hash, username); err != nil {
		return fmt.Errorf("failed to update admin password: %w", err)
	}
	return nil
}

// SetTOTPSecret stores a candidate secret. It only guards logins once
// EnableTOTP confirms the user can produce codes for it.
func SetTOTPSecret(ctx context.Context, db *sql.DB, userID int, secret string) error {
	_, err := db.ExecContext(ctx, "UPDATE users SET totp_secret = ?, totp_enabled = 0 WHERE id = ?", secret, userID)
	if err != nil {
		return fmt.Errorf("failed to set TOTP secret: %w", err)
	}
	return nil
}

func EnableTOTP(ctx context.Context, db *sql.DB, userID int) error {
	res, err := db.ExecContext(ctx, "UPDATE users SET totp_enabled = 1 WHERE id = ? AND totp_secret != ''", userID)
	if err != nil {
		return fmt.Errorf("failed to enable TOTP: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no TOTP secret to enable for user %d", userID)
	}
	return nil
}

func DisableTOTP(ctx context.Context, db *sql.DB, userID int) error {
	_, err := db.ExecContext(ctx, "UPDATE users SET totp_secret = '', totp_enabled = 0 WHERE id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to disable TOTP: %w", err)
	}
	return nil
}
