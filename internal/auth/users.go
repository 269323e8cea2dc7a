package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"focusflow/internal/analytics"
)

const MinPasswordLen = 6

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLen)
)

func normalizeEmail(s string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// CreateUser registers an account and returns its id.
func CreateUser(ctx context.Context, dbx *sql.DB, email, password string) (int64, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return 0, err
	}
	if len(password) < MinPasswordLen {
		return 0, ErrWeakPassword
	}

	var exists int
	if err := dbx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = $1`, email).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return 0, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	var id int64
	err = dbx.QueryRowContext(ctx, `
		INSERT INTO users (email, password, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, email, string(hash), time.Now().UnixMilli()).Scan(&id)
	if err != nil {
		// lost a race with another signup for the same address
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// Authenticate checks a password and returns the user id.
func Authenticate(ctx context.Context, dbx *sql.DB, email, password string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var id int64
	var hash string
	err := dbx.QueryRowContext(ctx, `SELECT id, password FROM users WHERE email = $1`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return 0, ErrInvalidCredentials
	}
	return id, nil
}

// Email returns the address of a user; sql.ErrNoRows if none.
func Email(ctx context.Context, dbx *sql.DB, userID int64) (string, error) {
	var email string
	err := dbx.QueryRowContext(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	return email, err
}

// UserExists reports whether the account is still present.
func UserExists(ctx context.Context, dbx *sql.DB, userID int64) (bool, error) {
	var one int
	err := dbx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = $1`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup user %d: %w", userID, err)
	}
	return true, nil
}

// DeleteUser removes the account and everything stored for it.
func DeleteUser(ctx context.Context, dbx *sql.DB, userID int64) error {
	tx, err := dbx.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM remote_tasks WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete remote_tasks: %w", err)
	}
	if err := analytics.DeleteUser(ctx, tx, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return tx.Commit()
}
