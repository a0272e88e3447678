package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/meridianbank/core/internal/shared/database"
	"github.com/meridianbank/core/internal/shared/models"
)

var (
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the unique email constraint fires;
	// the constraint, not the pre-check, is the final arbiter.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository handles all user persistence against the PostgreSQL write
// store (source of truth).
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Migrate bootstraps the users schema. Email uniqueness and the role domain
// are enforced by constraints, not application code.
func (r *UserRepository) Migrate() error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS users`,
		`CREATE TABLE IF NOT EXISTS users.users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			full_name VARCHAR(255) NOT NULL,
			role VARCHAR(16) NOT NULL CHECK (role IN ('USER','ADMIN')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate users schema: %w", err)
		}
	}
	return nil
}

// Create inserts the user inside a committed transaction and returns the
// store-assigned creation timestamp.
func (r *UserRepository) Create(user *models.User) (time.Time, error) {
	var createdAt time.Time
	err := database.Transact(r.db, func(tx *sql.Tx) error {
		return tx.QueryRow(`
			INSERT INTO users.users (id, email, password_hash, full_name, role)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
			user.ID, user.Email, user.PasswordHash, user.FullName, user.Role,
		).Scan(&createdAt)
	})
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return time.Time{}, ErrDuplicateEmail
		}
		return time.Time{}, fmt.Errorf("failed to create user: %w", err)
	}
	return createdAt, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getOne(`
		SELECT id, email, password_hash, full_name, role, created_at
		FROM users.users
		WHERE email = $1`, email)
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return r.getOne(`
		SELECT id, email, password_hash, full_name, role, created_at
		FROM users.users
		WHERE id = $1`, id)
}

func (r *UserRepository) getOne(query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Role, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateName changes the profile name only; the creation timestamp is never
// touched.
func (r *UserRepository) UpdateName(id, fullName string) error {
	err := database.Transact(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec(`UPDATE users.users SET full_name = $2 WHERE id = $1`, id, fullName)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
	return err
}
