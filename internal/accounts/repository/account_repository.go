package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianbank/core/internal/shared/database"
	"github.com/meridianbank/core/internal/shared/models"
)

// ErrNotFound covers both a missing account and an account the caller does
// not own; the two are deliberately indistinguishable.
var ErrNotFound = errors.New("account not found")

// AccountRepository handles account persistence against the PostgreSQL
// write store (source of truth).
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Migrate bootstraps the accounts schema. Status domains and the cards
// foreign key are enforced by constraints, not application code.
func (r *AccountRepository) Migrate() error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS accounts`,
		`CREATE TABLE IF NOT EXISTS accounts.accounts (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			currency CHAR(3) NOT NULL,
			balance DECIMAL(18,2) NOT NULL DEFAULT 0.00,
			status VARCHAR(16) NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE','CLOSED')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS accounts.cards (
			id UUID PRIMARY KEY,
			account_id UUID NOT NULL REFERENCES accounts.accounts (id),
			pan VARCHAR(32) NOT NULL UNIQUE,
			holder VARCHAR(255) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'ISSUED' CHECK (status IN ('ISSUED','DELETED')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate accounts schema: %w", err)
		}
	}
	return nil
}

// Create inserts the account inside a committed transaction and returns the
// store-assigned creation timestamp.
func (r *AccountRepository) Create(account *models.Account) (time.Time, error) {
	var createdAt time.Time
	err := database.Transact(r.db, func(tx *sql.Tx) error {
		return tx.QueryRow(`
			INSERT INTO accounts.accounts (id, owner_id, currency, balance, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
			account.ID, account.OwnerID, account.Currency, account.Balance.StringFixed(2), account.Status,
		).Scan(&createdAt)
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to create account: %w", err)
	}
	return createdAt, nil
}

// GetByID fetches the full write model including OwnerID for ownership
// checks.
func (r *AccountRepository) GetByID(id string) (*models.Account, error) {
	var account models.Account
	var balance decimal.Decimal
	err := r.db.QueryRow(`
		SELECT id, owner_id, currency, balance, status, created_at
		FROM accounts.accounts
		WHERE id = $1`, id,
	).Scan(&account.ID, &account.OwnerID, &account.Currency, &balance, &account.Status, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	account.Balance = balance
	return &account, nil
}

func (r *AccountRepository) ListByOwner(ownerID string) ([]models.Account, error) {
	rows, err := r.db.Query(`
		SELECT id, owner_id, currency, balance, status, created_at
		FROM accounts.accounts
		WHERE owner_id = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(
			&account.ID, &account.OwnerID, &account.Currency,
			&account.Balance, &account.Status, &account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
