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
	ErrCardNotFound = errors.New("card not found")
	// ErrDuplicatePAN is returned when the unique pan constraint fires: the
	// generator's pre-check lost a race. The constraint is the final
	// serialization point for concurrent issuance.
	ErrDuplicatePAN = errors.New("pan already exists")
)

// CardRepository handles card persistence against the PostgreSQL write
// store (source of truth).
type CardRepository struct {
	db *sql.DB
}

func NewCardRepository(db *sql.DB) *CardRepository {
	return &CardRepository{db: db}
}

// PANExists reports whether a candidate PAN is already stored, whatever the
// card's status. Deleted cards keep their PAN reserved.
func (r *CardRepository) PANExists(pan string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM accounts.cards WHERE pan = $1)`, pan,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pan: %w", err)
	}
	return exists, nil
}

// Create inserts the card inside a committed transaction and returns the
// store-assigned creation timestamp. A foreign-key rejection means the
// owning account disappeared between validation and insert.
func (r *CardRepository) Create(card *models.Card) (time.Time, error) {
	var createdAt time.Time
	err := database.Transact(r.db, func(tx *sql.Tx) error {
		return tx.QueryRow(`
			INSERT INTO accounts.cards (id, account_id, pan, holder, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
			card.ID, card.AccountID, card.PAN, card.Holder, card.Status,
		).Scan(&createdAt)
	})
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return time.Time{}, ErrDuplicatePAN
			case "23503":
				return time.Time{}, ErrNotFound
			}
		}
		return time.Time{}, fmt.Errorf("failed to create card: %w", err)
	}
	return createdAt, nil
}

// GetIssuedByID resolves a card that is still ISSUED. Deleted cards are
// reported as not found, so a second delete cannot silently succeed.
func (r *CardRepository) GetIssuedByID(id string) (*models.Card, error) {
	var card models.Card
	err := r.db.QueryRow(`
		SELECT id, account_id, pan, holder, status, created_at
		FROM accounts.cards
		WHERE id = $1 AND status = 'ISSUED'`, id,
	).Scan(&card.ID, &card.AccountID, &card.PAN, &card.Holder, &card.Status, &card.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

func (r *CardRepository) ListByAccount(accountID string) ([]models.Card, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, pan, holder, status, created_at
		FROM accounts.cards
		WHERE account_id = $1
		ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var card models.Card
		if err := rows.Scan(
			&card.ID, &card.AccountID, &card.PAN, &card.Holder, &card.Status, &card.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// MarkDeleted transitions an ISSUED card to DELETED inside a committed
// transaction. The row is kept; only the status changes.
func (r *CardRepository) MarkDeleted(id string) error {
	return database.Transact(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec(
			`UPDATE accounts.cards SET status = 'DELETED' WHERE id = $1 AND status = 'ISSUED'`, id)
		if err != nil {
			return fmt.Errorf("failed to delete card: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if rows == 0 {
			return ErrCardNotFound
		}
		return nil
	})
}
