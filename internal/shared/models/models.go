package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	AccountActive = "ACTIVE"
	AccountClosed = "CLOSED"
)

const (
	CardIssued  = "ISSUED"
	CardDeleted = "DELETED"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdTimestamp"`
}

// Account is owned by exactly one user; ownership is never reassigned.
// Balance is fixed-point with 2 decimals, authoritative only in the store.
type Account struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"-"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdTimestamp"`
}

// Card belongs to exactly one account. Deletion is a status transition,
// never a row removal; the PAN stays reserved forever.
type Card struct {
	ID        string    `json:"id"`
	AccountID string    `json:"-"`
	PAN       string    `json:"pan"`
	Holder    string    `json:"holder"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdTimestamp"`
}
