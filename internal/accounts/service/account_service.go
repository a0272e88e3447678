package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridianbank/core/internal/accounts/repository"
	"github.com/meridianbank/core/internal/shared/events"
	"github.com/meridianbank/core/internal/shared/models"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidCurrency  = errors.New("currency must be a 3-letter code")
	ErrAccountNotActive = errors.New("account is not active")
)

// AccountStore defines the account persistence operations used by the
// service layer.
type AccountStore interface {
	Create(account *models.Account) (time.Time, error)
	GetByID(id string) (*models.Account, error)
	ListByOwner(ownerID string) ([]models.Account, error)
}

// BalanceViews is the read-model cache for balance lookups.
type BalanceViews interface {
	GetBalanceView(ctx context.Context, accountID string) (*models.BalanceView, error)
	CacheBalanceView(ctx context.Context, view *models.BalanceView)
}

// EventPublisher is the write-side event sink shared by the account and
// card services.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// AccountService implements the open-account and balance workflows.
type AccountService struct {
	accounts  AccountStore
	views     BalanceViews
	publisher EventPublisher
}

func NewAccountService(accounts AccountStore, views BalanceViews, publisher EventPublisher) *AccountService {
	return &AccountService{accounts: accounts, views: views, publisher: publisher}
}

// OpenAccount validates the currency, creates an ACTIVE zero-balance
// account owned by the caller, and publishes account.opened only after the
// insert has committed. A publish failure is logged and never undoes the
// account.
func (s *AccountService) OpenAccount(ctx context.Context, ownerID, currency string) (*models.Account, error) {
	code, ok := NormalizeCurrency(currency)
	if !ok {
		return nil, ErrInvalidCurrency
	}

	account := &models.Account{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Currency: code,
		Balance:  decimal.Zero,
		Status:   models.AccountActive,
	}
	createdAt, err := s.accounts.Create(account)
	if err != nil {
		return nil, err
	}
	account.CreatedAt = createdAt

	s.views.CacheBalanceView(ctx, &models.BalanceView{
		AccountID: account.ID,
		OwnerID:   ownerID,
		Currency:  code,
		Balance:   account.Balance.StringFixed(2),
	})

	if err := s.publisher.Publish(ctx, events.AccountOpened, events.AccountOpenedEvent{
		Event:     events.AccountOpened,
		AccountID: account.ID,
		OwnerID:   ownerID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("Failed to publish account.opened event: %v", err)
	}
	return account, nil
}

// GetBalance serves the balance projection, enforcing ownership: a foreign
// account is indistinguishable from a missing one.
func (s *AccountService) GetBalance(ctx context.Context, ownerID, accountID string) (*models.BalanceView, error) {
	view, err := s.views.GetBalanceView(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if view.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return view, nil
}

func (s *AccountService) ListAccounts(ownerID string) ([]models.Account, error) {
	return s.accounts.ListByOwner(ownerID)
}

// HandleUserRegistered reacts to identity registrations from the users
// service. The reaction is intentionally just a log line.
func (s *AccountService) HandleUserRegistered(ctx context.Context, routingKey string, body []byte) error {
	var event events.UserRegisteredEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to unmarshal %s event: %w", routingKey, err)
	}
	log.Printf("Received %s: user=%s email=%s", routingKey, event.UserID, event.Email)
	return nil
}

// ownedAccount is the single ownership check used by every account and
// card operation: load the account by id and require the caller to own it,
// reporting not-found otherwise so existence never leaks to non-owners.
func ownedAccount(accounts AccountStore, accountID, ownerID string) (*models.Account, error) {
	account, err := accounts.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return account, nil
}
