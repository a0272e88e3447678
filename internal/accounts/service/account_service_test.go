package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/meridianbank/core/internal/accounts/repository"
	"github.com/meridianbank/core/internal/shared/events"
	"github.com/meridianbank/core/internal/shared/models"
)

// ---- fakes ----

type fakeAccountStore struct {
	accounts map[string]*models.Account
	byOwner  map[string][]models.Account
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[string]*models.Account)}
}

func (s *fakeAccountStore) Create(account *models.Account) (time.Time, error) {
	copied := *account
	s.accounts[account.ID] = &copied
	return time.Now(), nil
}

func (s *fakeAccountStore) GetByID(id string) (*models.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *fakeAccountStore) ListByOwner(ownerID string) ([]models.Account, error) {
	var out []models.Account
	for _, account := range s.accounts {
		if account.OwnerID == ownerID {
			out = append(out, *account)
		}
	}
	return out, nil
}

type fakeBalanceViews struct {
	views map[string]*models.BalanceView
}

func newFakeBalanceViews() *fakeBalanceViews {
	return &fakeBalanceViews{views: make(map[string]*models.BalanceView)}
}

func (v *fakeBalanceViews) GetBalanceView(ctx context.Context, accountID string) (*models.BalanceView, error) {
	view, ok := v.views[accountID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *view
	return &copied, nil
}

func (v *fakeBalanceViews) CacheBalanceView(ctx context.Context, view *models.BalanceView) {
	copied := *view
	v.views[view.AccountID] = &copied
}

type recordingPublisher struct {
	published []string
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, eventType)
	return nil
}

// ---- tests ----

func TestOpenAccount(t *testing.T) {
	store := newFakeAccountStore()
	views := newFakeBalanceViews()
	publisher := &recordingPublisher{}
	svc := NewAccountService(store, views, publisher)

	account, err := svc.OpenAccount(context.Background(), "owner-1", "  usd ")
	if err != nil {
		t.Fatalf("OpenAccount failed: %v", err)
	}
	if account.Currency != "USD" {
		t.Errorf("expected normalized currency USD, got %q", account.Currency)
	}
	if !account.Balance.IsZero() {
		t.Errorf("expected zero opening balance, got %s", account.Balance)
	}
	if account.Status != models.AccountActive {
		t.Errorf("expected ACTIVE status, got %q", account.Status)
	}
	if _, err := store.GetByID(account.ID); err != nil {
		t.Errorf("account not persisted: %v", err)
	}
	if len(publisher.published) != 1 || publisher.published[0] != events.AccountOpened {
		t.Errorf("expected one %s event, got %v", events.AccountOpened, publisher.published)
	}

	view, err := views.GetBalanceView(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("balance view not warmed: %v", err)
	}
	if view.Balance != "0.00" {
		t.Errorf("expected cached balance 0.00, got %q", view.Balance)
	}
}

func TestOpenAccountInvalidCurrency(t *testing.T) {
	svc := NewAccountService(newFakeAccountStore(), newFakeBalanceViews(), &recordingPublisher{})

	for _, currency := range []string{"", "US", "USDT", "U$D"} {
		if _, err := svc.OpenAccount(context.Background(), "owner-1", currency); !errors.Is(err, ErrInvalidCurrency) {
			t.Errorf("OpenAccount(%q): expected ErrInvalidCurrency, got %v", currency, err)
		}
	}
}

func TestOpenAccountSurvivesPublishFailure(t *testing.T) {
	store := newFakeAccountStore()
	publisher := &recordingPublisher{err: fmt.Errorf("broker unavailable")}
	svc := NewAccountService(store, newFakeBalanceViews(), publisher)

	account, err := svc.OpenAccount(context.Background(), "owner-1", "EUR")
	if err != nil {
		t.Fatalf("expected open to succeed despite publish failure, got %v", err)
	}
	if _, err := store.GetByID(account.ID); err != nil {
		t.Errorf("account not persisted: %v", err)
	}
}

func TestGetBalanceEnforcesOwnership(t *testing.T) {
	views := newFakeBalanceViews()
	views.CacheBalanceView(context.Background(), &models.BalanceView{
		AccountID: "acc-1",
		OwnerID:   "owner-1",
		Currency:  "USD",
		Balance:   "0.00",
	})
	svc := NewAccountService(newFakeAccountStore(), views, &recordingPublisher{})

	view, err := svc.GetBalance(context.Background(), "owner-1", "acc-1")
	if err != nil {
		t.Fatalf("GetBalance failed for owner: %v", err)
	}
	if view.Currency != "USD" || view.Balance != "0.00" {
		t.Errorf("unexpected view: %+v", view)
	}

	if _, err := svc.GetBalance(context.Background(), "owner-2", "acc-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected foreign account to read as not found, got %v", err)
	}
	if _, err := svc.GetBalance(context.Background(), "owner-1", "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected missing account to read as not found, got %v", err)
	}
}

func TestHandleUserRegistered(t *testing.T) {
	svc := NewAccountService(newFakeAccountStore(), newFakeBalanceViews(), &recordingPublisher{})

	body := []byte(`{"userId":"user-1","email":"user@example.com","createdAt":"2026-01-01T00:00:00Z"}`)
	if err := svc.HandleUserRegistered(context.Background(), events.UserRegistered, body); err != nil {
		t.Errorf("expected well-formed event to be accepted, got %v", err)
	}

	if err := svc.HandleUserRegistered(context.Background(), events.UserRegistered, []byte("{")); err == nil {
		t.Error("expected malformed event to be rejected")
	}
}
