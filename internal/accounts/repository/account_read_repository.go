package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	sharedredis "github.com/meridianbank/core/internal/shared/redis"
	"github.com/meridianbank/core/internal/shared/models"
)

const (
	balanceViewKeyPrefix = "account:balance:"
	balanceViewTTL       = 5 * time.Minute
)

// balanceCacheEntry is the Redis representation of a balance view. Unlike
// models.BalanceView it serialises OwnerID, which the service needs for
// ownership checks on cache hits.
type balanceCacheEntry struct {
	AccountID string `json:"accountId"`
	OwnerID   string `json:"ownerId"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
}

// AccountReadRepository serves balance lookups. Redis is a short-lived read
// cache in front of PostgreSQL; the store remains the source of truth and
// every cold read warms the cache.
type AccountReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[balanceCacheEntry]
}

func NewAccountReadRepository(db *sql.DB, redisClient *goredis.Client) *AccountReadRepository {
	return &AccountReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[balanceCacheEntry](redisClient, balanceViewTTL),
	}
}

func cacheEntryToView(e *balanceCacheEntry) *models.BalanceView {
	return &models.BalanceView{
		AccountID: e.AccountID,
		OwnerID:   e.OwnerID,
		Currency:  e.Currency,
		Balance:   e.Balance,
	}
}

// GetBalanceView returns the balance projection, trying Redis first and
// falling back to PostgreSQL.
func (r *AccountReadRepository) GetBalanceView(ctx context.Context, accountID string) (*models.BalanceView, error) {
	cacheKey := balanceViewKeyPrefix + accountID

	if entry, ok := r.cache.Get(ctx, cacheKey); ok {
		return cacheEntryToView(entry), nil
	}

	var view models.BalanceView
	var balance decimal.Decimal
	err := r.db.QueryRow(`
		SELECT id, owner_id, currency, balance
		FROM accounts.accounts
		WHERE id = $1`, accountID,
	).Scan(&view.AccountID, &view.OwnerID, &view.Currency, &balance)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account balance: %w", err)
	}
	view.Balance = balance.StringFixed(2)

	r.CacheBalanceView(ctx, &view)
	return &view, nil
}

// CacheBalanceView stores or refreshes the Redis projection. Called after
// every mutation that creates or changes the view.
func (r *AccountReadRepository) CacheBalanceView(ctx context.Context, view *models.BalanceView) {
	entry := &balanceCacheEntry{
		AccountID: view.AccountID,
		OwnerID:   view.OwnerID,
		Currency:  view.Currency,
		Balance:   view.Balance,
	}
	r.cache.Set(ctx, balanceViewKeyPrefix+view.AccountID, entry)
}
