package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/meridianbank/core/internal/accounts/repository"
	"github.com/meridianbank/core/internal/accounts/service"
	"github.com/meridianbank/core/internal/shared/models"
)

// ---- mock implementations ----

type mockAccountManager struct {
	openFn       func(ownerID, currency string) (*models.Account, error)
	getBalanceFn func(ownerID, accountID string) (*models.BalanceView, error)
	listFn       func(ownerID string) ([]models.Account, error)
}

func (m *mockAccountManager) OpenAccount(ctx context.Context, ownerID, currency string) (*models.Account, error) {
	if m.openFn != nil {
		return m.openFn(ownerID, currency)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountManager) GetBalance(ctx context.Context, ownerID, accountID string) (*models.BalanceView, error) {
	if m.getBalanceFn != nil {
		return m.getBalanceFn(ownerID, accountID)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountManager) ListAccounts(ownerID string) ([]models.Account, error) {
	if m.listFn != nil {
		return m.listFn(ownerID)
	}
	return nil, fmt.Errorf("not configured")
}

type mockCardManager struct {
	issueFn  func(ownerID, accountID, holder string) (*models.Card, error)
	listFn   func(ownerID, accountID string) ([]models.Card, error)
	deleteFn func(ownerID, cardID string) error
}

func (m *mockCardManager) IssueCard(ctx context.Context, ownerID, accountID, holder string) (*models.Card, error) {
	if m.issueFn != nil {
		return m.issueFn(ownerID, accountID, holder)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockCardManager) ListCards(ownerID, accountID string) ([]models.Card, error) {
	if m.listFn != nil {
		return m.listFn(ownerID, accountID)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockCardManager) DeleteCard(ctx context.Context, ownerID, cardID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ownerID, cardID)
	}
	return fmt.Errorf("not configured")
}

// ---- helpers ----

func newAccountTestRouter(accounts AccountManager, cards CardManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAccountHandler(accounts, cards)
	v1 := r.Group("/v1", func(c *gin.Context) {
		c.Set("userId", "owner-1")
		c.Set("role", models.RoleUser)
	})
	v1.POST("/accounts", h.OpenAccount)
	v1.GET("/accounts", h.ListAccounts)
	v1.GET("/accounts/:accountId/balance", h.GetBalance)
	v1.GET("/accounts/:accountId/cards", h.ListCards)
	v1.POST("/accounts/:accountId/cards", h.IssueCard)
	v1.DELETE("/cards/:cardId", h.DeleteCard)
	return r
}

func accountDoRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- tests ----

func TestOpenAccountEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		openFn         func(ownerID, currency string) (*models.Account, error)
		expectedStatus int
	}{
		{
			name: "created - valid currency",
			body: map[string]string{"currency": "USD"},
			openFn: func(ownerID, currency string) (*models.Account, error) {
				return &models.Account{ID: "acc-1", Currency: currency, Status: models.AccountActive}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "bad request - invalid currency",
			body: map[string]string{"currency": "USDT"},
			openFn: func(ownerID, currency string) (*models.Account, error) {
				return nil, service.ErrInvalidCurrency
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing currency",
			body:           map[string]string{},
			openFn:         nil,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountManager{openFn: tt.openFn}, &mockCardManager{})
			w := accountDoRequest(router, http.MethodPost, "/v1/accounts", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListAccountsEndpoint(t *testing.T) {
	router := newAccountTestRouter(&mockAccountManager{
		listFn: func(ownerID string) ([]models.Account, error) { return nil, nil },
	}, &mockCardManager{})

	w := accountDoRequest(router, http.MethodGet, "/v1/accounts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	// No accounts serializes as an empty array, not null.
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty array body, got %s", w.Body.String())
	}
}

func TestGetBalanceEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		getBalanceFn   func(ownerID, accountID string) (*models.BalanceView, error)
		expectedStatus int
	}{
		{
			name: "success - balance view returned",
			getBalanceFn: func(ownerID, accountID string) (*models.BalanceView, error) {
				return &models.BalanceView{AccountID: accountID, Currency: "USD", Balance: "0.00"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found - unknown or foreign account",
			getBalanceFn: func(ownerID, accountID string) (*models.BalanceView, error) {
				return nil, repository.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountManager{getBalanceFn: tt.getBalanceFn}, &mockCardManager{})
			w := accountDoRequest(router, http.MethodGet, "/v1/accounts/acc-1/balance", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestIssueCardEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		issueFn        func(ownerID, accountID, holder string) (*models.Card, error)
		expectedStatus int
	}{
		{
			name: "created - card issued",
			body: map[string]string{"holder": "ALICE SMITH"},
			issueFn: func(ownerID, accountID, holder string) (*models.Card, error) {
				return &models.Card{ID: "card-1", PAN: "4000123412341234", Holder: holder, Status: models.CardIssued}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - missing holder",
			body:           map[string]string{},
			issueFn:        nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not found - unknown or foreign account",
			body: map[string]string{"holder": "ALICE"},
			issueFn: func(ownerID, accountID, holder string) (*models.Card, error) {
				return nil, repository.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "conflict - account not active",
			body: map[string]string{"holder": "ALICE"},
			issueFn: func(ownerID, accountID, holder string) (*models.Card, error) {
				return nil, service.ErrAccountNotActive
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "conflict - persistent card number collision",
			body: map[string]string{"holder": "ALICE"},
			issueFn: func(ownerID, accountID, holder string) (*models.Card, error) {
				return nil, repository.ErrDuplicatePAN
			},
			expectedStatus: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountManager{}, &mockCardManager{issueFn: tt.issueFn})
			w := accountDoRequest(router, http.MethodPost, "/v1/accounts/acc-1/cards", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListCardsEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		listFn         func(ownerID, accountID string) ([]models.Card, error)
		expectedStatus int
	}{
		{
			name: "success - cards returned",
			listFn: func(ownerID, accountID string) ([]models.Card, error) {
				return []models.Card{{ID: "card-1", PAN: "4000123412341234", Status: models.CardIssued}}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "success - no cards yields empty array",
			listFn:         func(ownerID, accountID string) ([]models.Card, error) { return nil, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found - unknown or foreign account",
			listFn:         func(ownerID, accountID string) ([]models.Card, error) { return nil, repository.ErrNotFound },
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountManager{}, &mockCardManager{listFn: tt.listFn})
			w := accountDoRequest(router, http.MethodGet, "/v1/accounts/acc-1/cards", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestDeleteCardEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		deleteFn       func(ownerID, cardID string) error
		expectedStatus int
	}{
		{
			name:           "success - card deleted",
			deleteFn:       func(ownerID, cardID string) error { return nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found - unknown, foreign or already deleted card",
			deleteFn:       func(ownerID, cardID string) error { return repository.ErrCardNotFound },
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountManager{}, &mockCardManager{deleteFn: tt.deleteFn})
			w := accountDoRequest(router, http.MethodDelete, "/v1/cards/card-1", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
