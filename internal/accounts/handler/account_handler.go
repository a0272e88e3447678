package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridianbank/core/internal/accounts/repository"
	"github.com/meridianbank/core/internal/accounts/service"
	"github.com/meridianbank/core/internal/shared/middleware"
	"github.com/meridianbank/core/internal/shared/models"
)

// AccountManager defines the account operations used by AccountHandler.
type AccountManager interface {
	OpenAccount(ctx context.Context, ownerID, currency string) (*models.Account, error)
	GetBalance(ctx context.Context, ownerID, accountID string) (*models.BalanceView, error)
	ListAccounts(ownerID string) ([]models.Account, error)
}

// CardManager defines the card operations used by AccountHandler.
type CardManager interface {
	IssueCard(ctx context.Context, ownerID, accountID, holder string) (*models.Card, error)
	ListCards(ownerID, accountID string) ([]models.Card, error)
	DeleteCard(ctx context.Context, ownerID, cardID string) error
}

type AccountHandler struct {
	accounts AccountManager
	cards    CardManager
}

func NewAccountHandler(accounts AccountManager, cards CardManager) *AccountHandler {
	return &AccountHandler{accounts: accounts, cards: cards}
}

type OpenAccountRequest struct {
	Currency string `json:"currency" validate:"required"`
}

type IssueCardRequest struct {
	Holder string `json:"holder" validate:"required"`
}

func (h *AccountHandler) OpenAccount(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)

	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.accounts.OpenAccount(c.Request.Context(), ownerID, req.Currency)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCurrency) {
			middleware.RespondWithError(c, http.StatusBadRequest, "Currency must be a 3-letter code")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to open account")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": account.ID})
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)

	accounts, err := h.accounts.ListAccounts(ownerID)
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list accounts")
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}

	c.JSON(http.StatusOK, accounts)
}

func (h *AccountHandler) GetBalance(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)
	accountID := c.Param("accountId")

	view, err := h.accounts.GetBalance(c.Request.Context(), ownerID, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to get balance")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) ListCards(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)
	accountID := c.Param("accountId")

	cards, err := h.cards.ListCards(ownerID, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list cards")
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}

	c.JSON(http.StatusOK, cards)
}

func (h *AccountHandler) IssueCard(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)
	accountID := c.Param("accountId")

	var req IssueCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	card, err := h.cards.IssueCard(c.Request.Context(), ownerID, accountID, req.Holder)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			middleware.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		case errors.Is(err, repository.ErrNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
		case errors.Is(err, service.ErrAccountNotActive):
			middleware.RespondWithError(c, http.StatusConflict, "Account is not active")
		case errors.Is(err, repository.ErrDuplicatePAN):
			middleware.RespondWithError(c, http.StatusConflict, "Card number conflict, retry the request")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to issue card")
		}
		return
	}

	c.JSON(http.StatusCreated, card)
}

func (h *AccountHandler) DeleteCard(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)
	cardID := c.Param("cardId")

	if err := h.cards.DeleteCard(c.Request.Context(), ownerID, cardID); err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "Card not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to delete card")
		return
	}

	c.Status(http.StatusOK)
}
