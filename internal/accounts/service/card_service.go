package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridianbank/core/internal/accounts/repository"
	"github.com/meridianbank/core/internal/shared/events"
	"github.com/meridianbank/core/internal/shared/models"
	"github.com/meridianbank/core/internal/shared/utils"
)

// maxIssueAttempts bounds how many generate+persist cycles are retried when
// the store rejects a PAN on its unique constraint.
const maxIssueAttempts = 3

// CardStore defines the card persistence operations used by CardService.
type CardStore interface {
	Create(card *models.Card) (time.Time, error)
	PANExists(pan string) (bool, error)
	GetIssuedByID(id string) (*models.Card, error)
	ListByAccount(accountID string) ([]models.Card, error)
	MarkDeleted(id string) error
}

// CardService implements the issue-card, list-cards and delete-card
// workflows.
type CardService struct {
	accounts     AccountStore
	cards        CardStore
	publisher    EventPublisher
	randomDigits func(n int) string
}

func NewCardService(accounts AccountStore, cards CardStore, publisher EventPublisher) *CardService {
	return &CardService{
		accounts:     accounts,
		cards:        cards,
		publisher:    publisher,
		randomDigits: utils.RandomDigits,
	}
}

// IssueCard runs the full issuance workflow: ownership and status checks,
// PAN generation, persist, then card.issued after the insert has committed.
// When the store rejects the PAN on its unique constraint the whole
// generate+persist cycle restarts; two concurrent issuances can pass the
// pre-check with the same candidate and only the constraint decides.
func (s *CardService) IssueCard(ctx context.Context, ownerID, accountID, holder string) (*models.Card, error) {
	holder = strings.TrimSpace(holder)
	if holder == "" {
		return nil, ErrInvalidInput
	}

	account, err := ownedAccount(s.accounts, accountID, ownerID)
	if err != nil {
		return nil, err
	}
	if account.Status != models.AccountActive {
		return nil, ErrAccountNotActive
	}

	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		pan, err := GeneratePAN(s.randomDigits, s.cards.PANExists)
		if err != nil {
			return nil, err
		}

		card := &models.Card{
			ID:        uuid.NewString(),
			AccountID: accountID,
			PAN:       pan,
			Holder:    holder,
			Status:    models.CardIssued,
		}
		createdAt, err := s.cards.Create(card)
		if errors.Is(err, repository.ErrDuplicatePAN) {
			continue
		}
		if err != nil {
			return nil, err
		}
		card.CreatedAt = createdAt

		if err := s.publisher.Publish(ctx, events.CardIssued, events.CardEvent{
			Event:     events.CardIssued,
			AccountID: accountID,
			OwnerID:   ownerID,
			CardID:    card.ID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			log.Printf("Failed to publish card.issued event: %v", err)
		}
		return card, nil
	}
	return nil, repository.ErrDuplicatePAN
}

// ListCards lists every card of an account the caller owns, whatever the
// card status.
func (s *CardService) ListCards(ownerID, accountID string) ([]models.Card, error) {
	if _, err := ownedAccount(s.accounts, accountID, ownerID); err != nil {
		return nil, err
	}
	return s.cards.ListByAccount(accountID)
}

// DeleteCard resolves a still-issued card, verifies the caller owns its
// account and transitions it to DELETED, publishing card.deleted after the
// update has committed. Not-found, not-owned and already-deleted all
// surface as the same not-found.
func (s *CardService) DeleteCard(ctx context.Context, ownerID, cardID string) error {
	card, err := s.cards.GetIssuedByID(cardID)
	if err != nil {
		return err
	}
	if _, err := ownedAccount(s.accounts, card.AccountID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrCardNotFound
		}
		return err
	}

	if err := s.cards.MarkDeleted(cardID); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, events.CardDeleted, events.CardEvent{
		Event:     events.CardDeleted,
		OwnerID:   ownerID,
		CardID:    cardID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("Failed to publish card.deleted event: %v", err)
	}
	return nil
}
