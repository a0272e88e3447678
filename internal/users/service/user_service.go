package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridianbank/core/internal/shared/auth"
	"github.com/meridianbank/core/internal/shared/events"
	"github.com/meridianbank/core/internal/shared/models"
	"github.com/meridianbank/core/internal/shared/utils"
	"github.com/meridianbank/core/internal/users/repository"
)

const tokenTTL = time.Hour

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore defines the persistence operations used by UserService.
type UserStore interface {
	Create(user *models.User) (time.Time, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	UpdateName(id, fullName string) error
}

// EventPublisher is the write-side event sink used by UserService.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// UserService implements the identity workflows: register, login, profile.
type UserService struct {
	store     UserStore
	publisher EventPublisher
	issuer    *auth.Issuer
}

func NewUserService(store UserStore, publisher EventPublisher, issuer *auth.Issuer) *UserService {
	return &UserService{store: store, publisher: publisher, issuer: issuer}
}

// Register normalizes the email, hashes the password and inserts the user
// with role USER. The user.registered event is published only after the
// insert has committed; a publish failure is logged and never undoes the
// registration.
func (s *UserService) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	email = utils.NormalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if email == "" || password == "" || fullName == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.store.GetByEmail(email); err == nil {
		return nil, repository.ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         models.RoleUser,
	}
	createdAt, err := s.store.Create(user)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = createdAt

	if err := s.publisher.Publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("Failed to publish user.registered event: %v", err)
	}
	return user, nil
}

// Login verifies credentials and issues a one-hour token carrying the
// user's id and role. Unknown email and wrong password are deliberately
// indistinguishable.
func (s *UserService) Login(email, password string) (string, error) {
	user, err := s.store.GetByEmail(utils.NormalizeEmail(email))
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(user.ID, user.Role, tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

func (s *UserService) GetByID(id string) (*models.User, error) {
	return s.store.GetByID(id)
}

// UpdateName changes the caller's profile name. No event type exists for
// profile updates, so nothing is published.
func (s *UserService) UpdateName(id, fullName string) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, ErrInvalidInput
	}
	if err := s.store.UpdateName(id, fullName); err != nil {
		return nil, err
	}
	return s.store.GetByID(id)
}
