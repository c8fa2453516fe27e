package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliniqa/clinicsign-server/internal/logger"
	"github.com/cliniqa/clinicsign-server/internal/model"
)

// Auth registers clinic staff accounts and exchanges credentials for token
// pairs.
type Auth struct {
	userStore    model.UserStore
	tokenService *TokenService
	logger       *logger.Logger
}

func NewAuth(userStore model.UserStore, tokenService *TokenService, logger *logger.Logger) *Auth {
	return &Auth{
		userStore:    userStore,
		tokenService: tokenService,
		logger:       logger,
	}
}

func (a *Auth) Register(ctx context.Context, email, password string) (model.User, error) {
	existing, err := a.userStore.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if existing.ID != uuid.Nil {
		a.logger.Info("registration rejected, email already taken", "email", email)
		return model.User{}, model.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and issues an access/refresh token pair.
// Unknown email and wrong password are indistinguishable to the caller.
func (a *Auth) Login(ctx context.Context, email, password string) (accessToken string, refreshToken string, err error) {
	user, err := a.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", "", model.ErrInvalidCredentials
		}
		return "", "", fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", "", model.ErrInvalidCredentials
	}

	access, refresh, err := a.tokenService.Issue(ctx, user.ID)
	if err != nil {
		return "", "", fmt.Errorf("failed to issue tokens: %w", err)
	}

	return access, refresh, nil
}

// Refresh rotates a refresh token into a new pair.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	return a.tokenService.Refresh(ctx, refreshToken)
}

// Logout revokes the presented refresh token.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	return a.tokenService.RevokeByToken(ctx, refreshToken)
}
