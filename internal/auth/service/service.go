// Package service provides authentication business logic.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"eventcraft_backend/internal/auth/repository"
	"eventcraft_backend/internal/auth/transport"
	"eventcraft_backend/internal/events"
	"eventcraft_backend/platform/apperr"
	"eventcraft_backend/platform/config"
	"eventcraft_backend/platform/logger"
)

const invalidCredentialsMessage = "Invalid email or password"

// ProviderProfileReader resolves the provider profile owned by a user.
// Implemented by the providers module through an adapter.
type ProviderProfileReader interface {
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (interface{}, error)
}

// Service provides signup, signin, and profile operations.
type Service struct {
	repo     repository.Repository
	cfg      config.AuthServiceConfig
	bus      events.Bus
	log      *logger.Logger
	profiles ProviderProfileReader
}

// New creates a new auth service.
func New(repo repository.Repository, cfg config.AuthServiceConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, bus: bus, log: log}
}

// SetProviderProfileReader wires the provider profile lookup used by Profile.
func (s *Service) SetProviderProfileReader(reader ProviderProfileReader) {
	s.profiles = reader
}

// Signup registers a new account and returns an access token.
// Provider accounts record their type only; the provider profile itself is
// created through explicit onboarding on the providers surface.
func (s *Service) Signup(ctx context.Context, req transport.SignupRequest) (transport.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return transport.AuthResponse{}, apperr.Wrap(apperr.KindInternal, "Failed to create account", err)
	}

	user, err := s.repo.Create(ctx, repository.CreateParams{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Type:         req.Type,
	})
	if err != nil {
		s.log.AuthEvent("signup", email, false, err.Error())
		return transport.AuthResponse{}, err
	}

	token, expiresIn, err := s.issueAccessToken(user)
	if err != nil {
		return transport.AuthResponse{}, err
	}

	s.log.AuthEvent("signup", email, true, "")
	s.bus.Publish(ctx, events.UserSignedUp{
		BaseEvent:   events.NewBaseEvent(),
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		AccountType: user.Type,
	})

	return transport.AuthResponse{
		User:        toUserResponse(user),
		AccessToken: token,
		ExpiresIn:   expiresIn,
	}, nil
}

// Signin verifies credentials and returns an access token.
func (s *Service) Signin(ctx context.Context, req transport.SigninRequest) (transport.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		// Same response for unknown email and wrong password.
		s.log.AuthEvent("signin", email, false, "unknown email")
		return transport.AuthResponse{}, apperr.Unauthorized(invalidCredentialsMessage)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.AuthEvent("signin", email, false, "password mismatch")
		return transport.AuthResponse{}, apperr.Unauthorized(invalidCredentialsMessage)
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.DatabaseError("update last login", err)
	}

	token, expiresIn, err := s.issueAccessToken(user)
	if err != nil {
		return transport.AuthResponse{}, err
	}

	s.log.AuthEvent("signin", email, true, "")
	return transport.AuthResponse{
		User:        toUserResponse(user),
		AccessToken: token,
		ExpiresIn:   expiresIn,
	}, nil
}

// Profile returns the caller's account, embedding the provider profile for
// provider accounts that completed onboarding.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (transport.ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	resp := transport.ProfileResponse{User: toUserResponse(user)}

	if user.Type == "provider" && s.profiles != nil {
		profile, err := s.profiles.GetProfileByUserID(ctx, user.ID)
		if err == nil {
			resp.Provider = profile
		} else if !apperr.Is(err, apperr.KindNotFound) {
			return transport.ProfileResponse{}, err
		}
	}

	return resp, nil
}

func (s *Service) issueAccessToken(user repository.User) (string, int64, error) {
	ttl := s.cfg.GetAccessTokenTTL()
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":        user.ID.String(),
		"email":      user.Email,
		"type":       user.Type,
		"token_type": "access",
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return "", 0, apperr.Wrap(apperr.KindInternal, "Failed to issue token", err)
	}

	return signed, int64(ttl.Seconds()), nil
}

func toUserResponse(u repository.User) transport.UserResponse {
	resp := transport.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Type:      u.Type,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
	if u.LastLogin != nil {
		formatted := u.LastLogin.Format(time.RFC3339)
		resp.LastLogin = &formatted
	}
	return resp
}
