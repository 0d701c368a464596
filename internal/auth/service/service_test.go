package service

import (
	"context"
	"testing"
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

type fakeRepo struct {
	users map[string]repository.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]repository.User)}
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.User, error) {
	if _, exists := f.users[params.Email]; exists {
		return repository.User{}, apperr.Conflict("Email already registered")
	}
	u := repository.User{
		ID:           uuid.New(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Name:         params.Name,
		Type:         params.Type,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return repository.User{}, apperr.NotFound("User not found")
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (repository.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return repository.User{}, apperr.NotFound("User not found")
}

func (f *fakeRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID) error { return nil }

func (f *fakeRepo) SetStripeCustomerID(_ context.Context, _ uuid.UUID, _ string) error { return nil }

func (f *fakeRepo) GetByStripeCustomerID(_ context.Context, _ string) (repository.User, error) {
	return repository.User{}, apperr.NotFound("User not found")
}

func newTestService(repo repository.Repository) *Service {
	log := logger.New("development")
	cfg := &config.Config{JWTAccessSecret: "test-secret", AccessTokenTTL: time.Hour}
	return New(repo, cfg, events.NewInMemoryBus(log), log)
}

func TestSignup_IssuesTokenCarryingAccountType(t *testing.T) {
	svc := newTestService(newFakeRepo())

	resp, err := svc.Signup(context.Background(), transport.SignupRequest{
		Email:    "Planner@Example.com",
		Password: "supersecret",
		Name:     "Planner",
		Type:     "provider",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.User.Email != "planner@example.com" {
		t.Fatalf("expected lowercased email, got %q", resp.User.Email)
	}

	parsed, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("expected valid token, got %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["type"] != "provider" {
		t.Fatalf("expected provider type claim, got %v", claims["type"])
	}
	if claims["token_type"] != "access" {
		t.Fatalf("expected access token_type claim, got %v", claims["token_type"])
	}
}

func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	svc := newTestService(newFakeRepo())

	req := transport.SignupRequest{Email: "a@b.com", Password: "supersecret", Name: "A", Type: "user"}
	if _, err := svc.Signup(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Signup(context.Background(), req)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSignin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	repo := newFakeRepo()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.MinCost)
	repo.users["a@b.com"] = repository.User{
		ID:           uuid.New(),
		Email:        "a@b.com",
		PasswordHash: string(hash),
		Type:         "user",
		CreatedAt:    time.Now(),
	}
	svc := newTestService(repo)

	_, errWrongPass := svc.Signin(context.Background(), transport.SigninRequest{Email: "a@b.com", Password: "nope"})
	_, errUnknown := svc.Signin(context.Background(), transport.SigninRequest{Email: "x@y.com", Password: "nope"})

	if !apperr.Is(errWrongPass, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for wrong password, got %v", errWrongPass)
	}
	if !apperr.Is(errUnknown, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", errUnknown)
	}
	if errWrongPass.Error() != errUnknown.Error() {
		t.Fatalf("expected identical messages, got %q and %q", errWrongPass.Error(), errUnknown.Error())
	}
}

func TestSignin_ValidCredentialsReturnToken(t *testing.T) {
	repo := newFakeRepo()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.MinCost)
	repo.users["a@b.com"] = repository.User{
		ID:           uuid.New(),
		Email:        "a@b.com",
		PasswordHash: string(hash),
		Type:         "user",
		CreatedAt:    time.Now(),
	}
	svc := newTestService(repo)

	resp, err := svc.Signin(context.Background(), transport.SigninRequest{Email: "a@b.com", Password: "correcthorse"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if resp.ExpiresIn != 3600 {
		t.Fatalf("expected 3600s expiry, got %d", resp.ExpiresIn)
	}
}
