// Package service contains the application's business logic.
package service

import (
	"context"
	"log/slog"

	"craftery/internal/middleware"
	"craftery/internal/models"
	"craftery/internal/repository"
	"craftery/internal/session"
	"craftery/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AuthService orchestrates signup, login, and logout.
type AuthService struct {
	userRepo repository.UserRepository
	sessions *session.Manager
}

// SignupInput carries the signup form fields.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

func NewAuthService(userRepo repository.UserRepository, sessions *session.Manager) *AuthService {
	return &AuthService{userRepo: userRepo, sessions: sessions}
}

// Signup validates the candidate account and creates it. The user is NOT
// logged in on success; callers redirect to the login flow. Checks run in
// order with early exit: empty fields, password strength, email taken,
// username taken. The existence pre-checks are a fast path for a friendly
// message only; the database's unique constraints decide concurrent races,
// and Create maps their violations to the same duplicate errors.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, models.NewValidationError("Enter username and password")
	}

	if strength := validation.EvaluatePassword(in.Password); !strength.Acceptable() {
		return nil, models.NewWeakPasswordError(strength.Reason)
	}

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewDuplicateEmailError()
	}

	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewDuplicateUsernameError()
	}

	// bcrypt generates a fresh salt per credential and embeds it in the hash
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewStoreError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user signed up", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

// Login verifies the credentials and establishes a session, returning the
// opaque token the client holds from here on.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	if username == "" || password == "" {
		return nil, "", models.NewValidationError("Enter username and password")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", models.NewUnknownUserError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", models.NewInvalidCredentialsError()
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", models.NewStoreError(err)
	}

	middleware.Logger.InfoContext(ctx, "user logged in", slog.Uint64("user_id", uint64(user.ID)))
	return user, token, nil
}

// Logout destroys the session. A store failure is surfaced; the caller must
// not tell the user they are logged out when the token is still live.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		middleware.Logger.ErrorContext(ctx, "session destroy failed", slog.String("error", err.Error()))
		return models.NewStoreError(err)
	}
	return nil
}
