package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eventloom/eventloom/internal/auth"
	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/repository"
)

// UserService handles account registration, login, and password resets.
type UserService struct {
	users  UserRepo
	tokens *auth.Manager
	log    *slog.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users UserRepo, tokens *auth.Manager, log *slog.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, log: log}
}

// Register creates a new account. Role defaults to attendee.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if !isValidEmail(req.Email) {
		return nil, fmt.Errorf("%w: email is not a valid email address", ErrValidation)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	role := model.RoleAttendee
	switch req.Role {
	case "", string(model.RoleAttendee):
	case string(model.RoleOrganizer):
		role = model.RoleOrganizer
	default:
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, req.Role)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, req.Username, req.Email, hash, role)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) || errors.Is(err, repository.ErrUsernameTaken) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("register user: %w", err)
	}

	s.log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// Login verifies credentials and returns a signed access token.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// RequestPasswordReset issues a single-use reset token valid for 15 minutes.
// To avoid account enumeration the returned token is empty (and no error is
// raised) when the email is unknown.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	token, err := s.users.CreateResetToken(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("create reset token: %w", err)
	}

	// Email delivery is out of scope; the token is logged for the operator.
	s.log.Info("password reset token issued",
		slog.String("user_id", user.ID),
		slog.String("token", token.Token),
	)
	return token.Token, nil
}

// ConfirmPasswordReset redeems a reset token and sets the new password.
func (s *UserService) ConfirmPasswordReset(ctx context.Context, req model.PasswordResetConfirm) error {
	if len(req.NewPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	token, err := s.users.GetResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("get reset token: %w", err)
	}
	if !token.Valid(time.Now().UTC()) {
		return ErrInvalidResetToken
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.users.MarkResetTokenUsed(ctx, token.Token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Consumed by a concurrent redemption.
			return ErrInvalidResetToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, token.UserID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log.Info("password reset completed", slog.String("user_id", token.UserID))
	return nil
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	local, domain, found := strings.Cut(email, "@")
	return found && local != "" && strings.Contains(domain, ".")
}
