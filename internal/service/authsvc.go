package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"softwareprosweb/internal/auth"
	"softwareprosweb/internal/domain"
)

type UsersStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error)
	SetLastLogin(ctx context.Context, userID string, when time.Time) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
	Parse(token string) (string, bool)
}

// AuthService verifies credentials and mints session tokens. Sessions
// are stateless: the token is self-contained and stays valid until the
// cookie carrying it expires.
type AuthService struct {
	Users  UsersStore
	Tokens TokenIssuer
	Now    func() time.Time
}

// Login checks an email/password pair and returns the user with a
// fresh session token. Unknown email and wrong password produce the
// same error so responses cannot reveal whether an account exists; a
// store failure is reported separately as ErrStoreUnavailable.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	now := s.Now
	if now == nil {
		now = time.Now
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return domain.User{}, "", domain.NewValidationError(map[string]string{"email": "required", "password": "required"})
	}

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return domain.User{}, "", err
	}
	if !ok {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	// Only after the password checked out: the distinct disabled error
	// would otherwise confirm to anyone that the account exists.
	if u.Status == domain.UserStatusDisabled {
		return domain.User{}, "", domain.ErrUserDisabled
	}

	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return domain.User{}, "", err
	}

	_ = s.Users.SetLastLogin(ctx, u.ID, now())

	return u.User, token, nil
}

// LoginExternal signs in an existing account whose email was verified
// by an external identity provider (Google or Apple). Accounts are not
// auto-provisioned; an unknown email is treated as bad credentials.
func (s *AuthService) LoginExternal(ctx context.Context, email string) (domain.User, string, error) {
	now := s.Now
	if now == nil {
		now = time.Now
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.User{}, "", domain.NewValidationError(map[string]string{"email": "required"})
	}

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if u.Status == domain.UserStatusDisabled {
		return domain.User{}, "", domain.ErrUserDisabled
	}

	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return domain.User{}, "", err
	}

	_ = s.Users.SetLastLogin(ctx, u.ID, now())

	return u.User, token, nil
}

// UserForToken resolves a session token to its user, for request
// authentication. Invalid tokens and missing users both read as
// unauthorized.
func (s *AuthService) UserForToken(ctx context.Context, token string) (domain.User, error) {
	userID, ok := s.Tokens.Parse(token)
	if !ok {
		return domain.User{}, domain.ErrUnauthorized
	}

	u, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}
	if u.Status == domain.UserStatusDisabled {
		return domain.User{}, domain.ErrForbidden
	}

	return u, nil
}
