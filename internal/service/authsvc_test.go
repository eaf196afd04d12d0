package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"softwareprosweb/internal/auth"
	"softwareprosweb/internal/domain"
)

type stubUsersStore struct {
	t *testing.T

	getUserByIDFunc    func(context.Context, string) (domain.User, error)
	getUserByEmailFunc func(context.Context, string) (domain.UserWithPassword, error)
	setLastLoginFunc   func(context.Context, string, time.Time) error
}

func (s *stubUsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if s.getUserByIDFunc != nil {
		return s.getUserByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetUserByID called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	if s.getUserByEmailFunc != nil {
		return s.getUserByEmailFunc(ctx, email)
	}
	s.t.Fatalf("GetUserByEmail called unexpectedly")
	return domain.UserWithPassword{}, errors.New("unexpected call")
}

func (s *stubUsersStore) SetLastLogin(ctx context.Context, userID string, when time.Time) error {
	if s.setLastLoginFunc != nil {
		return s.setLastLoginFunc(ctx, userID, when)
	}
	s.t.Fatalf("SetLastLogin called unexpectedly")
	return errors.New("unexpected call")
}

func testUserWithPassword(t *testing.T, password string) domain.UserWithPassword {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return domain.UserWithPassword{
		User: domain.User{
			ID:     "user-1",
			Email:  "real@x.com",
			Name:   "Real User",
			Role:   domain.UserRoleMember,
			Status: domain.UserStatusActive,
		},
		PasswordHash: hash,
	}
}

func newAuthService(users *stubUsersStore) *AuthService {
	return &AuthService{
		Users:  users,
		Tokens: auth.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef")),
	}
}

func TestLogin_MissingInput(t *testing.T) {
	svc := newAuthService(&stubUsersStore{t: t})

	for _, tc := range []struct{ email, password string }{
		{"", "pw"},
		{"a@b.com", ""},
		{"", ""},
	} {
		_, _, err := svc.Login(context.Background(), tc.email, tc.password)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("Login(%q, %q): expected validation error, got %v", tc.email, tc.password, err)
		}
	}
}

func TestLogin_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	stored := testUserWithPassword(t, "correctpassword")
	users := &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(_ context.Context, email string) (domain.UserWithPassword, error) {
			if email == "real@x.com" {
				return stored, nil
			}
			return domain.UserWithPassword{}, domain.ErrNotFound
		},
	}
	svc := newAuthService(users)

	_, _, errUnknown := svc.Login(context.Background(), "unknown@x.com", "anything")
	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected invalid credentials, got %v", errUnknown)
	}

	_, _, errWrongPw := svc.Login(context.Background(), "real@x.com", "wrongpassword")
	if !errors.Is(errWrongPw, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected invalid credentials, got %v", errWrongPw)
	}

	if errUnknown.Error() != errWrongPw.Error() {
		t.Fatalf("denial messages differ: %q vs %q", errUnknown, errWrongPw)
	}
}

func TestLogin_StoreUnavailable(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{}, errors.New("connection refused")
		},
	}
	svc := newAuthService(users)

	_, _, err := svc.Login(context.Background(), "real@x.com", "pw")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	stored := testUserWithPassword(t, "correctpassword")
	lastLoginSet := false
	users := &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			return stored, nil
		},
		setLastLoginFunc: func(_ context.Context, userID string, _ time.Time) error {
			if userID != "user-1" {
				t.Fatalf("SetLastLogin for wrong user: %s", userID)
			}
			lastLoginSet = true
			return nil
		},
	}
	svc := newAuthService(users)

	u, token, err := svc.Login(context.Background(), "Real@X.com", "correctpassword")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.ID != "user-1" || u.Email != "real@x.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if token == "" {
		t.Fatalf("expected a session token")
	}
	if !lastLoginSet {
		t.Fatalf("expected last login to be recorded")
	}

	userID, ok := svc.Tokens.Parse(token)
	if !ok || userID != "user-1" {
		t.Fatalf("token does not resolve to the user: (%q, %v)", userID, ok)
	}
}

func TestLogin_DisabledUser(t *testing.T) {
	stored := testUserWithPassword(t, "correctpassword")
	stored.Status = domain.UserStatusDisabled
	users := &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			return stored, nil
		},
	}
	svc := newAuthService(users)

	_, _, err := svc.Login(context.Background(), "real@x.com", "correctpassword")
	if !errors.Is(err, domain.ErrUserDisabled) {
		t.Fatalf("expected user disabled, got %v", err)
	}

	// Without the right password the disabled account must be
	// indistinguishable from any other failed login.
	_, _, err = svc.Login(context.Background(), "real@x.com", "wrongpassword")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password on disabled account: expected invalid credentials, got %v", err)
	}
}

func TestLogin_ConcurrentRequests(t *testing.T) {
	stored := testUserWithPassword(t, "correctpassword")
	users := &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			return stored, nil
		},
		setLastLoginFunc: func(context.Context, string, time.Time) error { return nil },
	}
	svc := newAuthService(users)

	// Handlers share one service value; parallel logins must not write
	// its fields. Meaningful under the race detector.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := svc.Login(context.Background(), "real@x.com", "correctpassword"); err != nil {
				t.Errorf("Login: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestLoginExternal(t *testing.T) {
	stored := testUserWithPassword(t, "irrelevant")
	users := &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(_ context.Context, email string) (domain.UserWithPassword, error) {
			if email == "real@x.com" {
				return stored, nil
			}
			return domain.UserWithPassword{}, domain.ErrNotFound
		},
		setLastLoginFunc: func(context.Context, string, time.Time) error { return nil },
	}
	svc := newAuthService(users)

	_, token, err := svc.LoginExternal(context.Background(), "real@x.com")
	if err != nil {
		t.Fatalf("LoginExternal: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a session token")
	}

	_, _, err = svc.LoginExternal(context.Background(), "unknown@x.com")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown external email: expected invalid credentials, got %v", err)
	}
}

func TestUserForToken(t *testing.T) {
	active := domain.User{ID: "user-1", Email: "real@x.com", Status: domain.UserStatusActive}
	users := &stubUsersStore{
		t: t,
		getUserByIDFunc: func(_ context.Context, id string) (domain.User, error) {
			if id == "user-1" {
				return active, nil
			}
			return domain.User{}, domain.ErrNotFound
		},
	}
	svc := newAuthService(users)

	token, err := svc.Tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	u, err := svc.UserForToken(context.Background(), token)
	if err != nil || u.ID != "user-1" {
		t.Fatalf("UserForToken: got (%+v, %v)", u, err)
	}

	if _, err := svc.UserForToken(context.Background(), "garbage"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("garbage token: expected unauthorized, got %v", err)
	}

	gone, err := svc.Tokens.Issue("user-gone")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.UserForToken(context.Background(), gone); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("deleted user: expected unauthorized, got %v", err)
	}
}

func TestUserForToken_Disabled(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByIDFunc: func(context.Context, string) (domain.User, error) {
			return domain.User{ID: "user-1", Status: domain.UserStatusDisabled}, nil
		},
	}
	svc := newAuthService(users)

	token, err := svc.Tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.UserForToken(context.Background(), token); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("disabled user: expected forbidden, got %v", err)
	}
}
