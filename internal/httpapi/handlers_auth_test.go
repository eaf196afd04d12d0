package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"softwareprosweb/internal/auth"
	"softwareprosweb/internal/domain"
	"softwareprosweb/internal/ratelimit"
	"softwareprosweb/internal/service"
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
	return domain.User{}, context.Canceled
}

func (s *stubUsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	if s.getUserByEmailFunc != nil {
		return s.getUserByEmailFunc(ctx, email)
	}
	s.t.Fatalf("GetUserByEmail called unexpectedly")
	return domain.UserWithPassword{}, context.Canceled
}

func (s *stubUsersStore) SetLastLogin(ctx context.Context, userID string, when time.Time) error {
	if s.setLastLoginFunc != nil {
		return s.setLastLoginFunc(ctx, userID, when)
	}
	return nil
}

const testPassword = "correct horse battery"

func newAuthTestRouter(t *testing.T, store *stubUsersStore, isProd bool) http.Handler {
	t.Helper()

	limiter := ratelimit.New(5*time.Minute, 10)
	t.Cleanup(limiter.Stop)

	return NewRouter(RouterOpts{
		Auth: &service.AuthService{
			Users:  store,
			Tokens: auth.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef")),
		},
		IsProd:       isProd,
		CookieSecure: isProd,
		SessionTTL:   auth.DefaultSessionTTL,
		LoginLimiter: limiter,
	})
}

func activeUserStore(t *testing.T) *stubUsersStore {
	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := domain.User{
		ID:     "user-1",
		Email:  "ann@example.com",
		Name:   "Ann",
		Role:   domain.UserRoleMember,
		Status: domain.UserStatusActive,
	}
	return &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(_ context.Context, email string) (domain.UserWithPassword, error) {
			if email != u.Email {
				return domain.UserWithPassword{}, domain.ErrNotFound
			}
			return domain.UserWithPassword{User: u, PasswordHash: hash}, nil
		},
		getUserByIDFunc: func(_ context.Context, id string) (domain.User, error) {
			if id != u.ID {
				return domain.User{}, domain.ErrNotFound
			}
			return u, nil
		},
	}
}

func doLogin(t *testing.T, h http.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"email":"` + email + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h := newAuthTestRouter(t, activeUserStore(t), false)

	rr := doLogin(t, h, "ann@example.com", testPassword)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	c := sessionCookie(t, rr)
	if !c.HttpOnly {
		t.Fatalf("cookie must be HttpOnly")
	}
	if c.SameSite != http.SameSiteStrictMode {
		t.Fatalf("cookie SameSite = %v, want Strict", c.SameSite)
	}
	if c.MaxAge != 7*24*60*60 {
		t.Fatalf("cookie MaxAge = %d, want %d", c.MaxAge, 7*24*60*60)
	}
	if c.Secure {
		t.Fatalf("cookie must not be Secure outside prod")
	}

	var resp userResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.ID != "user-1" || resp.Email != "ann@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
}

func TestLoginSecureCookieInProd(t *testing.T) {
	h := newAuthTestRouter(t, activeUserStore(t), true)

	rr := doLogin(t, h, "ann@example.com", testPassword)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !sessionCookie(t, rr).Secure {
		t.Fatalf("cookie must be Secure in prod")
	}
}

func TestLoginBadCredentialsIndistinguishable(t *testing.T) {
	h := newAuthTestRouter(t, activeUserStore(t), false)

	wrongPw := doLogin(t, h, "ann@example.com", "wrong password")
	unknown := doLogin(t, h, "nobody@example.com", testPassword)

	if wrongPw.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d; want both 401", wrongPw.Code, unknown.Code)
	}
	if wrongPw.Body.String() != unknown.Body.String() {
		t.Fatalf("wrong-password and unknown-email responses must match:\n%s\n%s", wrongPw.Body.String(), unknown.Body.String())
	}
}

func TestLoginStoreDown(t *testing.T) {
	store := &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{}, context.DeadlineExceeded
		},
	}
	h := newAuthTestRouter(t, store, false)

	rr := doLogin(t, h, "ann@example.com", testPassword)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestLoginMissingFields(t *testing.T) {
	h := newAuthTestRouter(t, activeUserStore(t), false)

	rr := doLogin(t, h, "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	h := newAuthTestRouter(t, activeUserStore(t), false)

	var rr *httptest.ResponseRecorder
	for i := 0; i < 11; i++ {
		rr = doLogin(t, h, "ann@example.com", "wrong password")
	}
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 after repeated attempts", rr.Code)
	}

	var env errorEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Error.Code != "rate_limited" {
		t.Fatalf("error code = %q", env.Error.Code)
	}
	if env.Error.RetryAfterMS <= 0 {
		t.Fatalf("expected retry_after_ms hint, got %d", env.Error.RetryAfterMS)
	}
}

func TestUsersMe(t *testing.T) {
	h := newAuthTestRouter(t, activeUserStore(t), false)

	login := doLogin(t, h, "ann@example.com", testPassword)
	c := sessionCookie(t, login)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var resp userResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", resp)
	}
}

func TestUsersMeNoCookie(t *testing.T) {
	h := newAuthTestRouter(t, activeUserStore(t), false)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestUsersMeTamperedToken(t *testing.T) {
	h := newAuthTestRouter(t, activeUserStore(t), false)

	login := doLogin(t, h, "ann@example.com", testPassword)
	c := sessionCookie(t, login)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value + "x"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newAuthTestRouter(t, activeUserStore(t), false)

	login := doLogin(t, h, "ann@example.com", testPassword)
	c := sessionCookie(t, login)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	cleared := sessionCookie(t, rr)
	if cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Fatalf("logout must clear the cookie, got %+v", cleared)
	}
}

func TestHealthz(t *testing.T) {
	okPing := func(context.Context) error { return nil }
	downPing := func(context.Context) error { return context.DeadlineExceeded }

	h := NewRouter(RouterOpts{DBPing: okPing})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	h = NewRouter(RouterOpts{DBPing: downPing})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}
