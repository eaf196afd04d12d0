package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer([]byte(strings.Repeat("x", 32)))

	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "user-1" {
		t.Fatalf("expected signed token, got the raw user id")
	}

	userID, ok := issuer.Parse(token)
	if !ok || userID != "user-1" {
		t.Fatalf("expected parse ok, got (%q, %v)", userID, ok)
	}

	if _, ok := issuer.Parse(token + "x"); ok {
		t.Fatalf("expected tampered token to fail verification")
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer([]byte(strings.Repeat("a", 32)))
	other := NewTokenIssuer([]byte(strings.Repeat("b", 32)))

	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, ok := other.Parse(token); ok {
		t.Fatalf("expected token signed with another secret to fail")
	}
}

func TestTokenIssuer_EmptyUserID(t *testing.T) {
	issuer := NewTokenIssuer([]byte(strings.Repeat("x", 32)))
	if _, err := issuer.Issue(""); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestSessionCookieHelpers(t *testing.T) {
	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "v", DefaultSessionTTL, false)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != SessionCookieName {
		t.Fatalf("unexpected cookie name: %s", c.Name)
	}
	if !c.HttpOnly || c.SameSite != http.SameSiteStrictMode {
		t.Fatalf("unexpected cookie attributes")
	}
	if c.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Fatalf("expected 7 day MaxAge, got %d", c.MaxAge)
	}

	rr = httptest.NewRecorder()
	ClearSessionCookie(rr, false)
	cookies = rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge != -1 {
		t.Fatalf("expected MaxAge=-1 on clear")
	}
}
