package httpapi

import (
	"net/http"
	"strings"
	"time"

	"softwareprosweb/internal/auth"
	"softwareprosweb/internal/domain"
)

type userResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func writeUser(w http.ResponseWriter, status int, u domain.User) {
	WriteJSON(w, status, userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *api) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"email": "required", "password": "required"}))
		return
	}

	if a.loginLimiter != nil {
		ip := clientIP(r)
		if !a.loginLimiter.Allow("ip:"+ip) || !a.loginLimiter.Allow("email:"+req.Email) {
			WriteRateLimited(w, a.loginLimiter.RetryAfter("email:"+req.Email), a.loginLimiter.Remaining("email:"+req.Email))
			return
		}
	}

	u, token, err := a.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	auth.SetSessionCookie(w, token, a.sessionTTL, a.cookieSecure)
	writeUser(w, http.StatusOK, u)
}

type idTokenRequest struct {
	IDToken string `json:"id_token"`
}

func (a *api) handleAuthLoginGoogle(w http.ResponseWriter, r *http.Request) {
	var req idTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	email, err := auth.GoogleSignInEmail(r.Context(), req.IDToken, a.googleClientID)
	if err != nil {
		WriteDomainError(w, domain.ErrInvalidCredentials)
		return
	}

	a.finishExternalLogin(w, r, email)
}

func (a *api) handleAuthLoginApple(w http.ResponseWriter, r *http.Request) {
	var req idTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	email, err := auth.AppleSignInEmail(r.Context(), req.IDToken, a.appleServiceID)
	if err != nil {
		WriteDomainError(w, domain.ErrInvalidCredentials)
		return
	}

	a.finishExternalLogin(w, r, email)
}

func (a *api) finishExternalLogin(w http.ResponseWriter, r *http.Request, email string) {
	u, token, err := a.authSvc.LoginExternal(r.Context(), email)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	auth.SetSessionCookie(w, token, a.sessionTTL, a.cookieSecure)
	writeUser(w, http.StatusOK, u)
}

func (a *api) handleAuthLogout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearSessionCookie(w, a.cookieSecure)
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleUsersMe(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	writeUser(w, http.StatusOK, u)
}
