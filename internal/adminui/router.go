package adminui

import (
	"log/slog"
	"net/http"
	"time"

	"softwareprosweb/internal/auth"
	"softwareprosweb/internal/domain"
	"softwareprosweb/internal/ratelimit"
	"softwareprosweb/internal/service"
)

type Opts struct {
	Logger *slog.Logger

	Auth    *service.AuthService
	Blog    *service.BlogService
	Contact *service.ContactService

	CookieSecure bool
	SessionTTL   time.Duration

	// LoginLimiter throttles the admin login form; shared with the API
	// login endpoint so attempts count against the same budget.
	LoginLimiter *ratelimit.Limiter
}

func New(opts Opts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = auth.DefaultSessionTTL
	}

	if opts.Auth == nil || opts.Blog == nil {
		return http.NotFoundHandler()
	}

	app := &app{
		logger:       logger,
		authSvc:      opts.Auth,
		blogSvc:      opts.Blog,
		contactSvc:   opts.Contact,
		cookieSecure: opts.CookieSecure,
		sessionTTL:   opts.SessionTTL,
		loginLimiter: opts.LoginLimiter,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin", app.redirectAdmin)
	mux.HandleFunc("GET /admin/", app.requireAdmin(app.handleDashboard))
	mux.HandleFunc("GET /admin/login", app.handleLoginGet)
	mux.HandleFunc("POST /admin/login", app.handleLoginPost)
	mux.HandleFunc("POST /admin/logout", app.handleLogoutPost)
	mux.HandleFunc("GET /admin/posts", app.requireAdmin(app.handlePostsList))
	mux.HandleFunc("GET /admin/posts/new", app.requireAdmin(app.handlePostNewGet))
	mux.HandleFunc("POST /admin/posts", app.requireAdmin(app.handlePostCreate))
	mux.HandleFunc("GET /admin/posts/{id}", app.requireAdmin(app.handlePostEditGet))
	mux.HandleFunc("POST /admin/posts/{id}", app.requireAdmin(app.handlePostUpdate))
	mux.HandleFunc("POST /admin/posts/{id}/publish", app.requireAdmin(app.handlePostPublish))
	mux.HandleFunc("POST /admin/posts/{id}/unpublish", app.requireAdmin(app.handlePostUnpublish))
	mux.HandleFunc("POST /admin/posts/{id}/delete", app.requireAdmin(app.handlePostDelete))
	if app.contactSvc != nil {
		mux.HandleFunc("GET /admin/messages", app.requireAdmin(app.handleMessagesList))
	}

	return mux
}

type app struct {
	logger *slog.Logger

	authSvc    *service.AuthService
	blogSvc    *service.BlogService
	contactSvc *service.ContactService

	cookieSecure bool
	sessionTTL   time.Duration
	loginLimiter *ratelimit.Limiter
}

func (a *app) redirectAdmin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/", http.StatusFound)
}

func (a *app) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := a.currentUser(r)
		if !ok {
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		if u.Role != domain.UserRoleAdmin {
			renderError(w, http.StatusForbidden, "Forbidden", "This account is not allowed to access admin.")
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (a *app) currentUser(r *http.Request) (domain.User, bool) {
	c, err := r.Cookie(auth.SessionCookieName)
	if err != nil || c.Value == "" {
		return domain.User{}, false
	}
	u, err := a.authSvc.UserForToken(r.Context(), c.Value)
	if err != nil {
		return domain.User{}, false
	}
	return u, true
}
