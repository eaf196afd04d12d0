package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"softwareprosweb/internal/auth"
	"softwareprosweb/internal/ratelimit"
	"softwareprosweb/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Auth      *service.AuthService
	Blog      *service.BlogService
	Contact   *service.ContactService
	Investors *service.InvestorService
	Meetings  *service.MeetingService

	CookieSecure bool
	SessionTTL   time.Duration

	GoogleClientID string
	AppleServiceID string

	// LoginLimiter throttles credential attempts per IP and per email.
	// The caller owns its lifecycle; when nil, login is unthrottled.
	LoginLimiter *ratelimit.Limiter
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = auth.DefaultSessionTTL
	}

	api := &api{
		logger:         logger,
		isProd:         opts.IsProd,
		dbPing:         opts.DBPing,
		authSvc:        opts.Auth,
		blogSvc:        opts.Blog,
		contactSvc:     opts.Contact,
		investorSvc:    opts.Investors,
		meetingSvc:     opts.Meetings,
		cookieSecure:   opts.CookieSecure,
		sessionTTL:     opts.SessionTTL,
		googleClientID: opts.GoogleClientID,
		appleServiceID: opts.AppleServiceID,
		loginLimiter:   opts.LoginLimiter,
	}

	publicMux := http.NewServeMux()
	apiMux := http.NewServeMux()

	publicMux.HandleFunc("GET /", api.handleHome)
	publicMux.HandleFunc("GET /services", api.handleServicesPage)
	publicMux.HandleFunc("GET /about", api.handleAboutPage)
	publicMux.HandleFunc("GET /contact", api.handleContactPage)
	publicMux.HandleFunc("GET /blog", api.handleBlogIndexPage)
	publicMux.HandleFunc("GET /blog/{slug}", api.handleBlogPostPage)
	publicMux.HandleFunc("GET /investors", api.handleInvestorsPage)
	publicMux.HandleFunc("GET /meeting", api.handleMeetingPage)
	publicMux.HandleFunc("GET /healthz", api.handleHealthz)

	if api.authSvc == nil {
		apiMux.HandleFunc("POST /v1/auth/login", handleNotImplemented)
		apiMux.HandleFunc("POST /v1/auth/google", handleNotImplemented)
		apiMux.HandleFunc("POST /v1/auth/apple", handleNotImplemented)
		apiMux.HandleFunc("POST /v1/auth/logout", handleNotImplemented)
		apiMux.HandleFunc("GET /v1/users/me", handleNotImplemented)
	} else {
		apiMux.HandleFunc("POST /v1/auth/login", api.handleAuthLogin)
		apiMux.HandleFunc("POST /v1/auth/google", api.handleAuthLoginGoogle)
		apiMux.HandleFunc("POST /v1/auth/apple", api.handleAuthLoginApple)
		apiMux.HandleFunc("POST /v1/auth/logout", api.requireAuth(api.handleAuthLogout))
		apiMux.HandleFunc("GET /v1/users/me", api.requireAuth(api.handleUsersMe))
	}

	if api.blogSvc != nil {
		apiMux.HandleFunc("GET /v1/blog", api.handleBlogList)
		apiMux.HandleFunc("GET /v1/blog/{slug}", api.handleBlogGet)
	}

	if api.contactSvc != nil {
		apiMux.HandleFunc("POST /v1/contact", api.handleContactSubmit)
		if api.authSvc != nil {
			apiMux.HandleFunc("GET /v1/contact/messages", api.requireAdmin(api.handleContactMessages))
		}
	}

	if api.investorSvc != nil {
		apiMux.HandleFunc("GET /v1/investors/metrics", api.handleInvestorMetrics)
	}

	if api.meetingSvc != nil && api.meetingSvc.Enabled() {
		apiMux.HandleFunc("POST /v1/meetings/join", api.handleMeetingJoin)
	}

	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := apiMux.Handler(r)
		if pattern == "" {
			handleV1NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/") || r.URL.Path == "/v1" {
			apiHandler.ServeHTTP(w, r)
			return
		}
		publicMux.ServeHTTP(w, r)
	})

	var h http.Handler = root
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

func handleNotImplemented(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotImplemented, "not_implemented", "not implemented")
}

func handleV1NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc     *service.AuthService
	blogSvc     *service.BlogService
	contactSvc  *service.ContactService
	investorSvc *service.InvestorService
	meetingSvc  *service.MeetingService

	cookieSecure   bool
	sessionTTL     time.Duration
	googleClientID string
	appleServiceID string

	loginLimiter *ratelimit.Limiter
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
