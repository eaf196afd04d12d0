package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"softwareprosweb/internal/adminui"
	"softwareprosweb/internal/auth"
	"softwareprosweb/internal/config"
	"softwareprosweb/internal/domain"
	"softwareprosweb/internal/email"
	"softwareprosweb/internal/httpapi"
	"softwareprosweb/internal/ratelimit"
	"softwareprosweb/internal/service"
	"softwareprosweb/internal/store/postgres"
)

const (
	loginRateWindow = 5 * time.Minute
	loginRateMax    = 10
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	var (
		authSvc     *service.AuthService
		blogSvc     *service.BlogService
		contactSvc  *service.ContactService
		investorSvc *service.InvestorService
		dbPing      func(context.Context) error
	)

	contactLimiter := ratelimit.New(cfg.ContactRateWindow, cfg.ContactRateMax)
	defer contactLimiter.Stop()
	loginLimiter := ratelimit.New(loginRateWindow, loginRateMax)
	defer loginLimiter.Stop()

	if cfg.DBDSN != "" {
		if err := postgres.Migrate(cfg.DBDSN); err != nil {
			logger.Error("db migrate failed", "err", err)
			os.Exit(1)
		}

		pgPool, err := postgres.Open(context.Background(), cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		users := postgres.NewUsersStore(pgPool)
		posts := postgres.NewPostsStore(pgPool)
		contacts := postgres.NewContactsStore(pgPool)
		metrics := postgres.NewMetricsStore(pgPool)

		if err := bootstrapAdminUser(context.Background(), logger, users, cfg.AdminBootstrapEmail, cfg.AdminBootstrapName, cfg.AdminBootstrapPassword); err != nil {
			logger.Error("bootstrap admin failed", "err", err)
			os.Exit(1)
		}

		authSvc = &service.AuthService{
			Users:  users,
			Tokens: auth.NewTokenIssuer([]byte(cfg.CookieSecret)),
		}
		blogSvc = &service.BlogService{Posts: posts}
		contactSvc = &service.ContactService{
			Messages: contacts,
			Limiter:  contactLimiter,
			Mail: email.Settings{
				Host:     cfg.SMTP.Host,
				Port:     cfg.SMTP.Port,
				Username: cfg.SMTP.Username,
				Password: cfg.SMTP.Password,
				TLSMode:  cfg.SMTP.TLSMode,
			},
			FromName:  cfg.SMTP.FromName,
			FromEmail: cfg.SMTP.FromEmail,
			ToEmail:   cfg.ContactToEmail,
		}
		investorSvc = &service.InvestorService{Metrics: metrics}
		dbPing = pgPool.Ping
	}

	meetingSvc := &service.MeetingService{
		SDKKey:    cfg.MeetingSDKKey,
		SDKSecret: []byte(cfg.MeetingSDKSecret),
	}

	apiRouter := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:         logger,
		IsProd:         cfg.IsProd(),
		DBPing:         dbPing,
		Auth:           authSvc,
		Blog:           blogSvc,
		Contact:        contactSvc,
		Investors:      investorSvc,
		Meetings:       meetingSvc,
		CookieSecure:   cfg.CookieSecure(),
		SessionTTL:     cfg.SessionTTL,
		GoogleClientID: cfg.GoogleClientID,
		AppleServiceID: cfg.AppleServiceID,
		LoginLimiter:   loginLimiter,
	})

	root := http.NewServeMux()
	root.Handle("/", apiRouter)

	if authSvc != nil && blogSvc != nil {
		logger.Info("admin ui enabled")
		adminRouter := adminui.New(adminui.Opts{
			Logger:       logger,
			Auth:         authSvc,
			Blog:         blogSvc,
			Contact:      contactSvc,
			CookieSecure: cfg.CookieSecure(),
			SessionTTL:   cfg.SessionTTL,
			LoginLimiter: loginLimiter,
		})
		root.Handle("/admin", adminRouter)
		root.Handle("/admin/", adminRouter)
	} else {
		logger.Info("admin ui disabled", "db_enabled", cfg.DBDSN != "")
		root.HandleFunc("/admin", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/admin/", http.StatusFound)
		})
		root.HandleFunc("/admin/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("admin ui disabled: set APP_DB_DSN (and restart the server)\n"))
		})
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func bootstrapAdminUser(ctx context.Context, logger *slog.Logger, users *postgres.UsersStore, emailAddr, name, password string) error {
	if password == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(password) < 12 {
		return errors.New("APP_ADMIN_BOOTSTRAP_PASSWORD: must be at least 12 characters")
	}
	if emailAddr == "" {
		return errors.New("admin bootstrap: email is required")
	}

	_, err := users.GetUserByEmail(ctx, emailAddr)
	if err == nil {
		logger.Info("admin bootstrap: user already exists", "email", emailAddr)
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("admin bootstrap: lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("admin bootstrap: hash password: %w", err)
	}

	_, err = users.CreateUser(ctx, emailAddr, name, domain.UserRoleAdmin, hash)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			logger.Info("admin bootstrap: user already exists", "email", emailAddr)
			return nil
		}
		return fmt.Errorf("admin bootstrap: create user: %w", err)
	}

	logger.Info("admin bootstrap: created admin user", "email", emailAddr)
	return nil
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.IsProd() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}
