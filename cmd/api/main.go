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

	"go.uber.org/zap"

	"libralink/internal/analytics"
	"libralink/internal/auth"
	"libralink/internal/book"
	"libralink/internal/bookai"
	"libralink/internal/bookmark"
	"libralink/internal/chat"
	"libralink/internal/document"
	"libralink/internal/httpx"
	"libralink/internal/importer"
	"libralink/internal/loan"
	"libralink/internal/platform/cache"
	"libralink/internal/platform/config"
	"libralink/internal/platform/database"
	"libralink/internal/platform/genai"
	"libralink/internal/platform/logging"
	"libralink/internal/platform/metrics"
	"libralink/internal/platform/openlibrary"
	"libralink/internal/platform/storage"
	"libralink/internal/profile"
	"libralink/internal/rating"
	"libralink/internal/session"
	"libralink/internal/user"
)

const (
	shutdownTimeout      = 15 * time.Second
	janitorInterval      = time.Hour
	openLibraryRetries   = 3
	analyticsCachePrefix = "analytics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Open(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("database connection OK")

	rdb, err := cache.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	blobs, err := storage.NewFS(cfg.StorageDir)
	if err != nil {
		return err
	}

	// Nil interfaces switch the AI features off; a typed nil *genai.Client must not leak through.
	var (
		llm    chat.LLM
		text   bookai.TextModel
		images bookai.ImageModel
	)
	gc, err := genai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiTextModel, cfg.GeminiImageModel)
	switch {
	case errors.Is(err, genai.ErrUnavailable):
		logger.Warn("GEMINI_API_KEY not set, AI features disabled")
	case err != nil:
		return err
	default:
		llm, text, images = gc, gc, gc
	}

	timeout := cfg.DBTimeout

	userSvc := user.NewService(user.NewPostgresRepo(pool, timeout))
	blacklistRepo := session.NewBlacklistPostgresRepo(pool, timeout)
	sessionSvc := session.NewService(session.NewPostgresRepo(pool, timeout), blacklistRepo)
	authSvc := auth.NewService(cfg.JWTSecret, userSvc, sessionSvc)

	bookSvc := book.NewService(book.NewPostgresRepo(pool, timeout))
	loanSvc := loan.NewService(loan.NewPostgresRepo(pool, timeout), loan.Policy{
		LoanPeriod:      cfg.LoanPeriod(),
		MaxRenewals:     cfg.MaxRenewals,
		MaxActiveLoans:  cfg.MaxActiveLoans,
		FinePerDayCents: cfg.FinePerDayCents,
	})
	ratingSvc := rating.NewService(rating.NewPostgresRepo(pool, timeout))
	bookmarkSvc := bookmark.NewService(bookmark.NewPostgresRepo(pool, timeout))
	profileSvc := profile.NewService(userSvc, loanSvc, ratingSvc, bookmarkSvc)
	documentSvc := document.NewService(document.NewPostgresRepo(pool, timeout), blobs, logger)
	analyticsSvc := analytics.NewService(analytics.NewPostgresRepo(pool, timeout), cache.NewJSON(rdb, analyticsCachePrefix), logger)

	chatSvc := chat.NewService(
		llm,
		chat.NewTools(bookSvc, loanSvc, analyticsSvc),
		chat.NewRedisHistory(rdb, chat.MaxHistory, chat.HistoryTTL),
		logger,
	)
	bookaiSvc := bookai.NewService(bookSvc, text, images, blobs)

	olClient := openlibrary.NewClient(cfg.OpenLibraryUserAgent, cfg.OpenLibraryRPS, openLibraryRetries)
	importerSvc := importer.NewService(olClient, bookSvc, importer.NewPostgresRepo(pool, timeout), logger)

	exporter, err := metrics.NewExporter(analyticsSvc)
	if err != nil {
		return err
	}
	defer func() { _ = exporter.Shutdown(context.Background()) }()

	rateLimiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	go sessionSvc.RunJanitor(ctx, janitorInterval, logger)

	router := newRouter(routerConfig{
		logger:         logger,
		jwtSecret:      cfg.JWTSecret,
		blacklist:      blacklistRepo,
		metrics:        exporter,
		rateLimiter:    rateLimiter,
		allowedOrigins: cfg.AllowedOrigins(),
		enableHSTS:     cfg.EnableHSTS,
		maxUploadBytes: cfg.MaxUploadBytes(),
		readiness: []readinessCheck{
			{name: "db", ping: pool.Ping},
			{name: "redis", ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
	}, handlers{
		auth:      auth.NewHTTPHandler(authSvc),
		users:     user.NewHTTPHandler(userSvc),
		sessions:  session.NewHTTPHandler(sessionSvc),
		books:     book.NewHTTPHandler(bookSvc),
		loans:     loan.NewHTTPHandler(loanSvc),
		ratings:   rating.NewHTTPHandler(ratingSvc),
		bookmarks: bookmark.NewHTTPHandler(bookmarkSvc),
		profiles:  profile.NewHTTPHandler(profileSvc),
		documents: document.NewHTTPHandler(documentSvc, cfg.MaxUploadBytes()),
		analytics: analytics.NewHTTPHandler(analyticsSvc),
		chat:      chat.NewHTTPHandler(chatSvc),
		bookai:    bookai.NewHTTPHandler(bookaiSvc),
		importer:  importer.NewHTTPHandler(importerSvc),
	})

	srv := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Chat replies can take several model round trips.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errShutdown := make(chan error, 1)
	go shutdown(ctx, srv, logger, errShutdown)

	logger.Info("starting server", zap.String("addr", cfg.AppAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return <-errShutdown
}

func shutdown(ctx context.Context, srv *http.Server, logger *zap.Logger, errShutdown chan<- error) {
	<-ctx.Done()
	logger.Info("shutting down server")

	ctxTimeout, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctxTimeout); err != nil {
		errShutdown <- fmt.Errorf("forcing server close: %w", err)
		return
	}
	errShutdown <- nil
}
