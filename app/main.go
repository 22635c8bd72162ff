package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Arihant027/VS-News/app/ai"
	"github.com/Arihant027/VS-News/app/api"
	"github.com/Arihant027/VS-News/app/auth"
	"github.com/Arihant027/VS-News/app/cache"
	"github.com/Arihant027/VS-News/app/cfg"
	"github.com/Arihant027/VS-News/app/database"
	"github.com/Arihant027/VS-News/app/logging"
	"github.com/Arihant027/VS-News/app/mail"
	"github.com/Arihant027/VS-News/app/news"
	"github.com/Arihant027/VS-News/app/newsletter"
	"github.com/Arihant027/VS-News/app/pdf"
	"github.com/Arihant027/VS-News/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	logging.Setup(appCfg.Debug)

	if err := run(appCfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting VS News server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	userRepo := database.NewUserRepository(db)
	categoryRepo := database.NewCategoryRepository(db)
	articleRepo := database.NewArticleRepository(db)
	newsletterRepo := database.NewNewsletterRepository(db)
	notificationRepo := database.NewNotificationRepository(db)

	ctx := context.Background()

	if _, err := auth.EnsureSuperadmin(ctx, userRepo, appCfg.SuperadminEmail, appCfg.SuperadminPassword); err != nil {
		return err
	}

	var newsCache *cache.Cache
	if appCfg.RedisAddr != "" {
		newsCache, err = cache.NewCache(ctx, appCfg.RedisAddr)
		if err != nil {
			slog.Warn("Redis unavailable, news cache disabled", "addr", appCfg.RedisAddr, "error", err)
			newsCache = nil
		} else {
			defer newsCache.Close()
			slog.Info("News cache enabled", "addr", appCfg.RedisAddr, "ttl", appCfg.NewsCacheTTL)
		}
	}

	sources := news.NewSourceCache(appCfg.SourcesDir)
	if err := sources.Run(); err != nil {
		return fmt.Errorf("failed to load news sources: %w", err)
	}
	slog.Info("News sources loaded", "dir", appCfg.SourcesDir, "count", sources.GetSourceCount())

	var newsAPI *news.NewsAPIClient
	if appCfg.NewsAPIKey != "" {
		newsAPI = news.NewNewsAPIClient(appCfg.NewsAPIURL, appCfg.NewsAPIKey, appCfg.UserAgent, appCfg.NewsTimeout)
	} else {
		slog.Info("NewsAPI key not set, using RSS sources only")
	}

	httpClient := &http.Client{Timeout: appCfg.NewsTimeout}
	fetcher := news.NewFetcher(httpClient, appCfg.UserAgent, appCfg.NewsTimeout)
	newsService := news.NewService(sources, newsAPI, fetcher, newsCache, appCfg.NewsCacheTTL)

	var model *ai.Client
	if appCfg.AIEnabled() {
		model = ai.NewClient(appCfg.AIAPIKey, appCfg.AIBaseURL, appCfg.AIModel, appCfg.AITimeout, appCfg.AIRPS)
		slog.Info("AI model configured", "model", appCfg.AIModel, "base_url", appCfg.AIBaseURL)
	} else {
		slog.Warn("AI model not configured, generation and summaries will answer 503")
	}

	var mailer newsletter.Mailer
	if appCfg.MailEnabled() {
		mailer = mail.NewResendMailer(appCfg.ResendAPIKey, appCfg.MailFrom)
		slog.Info("Email delivery enabled", "from", appCfg.MailFrom)
	} else {
		slog.Warn("RESEND_API_KEY not set, newsletters will not be emailed")
	}

	renderer := pdf.NewChromeRenderer(appCfg.ChromePath, appCfg.PDFTimeout)
	newsletterService := newsletter.NewService(newsletterRepo, userRepo, notificationRepo, model, renderer, mailer)

	if newsCache != nil && appCfg.WarmInterval > 0 {
		scheduler := tasks.NewScheduler(newsService, sources, appCfg.WarmInterval, appCfg.WorkerCount)
		scheduler.Start()
		defer scheduler.Stop()
		slog.Info("News cache warm-up started", "interval", appCfg.WarmInterval, "workers", appCfg.WorkerCount)
	}

	handler := api.NewHandler(api.Deps{
		Users:         userRepo,
		Categories:    categoryRepo,
		Articles:      articleRepo,
		Notifications: notificationRepo,
		Newsletters:   newsletterService,
		News:          newsService,
		Summarizer:    model,
		DB:            db,
		Cache:         newsCache,
		Sources:       sources,
		Version:       appCfg.Version,
	})
	server := api.NewServer(handler, auth.NewVerifier(appCfg.JWTSecret), appCfg.CORSOrigins)

	// Generation waits on the model and the browser, so writes get a long deadline.
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: appCfg.AITimeout + appCfg.PDFTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("VS News server shutdown complete")
	return serveErr
}
