package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/hyrx/studio-backend/internal/captcha"
	"github.com/hyrx/studio-backend/internal/config"
	"github.com/hyrx/studio-backend/internal/handler"
	"github.com/hyrx/studio-backend/internal/logging"
	"github.com/hyrx/studio-backend/internal/mail"
	"github.com/hyrx/studio-backend/internal/service/assistant"
	"github.com/hyrx/studio-backend/internal/service/completion"
	contactService "github.com/hyrx/studio-backend/internal/service/contact"
	"github.com/hyrx/studio-backend/internal/speech"
	"github.com/hyrx/studio-backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("failed to load configuration", "err", err)
	}

	// Initialize the completion service
	var completionSvc *completion.Service
	if cfg.AI.Enabled() {
		completionSvc, err = completion.NewService(ctx, cfg.AI)
		if err != nil {
			slog.Warn("failed to initialize completion service, sends take the fallback path", "err", err)
			completionSvc = nil
		} else {
			slog.Info("completion service initialized")
		}
	} else {
		slog.Info("Ark credentials not configured, assistant replies use the fallback path")
	}

	// Conversation session store
	sessionStore := newSessionStore(cfg.Session)
	defer sessionStore.Close()

	// Speech capability and voice output
	capability := speech.Detect(cfg.Speech)
	if capability.Supported() {
		slog.Info("speech engine initialized", "url", cfg.Speech.EngineURL)
	} else {
		slog.Info("speech unavailable", "reason", capability.Reason())
	}

	var speaker assistant.Speaker
	if capability.Supported() && cfg.Speech.VoiceEnabled {
		speaker = speech.NewSynthesizer(capability.Engine(), cfg.Speech.VoicePrefs, true, func(audio []byte) {
			slog.Debug("synthesized assistant reply", "bytes", len(audio))
		})
	}

	var assistantCompleter assistant.Completer
	if completionSvc != nil {
		assistantCompleter = completionSvc
	}
	assistantSvc := assistant.NewService(sessionStore, assistantCompleter, speaker)

	// Contact submission pipeline
	var verifier contactService.BotVerifier
	if cfg.Captcha.Enabled() {
		verifier = captcha.New(cfg.Captcha)
	} else {
		slog.Warn("reCAPTCHA secret not configured, contact submissions will be rejected")
	}

	var submissionStore contactService.SubmissionStore
	if cfg.Store.Enabled() {
		supabaseStore, err := store.NewSupabaseStore(cfg.Store)
		if err != nil {
			slog.Error("failed to initialize submission store, persistence disabled", "err", err)
		} else {
			submissionStore = supabaseStore
			defer supabaseStore.Close()
		}
	} else {
		slog.Info("Supabase credentials not configured, submissions will not be persisted")
	}

	var mailer contactService.Mailer
	if cfg.Mail.Enabled() {
		mailer = mail.New(cfg.Mail)
	} else {
		slog.Warn("Resend API key not configured, contact notifications disabled")
	}

	pipeline := contactService.NewPipeline(verifier, submissionStore, mailer, cfg.Mail.Fallback)

	router := handler.NewRouter(cfg, completionSvc, assistantSvc, pipeline, capability)

	startServer(ctx, cfg.Server, router)
}

func newSessionStore(cfg config.SessionConfig) assistant.Store {
	if cfg.Driver == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		slog.Info("session store: redis", "addr", cfg.RedisAddr, "ttl", cfg.TTL)
		return assistant.NewRedisStore(client, cfg.TTL)
	}
	slog.Info("session store: memory")
	return assistant.NewMemoryStore()
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("HYRX studio backend listening", "addr", addr)
	if err := runServer(ctx, srv); err != nil {
		logging.Fatal("server error", "err", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
