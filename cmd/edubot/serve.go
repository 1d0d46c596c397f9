package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edubotswana/edubot/internal/config"
	"github.com/edubotswana/edubot/internal/content"
	"github.com/edubotswana/edubot/internal/engine"
	"github.com/edubotswana/edubot/internal/httpapi"
	"github.com/edubotswana/edubot/internal/llm"
	"github.com/edubotswana/edubot/internal/logging"
	"github.com/edubotswana/edubot/internal/metrics"
	"github.com/edubotswana/edubot/internal/sms"
	"github.com/edubotswana/edubot/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the USSD callback server",
	Long:  `Starts the EduBot engine as a stateless HTTP server for the Africa's Talking USSD callback.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}

		level := slog.LevelInfo
		if cfg.Debug {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		var sessions store.SessionStore
		if cfg.RedisAddr != "" {
			redisStore := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
				store.WithTTL(cfg.SessionTimeout))
			defer redisStore.Close()
			sessions = redisStore
			logger.Info("using redis session store", "addr", cfg.RedisAddr)
		} else {
			sessions = store.NewMemory(store.WithMemoryTTL(cfg.SessionTimeout))
			logger.Warn("REDIS_ADDR not set, sessions are in-memory only")
		}

		notifier := sms.NewClient(sms.ClientConfig{
			BaseURL:   cfg.ATBaseURL,
			Username:  cfg.ATUsername,
			APIKey:    cfg.ATAPIKey,
			SenderID:  cfg.SMSSenderID,
			ChunkSize: cfg.SMSChunkChars,
		}, sms.WithLogger(logger))

		opts := []engine.Option{
			engine.WithLogger(logger),
			engine.WithConfig(engine.Config{
				MenuCharBudget:      cfg.MenuCharBudget,
				ChatTargetChars:     cfg.ChatTargetChars,
				ChatHardCeiling:     cfg.ChatHardCeiling,
				InteractiveDeadline: cfg.InteractiveTimeout,
				BackgroundDeadline:  cfg.BackgroundTimeout,
				ContextTurns:        cfg.ContextTurns,
				MinQuestionChars:    cfg.MinQuestionChars,
				DefaultQuizCount:    cfg.DefaultQuizCount,
				FallbackText:        engine.DefaultConfig().FallbackText,
				TimeoutAckText:      engine.DefaultConfig().TimeoutAckText,
			}),
		}

		if cfg.GroqAPIKey != "" {
			generator, err := llm.NewGroq(llm.GroqConfig{
				APIKey:    cfg.GroqAPIKey,
				BaseURL:   cfg.GroqBaseURL,
				Model:     cfg.LLMModel,
				MaxTokens: cfg.LLMMaxTokens,
			}, llm.WithLogger(logger))
			if err != nil {
				fmt.Printf("Error initializing generator: %v\n", err)
				os.Exit(1)
			}
			opts = append(opts, engine.WithGenerator(generator))
			logger.Info("generation enabled", "model", cfg.LLMModel)
		} else {
			logger.Warn("GROQ_API_KEY not set, running on static content only")
		}

		registry := prometheus.NewRegistry()
		opts = append(opts, engine.WithMetrics(metrics.New(registry)))

		dialog := engine.New(sessions, content.MustNew(), notifier, opts...)
		handler := httpapi.NewHandler(dialog, registry, httpapi.WithLogger(logger))

		srv := &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting EduBot USSD server", "addr", srv.Addr, "service_code", cfg.ServiceCode)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("starting shutdown", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "err", err)
				}
			}

			// Let detached continuations and deliveries drain.
			dialog.Wait()
			logger.Info("EduBot server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
