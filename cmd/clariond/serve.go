package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	clarion "github.com/clarionhq/clarion"
	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/logging"
	"github.com/clarionhq/clarion/model/anthropic"
	"github.com/clarionhq/clarion/model/gemini"
	"github.com/clarionhq/clarion/model/openai"
	mongosink "github.com/clarionhq/clarion/report/mongo"
	"github.com/clarionhq/clarion/search"
	redisstore "github.com/clarionhq/clarion/session/redis"
	"github.com/clarionhq/clarion/verify"
)

type serveFlags struct {
	addr     string
	redis    string
	mongoURI string
	mongoDB  string
	logLevel string
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&flags.redis, "redis", "", "redis address for session storage (empty = in-memory)")
	cmd.Flags().StringVar(&flags.mongoURI, "mongo-uri", "", "mongodb uri for the activity audit sink (empty = disabled)")
	cmd.Flags().StringVar(&flags.mongoDB, "mongo-db", "clarion", "mongodb database for the activity sink")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	return cmd
}

func runServe(ctx context.Context, flags serveFlags) error {
	logger := logging.NewSlogLogger(parseLevel(flags.logLevel), "json", false)
	cfg := core.ConfigFromEnv()

	var optFns []func(o *clarion.Options)
	optFns = append(optFns, func(o *clarion.Options) {
		o.Config = cfg
		o.Logger = logger
		o.Backend = pickBackend(ctx, cfg, logger)
		o.Searcher = buildSearcher(cfg, logger)
		o.Verifier = buildVerifier(cfg, logger)
	})

	if flags.redis != "" {
		store, err := redisstore.Dial(ctx, flags.redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer store.Close()
		optFns = append(optFns, func(o *clarion.Options) { o.Store = store })
		logger.Info("using redis session store", "addr", flags.redis)
	}

	if flags.mongoURI != "" {
		sink, err := mongosink.NewSink(ctx, flags.mongoURI, flags.mongoDB, "activity", logger)
		if err != nil {
			return fmt.Errorf("connect mongodb: %w", err)
		}
		defer sink.Close(context.Background())
		optFns = append(optFns, func(o *clarion.Options) { o.Sinks = append(o.Sinks, sink) })
		logger.Info("using mongodb activity sink", "database", flags.mongoDB)
	}

	app, err := clarion.New(optFns...)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              flags.addr,
		Handler:           newRouter(app, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", flags.addr,
			"ai", cfg.AIConfigured, "search", cfg.SearchConfigured, "verify", cfg.VerifyConfigured)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// pickBackend selects the first configured AI provider, in a fixed order so
// deployments are predictable.
func pickBackend(ctx context.Context, cfg core.Config, logger logging.Logger) core.Backend {
	switch {
	case cfg.OpenAIKey != "":
		logger.Info("ai backend configured", "provider", "openai")
		return openai.NewBackend(func(o *openai.Options) { o.APIKey = cfg.OpenAIKey })
	case cfg.AnthropicKey != "":
		logger.Info("ai backend configured", "provider", "anthropic")
		return anthropic.NewBackend(func(o *anthropic.Options) { o.APIKey = cfg.AnthropicKey })
	case cfg.GeminiKey != "":
		b, err := gemini.NewBackend(ctx, cfg.GeminiKey)
		if err != nil {
			logger.Warn("gemini backend unavailable, running without ai", "error", err)
			return nil
		}
		logger.Info("ai backend configured", "provider", "gemini")
		return b
	default:
		logger.Info("no ai backend configured, pattern classification only")
		return nil
	}
}

func buildSearcher(cfg core.Config, logger logging.Logger) core.Searcher {
	if !cfg.SearchConfigured {
		return nil
	}
	s, err := search.NewClient(cfg.SearchKey)
	if err != nil {
		logger.Warn("search unavailable", "error", err)
		return nil
	}
	return s
}

func buildVerifier(cfg core.Config, logger logging.Logger) core.Verifier {
	if !cfg.VerifyConfigured {
		return nil
	}
	v, err := verify.NewWeatherVerifier(cfg.WeatherKey)
	if err != nil {
		logger.Warn("hazard verification unavailable", "error", err)
		return nil
	}
	return v
}

type respondRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

func newRouter(app *clarion.Clarion, logger logging.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/respond", func(w http.ResponseWriter, req *http.Request) {
		var in respondRequest
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if in.SessionID == "" {
			writeError(w, http.StatusBadRequest, "session_id is required")
			return
		}
		resp, err := app.Respond(req.Context(), in.SessionID, in.Text)
		if err != nil {
			if errors.Is(err, core.ErrEmptyUtterance) {
				writeError(w, http.StatusBadRequest, "text must not be empty")
				return
			}
			logger.Error("respond failed", "session_id", in.SessionID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/activity", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, app.Activity())
	}).Methods(http.MethodGet)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseLevel(s string) logging.LogLevel {
	switch s {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
