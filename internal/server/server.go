// Package server implements the relay between the chat client and an
// OpenAI-compatible completions API. It accepts one chat request per POST and
// answers with a stream of typed message events over server-sent events.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const shutdownGrace = 5 * time.Second

// Server relays chat requests to the upstream completions API.
type Server struct {
	config Config
	client openai.Client
	logger *log.Logger
}

// New creates a relay server for the given configuration.
func New(config Config, logger *log.Logger) *Server {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		config: config,
		client: openai.NewClient(opts...),
		logger: logger,
	}
}

// Handler returns the relay's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// ListenAndServe runs the relay until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			s.logger.Warn("shutdown", "err", err)
		}
	}()
	s.logger.Info("listening", "addr", s.config.Addr, "upstream", s.config.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
