// Package httpserver exposes the client pipeline to the rendering layer,
// which lives outside this repository.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"publicsquare/internal/config"
	"publicsquare/internal/domain"
)

// Server is the HTTP surface over the feed, publish, and wallet operations.
type Server struct {
	cfg        *config.Config
	connector  *domain.Connector
	publisher  *domain.Publisher
	controller *domain.Controller
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer creates the HTTP server and its routes.
func NewServer(
	cfg *config.Config,
	connector *domain.Connector,
	publisher *domain.Publisher,
	controller *domain.Controller,
	logger *zap.Logger,
) *Server {
	s := &Server{
		cfg:        cfg,
		connector:  connector,
		publisher:  publisher,
		controller: controller,
		logger:     logger,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Routes builds the router. Exposed separately so tests can drive the
// handlers without a listener.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/feed", s.handleFeed)
	r.Post("/api/posts", s.handlePublish)
	r.Get("/api/wallet/session", s.handleSession)
	r.Post("/api/wallet/connect", s.handleConnect)

	return r
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	author := r.URL.Query().Get("author")
	if topic != "" && author != "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "topic and author are mutually exclusive")
		return
	}

	scope := domain.AllScope()
	switch {
	case topic != "":
		scope = domain.TopicScope(topic)
	case author != "":
		scope = domain.AuthorScope(author)
	}

	posts := s.controller.Search(r.Context(), scope)

	writeJSON(w, http.StatusOK, map[string]any{
		"scope": scope.String(),
		"posts": toPostsResponse(posts),
	})
}

type publishRequest struct {
	Content string `json:"content"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "malformed request body")
		return
	}

	s.publisher.SetDraft(req.Content)

	id, err := s.publisher.Publish(r.Context())
	if err != nil {
		s.writePublishError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) writePublishError(w http.ResponseWriter, err error) {
	var (
		fundingErr *domain.FundingError
		signingErr *domain.SigningError
		uploadErr  *domain.UploadError
	)

	switch {
	case errors.Is(err, domain.ErrEmptyDraft):
		writeError(w, http.StatusBadRequest, "EmptyContent", "post content is required")
	case errors.Is(err, domain.ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, "SubmissionInFlight", "a submission is already in progress")
	case errors.Is(err, domain.ErrWalletNotConnected):
		writeError(w, http.StatusPreconditionFailed, "WalletNotConnected", "connect a wallet before posting")
	case errors.As(err, &fundingErr):
		// The one blocking, user-visible alert in the pipeline.
		writeError(w, http.StatusPaymentRequired, "FundingFailed", "could not fund the storage cost")
	case errors.As(err, &signingErr):
		writeError(w, http.StatusBadGateway, "SigningFailed", "the wallet did not sign the record")
	case errors.As(err, &uploadErr):
		writeError(w, http.StatusBadGateway, "UploadFailed", "the record could not be stored")
	default:
		s.logger.Error("unexpected publish failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "InternalError", "publish failed")
	}
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSessionResponse(s.connector.Session()))
}

type connectRequest struct {
	Provider string `json:"provider"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "malformed request body")
		return
	}

	session, err := s.connector.Connect(r.Context(), domain.ProviderTag(req.Provider))
	if err != nil {
		var connErr *domain.ConnectionError
		if errors.As(err, &connErr) && errors.Is(err, domain.ErrUnknownProvider) {
			writeError(w, http.StatusBadRequest, "UnknownProvider", "unknown wallet provider")
			return
		}
		writeError(w, http.StatusBadGateway, "ConnectionFailed", "the wallet provider could not be reached")
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

type postResponse struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Topic     string    `json:"topic,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func toPostsResponse(posts []domain.Post) []postResponse {
	result := make([]postResponse, len(posts))
	for i, p := range posts {
		result[i] = postResponse{
			ID:        p.ID,
			Author:    p.Author,
			Body:      p.Body,
			Topic:     p.Topic,
			Timestamp: p.Timestamp,
		}
	}
	return result
}

type sessionResponse struct {
	Provider    string `json:"provider"`
	Address     string `json:"address"`
	IsConnected bool   `json:"isConnected"`
}

func toSessionResponse(session domain.WalletSession) sessionResponse {
	return sessionResponse{
		Provider:    string(session.Provider),
		Address:     session.Address,
		IsConnected: session.IsConnected,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]string{
		"error":   errType,
		"message": message,
	})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
