package devbackend

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"ConciergeChat/internal/session"
)

// Options configures a Server
type Options struct {
	AllowedOrigins []string // CORS origins; defaults to "*"
	Logger         *slog.Logger
	Tracer         trace.Tracer
	Meter          metric.Meter
}

// Server serves the concierge chat API on top of a Store and a Responder
type Server struct {
	router    *chi.Mux
	store     Store
	responder Responder
	logger    *slog.Logger
	tracer    trace.Tracer
	replyTime metric.Int64Histogram
}

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type sendMessageRequest struct {
	Role    session.Role `json:"role"`
	Content string       `json:"content"`
}

type createSessionRequest struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer wires the routes of the chat API.
func NewServer(store Store, responder Responder, opts Options) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		store:     store,
		responder: responder,
		logger:    opts.Logger,
		tracer:    opts.Tracer,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("concierge/devbackend")
	}
	meter := opts.Meter
	if meter == nil {
		meter = otel.Meter("concierge/devbackend")
	}
	hist, err := meter.Int64Histogram(
		"concierge.reply.duration",
		metric.WithDescription("Time taken to produce an assistant reply"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		s.logger.Warn("failed to create reply duration histogram", "error", err)
	}
	s.replyTime = hist

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/messages", s.handleListMessages)
		r.Post("/messages", s.handleSendMessage)
		r.Delete("/messages", s.handleClearMessages)

		r.Get("/chat-sessions", s.handleListSessions)
		r.Post("/chat-sessions", s.handleCreateSession)
		r.Delete("/chat-sessions/{id}", s.handleDeleteSession)
	})

	return s
}

// Router returns the chi router serving the API.
func (s *Server) Router() http.Handler { return s.router }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger logs one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"client_request_id", r.Header.Get("X-Request-Id"),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.store.ListMessages(r.Context())
	if err != nil {
		s.logger.Error("failed to list messages", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role != session.RoleUser {
		respondError(w, http.StatusBadRequest, `role must be "user"`)
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	ctx := r.Context()
	history, err := s.store.ListMessages(ctx)
	if err != nil {
		s.logger.Error("failed to list messages", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	history = append(history, session.Message{Role: session.RoleUser, Content: content})

	// Both messages are stored only once the reply exists.
	reply, elapsed, err := s.reply(r, history)
	if err != nil {
		s.logger.Error("assistant failed to reply", "error", err)
		respondError(w, http.StatusBadGateway, "the concierge is unavailable, please try again")
		return
	}

	if _, err := s.store.AppendMessage(ctx, session.RoleUser, content, nil); err != nil {
		s.logger.Error("failed to save user message", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save message")
		return
	}
	meta := &session.Metadata{ResponseTime: session.Millis(float64(elapsed.Milliseconds()))}
	if _, err := s.store.AppendMessage(ctx, session.RoleAssistant, reply, meta); err != nil {
		s.logger.Error("failed to save assistant message", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	msgs, err := s.store.ListMessages(ctx)
	if err != nil {
		s.logger.Error("failed to list messages", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}

func (s *Server) reply(r *http.Request, history []session.Message) (string, time.Duration, error) {
	ctx, span := s.tracer.Start(r.Context(), "concierge_reply",
		trace.WithAttributes(attribute.Int("history.length", len(history))),
	)
	defer span.End()

	start := time.Now()
	reply, err := s.responder.Reply(ctx, history)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.replyTime != nil {
		s.replyTime.Record(ctx, elapsed.Milliseconds(),
			metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	return reply, elapsed, err
}

func (s *Server) handleClearMessages(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearMessages(r.Context()); err != nil {
		s.logger.Error("failed to clear messages", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to clear messages")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context())
	if err != nil {
		s.logger.Error("failed to list chat sessions", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load chat sessions")
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.store.CreateSession(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		s.logger.Error("failed to create chat session", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create chat session")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid chat session id")
		return
	}
	if err := s.store.DeleteSession(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, "chat session not found")
			return
		}
		s.logger.Error("failed to delete chat session", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete chat session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, errorResponse{Error: message})
}
