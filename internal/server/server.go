// Package server wires the HTTP surface: data upload, case and chat
// streaming, the Targets proxy endpoints with the per-session cache,
// feedback collection and the backoffice metrics view.
package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"okrpilot/internal/cache"
	"okrpilot/internal/cases"
	"okrpilot/internal/chat"
	"okrpilot/internal/config"
	"okrpilot/internal/metrics"
	"okrpilot/internal/targets"
)

// SessionHeader carries the client-chosen session identifier.
const SessionHeader = "X-Session-Id"

// Server is the HTTP application.
type Server struct {
	cfg     config.Config
	log     *zap.Logger
	engine  *cases.Engine
	chat    *chat.Assembler
	cache   *cache.SessionCache
	targets targets.Client
	store   *metrics.Store
	model   string
	router  chi.Router
}

// Deps bundles the subsystems the server dispatches to.
type Deps struct {
	Engine  *cases.Engine
	Chat    *chat.Assembler
	Cache   *cache.SessionCache
	Targets targets.Client
	Store   *metrics.Store
	// Model is the LLM model name used for token estimates.
	Model string
}

// New creates the server and builds its router.
func New(cfg config.Config, log *zap.Logger, deps Deps) *Server {
	s := &Server{
		cfg:     cfg,
		log:     log,
		engine:  deps.Engine,
		chat:    deps.Chat,
		cache:   deps.Cache,
		targets: deps.Targets,
		store:   deps.Store,
		model:   deps.Model,
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/data/test", s.handleTestData)
	r.Post("/api/data/upload", s.handleUpload)

	r.Post("/api/cases/{id}", s.handleCase)
	r.Post("/api/v2/cases/{id}", s.handleCaseV2)
	r.Post("/api/chat", s.handleChat)
	r.Post("/api/v2/chat", s.handleChatV2)

	r.Get("/api/maps", s.handleMaps)
	r.Get("/api/maps/{id}/context", s.handleMapContext)
	r.Get("/api/targets/{id}/context", s.handleTargetContext)

	r.Post("/api/feedback", s.handleFeedback)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BasicAuth("backoffice", map[string]string{
			s.cfg.BackofficeUser: s.cfg.BackofficePass,
		}))
		r.Get("/api/metrics", s.handleMetrics)
		r.Get("/backoffice", s.servePage("backoffice.html"))
	})

	r.Get("/", s.servePage("index.html"))
	if info, err := os.Stat(s.cfg.StaticDir); err == nil && info.IsDir() {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir)))
		r.Get("/static/*", fileServer.ServeHTTP)
	}

	return r
}

func (s *Server) servePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.cfg.StaticDir, name)
		if _, err := os.Stat(path); err != nil {
			http.Error(w, name+" not found", http.StatusNotFound)
			return
		}
		http.ServeFile(w, r, path)
	}
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", clientIP(r)),
		)
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+SessionHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the first X-Forwarded-For entry over the socket
// address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	if host == "" {
		return "unknown"
	}
	return host
}

func sessionID(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	return cache.DefaultSession
}

// logUsage records a request metric; a failed write never blocks the
// response.
func (s *Server) logUsage(r *http.Request, endpoint string, caseID *int) {
	if s.store == nil {
		return
	}
	if err := s.store.LogRequest(r.Context(), clientIP(r), endpoint, caseID); err != nil {
		s.log.Warn("logging request metric", zap.Error(err))
	}
}
