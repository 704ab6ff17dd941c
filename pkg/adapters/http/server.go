package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/internal/presentation/outline"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/editing"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// DefaultMaxBodyBytes caps request bodies; layouts with rich field data can be large.
const DefaultMaxBodyBytes = 10 << 20

// Personalizer rewrites a layout for one segment.
type Personalizer interface {
	Personalize(layout *domain.LayoutServiceData, segment string)
}

// Server serves the editing data API and the layout tools.
type Server struct {
	Store        ports.EditingDataStore
	Engine       Personalizer
	Secret       string
	Metrics      http.Handler
	Logger       *slog.Logger
	MaxBodyBytes int64
}

// Option configures the handler.
type Option func(*Server)

// WithSecret sets the secret every editing data call must carry.
func WithSecret(secret string) Option {
	return func(s *Server) { s.Secret = secret }
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.Metrics = h }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.MaxBodyBytes = n }
}

// NewHandler creates the HTTP handler.
func NewHandler(store ports.EditingDataStore, engine Personalizer, opts ...Option) http.Handler {
	server := &Server{
		Store:        store,
		Engine:       engine,
		Logger:       logging.NewNop(),
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	// All methods reach the handler so it can answer 405 with Allow itself.
	r.HandleFunc("/api/editing/data/{key}", server.EditingData)
	r.Post("/api/layout/personalize", server.PersonalizeLayout)
	r.Post("/api/layout/outline", server.OutlineLayout)
	if server.Metrics != nil {
		r.Handle("/metrics", server.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EditingData handles GET and PUT on /api/editing/data/{key}.
func (s *Server) EditingData(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r.URL.Query().Get(editing.QueryParamEditingSecret)) {
		s.Logger.Warn("EditingData: rejected request", "method", r.Method, "remote", r.RemoteAddr)
		http.Error(w, "Missing or invalid secret", http.StatusUnauthorized)
		return
	}

	key := chi.URLParam(r, "key")
	switch r.Method {
	case http.MethodGet:
		data, err := s.Store.Get(r.Context(), key)
		if err != nil {
			if errors.Is(err, domain.ErrEditingDataNotFound) {
				http.Error(w, fmt.Sprintf("No editing data for key %s", key), http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to read editing data", http.StatusInternalServerError)
			s.Logger.Error("EditingData: get failed", "key", key, "error", err)
			return
		}
		s.writeJSON(w, data)

	case http.MethodPut:
		var data domain.EditingData
		if !s.decode(w, r, &data) {
			return
		}
		if err := s.Store.Set(r.Context(), key, &data); err != nil {
			http.Error(w, "Failed to store editing data", http.StatusInternalServerError)
			s.Logger.Error("EditingData: set failed", "key", key, "error", err)
			return
		}
		s.Logger.Debug("EditingData: stored", "key", key, "path", data.Path)
		s.writeJSON(w, struct{}{})

	default:
		w.Header().Set("Allow", "GET, PUT")
		http.Error(w, fmt.Sprintf("Method %s Not Allowed", r.Method), http.StatusMethodNotAllowed)
	}
}

// PersonalizeLayout handles POST /api/layout/personalize?segment=.
func (s *Server) PersonalizeLayout(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("segment") {
		http.Error(w, "Missing segment parameter", http.StatusBadRequest)
		return
	}

	var layout domain.LayoutServiceData
	if !s.decode(w, r, &layout) {
		return
	}
	s.Engine.Personalize(&layout, query.Get("segment"))
	s.writeJSON(w, &layout)
}

// OutlineLayout handles POST /api/layout/outline, with an optional segment overlay.
func (s *Server) OutlineLayout(w http.ResponseWriter, r *http.Request) {
	var layout domain.LayoutServiceData
	if !s.decode(w, r, &layout) {
		return
	}

	var overlay *outline.Overlay
	if query := r.URL.Query(); query.Has("segment") {
		overlay = &outline.Overlay{Segment: query.Get("segment")}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(outline.GenerateMermaid(&layout, overlay)))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"app":     "canopy-http",
		"version": strings.TrimSpace(canopy.Version),
	})
}

func (s *Server) authorized(given string) bool {
	if s.Secret == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(s.Secret)) == 1
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	body := r.Body
	if s.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.MaxBodyBytes)
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "error", err)
	}
}
