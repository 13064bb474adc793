package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/cors"

	"github.com/cschleiden/go-workflows/client"

	"github.com/cschleiden/resume-publisher/internal/events"
	"github.com/cschleiden/resume-publisher/internal/model"
	"github.com/cschleiden/resume-publisher/internal/storage"
)

const resumeCacheTTL = 30 * time.Second

// Server holds the HTTP surface of the API process: the user/resume CRUD
// endpoints, the workflow start endpoint and the worker-events status
// surface.
type Server struct {
	store       *storage.Store
	events      *events.Store
	client      *client.Client
	logger      *slog.Logger
	resumeCache *ttlcache.Cache[string, *model.Resume]
}

func NewServer(store *storage.Store, eventStore *events.Store, c *client.Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	cache := ttlcache.New(
		ttlcache.WithTTL[string, *model.Resume](resumeCacheTTL),
	)
	go cache.Start()

	return &Server{
		store:       store,
		events:      eventStore,
		client:      c,
		logger:      logger,
		resumeCache: cache,
	}
}

// Close stops the cache janitor.
func (s *Server) Close() {
	s.resumeCache.Stop()
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestLogger)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Resume Publisher API is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/check", s.getCheck)

		r.Route("/user", func(r chi.Router) {
			r.Post("/", s.createUser)
			r.Get("/", s.listUsers)
			r.Get("/{id}", s.getUser)
		})

		r.Route("/resume", func(r chi.Router) {
			r.Post("/", s.createResume)
			r.Get("/", s.listResumes)
			r.Get("/{id}", s.getResume)
			r.Put("/{id}", s.updateResume)
			r.Post("/publish", s.publishResume)
		})

		r.Route("/worker-events", func(r chi.Router) {
			r.Get("/", s.getWorkerEvents)
			r.Post("/", s.postWorkerEvent)
		})
	})

	return cors.AllowAll().Handler(r)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) getCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"message":   "API check endpoint is working",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
