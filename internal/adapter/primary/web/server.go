package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"hangtimer/internal/domain"
	"hangtimer/internal/usecase"
)

// Catalog is the preset and settings surface the server needs.
type Catalog interface {
	List() []domain.Preset
	Save(name string, cfg domain.WorkoutConfig) (domain.Preset, error)
	Delete(id string) error
	Select(id string) (domain.Preset, error)
	Workouts() []domain.Workout
	Workout(id string) (domain.Workout, error)
	Settings() domain.Settings
	UpdateSettings(mutate func(*domain.Settings)) (domain.Settings, error)
}

// SettingsListener is told about settings changes, e.g. to retune a sound sink.
type SettingsListener func(domain.Settings)

// Server is a primary adapter that exposes the HTTP API, a websocket stream
// and a small status page. It depends on the use cases (primary ports).
type Server struct {
	session  usecase.SessionUseCase
	catalog  Catalog
	onChange SettingsListener
	log      *slog.Logger
	router   chi.Router
	server   *http.Server
}

// NewServer creates the HTTP server bound to addr.
func NewServer(session usecase.SessionUseCase, catalog Catalog, addr string, log *slog.Logger) *Server {
	s := &Server{
		session: session,
		catalog: catalog,
		log:     log,
		router:  chi.NewRouter(),
	}
	s.routes()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// OnSettingsChange registers a callback run after settings are updated.
func (s *Server) OnSettingsChange(fn SettingsListener) {
	s.onChange = fn
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start blocks and serves HTTP traffic.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/sequence", s.handleSequence)
		r.Post("/control/{action}", s.handleControl)
		r.Put("/config", s.handleConfig)

		r.Get("/presets", s.handleListPresets)
		r.Post("/presets", s.handleSavePreset)
		r.Delete("/presets/{id}", s.handleDeletePreset)
		r.Post("/presets/{id}/select", s.handleSelectPreset)

		r.Get("/workouts", s.handleListWorkouts)
		r.Post("/workouts/{id}/select", s.handleSelectWorkout)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)

		r.Get("/ws", s.handleWebSocket)
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	s.router.Get("/", s.handleRoot)
}
