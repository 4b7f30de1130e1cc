package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stylemail-dev/stylemail/pkg/service/nudge"
	"github.com/stylemail-dev/stylemail/pkg/usecase"
	"github.com/stylemail-dev/stylemail/pkg/utils/logging"
)

type Server struct {
	router      *chi.Mux
	uc          *usecase.UseCases
	nudgeClient *nudge.Client
}

type Options func(*Server)

// WithNudgeClient enables the endpoints that fetch nudge data from the
// external provider.
func WithNudgeClient(client *nudge.Client) Options {
	return func(s *Server) {
		s.nudgeClient = client
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Post("/seed", s.seedHandler)
	r.Post("/generate", s.generateHandler)
	r.Post("/fetch-nudge-data", s.fetchNudgeDataHandler)
	r.Post("/nudge-email", s.nudgeEmailHandler)
	r.Post("/nudge-summary", s.nudgeSummaryHandler)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
