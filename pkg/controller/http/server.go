package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/quillforge/quill/pkg/usecase"
	"github.com/quillforge/quill/pkg/utils/logging"
)

// Default cap on one multipart upload request (text + attachments)
const defaultMaxUploadBytes = 32 << 20

type Server struct {
	router         *chi.Mux
	uc             *usecase.UseCases
	maxUploadBytes int64
}

type Options func(*Server)

// WithMaxUploadBytes caps the size of one multipart message request
func WithMaxUploadBytes(n int64) Options {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:         r,
		uc:             uc,
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/view", s.switchView)

			r.Post("/messages", s.postMessage)
			r.Get("/messages", s.listMessages)

			r.Post("/generate", s.requestGeneration)

			r.Route("/document", func(r chi.Router) {
				r.Get("/", s.getDocument)
				r.Post("/edit", s.beginEdit)
				r.Put("/edit", s.commitEdit)
				r.Delete("/edit", s.cancelEdit)
				r.Get("/export", s.exportDocument)
				r.Post("/publish", s.publishDocument)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK")) //nolint:errcheck // health probe
	})

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
