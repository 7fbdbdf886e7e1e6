package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/caseline/pkg/service/presence"
	"github.com/secmon-lab/caseline/pkg/service/pubsub"
	"github.com/secmon-lab/caseline/pkg/usecase"
	"github.com/secmon-lab/caseline/pkg/utils/logging"
	"github.com/secmon-lab/caseline/pkg/utils/safe"
)

type Server struct {
	router   *chi.Mux
	uc       *usecase.UseCases
	bus      *pubsub.Bus
	registry *presence.Registry
	resolver IdentityResolver
}

type Options func(*Server)

// WithIdentityResolver installs an identity resolver in front of the
// API routes. Without it every request runs as the anonymous identity.
func WithIdentityResolver(resolver IdentityResolver) Options {
	return func(s *Server) {
		s.resolver = resolver
	}
}

func New(uc *usecase.UseCases, bus *pubsub.Bus, registry *presence.Registry, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:   r,
		uc:       uc,
		bus:      bus,
		registry: registry,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(identityMiddleware(s.resolver))

		r.Get("/categories", s.listCategories)

		r.Route("/cases", func(r chi.Router) {
			r.Get("/", s.listCases)
			r.Post("/", s.createCase)

			r.Route("/{caseID}", func(r chi.Router) {
				r.Get("/", s.getCase)
				r.Put("/", s.updateCase)
				r.Delete("/", s.deleteCase)

				r.Get("/categories", s.listCaseCategories)
				r.Get("/subscribers", s.listSubscribers)
				r.Get("/stream", s.streamCase)

				r.Route("/events", func(r chi.Router) {
					r.Get("/", s.listEvents)
					r.Post("/", s.createEvent)
					r.Get("/trashed", s.listTrashedEvents)

					r.Route("/{eventID}", func(r chi.Router) {
						r.Get("/", s.getEvent)
						r.Put("/", s.updateEvent)
						r.Delete("/", s.deleteEvent)
						r.Post("/trash", s.trashEvent)
						r.Post("/restore", s.restoreEvent)
					})
				})
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, []byte("OK"))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// WireShutdown makes srv.Shutdown terminate long-lived streaming
// requests. Shutdown waits for active handlers to return, and the
// stream loop only exits when its request context ends, so the base
// context of every connection is cancelled as soon as Shutdown is
// called.
func WireShutdown(ctx context.Context, srv *http.Server) {
	base, cancel := context.WithCancel(ctx)
	srv.BaseContext = func(net.Listener) context.Context { return base }
	srv.RegisterOnShutdown(cancel)
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
