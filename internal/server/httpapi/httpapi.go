// Package httpapi exposes the persistence engine over HTTP. It carries
// already-produced campaign content only; generation and rendering live in
// external collaborators that call this API.
package httpapi

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mediaplanhq/campaignstore/internal/logging"
	"github.com/mediaplanhq/campaignstore/internal/server/services"
)

// Engine is the slice of the campaign service the handlers need.
type Engine interface {
	Save(ctx context.Context, in services.SaveInput) (*services.SaveResult, error)
	Load(ctx context.Context, campaignID string) (*services.LoadResult, error)
	Delete(ctx context.Context, campaignID string) error
}

// Server wires the engine and token verification into an HTTP handler.
type Server struct {
	engine Engine
	secret []byte
	log    logging.Logger
}

func NewServer(engine Engine, secret []byte, log logging.Logger) *Server {
	return &Server{engine: engine, secret: secret, log: log}
}

// Router builds the route tree. Everything under /api requires a bearer
// capability token; /healthz does not.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/campaigns", s.handleSave)
		r.Get("/campaigns/{id}", s.handleLoad)
		r.Delete("/campaigns/{id}", s.handleDelete)
	})

	return r
}
