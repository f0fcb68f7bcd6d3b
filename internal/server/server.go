package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velobase/jobsheet-tracker/internal/export"
	"github.com/velobase/jobsheet-tracker/internal/extract"
	"github.com/velobase/jobsheet-tracker/internal/pipeline"
	"github.com/velobase/jobsheet-tracker/internal/repository"
)

const gracefulShutdownTimeout = 5 * time.Second

// Deps bundles everything the HTTP API needs.
type Deps struct {
	Pool      *pgxpool.Pool
	Clients   repository.ClientRepository
	Bikes     repository.BikeRepository
	Sheets    repository.JobSheetRepository
	Sales     repository.SaleRepository
	Assembler *extract.Assembler
	Processor *pipeline.Processor
	Exporter  *export.Service
	Logger    *slog.Logger
}

// Server hosts the REST API for the job-sheet tracker.
type Server struct {
	addr string
	deps Deps
	log  *slog.Logger
}

func New(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Server{addr: addr, deps: deps, log: deps.Logger}
}

// Router builds the chi mux. Exposed so tests can drive it via httptest.
func (s *Server) Router() *chi.Mux {
	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)

	h := &handler{deps: s.deps, log: s.log}

	router.Get("/healthz", h.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.listClients)
			r.Post("/", h.createClient)
			r.Get("/{id}", h.getClient)
		})
		r.Route("/bikes", func(r chi.Router) {
			r.Get("/", h.listBikes)
			r.Post("/", h.createBike)
		})
		r.Route("/jobsheets", func(r chi.Router) {
			r.Get("/", h.listJobSheets)
			r.Get("/{id}", h.getJobSheet)
		})
		r.Post("/extract", h.extractDraft)
		r.Post("/scans", h.runScan)
		r.Get("/exports/jobsheets.xlsx", h.exportJobSheets)
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.listSales)
			r.Post("/", h.createSale)
		})
	})

	return router
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server.listen", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("server.shutdown")
	return nil
}
