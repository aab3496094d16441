package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/baking-contest/webapp/config"
	"github.com/baking-contest/webapp/internal/db"
	"github.com/baking-contest/webapp/internal/fieldcrypt"
	"github.com/baking-contest/webapp/internal/handlers"
	"github.com/baking-contest/webapp/internal/services"
	"github.com/baking-contest/webapp/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with basic middleware and defaults. Key material
// is loaded (or generated) here, once, before any request is served.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	master, err := fieldcrypt.LoadOrCreateKey(cfg.KeyFile)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("load field key: %w", err)
	}
	cipher, err := fieldcrypt.New(master)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	personRepo := store.NewPersonRepository(dbConn)
	entryRepo := store.NewEntryRepository(dbConn)

	personService := services.NewPersonService(personRepo, cipher)
	entryService := services.NewEntryService(entryRepo)

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("SESSION_SECRET is required")
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.NotFound(handlers.NotFound)
	router.Get("/healthz", handlers.Healthz)

	handlers.AuthRouter(router, personService, sessionSecret)
	handlers.PersonRouter(router, personService, sessionSecret)
	handlers.EntryRouter(router, entryService, sessionSecret)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
