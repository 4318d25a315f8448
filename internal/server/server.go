package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/grocerylist/internal/feed"
	"github.com/dukerupert/grocerylist/internal/handler"
	"github.com/dukerupert/grocerylist/internal/middleware"
	"github.com/dukerupert/grocerylist/internal/store"
	ws "github.com/dukerupert/grocerylist/internal/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	importLimit  = 5
	importWindow = time.Minute
)

// Options configures the HTTP front end.
type Options struct {
	Feed           feed.Config
	AutoCategorize bool
}

type Server struct {
	db       *sql.DB
	hub      *ws.Hub
	groceryH *handler.GroceryHandler
	throttle *middleware.Throttle
	logger   *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	groceryStore := store.NewGroceryStore(db)
	importer := feed.NewImporter(
		feed.NewClient(opts.Feed),
		groceryStore,
		logger.With("component", "import"),
	)

	return &Server{
		db:       db,
		hub:      hub,
		groceryH: handler.NewGroceryHandler(groceryStore, importer, hub, opts.AutoCategorize, logger.With("component", "grocery")),
		throttle: middleware.NewThrottle(importLimit, importWindow),
		logger:   logger,
	}
}

// Throttle returns the import limiter so callers can prune it periodically.
func (s *Server) Throttle() *middleware.Throttle {
	return s.throttle
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /ws", s.hub.Handler())

	mux.HandleFunc("GET /api/items", s.groceryH.List)
	mux.HandleFunc("POST /api/items", s.groceryH.Create)
	mux.HandleFunc("GET /api/items/{id}", s.groceryH.Get)
	mux.HandleFunc("PUT /api/items/{id}", s.groceryH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.groceryH.Delete)
	mux.HandleFunc("POST /api/items/{id}/toggle", s.groceryH.Toggle)
	mux.HandleFunc("POST /api/items/clear-bought", s.groceryH.ClearBought)
	mux.HandleFunc("GET /api/summary", s.groceryH.Summary)
	mux.HandleFunc("POST /api/import", s.throttle.Wrap(s.groceryH.Import))

	logged := middleware.RequestLogger(s.logger.With("component", "http"))(mux)
	return middleware.RequestID(logged)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
