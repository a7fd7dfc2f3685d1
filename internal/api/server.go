// Package api serves a generated map over a read-only HTTP API for renderers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talgya/mapforge/internal/grid"
)

// MapView is the map a Server exposes.
type MapView struct {
	ID      string
	Seed    int64
	Grid    *grid.Grid
	Reports json.RawMessage // Generation reports as stored or freshly marshalled
}

// Server serves one map. Handlers never mutate the grid.
type Server struct {
	Map  MapView
	Port int

	// Limiter caps requests per client IP. Nil disables limiting.
	Limiter *RateLimiter
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	if s.Limiter != nil {
		r.Use(s.Limiter.Middleware)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/map", s.handleMap)
		r.Get("/map/tiles", s.handleTiles)
		r.Get("/tile/{x}/{y}", s.handleTile)
		r.Get("/objects", s.handleObjects)
		r.Get("/objects/{id}", s.handleObject)
		r.Get("/reports", s.handleReports)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "map", s.Map.ID)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("HTTP API shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type tileEntry struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Terrain   string `json:"terrain"`
	Moisture  string `json:"moisture"`
	MoveCost  int    `json:"move_cost"`
	Coastal   bool   `json:"coastal,omitempty"`
	Blocked   bool   `json:"blocked,omitempty"`
	Visitable []int  `json:"visitable,omitempty"`
}

type objectEntry struct {
	ID        int         `json:"id"`
	Tag       string      `json:"tag"`
	X         int         `json:"x"`
	Y         int         `json:"y"`
	Value     int         `json:"value"`
	Owner     string      `json:"owner"`
	Blocking  bool        `json:"blocking"`
	Visitable bool        `json:"visitable"`
	Guard     *grid.Guard `json:"guard,omitempty"`
	Detail    any         `json:"detail"`
}

func newTileEntry(g *grid.Grid, p grid.Point) tileEntry {
	t := g.Tile(p)
	return tileEntry{
		X:         p.X,
		Y:         p.Y,
		Terrain:   t.Terrain.String(),
		Moisture:  t.Moisture.String(),
		MoveCost:  t.MoveCost,
		Coastal:   t.Coastal,
		Blocked:   t.Blocked(),
		Visitable: t.VisitableIDs(),
	}
}

func newObjectEntry(obj grid.MapObject) objectEntry {
	b := obj.Base()
	return objectEntry{
		ID:        b.ID,
		Tag:       b.Tag,
		X:         b.Pos.X,
		Y:         b.Pos.Y,
		Value:     obj.Value(),
		Owner:     b.Owner,
		Blocking:  b.Blocking,
		Visitable: b.Visitable,
		Guard:     b.Guard,
		Detail:    obj,
	}
}

// handleMap returns the map header.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	g := s.Map.Grid
	terrain := make(map[string]int)
	for t, n := range g.TerrainCounts() {
		terrain[t.String()] = n
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":      s.Map.ID,
		"seed":    s.Map.Seed,
		"width":   g.Width,
		"height":  g.Height,
		"objects": g.ObjectCount(),
		"spawns":  g.Spawns,
		"terrain": terrain,
	})
}

// handleTiles returns every tile in row-major order.
func (s *Server) handleTiles(w http.ResponseWriter, r *http.Request) {
	g := s.Map.Grid
	tiles := make([]tileEntry, 0, g.Width*g.Height)
	for _, p := range g.Points() {
		tiles = append(tiles, newTileEntry(g, p))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"width":  g.Width,
		"height": g.Height,
		"tiles":  tiles,
	})
}

// handleTile returns one tile and the objects on it.
func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(chi.URLParam(r, "y"))
	if errX != nil || errY != nil {
		respondError(w, http.StatusBadRequest, "coordinates must be integers")
		return
	}

	g := s.Map.Grid
	p := grid.Point{X: x, Y: y}
	if !g.InBounds(p) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("tile (%d,%d) is outside the %dx%d map", x, y, g.Width, g.Height))
		return
	}

	objs := g.ObjectsAt(p)
	entries := make([]objectEntry, 0, len(objs))
	for _, obj := range objs {
		entries = append(entries, newObjectEntry(obj))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"tile":    newTileEntry(g, p),
		"objects": entries,
	})
}

// handleObjects lists objects, optionally filtered by ?type=<tag>.
func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	g := s.Map.Grid
	objs := g.Objects()
	if tag := r.URL.Query().Get("type"); tag != "" {
		objs = g.ObjectsOfType(tag)
	}

	entries := make([]objectEntry, 0, len(objs))
	for _, obj := range objs {
		entries = append(entries, newObjectEntry(obj))
	}
	respondJSON(w, http.StatusOK, entries)
}

// handleObject returns one object by id.
func (s *Server) handleObject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "object id must be an integer")
		return
	}
	obj, ok := s.Map.Grid.Object(id)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("object %d not found", id))
		return
	}
	respondJSON(w, http.StatusOK, newObjectEntry(obj))
}

// handleReports returns the generation reports.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if len(s.Map.Reports) == 0 {
		respondError(w, http.StatusNotFound, "no reports for this map")
		return
	}
	respondJSON(w, http.StatusOK, s.Map.Reports)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
