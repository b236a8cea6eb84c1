// Package api serves a read-only view of a running simulation over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"starlane/internal/db"
	"starlane/internal/engine"
	"starlane/internal/galaxy"
	"starlane/internal/graph"
	"starlane/internal/logger"
	"starlane/internal/metrics"
)

// Server is the HTTP API server that connects the simulation runner, the
// metrics registry and the run database.
type Server struct {
	runner  *Runner
	cache   *PathCache
	metrics *metrics.Metrics
	db      *db.DB
	runID   int64
	log     zerolog.Logger
}

// NewServer creates a Server. metrics and database may be nil.
func NewServer(runner *Runner, m *metrics.Metrics, database *db.DB, runID int64) *Server {
	s := &Server{
		runner:  runner,
		cache:   NewPathCache(),
		metrics: m,
		db:      database,
		runID:   runID,
		log:     logger.For("API"),
	}
	prev := runner.OnTick
	runner.OnTick = func(tick uint64) {
		s.cache.Invalidate(tick)
		if prev != nil {
			prev(tick)
		}
	}
	return s
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	r.Use(corsMiddleware)

	r.Get("/api/status", s.handleStatus)
	r.Get("/api/galaxy", s.handleGalaxy)
	r.Get("/api/empires", s.handleEmpires)
	r.Get("/api/empires/{id}", s.handleEmpire)
	r.Get("/api/fleets", s.handleFleets)
	r.Get("/api/path", s.handlePath)
	r.Get("/api/runs", s.handleRuns)
	r.Get("/api/runs/{id}/colonizations", s.handleRunColonizations)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Success("API", fmt.Sprintf("Listening on %s", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(r.Method, route, status, time.Since(start))
		}
		s.log.Debug().Str("method", r.Method).Str("route", route).Int("status", status).
			Dur("took", time.Since(start)).Msg("Request")
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

type statusResponse struct {
	Tick        uint64 `json:"tick"`
	Date        string `json:"date"`
	Running     bool   `json:"running"`
	Stars       int    `json:"stars"`
	Lanes       int    `json:"lanes"`
	Empires     int    `json:"empires"`
	Fleets      int    `json:"fleets"`
	Claimed     int    `json:"claimed"`
	CacheHits   uint64 `json:"path_cache_hits"`
	CacheMisses uint64 `json:"path_cache_misses"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var resp statusResponse
	s.runner.View(func(sim *engine.Simulation) {
		g := sim.Galaxy
		resp.Tick = sim.TickCount()
		resp.Date = sim.Time().String()
		resp.Stars = len(g.Stars)
		resp.Lanes = g.Universe.EdgeCount()
		resp.Empires = len(g.Empires)
		resp.Fleets = len(sim.Fleets())
		for _, n := range g.ClaimCounts() {
			resp.Claimed += n
		}
	})
	resp.Running = s.runner.Running()
	resp.CacheHits, resp.CacheMisses = s.cache.Stats()
	writeJSON(w, resp)
}

type starView struct {
	ID     galaxy.StarID    `json:"id"`
	Name   string           `json:"name"`
	Node   graph.NodeID     `json:"node"`
	X      float64          `json:"x"`
	Z      float64          `json:"z"`
	Bodies int              `json:"bodies"`
	Owner  *galaxy.EmpireID `json:"owner,omitempty"`
}

type laneView struct {
	A      graph.NodeID `json:"a"`
	B      graph.NodeID `json:"b"`
	Length int          `json:"length"`
}

func (s *Server) handleGalaxy(w http.ResponseWriter, r *http.Request) {
	var resp struct {
		Tick  uint64     `json:"tick"`
		Stars []starView `json:"stars"`
		Lanes []laneView `json:"lanes"`
	}
	s.runner.View(func(sim *engine.Simulation) {
		g := sim.Galaxy
		resp.Tick = sim.TickCount()
		resp.Stars = make([]starView, 0, len(g.Stars))
		for _, st := range g.Stars {
			pos := g.NodePos(st.Node)
			v := starView{ID: st.ID, Name: st.Name, Node: st.Node, X: pos.X, Z: pos.Z, Bodies: len(st.Bodies)}
			if owner, ok := g.Owner(st.Node); ok {
				v.Owner = &owner
			}
			resp.Stars = append(resp.Stars, v)
		}
		lanes := g.Universe.LiveLanes()
		resp.Lanes = make([]laneView, 0, len(lanes))
		for _, e := range lanes {
			edge := g.Universe.Edge(e)
			resp.Lanes = append(resp.Lanes, laneView{A: edge.A, B: edge.B, Length: edge.Length})
		}
	})
	writeJSON(w, resp)
}

type empireView struct {
	ID         galaxy.EmpireID `json:"id"`
	Name       string          `json:"name"`
	Home       galaxy.StarID   `json:"home"`
	Systems    int             `json:"systems"`
	Colonies   int             `json:"colonies"`
	Population int64           `json:"population"`
	Fleets     int             `json:"fleets"`
	Owned      []graph.NodeID  `json:"owned,omitempty"`
}

func newEmpireView(e galaxy.Empire, snap engine.EmpireSnapshot) empireView {
	return empireView{
		ID:         e.ID,
		Name:       e.Name,
		Home:       e.Home,
		Systems:    snap.Systems,
		Colonies:   snap.Colonies,
		Population: snap.Population,
		Fleets:     snap.Fleets,
	}
}

func (s *Server) handleEmpires(w http.ResponseWriter, r *http.Request) {
	var out []empireView
	s.runner.View(func(sim *engine.Simulation) {
		snaps := sim.Snapshot()
		out = make([]empireView, len(snaps))
		for i, e := range sim.Galaxy.Empires {
			out[i] = newEmpireView(e, snaps[i])
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleEmpire(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 16)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid empire id")
		return
	}
	var (
		view  empireView
		found bool
	)
	s.runner.View(func(sim *engine.Simulation) {
		e, ok := sim.Galaxy.Empire(galaxy.EmpireID(id))
		if !ok {
			return
		}
		found = true
		view = newEmpireView(*e, sim.Snapshot()[e.ID])
		view.Owned = sim.Galaxy.OwnedNodes(e.ID)
	})
	if !found {
		writeError(w, http.StatusNotFound, "empire not found")
		return
	}
	writeJSON(w, view)
}

type fleetView struct {
	ID          engine.FleetID  `json:"id"`
	Owner       galaxy.EmpireID `json:"owner"`
	Colonists   int64           `json:"colonists"`
	Node        graph.NodeID    `json:"node"`
	InTransit   bool            `json:"in_transit"`
	To          *graph.NodeID   `json:"to,omitempty"`
	Progress    float64         `json:"progress,omitempty"`
	Action      string          `json:"action"`
	Plans       int             `json:"plans"`
	Destination *galaxy.BodyID  `json:"destination,omitempty"`
	Retreating  bool            `json:"retreating"`
}

func (s *Server) handleFleets(w http.ResponseWriter, r *http.Request) {
	var (
		filter    galaxy.EmpireID
		hasFilter bool
	)
	if raw := r.URL.Query().Get("empire"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 16)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid empire")
			return
		}
		filter, hasFilter = galaxy.EmpireID(id), true
	}

	out := []fleetView{}
	s.runner.View(func(sim *engine.Simulation) {
		for _, f := range sim.Fleets() {
			if hasFilter && f.Owner != filter {
				continue
			}
			v := fleetView{
				ID:         f.ID,
				Owner:      f.Owner,
				Colonists:  f.Colonists,
				Node:       f.Node(),
				InTransit:  f.Pos.InTransit,
				Action:     f.Nav.Action.Kind.String(),
				Plans:      len(f.Nav.Plans),
				Retreating: f.Nav.Retreating,
			}
			if f.Pos.InTransit {
				to := f.Pos.To
				v.To = &to
				v.Progress = float64(f.Pos.Progress) / float64(max(f.Pos.Total, 1))
			}
			if f.HasDestination {
				d := f.Destination
				v.Destination = &d
			}
			out = append(out, v)
		}
	})
	writeJSON(w, out)
}

type pathResponse struct {
	From   graph.NodeID     `json:"from"`
	To     graph.NodeID     `json:"to"`
	Empire *galaxy.EmpireID `json:"empire,omitempty"`
	Tick   uint64           `json:"tick"`
	Nodes  []graph.NodeID   `json:"nodes"`
	Hops   int              `json:"hops"`
	Cost   int              `json:"cost"`
}

// handlePath answers /api/path?from=&to=[&empire=]. With an empire the route
// respects that empire's navigation mask.
func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, errFrom := strconv.ParseUint(q.Get("from"), 10, 32)
	to, errTo := strconv.ParseUint(q.Get("to"), 10, 32)
	if errFrom != nil || errTo != nil {
		writeError(w, http.StatusBadRequest, "from and to must be node ids")
		return
	}
	key := pathCacheKey{From: graph.NodeID(from), To: graph.NodeID(to)}
	if raw := q.Get("empire"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 16)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid empire")
			return
		}
		key.Empire, key.HasEmpire = galaxy.EmpireID(id), true
	}

	var (
		resp   pathResponse
		status int
		msg    string
	)
	s.runner.View(func(sim *engine.Simulation) {
		g := sim.Galaxy
		n := g.Universe.NodeCount()
		if int(key.From) >= n || int(key.To) >= n {
			status, msg = http.StatusNotFound, "unknown node"
			return
		}
		if key.HasEmpire && int(key.Empire) >= len(g.Empires) {
			status, msg = http.StatusNotFound, "empire not found"
			return
		}
		tick := sim.TickCount()
		entry := s.cache.Lookup(tick, key, func() pathCacheEntry {
			paths := g.Universe.Pathfinder()
			if key.HasEmpire {
				paths = g.Universe.Filter(sim.Mask(key.Empire))
			}
			p := paths.FindPath(key.From, key.To)
			if p == nil {
				return pathCacheEntry{}
			}
			return pathCacheEntry{path: p, cost: p.Cost(g.Universe)}
		})
		if entry.path == nil {
			status, msg = http.StatusNotFound, "no path"
			return
		}
		resp = pathResponse{
			From:  key.From,
			To:    key.To,
			Tick:  tick,
			Nodes: entry.path.Nodes,
			Hops:  entry.path.Hops(),
			Cost:  entry.cost,
		}
		if key.HasEmpire {
			e := key.Empire
			resp.Empire = &e
		}
	})
	if status != 0 {
		writeError(w, status, msg)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "run database disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.db.GetRuns(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("List runs")
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []db.RunRecord{}
	}
	writeJSON(w, map[string]any{"current": s.runID, "runs": runs})
}

type colonizationView struct {
	Tick      uint64          `json:"tick"`
	Fleet     engine.FleetID  `json:"fleet"`
	Empire    galaxy.EmpireID `json:"empire"`
	Body      galaxy.BodyID   `json:"body"`
	Node      graph.NodeID    `json:"node"`
	Colonists int64           `json:"colonists"`
	Outcome   engine.Outcome  `json:"outcome"`
}

func (s *Server) handleRunColonizations(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "run database disabled")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	records, err := s.db.GetColonizations(id)
	if err != nil {
		s.log.Error().Err(err).Int64("run", id).Msg("List colonizations")
		writeError(w, http.StatusInternalServerError, "list colonizations failed")
		return
	}
	out := make([]colonizationView, len(records))
	for i, rec := range records {
		out[i] = colonizationView(rec)
	}
	writeJSON(w, out)
}
