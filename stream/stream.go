// Package stream serves noise maps over websocket. A client sends a Request
// as JSON and receives a Header, one Row per map row and a Done message, or
// an Error. Requests on one connection are answered in order.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/xnoise/config"
	"github.com/pthm-cable/xnoise/module"
	"github.com/pthm-cable/xnoise/noisemap"
	"github.com/pthm-cable/xnoise/telemetry"
)

// ErrTooLarge is returned for a request above the configured size limit.
var ErrTooLarge = errors.New("requested map too large")

// Server renders maps from one module graph on request.
type Server struct {
	graph *module.Graph
	root  module.ID
	nodes map[string]module.ID

	maxSize      int
	writeTimeout time.Duration
	workers      int

	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	passes atomic.Int64
}

// New returns a server for g. nodes resolves request node names and may be nil.
func New(g *module.Graph, root module.ID, nodes map[string]module.ID, cfg config.ServerConfig, workers int) *Server {
	return &Server{
		graph:        g,
		root:         root,
		nodes:        nodes,
		maxSize:      cfg.MaxSize,
		writeTimeout: cfg.WriteTimeout,
		workers:      workers,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Handler returns the HTTP routes: /ws for the stream and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok clients=%d passes=%d\n", s.Clients(), s.passes.Load())
	})
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	slog.Info("stream_listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeClients()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Passes returns the number of maps generated so far.
func (s *Server) Passes() int64 { return s.passes.Load() }

// ServeWS upgrades the connection and answers requests until the client leaves.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stream_upgrade_failed", "error", err)
		return
	}
	defer conn.Close()

	mu := &sync.Mutex{}
	s.clientsMu.Lock()
	s.clients[conn] = mu
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()
	slog.Debug("stream_client_connected", "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("stream_read_failed", "remote", r.RemoteAddr, "error", err)
			}
			return
		}
		var req Request
		err = json.Unmarshal(data, &req)
		if req.ID == "" {
			req.ID = telemetry.NewRunID()
		}
		if err == nil {
			err = s.serve(ctx, conn, mu, req)
		}
		if err != nil {
			slog.Warn("stream_request_failed", "id", req.ID, "error", err)
			if werr := s.write(conn, mu, Error{Type: TypeError, ID: req.ID, Error: err.Error()}); werr != nil {
				return
			}
		}
	}
}

func (s *Server) serve(ctx context.Context, conn *websocket.Conn, mu *sync.Mutex, req Request) error {
	if s.maxSize > 0 && (req.Width > s.maxSize || req.Height > s.maxSize) {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrTooLarge, req.Width, req.Height, s.maxSize)
	}
	root := s.root
	if req.Node != "" {
		id, ok := s.nodes[req.Node]
		if !ok {
			return fmt.Errorf("node %q: %w", req.Node, module.ErrUnknownModule)
		}
		root = id
	}
	src, err := s.graph.Module(root)
	if err != nil {
		return err
	}
	b := noisemap.StandardBounds(req.Projection)
	if req.Bounds != nil {
		b = *req.Bounds
	}

	m, err := noisemap.New(req.Width, req.Height, src)
	if err != nil {
		return err
	}
	defer m.Dispose()
	m.Workers = s.workers

	start := time.Now()
	if err := m.Generate(ctx, req.Projection, b, req.Seamless); err != nil {
		return err
	}
	pass := int(s.passes.Add(1))
	elapsed := time.Since(start)

	var values []float32
	if req.Normalize {
		values, _, _, err = m.NormalizedData(true, 0, 0)
	} else {
		values, _, _, err = m.Data(true, 0, 0)
	}
	if err != nil {
		return err
	}

	if err := s.write(conn, mu, Header{
		Type:       TypeHeader,
		ID:         req.ID,
		Node:       req.Node,
		Width:      req.Width,
		Height:     req.Height,
		Projection: req.Projection,
		Bounds:     b,
		Seamless:   req.Seamless,
	}); err != nil {
		return err
	}
	for y := 0; y < req.Height; y++ {
		row := Row{Type: TypeRow, ID: req.ID, Y: y, Data: encodeRow(values[y*req.Width : (y+1)*req.Width])}
		if err := s.write(conn, mu, row); err != nil {
			return err
		}
	}

	stats := telemetry.ComputeMapStats(values)
	stats.RunID = req.ID
	stats.Pass = pass
	stats.Projection = req.Projection.String()
	stats.Width, stats.Height = req.Width, req.Height
	stats.DurationMS = float64(elapsed.Microseconds()) / 1000
	if elapsed > 0 {
		stats.SamplesPerSec = float64(req.Width*req.Height) / elapsed.Seconds()
	}
	slog.Info("stream_map_sent", "stats", stats)
	return s.write(conn, mu, Done{Type: TypeDone, ID: req.ID, Stats: stats})
}

func (s *Server) write(conn *websocket.Conn, mu *sync.Mutex, v any) error {
	mu.Lock()
	defer mu.Unlock()
	if s.writeTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			return err
		}
	}
	return conn.WriteJSON(v)
}

func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for conn, mu := range s.clients {
		mu.Lock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		mu.Unlock()
		conn.Close()
	}
}
