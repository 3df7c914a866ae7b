// Package web serves the live dashboard: an embedded page, a JSON API,
// and a WebSocket stream pushing snapshots on a fixed tick.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"RelayScope/internal/engine/monitor"
	"RelayScope/internal/ports"
)

// DefaultBroadcastInterval is the dashboard push cadence.
const DefaultBroadcastInterval = time.Second

// RelayState reports the supervised relay's last observed liveness.
type RelayState interface {
	Running() bool
}

// Server owns the HTTP listener and the broadcast loop.
type Server struct {
	addr       string
	monitor    *monitor.Monitor
	ports      *ports.Set
	relayState RelayState
	interval   time.Duration

	hub      *Hub
	upgrader websocket.Upgrader
	httpSrv  *http.Server
	ln       net.Listener
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewServer(addr string, mon *monitor.Monitor, set *ports.Set, relayState RelayState, interval time.Duration) *Server {
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	return &Server{
		addr:       addr,
		monitor:    mon,
		ports:      set,
		relayState: relayState,
		interval:   interval,
		hub:        NewHub(),
		stop:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	return r
}

// Start binds the listener and launches the serve and broadcast loops.
// Cancelling ctx stops the broadcast loop; it does not touch the
// ingestion side.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.addr, err)
	}
	s.ln = ln
	s.httpSrv = &http.Server{Handler: s.routes()}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	s.wg.Add(1)
	go s.broadcastLoop(ctx)

	log.Printf("Dashboard listening on http://%s", ln.Addr())
	return nil
}

// Addr returns the bound listen address once Start has succeeded.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Shutdown stops the broadcast loop, whether or not the Start context
// was canceled first, then hangs up the dashboard sockets and drains
// the HTTP server.
func (s *Server) Shutdown(ctx context.Context) {
	s.stopOnce.Do(func() { close(s.stop) })
	s.hub.CloseAll()
	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server shutdown: %v", err)
		}
	}
	s.wg.Wait()
}

func (s *Server) broadcastLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.hub.Count() == 0 {
				continue
			}
			s.hub.Broadcast(buildPayload(s.monitor.Snapshot(time.Now())))
		case <-ctx.Done():
			log.Println("Broadcast loop stopped.")
			return
		case <-s.stop:
			log.Println("Broadcast loop stopped.")
			return
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, buildPayload(s.monitor.Snapshot(time.Now())))
}

type statusPayload struct {
	RelayRunning   bool     `json:"relay_running"`
	MonitoredPorts []uint16 `json:"monitored_ports"`
	ActiveSessions int      `json:"active_sessions"`
	CPUPercent     float64  `json:"cpu_percent"`
	MemPercent     float64  `json:"mem_percent"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := statusPayload{
		RelayRunning:   s.relayState.Running(),
		MonitoredPorts: s.ports.List(),
		ActiveSessions: s.monitor.SessionCount(),
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		st.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		st.MemPercent = vm.UsedPercent
	}
	writeJSON(w, st)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	// Paint the page right away instead of waiting out the first tick.
	// This write happens before the hub knows the connection, so it never
	// races a broadcast; after Add, the hub is the only writer.
	conn.SetWriteDeadline(time.Now().Add(s.hub.writeTimeout))
	if err := conn.WriteJSON(buildPayload(s.monitor.Snapshot(time.Now()))); err != nil {
		conn.Close()
		return
	}
	s.hub.Add(conn)

	// Reads only serve to notice the client hanging up.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.Remove(conn)
				return
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
