package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"digital.vasic.verify/pkg/logging"
	"digital.vasic.verify/pkg/metrics"
)

const (
	clientBuffer = 32
	writeWait    = 5 * time.Second
)

// WebSocketServer streams run events to live dashboards over
// WebSocket (/ws) and Server-Sent Events (/events), and serves
// the dashboard state (/dashboard) and run metrics (/metrics).
type WebSocketServer struct {
	mu        sync.RWMutex
	collector *EventCollector
	dashboard *DashboardData
	metrics   *metrics.PrometheusMetrics
	logger    logging.Logger
	clients   map[chan []byte]struct{}
	addr      string
	server    *http.Server
	listener  net.Listener
	upgrader  websocket.Upgrader
}

// ServerOption configures a WebSocketServer.
type ServerOption func(*WebSocketServer)

// WithServerMetrics exposes m at /metrics.
func WithServerMetrics(m *metrics.PrometheusMetrics) ServerOption {
	return func(s *WebSocketServer) {
		s.metrics = m
	}
}

// WithServerLogger sets the logger for connection events.
func WithServerLogger(l logging.Logger) ServerOption {
	return func(s *WebSocketServer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewWebSocketServer creates a monitor server and subscribes it
// to collector.
func NewWebSocketServer(
	addr string,
	collector *EventCollector,
	dashboard *DashboardData,
	opts ...ServerOption,
) *WebSocketServer {
	s := &WebSocketServer{
		addr:      addr,
		collector: collector,
		dashboard: dashboard,
		logger:    logging.NullLogger{},
		clients:   make(map[chan []byte]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	collector.OnEvent(func(event TestEvent) {
		s.dashboard.UpdateFromEvent(event)
		data, err := json.Marshal(event)
		if err != nil {
			return
		}
		s.broadcast(data)
	})
	return s
}

// Handler returns the server's routes.
func (s *WebSocketServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/events", s.handleSSE)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start serves until ctx is done or Stop is called.
func (s *WebSocketServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("monitor server: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	s.logger.Info("monitor_started",
		logging.StringField("addr", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("monitor server: %w", err)
	}
	return nil
}

// Addr returns the listening address once Start has bound it.
func (s *WebSocketServer) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server.
func (s *WebSocketServer) Stop(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// ClientCount returns the number of connected stream clients.
func (s *WebSocketServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

type wsMessage struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

func (s *WebSocketServer) handleWebSocket(
	w http.ResponseWriter,
	r *http.Request,
) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket_upgrade_failed", logging.ErrorField(err))
		return
	}
	defer conn.Close()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	// Reads only detect the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	snap := s.dashboard.Snapshot()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(wsMessage{"dashboard", &snap}); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case data := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			msg := wsMessage{"event", json.RawMessage(data)}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

func (s *WebSocketServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	snap := s.dashboard.Snapshot()
	if data, err := json.Marshal(&snap); err == nil {
		fmt.Fprintf(w, "event: dashboard\ndata: %s\n\n", data)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			fmt.Fprintf(w, "event: test\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *WebSocketServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	snap := s.dashboard.Snapshot()
	_ = json.NewEncoder(w).Encode(&snap)
}

func (s *WebSocketServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	if err := s.metrics.WriteText(w); err != nil {
		s.logger.Warn("metrics_write_failed", logging.ErrorField(err))
	}
}

func (s *WebSocketServer) subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *WebSocketServer) unsubscribe(ch chan []byte) {
	s.mu.Lock()
	delete(s.clients, ch)
	s.mu.Unlock()
}

func (s *WebSocketServer) broadcast(data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.clients {
		select {
		case ch <- data:
		default:
			// Client too slow, skip
		}
	}
}
