// Package mirror broadcasts rendered frames to browsers over websocket.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/donut/config"
	"github.com/lixenwraith/donut/core"
	"github.com/lixenwraith/donut/status"
)

// Message is the JSON payload of one frame
type Message struct {
	Frame  uint64   `json:"frame"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`
}

// client holds one viewer; send keeps only the newest unsent frame
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// Server serves the viewer page and fans frames out to connected clients
// WriteFrame never blocks on the network: slow clients skip frames
type Server struct {
	cfg      config.Mirror
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}

	srv      *http.Server
	addr     string
	frames   atomic.Uint64
	disabled atomic.Bool

	status        *status.Registry
	statClients   *atomic.Int64
	statSkipped   *atomic.Int64
	statDropped   *atomic.Int64
	statBroadcast *atomic.Int64
}

// New creates a mirror with the default config; Init may override it
// reg receives client counters and is served at /status; nil uses a private registry
func New(reg *status.Registry) *Server {
	if reg == nil {
		reg = status.NewRegistry()
	}
	return &Server{
		status:        reg,
		statClients:   reg.Ints.Get("mirror.clients"),
		statSkipped:   reg.Ints.Get("mirror.frames_skipped"),
		statDropped:   reg.Ints.Get("mirror.clients_dropped"),
		statBroadcast: reg.Ints.Get("mirror.frames_sent"),
		cfg: config.Default().Mirror,
		upgrader: websocket.Upgrader{
			// Viewer is served from the same process; any origin may watch
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// Name implements service.Service
func (s *Server) Name() string {
	return "mirror"
}

// Dependencies implements service.Service
// status outlives the mirror so the final counters include its clients
func (s *Server) Dependencies() []string {
	return []string{"status"}
}

// Init implements service.Service
// args[0]: *config.Config (optional); an empty Mirror.Listen disables the server
func (s *Server) Init(args ...any) error {
	if len(args) > 0 {
		if cfg, ok := args[0].(*config.Config); ok && cfg != nil {
			s.cfg = cfg.Mirror
		}
	}
	s.disabled.Store(s.cfg.Listen == "")
	return nil
}

// Start implements service.Service - binds the listener and serves in the background
func (s *Server) Start() error {
	if s.disabled.Load() {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("mirror: listen %s: %w", s.cfg.Listen, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.srv
	s.mu.Unlock()

	core.Go(func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("mirror: serve: %v", err)
		}
	})
	log.Printf("mirror: serving on http://%s/", s.addr)
	return nil
}

// Stop implements service.Service - closes the listener and every client
func (s *Server) Stop() error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	// Hijacked websocket connections are not closed by Shutdown
	for _, c := range clients {
		s.remove(c)
	}

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// Addr returns the bound address once started
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Handler routes the viewer page and the websocket endpoint
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveHome)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/status", s.serveStatus)
	return mux
}

// Clients returns the number of connected viewers
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) serveHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(viewerPage))
}

func (s *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.status.Snapshot()); err != nil {
		log.Printf("mirror: status: %v", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("mirror: upgrade: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 1),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.statClients.Store(int64(len(s.clients)))
	s.mu.Unlock()
	log.Printf("mirror: client %s connected", conn.RemoteAddr())

	core.Go(func() { s.writeLoop(c) })

	// Viewers never send; reading drives close and ping handling
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.remove(c)
}

func (s *Server) writeLoop(c *client) {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.statDropped.Add(1)
				log.Printf("mirror: dropping client %s: %v", c.conn.RemoteAddr(), err)
				s.remove(c)
				return
			}
		}
	}
}

// remove unregisters and closes a client; safe to call more than once
func (s *Server) remove(c *client) {
	c.once.Do(func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.statClients.Store(int64(len(s.clients)))
		s.mu.Unlock()
		close(c.done)
		c.conn.Close()
	})
}

// WriteFrame implements frame.Sink
func (s *Server) WriteFrame(glyphs []byte, width, height int) error {
	n := s.frames.Add(1) - 1
	if s.Clients() == 0 {
		return nil
	}
	if len(glyphs) < width*height {
		return fmt.Errorf("mirror: frame %d: %d cells for %dx%d", n, len(glyphs), width, height)
	}

	msg := Message{Frame: n, Width: width, Height: height, Rows: make([]string, height)}
	for y := range msg.Rows {
		msg.Rows[y] = string(glyphs[y*width : (y+1)*width])
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("mirror: encode frame %d: %w", n, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		// Replace a pending frame the client has not consumed yet
		select {
		case <-c.send:
			s.statSkipped.Add(1)
		default:
		}
		select {
		case c.send <- data:
		default:
			s.statSkipped.Add(1)
		}
	}
	s.statBroadcast.Add(1)
	return nil
}
