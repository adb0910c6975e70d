package ipc

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/stratawm/internal/runtimepath"
	"github.com/1broseidon/stratawm/internal/wm"
)

// Server answers read-only status queries over a unix socket. It never
// touches the engine: the event loop publishes state snapshots into the
// server after every iteration, and queries are answered from the latest one.
type Server struct {
	socketPath string
	listener   net.Listener
	log        zerolog.Logger
	startTime  time.Time
	desktops   int

	mu   sync.RWMutex
	snap wm.Snapshot

	shutdownMu   sync.Mutex
	shuttingDown bool
}

// NewServer creates a new IPC server
func NewServer(log zerolog.Logger, desktops int) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		log:        log,
		startTime:  time.Now(),
		desktops:   desktops,
	}, nil
}

// Update replaces the published snapshot. Safe to call from the event loop
// while queries are in flight.
func (s *Server) Update(snap wm.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.log.Info().Str("socket", s.socketPath).Msg("IPC server listening")

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.log.Error().Err(err).Msg("IPC accept error")
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.log.Error().Err(err).Msg("IPC read error")
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal response")
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.log.Error().Err(err).Msg("failed to send response")
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandGetWindows:
		return s.handleGetWindows()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	status := StatusData{
		FocusedWindow: uint32(snap.Focus),
		WindowCount:   len(snap.Windows),
		MonitorCount:  len(snap.Monitors),
		Desktops:      s.desktops,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetMonitors() *Response {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	infos := make([]MonitorInfo, len(snap.Monitors))
	for i, m := range snap.Monitors {
		infos[i] = MonitorInfo{
			Output:  uint32(m.Output),
			Desktop: m.Desktop,
			X:       m.Geometry.X,
			Y:       m.Geometry.Y,
			Width:   m.Geometry.W,
			Height:  m.Geometry.H,
		}
	}

	resp, _ := NewOKResponse(MonitorsData{Monitors: infos})
	return resp
}

func (s *Server) handleGetWindows() *Response {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	infos := make([]WindowInfo, len(snap.Windows))
	for i, w := range snap.Windows {
		infos[i] = WindowInfo{
			ID:         uint32(w.ID),
			Desktop:    w.Desktop,
			Mapped:     w.Mapped,
			Floating:   w.Floating,
			Fullscreen: w.Fullscreen,
			X:          w.Geometry.X,
			Y:          w.Geometry.Y,
			Width:      w.Geometry.W,
			Height:     w.Geometry.H,
			Focused:    w.ID == snap.Focus,
		}
	}

	resp, _ := NewOKResponse(WindowsData{Windows: infos})
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
