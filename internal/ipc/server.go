package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"layoutd/internal/logging"
)

// ServerConfig configures the IPC server.
type ServerConfig struct {
	// SocketPath is the Unix socket path.
	SocketPath string

	// Timeout bounds each request round trip.
	Timeout time.Duration
}

// Server accepts client connections and dispatches commands to the
// controller.
type Server struct {
	cfg        ServerConfig
	controller Controller
	log        *logging.Logger
	listener   net.Listener

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewServer creates an IPC server. The controller is usually the
// daemon itself.
func NewServer(cfg ServerConfig, controller Controller, log *logging.Logger) *Server {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:        cfg,
		controller: controller,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins listening on the socket.
func (s *Server) Start() error {
	if err := os.MkdirAll(filepath.Dir(s.cfg.SocketPath), 0o700); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	// Remove stale socket from a previous run.
	if err := os.Remove(s.cfg.SocketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("listen on socket: %w", err)
	}
	if err := os.Chmod(s.cfg.SocketPath, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("set socket permissions: %w", err)
	}

	s.listener = listener
	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	s.log.Info("ipc server listening", "socket", s.cfg.SocketPath)
	return nil
}

// Stop shuts the server down and removes the socket.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.log.Warn("ipc shutdown timed out")
	}

	os.Remove(s.cfg.SocketPath)
	return nil
}

// SocketPath returns the socket path.
func (s *Server) SocketPath() string {
	return s.cfg.SocketPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				if errors.Is(err, net.ErrClosed) {
					return
				}
				s.log.Warn("ipc accept failed", "err", err)
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.cfg.Timeout))

	scanner := bufio.NewScanner(conn)
	enc := json.NewEncoder(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		resp := Response{}
		if err := json.Unmarshal(line, &req); err != nil {
			resp.Error = fmt.Sprintf("bad request: %v", err)
		} else {
			resp = s.dispatch(req)
		}

		if err := enc.Encode(resp); err != nil {
			return
		}
		conn.SetDeadline(time.Now().Add(s.cfg.Timeout))
	}
}

func (s *Server) dispatch(req Request) Response {
	switch req.Command {
	case CmdStatus:
		st := s.controller.Status()
		return Response{OK: true, Status: &st}

	case CmdEnable:
		s.controller.SetEnabled(true)
		return Response{OK: true}

	case CmdDisable:
		s.controller.SetEnabled(false)
		return Response{OK: true}

	case CmdToggle:
		s.controller.SetEnabled(!s.controller.Enabled())
		st := s.controller.Status()
		return Response{OK: true, Status: &st}

	case CmdStats:
		stats := s.controller.Stats()
		return Response{OK: true, Stats: &stats}

	case CmdFixLast:
		return Response{OK: true, Applied: s.controller.FixLast()}

	case CmdAddWord:
		if req.Word == "" {
			return Response{Error: "add-word: word is required"}
		}
		if err := s.controller.AddWord(req.Word, req.Lang); err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true}

	case CmdReload:
		if err := s.controller.Reload(); err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true}

	case CmdHistory:
		limit := req.Limit
		if limit <= 0 {
			limit = 20
		}
		entries, err := s.controller.History(limit)
		if err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true, History: entries}

	default:
		return Response{Error: fmt.Sprintf("unknown command %q", req.Command)}
	}
}
