// Package ipcserver implements the control socket (§6): a Unix-domain
// stream listener speaking line-delimited JSON Command/Response, plus a
// `follow` mode that switches a connection to a one-way ObservabilityEvent
// stream.
package ipcserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/voicetype/voicetype/internal/logger"
	"github.com/voicetype/voicetype/internal/observability"
	"github.com/voicetype/voicetype/internal/protocol"
)

// Handlers is the set of orchestrator operations the server dispatches
// control commands to. Kept as a narrow interface so tests can supply a
// fake without constructing a full Orchestrator.
type Handlers interface {
	Start() error
	Stop() error
	Toggle() (started bool, err error)
	Cancel()
	IsRecording() bool
	ModelName() string
	LastUtteranceText(ctx context.Context) (text string, err error)
}

// Server accepts connections on a Unix-domain socket and serves the
// control protocol.
type Server struct {
	socketPath string
	handlers   Handlers
	events     *observability.Broadcaster
	log        *logger.ContextLogger

	listener net.Listener
}

// New creates a Server bound to socketPath (not yet listening).
func New(socketPath string, handlers Handlers, events *observability.Broadcaster, log *logger.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		handlers:   handlers,
		events:     events,
		log:        log.With("ipcserver"),
	}
}

// Serve listens on the configured socket path and accepts connections
// until ctx is cancelled. A stale socket file from an unclean shutdown is
// removed before binding.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.socketPath, err)
	}
	s.listener = listener

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn("accept error: %v", err)
			continue
		}
		connID := uuid.NewString()
		go s.handleConn(ctx, conn, connID)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn, connID string) {
	defer conn.Close()
	log := s.log.WithFields(map[string]interface{}{"conn": connID})

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		cmd, err := protocol.DecodeCommand(line)
		if err != nil {
			s.writeResponse(conn, log, protocol.NewErrorResponse(err.Error()))
			continue
		}

		if cmd.Type == protocol.CmdFollow {
			s.serveFollow(ctx, conn, log)
			return
		}

		resp := s.dispatch(ctx, cmd)
		s.writeResponse(conn, log, resp)

		if cmd.Type == protocol.CmdShutdown {
			_ = s.Close()
			return
		}
	}
}

// dispatch executes one command and builds its response. Each case
// mirrors §6's response-kind table.
func (s *Server) dispatch(ctx context.Context, cmd protocol.Command) protocol.Response {
	switch cmd.Type {
	case protocol.CmdStart:
		if err := s.handlers.Start(); err != nil {
			return protocol.NewErrorResponse(err.Error())
		}
		return protocol.NewOK()

	case protocol.CmdStop:
		if err := s.handlers.Stop(); err != nil {
			return protocol.NewErrorResponse(err.Error())
		}
		return s.finalTranscription(ctx)

	case protocol.CmdToggle:
		started, err := s.handlers.Toggle()
		if err != nil {
			return protocol.NewErrorResponse(err.Error())
		}
		if started {
			return protocol.NewOK()
		}
		return s.finalTranscription(ctx)

	case protocol.CmdCancel:
		s.handlers.Cancel()
		return protocol.NewOK()

	case protocol.CmdStatus:
		return protocol.NewStatusResponse(s.handlers.IsRecording(), true, s.handlers.ModelName())

	case protocol.CmdShutdown:
		return protocol.NewOK()

	default:
		return protocol.NewErrorResponse(fmt.Sprintf("unhandled command type %q", cmd.Type))
	}
}

// finalTranscription waits briefly for the utterance a just-stopped
// session produces, per scenario S5's second-toggle response.
func (s *Server) finalTranscription(ctx context.Context) protocol.Response {
	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	text, err := s.handlers.LastUtteranceText(waitCtx)
	if err != nil {
		return protocol.NewTranscriptionResponse("")
	}
	return protocol.NewTranscriptionResponse(text)
}

// serveFollow switches conn to a one-way ObservabilityEvent stream until
// the client disconnects or ctx is cancelled.
func (s *Server) serveFollow(ctx context.Context, conn net.Conn, log *logger.ContextLogger) {
	events, unsubscribe := s.events.Subscribe()
	defer unsubscribe()

	encoder := json.NewEncoder(conn)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := encoder.Encode(ev); err != nil {
				log.Debug("follow stream write failed, client likely gone: %v", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) writeResponse(conn net.Conn, log *logger.ContextLogger, resp protocol.Response) {
	encoded, err := resp.Encode()
	if err != nil {
		log.Error("failed to encode response: %v", err)
		return
	}
	if _, err := conn.Write(append(encoded, '\n')); err != nil {
		log.Debug("write response failed, client likely gone: %v", err)
	}
}
