package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/BlinkZer0/Phys-MCP-sub002/internal/artifacts"
	"github.com/BlinkZer0/Phys-MCP-sub002/internal/protocol"
	"github.com/BlinkZer0/Phys-MCP-sub002/internal/worker"
)

const (
	serverName      = "phys-mcp"
	serverVersion   = "0.1.0"
	protocolVersion = "2024-11-05"
)

// Caller issues one correlated call against the computation worker.
// Satisfied by *worker.Client; tests substitute stubs.
type Caller interface {
	Call(ctx context.Context, method string, params interface{}) (json.RawMessage, error)
}

// Handler processes one request's params and returns a result value or an
// error. Returning a *protocol.ErrorObject preserves its code, message,
// and data on the wire; any other error becomes an Internal Error.
type Handler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// Server dispatches inbound protocol messages to handlers.
//
// Method lookup is layered: user registrations first, then the built-in
// protocol-lifecycle handlers (initialize, tools/list, tools/call, ping).
// Registering a built-in method name overrides the default.
type Server struct {
	log    zerolog.Logger
	worker Caller
	store  *artifacts.Store

	mu       sync.RWMutex
	handlers map[string]Handler
	builtins map[string]Handler
}

// Config wires a Server.
type Config struct {
	// Worker performs the actual computation. Required for the catalog
	// tools; local tools work without it.
	Worker Caller

	// Store persists plot artifacts. Optional; without it results pass
	// through unannotated.
	Store *artifacts.Store

	Log zerolog.Logger
}

// New creates a Server with the built-in method set installed.
func New(cfg Config) *Server {
	s := &Server{
		log:      cfg.Log,
		worker:   cfg.Worker,
		store:    cfg.Store,
		handlers: make(map[string]Handler),
	}
	s.builtins = map[string]Handler{
		"initialize": s.handleInitialize,
		"tools/list": s.handleToolsList,
		"tools/call": s.handleToolsCall,
		"ping":       s.handlePing,
	}
	return s
}

// Register installs a handler for method, shadowing any built-in default
// of the same name.
func (s *Server) Register(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

func (s *Server) lookup(method string) Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h, ok := s.handlers[method]; ok {
		return h
	}
	return s.builtins[method]
}

// noReply reports whether method follows the no-reply convention even when
// carrying an id.
func noReply(method string) bool {
	return strings.HasPrefix(method, "notifications/")
}

// Handle routes one inbound message and returns the outbound response, or
// nil when the message must not be answered (notifications and no-reply
// methods).
func (s *Server) Handle(ctx context.Context, msg protocol.Message) *protocol.Message {
	switch msg.Kind {
	case protocol.KindNotification:
		s.runNotification(ctx, msg)
		return nil
	case protocol.KindRequest:
		if noReply(msg.Method) {
			s.runNotification(ctx, msg)
			return nil
		}
		resp := s.runRequest(ctx, msg)
		return &resp
	default:
		// A Response arriving on the server channel has no meaning here.
		s.log.Debug().Msg("server: ignoring inbound response message")
		return nil
	}
}

func (s *Server) runNotification(ctx context.Context, msg protocol.Message) {
	h := s.lookup(msg.Method)
	if h == nil {
		return
	}
	// Side effect only. Failures must never synthesize a response.
	if _, err := s.invoke(ctx, h, msg.Params); err != nil {
		s.log.Warn().Err(err).Str("method", msg.Method).Msg("server: notification handler failed")
	}
}

func (s *Server) runRequest(ctx context.Context, msg protocol.Message) protocol.Message {
	h := s.lookup(msg.Method)
	if h == nil {
		return protocol.NewError(msg.ID, protocol.Errorf(protocol.CodeMethodNotFound, "Method not found: %s", msg.Method))
	}

	result, err := s.invoke(ctx, h, msg.Params)
	if err != nil {
		return protocol.NewError(msg.ID, errorObjectFor(err))
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return protocol.NewError(msg.ID, protocol.Errorf(protocol.CodeInternalError, "marshal result: %v", err))
	}
	return protocol.NewResult(msg.ID, raw)
}

// invoke guards a handler call; a panicking handler is reported as an
// error rather than tearing down the channel loop.
func (s *Server) invoke(ctx context.Context, h Handler, params json.RawMessage) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = protocol.Errorf(protocol.CodeInternalError, "handler panic: %v", r)
		}
	}()
	return h(ctx, params)
}

// errorObjectFor maps handler and worker failures onto the wire taxonomy.
// Domain errors pass through intact; everything else gets a bridge code.
func errorObjectFor(err error) *protocol.ErrorObject {
	var eo *protocol.ErrorObject
	if errors.As(err, &eo) {
		return eo
	}
	var te *worker.TimeoutError
	if errors.As(err, &te) {
		return protocol.Errorf(protocol.CodeTimeout, "%s", te.Error())
	}
	var se *worker.StartupError
	if errors.As(err, &se) {
		return protocol.Errorf(protocol.CodeWorkerStartup, "%s", se.Error())
	}
	switch {
	case errors.Is(err, worker.ErrUnavailable):
		return protocol.Errorf(protocol.CodeWorkerUnavailable, "%s", err.Error())
	case errors.Is(err, worker.ErrClosed), errors.Is(err, context.Canceled):
		return protocol.Errorf(protocol.CodeCancelled, "%s", err.Error())
	default:
		return &protocol.ErrorObject{Code: protocol.CodeInternalError, Message: "Internal error", Data: err.Error()}
	}
}

// Run reads frames from r and writes responses to w until r is exhausted
// or ctx is cancelled.
//
// A line that fails to decode is answered with a Parse Error carrying a
// null id, since the malformed message's real id cannot be trusted; the
// channel itself keeps going.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	dec := protocol.NewDecoder(r)
	enc := protocol.NewEncoder(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := dec.Next()
		if err != nil {
			var de *protocol.DecodeError
			if errors.As(err, &de) {
				s.log.Warn().Err(de.Err).Msg("server: undecodable request line")
				resp := protocol.NewError(protocol.NullID, protocol.Errorf(protocol.CodeParseError, "Parse error"))
				if encErr := enc.Encode(resp); encErr != nil {
					return encErr
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if resp := s.Handle(ctx, msg); resp != nil {
			if err := enc.Encode(*resp); err != nil {
				return err
			}
		}
	}
}
