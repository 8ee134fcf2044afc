package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/mtlsim/internal/ctxlog"
	"github.com/zishang520/socket.io/v2/socket"
)

// DefaultPath is the socket.io endpoint path.
const DefaultPath = "/socket.io"

// Server exposes one Session over socket.io. It also answers `/health`.
type Server struct {
	session *Session
	io      *socket.Server
	handler http.Handler

	httpServer *http.Server
}

// NewServer creates a server for session. Nothing is listened on until
// Serve is called; Handler can be mounted on any HTTP server instead.
func NewServer(ctx context.Context, session *Session) *Server {
	logger := ctxlog.FromContext(ctx).With("session", session.ID())

	opts := socket.DefaultServerOptions()
	opts.SetServeClient(false)
	io := socket.NewServer(nil, opts)

	io.On("connection", func(clients ...any) {
		c := clients[0].(*socket.Socket)
		connLogger := logger.With("sid", c.Id())
		connLogger.Info("Client connected.")
		connCtx := ctxlog.WithLogger(ctx, connLogger)

		for _, event := range Events {
			c.On(event, func(args ...any) {
				var payload any
				if len(args) > 0 {
					payload = args[0]
				}
				state, err := session.Handle(connCtx, event, payload)
				if err != nil {
					connLogger.Warn("Request failed.", "event", event, "error", err)
					_ = c.Emit(EventError, session.ErrorReply(event, err))
					return
				}
				_ = c.Emit(EventState, state)
			})
		}

		c.On("disconnect", func(reason ...any) {
			connLogger.Info("Client disconnected.", "reason", reason)
		})
	})

	mux := http.NewServeMux()
	mux.Handle(DefaultPath+"/", io.ServeHandler(opts))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})

	return &Server{session: session, io: io, handler: mux}
}

// Handler returns the HTTP handler serving socket.io and `/health`.
func (s *Server) Handler() http.Handler { return s.handler }

// Session returns the served session.
func (s *Server) Session() *Session { return s.session }

// Serve listens on addr and blocks until ctx is cancelled or the listener
// fails.
func (s *Server) Serve(ctx context.Context, addr string) error {
	logger := ctxlog.FromContext(ctx)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.httpServer = &http.Server{Handler: s.handler}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Simulation server starting.", "address", ln.Addr().String(), "path", DefaultPath, "session", s.session.ID())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.Close()
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("simulation server failed: %w", err)
		}
		return nil
	}
}

// Close disconnects every client and shuts the HTTP server down.
func (s *Server) Close() error {
	s.io.Close(nil)
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
