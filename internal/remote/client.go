package remote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/specialistvlad/mtlsim/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// ErrRemote wraps the message of an `error` event sent by the server.
var ErrRemote = errors.New("remote simulator error")

type reply struct {
	state *State
	err   error
}

// Client talks to a Server. Requests are sent one at a time.
type Client struct {
	io      *socket.Socket
	timeout time.Duration
	replies chan reply

	mu sync.Mutex
}

// Dial connects to the server at rawURL, e.g. `http://localhost:8080`. An
// empty URL path means DefaultPath.
func Dial(ctx context.Context, rawURL string, timeout time.Duration) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL %q must include a scheme and a host", rawURL)
	}
	path := parsedURL.Path
	if path == "" || path == "/" {
		path = DefaultPath
	}
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)

	opts := socket.DefaultOptions()
	opts.SetPath(path)
	opts.SetReconnection(false)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket("/", opts)

	c := &Client{io: io, timeout: timeout, replies: make(chan reply, 8)}
	connected := make(chan error, 1)

	io.On(types.EventName("connect"), func(...any) {
		logger.Debug("Connected to simulation server.", "sid", io.Id())
		select {
		case connected <- nil:
		default:
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connected <- err:
		default:
		}
	})
	io.On(types.EventName(EventState), func(data ...any) {
		var st State
		var err error
		if len(data) == 0 {
			err = errors.New("empty state reply")
		} else {
			err = decode(data[0], &st)
		}
		c.deliver(reply{state: &st, err: err})
	})
	io.On(types.EventName(EventError), func(data ...any) {
		var er ErrorReply
		if len(data) > 0 {
			_ = decode(data[0], &er)
		}
		c.deliver(reply{err: fmt.Errorf("%w: %s: %s", ErrRemote, er.Event, er.Message)})
	})

	io.Connect()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	select {
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("timed out while waiting for initial connection to %s", rawURL)
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("failed to connect to %s: %w", rawURL, err)
		}
	}
	return c, nil
}

func (c *Client) deliver(r reply) {
	select {
	case c.replies <- r:
	default:
	}
}

// Request emits event with an optional payload and waits for the reply.
func (c *Client) Request(ctx context.Context, event string, payload any) (*State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Drop replies nobody waited for.
	for len(c.replies) > 0 {
		<-c.replies
	}

	var err error
	if payload == nil {
		err = c.io.Emit(event)
	} else {
		err = c.io.Emit(event, payload)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to emit %s: %w", event, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("timed out waiting for reply to %s", event)
	case r := <-c.replies:
		return r.state, r.err
	}
}

// Reset runs the remote reset sequence.
func (c *Client) Reset(ctx context.Context) (*State, error) {
	return c.Request(ctx, EventReset, nil)
}

// Cycle advances the remote simulator by n clock cycles.
func (c *Client) Cycle(ctx context.Context, n int) (*State, error) {
	return c.Request(ctx, EventCycle, CycleRequest{N: n})
}

// Eval settles the remote combinational logic.
func (c *Client) Eval(ctx context.Context) (*State, error) {
	return c.Request(ctx, EventEval, nil)
}

// Poke writes value to the signal at path.
func (c *Client) Poke(ctx context.Context, path string, value uint64) (*State, error) {
	return c.Request(ctx, EventPoke, PokeRequest{Path: path, Value: Value(value)})
}

// Peek reads the signals at paths.
func (c *Client) Peek(ctx context.Context, paths ...string) (*State, error) {
	return c.Request(ctx, EventPeek, PeekRequest{Paths: paths})
}

// Close disconnects from the server.
func (c *Client) Close() {
	c.io.Disconnect()
}
