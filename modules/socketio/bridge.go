package socketio

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/animgraph/internal/command"
	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Events emitted to the server.
const (
	EventUpdateView   = "updateView"
	EventAnimationEnd = "animationEnd"
	EventCommandError = "commandError"
)

// DefaultConnectTimeout bounds the wait for the first connection.
const DefaultConnectTimeout = 10 * time.Second

// ErrConnect is returned by Run when the first connection fails.
var ErrConnect = errors.New("socket.io connection failed")

// Options configures the bridge.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// SubmitFunc queues commands on the frame loop.
type SubmitFunc func(cmds ...command.Command)

type emitFunc func(event string, args ...any)

// Bridge is a command source and a view-update sink.
type Bridge struct {
	opts   Options
	submit SubmitFunc

	mu        sync.RWMutex
	emit      emitFunc
	connected atomic.Bool
}

// New creates a bridge. Nothing connects until Run.
func New(opts Options, submit SubmitFunc) *Bridge {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.Namespace == "" {
		opts.Namespace = "/"
	}
	return &Bridge{opts: opts, submit: submit}
}

// Run connects, forwards events until ctx ends and then disconnects. It
// fails if the first connection does not succeed within the timeout;
// later disconnects are left to the client's reconnection logic.
func (b *Bridge) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("module", "socketio", "url", b.opts.URL, "namespace", b.opts.Namespace)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Bridge starting.")

	parsedURL, err := url.Parse(b.opts.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if b.opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(b.opts.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		b.connected.Store(false)
		io.Disconnect()
	}()

	b.mu.Lock()
	b.emit = func(event string, args ...any) { io.Emit(event, args...) }
	b.mu.Unlock()

	ready := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		b.connected.Store(true)
		logger.Info("Successfully connected", "sid", io.Id())
		select {
		case ready <- nil:
		default:
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		var err error = ErrConnect
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("%w: %w", ErrConnect, e)
			}
		}
		logger.Warn("Connection attempt failed", "error", err)
		select {
		case ready <- err:
		default:
		}
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		b.connected.Store(false)
		logger.Info("Disconnected", "reason", reason)
	})
	for _, name := range command.Names() {
		io.On(types.EventName(name), func(args ...any) {
			b.handle(ctx, name, args)
		})
	}

	io.Connect()

	timer := time.NewTimer(b.opts.ConnectTimeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: timed out after %s", ErrConnect, b.opts.ConnectTimeout)
	case err := <-ready:
		if err != nil {
			return err
		}
	}

	<-ctx.Done()
	logger.Debug("Bridge stopping.")
	return nil
}

// handle decodes one inbound event and submits the command.
func (b *Bridge) handle(ctx context.Context, name string, args []any) {
	logger := ctxlog.FromContext(ctx)

	var payload map[string]any
	if len(args) > 0 {
		p, ok := args[0].(map[string]any)
		if !ok {
			b.reject(ctx, name, fmt.Errorf("%w: %s: payload must be an object, got %T", command.ErrInvalidPayload, name, args[0]))
			return
		}
		payload = p
	}

	cmd, err := command.Decode(name, payload)
	if err != nil {
		b.reject(ctx, name, err)
		return
	}

	if start, ok := cmd.(command.StartAnimation); ok {
		start.OnComplete = func(finished bool) {
			b.send(EventAnimationEnd, map[string]any{
				"animationId": start.ID,
				"tag":         start.Tag,
				"finished":    finished,
			})
		}
		cmd = start
	}

	logger.Debug("Command received.", "command", name)
	b.submit(cmd)
}

func (b *Bridge) reject(ctx context.Context, name string, err error) {
	ctxlog.FromContext(ctx).Warn("Rejected command payload.", "command", name, "error", err)
	b.send(EventCommandError, map[string]any{"command": name, "error": err.Error()})
}

// CommandFailed reports a command that decoded but was rejected by the
// engine. It matches scheduler.CommandErrorFunc.
func (b *Bridge) CommandFailed(cmd command.Command, err error) {
	payload := map[string]any{"command": cmd.Name(), "error": err.Error()}
	if start, ok := cmd.(command.StartAnimation); ok {
		payload["animationId"] = start.ID
		payload["tag"] = start.Tag
	}
	b.send(EventCommandError, payload)
}

func (b *Bridge) send(event string, payload map[string]any) {
	b.mu.RLock()
	emit := b.emit
	b.mu.RUnlock()
	if emit != nil {
		emit(event, payload)
	}
}

// Connected reports whether the socket is currently connected.
func (b *Bridge) Connected() bool {
	return b.connected.Load()
}

// UpdateView emits the update while connected and drops it otherwise.
func (b *Bridge) UpdateView(ctx context.Context, viewTag int, props map[string]any) error {
	if !b.connected.Load() {
		ctxlog.FromContext(ctx).Debug("Dropping view update, not connected.", "view", viewTag)
		return nil
	}
	b.send(EventUpdateView, map[string]any{"viewTag": viewTag, "props": props})
	return nil
}
