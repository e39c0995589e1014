package credcache

import (
	"context"
	"net"
	"time"

	fiber "github.com/gofiber/fiber/v3"
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/credcache/internal/sentinel"
)

// ManagementHTTPOption configures the management HTTP server.
type ManagementHTTPOption func(*ManagementHTTPServer)

// ManagementHTTPServer holds Fiber app and settings. It exposes the cache's
// observability and invalidation surface to the embedding service's ops
// tooling; it is not the fronting transport for lookups.
type ManagementHTTPServer struct {
	addr         string
	app          *fiber.App
	readTimeout  time.Duration
	writeTimeout time.Duration
	authFunc     func(fiber.Ctx) error
	ln           net.Listener
	started      bool
}

// WithMgmtAuth sets an auth function (return error to block).
func WithMgmtAuth(fn func(fiber.Ctx) error) ManagementHTTPOption {
	return func(s *ManagementHTTPServer) { s.authFunc = fn }
}

// WithMgmtReadTimeout sets read timeout.
func WithMgmtReadTimeout(d time.Duration) ManagementHTTPOption {
	return func(s *ManagementHTTPServer) { s.readTimeout = d }
}

// WithMgmtWriteTimeout sets write timeout.
func WithMgmtWriteTimeout(d time.Duration) ManagementHTTPOption {
	return func(s *ManagementHTTPServer) { s.writeTimeout = d }
}

const (
	defaultReadTimeout  = 5 * time.Second
	defaultWriteTimeout = 5 * time.Second
)

// NewManagementHTTPServer builds an HTTP server holder (lazy start).
func NewManagementHTTPServer(addr string, opts ...ManagementHTTPOption) *ManagementHTTPServer {
	srv := &ManagementHTTPServer{
		addr:         addr,
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts { // apply options
		opt(srv)
	}

	srv.app = fiber.New(fiber.Config{
		ReadTimeout:  srv.readTimeout,
		WriteTimeout: srv.writeTimeout,
	})

	return srv
}

// Start launches the listener (idempotent). The caller provides the service
// handle for handler wiring.
func (s *ManagementHTTPServer) Start(ctx context.Context, svc Service) error {
	if s.started { // idempotent
		return nil
	}

	s.mountRoutes(svc)

	lc := net.ListenConfig{}

	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return ewrap.Wrap(err, "mgmt listen")
	}

	s.ln = ln

	go func() { // serve in background; the server is optional ops surface
		serveErr := s.app.Listener(ln)
		if serveErr != nil {
			_ = serveErr
		}
	}()

	s.started = true

	return nil
}

// Address returns the bound address (useful when passing ":0" for ephemeral port). Empty if not started yet.
func (s *ManagementHTTPServer) Address() string {
	if s.ln == nil {
		return ""
	}

	return s.ln.Addr().String()
}

// Shutdown stops the server.
func (s *ManagementHTTPServer) Shutdown(ctx context.Context) error {
	if !s.started {
		return nil
	}

	ch := make(chan error, 1)

	go func() {
		ch <- s.app.Shutdown()
	}()

	select {
	case <-ctx.Done():
		return sentinel.ErrMgmtHTTPShutdownTimeout
	case err := <-ch:
		return err
	}
}

// mountRoutes registers endpoints onto the Fiber app.
func (s *ManagementHTTPServer) mountRoutes(svc Service) {
	useAuth := s.wrapAuth

	s.app.Get("/health", useAuth(func(fiberCtx fiber.Ctx) error { return fiberCtx.SendString("ok") }))

	s.app.Get("/stats", useAuth(func(fiberCtx fiber.Ctx) error {
		return fiberCtx.JSON(svc.Stats())
	}))

	s.app.Get("/config", useAuth(func(fiberCtx fiber.Ctx) error {
		cfg := map[string]any{
			"capacity": svc.Capacity(),
			"count":    svc.Count(),
			"ttl":      svc.TTL().String(),
		}

		return fiberCtx.JSON(cfg)
	}))

	s.app.Post("/invalidate", useAuth(func(fiberCtx fiber.Ctx) error {
		ctx := fiberCtx.Context()

		switch {
		case fiberCtx.Query("all") == "true":
			svc.InvalidateAll(ctx)

			return fiberCtx.JSON(map[string]any{"invalidated": "all"})

		case fiberCtx.Query("key") != "":
			svc.Invalidate(ctx, fiberCtx.Query("key"))

			return fiberCtx.JSON(map[string]any{"invalidated": 1})

		case fiberCtx.Query("id") != "":
			svc.InvalidateByID(ctx, fiberCtx.Query("id"))

			return fiberCtx.JSON(map[string]any{"invalidated": 1})

		case fiberCtx.Query("pattern") != "":
			count := svc.InvalidatePattern(ctx, fiberCtx.Query("pattern"))

			return fiberCtx.JSON(map[string]any{"invalidated": count})
		}

		return fiber.NewError(fiber.StatusBadRequest, "one of key, id, pattern, or all=true is required")
	}))
}

// wrapAuth returns an auth-wrapped handler if authFunc provided.
func (s *ManagementHTTPServer) wrapAuth(handler fiber.Handler) fiber.Handler { //nolint:ireturn
	if s.authFunc == nil {
		return handler
	}

	return func(fiberCtx fiber.Ctx) error {
		authErr := s.authFunc(fiberCtx)
		if authErr != nil {
			return authErr
		}

		return handler(fiberCtx)
	}
}
