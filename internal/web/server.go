package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ServerOption configures Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	host            string
	port            int
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	gatherer        prometheus.Gatherer
	log             zerolog.Logger
}

// Server serves the watchlist page, JSON API, websocket updates and metrics.
type Server struct {
	echo    *echo.Echo
	handler *Handler
	hub     *Hub
	config  *serverConfig
	log     zerolog.Logger
}

// NewServer wires routes for wl.
func NewServer(wl Watchlist, opts ...ServerOption) *Server {
	cfg := &serverConfig{
		host:            "127.0.0.1",
		port:            8080,
		readTimeout:     10 * time.Second,
		writeTimeout:    40 * time.Second,
		shutdownTimeout: 10 * time.Second,
		gatherer:        prometheus.DefaultGatherer,
		log:             zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	log := cfg.log.With().Str("component", "http").Logger()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.readTimeout
	e.Server.WriteTimeout = cfg.writeTimeout

	e.Use(recoverPanics(log))
	e.Use(requestLogging(log))

	hub := NewHub(log)
	h := NewHandler(wl, hub, log)
	h.RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{})))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	wl.Subscribe(func() { hub.Broadcast(h.snapshot()) })

	return &Server{echo: e, handler: h, hub: hub, config: cfg, log: log}
}

// Start listens in the background.
func (s *Server) Start() {
	addr := fmt.Sprintf("%s:%d", s.config.host, s.config.port)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server error")
		}
	}()
}

// Stop gracefully shuts down the server and closes websocket clients.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.shutdownTimeout)
	defer cancel()
	s.hub.Close()
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.log.Info().Msg("http server stopped")
	return nil
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func WithHost(host string) ServerOption {
	return func(c *serverConfig) { c.host = host }
}

func WithPort(port int) ServerOption {
	return func(c *serverConfig) { c.port = port }
}

// WithTimeouts sets read/write/shutdown timeouts.
func WithTimeouts(read, write, shutdown time.Duration) ServerOption {
	return func(c *serverConfig) {
		c.readTimeout = read
		c.writeTimeout = write
		c.shutdownTimeout = shutdown
	}
}

// WithGatherer sets the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) ServerOption {
	return func(c *serverConfig) { c.gatherer = g }
}

func WithLogger(log zerolog.Logger) ServerOption {
	return func(c *serverConfig) { c.log = log }
}

// recoverPanics turns a handler panic into a 500 response.
func recoverPanics(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("panic", fmt.Sprint(r)).Bytes("stack", debug.Stack()).Msg("handler panic")
					err = c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
				}
			}()
			return next(c)
		}
	}
}

// requestLogging logs each request with its status and latency.
func requestLogging(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			ev := log.Debug()
			if status >= http.StatusInternalServerError {
				ev = log.Error()
			}
			ev.Str("method", req.Method).
				Str("path", c.Path()).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Msg("http request")
			return nil
		}
	}
}
