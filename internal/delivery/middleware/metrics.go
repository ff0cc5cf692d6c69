package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	deliverycontext "mlm/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// HTTPObserver records request outcomes.
type HTTPObserver interface {
	ObserveHTTP(method, path, status string, duration time.Duration)
}

// MetricsMiddleware counts requests per route and, in debug mode, logs each one.
type MetricsMiddleware struct {
	observer HTTPObserver
	logger   *slog.Logger
	debug    bool
}

func NewMetricsMiddleware(observer HTTPObserver, logger *slog.Logger, debug bool) *MetricsMiddleware {
	return &MetricsMiddleware{
		observer: observer,
		logger:   logger,
		debug:    debug,
	}
}

func (m *MetricsMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			// Render now so the observed status is the final one.
			c.Error(err)
		}

		latency := time.Since(start)
		status := c.Response().Status
		// Route templates keep label cardinality bounded.
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}

		if m.observer != nil {
			m.observer.ObserveHTTP(c.Request().Method, path, strconv.Itoa(status), latency)
		}
		if m.debug {
			m.logRequest(c, status, latency, err)
		}

		return nil
	}
}

func (m *MetricsMiddleware) logRequest(c echo.Context, status int, latency time.Duration, err error) {
	req := c.Request()
	fields := []slog.Attr{
		slog.String("request_id", deliverycontext.GetRequestID(c)),
		slog.String("method", req.Method),
		slog.String("route", c.Path()),
		slog.Int("status", status),
		slog.Duration("latency", latency),
		slog.String("remote_ip", c.RealIP()),
	}
	if req.URL.RawQuery != "" {
		fields = append(fields, slog.String("query", req.URL.RawQuery))
	}
	if err != nil {
		fields = append(fields, slog.Any("error", err))
	}

	level := slog.LevelDebug
	if status >= 500 {
		level = slog.LevelError
	}
	m.logger.LogAttrs(context.Background(), level, "HTTP Request", fields...)
}
