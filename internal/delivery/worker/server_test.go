package worker

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"mlm/config"
	"mlm/internal/delivery/worker/handler"
	"mlm/internal/infra/cache"

	"github.com/stretchr/testify/assert"
)

func TestWorkerHealth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pushHandler := handler.NewPushHandler(handler.PushHandlerParams{
		Config:      &config.Config{},
		Logger:      logger,
		StatusCache: cache.NewOrderStatusCache(cache.StoreParams{Config: &config.Config{}}),
	})
	e := NewEcho(logger, pushHandler)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/push", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
