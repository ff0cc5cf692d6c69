package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"mlm/config"
	deliverycontext "mlm/internal/delivery/context"
	"mlm/internal/domain/service"
	"mlm/internal/infra/pubsub"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage = pubsub.PubSubPushMessage

// retryableError wraps an error to indicate it should trigger a Pub/Sub retry
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func newRetryableError(err error) error {
	return &retryableError{err: err}
}

func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// TokenValidator checks a Google-signed OIDC token for an audience.
type TokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// PushHandler projects order events into the order status cache.
type PushHandler struct {
	verifyPushAuth bool
	audience       string
	validate       TokenValidator
	logger         *slog.Logger
	statusCache    service.OrderStatusCache
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config      *config.Config
	Logger      *slog.Logger
	StatusCache service.OrderStatusCache
	Validator   TokenValidator `optional:"true"`
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	// Push requests only carry an OIDC token when they come from Google Pub/Sub
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == pubsub.ProviderGoogle &&
		params.Config.Env.Env != config.EnvDevelop

	validate := params.Validator
	if validate == nil {
		validate = idtoken.Validate
	}

	return &PushHandler{
		verifyPushAuth: verifyPushAuth,
		audience:       params.Config.Worker.PushAudience,
		validate:       validate,
		logger:         params.Logger,
		statusCache:    params.StatusCache,
	}
}

// HandlePush acknowledges with 200 unless the event should be redelivered, which
// is answered with 503.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := h.verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var event service.OrderEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse order event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Priority: message attributes > event field > existing context
	requestID := h.extractRequestID(ctx, &pushMsg, &event)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("[Worker] Processing order event",
		slog.String("event_id", event.EventID),
		slog.String("event_type", event.EventType),
		slog.String("order_id", event.OrderID),
	)

	if err := h.processOrderEvent(ctx, &event); err != nil {
		reqLogger.Error("[Worker] Failed to process order event",
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
			slog.Bool("retryable", isRetryableError(err)),
		)
		if isRetryableError(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	return c.NoContent(http.StatusOK)
}

func (h *PushHandler) extractRequestID(ctx context.Context, pushMsg *PubSubMessage, event *service.OrderEvent) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	if event.RequestID != "" {
		return event.RequestID
	}

	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.NewString()
}

// processOrderEvent writes the status carried by the event unless the cache
// already holds a newer one. Redeliveries and reordering are therefore harmless.
func (h *PushHandler) processOrderEvent(ctx context.Context, event *service.OrderEvent) error {
	logger := deliverycontext.GetLoggerOrDefault(ctx, h.logger)

	switch event.EventType {
	case service.EventOrderPlaced, service.EventOrderApproved, service.EventOrderRejected:
	default:
		logger.Debug("[Worker] Ignoring event type", slog.String("event_type", event.EventType))

		return nil
	}

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		return errors.Wrapf(err, "invalid order id %q", event.OrderID)
	}
	var userID uuid.UUID
	if event.UserID != "" {
		if userID, err = uuid.Parse(event.UserID); err != nil {
			return errors.Wrapf(err, "invalid user id %q", event.UserID)
		}
	}

	cached, found, err := h.statusCache.Get(ctx, orderID)
	if err != nil {
		return newRetryableError(err)
	}
	if found && cached.UpdatedAt.After(event.OccurredAt) {
		logger.Info("[Worker] Stale order event skipped",
			slog.String("order_id", event.OrderID),
			slog.String("cached_status", cached.Status),
			slog.String("event_status", event.PaymentStatus),
		)

		return nil
	}

	err = h.statusCache.Set(ctx, &service.OrderStatusSnapshot{
		OrderID:   orderID,
		UserID:    userID,
		Status:    event.PaymentStatus,
		UpdatedAt: event.OccurredAt,
	})
	if err != nil {
		return newRetryableError(err)
	}

	for _, warning := range event.Warnings {
		logger.Warn("[Worker] Order finished with warning",
			slog.String("order_id", event.OrderID),
			slog.String("warning", warning),
		)
	}

	return nil
}

func (h *PushHandler) verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return errors.New("invalid authorization header format")
	}

	audience := h.audience
	if audience == "" {
		scheme := "https"
		if req.TLS == nil {
			scheme = "http"
		}
		audience = fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)
	}

	payload, err := h.validate(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
