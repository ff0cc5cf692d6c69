package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mlm/config"
	deliverycontext "mlm/internal/delivery/context"
	"mlm/internal/delivery/http/middleware"
	"mlm/internal/delivery/http/router"
	"mlm/internal/delivery/http/router/handler"
	"mlm/internal/domain/service"
	"mlm/internal/infra/auth"
	"mlm/internal/infra/cache"
	"mlm/internal/infra/genealogy"
	"mlm/internal/infra/metrics"
	"mlm/internal/infra/persistence/memory"
	"mlm/internal/infra/qrcode"
	"mlm/internal/infra/storage"
	"mlm/internal/usecase/impl"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

var pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string   `json:"request_id"`
		Warnings  []string `json:"warnings"`
	} `json:"meta"`
}

type apiEnv struct {
	e       *echo.Echo
	tokens  service.TokenService
	metrics *metrics.Metrics
	admin   string
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	cfg.SecretKey.Access = "test-secret"
	cfg.HTTP.MaxRequestBodySize = "100KB"
	cfg.Sponsor = config.SponsorConfig{MaxDepth: 20, CycleCheckLimit: 100}
	cfg.Commission = config.CommissionConfig{Levels: []string{"0.10", "0.05", "0.02"}}
	cfg.Metrics = config.MetricsConfig{Enabled: true, Path: "/metrics"}
	cfg.Storage = &config.StorageConfig{MaxUploadSize: 1 << 20}

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	store := memory.NewStore()
	txManager := memory.NewTransactionManager(store)
	orderRepo := memory.NewOrderRepository(store)
	productRepo := memory.NewProductRepository(store)
	warehouseRepo := memory.NewWarehouseRepository(store)
	inventoryRepo := memory.NewInventoryRepository(store)
	profileRepo := memory.NewProfileRepository(store)
	genealogyRepo := memory.NewGenealogyRepository(store)

	catalog := impl.NewCatalogService(impl.CatalogServiceParams{
		ProductRepo:   productRepo,
		WarehouseRepo: warehouseRepo,
		Logger:        logger,
	})
	inventory := impl.NewInventoryService(impl.InventoryServiceParams{
		InventoryRepo: inventoryRepo,
		WarehouseRepo: warehouseRepo,
		ProductRepo:   productRepo,
		Logger:        logger,
	})
	ranks := impl.NewRankService(impl.RankServiceParams{ProfileRepo: profileRepo, Logger: logger})
	wallet := impl.NewWalletService(impl.WalletServiceParams{WalletRepo: memory.NewWalletRepository(store), Logger: logger})
	sponsors := impl.NewSponsorService(impl.SponsorServiceParams{
		TxManager:     txManager,
		ProfileRepo:   profileRepo,
		GenealogyRepo: genealogyRepo,
		Indexer:       genealogy.NewSyncIndexer(genealogyRepo, profileRepo, cfg.Sponsor.MaxDepth),
		Config:        cfg,
		Logger:        logger,
	})
	commissions, err := impl.NewCommissionEngine(impl.CommissionEngineParams{
		OrderRepo:     orderRepo,
		ProfileRepo:   profileRepo,
		GenealogyRepo: genealogyRepo,
		Sponsors:      sponsors,
		Wallet:        wallet,
		Config:        cfg,
		Logger:        logger,
	})
	require.NoError(t, err)

	m := metrics.New()
	orders := impl.NewOrderService(impl.OrderServiceParams{
		TxManager:     txManager,
		OrderRepo:     orderRepo,
		AuditRepo:     memory.NewOrderAuditRepository(store),
		ProductRepo:   productRepo,
		WarehouseRepo: warehouseRepo,
		InventoryRepo: inventoryRepo,
		ProfileRepo:   profileRepo,
		Ranks:         ranks,
		Commissions:   commissions,
		Publisher:     noopPublisher{},
		Idempotency:   cache.NewRedisIdempotencyStore(redisClient, 0),
		StatusCache:   cache.NewRedisOrderStatusCache(redisClient, 0),
		Metrics:       m,
		Logger:        logger,
	})

	e := NewEcho(ServerParams{
		Cfg:             cfg,
		Logger:          logger,
		ErrorMiddleware: middleware.NewErrorMiddleware(logger),
		HTTPObserver:    m,
		RouterParams: router.RouterParams{
			OrderHandler: handler.NewOrderHandler(handler.OrderHandlerParams{OrderUC: orders, Logger: logger}),
			PaymentProofHandler: handler.NewPaymentProofHandler(handler.PaymentProofHandlerParams{
				Storage: storage.NewBlobProofStorage(memblob.OpenBucket(nil), "https://cdn.example.com", cfg.Storage.MaxUploadSize),
			}),
			AffiliateHandler: handler.NewAffiliateHandler(handler.AffiliateHandlerParams{
				SponsorUC: sponsors,
				RankUC:    ranks,
				QRService: qrcode.NewReferralQRService("https://shop.example.com", 128, "M"),
				Logger:    logger,
			}),
			WalletHandler:  handler.NewWalletHandler(handler.WalletHandlerParams{WalletUC: wallet}),
			CatalogHandler: handler.NewCatalogHandler(handler.CatalogHandlerParams{CatalogUC: catalog, InventoryUC: inventory}),
			AuthMiddleware: middleware.NewAuthMiddleware(middleware.AuthMiddlewareParams{TokenService: tokens}),
			Config:         cfg,
			MetricsHandler: m.Handler(),
		},
	})

	env := &apiEnv{e: e, tokens: tokens, metrics: m}
	env.admin = env.token(t, uuid.New(), "admin")

	return env
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderEvent(_ context.Context, _ *service.OrderEvent) error { return nil }

func (noopPublisher) Close() error { return nil }

func (env *apiEnv) token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()

	token, err := env.tokens.IssueAccessToken(userID, role)
	require.NoError(t, err)

	return token
}

func (env *apiEnv) do(t *testing.T, method, path, token string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	var out envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}

	return rec, out
}

func decodeData[T any](t *testing.T, resp envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(resp.Data, &out))

	return out
}

func (env *apiEnv) uploadProof(t *testing.T, token string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, router.PaymentProofsPath, &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	return rec
}

func TestHealthCheck(t *testing.T) {
	env := newAPIEnv(t)

	rec, resp := env.do(t, http.MethodGet, "/health", "", nil, deliverycontext.HeaderXRequestID, "req-abc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-abc", rec.Header().Get(deliverycontext.HeaderXRequestID))
	assert.Equal(t, "req-abc", resp.Meta.RequestID)
	assert.Equal(t, map[string]string{"status": "ok"}, decodeData[map[string]string](t, resp))
}

func TestAuthentication(t *testing.T) {
	env := newAPIEnv(t)
	customer := env.token(t, uuid.New(), "customer")

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{name: "missing token", path: "/api/v1/orders", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "garbage token", path: "/api/v1/orders", token: "not-a-jwt", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "customer on admin route", path: "/api/v1/admin/warehouses", token: customer, wantStatus: http.StatusForbidden, wantCode: "UNAUTHORIZED"},
		{name: "admin on admin route", path: "/api/v1/admin/warehouses", token: env.admin, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := env.do(t, http.MethodGet, tt.path, tt.token, nil)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				assert.Nil(t, resp.Error.Details)
			}
		})
	}
}

func TestCheckoutValidation(t *testing.T) {
	env := newAPIEnv(t)
	customer := env.token(t, uuid.New(), "customer")

	rec, resp := env.do(t, http.MethodPost, "/api/v1/orders", customer, map[string]any{
		"items":            []any{},
		"shipping_address": "1 Main St",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "payment_proof_url is required")

	rec, resp = env.do(t, http.MethodGet, "/api/v1/orders/not-a-uuid", customer, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	env := newAPIEnv(t)

	// Catalog and stock
	_, resp := env.do(t, http.MethodPost, "/api/v1/admin/warehouses", env.admin, map[string]any{
		"code": "central", "name": "Central", "is_central": true,
	})
	warehouse := decodeData[handler.WarehouseResponse](t, resp)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/admin/products", env.admin, map[string]any{
		"sku": "gold-pack", "name": "Gold pack", "price": "100.00", "points": 50, "is_pack": true, "pack_rank": "Gold Pack",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decodeData[handler.ProductResponse](t, resp)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/admin/inventory/stock", env.admin, map[string]any{
		"product_id": product.ID, "warehouse_id": warehouse.ID, "quantity": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Sponsor and buyer
	sponsorID, buyerID := uuid.New(), uuid.New()
	sponsorToken, buyerToken := env.token(t, sponsorID, "customer"), env.token(t, buyerID, "customer")

	rec, resp = env.do(t, http.MethodPost, "/api/v1/affiliates", sponsorToken, map[string]any{"name": "Sponsor"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sponsor := decodeData[handler.ProfileResponse](t, resp)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/affiliates", buyerToken, map[string]any{"name": "Buyer"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, resp = env.do(t, http.MethodPost, "/api/v1/affiliates/me/sponsor", buyerToken, map[string]any{"referral_code": sponsor.ReferralCode})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, decodeData[handler.ProfileResponse](t, resp).SponsorID)

	_, resp = env.do(t, http.MethodGet, "/api/v1/affiliates/me/upline", buyerToken, nil)
	assert.Equal(t, []handler.GenealogyResponse{{UserID: sponsorID, Level: 1}}, decodeData[[]handler.GenealogyResponse](t, resp))

	// Proof upload, then an idempotent checkout
	rec = env.uploadProof(t, buyerToken, pngHeader)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var uploaded envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	proof := decodeData[handler.PaymentProofResponse](t, uploaded)
	require.True(t, strings.HasPrefix(proof.PaymentProofURL, "https://cdn.example.com/proofs/"+buyerID.String()))

	cart := map[string]any{
		"items":             []map[string]any{{"product_id": product.ID, "quantity": 1}},
		"shipping_address":  "1 Main St",
		"payment_proof_url": proof.PaymentProofURL,
	}
	rec, resp = env.do(t, http.MethodPost, "/api/v1/orders", buyerToken, cart, deliverycontext.HeaderIdempotencyKey, "cart-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decodeData[handler.OrderResponse](t, resp)
	assert.Equal(t, "pending", order.PaymentStatus)
	require.NotNil(t, order.AffiliateID)
	assert.Equal(t, sponsorID, *order.AffiliateID)

	rec, resp = env.do(t, http.MethodPost, "/api/v1/orders", buyerToken, cart, deliverycontext.HeaderIdempotencyKey, "cart-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, order.ID, decodeData[handler.OrderResponse](t, resp).ID, "replayed checkout")

	// Strangers cannot read the order
	rec, _ = env.do(t, http.MethodGet, "/api/v1/orders/"+order.ID.String(), sponsorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Approval runs every step
	rec, resp = env.do(t, http.MethodPost, "/api/v1/admin/orders/"+order.ID.String()+"/approve", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeData[handler.WorkflowResponse](t, resp)
	assert.Equal(t, "approved", result.Order.PaymentStatus)
	assert.Len(t, result.Steps, 5)
	assert.Empty(t, resp.Meta.Warnings)

	rec, resp = env.do(t, http.MethodPost, "/api/v1/admin/orders/"+order.ID.String()+"/reject", env.admin, map[string]any{"reason": "late"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ORDER_STATUS_CONFLICT", resp.Error.Code)

	_, resp = env.do(t, http.MethodGet, "/api/v1/orders/"+order.ID.String()+"/status", buyerToken, nil)
	assert.Equal(t, "approved", decodeData[service.OrderStatusSnapshot](t, resp).Status)

	_, resp = env.do(t, http.MethodGet, "/api/v1/affiliates/me", buyerToken, nil)
	me := decodeData[handler.ProfileResponse](t, resp)
	assert.Equal(t, "GOLD", me.Rank.String())
	assert.Equal(t, int64(50), me.CurrentPoints)

	_, resp = env.do(t, http.MethodGet, "/api/v1/wallet", sponsorToken, nil)
	balance := decodeData[handler.BalanceResponse](t, resp)
	assert.True(t, decimal.NewFromInt(10).Equal(balance.Balance), balance.Balance.String())

	_, resp = env.do(t, http.MethodGet, "/api/v1/admin/orders/"+order.ID.String()+"/audit", env.admin, nil)
	assert.Len(t, decodeData[[]handler.AuditEntryResponse](t, resp), 5)

	_, resp = env.do(t, http.MethodGet, "/api/v1/admin/wallet/"+sponsorID.String()+"/verify", env.admin, nil)
	var verification struct {
		Consistent bool `json:"consistent"`
		Entries    int  `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &verification))
	assert.True(t, verification.Consistent)
	assert.Equal(t, 1, verification.Entries)
}

func TestAdminAffiliateRoutes(t *testing.T) {
	env := newAPIEnv(t)
	userID := uuid.New()
	userToken := env.token(t, userID, "customer")

	rec, _ := env.do(t, http.MethodPost, "/api/v1/affiliates", userToken, map[string]any{"name": "Member"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	base := "/api/v1/admin/affiliates/" + userID.String()

	rec, resp := env.do(t, http.MethodPost, base+"/points", env.admin, map[string]any{"points": 120})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(120), decodeData[handler.ProfileResponse](t, resp).LifetimePoints)

	rec, resp = env.do(t, http.MethodPost, base+"/rank", env.admin, map[string]any{"rank": "platinum"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "PLATINUM", decodeData[handler.ProfileResponse](t, resp).Rank.String())

	for _, rank := range []string{"silver", "platinum"} {
		rec, resp = env.do(t, http.MethodPost, base+"/rank", env.admin, map[string]any{"rank": rank})
		require.Equal(t, http.StatusConflict, rec.Code, rank)
		assert.Equal(t, "RANK_NOT_HIGHER", resp.Error.Code)
	}

	_, resp = env.do(t, http.MethodGet, "/api/v1/affiliates/me", userToken, nil)
	assert.Equal(t, "PLATINUM", decodeData[handler.ProfileResponse](t, resp).Rank.String())

	rec, resp = env.do(t, http.MethodPost, base+"/rank", env.admin, map[string]any{"rank": "emerald"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)

	rec, resp = env.do(t, http.MethodPost, base+"/sponsor", env.admin, map[string]any{"sponsor_id": userID})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "SPONSOR_SELF_REFERENCE", resp.Error.Code)

	rec, resp = env.do(t, http.MethodPost, "/api/v1/admin/wallet/"+userID.String()+"/adjustments", env.admin, map[string]any{
		"type": "BONUS", "amount": "25.50", "description": "welcome bonus",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "BONUS", decodeData[handler.WalletTransactionResponse](t, resp).Type)

	_, resp = env.do(t, http.MethodGet, "/api/v1/wallet/transactions?limit=10", userToken, nil)
	assert.Len(t, decodeData[[]handler.WalletTransactionResponse](t, resp), 1)
}

func TestReferralQR(t *testing.T) {
	env := newAPIEnv(t)
	token := env.token(t, uuid.New(), "customer")

	rec, _ := env.do(t, http.MethodGet, "/api/v1/affiliates/me/referral-qr", token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code, "no profile yet")

	rec, resp := env.do(t, http.MethodPost, "/api/v1/affiliates", token, map[string]any{"name": "Qr"})
	require.Equal(t, http.StatusCreated, rec.Code)
	profile := decodeData[handler.ProfileResponse](t, resp)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/affiliates/me/referral-qr", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), pngHeader[:8]))
	assert.Contains(t, rec.Header().Get("X-Referral-Link"), "ref="+profile.ReferralCode)
}

func TestPaymentProofRejectsText(t *testing.T) {
	env := newAPIEnv(t)
	token := env.token(t, uuid.New(), "customer")

	rec := env.uploadProof(t, token, []byte("definitely not an image"))
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	env.do(t, http.MethodGet, "/health", "", nil)

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mlm_http_requests_total{method="GET",path="/health",status="200"} 1`)
}
