// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"fmt"
	"net/http"

	"mlm/config"
	"mlm/internal/delivery/http/middleware"
	"mlm/internal/delivery/http/router/handler"
	"mlm/internal/domain/entity"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	OrderHandler        *handler.OrderHandler
	PaymentProofHandler *handler.PaymentProofHandler
	AffiliateHandler    *handler.AffiliateHandler
	WalletHandler       *handler.WalletHandler
	CatalogHandler      *handler.CatalogHandler
	AuthMiddleware      *middleware.AuthMiddleware
	Config              *config.Config

	// MetricsHandler serves the prometheus registry. Nil disables /metrics.
	MetricsHandler http.Handler `name:"metricsHandler" optional:"true"`
}

// PaymentProofsPath is the multipart upload route.
const PaymentProofsPath = "/api/v1/payment-proofs"

// multipartOverhead leaves room for the form boundaries around the file.
const multipartOverhead = 64 << 10

// router holds all the handlers that need to be registered.
type router struct {
	orderHandler        *handler.OrderHandler
	paymentProofHandler *handler.PaymentProofHandler
	affiliateHandler    *handler.AffiliateHandler
	walletHandler       *handler.WalletHandler
	catalogHandler      *handler.CatalogHandler
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
	metricsHandler      http.Handler
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		orderHandler:        params.OrderHandler,
		paymentProofHandler: params.PaymentProofHandler,
		affiliateHandler:    params.AffiliateHandler,
		walletHandler:       params.WalletHandler,
		catalogHandler:      params.CatalogHandler,
		authMiddleware:      params.AuthMiddleware,
		config:              params.Config,
		metricsHandler:      params.MetricsHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	if r.metricsHandler != nil && r.config.Metrics.Enabled {
		e.GET(r.config.Metrics.Path, echo.WrapHandler(r.metricsHandler))
	}

	// Every API v1 route requires a bearer token
	apiV1 := e.Group("/api/v1")
	apiV1.Use(r.authMiddleware.Authenticate)

	apiV1.POST("/payment-proofs", r.paymentProofHandler.Upload, echomiddleware.BodyLimit(r.uploadLimit()))

	ordersGroup := apiV1.Group("/orders")
	{
		ordersGroup.POST("", r.orderHandler.Checkout)
		ordersGroup.GET("", r.orderHandler.ListOrders)
		ordersGroup.GET("/:id", r.orderHandler.GetOrder)
		ordersGroup.GET("/:id/status", r.orderHandler.GetOrderStatus)
	}

	affiliatesGroup := apiV1.Group("/affiliates")
	{
		affiliatesGroup.POST("", r.affiliateHandler.Join)
		affiliatesGroup.GET("/me", r.affiliateHandler.GetMe)
		affiliatesGroup.GET("/me/upline", r.affiliateHandler.GetUpline)
		affiliatesGroup.GET("/me/downline", r.affiliateHandler.GetDownline)
		affiliatesGroup.GET("/me/referral-qr", r.affiliateHandler.GetReferralQR)
		affiliatesGroup.POST("/me/sponsor", r.affiliateHandler.SetSponsor)
	}

	walletGroup := apiV1.Group("/wallet")
	{
		walletGroup.GET("", r.walletHandler.GetBalance)
		walletGroup.GET("/transactions", r.walletHandler.ListTransactions)
	}

	productsGroup := apiV1.Group("/products")
	{
		productsGroup.GET("", r.catalogHandler.ListProducts)
		productsGroup.GET("/:id", r.catalogHandler.GetProduct)
	}

	// Back office; the usecases check the admin capability again
	adminGroup := apiV1.Group("/admin")
	adminGroup.Use(r.authMiddleware.RequireRole(entity.RoleAdmin))
	{
		adminGroup.POST("/orders/:id/approve", r.orderHandler.ApproveOrder)
		adminGroup.POST("/orders/:id/reject", r.orderHandler.RejectOrder)
		adminGroup.GET("/orders/:id/audit", r.orderHandler.GetAuditTrail)

		adminGroup.POST("/products", r.catalogHandler.CreateProduct)
		adminGroup.POST("/warehouses", r.catalogHandler.CreateWarehouse)
		adminGroup.GET("/warehouses", r.catalogHandler.ListWarehouses)

		adminGroup.POST("/inventory/stock", r.catalogHandler.AddStock)
		adminGroup.GET("/inventory/low-stock", r.catalogHandler.ListLowStock)
		adminGroup.GET("/inventory/:warehouseId", r.catalogHandler.GetStock)

		adminGroup.POST("/affiliates/:id/sponsor", r.affiliateHandler.AssignSponsor)
		adminGroup.DELETE("/affiliates/:id/sponsor", r.affiliateHandler.DetachSponsor)
		adminGroup.POST("/affiliates/:id/points", r.affiliateHandler.CreditPoints)
		adminGroup.POST("/affiliates/:id/rank", r.affiliateHandler.SetRank)

		adminGroup.POST("/wallet/:userId/adjustments", r.walletHandler.Adjust)
		adminGroup.GET("/wallet/:userId/verify", r.walletHandler.Verify)
	}
}

// uploadLimit is the storage size cap plus multipart framing, in echo's size notation.
func (r *router) uploadLimit() string {
	maxSize := int64(config.DefaultMaxUploadSize)
	if r.config.Storage != nil && r.config.Storage.MaxUploadSize > 0 {
		maxSize = r.config.Storage.MaxUploadSize
	}

	return fmt.Sprintf("%dK", (maxSize+multipartOverhead)/1024)
}
