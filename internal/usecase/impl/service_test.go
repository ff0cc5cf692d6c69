package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"mlm/config"
	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/repository"
	"mlm/internal/domain/service"
	"mlm/internal/infra/genealogy"
	"mlm/internal/infra/persistence/memory"
	"mlm/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Sponsor: config.SponsorConfig{
			MaxDepth:        20,
			CycleCheckLimit: 100,
		},
		Commission: config.CommissionConfig{
			Levels: []string{"0.10", "0.05", "0.02"},
		},
	}
}

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*service.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, event *service.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType)
	}

	return types
}

// recordingMetrics counts workflow steps by action/step/outcome.
type recordingMetrics struct {
	mu     sync.Mutex
	steps  map[string]int
	orders map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{steps: map[string]int{}, orders: map[string]int{}}
}

func (m *recordingMetrics) ObserveStep(action, step, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[action+"/"+step+"/"+outcome]++
}

func (m *recordingMetrics) ObserveOrder(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[status]++
}

type testEnv struct {
	cfg *config.Config

	store         *memory.Store
	txManager     repository.TransactionManager
	orderRepo     repository.OrderRepository
	auditRepo     repository.OrderAuditRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	inventoryRepo repository.InventoryRepository
	profileRepo   repository.ProfileRepository
	genealogyRepo repository.GenealogyRepository
	walletRepo    repository.WalletRepository

	publisher *recordingPublisher
	metrics   *recordingMetrics

	catalog    usecase.CatalogUsecase
	inventory  usecase.InventoryUsecase
	ranks      usecase.RankUsecase
	wallet     usecase.WalletUsecase
	sponsors   usecase.SponsorUsecase
	commission service.CommissionEngine
	orders     usecase.OrderUsecase

	admin     entity.Actor
	warehouse *entity.Warehouse
}

type envOption func(*OrderServiceParams)

func withCommissionEngine(engine service.CommissionEngine) envOption {
	return func(p *OrderServiceParams) { p.Commissions = engine }
}

func withPublisher(publisher service.EventPublisher) envOption {
	return func(p *OrderServiceParams) { p.Publisher = publisher }
}

func withIdempotency(store service.IdempotencyStore) envOption {
	return func(p *OrderServiceParams) { p.Idempotency = store }
}

func withStatusCache(cache service.OrderStatusCache) envOption {
	return func(p *OrderServiceParams) { p.StatusCache = cache }
}

// interleavingTxManager runs a one-shot hook right before the next transaction
// starts, simulating another request that commits in between.
type interleavingTxManager struct {
	repository.TransactionManager

	mu   sync.Mutex
	next func()
}

func (m *interleavingTxManager) before(hook func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next = hook
}

func (m *interleavingTxManager) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	m.mu.Lock()
	hook := m.next
	m.next = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}

	return m.TransactionManager.Execute(ctx, fn)
}

func withInterleaving(m *interleavingTxManager) envOption {
	return func(p *OrderServiceParams) {
		m.TransactionManager = p.TxManager
		p.TxManager = m
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := newTestConfig()
	logger := newDiscardLogger()
	store := memory.NewStore()

	env := &testEnv{
		cfg:           cfg,
		store:         store,
		txManager:     memory.NewTransactionManager(store),
		orderRepo:     memory.NewOrderRepository(store),
		auditRepo:     memory.NewOrderAuditRepository(store),
		productRepo:   memory.NewProductRepository(store),
		warehouseRepo: memory.NewWarehouseRepository(store),
		inventoryRepo: memory.NewInventoryRepository(store),
		profileRepo:   memory.NewProfileRepository(store),
		genealogyRepo: memory.NewGenealogyRepository(store),
		walletRepo:    memory.NewWalletRepository(store),
		publisher:     &recordingPublisher{},
		metrics:       newRecordingMetrics(),
		admin:         entity.Actor{UserID: uuid.New(), Role: entity.RoleAdmin},
	}

	env.catalog = NewCatalogService(CatalogServiceParams{
		ProductRepo:   env.productRepo,
		WarehouseRepo: env.warehouseRepo,
		Logger:        logger,
	})
	env.inventory = NewInventoryService(InventoryServiceParams{
		InventoryRepo: env.inventoryRepo,
		WarehouseRepo: env.warehouseRepo,
		ProductRepo:   env.productRepo,
		Logger:        logger,
	})
	env.ranks = NewRankService(RankServiceParams{ProfileRepo: env.profileRepo, Logger: logger})
	env.wallet = NewWalletService(WalletServiceParams{WalletRepo: env.walletRepo, Logger: logger})
	env.sponsors = NewSponsorService(SponsorServiceParams{
		TxManager:     env.txManager,
		ProfileRepo:   env.profileRepo,
		GenealogyRepo: env.genealogyRepo,
		Indexer:       genealogy.NewSyncIndexer(env.genealogyRepo, env.profileRepo, cfg.Sponsor.MaxDepth),
		Config:        cfg,
		Logger:        logger,
	})

	commission, err := NewCommissionEngine(CommissionEngineParams{
		OrderRepo:     env.orderRepo,
		ProfileRepo:   env.profileRepo,
		GenealogyRepo: env.genealogyRepo,
		Sponsors:      env.sponsors,
		Wallet:        env.wallet,
		Config:        cfg,
		Logger:        logger,
	})
	require.NoError(t, err)
	env.commission = commission

	params := OrderServiceParams{
		TxManager:     env.txManager,
		OrderRepo:     env.orderRepo,
		AuditRepo:     env.auditRepo,
		ProductRepo:   env.productRepo,
		WarehouseRepo: env.warehouseRepo,
		InventoryRepo: env.inventoryRepo,
		ProfileRepo:   env.profileRepo,
		Ranks:         env.ranks,
		Commissions:   commission,
		Publisher:     env.publisher,
		Metrics:       env.metrics,
		Logger:        logger,
	}
	for _, opt := range opts {
		opt(&params)
	}
	env.orders = NewOrderService(params)

	warehouse, err := env.catalog.CreateWarehouse(context.Background(), env.admin, &usecase.WarehouseInput{
		Code:      "central",
		Name:      "Central",
		IsCentral: true,
	})
	require.NoError(t, err)
	env.warehouse = warehouse

	return env
}

// product creates an active product and stocks qty units in the central warehouse.
func (env *testEnv) product(t *testing.T, sku, price string, points int64, packRank string, qty int) *entity.Product {
	t.Helper()

	product, err := env.catalog.CreateProduct(context.Background(), env.admin, &usecase.ProductInput{
		SKU:      sku,
		Name:     sku + " product",
		Price:    decimal.RequireFromString(price),
		Points:   points,
		IsPack:   packRank != "",
		PackRank: packRank,
	})
	require.NoError(t, err)

	if qty > 0 {
		_, err = env.inventory.AddStock(context.Background(), env.admin, &usecase.StockInput{
			ProductID:   product.ID,
			WarehouseID: env.warehouse.ID,
			Quantity:    qty,
		})
		require.NoError(t, err)
	}

	return product
}

// affiliate registers a profile, optionally under the sponsor with the given referral code.
func (env *testEnv) affiliate(t *testing.T, name, sponsorCode string) *entity.Profile {
	t.Helper()

	profile, err := env.sponsors.CreateProfile(context.Background(), &usecase.CreateProfileInput{
		UserID:       uuid.New(),
		Name:         name,
		ReferralCode: sponsorCode,
	})
	require.NoError(t, err)

	return profile
}

func (env *testEnv) stock(t *testing.T, productID uuid.UUID) *entity.InventoryItem {
	t.Helper()

	item, err := env.inventoryRepo.FindItem(context.Background(), productID, env.warehouse.ID)
	require.NoError(t, err)

	return item
}

func (env *testEnv) balance(t *testing.T, userID uuid.UUID) decimal.Decimal {
	t.Helper()

	balance, err := env.wallet.Balance(context.Background(), userID)
	require.NoError(t, err)

	return balance
}

func customer(profile *entity.Profile) entity.Actor {
	return entity.Actor{UserID: profile.ID, Role: entity.RoleCustomer}
}

func checkoutInput(items ...usecase.CheckoutItem) *usecase.CheckoutInput {
	return &usecase.CheckoutInput{
		Items:           items,
		ShippingAddress: "1 Main St",
		PaymentProofURL: "https://cdn.example.com/proofs/receipt.png",
	}
}

func line(product *entity.Product, qty int) usecase.CheckoutItem {
	return usecase.CheckoutItem{ProductID: product.ID, Quantity: qty}
}

// assertAppError checks that err carries the code of want.
func assertAppError(t *testing.T, err error, want domainerrors.AppError) {
	t.Helper()

	require.Error(t, err)
	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr, "error %v is not an AppError", err)
	assert.Equal(t, want.ErrorCode(), appErr.ErrorCode(), err.Error())
}
