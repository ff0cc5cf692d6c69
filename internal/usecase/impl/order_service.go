package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	deliverycontext "mlm/internal/delivery/context"
	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/repository"
	"mlm/internal/domain/service"
	"mlm/internal/errors"
	"mlm/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// Workflow step names, as reported to callers and stored in the audit trail.
const (
	StepPromoteRank          = "promote_rank"
	StepSettleStock          = "settle_stock"
	StepCreditPoints         = "credit_points"
	StepCalculateCommissions = "calculate_commissions"
	StepPublishEvent         = "publish_event"
	StepMarkRejected         = "mark_rejected"
)

const orderEventVersion = 1

type orderService struct {
	txManager     repository.TransactionManager
	orderRepo     repository.OrderRepository
	auditRepo     repository.OrderAuditRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	inventoryRepo repository.InventoryRepository
	profileRepo   repository.ProfileRepository
	ranks         usecase.RankUsecase
	commissions   service.CommissionEngine
	publisher     service.EventPublisher
	idempotency   service.IdempotencyStore
	statusCache   service.OrderStatusCache
	pricing       service.PricingPolicy
	metrics       service.WorkflowMetrics
	logger        *slog.Logger
}

// OrderServiceParams holds dependencies for OrderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	OrderRepo     repository.OrderRepository
	AuditRepo     repository.OrderAuditRepository
	ProductRepo   repository.ProductRepository
	WarehouseRepo repository.WarehouseRepository
	InventoryRepo repository.InventoryRepository
	ProfileRepo   repository.ProfileRepository
	Ranks         usecase.RankUsecase
	Commissions   service.CommissionEngine
	Publisher     service.EventPublisher
	Idempotency   service.IdempotencyStore `optional:"true"`
	StatusCache   service.OrderStatusCache `optional:"true"`
	Pricing       service.PricingPolicy    `optional:"true"`
	Metrics       service.WorkflowMetrics  `optional:"true"`
	Logger        *slog.Logger
}

// NewOrderService creates the order workflow usecase.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	srv := &orderService{
		txManager:     params.TxManager,
		orderRepo:     params.OrderRepo,
		auditRepo:     params.AuditRepo,
		productRepo:   params.ProductRepo,
		warehouseRepo: params.WarehouseRepo,
		inventoryRepo: params.InventoryRepo,
		profileRepo:   params.ProfileRepo,
		ranks:         params.Ranks,
		commissions:   params.Commissions,
		publisher:     params.Publisher,
		idempotency:   params.Idempotency,
		statusCache:   params.StatusCache,
		pricing:       params.Pricing,
		metrics:       params.Metrics,
		logger:        params.Logger,
	}
	if srv.pricing == nil {
		srv.pricing = service.FreePricing{}
	}
	if srv.metrics == nil {
		srv.metrics = service.NoopWorkflowMetrics{}
	}

	return srv
}

func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Checkout turns a cart into a pending order. The insert and every reservation
// share one transaction, so a failed reservation leaves no order behind.
func (srv *orderService) Checkout(ctx context.Context, actor entity.Actor, input *usecase.CheckoutInput) (*entity.Order, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}

	lines, err := mergeCheckoutItems(input)
	if err != nil {
		return nil, err
	}

	key := ""
	if raw := strings.TrimSpace(input.IdempotencyKey); raw != "" && srv.idempotency != nil {
		key = actor.UserID.String() + ":" + raw
		existing, acquired, err := srv.idempotency.Acquire(ctx, key)
		switch {
		case errors.Is(err, service.ErrIdempotencyKeyInFlight):
			return nil, domainerrors.ErrCheckoutInProgress
		case err != nil:
			srv.log(ctx).Warn("Idempotency store unavailable, continuing without it", slog.Any("error", err))
			key = ""
		case !acquired:
			srv.log(ctx).Info("Replaying checkout", slog.String("order_id", existing.String()))

			return srv.GetOrder(ctx, actor, existing)
		}
	}

	order, err := srv.placeOrder(ctx, actor, input, lines)
	if key != "" {
		srv.finishIdempotency(ctx, key, order, err)
	}
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Order placed",
		slog.String("order_id", order.ID.String()),
		slog.String("order_number", order.OrderNumber),
		slog.String("total", order.TotalAmount.String()),
	)

	srv.metrics.ObserveOrder(string(order.PaymentStatus))
	srv.cacheStatus(ctx, order)
	srv.publish(ctx, service.EventOrderPlaced, order, nil)

	return order, nil
}

func (srv *orderService) finishIdempotency(ctx context.Context, key string, order *entity.Order, checkoutErr error) {
	var err error
	if checkoutErr != nil {
		err = srv.idempotency.Abandon(ctx, key)
	} else {
		err = srv.idempotency.Complete(ctx, key, order.ID)
	}
	if err != nil {
		srv.log(ctx).Warn("Failed to update idempotency key", slog.Any("error", err))
	}
}

type checkoutLine struct {
	productID uuid.UUID
	quantity  int
}

// mergeCheckoutItems validates the cart and folds repeated products into one line,
// keeping the order in which products first appear.
func mergeCheckoutItems(input *usecase.CheckoutInput) ([]checkoutLine, error) {
	if len(input.Items) == 0 {
		return nil, domainerrors.ErrEmptyCart
	}
	if strings.TrimSpace(input.PaymentProofURL) == "" {
		return nil, domainerrors.ErrPaymentProofRequired
	}

	index := make(map[uuid.UUID]int, len(input.Items))
	lines := make([]checkoutLine, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, domainerrors.ErrInvalidQuantity.WithDetails(fmt.Sprintf("product %s has quantity %d", item.ProductID, item.Quantity))
		}
		if i, ok := index[item.ProductID]; ok {
			lines[i].quantity += item.Quantity

			continue
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, checkoutLine{productID: item.ProductID, quantity: item.Quantity})
	}

	return lines, nil
}

func (srv *orderService) placeOrder(ctx context.Context, actor entity.Actor, input *usecase.CheckoutInput, lines []checkoutLine) (*entity.Order, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.productID)
	}
	products, err := srv.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to load products")
	}
	for _, line := range lines {
		product, ok := products[line.productID]
		if !ok {
			return nil, domainerrors.ErrProductNotFound.WithDetails(line.productID.String())
		}
		if !product.IsActive {
			return nil, domainerrors.ErrProductInactive.WithDetails(product.Name)
		}
	}

	affiliateID, err := srv.resolveAffiliate(ctx, actor.UserID, input.AffiliateID)
	if err != nil {
		return nil, err
	}

	warehouse, err := srv.warehouseRepo.FindCentral(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to resolve fulfillment warehouse")
	}

	for _, line := range lines {
		if err := srv.checkStock(ctx, products[line.productID], warehouse.ID, line.quantity); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	orderID := uuid.New()
	buyer := actor.UserID
	order := &entity.Order{
		ID:                orderID,
		OrderNumber:       entity.NewOrderNumber(now, orderID),
		UserID:            &buyer,
		AffiliateID:       affiliateID,
		WarehouseID:       warehouse.ID,
		FulfillmentStatus: entity.FulfillmentUnfulfilled,
		PaymentStatus:     entity.OrderStatusPending,
		PaymentProofURL:   strings.TrimSpace(input.PaymentProofURL),
		ShippingAddress:   strings.TrimSpace(input.ShippingAddress),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for _, line := range lines {
		product := products[line.productID]
		item := entity.NewOrderItem(product.ID, line.quantity, product.Price, product.Points)
		item.OrderID = orderID
		order.Items = append(order.Items, item)
	}
	shipping, discount := srv.pricing.Quote(order.Items)
	order.ApplyTotals(entity.ComputeTotals(order.Items, shipping, discount))

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewOrderRepository().Create(ctx, order); err != nil {
			return mapRepositoryError(err, "failed to create order")
		}

		inventoryRepo := repoFactory.NewInventoryRepository()
		for _, item := range order.Items {
			err := inventoryRepo.Reserve(ctx, item.ProductID, order.WarehouseID, item.Quantity)
			if errors.IsAny(err, repository.ErrInsufficientStock, repository.ErrInventoryItemNotFound) {
				available := 0
				if current, findErr := inventoryRepo.FindItem(ctx, item.ProductID, order.WarehouseID); findErr == nil {
					available = current.Quantity
				}

				return domainerrors.NewOutOfStock(products[item.ProductID].Name, item.Quantity, available)
			}
			if err != nil {
				return mapRepositoryError(err, "failed to reserve stock")
			}
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Checkout rolled back", slog.Any("error", err))

		return nil, err
	}

	return order, nil
}

// resolveAffiliate validates an explicit affiliate, or defaults to the buyer's sponsor.
func (srv *orderService) resolveAffiliate(ctx context.Context, buyer uuid.UUID, requested *uuid.UUID) (*uuid.UUID, error) {
	if requested != nil && *requested != uuid.Nil {
		if _, err := srv.profileRepo.FindByID(ctx, *requested); err != nil {
			return nil, mapRepositoryError(err, "failed to find affiliate")
		}
		affiliate := *requested

		return &affiliate, nil
	}

	link, err := srv.profileRepo.FindSponsorLink(ctx, buyer)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapRepositoryError(err, "failed to find buyer profile")
	}

	return link.SponsorID, nil
}

func (srv *orderService) checkStock(ctx context.Context, product *entity.Product, warehouseID uuid.UUID, qty int) error {
	item, err := srv.inventoryRepo.FindItem(ctx, product.ID, warehouseID)
	if errors.Is(err, repository.ErrInventoryItemNotFound) {
		return domainerrors.NewOutOfStock(product.Name, qty, 0)
	}
	if err != nil {
		return mapRepositoryError(err, "failed to check stock")
	}
	if item.Quantity < qty {
		return domainerrors.NewOutOfStock(product.Name, qty, item.Quantity)
	}

	return nil
}

// loadPending fetches an order that an admin workflow may act on.
func (srv *orderService) loadPending(ctx context.Context, orderID uuid.UUID) (*entity.Order, error) {
	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to load order")
	}
	if order.PaymentStatus != entity.OrderStatusPending {
		return nil, domainerrors.NewOrderStatusConflict(string(order.PaymentStatus))
	}

	return order, nil
}

// Approve runs the approval pipeline. Only settle_stock is essential: the
// pending -> approved flip and its confirmations commit together or not at all,
// and every effect on the buyer or the upline runs after it.
func (srv *orderService) Approve(ctx context.Context, actor entity.Actor, orderID uuid.UUID) (*usecase.WorkflowResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	order, err := srv.loadPending(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil {
		return nil, domainerrors.ErrOrderWithoutUser
	}
	buyer := *order.UserID

	result := &usecase.WorkflowResult{Order: order}
	steps := []workflowStep{
		{name: StepSettleStock, essential: true, run: func(ctx context.Context, report *usecase.StepReport) error {
			return srv.settleStock(ctx, order, report)
		}},
		{name: StepPromoteRank, run: func(ctx context.Context, report *usecase.StepReport) error {
			return srv.promoteRank(ctx, order, report)
		}},
		{name: StepCreditPoints, run: func(ctx context.Context, report *usecase.StepReport) error {
			if order.PointsEarned <= 0 {
				report.Outcome = entity.StepSkipped
				report.Detail = "order earns no points"

				return nil
			}
			report.Detail = fmt.Sprintf("credited %d points", order.PointsEarned)

			return srv.ranks.CreditPoints(ctx, buyer, order.PointsEarned)
		}},
		{name: StepCalculateCommissions, run: func(ctx context.Context, _ *usecase.StepReport) error {
			return srv.commissions.CalculateCommissions(ctx, order.ID)
		}},
		{name: StepPublishEvent, run: func(ctx context.Context, _ *usecase.StepReport) error {
			return srv.publisher.PublishOrderEvent(ctx, srv.newOrderEvent(ctx, service.EventOrderApproved, order, result.Warnings()))
		}},
	}

	return srv.runWorkflow(ctx, actor, entity.OrderActionApprove, result, steps)
}

// promoteRank raises the buyer to the highest rank granted by the order's packs.
func (srv *orderService) promoteRank(ctx context.Context, order *entity.Order, report *usecase.StepReport) error {
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := srv.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return mapRepositoryError(err, "failed to load products")
	}

	var granted []entity.Rank
	for _, item := range order.Items {
		product, ok := products[item.ProductID]
		if !ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf("product %s no longer exists", item.ProductID))

			continue
		}
		rank, isPack, err := product.TargetRank()
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("unknown rank %q on %s", product.PackRank, product.SKU))

			continue
		}
		if isPack {
			granted = append(granted, rank)
		}
	}

	target, ok := entity.HighestRank(granted...)
	if !ok {
		if len(report.Warnings) == 0 {
			report.Outcome = entity.StepSkipped
			report.Detail = "no pack items"
		}

		return nil
	}

	standing, err := srv.ranks.GetStanding(ctx, *order.UserID)
	if err != nil {
		return err
	}
	if !target.Outranks(standing.Rank) {
		report.Detail = fmt.Sprintf("rank %s kept, pack grants %s", standing.Rank, target)

		return nil
	}

	if err := srv.ranks.Promote(ctx, *order.UserID, target); err != nil {
		return err
	}
	report.Detail = fmt.Sprintf("promoted %s to %s", standing.Rank, target)

	return nil
}

// settleStock flips the order to approved and confirms every reservation in one
// transaction. Guard failures on single items are warnings; a lost status race
// rolls everything back.
func (srv *orderService) settleStock(ctx context.Context, order *entity.Order, report *usecase.StepReport) error {
	var warnings []string
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		warnings = warnings[:0]

		if err := srv.transition(ctx, repoFactory.NewOrderRepository(), order.ID, entity.OrderStatusApproved, nil); err != nil {
			return err
		}

		inventoryRepo := repoFactory.NewInventoryRepository()
		for _, item := range order.Items {
			err := inventoryRepo.Confirm(ctx, item.ProductID, order.WarehouseID, item.Quantity)
			if isStockGuardError(err) {
				warnings = append(warnings, fmt.Sprintf("confirm %d x %s: %v", item.Quantity, item.ProductID, err))

				continue
			}
			if err != nil {
				return mapRepositoryError(err, "failed to confirm stock")
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	report.Warnings = append(report.Warnings, warnings...)
	order.PaymentStatus = entity.OrderStatusApproved
	order.UpdatedAt = time.Now()

	return nil
}

// transition is the conditional pending -> to flip. Both workflows take the
// order row first, so concurrent approve and reject lock rows in the same order.
func (srv *orderService) transition(ctx context.Context, orderRepo repository.OrderRepository, orderID uuid.UUID, to entity.OrderStatus, notes *string) error {
	err := orderRepo.TransitionStatus(ctx, orderID, entity.OrderStatusPending, to, notes)
	if errors.Is(err, repository.ErrOrderStatusChanged) {
		return srv.statusConflict(ctx, orderRepo, orderID)
	}

	return mapRepositoryError(err, "failed to mark order "+string(to))
}

func isStockGuardError(err error) bool {
	return errors.IsAny(err, repository.ErrInsufficientReservation, repository.ErrInventoryItemNotFound, repository.ErrInvalidQuantity)
}

func (srv *orderService) statusConflict(ctx context.Context, orderRepo repository.OrderRepository, orderID uuid.UUID) error {
	current, err := orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return mapRepositoryError(err, "failed to reload order")
	}

	return domainerrors.NewOrderStatusConflict(string(current.PaymentStatus))
}

// Reject marks the order rejected and returns its reserved units.
func (srv *orderService) Reject(ctx context.Context, actor entity.Actor, orderID uuid.UUID, reason string) (*usecase.WorkflowResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	order, err := srv.loadPending(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var notes *string
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		notes = &trimmed
	}

	result := &usecase.WorkflowResult{Order: order}
	steps := []workflowStep{
		{name: StepMarkRejected, essential: true, run: func(ctx context.Context, report *usecase.StepReport) error {
			return srv.markRejected(ctx, order, notes, report)
		}},
		{name: StepPublishEvent, run: func(ctx context.Context, _ *usecase.StepReport) error {
			return srv.publisher.PublishOrderEvent(ctx, srv.newOrderEvent(ctx, service.EventOrderRejected, order, result.Warnings()))
		}},
	}

	return srv.runWorkflow(ctx, actor, entity.OrderActionReject, result, steps)
}

// markRejected flips the order to rejected and releases its reservations in one
// transaction. A release guard failure is a warning; a lost status race rolls
// the releases back with the flip.
func (srv *orderService) markRejected(ctx context.Context, order *entity.Order, notes *string, report *usecase.StepReport) error {
	var warnings []string
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		warnings = warnings[:0]

		if err := srv.transition(ctx, repoFactory.NewOrderRepository(), order.ID, entity.OrderStatusRejected, notes); err != nil {
			return err
		}

		inventoryRepo := repoFactory.NewInventoryRepository()
		for _, item := range order.Items {
			err := inventoryRepo.Release(ctx, item.ProductID, order.WarehouseID, item.Quantity)
			if isStockGuardError(err) {
				warnings = append(warnings, fmt.Sprintf("release %d x %s: %v", item.Quantity, item.ProductID, err))

				continue
			}
			if err != nil {
				return mapRepositoryError(err, "failed to release stock")
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	report.Warnings = append(report.Warnings, warnings...)
	report.Detail = fmt.Sprintf("released %d items", len(order.Items)-len(warnings))
	order.PaymentStatus = entity.OrderStatusRejected
	order.AdminNotes = notes
	order.UpdatedAt = time.Now()

	return nil
}

func (srv *orderService) runWorkflow(
	ctx context.Context,
	actor entity.Actor,
	action entity.OrderAction,
	result *usecase.WorkflowResult,
	steps []workflowStep,
) (*usecase.WorkflowResult, error) {
	runner := &stepRunner{action: action, metrics: srv.metrics, logger: srv.log(ctx)}
	runErr := runner.run(ctx, result, steps)

	order := result.Order
	if err := srv.auditRepo.Append(ctx, auditEntries(order.ID, action, actor.UserID, result.Steps)); err != nil {
		srv.log(ctx).Error("Failed to write audit trail", slog.String("order_id", order.ID.String()), slog.Any("error", err))
	}
	if runErr != nil {
		return nil, runErr
	}

	srv.metrics.ObserveOrder(string(order.PaymentStatus))
	srv.cacheStatus(ctx, order)

	srv.log(ctx).Info("Order workflow finished",
		slog.String("action", string(action)),
		slog.String("order_id", order.ID.String()),
		slog.String("status", string(order.PaymentStatus)),
		slog.Int("warnings", len(result.Warnings())),
	)

	return result, nil
}

// GetOrder returns an order to its owner or to an admin.
func (srv *orderService) GetOrder(ctx context.Context, actor entity.Actor, orderID uuid.UUID) (*entity.Order, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}

	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to load order")
	}
	if !actor.IsAdmin() && !order.IsOwnedBy(actor.UserID) {
		return nil, domainerrors.ErrForbidden
	}

	return order, nil
}

func (srv *orderService) ListOrders(ctx context.Context, actor entity.Actor, filter entity.OrderFilter) ([]*entity.Order, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		owner := actor.UserID
		filter.UserID = &owner
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown status " + string(*filter.Status))
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	orders, err := srv.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to list orders")
	}

	return orders, nil
}

// GetOrderStatus serves the cached snapshot when present and fills the cache on a miss.
func (srv *orderService) GetOrderStatus(ctx context.Context, actor entity.Actor, orderID uuid.UUID) (*service.OrderStatusSnapshot, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}

	if srv.statusCache != nil {
		snapshot, hit, err := srv.statusCache.Get(ctx, orderID)
		if err != nil {
			srv.log(ctx).Warn("Order status cache read failed", slog.Any("error", err))
		}
		if hit && err == nil {
			if !actor.IsAdmin() && snapshot.UserID != actor.UserID {
				return nil, domainerrors.ErrForbidden
			}

			return snapshot, nil
		}
	}

	order, err := srv.GetOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	srv.cacheStatus(ctx, order)

	return statusSnapshot(order), nil
}

func (srv *orderService) ListAuditTrail(ctx context.Context, actor entity.Actor, orderID uuid.UUID) ([]*entity.OrderAuditEntry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := srv.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, mapRepositoryError(err, "failed to load order")
	}

	entries, err := srv.auditRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to list audit trail")
	}

	return entries, nil
}

func statusSnapshot(order *entity.Order) *service.OrderStatusSnapshot {
	snapshot := &service.OrderStatusSnapshot{
		OrderID:   order.ID,
		Status:    string(order.PaymentStatus),
		UpdatedAt: order.UpdatedAt,
	}
	if order.UserID != nil {
		snapshot.UserID = *order.UserID
	}

	return snapshot
}

func (srv *orderService) cacheStatus(ctx context.Context, order *entity.Order) {
	if srv.statusCache == nil {
		return
	}
	if err := srv.statusCache.Set(ctx, statusSnapshot(order)); err != nil {
		srv.log(ctx).Warn("Failed to cache order status", slog.String("order_id", order.ID.String()), slog.Any("error", err))
	}
}

// publish sends an event outside of any workflow; failures are only logged.
func (srv *orderService) publish(ctx context.Context, eventType string, order *entity.Order, warnings []string) {
	if err := srv.publisher.PublishOrderEvent(ctx, srv.newOrderEvent(ctx, eventType, order, warnings)); err != nil {
		srv.log(ctx).Warn("Failed to publish order event",
			slog.String("event_type", eventType),
			slog.String("order_id", order.ID.String()),
			slog.Any("error", err),
		)
	}
}

func (srv *orderService) newOrderEvent(ctx context.Context, eventType string, order *entity.Order, warnings []string) *service.OrderEvent {
	event := &service.OrderEvent{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  orderEventVersion,
		OccurredAt:    time.Now().UTC(),
		RequestID:     deliverycontext.GetRequestIDFromContext(ctx),
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		PaymentStatus: string(order.PaymentStatus),
		TotalAmount:   order.TotalAmount.StringFixed(2),
		PointsEarned:  order.PointsEarned,
		Warnings:      warnings,
	}
	if order.UserID != nil {
		event.UserID = order.UserID.String()
	}
	if order.AffiliateID != nil {
		event.AffiliateID = order.AffiliateID.String()
	}

	return event
}
