package postgres

import (
	"context"
	"time"

	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/lifecycle"
	"mlm/internal/domain/repository"
	"mlm/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// orderRepository implements repository.OrderRepository using GORM.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and its items. GORM writes the association in the same statement batch.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	orderM := fromOrderDomain(order)
	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		if uniqueViolationOn(err, "order_number") {
			return repository.ErrDuplicateOrderNumber
		}
		if isCheckConstraintViolation(err) {
			return repository.ErrInvalidQuantity
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create order")
	}

	order.CreatedAt = orderM.CreatedAt
	order.UpdatedAt = orderM.UpdatedAt

	return nil
}

func (repo *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	var orderM model.OrderModel
	err := repo.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&orderM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order by id")
	}

	return toOrderDomain(&orderM), nil
}

func (repo *orderRepository) List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	query := repo.db.WithContext(ctx).Model(&model.OrderModel{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("payment_status = ?", string(*filter.Status))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orderMs []*model.OrderModel
	if err := query.Order("created_at DESC").Find(&orderMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	orders := make([]*entity.Order, len(orderMs))
	for i, orderM := range orderMs {
		orders[i] = toOrderDomain(orderM)
	}

	return orders, nil
}

// TransitionStatus is a compare-and-set on payment_status. A miss is resolved into
// not-found or status-changed by a follow-up read.
func (repo *orderRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.OrderStatus, adminNotes *string) error {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	updates := map[string]any{
		"payment_status": string(to),
		"updated_at":     time.Now(),
	}
	if adminNotes != nil {
		updates["admin_notes"] = *adminNotes
	}

	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ? AND payment_status = ?", id, string(from)).
		Updates(updates)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to transition order status")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.OrderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to check order existence")
	}
	if count == 0 {
		return repository.ErrOrderNotFound
	}

	return repository.ErrOrderStatusChanged
}

func (repo *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	if err := repo.db.WithContext(ctx).Where("order_id = ?", id).Delete(&model.OrderItemModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete order items")
	}

	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.OrderModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete order")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}

	return nil
}

// orderAuditRepository implements repository.OrderAuditRepository using GORM.
type orderAuditRepository struct {
	db *gorm.DB
}

// NewOrderAuditRepository is the constructor for orderAuditRepository.
func NewOrderAuditRepository(db *gorm.DB) repository.OrderAuditRepository {
	return &orderAuditRepository{db: db}
}

func (repo *orderAuditRepository) Append(ctx context.Context, entries []*entity.OrderAuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	entryMs := make([]*model.OrderAuditEntryModel, len(entries))
	for i, entry := range entries {
		if entry.OrderID == uuid.Nil {
			return repository.ErrAuditEntryInvalid
		}
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		entryMs[i] = &model.OrderAuditEntryModel{
			ID:        entry.ID,
			OrderID:   entry.OrderID,
			Action:    string(entry.Action),
			Step:      entry.Step,
			Essential: entry.Essential,
			Outcome:   string(entry.Outcome),
			Detail:    entry.Detail,
			ActorID:   entry.ActorID,
			CreatedAt: entry.CreatedAt,
		}
	}

	if err := repo.db.WithContext(ctx).Create(&entryMs).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to append order audit entries")
	}

	return nil
}

func (repo *orderAuditRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*entity.OrderAuditEntry, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	var entryMs []*model.OrderAuditEntryModel
	if err := repo.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entryMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list order audit entries")
	}

	entries := make([]*entity.OrderAuditEntry, len(entryMs))
	for i, entryM := range entryMs {
		entries[i] = &entity.OrderAuditEntry{
			ID:        entryM.ID,
			OrderID:   entryM.OrderID,
			Action:    entity.OrderAction(entryM.Action),
			Step:      entryM.Step,
			Essential: entryM.Essential,
			Outcome:   entity.StepOutcome(entryM.Outcome),
			Detail:    entryM.Detail,
			ActorID:   entryM.ActorID,
			CreatedAt: entryM.CreatedAt,
		}
	}

	return entries, nil
}

func toOrderDomain(data *model.OrderModel) *entity.Order {
	if data == nil {
		return nil
	}

	order := &entity.Order{
		ID:                data.ID,
		OrderNumber:       data.OrderNumber,
		UserID:            data.UserID,
		AffiliateID:       data.AffiliateID,
		Subtotal:          data.Subtotal,
		DiscountAmount:    data.DiscountAmount,
		ShippingCost:      data.ShippingCost,
		TotalAmount:       data.TotalAmount,
		PointsEarned:      data.PointsEarned,
		WarehouseID:       data.WarehouseID,
		FulfillmentStatus: entity.FulfillmentStatus(data.FulfillmentStatus),
		PaymentStatus:     entity.OrderStatus(data.PaymentStatus),
		PaymentProofURL:   data.PaymentProofURL,
		ShippingAddress:   data.ShippingAddress,
		AdminNotes:        data.AdminNotes,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}

	if len(data.Items) > 0 {
		order.Items = make([]entity.OrderItem, len(data.Items))
		for i, item := range data.Items {
			order.Items[i] = entity.OrderItem{
				ID:            item.ID,
				OrderID:       item.OrderID,
				ProductID:     item.ProductID,
				Quantity:      item.Quantity,
				UnitPrice:     item.UnitPrice,
				TotalPrice:    item.TotalPrice,
				PointsPerUnit: item.PointsPerUnit,
			}
		}
	}

	return order
}

func fromOrderDomain(data *entity.Order) *model.OrderModel {
	if data == nil {
		return nil
	}

	orderM := &model.OrderModel{
		ID:                data.ID,
		OrderNumber:       data.OrderNumber,
		UserID:            data.UserID,
		AffiliateID:       data.AffiliateID,
		Subtotal:          data.Subtotal,
		DiscountAmount:    data.DiscountAmount,
		ShippingCost:      data.ShippingCost,
		TotalAmount:       data.TotalAmount,
		PointsEarned:      data.PointsEarned,
		WarehouseID:       data.WarehouseID,
		FulfillmentStatus: string(data.FulfillmentStatus),
		PaymentStatus:     string(data.PaymentStatus),
		PaymentProofURL:   data.PaymentProofURL,
		ShippingAddress:   data.ShippingAddress,
		AdminNotes:        data.AdminNotes,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}

	orderM.Items = make([]model.OrderItemModel, len(data.Items))
	for i, item := range data.Items {
		orderM.Items[i] = model.OrderItemModel{
			ID:            item.ID,
			OrderID:       data.ID,
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    item.TotalPrice,
			PointsPerUnit: item.PointsPerUnit,
		}
	}

	return orderM
}
