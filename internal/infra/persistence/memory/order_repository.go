package memory

import (
	"context"
	"sort"
	"time"

	"mlm/internal/domain/entity"
	"mlm/internal/domain/repository"
	"mlm/internal/errors"

	"github.com/google/uuid"
)

type orderRepository struct {
	store *Store
	undo  *undoLog
}

// NewOrderRepository creates an OrderRepository backed by the store.
func NewOrderRepository(store *Store) repository.OrderRepository {
	return &orderRepository{store: store}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.data.orders {
		if existing.OrderNumber == order.OrderNumber {
			return repository.ErrDuplicateOrderNumber
		}
	}

	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	r.store.data.orders[order.ID] = cloneOrder(order)
	r.store.data.orderSeq = append(r.store.data.orderSeq, order.ID)

	id := order.ID
	r.undo.record(func(data *state) {
		delete(data.orders, id)
		delete(data.audit, id)
		data.orderSeq = removeID(data.orderSeq, id)
	})

	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	order, ok := r.store.data.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	return cloneOrder(order), nil
}

func (r *orderRepository) List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	orders := make([]*entity.Order, 0)
	for _, id := range r.store.data.orderSeq {
		order, ok := r.store.data.orders[id]
		if !ok {
			continue
		}
		if filter.UserID != nil && !order.IsOwnedBy(*filter.UserID) {
			continue
		}
		if filter.Status != nil && order.PaymentStatus != *filter.Status {
			continue
		}
		listed := cloneOrder(order)
		listed.Items = nil
		orders = append(orders, listed)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return paginate(orders, filter.Limit, filter.Offset), nil
}

func (r *orderRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.OrderStatus, adminNotes *string) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.data.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if order.PaymentStatus != from {
		return repository.ErrOrderStatusChanged
	}

	previousNotes, previousUpdatedAt := order.AdminNotes, order.UpdatedAt
	r.undo.record(func(data *state) {
		if order, ok := data.orders[id]; ok && order.PaymentStatus == to {
			order.PaymentStatus = from
			order.AdminNotes = previousNotes
			order.UpdatedAt = previousUpdatedAt
		}
	})

	order.PaymentStatus = to
	if adminNotes != nil {
		notes := *adminNotes
		order.AdminNotes = &notes
	}
	order.UpdatedAt = time.Now()

	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.data.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	audit := r.store.data.audit[id]
	delete(r.store.data.orders, id)
	delete(r.store.data.audit, id)

	r.undo.record(func(data *state) {
		if _, exists := data.orders[id]; exists {
			return
		}
		data.orders[id] = order
		data.audit[id] = append(audit, data.audit[id]...)
	})

	return nil
}

type orderAuditRepository struct {
	store *Store
}

// NewOrderAuditRepository creates an OrderAuditRepository backed by the store.
func NewOrderAuditRepository(store *Store) repository.OrderAuditRepository {
	return &orderAuditRepository{store: store}
}

func (r *orderAuditRepository) Append(ctx context.Context, entries []*entity.OrderAuditEntry) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	for _, entry := range entries {
		if entry.OrderID == uuid.Nil {
			return repository.ErrAuditEntryInvalid
		}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	for _, entry := range entries {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		stored := *entry
		r.store.data.audit[entry.OrderID] = append(r.store.data.audit[entry.OrderID], &stored)
	}

	return nil
}

func (r *orderAuditRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*entity.OrderAuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stored := r.store.data.audit[orderID]
	entries := make([]*entity.OrderAuditEntry, len(stored))
	for i, entry := range stored {
		v := *entry
		entries[i] = &v
	}

	return entries, nil
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}

	return ids
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}
