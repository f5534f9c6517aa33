package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
	"github.com/jwalitptl/ed-orders/pkg/errors"
)

// orderRepository keeps orders in submission order.
type orderRepository struct {
	mu     sync.RWMutex
	orders []*model.Order
	byID   map[string]int
}

func NewOrderRepository() repository.OrderRepository {
	return &orderRepository{byID: make(map[string]int)}
}

func (r *orderRepository) Append(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[order.ID]; exists {
		return errors.Conflict("order already exists", nil)
	}
	stored := *order
	r.byID[order.ID] = len(r.orders)
	r.orders = append(r.orders, &stored)
	return nil
}

func (r *orderRepository) Get(_ context.Context, id string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound("order", nil)
	}
	o := *r.orders[idx]
	return &o, nil
}

func (r *orderRepository) List(_ context.Context, filters *model.OrderFilters) ([]*model.Order, error) {
	if filters == nil {
		filters = &model.OrderFilters{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filters.PatientMRN != "" && o.PatientMRN != filters.PatientMRN {
			continue
		}
		if filters.Kind != "" && o.Kind != filters.Kind {
			continue
		}
		if filters.Status != "" && o.Status != filters.Status {
			continue
		}
		cp := *o
		result = append(result, &cp)
	}
	return result, nil
}

func (r *orderRepository) UpdateStatus(_ context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound("order", nil)
	}
	r.orders[idx].Status = status
	r.orders[idx].UpdatedAt = time.Now()
	o := *r.orders[idx]
	return &o, nil
}
