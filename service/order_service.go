package service

import (
	"context"
	"fmt"

	"taxiclient/api"
	"taxiclient/negotiation"
	"taxiclient/pkg/errs"
	"taxiclient/pkg/models"
)

type OrderService interface {
	List(ctx context.Context, status models.OrderStatus) ([]*models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	Create(ctx context.Context, req api.CreateOrderRequest) (*models.Order, error)
	Cancel(ctx context.Context, id string) (*models.Order, error)
	Start(ctx context.Context, id string) (*models.Order, error)
	Complete(ctx context.Context, id string) (*models.Order, error)
	AcceptDirect(ctx context.Context, id string) (*models.Order, error)

	// Watch joins the order's push room and primes the cache. Leaving
	// is explicit; rooms are never garbage collected implicitly.
	Watch(ctx context.Context, id string) error
	Unwatch(id string) error
}

type orderService struct {
	m *manager
}

func (s *orderService) List(ctx context.Context, status models.OrderStatus) ([]*models.Order, error) {
	orders, err := s.m.client.GetOrders(ctx, status)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		s.m.store.ApplyOrder(o)
	}
	return orders, nil
}

// Get serves from the cache when possible; reads never block on the
// network once an order is known locally.
func (s *orderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.current(ctx, id)
}

func (s *orderService) Create(ctx context.Context, req api.CreateOrderRequest) (*models.Order, error) {
	role, err := s.m.sess.Role()
	if err != nil {
		return nil, err
	}
	if role != models.RolePassenger {
		return nil, fmt.Errorf("%w: only passengers create orders", errs.ErrInvalidTransition)
	}
	if req.FromAddress == "" || req.ToAddress == "" {
		return nil, fmt.Errorf("%w: both addresses are required", errs.ErrInvalidTransition)
	}

	o, err := s.m.client.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	s.m.store.ApplyOrder(o)
	return o, nil
}

func (s *orderService) Cancel(ctx context.Context, id string) (*models.Order, error) {
	return s.transition(ctx, id, models.OrderCancelled, api.UpdateOrderRequest{})
}

func (s *orderService) Start(ctx context.Context, id string) (*models.Order, error) {
	o, err := s.current(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.DriverID == nil {
		return nil, fmt.Errorf("%w: no driver bound", errs.ErrInvalidTransition)
	}
	return s.transition(ctx, id, models.OrderInProgress, api.UpdateOrderRequest{})
}

func (s *orderService) Complete(ctx context.Context, id string) (*models.Order, error) {
	return s.transition(ctx, id, models.OrderCompleted, api.UpdateOrderRequest{})
}

// AcceptDirect is the driver taking the order at its posted price:
// status, driver binding and final price form one logical update.
func (s *orderService) AcceptDirect(ctx context.Context, id string) (*models.Order, error) {
	role, err := s.m.sess.Role()
	if err != nil {
		return nil, err
	}
	if role != models.RoleDriver {
		return nil, fmt.Errorf("%w: only drivers accept directly", errs.ErrInvalidTransition)
	}
	o, err := s.current(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Price == nil {
		return nil, fmt.Errorf("%w: order has no posted price", errs.ErrInvalidTransition)
	}
	driverID := s.m.sess.ProfileID()
	return s.transition(ctx, id, models.OrderAccepted, api.UpdateOrderRequest{
		DriverID:   &driverID,
		FinalPrice: o.Price,
	})
}

func (s *orderService) Watch(ctx context.Context, id string) error {
	if s.m.channel != nil {
		if err := s.m.channel.Join(id); err != nil {
			return err
		}
	}
	s.m.watch(id)
	// Prime after joining so nothing lands in the gap between the two.
	return s.m.refetchOrder(ctx, id)
}

func (s *orderService) Unwatch(id string) error {
	s.m.unwatch(id)
	if s.m.channel != nil {
		return s.m.channel.Leave(id)
	}
	return nil
}

// transition validates the status change locally, against the cached
// snapshot, before any mutation goes out. An illegal request never
// reaches the network and never touches the cache.
func (s *orderService) transition(ctx context.Context, id string, to models.OrderStatus, req api.UpdateOrderRequest) (*models.Order, error) {
	role, err := s.m.sess.Role()
	if err != nil {
		return nil, err
	}
	o, err := s.current(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := negotiation.ValidateTransition(role, o.Status, to); err != nil {
		return nil, err
	}

	req.Status = to
	updated, err := s.m.client.UpdateOrder(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.m.store.ApplyOrder(updated)
	return updated, nil
}

func (s *orderService) current(ctx context.Context, id string) (*models.Order, error) {
	if e, ok := s.m.store.Get(id); ok && e.Order != nil {
		return e.Order, nil
	}
	o, err := s.m.client.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	s.m.store.ApplyOrder(o)
	return o, nil
}
