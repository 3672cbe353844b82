package service

import (
	"context"
	"fmt"

	"taxiclient/api"
	"taxiclient/cache"
	"taxiclient/negotiation"
	"taxiclient/pkg/errs"
	"taxiclient/pkg/models"
)

type OfferService interface {
	List(ctx context.Context, orderID string) ([]*models.PriceOffer, error)
	Create(ctx context.Context, orderID string, price int64) (*models.PriceOffer, error)
	Accept(ctx context.Context, orderID, offerID string) (*models.Order, error)
	Reject(ctx context.Context, orderID, offerID string) (*models.PriceOffer, error)
}

type offerService struct {
	m *manager
}

func (s *offerService) List(ctx context.Context, orderID string) ([]*models.PriceOffer, error) {
	offers, err := s.m.client.GetOffers(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, of := range offers {
		s.m.store.ApplyOffer(of)
	}
	return offers, nil
}

func (s *offerService) Create(ctx context.Context, orderID string, price int64) (*models.PriceOffer, error) {
	role, err := s.m.sess.Role()
	if err != nil {
		return nil, err
	}
	if role != models.RoleDriver {
		return nil, fmt.Errorf("%w: only drivers submit offers", errs.ErrInvalidTransition)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: offer price must be positive", errs.ErrInvalidTransition)
	}

	o, err := s.order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Negotiable() {
		return nil, fmt.Errorf("%w: order is not negotiable (status %s)", errs.ErrInvalidTransition, o.Status)
	}

	of, err := s.m.client.CreateOffer(ctx, api.CreateOfferRequest{OrderID: orderID, Price: price})
	if err != nil {
		return nil, err
	}
	s.m.store.ApplyOffer(of)
	return of, nil
}

// Accept is the joint operation: the offer moves to accepted and the
// parent order is forced into accepted with the offer's driver and
// price bound. The server is updated in two calls, but the cache
// commits both results in a single mutation so status, driverId and
// finalPrice are never observed split. If the order update fails after
// the offer update succeeded, nothing is committed locally; the
// server's push events reconcile the cache.
func (s *offerService) Accept(ctx context.Context, orderID, offerID string) (*models.Order, error) {
	role, err := s.m.sess.Role()
	if err != nil {
		return nil, err
	}
	o, err := s.order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	of, err := s.offer(ctx, orderID, offerID)
	if err != nil {
		return nil, err
	}
	if err := negotiation.ValidateOfferTransition(role, of.Status, models.OfferAccepted); err != nil {
		return nil, err
	}
	if err := negotiation.ValidateTransition(role, o.Status, models.OrderAccepted); err != nil {
		return nil, err
	}

	updatedOffer, err := s.m.client.UpdateOffer(ctx, offerID, models.OfferAccepted)
	if err != nil {
		return nil, err
	}
	updatedOrder, err := s.m.client.UpdateOrder(ctx, orderID, api.UpdateOrderRequest{
		Status:     models.OrderAccepted,
		DriverID:   &of.DriverID,
		FinalPrice: &of.Price,
	})
	if err != nil {
		return nil, err
	}

	s.m.store.Update(orderID, func(e cache.Entry) cache.Entry {
		e.Order = cache.MergeOrder(e.Order, updatedOrder)
		e.Offers = cache.MergeOffers(e.Offers, updatedOffer)
		return e
	})
	return updatedOrder, nil
}

// Reject declines one offer; the order stays negotiable and sibling
// offers are untouched.
func (s *offerService) Reject(ctx context.Context, orderID, offerID string) (*models.PriceOffer, error) {
	role, err := s.m.sess.Role()
	if err != nil {
		return nil, err
	}
	of, err := s.offer(ctx, orderID, offerID)
	if err != nil {
		return nil, err
	}
	if err := negotiation.ValidateOfferTransition(role, of.Status, models.OfferRejected); err != nil {
		return nil, err
	}

	updated, err := s.m.client.UpdateOffer(ctx, offerID, models.OfferRejected)
	if err != nil {
		return nil, err
	}
	s.m.store.ApplyOffer(updated)
	return updated, nil
}

func (s *offerService) order(ctx context.Context, orderID string) (*models.Order, error) {
	if e, ok := s.m.store.Get(orderID); ok && e.Order != nil {
		return e.Order, nil
	}
	o, err := s.m.client.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.m.store.ApplyOrder(o)
	return o, nil
}

func (s *offerService) offer(ctx context.Context, orderID, offerID string) (*models.PriceOffer, error) {
	if e, ok := s.m.store.Get(orderID); ok {
		for _, of := range e.Offers {
			if of.ID == offerID {
				return of, nil
			}
		}
	}
	offers, err := s.m.client.GetOffers(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, of := range offers {
		s.m.store.ApplyOffer(of)
	}
	for _, of := range offers {
		if of.ID == offerID {
			return of, nil
		}
	}
	return nil, errs.ErrNotFound
}
