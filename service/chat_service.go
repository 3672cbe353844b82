package service

import (
	"context"
	"fmt"

	"taxiclient/pkg/errs"
	"taxiclient/pkg/models"
)

type ChatService interface {
	Messages(ctx context.Context, orderID string) ([]*models.Message, error)
	Send(ctx context.Context, orderID, text string) (*models.Message, error)
}

type chatService struct {
	m *manager
}

func (s *chatService) Messages(ctx context.Context, orderID string) ([]*models.Message, error) {
	msgs, err := s.m.client.GetMessages(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, msg := range msgs {
		s.m.store.ApplyMessage(msg)
	}
	e, _ := s.m.store.Get(orderID)
	return e.Messages, nil
}

// Send posts a chat message. The chat opens once the order has an
// assigned driver; both participants may write.
func (s *chatService) Send(ctx context.Context, orderID, text string) (*models.Message, error) {
	if _, err := s.m.sess.Role(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", errs.ErrInvalidTransition)
	}

	e, ok := s.m.store.Get(orderID)
	if !ok || e.Order == nil {
		o, err := s.m.client.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		s.m.store.ApplyOrder(o)
		e, _ = s.m.store.Get(orderID)
	}
	if e.Order.DriverID == nil {
		return nil, fmt.Errorf("%w: chat opens once a driver is assigned", errs.ErrInvalidTransition)
	}

	msg, err := s.m.client.SendMessage(ctx, orderID, text)
	if err != nil {
		return nil, err
	}
	s.m.store.ApplyMessage(msg)
	return msg, nil
}
