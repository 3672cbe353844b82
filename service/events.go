package service

import (
	"context"
	"encoding/json"
	"time"

	"taxiclient/pkg/logger"
	"taxiclient/pkg/models"
)

const refetchTimeout = 10 * time.Second

// ApplyEvent merges one push envelope into the cache. Stale payloads
// are discarded by the merge itself; unknown types are dropped here.
func (m *manager) ApplyEvent(env models.Envelope) {
	switch env.Type {
	case models.EventOrderCreated, models.EventOrderUpdated:
		var o models.Order
		if err := json.Unmarshal(env.Payload, &o); err != nil {
			m.log.Debug("bad order payload dropped", logger.Error(err))
			return
		}
		m.store.ApplyOrder(&o)
	case models.EventOfferCreated, models.EventOfferUpdated:
		var of models.PriceOffer
		if err := json.Unmarshal(env.Payload, &of); err != nil {
			m.log.Debug("bad offer payload dropped", logger.Error(err))
			return
		}
		m.store.ApplyOffer(&of)
	case models.EventMessageCreated:
		var msg models.Message
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			m.log.Debug("bad message payload dropped", logger.Error(err))
			return
		}
		m.store.ApplyMessage(&msg)
	default:
		m.log.Debug("unknown push event dropped", logger.String("type", env.Type))
	}
}

// refetchWatched runs after a reconnect. Events missed during the
// disconnect window are not replayed, so every watched order is read
// back through the RPC client; the merge keeps whichever copy is newer.
func (m *manager) refetchWatched() {
	ctx, cancel := context.WithTimeout(context.Background(), refetchTimeout)
	defer cancel()

	for _, id := range m.watchedIDs() {
		if err := m.refetchOrder(ctx, id); err != nil {
			m.log.Warning("failed to re-fetch order after reconnect",
				logger.String("orderId", id), logger.Error(err))
		}
	}
}

func (m *manager) refetchOrder(ctx context.Context, orderID string) error {
	o, err := m.client.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	m.store.ApplyOrder(o)

	offers, err := m.client.GetOffers(ctx, orderID)
	if err != nil {
		return err
	}
	for _, of := range offers {
		m.store.ApplyOffer(of)
	}

	msgs, err := m.client.GetMessages(ctx, orderID)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		m.store.ApplyMessage(msg)
	}
	return nil
}
