package cache

import (
	"sync"

	"taxiclient/pkg/models"
)

// Entry is the per-order aggregate the UI observes: latest known order,
// its offers, and its chat. Rebuilt from server responses and push
// events; never persisted.
type Entry struct {
	Order    *models.Order
	Offers   []*models.PriceOffer
	Messages []*models.Message
}

type IStore interface {
	Get(orderID string) (Entry, bool)
	Set(orderID string, e Entry)
	Update(orderID string, fn func(Entry) Entry)
	Orders() []*models.Order

	ApplyOrder(o *models.Order)
	ApplyOffer(of *models.PriceOffer)
	ApplyMessage(m *models.Message)
}

type store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func New() IStore {
	return &store{
		entries: make(map[string]Entry),
	}
}

func (s *store) Get(orderID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[orderID]
	if !ok {
		return Entry{}, false
	}
	return e.snapshot(), true
}

func (s *store) Set(orderID string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[orderID] = e
}

// Update applies fn to the current snapshot under the write lock,
// creating the entry if absent. fn must be pure; whatever it returns is
// committed as one mutation, so multi-field updates (acceptance binding
// status, driver and final price) are never observed split.
func (s *store) Update(orderID string, fn func(Entry) Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[orderID] = fn(s.entries[orderID].snapshot())
}

func (s *store) Orders() []*models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := make([]*models.Order, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Order != nil {
			orders = append(orders, e.Order)
		}
	}
	return orders
}

// ApplyOrder merges an order arriving from either network path (RPC
// response or push event) into its entry.
func (s *store) ApplyOrder(o *models.Order) {
	s.Update(o.ID, func(e Entry) Entry {
		e.Order = MergeOrder(e.Order, o)
		return e
	})
}

func (s *store) ApplyOffer(of *models.PriceOffer) {
	s.Update(of.OrderID, func(e Entry) Entry {
		e.Offers = MergeOffers(e.Offers, of)
		return e
	})
}

func (s *store) ApplyMessage(m *models.Message) {
	s.Update(m.OrderID, func(e Entry) Entry {
		e.Messages = MergeMessages(e.Messages, m)
		return e
	})
}

// snapshot copies the slice headers so Update callers can append without
// aliasing the stored entry. Elements are treated as immutable: merge
// always swaps whole pointers, never mutates in place.
func (e Entry) snapshot() Entry {
	out := Entry{Order: e.Order}
	out.Offers = append([]*models.PriceOffer(nil), e.Offers...)
	out.Messages = append([]*models.Message(nil), e.Messages...)
	return out
}
