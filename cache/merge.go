package cache

import (
	"sort"

	"taxiclient/pkg/models"
)

// MergeOrder is the single reconciliation rule for both network paths:
// last writer wins by updatedAt, server content taken wholesale. A tie
// means "already applied", so the incoming copy is discarded.
func MergeOrder(current, incoming *models.Order) *models.Order {
	if current == nil {
		return incoming
	}
	if incoming == nil || !incoming.UpdatedAt.After(current.UpdatedAt) {
		return current
	}
	return incoming
}

// MergeOffers upserts one offer into the slice, applying the same
// last-writer-wins rule per offer id. Order of unrelated offers is kept.
func MergeOffers(current []*models.PriceOffer, incoming *models.PriceOffer) []*models.PriceOffer {
	if incoming == nil {
		return current
	}
	for i, of := range current {
		if of.ID == incoming.ID {
			if incoming.UpdatedAt.After(of.UpdatedAt) {
				current[i] = incoming
			}
			return current
		}
	}
	return append(current, incoming)
}

// MergeMessages inserts a message if unseen. Messages are immutable, so
// a duplicate id is always a redelivery and is dropped. The slice stays
// ordered by createdAt.
func MergeMessages(current []*models.Message, incoming *models.Message) []*models.Message {
	if incoming == nil {
		return current
	}
	for _, m := range current {
		if m.ID == incoming.ID {
			return current
		}
	}
	current = append(current, incoming)
	sort.SliceStable(current, func(i, j int) bool {
		return current[i].CreatedAt.Before(current[j].CreatedAt)
	})
	return current
}
