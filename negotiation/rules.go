package negotiation

import (
	"taxiclient/pkg/errs"
	"taxiclient/pkg/models"
)

// CanTransition reports whether the given role may move an order between
// the two statuses. Pure predicate: preconditions that need data beyond
// the statuses (a pending offer to accept, a bound driver) are checked by
// the service layer before the call goes out.
func CanTransition(role models.Role, from, to models.OrderStatus) bool {
	negotiable := from == models.OrderPending || from == models.OrderNegotiating

	switch to {
	case models.OrderAccepted:
		// Passenger accepts a pending offer, or the driver takes the
		// order directly at its posted price.
		return negotiable
	case models.OrderCancelled:
		if negotiable {
			return role == models.RolePassenger
		}
		return from == models.OrderAccepted
	case models.OrderInProgress:
		return from == models.OrderAccepted && role == models.RoleDriver
	case models.OrderCompleted:
		return from == models.OrderInProgress && role == models.RoleDriver
	}
	return false
}

// CanTransitionOffer reports whether the role may move a price offer
// between the two statuses. Only the passenger decides, and only once:
// offers never leave accepted or rejected.
func CanTransitionOffer(role models.Role, from, to models.OfferStatus) bool {
	if role != models.RolePassenger || from != models.OfferPending {
		return false
	}
	return to == models.OfferAccepted || to == models.OfferRejected
}

// ValidateTransition wraps CanTransition into the error taxonomy.
func ValidateTransition(role models.Role, from, to models.OrderStatus) error {
	if !CanTransition(role, from, to) {
		return errs.InvalidTransition(from, to)
	}
	return nil
}

// ValidateOfferTransition wraps CanTransitionOffer into the error taxonomy.
func ValidateOfferTransition(role models.Role, from, to models.OfferStatus) error {
	if !CanTransitionOffer(role, from, to) {
		return errs.InvalidOfferTransition(from, to)
	}
	return nil
}
