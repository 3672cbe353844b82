package models

import "time"

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

type PriceOffer struct {
	ID        string      `json:"id"`
	OrderID   string      `json:"orderId"`
	DriverID  string      `json:"driverId"`
	Price     int64       `json:"price"`
	Status    OfferStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
