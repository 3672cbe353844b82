package models

import "time"

type OrderStatus string

const (
	OrderPending     OrderStatus = "pending"
	OrderNegotiating OrderStatus = "negotiating"
	OrderAccepted    OrderStatus = "accepted"
	OrderInProgress  OrderStatus = "inProgress"
	OrderCompleted   OrderStatus = "completed"
	OrderCancelled   OrderStatus = "cancelled"
)

type Order struct {
	ID          string      `json:"id"`
	FromAddress string      `json:"fromAddress"`
	ToAddress   string      `json:"toAddress"`
	Price       *int64      `json:"price,omitempty"`
	FinalPrice  *int64      `json:"finalPrice,omitempty"`
	Status      OrderStatus `json:"status"`
	Comment     string      `json:"comment,omitempty"`
	PassengerID string      `json:"passengerId"`
	DriverID    *string     `json:"driverId,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	StartedAt   *time.Time  `json:"startedAt,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}

// Negotiable reports whether the order can still receive offers.
// "negotiating" is an advisory label the server sets once offers arrive;
// it gates nothing that "pending" does not.
func (o *Order) Negotiable() bool {
	return o.Status == OrderPending || o.Status == OrderNegotiating
}
