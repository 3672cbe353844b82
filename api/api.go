package api

import (
	"context"

	"taxiclient/pkg/models"
)

// CredentialFunc supplies the opaque session credential from the host
// handshake. An empty string means no usable credential yet.
type CredentialFunc func() string

// HeaderCredential is the dedicated request header carrying the session
// credential on every call.
const HeaderCredential = "X-Session-Credential"

type CreateOrderRequest struct {
	FromAddress string `json:"fromAddress"`
	ToAddress   string `json:"toAddress"`
	Price       *int64 `json:"price,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

type UpdateOrderRequest struct {
	Status     models.OrderStatus `json:"status,omitempty"`
	FinalPrice *int64             `json:"finalPrice,omitempty"`
	DriverID   *string            `json:"driverId,omitempty"`
}

type CreateOfferRequest struct {
	OrderID string `json:"orderId"`
	Price   int64  `json:"price"`
}

type IClient interface {
	GetProfile(ctx context.Context) (*models.Profile, error)
	UpdateProfile(ctx context.Context, role models.Role) (*models.Profile, error)

	GetOrders(ctx context.Context, status models.OrderStatus) ([]*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error)
	UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest) (*models.Order, error)

	GetOffers(ctx context.Context, orderID string) ([]*models.PriceOffer, error)
	CreateOffer(ctx context.Context, req CreateOfferRequest) (*models.PriceOffer, error)
	UpdateOffer(ctx context.Context, id string, status models.OfferStatus) (*models.PriceOffer, error)

	GetMessages(ctx context.Context, orderID string) ([]*models.Message, error)
	SendMessage(ctx context.Context, orderID, text string) (*models.Message, error)
}
