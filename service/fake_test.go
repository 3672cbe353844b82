package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"taxiclient/api"
	"taxiclient/pkg/errs"
	"taxiclient/pkg/models"
	"taxiclient/socket"
)

// backendState is the shared in-process backend: one negotiation world
// that several fake clients (one per actor) operate on. Mutations bump
// a logical clock so updatedAt ordering is deterministic.
type backendState struct {
	mu       sync.Mutex
	now      time.Time
	orders   map[string]*models.Order
	offers   map[string]*models.PriceOffer
	messages map[string][]*models.Message

	updateOrderCalls int
	updateOfferCalls int
	createCalls      int
}

func newBackend() *backendState {
	return &backendState{
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		orders:   make(map[string]*models.Order),
		offers:   make(map[string]*models.PriceOffer),
		messages: make(map[string][]*models.Message),
	}
}

func (st *backendState) tick() time.Time {
	st.now = st.now.Add(time.Second)
	return st.now
}

func (st *backendState) mutationCalls() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.updateOrderCalls + st.updateOfferCalls + st.createCalls
}

// touchOrder mutates an order server-side without going through any
// client, simulating the other actor acting during a disconnect.
func (st *backendState) touchOrder(id string, fn func(o *models.Order)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	o := st.orders[id]
	fn(o)
	o.UpdatedAt = st.tick()
}

// fakeClient is one actor's view of the backend, implementing the full
// RPC surface in memory.
type fakeClient struct {
	st      *backendState
	profile *models.Profile
}

func newFakeClient(st *backendState, id string, role models.Role) *fakeClient {
	r := role
	return &fakeClient{
		st:      st,
		profile: &models.Profile{ID: id, Username: id, Role: &r},
	}
}

var _ api.IClient = (*fakeClient)(nil)

func (c *fakeClient) GetProfile(ctx context.Context) (*models.Profile, error) {
	p := *c.profile
	return &p, nil
}

func (c *fakeClient) UpdateProfile(ctx context.Context, role models.Role) (*models.Profile, error) {
	r := role
	c.profile.Role = &r
	p := *c.profile
	return &p, nil
}

func (c *fakeClient) GetOrders(ctx context.Context, status models.OrderStatus) ([]*models.Order, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	var out []*models.Order
	for _, o := range c.st.orders {
		if status == "" || o.Status == status {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (c *fakeClient) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	o, ok := c.st.orders[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (c *fakeClient) CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*models.Order, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	c.st.createCalls++
	now := c.st.tick()
	o := &models.Order{
		ID:          uuid.NewString(),
		FromAddress: req.FromAddress,
		ToAddress:   req.ToAddress,
		Price:       req.Price,
		Comment:     req.Comment,
		Status:      models.OrderPending,
		PassengerID: c.profile.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.st.orders[o.ID] = o
	cp := *o
	return &cp, nil
}

func (c *fakeClient) UpdateOrder(ctx context.Context, id string, req api.UpdateOrderRequest) (*models.Order, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	c.st.updateOrderCalls++
	o, ok := c.st.orders[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if req.Status != "" {
		o.Status = req.Status
	}
	if req.DriverID != nil {
		o.DriverID = req.DriverID
	}
	if req.FinalPrice != nil {
		o.FinalPrice = req.FinalPrice
	}
	now := c.st.tick()
	switch o.Status {
	case models.OrderInProgress:
		o.StartedAt = &now
	case models.OrderCompleted:
		o.CompletedAt = &now
	}
	o.UpdatedAt = now
	cp := *o
	return &cp, nil
}

func (c *fakeClient) GetOffers(ctx context.Context, orderID string) ([]*models.PriceOffer, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	var out []*models.PriceOffer
	for _, of := range c.st.offers {
		if of.OrderID == orderID {
			cp := *of
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (c *fakeClient) CreateOffer(ctx context.Context, req api.CreateOfferRequest) (*models.PriceOffer, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	c.st.createCalls++
	o, ok := c.st.orders[req.OrderID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	now := c.st.tick()
	of := &models.PriceOffer{
		ID:        uuid.NewString(),
		OrderID:   req.OrderID,
		DriverID:  c.profile.ID,
		Price:     req.Price,
		Status:    models.OfferPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.st.offers[of.ID] = of
	// The server flips the order to its advisory negotiating label once
	// offers start arriving.
	if o.Status == models.OrderPending {
		o.Status = models.OrderNegotiating
		o.UpdatedAt = now
	}
	cp := *of
	return &cp, nil
}

func (c *fakeClient) UpdateOffer(ctx context.Context, id string, status models.OfferStatus) (*models.PriceOffer, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	c.st.updateOfferCalls++
	of, ok := c.st.offers[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	of.Status = status
	of.UpdatedAt = c.st.tick()
	cp := *of
	return &cp, nil
}

func (c *fakeClient) GetMessages(ctx context.Context, orderID string) ([]*models.Message, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return append([]*models.Message(nil), c.st.messages[orderID]...), nil
}

func (c *fakeClient) SendMessage(ctx context.Context, orderID, text string) (*models.Message, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	m := &models.Message{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		SenderID:  c.profile.ID,
		Text:      text,
		CreatedAt: c.st.tick(),
	}
	c.st.messages[orderID] = append(c.st.messages[orderID], m)
	cp := *m
	return &cp, nil
}

// fakeChannel satisfies the transport interface without a socket.
type fakeChannel struct {
	mu          sync.Mutex
	joined      []string
	left        []string
	onEvent     func(models.Envelope)
	onReconnect func()
	onStatus    func(socket.Status)
}

var _ socket.IChannel = (*fakeChannel)(nil)

func (f *fakeChannel) Open(ctx context.Context) error { return nil }
func (f *fakeChannel) Close() error                   { return nil }

func (f *fakeChannel) Join(orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined = append(f.joined, orderID)
	return nil
}

func (f *fakeChannel) Leave(orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.left = append(f.left, orderID)
	return nil
}

func (f *fakeChannel) OnEvent(fn func(models.Envelope)) { f.onEvent = fn }
func (f *fakeChannel) OnReconnect(fn func())            { f.onReconnect = fn }
func (f *fakeChannel) OnStatus(fn func(socket.Status))  { f.onStatus = fn }

func (f *fakeChannel) fireReconnect() {
	if f.onReconnect != nil {
		f.onReconnect()
	}
}
