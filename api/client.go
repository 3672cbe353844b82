package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"taxiclient/pkg/errs"
	"taxiclient/pkg/logger"
	"taxiclient/pkg/models"
)

// Client is the stateless request/response caller for every command and
// query. Calls are synchronous and never retried here: create order and
// create offer are not idempotent, so blind retries would duplicate
// side effects. Retrying is the caller's decision.
type Client struct {
	client     *http.Client
	baseURL    string
	credential CredentialFunc
	log        logger.ILogger
}

func NewClient(baseURL string, timeout time.Duration, credential CredentialFunc, log logger.ILogger) *Client {
	return &Client{
		client:     &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		credential: credential,
		log:        log,
	}
}

// envelope is the server's uniform response body: data on success,
// error on failure.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	cred := c.credential()
	if cred == "" {
		// Fail fast before any network call is attempted.
		return errs.ErrUnauthenticated
	}

	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderCredential, cred)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && resp.StatusCode < 400 {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errs.ErrUnauthenticated
	case resp.StatusCode == http.StatusNotFound:
		return errs.ErrNotFound
	case resp.StatusCode >= 400:
		c.log.Warning("server error", logger.Int("status", resp.StatusCode), logger.String("path", path))
		return &errs.ServerError{Status: resp.StatusCode, Message: env.Error}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

func (c *Client) GetProfile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, role models.Role) (*models.Profile, error) {
	var p models.Profile
	body := map[string]models.Role{"role": role}
	if err := c.do(ctx, http.MethodPut, "/profile", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetOrders(ctx context.Context, status models.OrderStatus) ([]*models.Order, error) {
	path := "/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var orders []*models.Order
	if err := c.do(ctx, http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	var o models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest) (*models.Order, error) {
	var o models.Order
	if err := c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(id), req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) GetOffers(ctx context.Context, orderID string) ([]*models.PriceOffer, error) {
	var offers []*models.PriceOffer
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/offers", nil, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

func (c *Client) CreateOffer(ctx context.Context, req CreateOfferRequest) (*models.PriceOffer, error) {
	var of models.PriceOffer
	if err := c.do(ctx, http.MethodPost, "/offers", req, &of); err != nil {
		return nil, err
	}
	return &of, nil
}

func (c *Client) UpdateOffer(ctx context.Context, id string, status models.OfferStatus) (*models.PriceOffer, error) {
	var of models.PriceOffer
	body := map[string]models.OfferStatus{"status": status}
	if err := c.do(ctx, http.MethodPut, "/offers/"+url.PathEscape(id), body, &of); err != nil {
		return nil, err
	}
	return &of, nil
}

func (c *Client) GetMessages(ctx context.Context, orderID string) ([]*models.Message, error) {
	var msgs []*models.Message
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/messages", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) SendMessage(ctx context.Context, orderID, text string) (*models.Message, error) {
	var m models.Message
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/messages", body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
