package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"

	"taxiclient/api"
	"taxiclient/pkg/errs"
	"taxiclient/pkg/logger"
	"taxiclient/pkg/models"
)

// Status of the push channel, reported through the OnStatus callback.
type Status int

const (
	StatusConnected Status = iota
	StatusReconnecting
	// StatusOffline means the retry budget is exhausted. RPC reads and
	// writes still work; cached state may be stale.
	StatusOffline
)

type IChannel interface {
	Open(ctx context.Context) error
	Close() error
	Join(orderID string) error
	Leave(orderID string) error
	OnEvent(fn func(models.Envelope))
	OnReconnect(fn func())
	OnStatus(fn func(Status))
}

// command is the outgoing room-subscription frame.
type command struct {
	Action  string `json:"action"`
	OrderID string `json:"orderId"`
}

// Channel is a single long-lived websocket connection. Reconnects with
// bounded exponential backoff and re-joins subscribed rooms; events
// missed while disconnected are not replayed, so consumers must
// re-fetch state through the RPC client when OnReconnect fires.
type Channel struct {
	url        string
	credential api.CredentialFunc
	maxRetries uint64
	retryBase  time.Duration
	log        logger.ILogger

	mu     sync.Mutex
	conn   *websocket.Conn
	rooms  map[string]struct{}
	closed bool

	// wmu serializes writes; gorilla allows one concurrent writer.
	wmu sync.Mutex

	onEvent     func(models.Envelope)
	onReconnect func()
	onStatus    func(Status)
}

func New(url string, credential api.CredentialFunc, maxRetries uint64, retryBase time.Duration, log logger.ILogger) *Channel {
	return &Channel{
		url:        url,
		credential: credential,
		maxRetries: maxRetries,
		retryBase:  retryBase,
		log:        log,
		rooms:      make(map[string]struct{}),
	}
}

func (c *Channel) OnEvent(fn func(models.Envelope)) { c.onEvent = fn }
func (c *Channel) OnReconnect(fn func())            { c.onReconnect = fn }
func (c *Channel) OnStatus(fn func(Status))         { c.onStatus = fn }

// Open dials the server and starts the read loop. The channel requires
// a usable credential; it is never opened before the role session has
// one.
func (c *Channel) Open(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.closed = false
	c.mu.Unlock()

	c.notifyStatus(StatusConnected)
	go c.readLoop(ctx, conn)
	return nil
}

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Channel) Join(orderID string) error {
	c.mu.Lock()
	c.rooms[orderID] = struct{}{}
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errs.ErrTransportUnavailable
	}
	return c.writeJSON(conn, command{Action: "join", OrderID: orderID})
}

func (c *Channel) Leave(orderID string) error {
	c.mu.Lock()
	delete(c.rooms, orderID)
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errs.ErrTransportUnavailable
	}
	return c.writeJSON(conn, command{Action: "leave", OrderID: orderID})
}

func (c *Channel) writeJSON(conn *websocket.Conn, v interface{}) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return conn.WriteJSON(v)
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	cred := c.credential()
	if cred == "" {
		return nil, errs.ErrUnauthenticated
	}
	header := http.Header{}
	header.Set(api.HeaderCredential, cred)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	return conn, err
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.isClosed() {
				return
			}
			c.log.Warning("push channel dropped", logger.Error(err))
			next, ok := c.reconnect(ctx)
			if !ok {
				return
			}
			conn = next
			continue
		}

		var env models.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Debug("unreadable push frame dropped", logger.Error(err))
			continue
		}
		if c.onEvent != nil {
			c.onEvent(env)
		}
	}
}

// reconnect re-dials with bounded exponential backoff and jitter. On
// success it re-joins every subscribed room and fires OnReconnect so
// the consumer can re-fetch state missed during the gap. On budget
// exhaustion it reports StatusOffline and gives up; Open must be called
// again to recover.
func (c *Channel) reconnect(ctx context.Context) (*websocket.Conn, bool) {
	c.notifyStatus(StatusReconnecting)

	backoff := retry.NewExponential(c.retryBase)
	backoff = retry.WithJitter(c.retryBase/2, backoff)
	backoff = retry.WithMaxRetries(c.maxRetries, backoff)

	var conn *websocket.Conn
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if c.isClosed() {
			return errs.ErrTransportUnavailable
		}
		next, err := c.dial(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		conn = next
		return nil
	})
	if err != nil || c.isClosed() {
		c.notifyStatus(StatusOffline)
		return nil, false
	}

	c.mu.Lock()
	c.conn = conn
	rooms := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		rooms = append(rooms, id)
	}
	c.mu.Unlock()

	for _, id := range rooms {
		if err := c.writeJSON(conn, command{Action: "join", OrderID: id}); err != nil {
			c.log.Warning("failed to re-join room", logger.String("orderId", id), logger.Error(err))
		}
	}

	c.notifyStatus(StatusConnected)
	if c.onReconnect != nil {
		c.onReconnect()
	}
	return conn, true
}

func (c *Channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Channel) notifyStatus(s Status) {
	if c.onStatus != nil {
		c.onStatus(s)
	}
}
