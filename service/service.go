package service

import (
	"sync"

	"taxiclient/api"
	"taxiclient/cache"
	"taxiclient/pkg/logger"
	"taxiclient/pkg/models"
	"taxiclient/session"
	"taxiclient/socket"
)

type IServiceManager interface {
	Profile() ProfileService
	Order() OrderService
	Offer() OfferService
	Chat() ChatService

	// ApplyEvent funnels a push envelope through the same cache merge
	// the RPC paths use. Wired to the transport channel by New; exposed
	// so tests can drive reconciliation without a live socket.
	ApplyEvent(env models.Envelope)

	Close()
}

type manager struct {
	client  api.IClient
	store   cache.IStore
	channel socket.IChannel
	sess    *session.Session
	log     logger.ILogger

	mu      sync.Mutex
	watched map[string]struct{}

	profileService ProfileService
	orderService   OrderService
	offerService   OfferService
	chatService    ChatService
}

// New wires the negotiation services to their collaborators and hooks
// the transport channel into the cache. Everything is explicitly
// constructed; tests build managers over fakes the same way.
func New(client api.IClient, store cache.IStore, channel socket.IChannel, sess *session.Session, log logger.ILogger) IServiceManager {
	m := &manager{
		client:  client,
		store:   store,
		channel: channel,
		sess:    sess,
		log:     log,
		watched: make(map[string]struct{}),
	}
	m.profileService = &profileService{m: m}
	m.orderService = &orderService{m: m}
	m.offerService = &offerService{m: m}
	m.chatService = &chatService{m: m}

	if channel != nil {
		channel.OnEvent(m.ApplyEvent)
		channel.OnReconnect(m.refetchWatched)
		channel.OnStatus(func(s socket.Status) {
			if s == socket.StatusOffline {
				m.log.Warning("push channel offline, state may be stale")
			}
		})
	}
	return m
}

func (m *manager) Profile() ProfileService { return m.profileService }
func (m *manager) Order() OrderService     { return m.orderService }
func (m *manager) Offer() OfferService     { return m.offerService }
func (m *manager) Chat() ChatService       { return m.chatService }

func (m *manager) Close() {
	if m.channel != nil {
		if err := m.channel.Close(); err != nil {
			m.log.Warning("failed to close push channel", logger.Error(err))
		}
	}
}

func (m *manager) watch(orderID string) {
	m.mu.Lock()
	m.watched[orderID] = struct{}{}
	m.mu.Unlock()
}

func (m *manager) unwatch(orderID string) {
	m.mu.Lock()
	delete(m.watched, orderID)
	m.mu.Unlock()
}

func (m *manager) watchedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.watched))
	for id := range m.watched {
		ids = append(ids, id)
	}
	return ids
}
