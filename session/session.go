package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"taxiclient/api"
	"taxiclient/pkg/errs"
	"taxiclient/pkg/logger"
	"taxiclient/pkg/models"
)

// HandshakeFunc asks the embedding host application for the session
// credential and the opaque actor identifier. Both empty until the host
// finishes its bootstrap.
type HandshakeFunc func() (credential, userID string, err error)

// Session resolves which of the two actor roles the current user is
// acting as. Until resolved, every negotiation operation is blocked
// with RoleNotAssigned. The role is immutable once read.
type Session struct {
	handshake  HandshakeFunc
	maxRetries uint64
	retryBase  time.Duration
	log        logger.ILogger

	mu         sync.RWMutex
	credential string
	userID     string
	profileID  string
	role       *models.Role
}

func New(handshake HandshakeFunc, maxRetries uint64, retryBase time.Duration, log logger.ILogger) *Session {
	return &Session{
		handshake:  handshake,
		maxRetries: maxRetries,
		retryBase:  retryBase,
		log:        log,
	}
}

// Await polls the host handshake with bounded exponential backoff until
// it yields a credential. The host bootstrap is the one external
// readiness this client waits for.
func (s *Session) Await(ctx context.Context) error {
	backoff := retry.NewExponential(s.retryBase)
	backoff = retry.WithJitter(s.retryBase/2, backoff)
	backoff = retry.WithMaxRetries(s.maxRetries, backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		cred, userID, err := s.handshake()
		if err != nil {
			return retry.RetryableError(err)
		}
		if cred == "" {
			return retry.RetryableError(errors.New("host handshake not ready"))
		}
		s.mu.Lock()
		s.credential = cred
		s.userID = userID
		s.mu.Unlock()
		return nil
	})
}

// Credential returns the session credential, or "" when the handshake
// has not completed. Shaped to plug straight into the RPC client.
func (s *Session) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Resolve reads the server-held profile and freezes the role for the
// rest of the session. Resolving an already-resolved session is a
// no-op. A profile without a role leaves the session unresolved and
// returns RoleNotAssigned.
func (s *Session) Resolve(ctx context.Context, client api.IClient) error {
	s.mu.RLock()
	resolved := s.role != nil
	s.mu.RUnlock()
	if resolved {
		return nil
	}

	profile, err := client.GetProfile(ctx)
	if err != nil {
		return err
	}
	if profile.Role == nil {
		return errs.ErrRoleNotAssigned
	}

	s.mu.Lock()
	if s.role == nil {
		role := *profile.Role
		s.role = &role
		s.profileID = profile.ID
		s.log.Info("role resolved", logger.String("role", string(role)))
	}
	s.mu.Unlock()
	return nil
}

// ProfileID is the server-side user id, known once the role resolves.
// It is what gets bound as driverId when a driver takes an order.
func (s *Session) ProfileID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profileID
}

// Role returns the resolved role or RoleNotAssigned.
func (s *Session) Role() (models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.role == nil {
		return "", errs.ErrRoleNotAssigned
	}
	return *s.role, nil
}

// Resolved reports whether the role has been read.
func (s *Session) Resolved() bool {
	_, err := s.Role()
	return err == nil
}
