package service

import (
	"context"
	"fmt"

	"taxiclient/pkg/models"
)

type ProfileService interface {
	Get(ctx context.Context) (*models.Profile, error)

	// SelectRole picks passenger or driver for a fresh account. Once
	// the role session has resolved, the role is frozen and changing
	// it is an administrative action outside this client.
	SelectRole(ctx context.Context, role models.Role) (*models.Profile, error)
}

type profileService struct {
	m *manager
}

func (s *profileService) Get(ctx context.Context) (*models.Profile, error) {
	return s.m.client.GetProfile(ctx)
}

func (s *profileService) SelectRole(ctx context.Context, role models.Role) (*models.Profile, error) {
	if s.m.sess.Resolved() {
		return nil, fmt.Errorf("role already resolved for this session")
	}
	p, err := s.m.client.UpdateProfile(ctx, role)
	if err != nil {
		return nil, err
	}
	if err := s.m.sess.Resolve(ctx, s.m.client); err != nil {
		return nil, err
	}
	return p, nil
}
