// Package session issues the dashboard's stand-in login tokens. Nothing is
// authenticated: a token only remembers which clinician the browser
// identified as.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/pkg/errors"
)

const defaultRole = "physician"

type Service struct {
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewService(ttl, cleanupInterval time.Duration) *Service {
	return &Service{
		cache: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *Service) Create(_ context.Context, req *model.CreateSessionRequest) (*model.Session, error) {
	clinicianID := strings.TrimSpace(req.ClinicianID)
	if clinicianID == "" {
		return nil, errors.BadRequest("clinician_id is required", nil)
	}
	role := req.Role
	if role == "" {
		role = defaultRole
	}

	now := s.now()
	sess := &model.Session{
		Token:       uuid.NewString(),
		ClinicianID: clinicianID,
		Name:        strings.TrimSpace(req.Name),
		Role:        role,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	s.cache.Set(sess.Token, *sess, cache.DefaultExpiration)
	return sess, nil
}

// Get resolves a token. Unknown and expired tokens are both unauthorized.
func (s *Service) Get(_ context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, errors.Unauthorized(nil)
	}
	v, found := s.cache.Get(token)
	if !found {
		return nil, errors.Unauthorized(nil)
	}
	sess := v.(model.Session)
	return &sess, nil
}

func (s *Service) Delete(_ context.Context, token string) {
	s.cache.Delete(token)
}
