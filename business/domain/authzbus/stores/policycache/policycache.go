// Package policycache implements the authzbus.PolicyStore interface
// with an in-memory casbin enforcer seeded from the role policy matrix.
package policycache

import (
	"context"

	"github.com/printdesk/printdesk/business/types/actions"
	"github.com/printdesk/printdesk/business/types/resource"
	"github.com/printdesk/printdesk/business/types/role"
	"github.com/printdesk/printdesk/foundation/logger"
)

// Store answers role based permission questions from memory.
type Store struct {
	log   *logger.Logger
	cache *memoryCache
}

// NewStore constructs the policy store and loads the default matrix.
func NewStore(log *logger.Logger) (*Store, error) {
	mem, err := newMemoryCache(log)
	if err != nil {
		return nil, err
	}

	s := &Store{
		log:   log,
		cache: mem,
	}

	if err := s.cache.load(defaultPolicies, defaultInheritance); err != nil {
		return nil, err
	}

	return s, nil
}

// Allowed reports whether the role may perform the action on the resource.
func (s *Store) Allowed(ctx context.Context, r role.Role, res resource.Resource, act actions.Action) (bool, error) {
	return s.cache.check(ctx, r, res, act)
}
