package testutil

import (
	"context"
	"sync"

	"github.com/suicidekings/carclub/internal/domain/member"
	ierr "github.com/suicidekings/carclub/internal/errors"
)

type InMemoryMemberStore struct {
	mu      sync.RWMutex
	members map[string]*member.Member
}

func NewInMemoryMemberStore() *InMemoryMemberStore {
	return &InMemoryMemberStore{
		members: make(map[string]*member.Member),
	}
}

func (s *InMemoryMemberStore) Create(ctx context.Context, m *member.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.members[m.ID]; exists {
		return ierr.NewError("member already exists").Mark(ierr.ErrAlreadyExists)
	}
	s.members[m.ID] = m
	return nil
}

func (s *InMemoryMemberStore) Get(ctx context.Context, id string) (*member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, exists := s.members[id]; exists {
		return m, nil
	}
	return nil, ierr.NewError("member not found").Mark(ierr.ErrNotFound)
}

func (s *InMemoryMemberStore) GetByEmail(ctx context.Context, tenantID, email string) (*member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	normalized := member.NormalizeEmail(email)
	for _, m := range s.members {
		if m.TenantID == tenantID && member.NormalizeEmail(m.Email) == normalized {
			return m, nil
		}
	}
	return nil, ierr.NewError("member not found").Mark(ierr.ErrNotFound)
}

func (s *InMemoryMemberStore) GetBySubscriptionID(ctx context.Context, tenantID, subscriptionID string) (*member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.members {
		if m.TenantID == tenantID && m.SubscriptionID == subscriptionID {
			return m, nil
		}
	}
	return nil, ierr.NewError("member not found").Mark(ierr.ErrNotFound)
}

func (s *InMemoryMemberStore) Update(ctx context.Context, m *member.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.members[m.ID]; !exists {
		return ierr.NewError("member not found").Mark(ierr.ErrNotFound)
	}
	s.members[m.ID] = m
	return nil
}

func (s *InMemoryMemberStore) ListByTenant(ctx context.Context, tenantID string) ([]*member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]*member.Member, 0)
	for _, m := range s.members {
		if m.TenantID == tenantID {
			members = append(members, m)
		}
	}
	return members, nil
}

func (s *InMemoryMemberStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.members = make(map[string]*member.Member)
}
