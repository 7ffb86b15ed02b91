package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/suicidekings/carclub/internal/domain/webhookevent"
	ierr "github.com/suicidekings/carclub/internal/errors"
)

type InMemoryWebhookEventStore struct {
	mu     sync.RWMutex
	events map[string]*webhookevent.WebhookEvent
}

func NewInMemoryWebhookEventStore() *InMemoryWebhookEventStore {
	return &InMemoryWebhookEventStore{
		events: make(map[string]*webhookevent.WebhookEvent),
	}
}

func (s *InMemoryWebhookEventStore) Create(ctx context.Context, event *webhookevent.WebhookEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.ID]; exists {
		return ierr.NewError("webhook event already exists").Mark(ierr.ErrAlreadyExists)
	}
	s.events[event.ID] = event
	return nil
}

func (s *InMemoryWebhookEventStore) Get(ctx context.Context, id string) (*webhookevent.WebhookEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, exists := s.events[id]; exists {
		return e, nil
	}
	return nil, ierr.NewError("webhook event not found").Mark(ierr.ErrNotFound)
}

func (s *InMemoryWebhookEventStore) Update(ctx context.Context, event *webhookevent.WebhookEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.ID]; !exists {
		return ierr.NewError("webhook event not found").Mark(ierr.ErrNotFound)
	}
	s.events[event.ID] = event
	return nil
}

func (s *InMemoryWebhookEventStore) List(ctx context.Context, filter *webhookevent.Filter) ([]*webhookevent.WebhookEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*webhookevent.WebhookEvent, 0)
	for _, e := range s.events {
		if filter != nil {
			if filter.TenantID != "" && e.TenantID != filter.TenantID {
				continue
			}
			if filter.EventType != "" && e.EventType != filter.EventType {
				continue
			}
			if filter.Processed != nil && e.Processed != *filter.Processed {
				continue
			}
			if filter.FailedOnly && !e.IsFailed() {
				continue
			}
			if filter.Since != nil && e.ReceivedAt.Before(*filter.Since) {
				continue
			}
		}
		events = append(events, e)
	}
	return events, nil
}

func (s *InMemoryWebhookEventStore) CountFailuresSince(ctx context.Context, tenantID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.events {
		if e.TenantID == tenantID && e.IsFailed() && !e.ReceivedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryWebhookEventStore) Stats(ctx context.Context, tenantID string) (*webhookevent.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &webhookevent.Stats{}
	for _, e := range s.events {
		if e.TenantID != tenantID {
			continue
		}
		stats.Total++
		switch {
		case e.Processed:
			stats.Processed++
		case e.ErrorMessage != nil:
			stats.Failed++
		default:
			stats.Pending++
		}
	}
	return stats, nil
}

func (s *InMemoryWebhookEventStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make(map[string]*webhookevent.WebhookEvent)
}
