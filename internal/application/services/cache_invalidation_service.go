package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/domain/providers"
)

// Invalidator drops cached results that a change at a given instant can affect
type Invalidator interface {
	InvalidateAfter(t time.Time) int
}

// CacheInvalidationService drops cached analytics when agenda entries change
type CacheInvalidationService struct {
	cache    Invalidator
	eventBus providers.EventBus
	channel  string
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewCacheInvalidationService creates a new cache invalidation service
// listening on channel. An empty channel means providers.EventChannelAgendaChanges.
func NewCacheInvalidationService(cache Invalidator, eventBus providers.EventBus, channel string) *CacheInvalidationService {
	if channel == "" {
		channel = providers.EventChannelAgendaChanges
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		channel:  channel,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, s.channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.channel, err)
	}

	s.wg.Add(1)
	go s.processEvents(eventChan)
	log.Info().Str("channel", s.channel).Msg("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service and waits for the listener to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.AgendaEvent) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.HandleEvent(event)
		}
	}
}

// HandleEvent drops every cached result whose period ends after the
// changed entry was created. Analytics windows filter on creation time, so
// earlier periods cannot contain the entry.
func (s *CacheInvalidationService) HandleEvent(event *entities.AgendaEvent) int {
	dropped := s.cache.InvalidateAfter(event.EntryCreatedAt)
	log.Info().
		Str("event_id", event.ID).
		Str("entry_id", event.EntryID).
		Str("event_type", string(event.EventType)).
		Time("entry_created_at", event.EntryCreatedAt).
		Int("dropped", dropped).
		Msg("Invalidated cached analytics")
	return dropped
}
