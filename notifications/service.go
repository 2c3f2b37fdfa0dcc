package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of notification event
type EventType string

const (
	EventConnected      EventType = "connected"
	EventTasksUpdated   EventType = "tasks-updated"
	EventSessionEvicted EventType = "session-evicted"
	EventWorkSaved      EventType = "work-saved"
	EventWorkEvicted    EventType = "work-evicted"
)

// Event represents a notification event
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	SessionID string    `json:"sessionId,omitempty"`
	WorkID    string    `json:"workId,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Service fans events out to subscribers. Slow subscribers miss events
// rather than blocking the publisher.
type Service struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	closed      bool
}

// NewService creates a new notification service
func NewService() *Service {
	return &Service{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe creates a new subscription channel
// Returns the event channel and an unsubscribe function
func (s *Service) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 10)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		// Only close if the channel is still in subscribers map
		if _, exists := s.subscribers[ch]; exists {
			delete(s.subscribers, ch)
			close(ch)
		}
	}

	return ch, unsubscribe
}

// Notify broadcasts an event to all subscribers
func (s *Service) Notify(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip this subscriber
		}
	}
}

// NotifyTasksUpdated sends a tasks-updated event
func (s *Service) NotifyTasksUpdated(sessionID, operation string) {
	s.Notify(Event{
		Type:      EventTasksUpdated,
		SessionID: sessionID,
		Data: map[string]any{
			"operation": operation,
		},
	})
}

// NotifySessionEvicted sends a session-evicted event
func (s *Service) NotifySessionEvicted(sessionID string) {
	s.Notify(Event{Type: EventSessionEvicted, SessionID: sessionID})
}

// NotifyWorkSaved sends a work-saved event
func (s *Service) NotifyWorkSaved(workID, sessionID string, overwritten bool) {
	s.Notify(Event{
		Type:      EventWorkSaved,
		WorkID:    workID,
		SessionID: sessionID,
		Data: map[string]any{
			"overwritten": overwritten,
		},
	})
}

// NotifyWorkEvicted sends a work-evicted event
func (s *Service) NotifyWorkEvicted(workID string) {
	s.Notify(Event{Type: EventWorkEvicted, WorkID: workID})
}

// Shutdown closes the notification service
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	// Close all subscriber channels
	for ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = make(map[chan Event]struct{})
}

// SubscriberCount returns the number of active subscribers
func (s *Service) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
