// Package notify holds transient user-facing messages produced by the
// outcome pipeline and any collaborator reporting a result. The store only
// tracks state; display layers own the expiry timers and call Dismiss.
package notify

import (
	"sync"
	"time"
)

// Severity classifies a message for presentation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityFailure Severity = "failure"
)

// Message is one transient notification. Timestamp plus Seq forms the
// removal key; Seq keeps two messages created in the same instant
// distinctly addressable.
type Message struct {
	Header    string
	Body      string
	Severity  Severity
	Timestamp time.Time
	Seq       uint64
	Duration  time.Duration
}

// Store is an append-only collection of live messages with explicit removal.
type Store struct {
	mu       sync.Mutex
	messages []Message
	seq      uint64
	onChange func()
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// OnChange registers a callback invoked after every append or removal.
// Render layers use it to refresh. The callback runs outside the store lock.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Show appends a message stamped with the current time and returns it.
func (s *Store) Show(header, body string, severity Severity, duration time.Duration) Message {
	s.mu.Lock()
	s.seq++
	msg := Message{
		Header:    header,
		Body:      body,
		Severity:  severity,
		Timestamp: s.now(),
		Seq:       s.seq,
		Duration:  duration,
	}
	s.messages = append(s.messages, msg)
	changed := s.onChange
	s.mu.Unlock()

	if changed != nil {
		changed()
	}
	return msg
}

// Dismiss removes the message with the same removal key. Dismissing a
// message that is no longer present is a no-op.
func (s *Store) Dismiss(msg Message) {
	s.mu.Lock()
	removed := false
	for i, m := range s.messages {
		if m.Seq == msg.Seq && m.Timestamp.Equal(msg.Timestamp) {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			removed = true
			break
		}
	}
	changed := s.onChange
	s.mu.Unlock()

	if removed && changed != nil {
		changed()
	}
}

// Messages returns the live messages in append order.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len reports the number of live messages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Reset drops every live message. Used by tests and logout flows.
func (s *Store) Reset() {
	s.mu.Lock()
	s.messages = nil
	changed := s.onChange
	s.mu.Unlock()

	if changed != nil {
		changed()
	}
}
