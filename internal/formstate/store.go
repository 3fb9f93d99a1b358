// Package formstate holds the in-progress interaction form and the auto-fill chat
// transcript for one logging screen.
package formstate

import (
	"sync"
	"time"

	"hcp-crm/internal/interaction"
)

// Snapshot is a copy of the store contents; changing it does not affect the store.
type Snapshot struct {
	Form     map[string]string         `json:"formData"`
	Messages []interaction.ChatMessage `json:"chatMessages"`
	Loading  bool                      `json:"loading"`
}

// Field returns the form value for name, "" when unset.
func (s Snapshot) Field(name string) string { return s.Form[name] }

// Store is the state container of a logging screen. MergeForm, AppendChatMessage
// and SetLoading are its only mutations.
type Store struct {
	mu       sync.RWMutex
	form     map[string]string
	messages []interaction.ChatMessage
	loading  bool
	touched  time.Time
	now      func() time.Time
}

func NewStore() *Store {
	return newStoreAt(time.Now)
}

func newStoreAt(now func() time.Time) *Store {
	return &Store{
		form:    interaction.DefaultForm(),
		touched: now(),
		now:     now,
	}
}

// MergeForm shallow-merges partial into the form. Keys absent from partial are
// left alone; keys the form does not know are stored as given.
func (s *Store) MergeForm(partial map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range partial {
		s.form[k] = v
	}
	s.touched = s.now()
}

// AppendChatMessage adds msg to the end of the transcript.
func (s *Store) AppendChatMessage(msg interaction.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.touched = s.now()
}

func (s *Store) SetLoading(flag bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = flag
	s.touched = s.now()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	form := make(map[string]string, len(s.form))
	for k, v := range s.form {
		form[k] = v
	}
	msgs := make([]interaction.ChatMessage, len(s.messages))
	copy(msgs, s.messages)
	return Snapshot{Form: form, Messages: msgs, Loading: s.loading}
}

// lastTouched reports when the store last changed.
func (s *Store) lastTouched() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.touched
}
