package chat

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSessionCapacity bounds how many conversations the store keeps
// before evicting the least recently used one.
const DefaultSessionCapacity = 256

// Message is a single turn in a conversation.
type Message struct {
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// SessionStore is a bounded, in-process conversation store. Eviction is LRU
// so long-running deployments cannot grow without limit the way an unbounded
// process-global map would.
type SessionStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, []Message]
}

// NewSessionStore creates a session store holding at most capacity
// conversations. Non-positive capacity takes the default.
func NewSessionStore(capacity int) (*SessionStore, error) {
	if capacity <= 0 {
		capacity = DefaultSessionCapacity
	}
	cache, err := lru.New[string, []Message](capacity)
	if err != nil {
		return nil, err
	}
	return &SessionStore{cache: cache}, nil
}

// Append adds messages to a conversation, creating it if needed.
func (s *SessionStore) Append(conversationID string, messages ...Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, _ := s.cache.Get(conversationID)
	s.cache.Add(conversationID, append(existing, messages...))
}

// Get returns the messages of a conversation and whether it exists.
func (s *SessionStore) Get(conversationID string) ([]Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.Get(conversationID)
}

// Delete removes a conversation. Deleting a missing conversation is not an
// error.
func (s *SessionStore) Delete(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Remove(conversationID)
}

// Len returns the number of stored conversations.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.Len()
}
