package bot

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

type ChatState int

const (
	StateIdle ChatState = iota
	StateAwaitingWalletData
)

// SessionStore keeps the per-chat conversation state. Non-idle states expire
// after the configured timeout and read back as StateIdle.
type SessionStore struct {
	mu     sync.Mutex
	states *cache.Cache
}

func NewSessionStore(timeout time.Duration) *SessionStore {
	return &SessionStore{states: cache.New(timeout, timeout)}
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func (s *SessionStore) AwaitWalletData(chatID int64) {
	s.states.Set(sessionKey(chatID), StateAwaitingWalletData, cache.DefaultExpiration)
}

func (s *SessionStore) State(chatID int64) ChatState {
	v, ok := s.states.Get(sessionKey(chatID))
	if !ok {
		return StateIdle
	}
	return v.(ChatState)
}

// Take returns the current state and resets the chat to StateIdle.
func (s *SessionStore) Take(chatID int64) ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.State(chatID)
	s.states.Delete(sessionKey(chatID))
	return state
}
