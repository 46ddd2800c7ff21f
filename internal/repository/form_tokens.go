package repository

import (
	"sync"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// FormTicket binds a hosted form link to the chat that requested it
type FormTicket struct {
	UserID   int64
	ChatID   int64
	IssuedAt time.Time
}

// FormTokenStore issues single-use tokens for the hosted analysis form
type FormTokenStore struct {
	cache *gocache.Cache
	ttl   time.Duration
	mu    sync.Mutex
}

func NewFormTokenStore(ttl time.Duration) *FormTokenStore {
	return &FormTokenStore{
		cache: gocache.New(ttl, cleanupInterval(ttl)),
		ttl:   ttl,
	}
}

// Issue creates a new token for the user
func (s *FormTokenStore) Issue(userID, chatID int64) string {
	token := uuid.NewString()
	s.cache.Set(token, FormTicket{UserID: userID, ChatID: chatID, IssuedAt: time.Now()}, s.ttl)
	return token
}

// Peek returns the ticket without consuming it
func (s *FormTokenStore) Peek(token string) (FormTicket, error) {
	v, ok := s.cache.Get(token)
	if !ok {
		return FormTicket{}, entity.ErrTokenNotFound
	}
	return v.(FormTicket), nil
}

// Consume returns the ticket and invalidates the token
func (s *FormTokenStore) Consume(token string) (FormTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(token)
	if !ok {
		return FormTicket{}, entity.ErrTokenNotFound
	}
	s.cache.Delete(token)
	return v.(FormTicket), nil
}

// Restore puts a consumed token back for the rest of its lifetime, so a
// submission the bot could not take can be retried with the same link.
// Tokens past their TTL stay gone.
func (s *FormTokenStore) Restore(token string, ticket FormTicket) {
	left := time.Until(ticket.IssuedAt.Add(s.ttl))
	if left <= 0 {
		return
	}
	s.cache.Set(token, ticket, left)
}
