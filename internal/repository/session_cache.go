package repository

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/telegram/state"
	gocache "github.com/patrickmn/go-cache"
)

// SessionCache keeps conversation sessions in memory; idle sessions expire
type SessionCache struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewSessionCache creates a session store with the given inactivity TTL
func NewSessionCache(ttl time.Duration) *SessionCache {
	return &SessionCache{
		cache: gocache.New(ttl, cleanupInterval(ttl)),
		ttl:   ttl,
	}
}

func sessionKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Get retrieves a session by user ID
func (c *SessionCache) Get(_ context.Context, userID int64) (*state.Session, error) {
	v, ok := c.cache.Get(sessionKey(userID))
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return cloneSession(v.(*state.Session)), nil
}

// Set saves a session and restarts its TTL
func (c *SessionCache) Set(_ context.Context, session *state.Session) error {
	c.cache.Set(sessionKey(session.UserID), cloneSession(session), c.ttl)
	return nil
}

// Delete removes a session
func (c *SessionCache) Delete(_ context.Context, userID int64) error {
	c.cache.Delete(sessionKey(userID))
	return nil
}

// Len returns the number of live sessions
func (c *SessionCache) Len() int {
	return c.cache.ItemCount()
}

// cloneSession keeps callers from mutating cached state
func cloneSession(s *state.Session) *state.Session {
	out := *s
	out.StateData = slices.Clone(s.StateData)
	return &out
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	if i := ttl / 2; i < 10*time.Minute {
		return i
	}
	return 10 * time.Minute
}
