package repository

import (
	"context"
	"testing"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/pkg/formatter"
	"github.com/futig/lab-assistant/internal/telegram/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCache(t *testing.T) {
	ctx := context.Background()
	c := NewSessionCache(time.Hour)

	_, err := c.Get(ctx, 1)
	require.ErrorIs(t, err, entity.ErrSessionNotFound)

	s := &state.Session{UserID: 1, State: state.StateAge, StateData: []byte(`{"gender":"male"}`)}
	require.NoError(t, c.Set(ctx, s))

	// cached copy is isolated from the caller
	s.StateData[2] = 'X'
	s.State = state.StateNone

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, state.StateAge, got.State)
	assert.JSONEq(t, `{"gender":"male"}`, string(got.StateData))
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete(ctx, 1))
	_, err = c.Get(ctx, 1)
	require.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestSessionCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewSessionCache(20 * time.Millisecond)

	require.NoError(t, c.Set(ctx, &state.Session{UserID: 1}))
	time.Sleep(40 * time.Millisecond)

	_, err := c.Get(ctx, 1)
	require.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestFormTokens(t *testing.T) {
	s := NewFormTokenStore(time.Hour)

	token := s.Issue(10, 20)
	assert.NotEmpty(t, token)

	ticket, err := s.Peek(token)
	require.NoError(t, err)
	assert.Equal(t, int64(10), ticket.UserID)

	ticket, err = s.Consume(token)
	require.NoError(t, err)
	assert.Equal(t, int64(20), ticket.ChatID)

	_, err = s.Consume(token)
	require.ErrorIs(t, err, entity.ErrTokenNotFound)
	_, err = s.Peek("unknown")
	require.ErrorIs(t, err, entity.ErrTokenNotFound)
}

func TestFormTokenRestore(t *testing.T) {
	s := NewFormTokenStore(time.Hour)
	token := s.Issue(10, 20)

	ticket, err := s.Consume(token)
	require.NoError(t, err)

	s.Restore(token, ticket)
	again, err := s.Consume(token)
	require.NoError(t, err)
	assert.Equal(t, ticket, again)

	expired := FormTicket{UserID: 1, ChatID: 1, IssuedAt: time.Now().Add(-2 * time.Hour)}
	s.Restore("stale", expired)
	_, err = s.Peek("stale")
	require.ErrorIs(t, err, entity.ErrTokenNotFound)
}

func TestReportCache(t *testing.T) {
	c := NewReportCache(time.Hour)

	_, err := c.Get(3)
	require.ErrorIs(t, err, entity.ErrReportNotFound)

	c.Put(3, formatter.Report{Body: "ok"})
	got, err := c.Get(3)
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Body)
}
