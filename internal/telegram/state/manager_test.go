package state

import (
	"context"
	"sync"
	"testing"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	mu       sync.Mutex
	sessions map[int64]Session
}

func newMemStorage() *memStorage {
	return &memStorage{sessions: make(map[int64]Session)}
}

func (m *memStorage) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memStorage) Set(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = *s
	return nil
}

func (m *memStorage) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

func TestManagerFreshSession(t *testing.T) {
	m := NewManager(newMemStorage())

	st, err := m.GetState(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, StateNone, st)

	data, err := m.GetStateData(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, StateDataCurrentVersion, data.Version)
}

func TestManagerSaveAndClear(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newMemStorage())

	data := &StateData{Gender: entity.GenderMale, Age: 30}
	require.NoError(t, m.Save(ctx, 1, StateWeight, data))

	st, err := m.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StateWeight, st)

	require.NoError(t, m.Transition(ctx, 1, StateHeight))
	got, err := m.GetStateData(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Age)
	assert.Equal(t, entity.GenderMale, got.Gender)

	require.NoError(t, m.Clear(ctx, 1))
	st, err = m.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StateNone, st)
}

func TestManagerRejectsUnknownState(t *testing.T) {
	m := NewManager(newMemStorage())
	err := m.Transition(context.Background(), 1, State("bogus"))
	require.ErrorIs(t, err, entity.ErrInvalidState)
}

func TestStateGroups(t *testing.T) {
	assert.True(t, StateSleep.IsRegistration())
	assert.False(t, StateSleep.IsAnalysis())
	assert.True(t, StateWaitingForEditedText.IsAnalysis())
	assert.False(t, StateNone.IsAnalysis())
	assert.True(t, StateNone.IsValid())
}

func TestStateDataRegistrationData(t *testing.T) {
	d := &StateData{Gender: entity.GenderFemale, HabitsList: []string{"smoking"}, SleepPattern: "6"}
	rd := d.RegistrationData()
	assert.Equal(t, entity.GenderFemale, rd.Gender)
	assert.Equal(t, []string{"smoking"}, rd.HabitsList)
	assert.Equal(t, "6", rd.SleepPattern)
}
