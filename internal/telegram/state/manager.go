package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
)

// Manager manages per-user sessions
type Manager struct {
	storage Storage
}

// NewManager creates a new state manager
func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
	}
}

// GetSession retrieves the user's session, a fresh neutral one when none exists
func (m *Manager) GetSession(ctx context.Context, userID int64) (*Session, error) {
	session, err := m.storage.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, entity.ErrSessionNotFound) {
			now := time.Now()
			return &Session{
				UserID:    userID,
				State:     StateNone,
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		return nil, fmt.Errorf("get session from storage: %w", err)
	}

	return session, nil
}

// SetSession saves the session to storage
func (m *Manager) SetSession(ctx context.Context, session *Session) error {
	session.UpdatedAt = time.Now()

	if err := m.storage.Set(ctx, session); err != nil {
		return fmt.Errorf("save session to storage: %w", err)
	}

	return nil
}

// GetState returns the user's current state
func (m *Manager) GetState(ctx context.Context, userID int64) (State, error) {
	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return StateNone, err
	}
	return session.State, nil
}

// Transition moves the user to the given state keeping collected data
func (m *Manager) Transition(ctx context.Context, userID int64, next State) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: %q", entity.ErrInvalidState, next)
	}

	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return err
	}

	session.State = next
	return m.SetSession(ctx, session)
}

// Clear drops the session; the user returns to the neutral state
func (m *Manager) Clear(ctx context.Context, userID int64) error {
	if err := m.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete session from storage: %w", err)
	}

	return nil
}

// GetStateData extracts typed state data
func (m *Manager) GetStateData(ctx context.Context, userID int64) (*StateData, error) {
	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	return decodeStateData(session.StateData)
}

// UpdateStateData replaces the state data keeping the current state
func (m *Manager) UpdateStateData(ctx context.Context, userID int64, data *StateData) error {
	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return err
	}

	if err := encodeStateData(session, data); err != nil {
		return err
	}
	return m.SetSession(ctx, session)
}

// Save stores the state and its data in one write
func (m *Manager) Save(ctx context.Context, userID int64, next State, data *StateData) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: %q", entity.ErrInvalidState, next)
	}

	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return err
	}

	session.State = next
	if err := encodeStateData(session, data); err != nil {
		return err
	}
	return m.SetSession(ctx, session)
}

func decodeStateData(raw json.RawMessage) (*StateData, error) {
	if len(raw) == 0 {
		// Return new StateData with current version
		return &StateData{
			Version: StateDataCurrentVersion,
		}, nil
	}

	var data StateData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal state data: %w", err)
	}

	// Auto-upgrade from old versions without version field
	if data.Version == 0 {
		data.Version = StateDataCurrentVersion
	}

	return &data, nil
}

func encodeStateData(session *Session, data *StateData) error {
	if data == nil {
		session.StateData = nil
		return nil
	}

	// Ensure version is set to current version
	data.Version = StateDataCurrentVersion

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal state data: %w", err)
	}

	session.StateData = jsonData
	return nil
}
