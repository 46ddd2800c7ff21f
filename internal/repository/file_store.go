package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	profileFileName     = "profile.json"
	snapshotPrefix      = "parsed_analysis_"
	snapshotTimeLayout  = "20060102_150405"
	maxSnapshotAttempts = 100
	dirPerm             = 0o755
	filePerm            = 0o644
)

// FileStore persists profiles and analysis snapshots as JSON files,
// one directory per user.
type FileStore struct {
	baseDir string
	now     func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewFileStore creates a store rooted at baseDir
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		now:     time.Now,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// lockUser serializes writes inside one user directory
func (s *FileStore) lockUser(userID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *FileStore) userDir(userID int64) string {
	return filepath.Join(s.baseDir, strconv.FormatInt(userID, 10))
}

// SaveProfile overwrites the user's profile atomically
func (s *FileStore) SaveProfile(ctx context.Context, profile *entity.Profile) error {
	if profile == nil || profile.UserID == 0 {
		return fmt.Errorf("%w: missing user id", entity.ErrInvalidProfile)
	}

	unlock := s.lockUser(profile.UserID)
	defer unlock()

	data, err := json.MarshalIndent(profile, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	dir := s.userDir(profile.UserID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create user dir: %w", err)
	}

	if err := writeFileAtomic(dir, profileFileName, data); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}

	ctxzap.Info(ctx, "profile saved", zap.Int64("user_id", profile.UserID))
	return nil
}

// LoadProfile reads the user's profile, entity.ErrProfileNotFound if absent
func (s *FileStore) LoadProfile(ctx context.Context, userID int64) (*entity.Profile, error) {
	data, err := os.ReadFile(filepath.Join(s.userDir(userID), profileFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, entity.ErrProfileNotFound
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var profile entity.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		ctxzap.Warn(ctx, "profile file is unreadable", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidProfile, err)
	}

	return &profile, nil
}

// HasProfile reports whether a readable profile exists
func (s *FileStore) HasProfile(ctx context.Context, userID int64) bool {
	_, err := s.LoadProfile(ctx, userID)
	return err == nil
}

// DeleteProfile removes the user's profile; a missing profile is not an error
func (s *FileStore) DeleteProfile(ctx context.Context, userID int64) error {
	unlock := s.lockUser(userID)
	defer unlock()

	err := os.Remove(filepath.Join(s.userDir(userID), profileFileName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete profile: %w", err)
	}

	ctxzap.Info(ctx, "profile deleted", zap.Int64("user_id", userID))
	return nil
}

// SaveAnalysisSnapshot writes a new timestamped snapshot and returns its path.
// Existing snapshots are never overwritten.
func (s *FileStore) SaveAnalysisSnapshot(ctx context.Context, userID int64, values entity.AnalysisValues) (string, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	data, err := json.MarshalIndent(values, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := s.userDir(userID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("create user dir: %w", err)
	}

	base := snapshotPrefix + s.now().Format(snapshotTimeLayout)
	for i := 0; i < maxSnapshotAttempts; i++ {
		name := base + ".json"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.json", base, i)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create snapshot: %w", err)
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("write snapshot: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close snapshot: %w", err)
		}

		ctxzap.Info(ctx, "analysis snapshot saved",
			zap.Int64("user_id", userID),
			zap.String("file", name),
			zap.Int("field_count", len(values)),
		)
		return path, nil
	}

	return "", fmt.Errorf("no free snapshot name for %s", base)
}

// writeFileAtomic writes through a temp file and renames it over the target
func writeFileAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
