package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	_, err := store.LoadProfile(ctx, 42)
	require.ErrorIs(t, err, entity.ErrProfileNotFound)
	assert.False(t, store.HasProfile(ctx, 42))

	profile := &entity.Profile{
		UserID:    42,
		FirstName: "Анна",
		RegistrationData: entity.RegistrationData{
			Gender:             entity.GenderFemale,
			Age:                30,
			Weight:             60.5,
			Height:             170,
			MedicalHistoryList: []string{entity.PresetNone},
			SleepPattern:       "7-8 часов",
		},
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveProfile(ctx, profile))

	got, err := store.LoadProfile(ctx, 42)
	require.NoError(t, err)
	if diff := cmp.Diff(profile, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}

	profile.RegistrationData.Age = 31
	require.NoError(t, store.SaveProfile(ctx, profile))
	got, err = store.LoadProfile(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 31, got.RegistrationData.Age)

	require.NoError(t, store.DeleteProfile(ctx, 42))
	require.NoError(t, store.DeleteProfile(ctx, 42))
	_, err = store.LoadProfile(ctx, 42)
	require.ErrorIs(t, err, entity.ErrProfileNotFound)
}

func TestSaveProfileLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)

	require.NoError(t, store.SaveProfile(ctx, &entity.Profile{UserID: 7}))

	entries, err := os.ReadDir(filepath.Join(dir, "7"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "profile.json", entries[0].Name())
}

func TestSaveProfileRejectsMissingUser(t *testing.T) {
	err := NewFileStore(t.TempDir()).SaveProfile(context.Background(), &entity.Profile{})
	require.ErrorIs(t, err, entity.ErrInvalidProfile)
}

func TestLoadProfileCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "5"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "5", "profile.json"), []byte("{"), 0o644))

	_, err := NewFileStore(dir).LoadProfile(context.Background(), 5)
	require.ErrorIs(t, err, entity.ErrInvalidProfile)
}

func TestSnapshotsNeverCollide(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)
	fixed := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	values := entity.AnalysisValues{"hemoglobin": "140"}

	var wg sync.WaitGroup
	paths := make([]string, 5)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := store.SaveAnalysisSnapshot(ctx, 9, values)
			assert.NoError(t, err)
			paths[i] = p
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, p := range paths {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}
	assert.True(t, seen[filepath.Join(dir, "9", "parsed_analysis_20240501_103000.json")])
	assert.True(t, seen[filepath.Join(dir, "9", "parsed_analysis_20240501_103000_4.json")])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var got entity.AnalysisValues
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, values, got)
}
