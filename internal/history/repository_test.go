package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mikkl/hwmond/internal/history"
	"codeberg.org/mikkl/hwmond/internal/telemetry"
)

func TestRecordAndUpsert(t *testing.T) {
	repo, err := history.NewRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer repo.Close()

	ts := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	sample := &history.Sample{
		Timestamp: ts,
		Telemetry: telemetry.Record{CPU: 42, FPS: 60},
		Live:      true,
		Mode:      "active",
		Discarded: 1,
	}
	require.NoError(t, repo.Record(context.Background(), sample))

	// Same second again must upsert, not fail on the primary key.
	sample.Telemetry.CPU = 43
	require.NoError(t, repo.Record(context.Background(), sample))
}

func TestRecordNilSample(t *testing.T) {
	repo, err := history.NewRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer repo.Close()

	assert.Error(t, repo.Record(context.Background(), nil))
}

func TestEmptyPathRejected(t *testing.T) {
	_, err := history.NewRepository("")
	assert.Error(t, err)
}

func TestCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	repo, err := history.NewRepository(path)
	require.NoError(t, err)
	repo.Close()
}
