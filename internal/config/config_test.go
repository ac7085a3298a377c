package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("DATABASE_NAME", "")
	t.Setenv("COLLECTION_NAME", "")
	t.Setenv("CHUNK_SIZE", "")
	t.Setenv("OPERATION_TIMEOUT", "")
	t.Setenv("SCHEDULE_TIME", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "analytics", cfg.DatabaseName)
	assert.Equal(t, "records", cfg.CollectionName)
	assert.Equal(t, 50000, cfg.ChunkSize)
	assert.Equal(t, 30*time.Second, cfg.OperationTimeout)
	assert.Equal(t, "02:00", cfg.ScheduleTime)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("DATABASE_NAME", "sales")
	t.Setenv("COLLECTION_NAME", "events")
	t.Setenv("CHUNK_SIZE", "1000")
	t.Setenv("OPERATION_TIMEOUT", "5s")
	t.Setenv("SCHEDULE_TIME", "23:30")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sales", cfg.DatabaseName)
	assert.Equal(t, "events", cfg.CollectionName)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 5*time.Second, cfg.OperationTimeout)
	assert.Equal(t, "23:30", cfg.ScheduleTime)
}

func TestLoadConfigRequiresURI(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	t.Setenv("CHUNK_SIZE", "zero")
	_, err := LoadConfig()
	assert.Error(t, err)
	t.Setenv("CHUNK_SIZE", "0")
	_, err = LoadConfig()
	assert.Error(t, err)
	t.Setenv("CHUNK_SIZE", "")

	t.Setenv("OPERATION_TIMEOUT", "fast")
	_, err = LoadConfig()
	assert.Error(t, err)
	t.Setenv("OPERATION_TIMEOUT", "")

	t.Setenv("SCHEDULE_TIME", "25:00")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestParseScheduleTime(t *testing.T) {
	mins, err := ParseScheduleTime("02:00")
	require.NoError(t, err)
	assert.Equal(t, 120, mins)

	mins, err = ParseScheduleTime("23:59")
	require.NoError(t, err)
	assert.Equal(t, 23*60+59, mins)

	for _, in := range []string{"", "2", "24:00", "12:60", "ab:cd"} {
		_, err := ParseScheduleTime(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestLoadSourcesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": 1,
		"sources": [
			{"sourceId": "source1", "name": "kaggle_csv", "path": "data/online_retail.csv"}
		]
	}`), 0o644))

	cfg, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "source1", cfg.Sources[0].SourceID)
}

func TestLoadSourcesFileValidation(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSources(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"version":1,"sources":[]}`), 0o644))
	_, err = LoadSources(empty)
	assert.Error(t, err)

	noPath := filepath.Join(dir, "nopath.json")
	require.NoError(t, os.WriteFile(noPath, []byte(`{"version":1,"sources":[{"sourceId":"s1"}]}`), 0o644))
	_, err = LoadSources(noPath)
	assert.Error(t, err)
}
