package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
	"github.com/chengwenxing-cmd/VoiceService/internal/store"
)

func writeSeed(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoadSeeds(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "a.yaml", `
examples:
  - text: " 打开客厅的灯 "
    intent: control_device_on
    entities:
      device: 灯
  - text: 来点音乐
    intent: PLAY_MUSIC
    confidence: 0.91
`)
	writeSeed(t, dir, "nested/b.yml", `
examples:
  - text: 来点音乐
    intent: PAUSE_MUSIC
`)
	writeSeed(t, dir, "README.md", "not yaml: [")

	seeds, err := loadSeeds(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, seeds, 2)

	assert.Equal(t, "打开客厅的灯", seeds[0].Text())
	assert.Equal(t, intent.ControlDeviceOn, seeds[0].Type())
	assert.InDelta(t, defaultSeedConfidence, seeds[0].Confidence(), 1e-9)
	assert.Equal(t, "灯", seeds[0].Entity("device"))

	// later file wins for a duplicate text
	assert.Equal(t, "来点音乐", seeds[1].Text())
	assert.Equal(t, intent.PauseMusic, seeds[1].Type())
}

func TestLoadSeedsRejectsBadExamples(t *testing.T) {
	cases := map[string]string{
		"empty text":     "examples:\n  - text: \"  \"\n    intent: CHAT\n",
		"unknown intent": "examples:\n  - text: 你好\n    intent: DANCE\n",
		"low confidence": "examples:\n  - text: 你好\n    intent: CHAT\n    confidence: 0.5\n",
		"bad yaml":       "examples: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeSeed(t, dir, "seed.yaml", body)
			_, err := loadSeeds(dir, zaptest.NewLogger(t))
			assert.Error(t, err)
		})
	}
}

func TestIngestorRun(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "seed.yaml", `
examples:
  - text: 打开空调
    intent: CONTROL_DEVICE_ON
  - text: 关掉空调
    intent: CONTROL_DEVICE_OFF
  - text: 现在几点了
    intent: QUERY_TIME
`)
	mem := store.NewMemory()
	ing := NewIngestor(&Config{SourceDataDir: dir, Concurrency: 2}, mem, zaptest.NewLogger(t))

	n, err := ing.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := mem.FindByText(context.Background(), "关掉空调")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, intent.ControlDeviceOff, got.Type())
}

func TestIngestorRunEmptyDir(t *testing.T) {
	ing := NewIngestor(&Config{SourceDataDir: t.TempDir(), Concurrency: 1}, store.NewMemory(), zaptest.NewLogger(t))
	n, err := ing.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type failingStore struct{ *store.Memory }

func (failingStore) Save(context.Context, *intent.Intent) error { return errors.New("disk full") }

func TestIngestorRunPropagatesSaveErrors(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "seed.yaml", "examples:\n  - text: 你好\n    intent: CHAT\n")
	ing := NewIngestor(&Config{SourceDataDir: dir, Concurrency: 1}, failingStore{store.NewMemory()}, zaptest.NewLogger(t))

	_, err := ing.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestLoadConfig(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("DATABASE_URL", "memory://")
	t.Setenv("INGEST_CONCURRENCY", "3")
	t.Setenv("INTENT_CACHE_TTL", "1h")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "memory://", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, defaultSourceDataDir, cfg.SourceDataDir)

	t.Setenv("INGEST_CONCURRENCY", "0")
	_, err = loadConfig()
	assert.Error(t, err)
}
