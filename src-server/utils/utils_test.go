package utils_test

import (
	"log/slog"
	"strings"
	"testing"
	"time"
	"vobject/src-server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_PATH", "LOG_LEVEL", "FOLD_WIDTH", "MAX_BODY_BYTES", "METRIC_COLLECTION_INTERVAL", "SOURCE_REFRESH_INTERVAL"} {
		t.Setenv(key, "")
	}

	config := utils.NewConfig()
	assert.Equal(t, "8080", config.GetPort())
	assert.Equal(t, "vobject.db", config.GetDatabasePath())
	assert.Equal(t, slog.LevelDebug, config.GetLogLevel())
	assert.Equal(t, 75, config.GetFoldWidth())
	assert.Equal(t, int64(1<<20), config.GetMaxBodyBytes())
	assert.Equal(t, 15*time.Second, config.GetMetricCollectionInterval())
	assert.Equal(t, time.Hour, config.GetSourceRefreshInterval())

	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_PATH", ":memory:")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("FOLD_WIDTH", "40")
	t.Setenv("MAX_BODY_BYTES", "2048")
	t.Setenv("METRIC_COLLECTION_INTERVAL", "1m")

	config = utils.NewConfig()
	assert.Equal(t, "9000", config.GetPort())
	assert.Equal(t, ":memory:", config.GetDatabasePath())
	assert.Equal(t, slog.LevelWarn, config.GetLogLevel())
	assert.Equal(t, 40, config.GetFoldWidth())
	assert.Equal(t, int64(2048), config.GetMaxBodyBytes())
	assert.Equal(t, time.Minute, config.GetMetricCollectionInterval())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, utils.ParseLogLevel(" info "))
	assert.Equal(t, slog.LevelWarn, utils.ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, utils.ParseLogLevel("Error"))
	assert.Equal(t, slog.LevelDebug, utils.ParseLogLevel("verbose"))
}

func TestCleanupString(t *testing.T) {
	assert.Equal(t, "Team Standup", utils.CleanupString("  team   standup. "))
	assert.Equal(t, "Review ACME Contract", utils.CleanupString("review ACME contract"))
}

func TestGetContentHash(t *testing.T) {
	hash, err := utils.GetContentHash(strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hash)
}

func TestMetricObserveNeverBlocks(t *testing.T) {
	m := utils.NewMetric()
	for i := 0; i < 100; i++ {
		m.Observe(m.Parse, time.Now())
	}
	assert.Len(t, m.Parse, cap(m.Parse))
}

func TestAppState(t *testing.T) {
	t.Setenv("DATABASE_PATH", ":memory:")
	as, err := utils.NewAppState(utils.NewConfig())
	require.NoError(t, err)

	shutdown := as.CreateGracefulShutdownChan()
	as.GracefulShutdown()
	select {
	case <-*shutdown:
	default:
		t.Fatal("graceful shutdown chan should be closed")
	}
}

func TestParseNaturalTime(t *testing.T) {
	parser := utils.NewWhenParser()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	got, err := utils.ParseNaturalTime(parser, "tomorrow at 5pm", base)
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 2, got.Day())
	assert.Equal(t, 17, got.Hour())

	_, err = utils.ParseNaturalTime(parser, "   ", base)
	assert.Error(t, err)
	_, err = utils.ParseNaturalTime(parser, "nothing to see here", base)
	assert.Error(t, err)
}
