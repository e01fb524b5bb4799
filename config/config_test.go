package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"BlackjackAdvisor/internal/game/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ✅ 没有配置文件时默认值即引擎默认参数
func TestReadDefaults(t *testing.T) {
	cfg, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.History.Backend)

	opts := cfg.EngineOptions()
	assert.Equal(t, engine.DefaultOptions(), opts)
	assert.NoError(t, opts.Validate())
}

// ✅ 仓库自带的 config.yaml 可以加载并通过校验
func TestReadBundledFile(t *testing.T) {
	cfg, err := Read("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.History.Backend)
	assert.Equal(t, 24, cfg.JWT.TTLHours)

	opts := cfg.EngineOptions()
	require.NoError(t, opts.Validate())
	assert.Equal(t, 6, opts.DeckCount)
	assert.Equal(t, 30*time.Second, opts.InactivityThreshold)
	assert.Equal(t, []int{1, 2, 4, 8, 12}, opts.Betting.Spread)
}

func TestReadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
advisor:
  deckCount: 2
  rules: h17_das
  decisionDebounceMs: 250
betting:
  minBet: 25
`), 0o644))
	t.Setenv("ADVISOR_ADVISOR_STABILITYFRAMES", "5")
	t.Setenv("ADVISOR_LOG_LEVEL", "debug")

	require.NoError(t, Load(path))
	assert.Equal(t, "debug", C.Log.Level)

	opts := C.EngineOptions()
	assert.Equal(t, 2, opts.DeckCount)
	assert.Equal(t, "h17_das", opts.Rules)
	assert.Equal(t, 250*time.Millisecond, opts.DecisionDebounce)
	assert.Equal(t, 5, opts.StabilityFrames)
	assert.Equal(t, 25.0, opts.Betting.MinBet)
	// 未覆盖的字段保持默认
	assert.Equal(t, engine.DefaultOptions().Betting.MaxBet, opts.Betting.MaxBet)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
