package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"BlackjackAdvisor/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ✅ simulate 子命令输出 JSON 统计
func TestSimulateCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"simulate", "--config", "", "--rounds", "3", "--decks", "1", "--seed", "7"})
	require.NoError(t, rootCmd.Execute())

	var res struct {
		Seed  int64 `json:"seed"`
		Decks int   `json:"decks"`
		Stats struct {
			Rounds int `json:"rounds"`
			Frames int `json:"frames"`
		} `json:"stats"`
		Summary struct {
			SessionID string `json:"sessionId"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, int64(7), res.Seed)
	assert.Equal(t, 1, res.Decks)
	assert.Equal(t, 3, res.Stats.Rounds)
	assert.Positive(t, res.Stats.Frames)
	assert.Equal(t, "simulation", res.Summary.SessionID)
}

func TestOpenHistoryBackends(t *testing.T) {
	require.NoError(t, config.Load(""))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	repo, closeRepo, err := openHistory(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, repo)
	closeRepo()

	config.C.History.Backend = "cassandra"
	_, _, err = openHistory(ctx, nil)
	assert.Error(t, err)
}

func TestCorsConfig(t *testing.T) {
	require.NoError(t, config.Load(""))
	assert.True(t, corsConfig().AllowAllOrigins)

	config.C.Server.AllowOrigins = []string{"http://overlay.local"}
	c := corsConfig()
	assert.False(t, c.AllowAllOrigins)
	assert.Equal(t, []string{"http://overlay.local"}, c.AllowOrigins)
}
