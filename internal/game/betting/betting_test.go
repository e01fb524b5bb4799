package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, mut func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if mut != nil {
		mut(&cfg)
	}
	e, err := New(cfg, nil)
	require.NoError(t, err)
	return e
}

func TestKellyBet(t *testing.T) {
	e := newEngine(t, func(c *Config) { c.MinBet = 5 })

	// 0.015 / 1.3225 * 0.25 * 10000
	bet := e.CalculateBet(3, 10000)
	assert.InDelta(t, 28.355, bet, 0.001)
}

func TestNoEdgeBetsMinimum(t *testing.T) {
	e := newEngine(t, nil)
	assert.Equal(t, 10.0, e.CalculateBet(0, 1_000_000))
	assert.Equal(t, 10.0, e.CalculateBet(-4, 1_000_000))
}

func TestBetIsClamped(t *testing.T) {
	e := newEngine(t, nil)
	assert.Equal(t, 10.0, e.CalculateBet(0.5, 100), "tiny bankroll rounds up to minBet")
	assert.Equal(t, 500.0, e.CalculateBet(10, 10_000_000))

	for tc := -5.0; tc <= 12; tc += 0.25 {
		bet := e.CalculateBet(tc, 25000)
		assert.GreaterOrEqual(t, bet, 10.0)
		assert.LessOrEqual(t, bet, 500.0)
	}
}

func TestBetGrowsWithCount(t *testing.T) {
	e := newEngine(t, func(c *Config) { c.MinBet = 1; c.MaxBet = 1e9 })
	prev := 0.0
	for tc := 1.0; tc <= 8; tc++ {
		bet := e.CalculateBet(tc, 50000)
		assert.Greater(t, bet, prev)
		prev = bet
	}
}

func TestCamouflageBuckets(t *testing.T) {
	e := newEngine(t, nil)
	tests := []struct {
		tc   float64
		want float64
	}{
		{-3, 10},
		{0, 10},
		{0.5, 10},
		{0.99, 10},
		{1, 20},
		{1.9, 20},
		{2, 40},
		{3, 80},
		{3.99, 80},
		{4, 120},
		{9, 120},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.CamouflageBet(tt.tc), "tc %.2f", tt.tc)
	}
}

func TestCamouflageRespectsMax(t *testing.T) {
	e := newEngine(t, func(c *Config) { c.MaxBet = 50 })
	assert.Equal(t, 40.0, e.CamouflageBet(2.5))
	assert.Equal(t, 50.0, e.CamouflageBet(3.5))
	assert.Equal(t, 50.0, e.CamouflageBet(6))
}

func TestCustomSpread(t *testing.T) {
	e := newEngine(t, func(c *Config) { c.Spread = []int{1, 1, 2, 3, 5} })
	assert.Equal(t, 1, e.Units(1.5))
	assert.Equal(t, 5, e.Units(4.2))
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"negative min", func(c *Config) { c.MinBet = -1 }},
		{"max below min", func(c *Config) { c.MaxBet = 5 }},
		{"zero kelly", func(c *Config) { c.KellyFraction = 0 }},
		{"kelly above one", func(c *Config) { c.KellyFraction = 1.5 }},
		{"short spread", func(c *Config) { c.Spread = []int{1, 2} }},
		{"zero unit", func(c *Config) { c.Spread = []int{0, 2, 4, 8, 12} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mut(&cfg)
			_, err := New(cfg, nil)
			assert.Error(t, err)
		})
	}
}
