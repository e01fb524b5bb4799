package engine

import (
	"fmt"
	"time"

	"BlackjackAdvisor/internal/game/betting"
	"BlackjackAdvisor/internal/game/shuffle"
	"BlackjackAdvisor/internal/game/stability"
	"BlackjackAdvisor/internal/game/strategy"
	"BlackjackAdvisor/internal/game/tracker"
)

// ConfigError 配置校验失败，会话不会创建
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// Options 一次会话的参数，创建后不可变
type Options struct {
	SessionID string `json:"sessionId"`

	DeckCount            int           `json:"deckCount"`
	PenetrationLimit     float64       `json:"penetrationLimit"`
	InactivityThreshold  time.Duration `json:"inactivityThreshold"`
	MinCardsBeforeReset  int           `json:"minCardsBeforeReset"`
	StabilityFrames      int           `json:"stabilityFrames"`
	HistorySize          int           `json:"historySize"`
	EmptyFramesThreshold int           `json:"emptyFramesThreshold"`
	DecisionDebounce     time.Duration `json:"decisionDebounce"`

	Rules      string `json:"rules"`
	Deviations bool   `json:"deviations"`
	// AutoReset 信号触发后立即重置；关闭时保持信号直到手动 resetCount
	AutoReset bool `json:"autoReset"`

	Betting  betting.Config `json:"betting"`
	Bankroll float64        `json:"bankroll"`
}

func DefaultOptions() Options {
	sd := shuffle.DefaultConfig()
	return Options{
		DeckCount:            sd.DeckCount,
		PenetrationLimit:     sd.PenetrationLimit,
		InactivityThreshold:  sd.InactivityThreshold,
		MinCardsBeforeReset:  sd.MinCardsBeforeReset,
		StabilityFrames:      stability.DefaultThreshold,
		HistorySize:          sd.HistorySize,
		EmptyFramesThreshold: sd.EmptyFramesThreshold,
		DecisionDebounce:     tracker.DefaultDecisionDebounce,
		Rules:                string(strategy.S17DAS),
		Deviations:           true,
		AutoReset:            true,
		Betting:              betting.DefaultConfig(),
		Bankroll:             10000,
	}
}

// Validate 对应 configure() 的同步校验，任何一项不合法都直接失败
func (o Options) Validate() error {
	switch {
	case o.DeckCount < 1:
		return &ConfigError{"deckCount", "must be at least 1"}
	case o.PenetrationLimit <= 0 || o.PenetrationLimit > 1:
		return &ConfigError{"penetrationLimit", "must be in (0,1]"}
	case o.InactivityThreshold <= 0:
		return &ConfigError{"inactivityThreshold", "must be positive"}
	case o.MinCardsBeforeReset < 0:
		return &ConfigError{"minCardsBeforeReset", "must not be negative"}
	case o.StabilityFrames < 1:
		return &ConfigError{"stabilityFrames", "must be at least 1"}
	case o.HistorySize < 1:
		return &ConfigError{"historySize", "must be at least 1"}
	case o.EmptyFramesThreshold < 1:
		return &ConfigError{"emptyFramesThreshold", "must be at least 1"}
	case o.DecisionDebounce < 0:
		return &ConfigError{"decisionDebounce", "must not be negative"}
	case o.Bankroll < 0:
		return &ConfigError{"bankroll", "must not be negative"}
	}
	if _, err := strategy.ParseRules(o.Rules); err != nil {
		return &ConfigError{"rules", err.Error()}
	}
	if o.Betting.KellyFraction <= 0 || o.Betting.KellyFraction > 1 {
		return &ConfigError{"kellyFraction", "must be in (0,1]"}
	}
	if o.Betting.MaxBet < o.Betting.MinBet {
		return &ConfigError{"maxBet", "must not be below minBet"}
	}
	if err := o.Betting.Validate(); err != nil {
		return &ConfigError{"betting", err.Error()}
	}
	return nil
}

func (o Options) shuffleConfig() shuffle.Config {
	return shuffle.Config{
		DeckCount:            o.DeckCount,
		PenetrationLimit:     o.PenetrationLimit,
		InactivityThreshold:  o.InactivityThreshold,
		MinCardsBeforeReset:  o.MinCardsBeforeReset,
		EmptyFramesThreshold: o.EmptyFramesThreshold,
		HistorySize:          o.HistorySize,
	}
}

func (o Options) trackerConfig() tracker.Config {
	return tracker.Config{
		DecisionDebounce: o.DecisionDebounce,
		ClearFrames:      o.StabilityFrames,
	}
}
