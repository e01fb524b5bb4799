// Package betting 按真数给出下注额
package betting

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

const (
	// Variance 二十一点单手结果的方差 (1.15^2)
	Variance = 1.3225
	// DefaultEdgePerTrueCount 每 +1 真数约 0.5% 优势
	DefaultEdgePerTrueCount = 0.005
)

// DefaultSpread 伪装下注的档位单位：<1, [1,2), [2,3), [3,4), >=4
var DefaultSpread = []int{1, 2, 4, 8, 12}

type Config struct {
	MinBet           float64
	MaxBet           float64
	KellyFraction    float64
	EdgePerTrueCount float64
	Spread           []int
}

func DefaultConfig() Config {
	return Config{
		MinBet:           10,
		MaxBet:           500,
		KellyFraction:    0.25,
		EdgePerTrueCount: DefaultEdgePerTrueCount,
		Spread:           append([]int(nil), DefaultSpread...),
	}
}

// Validate EdgePerTrueCount 为 0、Spread 为 nil 时 New 会填默认值
func (c Config) Validate() error {
	switch {
	case c.MinBet < 0:
		return errors.New("minBet must not be negative")
	case c.MaxBet < c.MinBet:
		return fmt.Errorf("maxBet %.2f below minBet %.2f", c.MaxBet, c.MinBet)
	case c.KellyFraction <= 0 || c.KellyFraction > 1:
		return fmt.Errorf("kellyFraction %.3f outside (0,1]", c.KellyFraction)
	case c.EdgePerTrueCount < 0:
		return errors.New("edgePerTrueCount must not be negative")
	case c.Spread != nil && len(c.Spread) != len(DefaultSpread):
		return fmt.Errorf("spread needs %d levels, got %d", len(DefaultSpread), len(c.Spread))
	}
	for _, u := range c.Spread {
		if u < 1 {
			return fmt.Errorf("spread unit %d below 1", u)
		}
	}
	return nil
}

// Engine 无状态，构建后可并发使用
type Engine struct {
	cfg Config
	log *log.Logger
}

func New(cfg Config, logger *log.Logger) (*Engine, error) {
	if cfg.EdgePerTrueCount == 0 {
		cfg.EdgePerTrueCount = DefaultEdgePerTrueCount
	}
	if cfg.Spread == nil {
		cfg.Spread = append([]int(nil), DefaultSpread...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Engine{cfg: cfg, log: logger.With("component", "betting")}
	e.log.Info("betting configured",
		"min", cfg.MinBet,
		"max", cfg.MaxBet,
		"kelly", cfg.KellyFraction,
	)
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// CalculateBet 分数凯利
//
// 真数 <= 0 视为没有优势，下最小注；结果限制在 [minBet, maxBet]
func (e *Engine) CalculateBet(trueCount, bankroll float64) float64 {
	if trueCount <= 0 {
		return e.cfg.MinBet
	}
	advantage := e.cfg.EdgePerTrueCount * trueCount
	fullKelly := advantage / Variance
	bet := bankroll * fullKelly * e.cfg.KellyFraction

	e.log.Debug("kelly bet",
		"advantage", advantage,
		"fullKelly", fullKelly,
		"raw", bet,
	)
	return min(max(bet, e.cfg.MinBet), e.cfg.MaxBet)
}

// Units 真数对应的伪装档位单位数
func (e *Engine) Units(trueCount float64) int {
	switch {
	case trueCount < 1:
		return e.cfg.Spread[0]
	case trueCount < 2:
		return e.cfg.Spread[1]
	case trueCount < 3:
		return e.cfg.Spread[2]
	case trueCount < 4:
		return e.cfg.Spread[3]
	}
	return e.cfg.Spread[4]
}

// CamouflageBet 分档下注，minBet 乘单位数，不超过 maxBet
func (e *Engine) CamouflageBet(trueCount float64) float64 {
	return min(e.cfg.MinBet*float64(e.Units(trueCount)), e.cfg.MaxBet)
}
