// Package counter 实现 Hi-Lo 计数
package counter

import (
	"io"

	"BlackjackAdvisor/internal/game/table"

	"github.com/charmbracelet/log"
)

// State 计数状态。trueCount 不存储，每次由 State 推导
type State struct {
	RunningCount int `json:"runningCount"`
	CardsPlayed  int `json:"cardsPlayed"`
	DeckCount    int `json:"deckCount"`
}

// Counter 纯计数器，单写者使用，不加锁
type Counter struct {
	state State
	log   *log.Logger
}

func New(deckCount int, logger *log.Logger) *Counter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Counter{
		state: State{DeckCount: deckCount},
		log:   logger.With("component", "counter"),
	}
}

// HiLo 2-6 记 +1，7-9 记 0，10/人头/A 记 -1
func HiLo(r table.Rank) int {
	switch {
	case r >= table.Two && r <= table.Six:
		return 1
	case r >= table.Seven && r <= table.Nine:
		return 0
	}
	return -1
}

// AddCard 每个确认事件调用一次；点数合法性由调用方保证
func (c *Counter) AddCard(card table.Card) {
	c.state.RunningCount += HiLo(card.Rank)
	c.state.CardsPlayed++
	c.log.Debug("card counted", "card", card, "rc", c.state.RunningCount, "played", c.state.CardsPlayed)
}

func (c *Counter) State() State      { return c.state }
func (c *Counter) RunningCount() int { return c.state.RunningCount }
func (c *Counter) CardsPlayed() int  { return c.state.CardsPlayed }

// DecksRemaining (deckCount*52 - cardsPlayed) / 52，可能为负
func (s State) DecksRemaining() float64 {
	return float64(s.DeckCount*table.DeckSize-s.CardsPlayed) / table.DeckSize
}

// TrueCount 剩余牌堆 <= 0 时返回 0，永不除零
func (s State) TrueCount() float64 {
	remaining := s.DecksRemaining()
	if remaining <= 0 {
		return 0
	}
	return float64(s.RunningCount) / remaining
}

// Penetration 已发牌比例，限制在 [0,1]
func (s State) Penetration() float64 {
	total := s.DeckCount * table.DeckSize
	if total <= 0 {
		return 0
	}
	return min(max(float64(s.CardsPlayed)/float64(total), 0), 1)
}

// CardsRemaining 剩余张数，不会小于 0
func (s State) CardsRemaining() int {
	return max(s.DeckCount*table.DeckSize-s.CardsPlayed, 0)
}

// Confidence 随渗透率线性下降的参考值，不参与任何不变量
func (s State) Confidence() float64 {
	return 1 - 0.5*s.Penetration()
}

func (c *Counter) TrueCount() float64   { return c.state.TrueCount() }
func (c *Counter) Penetration() float64 { return c.state.Penetration() }
func (c *Counter) CardsRemaining() int  { return c.state.CardsRemaining() }
func (c *Counter) Confidence() float64  { return c.state.Confidence() }

// Reset 清零 runningCount 和 cardsPlayed，deckCount 是会话参数保持不变
func (c *Counter) Reset() {
	c.state = State{DeckCount: c.state.DeckCount}
	c.log.Info("count reset", "decks", c.state.DeckCount)
}
