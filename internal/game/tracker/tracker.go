// Package tracker 牌局状态机：阶段、玩家各手牌（含分牌）、庄家明牌和决策防抖
package tracker

import (
	"io"
	"time"

	"BlackjackAdvisor/internal/game/strategy"
	"BlackjackAdvisor/internal/game/table"

	"github.com/charmbracelet/log"
)

const (
	DefaultDecisionDebounce = time.Second
	DefaultClearFrames      = 3
)

type Config struct {
	// DecisionDebounce 两次决策之间的最小间隔
	DecisionDebounce time.Duration
	// ClearFrames 连续空帧达到这个数视为桌面已清空
	ClearFrames int
}

func DefaultConfig() Config {
	return Config{
		DecisionDebounce: DefaultDecisionDebounce,
		ClearFrames:      DefaultClearFrames,
	}
}

// Tracker 只由编排器单线程驱动，不加锁
type Tracker struct {
	cfg      Config
	resolver OwnershipResolver
	log      *log.Logger

	phase   Phase
	hands   []table.PlayerHand
	current int

	upcard    table.Card
	hasUpcard bool

	// 开局阶段已确认但未分配的牌
	pending []table.Card

	decisionMade bool
	lastAction   strategy.Action
	lastDecision time.Time // 零值表示还没有决策过

	emptyFrames int
	handsDealt  int
}

func New(cfg Config, resolver OwnershipResolver, logger *log.Logger) *Tracker {
	if cfg.ClearFrames < 1 {
		cfg.ClearFrames = DefaultClearFrames
	}
	if resolver == nil {
		resolver = SequentialResolver{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	t := &Tracker{
		cfg:      cfg,
		resolver: resolver,
		log:      logger.With("component", "tracker"),
	}
	t.clearHand()
	return t
}

func (t *Tracker) clearHand() {
	t.hands = nil
	t.current = 0
	t.upcard = table.Card{}
	t.hasUpcard = false
	t.pending = nil
	t.decisionMade = false
	t.lastAction = 0
	t.emptyFrames = 0
	t.phase = WaitingForCards
}

// StartNewHand 丢弃当前所有手牌，回到等待发牌
func (t *Tracker) StartNewHand() {
	t.clearHand()
	t.log.Info("starting new hand")
}

// Update 每帧调用一次
//
// confirmed 是本帧刚确认的牌，tableEmpty 表示本帧没有任何识别结果
func (t *Tracker) Update(confirmed []table.Card, tableEmpty bool) {
	if tableEmpty {
		t.emptyFrames++
	} else {
		t.emptyFrames = 0
	}
	cleared := t.emptyFrames >= t.cfg.ClearFrames

	switch t.phase {
	case NewShoe:
		t.phase = WaitingForCards
		fallthrough
	case WaitingForCards:
		if cleared && len(t.pending) > 0 {
			// 不足一手就被收走的牌不再参与分配
			t.log.Debug("table cleared before deal", "dropped", len(t.pending))
			t.pending = nil
		}
		t.pending = append(t.pending, confirmed...)
		t.tryDeal()
	case PlayerTurn:
		for _, c := range confirmed {
			if t.phase != PlayerTurn {
				break
			}
			t.dealToPlayer(c)
		}
	case HandComplete:
		if cleared {
			t.StartNewHand()
		}
	}
}

func (t *Tracker) tryDeal() {
	player, up, ok := t.resolver.Resolve(t.pending)
	if !ok {
		return
	}
	h := table.PlayerHand{}
	h.Add(player[0])
	h.Add(player[1])

	t.hands = []table.PlayerHand{h}
	t.current = 0
	t.upcard, t.hasUpcard = up, true
	t.pending = nil
	t.decisionMade = false
	t.lastAction = 0
	t.phase = PlayerTurn
	t.handsDealt++

	t.log.Info("initial cards detected",
		"player", h.String(),
		"total", h.Total,
		"soft", h.IsSoft,
		"upcard", up,
	)

	if h.IsBlackjack {
		t.log.Info("blackjack, no decision needed")
		t.finishCurrent()
	}
}

// dealToPlayer 玩家回合内新确认的牌
//
// 只有分牌后不满两张，或上一次决策是 Hit/Double 时才归玩家，其余视为庄家的牌
func (t *Tracker) dealToPlayer(c table.Card) {
	h := &t.hands[t.current]
	drawing := t.decisionMade && (t.lastAction == strategy.Hit || t.lastAction == strategy.Double)
	if len(h.Cards) >= 2 && !drawing {
		t.log.Debug("card not assigned to player", "card", c)
		return
	}

	h.Add(c)
	h.HandIndex = t.current
	t.log.Debug("player card", "hand", t.current, "card", c, "total", h.Total)

	switch {
	case h.IsBusted || h.Total == 21:
		t.finishCurrent()
	case drawing && t.lastAction == strategy.Double:
		t.finishCurrent()
	case drawing:
		// 要牌后还没结束，重新打开这一手等待下一个决策
		h.IsCompleted = false
		t.decisionMade = false
		t.lastAction = 0
	}
}

func (t *Tracker) finishCurrent() {
	if t.current < len(t.hands) {
		t.hands[t.current].IsCompleted = true
	}
	t.AdvanceToNextHand()
}

// ShouldProcessDecision 玩家回合、牌齐、本手未决策且过了防抖间隔
func (t *Tracker) ShouldProcessDecision(now time.Time) bool {
	if !t.Ready() || t.decisionMade {
		return false
	}
	if !t.lastDecision.IsZero() && now.Sub(t.lastDecision) < t.cfg.DecisionDebounce {
		return false
	}
	return true
}

// Ready 当前手至少两张且有庄家明牌，不考虑防抖
func (t *Tracker) Ready() bool {
	if t.phase != PlayerTurn || !t.hasUpcard || t.current >= len(t.hands) {
		return false
	}
	return len(t.hands[t.current].Cards) >= 2
}

// CompleteCurrentHand 标记当前手已决策并记录时间
func (t *Tracker) CompleteCurrentHand(now time.Time) {
	if t.current < len(t.hands) {
		t.hands[t.current].IsCompleted = true
	}
	t.decisionMade = true
	t.lastDecision = now
}

// RecordDecision 决策输出后推进状态
func (t *Tracker) RecordDecision(a strategy.Action, now time.Time) {
	t.CompleteCurrentHand(now)
	t.lastAction = a

	switch a {
	case strategy.Split:
		t.split()
	case strategy.Stand, strategy.Surrender:
		t.AdvanceToNextHand()
	}
}

// split 当前对子拆成两手，新的一手插在当前手之后，各等一张牌
func (t *Tracker) split() {
	h := t.hands[t.current]
	if len(h.Cards) != 2 {
		t.log.Warn("split requested on non-pair", "hand", h.String())
		return
	}
	first := table.PlayerHand{HandIndex: t.current}
	first.Add(h.Cards[0])
	second := table.PlayerHand{HandIndex: t.current + 1}
	second.Add(h.Cards[1])

	hands := make([]table.PlayerHand, 0, len(t.hands)+1)
	hands = append(hands, t.hands[:t.current]...)
	hands = append(hands, first, second)
	hands = append(hands, t.hands[t.current+1:]...)
	for i := range hands {
		hands[i].HandIndex = i
	}
	t.hands = hands
	t.decisionMade = false
	t.lastAction = 0

	t.log.Info("hand split", "hands", len(t.hands))
}

// AdvanceToNextHand 还有分牌就切到下一手，否则本局结束
func (t *Tracker) AdvanceToNextHand() {
	if t.HasMoreHands() {
		t.current++
		t.decisionMade = false
		t.lastAction = 0
		t.log.Info("advancing to split hand", "hand", t.current+1, "of", len(t.hands))
		return
	}
	t.phase = HandComplete
	t.log.Info("hand complete")
}

func (t *Tracker) HasMoreHands() bool {
	return t.current+1 < len(t.hands)
}

// NextHand 手动推进：有剩余分牌手就前进一手，否则开始新的一局
func (t *Tracker) NextHand() {
	if t.phase == PlayerTurn && t.HasMoreHands() {
		t.hands[t.current].IsCompleted = true
		t.AdvanceToNextHand()
		return
	}
	t.StartNewHand()
}

// ResetForNewShoe 清空手牌和明牌，经过 NewShoe 回到等待发牌
func (t *Tracker) ResetForNewShoe() {
	t.phase = NewShoe
	t.log.Info("resetting for new shoe", "phase", t.phase)
	t.clearHand()
}

func (t *Tracker) Phase() Phase                      { return t.phase }
func (t *Tracker) CurrentIndex() int                 { return t.current }
func (t *Tracker) DecisionMade() bool                { return t.decisionMade }
func (t *Tracker) LastAction() strategy.Action       { return t.lastAction }
func (t *Tracker) PendingCards() int                 { return len(t.pending) }
func (t *Tracker) HandsDealt() int                   { return t.handsDealt }
func (t *Tracker) Upcard() (table.Card, bool)        { return t.upcard, t.hasUpcard }
func (t *Tracker) LastDecisionAt() (time.Time, bool) { return t.lastDecision, !t.lastDecision.IsZero() }

// CurrentHand 当前手的副本
func (t *Tracker) CurrentHand() (table.PlayerHand, bool) {
	if t.current >= len(t.hands) {
		return table.PlayerHand{}, false
	}
	return t.hands[t.current].Clone(), true
}

// Hands 所有手牌的副本
func (t *Tracker) Hands() []table.PlayerHand {
	out := make([]table.PlayerHand, len(t.hands))
	for i, h := range t.hands {
		out[i] = h.Clone()
	}
	return out
}
