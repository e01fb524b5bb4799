// Package shuffle 判断牌靴是否已经重洗
//
// 五个相互独立的信号按固定优先级评估，第一个触发的生效并保持，
// 直到编排器调用 Reset。检测器只负责发现，不负责修复计数。
package shuffle

import (
	"io"
	"time"

	"BlackjackAdvisor/internal/game/table"

	"github.com/charmbracelet/log"
)

// Indicator 触发重置的原因
type Indicator int

const (
	None Indicator = iota
	CardDepletion
	PenetrationReached
	LongPause
	AllCardsGone
	DuplicateCard
)

var indicatorNames = map[Indicator]string{
	None:               "none",
	CardDepletion:      "card_depletion",
	PenetrationReached: "penetration_reached",
	LongPause:          "long_pause",
	AllCardsGone:       "all_cards_gone",
	DuplicateCard:      "duplicate_card",
}

func (i Indicator) String() string {
	if s, ok := indicatorNames[i]; ok {
		return s
	}
	return "unknown"
}

func (i Indicator) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

// duplicateMinHistory 缓冲里至少已有这么多条才检查重复，避免开局误报
const duplicateMinHistory = 10

type Config struct {
	DeckCount            int
	PenetrationLimit     float64
	InactivityThreshold  time.Duration
	MinCardsBeforeReset  int
	EmptyFramesThreshold int // 约 2 秒 @30fps
	HistorySize          int
}

func DefaultConfig() Config {
	return Config{
		DeckCount:            6,
		PenetrationLimit:     0.75,
		InactivityThreshold:  30 * time.Second,
		MinCardsBeforeReset:  26,
		EmptyFramesThreshold: 60,
		HistorySize:          500,
	}
}

type Detector struct {
	cfg Config
	log *log.Logger

	inventory   Inventory
	recent      *history
	lastCard    time.Time
	emptyFrames int

	detected bool
	last     Indicator
}

// New now 作为"上一张牌"的初始时间
func New(cfg Config, logger *log.Logger, now time.Time) *Detector {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	d := &Detector{
		cfg:       cfg,
		log:       logger.With("component", "shuffle"),
		inventory: Inventory{DeckCount: cfg.DeckCount},
		recent:    newHistory(cfg.HistorySize),
		lastCard:  now,
	}
	d.log.Info("shuffle detector ready",
		"decks", cfg.DeckCount,
		"penetration", cfg.PenetrationLimit,
		"inactivity", cfg.InactivityThreshold,
	)
	return d
}

// ObserveFrame 每帧在确认牌之前调用，empty 表示本帧没有任何识别结果
func (d *Detector) ObserveFrame(empty bool) {
	if empty {
		d.emptyFrames++
		return
	}
	d.emptyFrames = 0
}

// Confirm 处理一个确认事件：入库存、入最近记录，然后按优先级评估
func (d *Detector) Confirm(id table.Identity, now time.Time) Indicator {
	prior := d.recent.Len()
	d.inventory.Add(id)
	d.recent.Push(id)
	d.lastCard = now

	// 多副牌里同一编号重复出现是正常的，只有最近记录里的份数超过牌靴里的份数才算重复
	dup := prior >= duplicateMinHistory && d.recent.Count(id) > d.cfg.DeckCount
	return d.evaluate(now, dup, id)
}

// Evaluate 帧末评估，覆盖不依赖新牌的信号（长时间停顿、牌全部消失）
func (d *Detector) Evaluate(now time.Time) Indicator {
	return d.evaluate(now, false, 0)
}

func (d *Detector) evaluate(now time.Time, dup bool, id table.Identity) Indicator {
	if d.detected {
		return d.last
	}
	enough := d.inventory.TotalSeen >= d.cfg.MinCardsBeforeReset

	allGone := false
	if d.emptyFrames >= d.cfg.EmptyFramesThreshold {
		// 达到阈值就清零，牌不够时需要重新累计
		d.emptyFrames = 0
		allGone = enough
	}

	switch {
	case d.inventory.IsImpossible():
		d.trigger(CardDepletion)
	case enough && d.inventory.HasReachedPenetration(d.cfg.PenetrationLimit):
		d.trigger(PenetrationReached)
	case enough && now.Sub(d.lastCard) >= d.cfg.InactivityThreshold:
		d.trigger(LongPause)
	case allGone:
		d.trigger(AllCardsGone)
	case dup:
		d.log.Warn("duplicate card inside recent history", "card", id)
		d.trigger(DuplicateCard)
	}
	return d.last
}

func (d *Detector) trigger(ind Indicator) {
	d.detected = true
	d.last = ind
	d.log.Warn("shuffle detected",
		"indicator", ind,
		"seen", d.inventory.TotalSeen,
		"penetration", d.inventory.Penetration(),
	)
}

func (d *Detector) IsShuffleDetected() bool  { return d.detected }
func (d *Detector) LastIndicator() Indicator { return d.last }
func (d *Detector) Inventory() Inventory     { return d.inventory }
func (d *Detector) Penetration() float64     { return d.inventory.Penetration() }

func (d *Detector) PenetrationLimitReached() bool {
	return d.inventory.HasReachedPenetration(d.cfg.PenetrationLimit)
}

func (d *Detector) TimeSinceLastCard(now time.Time) time.Duration {
	return now.Sub(d.lastCard)
}

// Reset 清空库存、最近记录和触发状态
func (d *Detector) Reset(now time.Time) {
	d.inventory.Reset()
	d.recent.Reset()
	d.emptyFrames = 0
	d.detected = false
	d.last = None
	d.lastCard = now
	d.log.Info("shuffle detector reset")
}

// ForceReset 手动覆盖
func (d *Detector) ForceReset(now time.Time) {
	d.log.Info("manual shuffle override")
	d.Reset(now)
}
