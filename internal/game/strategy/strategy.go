// Package strategy 基本策略查表和按真数的偏离打法
//
// 所有方法都是输入的纯函数，表格在 New 时构建，之后只读，可以在多个会话之间共享。
package strategy

import (
	"fmt"
	"io"
	"strings"

	"BlackjackAdvisor/internal/game/table"

	"github.com/charmbracelet/log"
)

// Rules 规则标签，默认都可以分牌后加倍
type Rules string

const (
	S17DAS Rules = "s17_das" // 庄家软 17 停牌
	H17DAS Rules = "h17_das" // 庄家软 17 要牌
)

func ParseRules(s string) (Rules, error) {
	switch r := Rules(strings.ToLower(strings.TrimSpace(s))); r {
	case S17DAS, H17DAS:
		return r, nil
	case "":
		return S17DAS, nil
	}
	return "", fmt.Errorf("unknown rules %q", s)
}

type Config struct {
	Rules      Rules
	Deviations bool
}

type Engine struct {
	rules      Rules
	deviations bool
	tables     tables
	log        *log.Logger
}

func New(cfg Config, logger *log.Logger) (*Engine, error) {
	rules, err := ParseRules(string(cfg.Rules))
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Engine{
		rules:      rules,
		deviations: cfg.Deviations,
		tables:     buildTables(rules),
		log:        logger.With("component", "strategy"),
	}
	e.log.Info("strategy tables built", "rules", rules, "deviations", cfg.Deviations)
	return e, nil
}

func (e *Engine) Rules() Rules            { return e.rules }
func (e *Engine) DeviationsEnabled() bool { return e.deviations }

// Action 基本策略
//
// 可分牌时先查对子表，结果为 Split 直接返回；否则按软/硬查表。
// 不能加倍时 Double 改为 Hit。
func (e *Engine) Action(total int, upcard table.Rank, soft, canDouble, canSplit bool) Action {
	up := upcard.Value()
	if total < 4 || total > 21 || up < minUpcard || up > maxUpcard {
		return Stand
	}

	if canSplit {
		if e.tables.pairs[cell{pairValue(total, soft), up}] == Split {
			return Split
		}
	}

	var a Action
	var ok bool
	if soft {
		a, ok = e.tables.soft[cell{total, up}]
	}
	if !ok {
		a = e.tables.hard[cell{total, up}]
	}

	if a == Double && !canDouble {
		return Hit
	}
	return a
}

// pairValue 对子的单张牌值；A,A 是软 12
func pairValue(total int, soft bool) int {
	if soft && total == 12 {
		return 11
	}
	return total / 2
}

// DeviationAction 偏离打法，只看硬牌点数
//
// 第一个命中 (点数, 明牌) 的条目直接决定结果；都不命中时退回基本策略
// （canDouble=true, canSplit=false），这条路径不考虑分牌。
func (e *Engine) DeviationAction(total int, upcard table.Rank, trueCount float64) Action {
	if !e.deviations {
		return e.Action(total, upcard, false, true, false)
	}
	up := upcard.Value()
	for _, d := range deviations {
		if d.Total != total || d.Upcard != up {
			continue
		}
		if d.Rules != "" && d.Rules != e.rules {
			continue
		}
		return d.resolve(trueCount)
	}
	return e.Action(total, upcard, false, true, false)
}

// Recommend 给一手具体的牌选动作
//
// 硬牌且不可分时走偏离打法，软牌和对子走基本策略。
// 只有两张牌时才能加倍或投降，否则分别退回 Hit 和基本策略。
func (e *Engine) Recommend(h table.PlayerHand, upcard table.Rank, trueCount float64) Action {
	if h.CanSplit && e.deviations && splitByCount(pairValue(h.Total, h.IsSoft), upcard.Value(), trueCount) {
		return Split
	}
	if !e.deviations || h.IsSoft || h.CanSplit {
		return e.Action(h.Total, upcard, h.IsSoft, h.CanDouble, h.CanSplit)
	}

	a := e.DeviationAction(h.Total, upcard, trueCount)
	switch {
	case a == Double && !h.CanDouble:
		return Hit
	case a == Surrender && len(h.Cards) != 2:
		return e.Action(h.Total, upcard, false, false, false)
	}
	return a
}

// Insurance 明牌是 A 且真数 >= 3 时买保险
func Insurance(upcard table.Rank, trueCount float64) bool {
	return upcard == table.Ace && trueCount >= InsuranceIndex
}
