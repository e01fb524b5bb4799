package table

import "strings"

// PlayerHand 玩家的一手牌，分牌后会有多手
type PlayerHand struct {
	Cards       []Card `json:"cards"`
	Total       int    `json:"total"`
	IsSoft      bool   `json:"isSoft"`
	IsPair      bool   `json:"isPair"`
	CanDouble   bool   `json:"canDouble"`
	CanSplit    bool   `json:"canSplit"`
	IsBlackjack bool   `json:"isBlackjack"`
	IsBusted    bool   `json:"isBusted"`
	IsCompleted bool   `json:"isCompleted"`
	HandIndex   int    `json:"handIndex"`
}

// Add 加牌并重算点数
func (h *PlayerHand) Add(c Card) {
	h.Cards = append(h.Cards, c)
	h.Recalculate()
}

// Recalculate 重算 total / soft / pair 等派生字段
//
// A 先按 11 计，超过 21 时逐张降为 1；仍有按 11 计的 A 即为软牌
func (h *PlayerHand) Recalculate() {
	total, elevens := 0, 0
	for _, c := range h.Cards {
		total += c.Rank.Value()
		if c.Rank == Ace {
			elevens++
		}
	}
	for total > 21 && elevens > 0 {
		total -= 10
		elevens--
	}

	n := len(h.Cards)
	h.Total = total
	h.IsSoft = elevens > 0
	h.IsBusted = total > 21
	h.IsBlackjack = n == 2 && total == 21
	h.CanDouble = n == 2
	h.IsPair = n == 2 && h.Cards[0].Rank == h.Cards[1].Rank
	h.CanSplit = h.IsPair
}

// Clone 深拷贝，供快照和事件使用
func (h PlayerHand) Clone() PlayerHand {
	out := h
	out.Cards = append([]Card(nil), h.Cards...)
	return out
}

func (h PlayerHand) String() string {
	parts := make([]string, 0, len(h.Cards))
	for _, c := range h.Cards {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}
