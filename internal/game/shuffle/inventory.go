package shuffle

import "BlackjackAdvisor/internal/game/table"

// Inventory 按物理出现次数统计每个编号
type Inventory struct {
	PerIdentity [table.DeckSize]int `json:"perIdentity"`
	TotalSeen   int                 `json:"totalSeen"`
	DeckCount   int                 `json:"deckCount"`
}

func (inv *Inventory) Add(id table.Identity) bool {
	if int(id) >= table.DeckSize {
		return false
	}
	inv.PerIdentity[id]++
	inv.TotalSeen++
	return true
}

// IsImpossible 某张牌出现次数超过副数，或总数超过整个牌靴
func (inv *Inventory) IsImpossible() bool {
	for _, n := range inv.PerIdentity {
		if n > inv.DeckCount {
			return true
		}
	}
	return inv.TotalSeen > inv.DeckCount*table.DeckSize
}

func (inv *Inventory) Penetration() float64 {
	total := inv.DeckCount * table.DeckSize
	if total == 0 {
		return 0
	}
	return float64(inv.TotalSeen) / float64(total)
}

func (inv *Inventory) HasReachedPenetration(limit float64) bool {
	return inv.Penetration() >= limit
}

func (inv *Inventory) Reset() {
	inv.PerIdentity = [table.DeckSize]int{}
	inv.TotalSeen = 0
}
