package tracker

import "BlackjackAdvisor/internal/game/table"

// OwnershipResolver 决定开局的牌归属：玩家两张，庄家一张明牌
//
// pending 是本手到目前为止确认、尚未分配的牌，按确认顺序排列。
// 牌不够或无法判断时返回 ok=false，状态机会继续等待。
type OwnershipResolver interface {
	Resolve(pending []table.Card) (player [2]table.Card, upcard table.Card, ok bool)
}

// ResolverFunc 函数适配
type ResolverFunc func(pending []table.Card) ([2]table.Card, table.Card, bool)

func (f ResolverFunc) Resolve(pending []table.Card) ([2]table.Card, table.Card, bool) {
	return f(pending)
}

// SequentialResolver 前两张给玩家，第三张是庄家明牌。不看位置
type SequentialResolver struct{}

func (SequentialResolver) Resolve(pending []table.Card) (player [2]table.Card, upcard table.Card, ok bool) {
	if len(pending) < 3 {
		return player, upcard, false
	}
	return [2]table.Card{pending[0], pending[1]}, pending[2], true
}
