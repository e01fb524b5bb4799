// Package stability 把逐帧的识别结果过滤成"已确认"的牌
package stability

import (
	"BlackjackAdvisor/internal/game/table"
)

// DefaultThreshold 连续出现多少帧才算确认
const DefaultThreshold = 3

// Filter 每个编号维护一个连续帧计数器
//
// 出现则 +1，缺席则清零；计数首次达到阈值时确认一次，
// 之后只要一直在画面里就不会重复确认（一次物理出现只确认一次）
type Filter struct {
	threshold int
	frames    [table.DeckSize]int
	confirmed [table.DeckSize]bool
}

func New(threshold int) *Filter {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Filter{threshold: threshold}
}

func (f *Filter) Threshold() int { return f.threshold }

// Update 输入本帧出现的编号（可能有重复），返回本帧新确认的编号
//
// 返回顺序与输入中首次出现的顺序一致
func (f *Filter) Update(ids []table.Identity) []table.Identity {
	var present [table.DeckSize]bool
	order := make([]table.Identity, 0, len(ids))
	for _, id := range ids {
		if int(id) >= table.DeckSize || present[id] {
			continue
		}
		present[id] = true
		order = append(order, id)
	}

	for i := range f.frames {
		if !present[i] {
			f.frames[i] = 0
			f.confirmed[i] = false
		}
	}

	var out []table.Identity
	for _, id := range order {
		f.frames[id]++
		if !f.confirmed[id] && f.frames[id] >= f.threshold {
			f.confirmed[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Frames 当前连续帧数（测试/诊断用）
func (f *Filter) Frames(id table.Identity) int {
	if int(id) >= table.DeckSize {
		return 0
	}
	return f.frames[id]
}

// Reset 清空所有计数，画面里仍在的牌会重新确认
func (f *Filter) Reset() {
	f.frames = [table.DeckSize]int{}
	f.confirmed = [table.DeckSize]bool{}
}
