package shuffle

import "BlackjackAdvisor/internal/game/table"

// history 最近 N 个确认编号的环形缓冲，满了覆盖最旧的
type history struct {
	buf  []table.Identity
	head int // 下一个写入位置
	size int
}

func newHistory(capacity int) *history {
	if capacity < 1 {
		capacity = 1
	}
	return &history{buf: make([]table.Identity, capacity)}
}

func (h *history) Len() int { return h.size }

func (h *history) Push(id table.Identity) {
	h.buf[h.head] = id
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Count 窗口里 id 出现的次数，包括最新一条
//
// 未写满时有效记录就是 buf[:size]，写满后是整个 buf
func (h *history) Count(id table.Identity) int {
	n := 0
	for _, v := range h.buf[:h.size] {
		if v == id {
			n++
		}
	}
	return n
}

func (h *history) Reset() {
	h.head = 0
	h.size = 0
}
