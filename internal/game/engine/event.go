package engine

import (
	"time"

	"BlackjackAdvisor/internal/game/shuffle"
	"BlackjackAdvisor/internal/game/strategy"
	"BlackjackAdvisor/internal/game/table"
)

// Decision 一次推荐
type Decision struct {
	SessionID      string          `json:"sessionId"`
	Action         strategy.Action `json:"action"`
	RunningCount   int             `json:"runningCount"`
	TrueCount      float64         `json:"trueCount"`
	RecommendedBet float64         `json:"recommendedBet"`
	CamouflageBet  float64         `json:"camouflageBet"`
	Insurance      bool            `json:"insurance"`
	HandIndex      int             `json:"handIndex"`
	PlayerCards    []table.Card    `json:"playerCards"`
	PlayerTotal    int             `json:"playerTotal"`
	Soft           bool            `json:"soft"`
	Upcard         table.Card      `json:"upcard"`
	Forced         bool            `json:"forced"`
	Timestamp      time.Time       `json:"timestamp"`
}

// ShuffleNotice 一次重洗信号
type ShuffleNotice struct {
	Indicator    shuffle.Indicator `json:"indicator"`
	CardsSeen    int               `json:"cardsSeen"`
	Penetration  float64           `json:"penetration"`
	RunningCount int               `json:"runningCount"`
	Reset        bool              `json:"reset"`
	Timestamp    time.Time         `json:"timestamp"`
}

type EventKind string

const (
	EventDecision   EventKind = "decision"
	EventShuffle    EventKind = "shuffle"
	EventHighCount  EventKind = "high_count"
	EventCountReset EventKind = "count_reset"
)

// Event 引擎对外发布的事件
type Event struct {
	Kind         EventKind      `json:"kind"`
	SessionID    string         `json:"sessionId"`
	RunningCount int            `json:"runningCount"`
	TrueCount    float64        `json:"trueCount"`
	Decision     *Decision      `json:"decision,omitempty"`
	Shuffle      *ShuffleNotice `json:"shuffle,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// Publisher 接收事件。在引擎的写线程里同步调用，实现不能阻塞
type Publisher interface {
	Publish(Event)
}

type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) { f(e) }

// Fanout 依次发给多个订阅者，nil 会被跳过
type Fanout []Publisher

func (f Fanout) Publish(e Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(e)
		}
	}
}

type discard struct{}

func (discard) Publish(Event) {}
