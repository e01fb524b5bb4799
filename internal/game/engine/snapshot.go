package engine

import (
	"time"

	"BlackjackAdvisor/internal/game/shuffle"
	"BlackjackAdvisor/internal/game/table"
	"BlackjackAdvisor/internal/game/tracker"
)

// Snapshot 只读快照，写线程每帧整体替换一次，读者拿到的永远是完整的一份
type Snapshot struct {
	SessionID string `json:"sessionId"`
	Frame     uint64 `json:"frame"`

	RunningCount   int     `json:"runningCount"`
	TrueCount      float64 `json:"trueCount"`
	CardsPlayed    int     `json:"cardsPlayed"`
	CardsRemaining int     `json:"cardsRemaining"`
	DecksRemaining float64 `json:"decksRemaining"`
	Penetration    float64 `json:"penetration"`
	Confidence     float64 `json:"confidence"`

	Phase       tracker.Phase      `json:"phase"`
	Hands       []table.PlayerHand `json:"hands"`
	CurrentHand int                `json:"currentHand"`
	Upcard      *table.Card        `json:"upcard,omitempty"`

	Indicator       shuffle.Indicator `json:"indicator"`
	ShuffleDetected bool              `json:"shuffleDetected"`
	CardsSeen       int               `json:"cardsSeen"`

	RecommendedBet float64        `json:"recommendedBet"`
	CamouflageBet  float64        `json:"camouflageBet"`
	LastDecision   *Decision      `json:"lastDecision,omitempty"`
	LastShuffle    *ShuffleNotice `json:"lastShuffle,omitempty"`

	Decisions int    `json:"decisions"`
	Shuffles  int    `json:"shuffles"`
	Rejected  uint64 `json:"rejected"`

	UpdatedAt time.Time `json:"updatedAt"`
}
