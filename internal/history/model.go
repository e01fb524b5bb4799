// Package history 会话记录：每次推荐一条手牌记录，每次重洗一条重洗记录
package history

import (
	"math"
	"time"

	"BlackjackAdvisor/internal/game/engine"

	"github.com/google/uuid"
)

// HandRecord 一次推荐
type HandRecord struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId"`
	HandIndex    int       `json:"handIndex"`
	Action       string    `json:"action"`
	PlayerCards  []string  `json:"playerCards"`
	PlayerTotal  int       `json:"playerTotal"`
	Soft         bool      `json:"soft"`
	Upcard       string    `json:"upcard"`
	RunningCount int       `json:"runningCount"`
	TrueCount    float64   `json:"trueCount"`
	Bet          float64   `json:"bet"`
	Camouflage   float64   `json:"camouflageBet"`
	Insurance    bool      `json:"insurance"`
	Forced       bool      `json:"forced"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ShuffleRecord 一次重洗信号
type ShuffleRecord struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId"`
	Indicator    string    `json:"indicator"`
	CardsSeen    int       `json:"cardsSeen"`
	Penetration  float64   `json:"penetration"`
	RunningCount int       `json:"runningCount"`
	Reset        bool      `json:"reset"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary 由记录推导的会话统计
type Summary struct {
	SessionID    string         `json:"sessionId"`
	Hands        int            `json:"hands"`
	Actions      map[string]int `json:"actions"`
	Insurance    int            `json:"insurance"`
	MinTrueCount float64        `json:"minTrueCount"`
	MaxTrueCount float64        `json:"maxTrueCount"`
	AvgTrueCount float64        `json:"avgTrueCount"`
	AvgBet       float64        `json:"avgBet"`
	Shuffles     int            `json:"shuffles"`
	Indicators   map[string]int `json:"indicators"`
}

func handFromDecision(d *engine.Decision) HandRecord {
	cards := make([]string, 0, len(d.PlayerCards))
	for _, c := range d.PlayerCards {
		cards = append(cards, c.String())
	}
	return HandRecord{
		ID:           uuid.NewString(),
		SessionID:    d.SessionID,
		HandIndex:    d.HandIndex,
		Action:       d.Action.String(),
		PlayerCards:  cards,
		PlayerTotal:  d.PlayerTotal,
		Soft:         d.Soft,
		Upcard:       d.Upcard.String(),
		RunningCount: d.RunningCount,
		TrueCount:    d.TrueCount,
		Bet:          d.RecommendedBet,
		Camouflage:   d.CamouflageBet,
		Insurance:    d.Insurance,
		Forced:       d.Forced,
		CreatedAt:    d.Timestamp,
	}
}

func shuffleFromNotice(session string, n *engine.ShuffleNotice) ShuffleRecord {
	return ShuffleRecord{
		ID:           uuid.NewString(),
		SessionID:    session,
		Indicator:    n.Indicator.String(),
		CardsSeen:    n.CardsSeen,
		Penetration:  n.Penetration,
		RunningCount: n.RunningCount,
		Reset:        n.Reset,
		CreatedAt:    n.Timestamp,
	}
}

// Summarize 没有手牌时真数统计为 0
func Summarize(session string, hands []HandRecord, shuffles []ShuffleRecord) Summary {
	s := Summary{
		SessionID:  session,
		Hands:      len(hands),
		Actions:    make(map[string]int),
		Shuffles:   len(shuffles),
		Indicators: make(map[string]int),
	}
	minTC, maxTC := math.Inf(1), math.Inf(-1)
	var sumTC, sumBet float64
	for _, h := range hands {
		s.Actions[h.Action]++
		if h.Insurance {
			s.Insurance++
		}
		minTC = math.Min(minTC, h.TrueCount)
		maxTC = math.Max(maxTC, h.TrueCount)
		sumTC += h.TrueCount
		sumBet += h.Bet
	}
	if len(hands) > 0 {
		s.MinTrueCount = minTC
		s.MaxTrueCount = maxTC
		s.AvgTrueCount = sumTC / float64(len(hands))
		s.AvgBet = sumBet / float64(len(hands))
	}
	for _, r := range shuffles {
		s.Indicators[r.Indicator]++
	}
	return s
}
