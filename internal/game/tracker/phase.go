package tracker

// Phase 牌局阶段，同一时刻只有一个
type Phase uint8

const (
	WaitingForCards Phase = iota
	PlayerTurn
	HandComplete
	NewShoe
)

var phaseNames = map[Phase]string{
	WaitingForCards: "waiting_for_cards",
	PlayerTurn:      "player_turn",
	HandComplete:    "hand_complete",
	NewShoe:         "new_shoe",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
