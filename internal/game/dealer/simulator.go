package dealer

import (
	"context"
	"io"
	"time"

	"BlackjackAdvisor/internal/game/engine"
	"BlackjackAdvisor/internal/game/shuffle"
	"BlackjackAdvisor/internal/game/strategy"
	"BlackjackAdvisor/internal/game/table"
	"BlackjackAdvisor/internal/game/tracker"

	"github.com/charmbracelet/log"
)

// 一手最多推进的步数，防止模拟卡死
const maxPlayerSteps = 24

type Config struct {
	Rounds int
	// HoldFrames 桌面每变化一次保持的帧数，需要覆盖稳定帧数和决策防抖
	HoldFrames  int
	ClearFrames int
	FPS         int
	// Cut 发到这个比例换新靴
	Cut   float64
	Start time.Time
}

func DefaultConfig() Config {
	return Config{
		Rounds:      100,
		HoldFrames:  45,
		ClearFrames: 10,
		FPS:         30,
		Cut:         0.75,
	}
}

type Stats struct {
	Rounds     int                       `json:"rounds"`
	Frames     int                       `json:"frames"`
	Decisions  int                       `json:"decisions"`
	Actions    map[strategy.Action]int   `json:"actions"`
	Insurance  int                       `json:"insurance"`
	Resets     int                       `json:"resets"`
	Reshuffles int                       `json:"reshuffles"`
	Indicators map[shuffle.Indicator]int `json:"indicators"`
	FinalCount int                       `json:"finalCount"`
	FinalTrue  float64                   `json:"finalTrueCount"`
}

// Simulator 按真实牌桌的节奏把牌摆上桌面，逐帧交给引擎
//
// 直接调用 ProcessFrame，不能和 Engine.Run 同时使用
type Simulator struct {
	cfg    Config
	dealer *Dealer
	eng    *engine.Engine
	log    *log.Logger

	now     time.Time
	tick    time.Duration
	visible []table.Identity
	lastInd shuffle.Indicator
	stats   Stats
}

func NewSimulator(cfg Config, d *Dealer, eng *engine.Engine, logger *log.Logger) *Simulator {
	def := DefaultConfig()
	if cfg.HoldFrames < 1 {
		cfg.HoldFrames = def.HoldFrames
	}
	if cfg.ClearFrames < 1 {
		cfg.ClearFrames = def.ClearFrames
	}
	if cfg.FPS < 1 {
		cfg.FPS = def.FPS
	}
	if cfg.Cut <= 0 || cfg.Cut > 1 {
		cfg.Cut = def.Cut
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if d.Remaining() == 0 {
		d.NewShoe(eng.Options().DeckCount)
	}
	return &Simulator{
		cfg:    cfg,
		dealer: d,
		eng:    eng,
		log:    logger.With("component", "simulator"),
		now:    cfg.Start,
		tick:   time.Second / time.Duration(cfg.FPS),
		stats: Stats{
			Actions:    make(map[strategy.Action]int),
			Indicators: make(map[shuffle.Indicator]int),
		},
	}
}

// Run 模拟 cfg.Rounds 手牌
func (s *Simulator) Run(ctx context.Context) (Stats, error) {
	s.log.Info("simulation started", "rounds", s.cfg.Rounds, "decks", s.dealer.Decks())
	for r := 0; r < s.cfg.Rounds; r++ {
		if err := ctx.Err(); err != nil {
			return s.finish(), err
		}
		s.playRound()
	}
	return s.finish(), nil
}

func (s *Simulator) finish() Stats {
	snap := s.eng.Snapshot()
	s.stats.FinalCount = snap.RunningCount
	s.stats.FinalTrue = snap.TrueCount
	s.log.Info("simulation finished",
		"rounds", s.stats.Rounds,
		"decisions", s.stats.Decisions,
		"resets", s.stats.Resets,
		"rc", s.stats.FinalCount,
	)
	return s.stats
}

func (s *Simulator) playRound() {
	if s.dealer.Penetration() >= s.cfg.Cut {
		s.dealer.NewShoe(s.dealer.Decks())
		s.stats.Reshuffles++
		s.log.Debug("dealer reshuffled")
	}

	seen := s.eng.Snapshot().Decisions
	s.visible = s.visible[:0]
	upcard := s.deal(3)[2]
	hole := s.dealer.Draw()
	s.hold(s.cfg.HoldFrames)

	for i := 0; i < maxPlayerSteps; i++ {
		snap := s.eng.Snapshot()
		if snap.Phase != tracker.PlayerTurn || snap.CurrentHand >= len(snap.Hands) {
			break
		}
		fresh := snap.Decisions > seen
		seen = snap.Decisions

		h := snap.Hands[snap.CurrentHand]
		switch {
		case len(h.Cards) < 2:
			s.deal(1)
		case fresh && snap.LastDecision != nil && drawing(snap.LastDecision.Action):
			s.deal(1)
		}
		s.hold(s.cfg.HoldFrames)
	}

	// 庄家翻开底牌，软 17 停牌
	var dh table.PlayerHand
	dh.Add(table.NewCard(upcard, 1, s.now))
	dh.Add(table.NewCard(hole, 1, s.now))
	s.visible = append(s.visible, hole)
	s.hold(s.cfg.HoldFrames)
	for dh.Total < 17 {
		dh.Add(table.NewCard(s.deal(1)[0], 1, s.now))
		s.hold(s.cfg.HoldFrames)
	}

	s.visible = s.visible[:0]
	s.hold(s.cfg.ClearFrames)
	s.stats.Rounds++
	s.log.Debug("round finished", "dealer", dh.String(), "total", dh.Total)
}

func drawing(a strategy.Action) bool {
	return a == strategy.Hit || a == strategy.Double
}

// deal 发 n 张明牌到桌面
func (s *Simulator) deal(n int) []table.Identity {
	out := make([]table.Identity, n)
	for i := range out {
		out[i] = s.dealer.Draw()
	}
	s.visible = append(s.visible, out...)
	return out
}

func (s *Simulator) hold(frames int) {
	for i := 0; i < frames; i++ {
		s.frame()
	}
}

func (s *Simulator) frame() {
	s.now = s.now.Add(s.tick)
	dets := make([]engine.Detection, 0, len(s.visible))
	for _, id := range s.visible {
		dets = append(dets, engine.Detection{
			CardID:         int(id),
			Confidence:     s.dealer.Jitter(),
			TimestampNanos: s.now.UnixNano(),
		})
	}
	res := s.eng.ProcessFrame(engine.Frame{Detections: dets, At: s.now})
	s.stats.Frames++

	if d := res.Decision; d != nil {
		s.stats.Decisions++
		s.stats.Actions[d.Action]++
		if d.Insurance {
			s.stats.Insurance++
		}
	}
	if res.Reset {
		s.stats.Resets++
	}
	if res.Indicator != shuffle.None && (res.Reset || res.Indicator != s.lastInd) {
		s.stats.Indicators[res.Indicator]++
	}
	s.lastInd = res.Indicator
	if res.Reset {
		s.lastInd = shuffle.None
	}
}

func (s *Simulator) Now() time.Time { return s.now }
