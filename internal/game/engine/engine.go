// Package engine 编排器：会话里唯一的写者
//
// 每帧先处理排队的用户命令，再依次经过稳定过滤、计数、重洗检测和牌局状态机，
// 需要时调用策略和下注模块给出推荐。读者通过 Snapshot 拿到原子替换的只读快照。
package engine

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"BlackjackAdvisor/internal/game/betting"
	"BlackjackAdvisor/internal/game/counter"
	"BlackjackAdvisor/internal/game/shuffle"
	"BlackjackAdvisor/internal/game/stability"
	"BlackjackAdvisor/internal/game/strategy"
	"BlackjackAdvisor/internal/game/table"
	"BlackjackAdvisor/internal/game/tracker"
	"BlackjackAdvisor/internal/metrics"

	"github.com/charmbracelet/log"
)

const (
	highCountThreshold = 3.0
	highCountInterval  = 5 * time.Second

	frameQueueSize   = 64
	commandQueueSize = 16
)

// Deps 外部协作者，全部可选
type Deps struct {
	Logger    *log.Logger
	Publisher Publisher
	Metrics   *metrics.Metrics
	Resolver  tracker.OwnershipResolver
	// Clock 帧没有时间戳、以及命令执行时使用
	Clock func() time.Time
}

type Engine struct {
	opts    Options
	log     *log.Logger
	pub     Publisher
	metrics *metrics.Metrics
	now     func() time.Time

	filter   *stability.Filter
	counter  *counter.Counter
	detector *shuffle.Detector
	tracker  *tracker.Tracker
	strategy *strategy.Engine
	betting  *betting.Engine

	frames   chan Frame
	commands chan command
	done     chan struct{}
	running  atomic.Bool

	// stopping 关闭后排队的调用方立即返回；stopped 置位后不再接收新的帧和命令
	stopping chan struct{}
	stopMu   sync.RWMutex
	stopped  bool

	snap atomic.Pointer[Snapshot]

	// 以下只在写线程访问
	frameNo       uint64
	rejected      uint64
	decisions     int
	shuffles      int
	announced     bool
	lastDecision  *Decision
	lastShuffle   *ShuffleNotice
	lastHighCount time.Time
}

// New 校验配置并构建全部组件；配置不合法时返回 *ConfigError
func New(opts Options, deps Deps) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.SessionID != "" {
		logger = logger.With("session", opts.SessionID)
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	pub := deps.Publisher
	if pub == nil {
		pub = discard{}
	}

	rules, _ := strategy.ParseRules(opts.Rules)
	strat, err := strategy.New(strategy.Config{Rules: rules, Deviations: opts.Deviations}, logger)
	if err != nil {
		return nil, &ConfigError{"rules", err.Error()}
	}
	bet, err := betting.New(opts.Betting, logger)
	if err != nil {
		return nil, &ConfigError{"betting", err.Error()}
	}

	now := clock()
	e := &Engine{
		opts:     opts,
		log:      logger.With("component", "engine"),
		pub:      pub,
		metrics:  deps.Metrics,
		now:      clock,
		filter:   stability.New(opts.StabilityFrames),
		counter:  counter.New(opts.DeckCount, logger),
		detector: shuffle.New(opts.shuffleConfig(), logger, now),
		tracker:  tracker.New(opts.trackerConfig(), deps.Resolver, logger),
		strategy: strat,
		betting:  bet,
		frames:   make(chan Frame, frameQueueSize),
		commands: make(chan command, commandQueueSize),
		done:     make(chan struct{}),
		stopping: make(chan struct{}),
	}
	e.publishSnapshot(now)
	e.log.Info("session configured",
		"decks", opts.DeckCount,
		"penetration", opts.PenetrationLimit,
		"rules", rules,
		"kelly", opts.Betting.KellyFraction,
	)
	return e, nil
}

func (e *Engine) Options() Options { return e.opts }

// Snapshot 无锁读取最近一次发布的快照
func (e *Engine) Snapshot() Snapshot { return *e.snap.Load() }

// Run 拥有引擎的写线程，直到 ctx 结束
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return nil
	}
	defer close(e.done)
	e.log.Info("engine loop started")

	for {
		select {
		case <-ctx.Done():
			e.stop()
			e.log.Info("engine loop stopped")
			return ctx.Err()
		case f := <-e.frames:
			e.ProcessFrame(f)
		case cmd := <-e.commands:
			// 两帧之间到达的命令直接执行，顺序不变；先发布快照再回复
			now := e.now()
			err := e.execute(cmd.kind, now)
			e.publishSnapshot(now)
			cmd.reply <- err
		}
	}
}

// Done 运行循环退出后关闭
func (e *Engine) Done() <-chan struct{} { return e.done }

// stop 先拒绝新的调用，再把已经接收的帧和命令处理完
func (e *Engine) stop() {
	close(e.stopping)
	e.stopMu.Lock()
	e.stopped = true
	e.stopMu.Unlock()

	for len(e.frames) > 0 {
		e.ProcessFrame(<-e.frames)
	}
	e.drainCommands(e.now())
}

// SubmitFrame 把一帧交给运行循环，队列满时阻塞直到 ctx 结束
//
// 返回 nil 表示这一帧一定会被处理，运行循环退出后返回 ErrEngineStopped
func (e *Engine) SubmitFrame(ctx context.Context, f Frame) error {
	e.stopMu.RLock()
	defer e.stopMu.RUnlock()
	if e.stopped {
		return ErrEngineStopped
	}
	select {
	case e.frames <- f:
		return nil
	case <-e.stopping:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue 排队一个命令，结果在命令执行后写入返回的通道
//
// 没有运行 Run 时命令在下一次 ProcessFrame 开头执行
func (e *Engine) Enqueue(kind CommandKind) <-chan error {
	reply := make(chan error, 1)
	if _, err := ParseCommand(string(kind)); err != nil {
		reply <- err
		return reply
	}
	e.stopMu.RLock()
	defer e.stopMu.RUnlock()
	if e.stopped {
		reply <- ErrEngineStopped
		return reply
	}
	select {
	case e.commands <- command{kind: kind, reply: reply}:
	case <-e.stopping:
		reply <- ErrEngineStopped
	}
	return reply
}

// drainCommands 执行排队的命令，快照更新后才回复调用方
func (e *Engine) drainCommands(now time.Time) {
	var done []command
	var errs []error
	for len(e.commands) > 0 {
		cmd := <-e.commands
		done = append(done, cmd)
		errs = append(errs, e.execute(cmd.kind, now))
	}
	if len(done) == 0 {
		return
	}
	e.publishSnapshot(now)
	for i, cmd := range done {
		cmd.reply <- errs[i]
	}
}

func (e *Engine) execute(kind CommandKind, now time.Time) error {
	e.log.Info("command", "kind", kind)
	switch kind {
	case CmdResetCount:
		e.resetShoe(now)
		e.pub.Publish(e.event(EventCountReset, now))
		return nil
	case CmdNextHand:
		e.tracker.NextHand()
		return nil
	case CmdForceDecision:
		_, err := e.decide(now, true)
		return err
	}
	return ErrUnknownCommand
}

// ProcessFrame 单帧处理，只能在写线程调用
func (e *Engine) ProcessFrame(f Frame) FrameResult {
	started := time.Now()
	now := f.At
	if now.IsZero() {
		now = e.now()
	}
	e.drainCommands(now)
	e.frameNo++

	ids, conf, rejected := e.accept(f.Detections)
	res := FrameResult{Frame: e.frameNo, Rejected: rejected}
	empty := len(ids) == 0

	e.detector.ObserveFrame(empty)
	confirmed := e.filter.Update(ids)

	cards := make([]table.Card, 0, len(confirmed))
	for _, id := range confirmed {
		c := table.NewCard(id, conf[id], now)
		e.counter.AddCard(c)
		res.Confirmed = append(res.Confirmed, c)
		cards = append(cards, c)

		if ind := e.detector.Confirm(id, now); ind != shuffle.None && e.onShuffle(ind, now) {
			// 重置后本帧剩下的牌交给新的牌靴，等稳定过滤重新确认
			res.Reset = true
			cards = nil
			break
		}
	}

	e.tracker.Update(cards, empty)

	if !res.Reset {
		if ind := e.detector.Evaluate(now); ind != shuffle.None && e.onShuffle(ind, now) {
			res.Reset = true
		}
	}

	if e.tracker.ShouldProcessDecision(now) {
		if d, err := e.decide(now, false); err == nil {
			res.Decision = d
		}
	}

	e.checkHighCount(now)

	res.Phase = e.tracker.Phase()
	res.Indicator = e.detector.LastIndicator()
	if res.Reset {
		res.Indicator = e.lastShuffle.Indicator
	}
	e.publishSnapshot(now)
	e.metrics.Frame(e.opts.SessionID, time.Since(started), len(res.Confirmed), rejected)
	return res
}

// accept 边界校验：越界编号在这里丢弃，不会进入任何核心组件
func (e *Engine) accept(dets []Detection) ([]table.Identity, map[table.Identity]float64, int) {
	ids := make([]table.Identity, 0, len(dets))
	conf := make(map[table.Identity]float64, len(dets))
	rejected := 0
	for _, d := range dets {
		id, err := table.ParseIdentity(d.CardID)
		if err != nil {
			rejected++
			e.log.Debug("detection rejected", "err", err)
			continue
		}
		if c, seen := conf[id]; !seen || d.Confidence > c {
			conf[id] = d.Confidence
		}
		ids = append(ids, id)
	}
	e.rejected += uint64(rejected)
	return ids, conf, rejected
}

// onShuffle 处理新出现的重洗信号，返回是否已经重置
func (e *Engine) onShuffle(ind shuffle.Indicator, now time.Time) bool {
	if e.announced {
		return false
	}
	notice := &ShuffleNotice{
		Indicator:    ind,
		CardsSeen:    e.detector.Inventory().TotalSeen,
		Penetration:  e.detector.Penetration(),
		RunningCount: e.counter.RunningCount(),
		Reset:        e.opts.AutoReset,
		Timestamp:    now,
	}
	e.lastShuffle = notice
	e.shuffles++
	e.metrics.Shuffle(ind.String())
	e.log.Warn("shuffle indicator", "indicator", ind, "seen", notice.CardsSeen, "auto", e.opts.AutoReset)

	ev := e.event(EventShuffle, now)
	ev.Shuffle = notice

	if !e.opts.AutoReset {
		e.announced = true
		e.pub.Publish(ev)
		return false
	}
	e.resetShoe(now)
	e.pub.Publish(ev)
	return true
}

// resetShoe 计数、检测器、稳定过滤和牌局一起清零
func (e *Engine) resetShoe(now time.Time) {
	e.counter.Reset()
	e.detector.Reset(now)
	e.filter.Reset()
	e.tracker.ResetForNewShoe()
	e.announced = false
	e.lastHighCount = time.Time{}
}

// decide 生成推荐；forced 时跳过防抖
func (e *Engine) decide(now time.Time, forced bool) (*Decision, error) {
	hand, okHand := e.tracker.CurrentHand()
	up, okUp := e.tracker.Upcard()
	if !okHand || !okUp || len(hand.Cards) < 2 {
		e.log.Warn("cannot make decision, missing hand or dealer card", "forced", forced)
		return nil, ErrStaleDecision
	}

	tc := e.counter.TrueCount()
	action := e.strategy.Recommend(hand, up.Rank, tc)
	d := &Decision{
		SessionID:      e.opts.SessionID,
		Action:         action,
		RunningCount:   e.counter.RunningCount(),
		TrueCount:      tc,
		RecommendedBet: e.betting.CalculateBet(tc, e.opts.Bankroll),
		CamouflageBet:  e.betting.CamouflageBet(tc),
		Insurance:      strategy.Insurance(up.Rank, tc) && len(hand.Cards) == 2,
		HandIndex:      e.tracker.CurrentIndex(),
		PlayerCards:    hand.Cards,
		PlayerTotal:    hand.Total,
		Soft:           hand.IsSoft,
		Upcard:         up,
		Forced:         forced,
		Timestamp:      now,
	}

	if e.tracker.Phase() == tracker.PlayerTurn {
		e.tracker.RecordDecision(action, now)
	}
	e.lastDecision = d
	e.decisions++
	e.metrics.Decision(action.String())

	e.log.Info("recommendation",
		"action", action,
		"hand", hand.String(),
		"total", hand.Total,
		"soft", hand.IsSoft,
		"upcard", up,
		"rc", d.RunningCount,
		"tc", tc,
		"bet", d.RecommendedBet,
		"insurance", d.Insurance,
	)

	ev := e.event(EventDecision, now)
	ev.Decision = d
	e.pub.Publish(ev)
	return d, nil
}

func (e *Engine) checkHighCount(now time.Time) {
	tc := e.counter.TrueCount()
	if tc < highCountThreshold {
		return
	}
	if !e.lastHighCount.IsZero() && now.Sub(e.lastHighCount) < highCountInterval {
		return
	}
	e.lastHighCount = now
	e.log.Info("high count", "tc", tc)
	e.pub.Publish(e.event(EventHighCount, now))
}

func (e *Engine) event(kind EventKind, now time.Time) Event {
	return Event{
		Kind:         kind,
		SessionID:    e.opts.SessionID,
		RunningCount: e.counter.RunningCount(),
		TrueCount:    e.counter.TrueCount(),
		Timestamp:    now,
	}
}

func (e *Engine) publishSnapshot(now time.Time) {
	st := e.counter.State()
	tc := st.TrueCount()
	s := &Snapshot{
		SessionID:       e.opts.SessionID,
		Frame:           e.frameNo,
		RunningCount:    st.RunningCount,
		TrueCount:       tc,
		CardsPlayed:     st.CardsPlayed,
		CardsRemaining:  st.CardsRemaining(),
		DecksRemaining:  st.DecksRemaining(),
		Penetration:     st.Penetration(),
		Confidence:      st.Confidence(),
		Phase:           e.tracker.Phase(),
		Hands:           e.tracker.Hands(),
		CurrentHand:     e.tracker.CurrentIndex(),
		Indicator:       e.detector.LastIndicator(),
		ShuffleDetected: e.detector.IsShuffleDetected(),
		CardsSeen:       e.detector.Inventory().TotalSeen,
		RecommendedBet:  e.betting.CalculateBet(tc, e.opts.Bankroll),
		CamouflageBet:   e.betting.CamouflageBet(tc),
		LastDecision:    e.lastDecision,
		LastShuffle:     e.lastShuffle,
		Decisions:       e.decisions,
		Shuffles:        e.shuffles,
		Rejected:        e.rejected,
		UpdatedAt:       now,
	}
	if up, ok := e.tracker.Upcard(); ok {
		s.Upcard = &up
	}
	e.snap.Store(s)
	e.metrics.Count(e.opts.SessionID, tc, s.Penetration)
}
