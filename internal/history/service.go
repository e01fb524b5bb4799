package history

import (
	"context"
	"io"
	"sync/atomic"

	"BlackjackAdvisor/internal/game/engine"
	"BlackjackAdvisor/internal/metrics"

	"github.com/charmbracelet/log"
)

const DefaultBuffer = 1024

// Service 订阅引擎事件，在自己的协程里落库
//
// Publish 从引擎写线程调用，永不阻塞；缓冲满时丢弃并计数
type Service struct {
	repo    Repo
	events  chan engine.Event
	log     *log.Logger
	metrics *metrics.Metrics
	dropped atomic.Uint64
}

func NewService(repo Repo, buffer int, logger *log.Logger, m *metrics.Metrics) *Service {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{
		repo:    repo,
		events:  make(chan engine.Event, buffer),
		log:     logger.With("component", "history"),
		metrics: m,
	}
}

func (s *Service) Publish(e engine.Event) {
	if e.Kind != engine.EventDecision && e.Kind != engine.EventShuffle {
		return
	}
	select {
	case s.events <- e:
	default:
		s.dropped.Add(1)
		s.metrics.HistoryDropped()
		s.log.Warn("history buffer full, event dropped", "session", e.SessionID, "kind", e.Kind)
	}
}

// Dropped 因缓冲满丢弃的事件数
func (s *Service) Dropped() uint64 { return s.dropped.Load() }

// Run 消费事件直到 ctx 结束，退出前写完缓冲里剩下的
func (s *Service) Run(ctx context.Context) {
	s.log.Info("history recorder started")
	for {
		select {
		case e := <-s.events:
			s.record(ctx, e)
		case <-ctx.Done():
			s.flush()
			s.log.Info("history recorder stopped")
			return
		}
	}
}

func (s *Service) flush() {
	ctx := context.Background()
	for {
		select {
		case e := <-s.events:
			s.record(ctx, e)
		default:
			return
		}
	}
}

func (s *Service) record(ctx context.Context, e engine.Event) {
	var err error
	switch {
	case e.Kind == engine.EventDecision && e.Decision != nil:
		err = s.repo.SaveHand(ctx, handFromDecision(e.Decision))
	case e.Kind == engine.EventShuffle && e.Shuffle != nil:
		err = s.repo.SaveShuffle(ctx, shuffleFromNotice(e.SessionID, e.Shuffle))
	}
	if err != nil {
		s.log.Error("save history record", "session", e.SessionID, "kind", e.Kind, "err", err)
	}
}

func (s *Service) Hands(ctx context.Context, session string, limit int) ([]HandRecord, error) {
	return s.repo.Hands(ctx, session, limit)
}

func (s *Service) Shuffles(ctx context.Context, session string) ([]ShuffleRecord, error) {
	return s.repo.Shuffles(ctx, session)
}

func (s *Service) Summary(ctx context.Context, session string) (Summary, error) {
	hands, err := s.repo.Hands(ctx, session, 0)
	if err != nil {
		return Summary{}, err
	}
	shuffles, err := s.repo.Shuffles(ctx, session)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(session, hands, shuffles), nil
}

func (s *Service) DeleteSession(ctx context.Context, session string) error {
	return s.repo.DeleteSession(ctx, session)
}
