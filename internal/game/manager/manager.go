// Package manager 管理多个计数会话：每个会话一个引擎和一个运行协程
package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"BlackjackAdvisor/internal/game/engine"
	"BlackjackAdvisor/internal/metrics"
	"BlackjackAdvisor/internal/websocket"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

// Deps 全部可选
type Deps struct {
	Hub      websocket.HubInterface
	Recorder engine.Publisher
	Metrics  *metrics.Metrics
	Logger   *log.Logger
	Clock    func() time.Time
}

type session struct {
	eng     *engine.Engine
	cancel  context.CancelFunc
	created time.Time
}

// Manager 管理所有会话
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session // sessionID → session
	defaults engine.Options
	deps     Deps
	log      *log.Logger
}

func New(defaults engine.Options, deps Deps) *Manager {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Manager{
		sessions: make(map[string]*session),
		defaults: defaults,
		deps:     deps,
		log:      deps.Logger.With("component", "manager"),
	}
}

func (m *Manager) Defaults() engine.Options { return m.defaults }

// Create 创建会话并启动引擎；SessionID 为空时生成一个
func (m *Manager) Create(opts engine.Options) (string, error) {
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[opts.SessionID]; ok {
		return "", fmt.Errorf("%w: %s", ErrSessionExists, opts.SessionID)
	}

	eng, err := engine.New(opts, engine.Deps{
		Logger:    m.deps.Logger,
		Publisher: engine.Fanout{m.hubPublisher(opts.SessionID), m.deps.Recorder},
		Metrics:   m.deps.Metrics,
		Clock:     m.deps.Clock,
	})
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.sessions[opts.SessionID] = &session{eng: eng, cancel: cancel, created: m.deps.Clock()}
	m.deps.Metrics.SessionStarted()

	// 引擎写线程
	go eng.Run(ctx)

	m.log.Info("session started", "session", opts.SessionID, "decks", opts.DeckCount, "rules", opts.Rules)
	return opts.SessionID, nil
}

// hubPublisher 引擎事件转成看板消息
func (m *Manager) hubPublisher(id string) engine.Publisher {
	if m.deps.Hub == nil {
		return nil
	}
	hub := m.deps.Hub
	return engine.PublisherFunc(func(e engine.Event) {
		hub.BroadcastToSession(id, websocket.OutgoingMessage{Event: string(e.Kind), Data: e})
	})
}

func (m *Manager) get(id string) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

func (m *Manager) Engine(id string) (*engine.Engine, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return s.eng, nil
}

// SubmitFrame 把一帧交给会话的运行循环
func (m *Manager) SubmitFrame(ctx context.Context, id string, f engine.Frame) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	return s.eng.SubmitFrame(ctx, f)
}

// Command 排队命令并等待执行结果
func (m *Manager) Command(ctx context.Context, id string, kind engine.CommandKind) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	select {
	case err := <-s.eng.Enqueue(kind):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) Status(id string) (engine.Snapshot, error) {
	s, err := m.get(id)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return s.eng.Snapshot(), nil
}

// Close 停止会话，等待运行循环退出
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.cancel()
	<-s.eng.Done()
	m.deps.Metrics.SessionEnded(id)
	m.log.Info("session closed", "session", id, "uptime", m.deps.Clock().Sub(s.created))
	return nil
}

// Sessions 按 id 排序
func (m *Manager) Sessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) Shutdown() {
	for _, id := range m.Sessions() {
		_ = m.Close(id)
	}
}

// HandleIncoming 统一入口（来自 Hub.OnIncoming，在 Hub 协程里调用，不能阻塞）
func (m *Manager) HandleIncoming(msg websocket.IncomingMessage) {
	s, err := m.get(msg.Session)
	if err != nil {
		m.reply(msg.From, "error", map[string]any{"error": err.Error()})
		return
	}

	switch msg.Event {

	case "command":
		name := commandName(msg.Data)
		kind, err := engine.ParseCommand(name)
		if err != nil {
			m.reply(msg.From, "error", map[string]any{"error": err.Error()})
			return
		}
		// 命令队列满时 Enqueue 会阻塞，放到单独的协程里
		go func() {
			res := map[string]any{"session": msg.Session, "command": name, "ok": true}
			if err := <-s.eng.Enqueue(kind); err != nil {
				res["ok"] = false
				res["error"] = err.Error()
			}
			m.reply(msg.From, "command_result", res)
		}()

	case "status":
		m.reply(msg.From, "status", s.eng.Snapshot())

	default:
		m.reply(msg.From, "error", map[string]any{"error": "unknown event " + msg.Event})
	}
}

func (m *Manager) reply(client, event string, data any) {
	if m.deps.Hub == nil || client == "" {
		return
	}
	m.deps.Hub.SendToClient(client, websocket.OutgoingMessage{Event: event, Data: data})
}

// commandName 兼容 {"command":"resetCount"} 和直接传字符串
func commandName(data any) string {
	switch v := data.(type) {
	case string:
		return v
	case map[string]any:
		s, _ := v["command"].(string)
		return s
	case map[string]string:
		return v["command"]
	}
	return ""
}
