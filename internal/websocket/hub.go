package websocket

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

type HubInterface interface {
	BroadcastToSession(session string, msg OutgoingMessage)
	SendToClient(id string, msg OutgoingMessage)
	Close()
}

const hubQueueSize = 256

type Hub struct {
	clients    map[string]*Client // client id -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan OutgoingMessage
	sendOne    chan sendReq
	incoming   chan IncomingMessage
	OnIncoming func(IncomingMessage)
	quit       chan struct{}
	closeOnce  sync.Once
	stopped    chan struct{}
	log        *log.Logger
}

type sendReq struct {
	ID      string
	Message OutgoingMessage
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan OutgoingMessage, hubQueueSize),
		sendOne:    make(chan sendReq, hubQueueSize),
		incoming:   make(chan IncomingMessage, hubQueueSize),
		quit:       make(chan struct{}),
		stopped:    make(chan struct{}),
		log:        logger.With("component", "hub"),
	}
}

func (h *Hub) Run() {
	h.log.Info("Hub started")
	defer close(h.stopped)

	for {
		select {
		case c := <-h.register:
			h.clients[c.ID] = c
			h.log.Info("client registered", "id", c.ID, "session", c.Session, "clients", len(h.clients))

		case c := <-h.unregister:
			if cur, ok := h.clients[c.ID]; ok && cur == c {
				delete(h.clients, c.ID)
				close(c.Send)
				h.log.Info("client unregistered", "id", c.ID, "clients", len(h.clients))
			}

		case msg := <-h.broadcast:
			for _, c := range h.clients {
				if c.Session != "" && c.Session != msg.Session {
					continue
				}
				h.deliver(c, msg)
			}

		case req := <-h.sendOne:
			if c, ok := h.clients[req.ID]; ok {
				h.deliver(c, req.Message)
			}

		case req := <-h.incoming:
			// 看板消息统一转发给会话管理层
			if h.OnIncoming != nil {
				h.OnIncoming(req)
			}

		case <-h.quit:
			for id, c := range h.clients {
				close(c.Send)
				delete(h.clients, id)
			}
			h.log.Info("Hub stopped")
			return
		}
	}
}

// deliver 慢客户端直接丢消息，不拖住 Hub
func (h *Hub) deliver(c *Client, msg OutgoingMessage) {
	select {
	case c.Send <- msg:
	default:
		h.log.Warn("client too slow, message dropped", "id", c.ID, "event", msg.Event)
	}
}

// BroadcastToSession 推给订阅该会话的客户端（未指定会话的客户端收全部）
//
// 从引擎写线程调用，队列满时丢弃
func (h *Hub) BroadcastToSession(session string, msg OutgoingMessage) {
	msg.Session = session
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("broadcast queue full, message dropped", "session", session, "event", msg.Event)
	}
}

// SendToClient 单发
func (h *Hub) SendToClient(id string, msg OutgoingMessage) {
	select {
	case h.sendOne <- sendReq{ID: id, Message: msg}:
	default:
		h.log.Warn("send queue full, message dropped", "id", id, "event", msg.Event)
	}
}

// Register 接入一个客户端，Hub 已停止时返回 false
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// Close 可以并发、重复调用
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}

// Done Run 退出后关闭
func (h *Hub) Done() <-chan struct{} { return h.stopped }
