package websocket

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(hub *Hub, id, session string, buf int) *Client {
	return &Client{ID: id, Session: session, Send: make(chan OutgoingMessage, buf), Hub: hub}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Close()

	c1 := newClient(hub, "a", "s1", 1)
	c2 := newClient(hub, "b", "s2", 1)
	all := newClient(hub, "c", "", 1)
	hub.register <- c1
	hub.register <- c2
	hub.register <- all

	hub.BroadcastToSession("s1", OutgoingMessage{Event: "decision", Data: map[string]interface{}{"action": "HIT"}})

	m1 := <-c1.Send
	assert.Equal(t, "decision", m1.Event)
	assert.Equal(t, "s1", m1.Session)
	assert.Equal(t, "decision", (<-all.Send).Event)

	time.Sleep(10 * time.Millisecond)
	select {
	case <-c2.Send:
		assert.Fail(t, "s2 subscriber should NOT receive s1 events")
	default:
	}
}

func TestHubSendToClient(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Close()

	c1 := newClient(hub, "a", "", 1)
	c2 := newClient(hub, "b", "", 1)
	hub.register <- c1
	hub.register <- c2

	hub.SendToClient("a", OutgoingMessage{Event: "status", Data: "hello A"})

	received := <-c1.Send
	assert.Equal(t, "status", received.Event)
	assert.Equal(t, "hello A", received.Data)

	time.Sleep(10 * time.Millisecond)
	select {
	case <-c2.Send:
		assert.Fail(t, "B should NOT receive anything")
	default:
	}
}

// 慢客户端的缓冲满了以后丢消息，Hub 不阻塞
func TestHubDropsForSlowClient(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Close()

	slow := newClient(hub, "slow", "", 1)
	fast := newClient(hub, "fast", "", 16)
	hub.register <- slow
	hub.register <- fast

	for i := 0; i < 5; i++ {
		hub.BroadcastToSession("s", OutgoingMessage{Event: "shuffle"})
	}
	for i := 0; i < 5; i++ {
		select {
		case <-fast.Send:
		case <-time.After(time.Second):
			t.Fatalf("fast client missed message %d", i)
		}
	}
	assert.Len(t, slow.Send, 1)
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Close()

	c := newClient(hub, "a", "", 1)
	require.True(t, hub.Register(c))
	hub.Unregister(c)

	// Send 被关闭说明已经注销
	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatalf("client should be removed after unregister")
	}
}

func TestHubClose(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	c := newClient(hub, "a", "", 1)
	require.True(t, hub.Register(c))
	hub.Close()
	hub.Close()
	<-hub.Done()

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.False(t, hub.Register(newClient(hub, "b", "", 1)))
}

// ✅ 多个协程同时关闭不会 panic
func TestHubConcurrentClose(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Close()
		}()
	}
	wg.Wait()

	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatalf("hub did not stop")
	}
}

func TestServeWSRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)
	incoming := make(chan IncomingMessage, 1)
	hub.OnIncoming = func(m IncomingMessage) { incoming <- m }
	go hub.Run()
	defer hub.Close()

	r := gin.New()
	r.GET("/ws", ServeWS(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session=s1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(IncomingMessage{Event: "command", Data: map[string]string{"command": "resetCount"}}))
	var in IncomingMessage
	select {
	case in = <-incoming:
	case <-time.After(2 * time.Second):
		t.Fatalf("incoming message not forwarded")
	}
	assert.Equal(t, "command", in.Event)
	assert.Equal(t, "s1", in.Session, "defaults to the subscribed session")
	assert.NotEmpty(t, in.From)

	hub.BroadcastToSession("s1", OutgoingMessage{Event: "high_count", Data: 3.5})
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var out OutgoingMessage
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "high_count", out.Event)
	assert.Equal(t, "s1", out.Session)
	assert.Equal(t, 3.5, out.Data)
}

func BenchmarkHubBroadcast(b *testing.B) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Close()

	c1 := newClient(hub, "a", "", 1024)
	c2 := newClient(hub, "b", "", 1024)
	// 所有 Send 都需要有人接收，否则消息会被丢弃
	go func() {
		for range c1.Send {
		}
	}()
	go func() {
		for range c2.Send {
		}
	}()
	hub.register <- c1
	hub.register <- c2

	b.ResetTimer()
	msg := OutgoingMessage{Event: "bench", Data: nil}
	for i := 0; i < b.N; i++ {
		hub.BroadcastToSession("s", msg)
	}
}
