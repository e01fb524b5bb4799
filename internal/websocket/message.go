package websocket

// OutgoingMessage 推送给看板的消息，Event 与引擎事件类型一致
type OutgoingMessage struct {
	Event   string      `json:"event"`
	Session string      `json:"session,omitempty"`
	Data    interface{} `json:"data"`
}

// IncomingMessage 看板发来的控制消息
//
//	{"event":"command","session":"...","data":{"command":"resetCount"}}
//	{"event":"status","session":"..."}
type IncomingMessage struct {
	From    string      `json:"from"`
	Event   string      `json:"event"`
	Session string      `json:"session"`
	Data    interface{} `json:"data"`
}
