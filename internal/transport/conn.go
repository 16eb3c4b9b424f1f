package transport

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ohadf2015/boggle-new-sub010/internal/util"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	outboxCapacity = 256
)

type outFrame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Conn wraps one websocket connection. Writes go through a buffered outbox
// drained by WritePump, so a slow client never stalls a room's event
// processing; the room layer talks to it only through Send.
type Conn struct {
	ID     string
	Origin string

	socket    *websocket.Conn
	outbox    chan outFrame
	done      chan struct{}
	closeOnce sync.Once
}

func NewConn(socket *websocket.Conn, origin string) *Conn {
	c := &Conn{
		ID:     uuid.NewString(),
		Origin: origin,
		socket: socket,
		outbox: make(chan outFrame, outboxCapacity),
		done:   make(chan struct{}),
	}
	socket.SetReadDeadline(time.Now().Add(pongWait))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(pongWait))
	})
	return c
}

// Send queues one event frame. It never blocks; when the outbox is full the
// frame is dropped and the write pump will shortly tear the connection down
// anyway.
func (c *Conn) Send(event string, payload any) {
	select {
	case <-c.done:
	case c.outbox <- outFrame{Type: event, Data: payload}:
	default:
		util.LogWarn("Dropping %s frame for connection %s: outbox full", event, c.ID)
	}
}

// ReadLoop pulls frames until the socket errors, handing each raw message to
// the dispatcher. It runs on the connection's own goroutine.
func (c *Conn) ReadLoop(handle func(raw []byte)) {
	defer c.Close()
	for {
		_, raw, err := c.socket.ReadMessage()
		if err != nil {
			return
		}
		handle(raw)
	}
}

// WritePump drains the outbox and keeps the connection alive with pings.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.outbox:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(frame)
			if err != nil {
				util.LogWarn("Failed to marshal %s frame: %v", frame.Type, err)
				continue
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.socket.SetWriteDeadline(time.Now().Add(time.Second))
		c.socket.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.socket.Close()
	})
}

// Done is closed once the connection is torn down.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}
