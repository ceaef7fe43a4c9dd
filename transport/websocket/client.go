package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 16
	maxMessageSize = 4096
)

type gameKey struct {
	sessionID string
	gameID    string
}

// client owns the write side of one connection. Only writePump writes to conn.
type client struct {
	conn *websocket.Conn
	key  gameKey
	send chan Message
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn, key gameKey) *client {
	return &client{
		conn: conn,
		key:  key,
		send: make(chan Message, sendBufferSize),
		done: make(chan struct{}),
	}
}

// enqueue reports false when the client is closed or its buffer is full.
func (that *client) enqueue(msg Message) bool {
	select {
	case <-that.done:
		return false
	default:
	}

	select {
	case that.send <- msg:
		return true
	default:
		return false
	}
}

func (that *client) close() {
	that.once.Do(func() { close(that.done) })
}

func (that *client) writePump() error {
	for {
		select {
		case <-that.done:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = that.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

			// Unblocks the read loop of a peer that never answers the close frame.
			return that.conn.Close()
		case msg := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteJSON(msg); err != nil {
				that.close()
				return err
			}
		}
	}
}
