package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxReadBytes = 512
	outboxSize   = 256
)

// Peer is one open stream socket of a workspace. The hub owns its outbox
// and closes it on unregister.
type Peer struct {
	hub         *Hub
	conn        *websocket.Conn
	workspaceID uuid.UUID
	outbox      chan []byte
}

// Serve attaches conn to the hub under workspaceID and blocks until the
// socket closes.
func Serve(hub *Hub, conn *websocket.Conn, workspaceID uuid.UUID) {
	p := &Peer{hub: hub, conn: conn, workspaceID: workspaceID, outbox: make(chan []byte, outboxSize)}
	if !hub.attach(p) {
		conn.Close()
		return
	}
	go p.writeLoop()
	p.readLoop()
}

// readLoop keeps the read deadline moving; stream sockets are one-way, so
// anything the browser sends is discarded.
func (p *Peer) readLoop() {
	defer func() {
		p.hub.detach(p)
		p.conn.Close()
	}()
	p.conn.SetReadLimit(maxReadBytes)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := p.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			p.hub.logger.Warn("Peer", "Unexpected close", map[string]interface{}{
				"workspace_id": p.workspaceID,
				"error":        err.Error(),
			})
		}
		return
	}
}

// writeLoop sends each queued event as its own text frame.
func (p *Peer) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case msg, open := <-p.outbox:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				p.hub.logger.Debug("Peer", "Ping failed", map[string]interface{}{"workspace_id": p.workspaceID})
				return
			}
		}
	}
}
