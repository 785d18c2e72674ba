package multiplayer

import (
	"net"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/snakenet/internal/wire"
)

// frameConn is one framed connection, stream or message based.
// ReadMessage is only called from one goroutine and WriteMessage only from
// another.
type frameConn interface {
	ReadMessage() (wire.Message, error)
	WriteMessage(msg wire.Message) error
	RemoteAddr() string
	Close() error
}

// streamConn frames messages over a byte stream such as TCP.
type streamConn struct {
	conn net.Conn
	r    *wire.Reader
}

func newStreamConn(conn net.Conn, maxFrame int) *streamConn {
	return &streamConn{conn: conn, r: wire.NewReader(conn, maxFrame)}
}

func (c *streamConn) ReadMessage() (wire.Message, error) { return c.r.ReadMessage() }

func (c *streamConn) WriteMessage(msg wire.Message) error { return wire.Write(c.conn, msg) }

func (c *streamConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

func (c *streamConn) Close() error { return c.conn.Close() }

// wsConn carries exactly one frame per binary WebSocket message.
type wsConn struct {
	ws       *websocket.Conn
	maxFrame int
}

func newWSConn(ws *websocket.Conn, maxFrame int) *wsConn {
	if maxFrame <= 0 {
		maxFrame = wire.DefaultMaxFrame
	}
	ws.SetReadLimit(int64(maxFrame) + 4)
	return &wsConn{ws: ws, maxFrame: maxFrame}
}

func (c *wsConn) ReadMessage() (wire.Message, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	return wire.DecodeFrame(data, c.maxFrame)
}

func (c *wsConn) WriteMessage(msg wire.Message) error {
	frame, err := wire.Encode(msg)
	if err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.BinaryMessage, frame)
}

func (c *wsConn) RemoteAddr() string { return c.ws.RemoteAddr().String() }

func (c *wsConn) Close() error { return c.ws.Close() }

// connPeer is a Peer over a frameConn. Send only queues; a write pump owns
// the connection's write side so a slow reader never blocks the tick.
type connPeer struct {
	id   string
	conn frameConn
	box  *mailbox[wire.Message]

	mu  sync.Mutex
	err error // first write failure
}

func newConnPeer(id string, conn frameConn, queue int) *connPeer {
	return &connPeer{id: id, conn: conn, box: newMailbox[wire.Message](queue)}
}

func (p *connPeer) ID() string { return p.id }

func (p *connPeer) Send(msg wire.Message) error {
	if !p.box.push(msg) {
		if err := p.Err(); err != nil {
			return err
		}
		return ErrPeerClosed
	}
	return nil
}

func (p *connPeer) Done() <-chan struct{} { return p.box.done }

// Close ends the write pump and closes the connection, which also unblocks
// the connection's receive loop.
func (p *connPeer) Close() error {
	p.box.close()
	return p.conn.Close()
}

// Err returns the write failure that ended the peer, if any.
func (p *connPeer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// writePump runs on its own goroutine until the peer closes or a write fails.
func (p *connPeer) writePump() {
	for {
		select {
		case msg := <-p.box.items:
			if err := p.conn.WriteMessage(msg); err != nil {
				p.mu.Lock()
				if p.err == nil {
					p.err = &TransportError{Op: "write", Peer: p.id, Err: err}
				}
				p.mu.Unlock()
				_ = p.Close()
				return
			}
		case <-p.box.done:
			return
		}
	}
}
