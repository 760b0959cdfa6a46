package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Connection abstracts the underlying websocket connection so the pumps can
// be exercised in tests without a network peer.
type Connection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	RemoteAddr() string
	Close() error
}

// gorillaConn adapts *websocket.Conn to the Connection interface.
type gorillaConn struct {
	conn *websocket.Conn
}

// WrapConn wraps a gorilla connection.
func WrapConn(conn *websocket.Conn) Connection {
	return &gorillaConn{conn: conn}
}

func (g *gorillaConn) ReadMessage() (int, []byte, error)        { return g.conn.ReadMessage() }
func (g *gorillaConn) WriteMessage(mt int, data []byte) error   { return g.conn.WriteMessage(mt, data) }
func (g *gorillaConn) SetReadLimit(limit int64)                 { g.conn.SetReadLimit(limit) }
func (g *gorillaConn) SetReadDeadline(t time.Time) error        { return g.conn.SetReadDeadline(t) }
func (g *gorillaConn) SetWriteDeadline(t time.Time) error       { return g.conn.SetWriteDeadline(t) }
func (g *gorillaConn) SetPongHandler(h func(string) error)      { g.conn.SetPongHandler(h) }
func (g *gorillaConn) RemoteAddr() string                       { return g.conn.RemoteAddr().String() }
func (g *gorillaConn) Close() error                             { return g.conn.Close() }
