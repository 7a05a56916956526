package internal

import (
	"net"
	"sync"
)

// trackedConn reports its own close exactly once, whichever layer
// (tls.Conn, http.Server, http2) ends up closing it.
type trackedConn struct {
	net.Conn
	once    sync.Once
	onClose func(*trackedConn)
}

func (c *trackedConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(func() { c.onClose(c) })
	return err
}
