package internal

import (
	"net"
	"sync"
)

// connQueue is a net.Listener fed by the accept loop. It lets a shared
// http.Server serve connections that were accepted (and TLS-terminated)
// elsewhere.
type connQueue struct {
	addr net.Addr
	ch   chan net.Conn
	done chan struct{}
	once sync.Once
}

func newConnQueue(addr net.Addr) *connQueue {
	return &connQueue{
		addr: addr,
		ch:   make(chan net.Conn),
		done: make(chan struct{}),
	}
}

// push hands a connection to the serving side. It reports false once the
// queue is closed; the caller keeps ownership of conn in that case.
func (q *connQueue) push(conn net.Conn) bool {
	select {
	case q.ch <- conn:
		return true
	case <-q.done:
		return false
	}
}

// Accept implements net.Listener.
func (q *connQueue) Accept() (net.Conn, error) {
	select {
	case conn := <-q.ch:
		return conn, nil
	case <-q.done:
		return nil, net.ErrClosed
	}
}

// Close implements net.Listener. Safe to call more than once.
func (q *connQueue) Close() error {
	q.once.Do(func() { close(q.done) })
	return nil
}

// Addr implements net.Listener.
func (q *connQueue) Addr() net.Addr {
	return q.addr
}
