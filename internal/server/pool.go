package server

import (
	"errors"
	"log/slog"
	"net"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

// ErrPoolClosed is returned by Submit once Close has been called.
var ErrPoolClosed = errors.New("pool closed")

// PoolStats is a point-in-time snapshot of a Pool.
type PoolStats struct {
	Workers int
	Busy    int64
	Queued  int
	Handled int64
	Panics  int64
}

type job struct {
	conn net.Conn
	log  *slog.Logger
}

// Pool runs a Handler for each submitted connection on a fixed number of
// worker goroutines. Connections submitted while every worker is busy wait in
// an unbounded FIFO; Submit never blocks and never rejects an open pool.
type Pool struct {
	handler Handler
	log     *slog.Logger
	workers int

	mu      sync.Mutex
	cond    *sync.Cond
	pending *queue.Queue
	active  map[net.Conn]struct{}
	closed  bool

	wg sync.WaitGroup

	busy    atomic.Int64
	handled atomic.Int64
	panics  atomic.Int64
}

// NewPool starts workers goroutines. If workers <= 0 it defaults to
// runtime.NumCPU().
func NewPool(workers int, h Handler, log *slog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = slog.Default()
	}
	p := &Pool{
		handler: h,
		log:     log,
		workers: workers,
		pending: queue.New(),
		active:  make(map[net.Conn]struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	for i := range workers {
		p.wg.Go(func() {
			p.work(i)
		})
	}
	return p
}

// Submit queues conn for handling. The pool owns conn from here on and closes
// it once the handler returns.
func (p *Pool) Submit(conn net.Conn, log *slog.Logger) error {
	if log == nil {
		log = p.log
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.pending.Add(job{conn: conn, log: log})
	p.cond.Signal()
	return nil
}

// Stats returns current pool counters.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	queued := p.pending.Length()
	p.mu.Unlock()
	return PoolStats{
		Workers: p.workers,
		Busy:    p.busy.Load(),
		Queued:  queued,
		Handled: p.handled.Load(),
		Panics:  p.panics.Load(),
	}
}

// Close stops the workers. Queued connections are closed without being
// handled, running handlers have their connections closed to unblock them,
// and Close waits for every worker to return.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for p.pending.Length() > 0 {
		j := p.pending.Remove().(job)
		j.conn.Close()
	}
	for conn := range p.active {
		conn.Close()
	}
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) next() (job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.pending.Length() == 0 && !p.closed {
		p.cond.Wait()
	}
	if p.closed {
		return job{}, false
	}
	j := p.pending.Remove().(job)
	p.active[j.conn] = struct{}{}
	return j, true
}

func (p *Pool) work(id int) {
	p.log.Debug("worker started", "worker", id)
	for {
		j, ok := p.next()
		if !ok {
			p.log.Debug("worker stopped", "worker", id)
			return
		}
		p.run(j)
	}
}

// run invokes the handler once, recovering from a panic so that neither the
// worker nor its siblings go down with the connection.
func (p *Pool) run(j job) {
	p.busy.Add(1)
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			j.log.Error("handler panicked", "panic", r)
		}
		j.conn.Close()
		p.mu.Lock()
		delete(p.active, j.conn)
		p.mu.Unlock()
		p.busy.Add(-1)
		p.handled.Add(1)
		j.log.Debug("connection closed")
	}()
	p.handler(j.conn, j.log)
}
