package scheduler

import (
	"container/heap"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tailored-agentic-units/store/task"
)

type job struct {
	priority task.Priority
	seq      uint64
	fn       func()
}

// jobQueue orders jobs by descending priority, then by submission order.
type jobQueue []job

func (q jobQueue) Len() int { return len(q) }

func (q jobQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q jobQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *jobQueue) Push(x any) { *q = append(*q, x.(job)) }

func (q *jobQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = job{}
	*q = old[:n-1]
	return item
}

// Pool starts scheduled functions from a priority queue on a fixed set of
// workers, highest priority first.
//
// A worker waits up to the handoff period for the function it started. If the
// function is still running after that, it keeps running on its own goroutine
// and the worker moves on to the next queued function. Short work is therefore
// bounded by the worker count, while long-running work never holds a worker
// and cannot starve the functions queued behind it.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  jobQueue
	seq    uint64
	closed bool

	workers   int
	handoff   time.Duration
	handedOff atomic.Int64
	wg        sync.WaitGroup
}

// NewPool starts a pool sized by cfg.
func NewPool(cfg Config) *Pool {
	handoff := cfg.Handoff
	if handoff <= 0 {
		handoff = DefaultHandoff
	}

	p := &Pool{
		workers: workerCount(cfg.MaxWorkers, cfg.WorkerCap),
		handoff: handoff,
	}
	p.cond = sync.NewCond(&p.mu)

	for range p.workers {
		p.wg.Add(1)
		go p.work()
	}
	return p
}

// workerCount returns maxWorkers when set, otherwise min(NumCPU*2, workerCap),
// and never less than one.
func workerCount(maxWorkers, workerCap int) int {
	if maxWorkers > 0 {
		return maxWorkers
	}

	workers := runtime.NumCPU() * 2
	if workerCap > 0 {
		workers = min(workers, workerCap)
	}

	if workers <= 0 {
		workers = 1
	}
	return workers
}

// Workers reports the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// HandedOff reports how many functions outlived the handoff period and were
// left running without a worker.
func (p *Pool) HandedOff() int64 {
	return p.handedOff.Load()
}

// Pending reports the number of queued functions not yet picked by a worker.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}

func (p *Pool) Schedule(priority task.Priority, fn func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		go fn()
		return
	}
	p.seq++
	heap.Push(&p.queue, job{priority: priority, seq: p.seq, fn: fn})
	p.mu.Unlock()

	p.cond.Signal()
}

// Close stops the workers once every queued function has started and waits
// for them. Functions that were handed off may still be running.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for p.queue.Len() == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.queue.Len() == 0 {
			p.mu.Unlock()
			return
		}
		next := heap.Pop(&p.queue).(job)
		p.mu.Unlock()

		p.start(next)
	}
}

// start runs j and returns when it finishes or the handoff period elapses,
// whichever comes first.
func (p *Pool) start(j job) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		run(j)
	}()

	timer := time.NewTimer(p.handoff)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		p.handedOff.Add(1)
	}
}

func run(j job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Default().Error(
				"scheduled function panicked",
				slog.String("priority", j.priority.String()),
				slog.Any("panic", r),
			)
		}
	}()
	j.fn()
}
