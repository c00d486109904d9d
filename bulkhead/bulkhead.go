package bulkhead

import (
	"context"
	"sync"
)

// PoolConfig declares one named pool.
type PoolConfig struct {
	// Name identifies the pool (e.g. "critical", "normal", "background").
	Name string

	// MaxConcurrency is the maximum number of tasks executing at once.
	// Default: 10
	MaxConcurrency int

	// QueueCapacity bounds the pending queue. Zero means unbounded.
	// When the bound is reached Submit fails with ErrOverloaded.
	QueueCapacity int
}

// Set is a registry of named bulkhead pools. Pools are declared at
// construction and are not resized at runtime.
type Set struct {
	pools map[string]*pool
}

type pool struct {
	config PoolConfig

	mu        sync.Mutex
	active    int
	queue     []*Task
	completed int64
	failed    int64
	cancelled int64
	rejected  int64
}

// New creates a pool set from the given declarations.
func New(configs ...PoolConfig) *Set {
	s := &Set{pools: make(map[string]*pool, len(configs))}
	for _, c := range configs {
		if c.Name == "" {
			continue
		}
		if c.MaxConcurrency <= 0 {
			c.MaxConcurrency = 10
		}
		if c.QueueCapacity < 0 {
			c.QueueCapacity = 0
		}
		s.pools[c.Name] = &pool{config: c}
	}
	return s
}

// Task is the future for a submitted unit of work.
type Task struct {
	ctx  context.Context
	work func(context.Context) error

	done chan struct{}
	err  error
}

// Done returns a channel closed when the task has finished, failed, or
// been cancelled before starting.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the task's outcome. It must only be read after Done is
// closed; nil means the work completed successfully.
func (t *Task) Err() error {
	return t.err
}

// Wait blocks until the task resolves or ctx is done. Waiting with the
// submission context resolves promptly when the caller cancels a task
// that is still queued.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit enqueues work for execution under the named pool's concurrency
// cap. If a slot is free the work starts immediately on its own
// goroutine; otherwise it waits in FIFO order. The returned Task
// resolves with the work's error, or with ctx's error if the caller
// cancels before the work starts. Running work is never interrupted.
func (s *Set) Submit(ctx context.Context, name string, work func(context.Context) error) (*Task, error) {
	p, ok := s.pools[name]
	if !ok {
		return nil, ErrPoolNotFound
	}
	if ctx == nil {
		ctx = context.Background()
	}

	t := &Task{ctx: ctx, work: work, done: make(chan struct{})}

	p.mu.Lock()
	if p.active < p.config.MaxConcurrency {
		p.active++
		p.mu.Unlock()
		go p.run(t)
		return t, nil
	}
	if p.config.QueueCapacity > 0 && len(p.queue) >= p.config.QueueCapacity {
		p.rejected++
		p.mu.Unlock()
		return nil, ErrOverloaded
	}
	p.queue = append(p.queue, t)
	p.mu.Unlock()
	go p.watch(t)
	return t, nil
}

// watch resolves t as cancelled the moment its submission context is
// done, freeing its queue slot instead of waiting for the task to reach
// the queue head. Queue membership under the pool lock decides which
// path resolves the task, so it is closed exactly once.
func (p *pool) watch(t *Task) {
	select {
	case <-t.done:
		return
	case <-t.ctx.Done():
	}

	p.mu.Lock()
	for i, q := range p.queue {
		if q != t {
			continue
		}
		p.queue = append(p.queue[:i], p.queue[i+1:]...)
		p.cancelled++
		p.mu.Unlock()
		t.err = t.ctx.Err()
		close(t.done)
		return
	}
	p.mu.Unlock()
}

// Execute submits work and waits for it to finish. It is the
// synchronous form of Submit.
func (s *Set) Execute(ctx context.Context, name string, work func(context.Context) error) error {
	t, err := s.Submit(ctx, name, work)
	if err != nil {
		return err
	}
	return t.Wait(ctx)
}

// run executes t and then hands the slot to the next queued task. The
// handoff happens under the pool lock before the slot is ever observed
// free, so active never exceeds MaxConcurrency and queued tasks start
// in submission order.
func (p *pool) run(t *Task) {
	t.err = t.work(t.ctx)

	p.mu.Lock()
	if t.err != nil {
		p.failed++
	} else {
		p.completed++
	}
	next := p.dequeueLocked()
	if next == nil {
		p.active--
	}
	p.mu.Unlock()

	// Resolve the task only after the slot bookkeeping: a waiter that
	// observes Done must also observe the slot released or handed off.
	close(t.done)
	if next != nil {
		go p.run(next)
	}
}

// dequeueLocked pops the next runnable task, resolving any tasks whose
// submission context was cancelled while they waited.
func (p *pool) dequeueLocked() *Task {
	for len(p.queue) > 0 {
		t := p.queue[0]
		p.queue = p.queue[1:]
		select {
		case <-t.ctx.Done():
			t.err = t.ctx.Err()
			close(t.done)
			p.cancelled++
		default:
			return t
		}
	}
	return nil
}

// Stats contains a point-in-time view of one pool.
type Stats struct {
	Active    int
	Queued    int
	Completed int64
	Failed    int64
	Cancelled int64
	Rejected  int64
}

// Stats returns statistics for the named pool.
func (s *Set) Stats(name string) (Stats, error) {
	p, ok := s.pools[name]
	if !ok {
		return Stats{}, ErrPoolNotFound
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Active:    p.active,
		Queued:    len(p.queue),
		Completed: p.completed,
		Failed:    p.failed,
		Cancelled: p.cancelled,
		Rejected:  p.rejected,
	}, nil
}

// Snapshot returns statistics for every pool in the set.
func (s *Set) Snapshot() map[string]Stats {
	snap := make(map[string]Stats, len(s.pools))
	for name := range s.pools {
		st, _ := s.Stats(name)
		snap[name] = st
	}
	return snap
}

// Pools returns the declared pool names.
func (s *Set) Pools() []string {
	names := make([]string, 0, len(s.pools))
	for name := range s.pools {
		names = append(names, name)
	}
	return names
}
