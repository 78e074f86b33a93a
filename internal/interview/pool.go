package interview

import (
	"sync"

	"go.uber.org/zap"
)

// Pool is a bounded worker pool. All blocking calls to external generation,
// synthesis and transcription services issued by the pipeline run on it, so
// session-facing operations never wait on a slow collaborator directly.
type Pool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

func NewPool(workers, backlog int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if backlog <= 0 {
		backlog = workers * 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		tasks:  make(chan func(), backlog),
		logger: logger,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit schedules the task without blocking. It reports false when the pool
// is closed or its backlog is full; the caller decides whether that matters.
func (p *Pool) Submit(task func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}

	select {
	case p.tasks <- task:
		return true
	default:
		p.logger.Warn("worker pool backlog full, task dropped")
		return false
	}
}

// Close stops accepting tasks and waits for in-flight ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}
