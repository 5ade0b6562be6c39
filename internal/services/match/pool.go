package match

import (
	"log/slog"
	"sync"
)

// Pool is a fixed set of workers that run match engines. Sized to the
// maximum number of simultaneous matches, so a started engine never waits
// for a worker. Workers are reused across matches.
type Pool struct {
	jobs   chan *Engine
	logger *slog.Logger

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewPool starts a pool with the given number of workers
func NewPool(size int, logger *slog.Logger) *Pool {
	if size < 1 {
		size = 1
	}

	p := &Pool{
		jobs:   make(chan *Engine, size),
		logger: logger,
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker(i)
	}

	return p
}

// Start hands an engine to a worker
func (p *Pool) Start(engine *Engine) {
	p.jobs <- engine
}

// Close stops accepting engines and waits for running matches to finish
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for engine := range p.jobs {
		p.logger.Debug("worker picked up match",
			slog.Int("worker", id),
			slog.Int("slot", int(engine.Slot())),
		)
		engine.Run()
	}
}
