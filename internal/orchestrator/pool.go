package orchestrator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ShayCichocki/mastercoder/internal/agent"
)

// ErrWorkerNotFound is returned by Take when no worker matches the spec ID.
var ErrWorkerNotFound = errors.New("worker not found")

// WorkerPool holds the workers available to a run. Each worker is handed
// out at most once.
type WorkerPool struct {
	mu      sync.Mutex
	workers []agent.Worker
}

// NewWorkerPool creates a pool holding workers.
func NewWorkerPool(workers ...agent.Worker) *WorkerPool {
	p := &WorkerPool{}
	for _, w := range workers {
		p.Add(w)
	}
	return p
}

// Add puts w into the pool.
func (p *WorkerPool) Add(w agent.Worker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.workers = append(p.workers, w)
}

// Take removes and returns the first worker whose ID is id.
func (p *WorkerPool) Take(id string) (agent.Worker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, w := range p.workers {
		if w.ID() == id {
			p.workers = append(p.workers[:i], p.workers[i+1:]...)
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrWorkerNotFound, id)
}

// Len returns the number of workers still in the pool.
func (p *WorkerPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// IDs returns the IDs of the workers still in the pool.
func (p *WorkerPool) IDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]string, len(p.workers))
	for i, w := range p.workers {
		ids[i] = w.ID()
	}
	return ids
}
