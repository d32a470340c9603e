// Package worker provides background processing for expression-analysis
// jobs: images captured during a session are classified off the request path
// and their distributions appended to the session's frame buffer.
package worker

import (
	"context"
	"log"
	"sync"

	"github.com/moodfuse-labs/moodfuse/internal/core/ports"
)

// Job is one captured image waiting for classification.
type Job struct {
	SessionID string
	Image     []byte
}

// Pool manages background workers for analysis jobs.
type Pool struct {
	sessions ports.SessionStore
	engine   ports.ExpressionClassifier
	jobs     chan Job
	wg       sync.WaitGroup
}

// NewPool creates a worker pool with the given queue size.
func NewPool(sessions ports.SessionStore, engine ports.ExpressionClassifier, queueSize int) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{sessions: sessions, engine: engine, jobs: make(chan Job, queueSize)}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues a job without blocking. A full queue drops the frame; one
// lost sample out of a session's stream is acceptable, a stalled request
// path is not.
func (p *Pool) Submit(job Job) {
	select {
	case p.jobs <- job:
	default:
		log.Printf("WARN worker: queue full, dropping frame for session %s", job.SessionID)
	}
}

func (p *Pool) processJob(job Job) {
	if len(job.Image) == 0 {
		log.Printf("WARN worker: empty image for session %s, skipping", job.SessionID)
		return
	}

	result, err := p.engine.Classify(context.Background(), job.Image)
	if err != nil {
		log.Printf("WARN worker: classify failed for session %s: %v", job.SessionID, err)
		return
	}

	count, err := p.sessions.AppendFrame(context.Background(), job.SessionID, result.Probs)
	if err != nil {
		log.Printf("WARN worker: failed to append frame for session %s: %v", job.SessionID, err)
		return
	}
	log.Printf("worker: session=%s frame=%d label=%s", job.SessionID, count, result.Label)
}
