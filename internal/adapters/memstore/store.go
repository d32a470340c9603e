// Package memstore provides an in-memory implementation of the session
// store port, suitable for single-process deployments and tests.
package memstore

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
)

type session struct {
	recording bool
	createdAt time.Time
	touchedAt time.Time
	frames    []domain.EmotionVector
}

// Store keeps sessions in a mutex-guarded map. A background sweeper deletes
// sessions that have been idle past the TTL so abandoned recordings do not
// accumulate.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*session
	ttl       time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

const sweepInterval = time.Minute

// New creates a Store. A non-positive ttl defaults to one hour.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Close stops the expiry sweeper.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Store) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			expired := 0
			for id, sess := range s.sessions {
				if now.Sub(sess.touchedAt) > s.ttl {
					delete(s.sessions, id)
					expired++
				}
			}
			s.mu.Unlock()
			if expired > 0 {
				log.Printf("memstore: expired %d idle sessions", expired)
			}
		}
	}
}

// Create registers a new recording session. Re-creating an existing session
// keeps its frames; losing them here would mask a client ordering bug.
func (s *Store) Create(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[id]; ok {
		log.Printf("WARN memstore: create for existing session %s (%d frames kept)", id, len(existing.frames))
		existing.recording = true
		existing.touchedAt = time.Now()
		return nil
	}
	s.sessions[id] = newSession()
	return nil
}

// AppendFrame adds a frame to the session, auto-creating it if the client
// pushed before (or without) an explicit create.
func (s *Store) AppendFrame(ctx context.Context, id string, frame domain.EmotionVector) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		log.Printf("WARN memstore: auto-creating missing session %s on frame push", id)
		sess = newSession()
		s.sessions[id] = sess
	}
	sess.frames = append(sess.frames, frame)
	sess.touchedAt = time.Now()
	return len(sess.frames), nil
}

// Stop clears the recording flag; absent sessions are a no-op.
func (s *Store) Stop(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.recording = false
		sess.touchedAt = time.Now()
	}
	return nil
}

// Frames returns a copy of the ordered frame buffer; empty for an absent
// session, never nil.
func (s *Store) Frames(ctx context.Context, id string) ([]domain.EmotionVector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return []domain.EmotionVector{}, nil
	}
	out := make([]domain.EmotionVector, len(sess.frames))
	copy(out, sess.frames)
	return out, nil
}

// Delete removes all state for the id; absent sessions are a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Info returns session metadata, or ok=false if the session is absent.
func (s *Store) Info(ctx context.Context, id string) (domain.SessionInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domain.SessionInfo{}, false, nil
	}
	return domain.SessionInfo{
		Recording:  sess.recording,
		CreatedAt:  sess.createdAt,
		FrameCount: len(sess.frames),
	}, true, nil
}

func newSession() *session {
	now := time.Now()
	return &session{
		recording: true,
		createdAt: now,
		touchedAt: now,
		frames:    []domain.EmotionVector{},
	}
}
