package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
)

type stubStore struct {
	mu     sync.Mutex
	frames map[string][]domain.EmotionVector
}

func (s *stubStore) Create(ctx context.Context, id string) error { return nil }

func (s *stubStore) AppendFrame(ctx context.Context, id string, frame domain.EmotionVector) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[id] = append(s.frames[id], frame)
	return len(s.frames[id]), nil
}

func (s *stubStore) Stop(ctx context.Context, id string) error { return nil }

func (s *stubStore) Frames(ctx context.Context, id string) ([]domain.EmotionVector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames[id], nil
}

func (s *stubStore) Delete(ctx context.Context, id string) error { return nil }

func (s *stubStore) Info(ctx context.Context, id string) (domain.SessionInfo, bool, error) {
	return domain.SessionInfo{}, false, nil
}

type stubEngine struct {
	err error
}

func (e *stubEngine) Classify(ctx context.Context, image []byte) (domain.Classification, error) {
	if e.err != nil {
		return domain.Classification{}, e.err
	}
	return domain.Classification{
		Label: "neutral",
		Score: 0.8,
		Probs: domain.EmotionVector{0.05, 0.05, 0.8, 0.05, 0.05},
	}, nil
}

func (e *stubEngine) Healthy(ctx context.Context) bool { return true }

func TestPool_ProcessesJobs(t *testing.T) {
	store := &stubStore{frames: map[string][]domain.EmotionVector{}}
	pool := NewPool(store, &stubEngine{}, 10)
	pool.Start(2)

	for i := 0; i < 5; i++ {
		pool.Submit(Job{SessionID: "s1", Image: []byte("jpeg")})
	}
	pool.Stop()

	frames, _ := store.Frames(context.Background(), "s1")
	if len(frames) != 5 {
		t.Fatalf("expected 5 frames appended, got %d", len(frames))
	}
	want := domain.EmotionVector{0.05, 0.05, 0.8, 0.05, 0.05}
	for i, f := range frames {
		if f != want {
			t.Fatalf("frame %d mismatch: %v", i, f)
		}
	}
}

func TestPool_SkipsFailedClassifications(t *testing.T) {
	store := &stubStore{frames: map[string][]domain.EmotionVector{}}
	pool := NewPool(store, &stubEngine{err: errors.New("engine down")}, 10)
	pool.Start(1)

	pool.Submit(Job{SessionID: "s1", Image: []byte("jpeg")})
	pool.Submit(Job{SessionID: "s1", Image: nil})
	pool.Stop()

	frames, _ := store.Frames(context.Background(), "s1")
	if len(frames) != 0 {
		t.Fatalf("expected no frames on failure, got %d", len(frames))
	}
}
