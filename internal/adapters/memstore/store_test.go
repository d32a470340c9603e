package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
)

func TestStore_Lifecycle(t *testing.T) {
	s := New(time.Hour)
	defer s.Close()
	ctx := context.Background()

	if err := s.Create(ctx, "s1"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	info, ok, err := s.Info(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("expected session info, got ok=%v err=%v", ok, err)
	}
	if !info.Recording || info.FrameCount != 0 {
		t.Fatalf("unexpected fresh session info: %+v", info)
	}

	frames := []domain.EmotionVector{
		{0.1, 0.1, 0.6, 0.1, 0.1},
		{0.2, 0.1, 0.5, 0.1, 0.1},
	}
	for i, f := range frames {
		count, err := s.AppendFrame(ctx, "s1", f)
		if err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
		if count != i+1 {
			t.Fatalf("expected count %d, got %d", i+1, count)
		}
	}

	got, err := s.Frames(ctx, "s1")
	if err != nil {
		t.Fatalf("frames failed: %v", err)
	}
	if len(got) != 2 || got[0] != frames[0] || got[1] != frames[1] {
		t.Fatalf("frame buffer mismatch: %v", got)
	}

	if err := s.Stop(ctx, "s1"); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	info, _, _ = s.Info(ctx, "s1")
	if info.Recording {
		t.Fatalf("expected recording=false after stop")
	}
	if info.FrameCount != 2 {
		t.Fatalf("stop must not touch frames, got count %d", info.FrameCount)
	}

	if err := s.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, _ := s.Info(ctx, "s1"); ok {
		t.Fatalf("expected session gone after delete")
	}
}

// TestStore_AutoCreateOnPush covers the leniency policy: pushing to an
// unknown session id creates it in recording state instead of failing.
func TestStore_AutoCreateOnPush(t *testing.T) {
	s := New(time.Hour)
	defer s.Close()
	ctx := context.Background()

	count, err := s.AppendFrame(ctx, "ghost", domain.EmotionVector{0, 0, 1, 0, 0})
	if err != nil {
		t.Fatalf("push to missing session must succeed, got %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	info, ok, err := s.Info(ctx, "ghost")
	if err != nil || !ok {
		t.Fatalf("expected recovered session, got ok=%v err=%v", ok, err)
	}
	if !info.Recording || info.FrameCount != 1 {
		t.Fatalf("unexpected recovered session info: %+v", info)
	}
}

// TestStore_RecreateKeepsFrames ensures a duplicate create never drops
// buffered frames.
func TestStore_RecreateKeepsFrames(t *testing.T) {
	s := New(time.Hour)
	defer s.Close()
	ctx := context.Background()

	if _, err := s.AppendFrame(ctx, "s1", domain.EmotionVector{1, 0, 0, 0, 0}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := s.Create(ctx, "s1"); err != nil {
		t.Fatalf("re-create failed: %v", err)
	}

	frames, _ := s.Frames(ctx, "s1")
	if len(frames) != 1 {
		t.Fatalf("re-create dropped frames: %v", frames)
	}
}

func TestStore_SoftMissingSession(t *testing.T) {
	s := New(time.Hour)
	defer s.Close()
	ctx := context.Background()

	// Stop and delete on an absent session are no-ops, not errors.
	if err := s.Stop(ctx, "nope"); err != nil {
		t.Fatalf("stop on missing session: %v", err)
	}
	if err := s.Delete(ctx, "nope"); err != nil {
		t.Fatalf("delete on missing session: %v", err)
	}

	frames, err := s.Frames(ctx, "nope")
	if err != nil {
		t.Fatalf("frames on missing session: %v", err)
	}
	if frames == nil || len(frames) != 0 {
		t.Fatalf("expected empty non-nil buffer, got %v", frames)
	}
}
