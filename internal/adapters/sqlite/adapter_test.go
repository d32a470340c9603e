package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
)

func testSurvey(id string) domain.Survey {
	answers := domain.Answers{}
	for slot := 1; slot <= domain.QuestionCount; slot++ {
		answers[slot] = 3
	}
	return domain.Survey{
		ID:        id,
		UserID:    42,
		Date:      "2025-03-14",
		Name:      "participant",
		Age:       27,
		Answers:   answers,
		CreatedAt: time.Now().UTC(),
	}
}

func TestAdapter_SaveAndGet(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, a *Adapter) string
		wantErr error
	}{
		{
			name: "not found",
			setup: func(t *testing.T, a *Adapter) string {
				return "missing"
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "round-trips a plain survey",
			setup: func(t *testing.T, a *Adapter) string {
				s := testSurvey("sv-1")
				if err := a.Save(context.Background(), s); err != nil {
					t.Fatalf("save survey: %v", err)
				}
				return s.ID
			},
		},
		{
			name: "round-trips the fusion outcome",
			setup: func(t *testing.T, a *Adapter) string {
				s := testSurvey("sv-2")
				s.Outcome = &domain.FusionOutcome{
					SurveyDominant:     domain.Neutral,
					ExpressionDominant: domain.Happy,
					TotalDominant:      domain.Neutral,
					TotalScores:        domain.EmotionVector{0.25, 0.25, 0.72, 0.25, 0.25},
					FrameCount:         3,
				}
				if err := a.Save(context.Background(), s); err != nil {
					t.Fatalf("save survey: %v", err)
				}
				return s.ID
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAdapter(":memory:")
			if err != nil {
				t.Fatalf("new adapter: %v", err)
			}
			defer a.Close()

			id := tt.setup(t, a)
			got, err := a.GetByID(context.Background(), id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("get survey: %v", err)
			}
			if got.ID != id || got.UserID != 42 || got.Name != "participant" {
				t.Fatalf("survey fields mismatch: %+v", got)
			}
			for slot := 1; slot <= domain.QuestionCount; slot++ {
				if got.Answers[slot] != 3 {
					t.Fatalf("question%d mismatch: %d", slot, got.Answers[slot])
				}
			}
			if id == "sv-2" {
				if got.Outcome == nil {
					t.Fatalf("expected fusion outcome to round-trip")
				}
				if got.Outcome.TotalDominant != domain.Neutral || got.Outcome.FrameCount != 3 {
					t.Fatalf("outcome mismatch: %+v", got.Outcome)
				}
				want := domain.EmotionVector{0.25, 0.25, 0.72, 0.25, 0.25}
				if got.Outcome.TotalScores != want {
					t.Fatalf("scores mismatch: %v", got.Outcome.TotalScores)
				}
			} else if got.Outcome != nil {
				t.Fatalf("expected no outcome, got %+v", got.Outcome)
			}
		})
	}
}

func TestAdapter_List(t *testing.T) {
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	base := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s := testSurvey(fmt.Sprintf("sv-%d", i))
		s.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := a.Save(context.Background(), s); err != nil {
			t.Fatalf("save survey %d: %v", i, err)
		}
	}

	page1, total, err := a.List(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(page1) != 2 {
		t.Fatalf("expected 2 surveys, got %d", len(page1))
	}
	// Newest first.
	if page1[0].ID != "sv-4" || page1[1].ID != "sv-3" {
		t.Fatalf("unexpected page order: %s, %s", page1[0].ID, page1[1].ID)
	}

	page3, _, err := a.List(context.Background(), 3, 2)
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(page3) != 1 || page3[0].ID != "sv-0" {
		t.Fatalf("unexpected last page: %+v", page3)
	}
}

func TestAdapter_MarkViewed(t *testing.T) {
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	s := testSurvey("sv-1")
	if err := a.Save(context.Background(), s); err != nil {
		t.Fatalf("save survey: %v", err)
	}

	if err := a.MarkViewed(context.Background(), "sv-1", true); err != nil {
		t.Fatalf("mark viewed: %v", err)
	}
	got, err := a.GetByID(context.Background(), "sv-1")
	if err != nil {
		t.Fatalf("get survey: %v", err)
	}
	if !got.IsViewed {
		t.Fatalf("expected isViewed=true")
	}

	if err := a.MarkViewed(context.Background(), "missing", true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdapter_Delete(t *testing.T) {
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	s := testSurvey("sv-1")
	if err := a.Save(context.Background(), s); err != nil {
		t.Fatalf("save survey: %v", err)
	}

	if err := a.Delete(context.Background(), "sv-1"); err != nil {
		t.Fatalf("delete survey: %v", err)
	}
	if _, err := a.GetByID(context.Background(), "sv-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := a.Delete(context.Background(), "sv-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for repeated delete, got %v", err)
	}
}
