package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
	"github.com/moodfuse-labs/moodfuse/internal/core/ports"
)

// Orchestrator coordinates the session store, the expression engine, and the
// survey repository. All fusion arithmetic lives in the domain package; the
// orchestrator only sequences it against I/O.
type Orchestrator struct {
	sessions ports.SessionStore
	repo     ports.SurveyRepository
	engine   ports.ExpressionClassifier
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(sessions ports.SessionStore, repo ports.SurveyRepository, engine ports.ExpressionClassifier) *Orchestrator {
	return &Orchestrator{
		sessions: sessions,
		repo:     repo,
		engine:   engine,
	}
}

// StartSession registers a fresh recording session and returns its id.
func (o *Orchestrator) StartSession(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := o.sessions.Create(ctx, id); err != nil {
		return "", &ports.UpstreamError{Stage: "create session", SessionID: id, Err: err}
	}
	return id, nil
}

// PushFrame validates the vector shape and appends it to the session buffer.
// Shape errors are rejected before any store mutation.
func (o *Orchestrator) PushFrame(ctx context.Context, sessionID string, values []float64) (int, error) {
	frame, err := domain.NewEmotionVector(values)
	if err != nil {
		return 0, fmt.Errorf("service: %w", err)
	}
	count, err := o.sessions.AppendFrame(ctx, sessionID, frame)
	if err != nil {
		return 0, &ports.UpstreamError{Stage: "append frame", SessionID: sessionID, Err: err}
	}
	return count, nil
}

// SessionInfo reports session metadata; ok is false for an absent session.
func (o *Orchestrator) SessionInfo(ctx context.Context, sessionID string) (domain.SessionInfo, bool, error) {
	info, ok, err := o.sessions.Info(ctx, sessionID)
	if err != nil {
		return domain.SessionInfo{}, false, &ports.UpstreamError{Stage: "session info", SessionID: sessionID, Err: err}
	}
	return info, ok, nil
}

// DiscardSession drops a session without fusing it.
func (o *Orchestrator) DiscardSession(ctx context.Context, sessionID string) error {
	if err := o.sessions.Delete(ctx, sessionID); err != nil {
		return &ports.UpstreamError{Stage: "delete session", SessionID: sessionID, Err: err}
	}
	return nil
}

// Fuse combines the survey answers with every frame buffered for the
// session and consumes the session.
//
// Step order matters: frames are read first, the session is stopped, the
// math runs, and only then is the session deleted. A failure after the stop
// leaves the frames intact for retry; the stop itself is not rolled back.
func (o *Orchestrator) Fuse(ctx context.Context, sessionID string, answers domain.Answers) (domain.FusionSummary, error) {
	frames, err := o.sessions.Frames(ctx, sessionID)
	if err != nil {
		return domain.FusionSummary{}, &ports.UpstreamError{Stage: "read frames", SessionID: sessionID, Err: err}
	}
	if len(frames) == 0 {
		return domain.FusionSummary{}, fmt.Errorf("service: session %s: %w", sessionID, domain.ErrNoExpressionData)
	}

	if err := o.sessions.Stop(ctx, sessionID); err != nil {
		return domain.FusionSummary{}, &ports.UpstreamError{Stage: "stop session", SessionID: sessionID, Err: err}
	}

	surveyVec := answers.Vector()
	exprMean := domain.MeanVector(frames)

	fused := make([]domain.Fused, len(frames))
	for i, frame := range frames {
		fused[i] = domain.FuseFrame(surveyVec, frame)
	}
	total := domain.AggregateFrames(fused)

	if err := o.sessions.Delete(ctx, sessionID); err != nil {
		return domain.FusionSummary{}, &ports.UpstreamError{Stage: "delete session", SessionID: sessionID, Err: err}
	}

	log.Printf("fusion complete: session=%s frames=%d total=%s", sessionID, len(frames), total.Dominant)

	return domain.FusionSummary{
		FrameCount: len(frames),
		Survey:     domain.Fused{Dominant: surveyVec.Dominant(), Scores: surveyVec},
		Expression: domain.Fused{Dominant: exprMean.Dominant(), Scores: exprMean},
		Total:      total,
		Frames:     fused,
	}, nil
}

// Analyze runs a single image through the expression engine.
func (o *Orchestrator) Analyze(ctx context.Context, image []byte) (domain.Classification, error) {
	result, err := o.engine.Classify(ctx, image)
	if err != nil {
		return domain.Classification{}, &ports.UpstreamError{Stage: "classify", Err: err}
	}
	return result, nil
}

// EngineHealthy reports whether the expression engine answers its health
// check.
func (o *Orchestrator) EngineHealthy(ctx context.Context) bool {
	return o.engine.Healthy(ctx)
}

// CreateSurvey validates and persists a survey document, assigning an id
// and creation time.
func (o *Orchestrator) CreateSurvey(ctx context.Context, s domain.Survey) (domain.Survey, error) {
	if err := s.Validate(); err != nil {
		return domain.Survey{}, fmt.Errorf("service: invalid survey: %w", err)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now().UTC()
	if err := o.repo.Save(ctx, s); err != nil {
		return domain.Survey{}, fmt.Errorf("service: failed to save survey: %w", err)
	}
	return s, nil
}

// GetSurvey loads one survey document.
func (o *Orchestrator) GetSurvey(ctx context.Context, id string) (domain.Survey, error) {
	s, err := o.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Survey{}, fmt.Errorf("service: failed to load survey: %w", err)
	}
	return s, nil
}

// ListSurveys returns one page of survey documents plus the total count.
// Page defaults to 1, limit to 10, and limit is clamped to 100.
func (o *Orchestrator) ListSurveys(ctx context.Context, page, limit int) ([]domain.Survey, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	surveys, total, err := o.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service: failed to list surveys: %w", err)
	}
	return surveys, total, nil
}

// SetSurveyViewed flips the visualization-seen flag on a survey.
func (o *Orchestrator) SetSurveyViewed(ctx context.Context, id string, viewed bool) error {
	if err := o.repo.MarkViewed(ctx, id, viewed); err != nil {
		return fmt.Errorf("service: failed to update survey: %w", err)
	}
	return nil
}

// DeleteSurvey removes a survey document.
func (o *Orchestrator) DeleteSurvey(ctx context.Context, id string) error {
	if err := o.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete survey: %w", err)
	}
	return nil
}
