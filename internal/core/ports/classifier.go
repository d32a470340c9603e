package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
)

// ErrUpstreamUnavailable indicates an I/O failure talking to a collaborator
// (expression engine or session store). Callers may retry; the failure is
// never substituted with a default emotion.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// UpstreamError carries enough context (stage, session) for the caller to
// retry or abort.
type UpstreamError struct {
	Stage     string
	SessionID string
	Err       error
}

func (e *UpstreamError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("upstream failure at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("upstream failure at %s (session %s): %v", e.Stage, e.SessionID, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamUnavailable }

// ExpressionClassifier is the external engine that turns an image into a
// probability distribution over the five channels. No partial results: an
// error means no classification.
type ExpressionClassifier interface {
	Classify(ctx context.Context, image []byte) (domain.Classification, error)
	Healthy(ctx context.Context) bool
}
