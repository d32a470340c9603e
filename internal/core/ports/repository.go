package ports

import (
	"context"

	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
)

// SurveyRepository persists finalized survey documents.
type SurveyRepository interface {
	Save(ctx context.Context, s domain.Survey) error
	GetByID(ctx context.Context, id string) (domain.Survey, error)
	List(ctx context.Context, page, limit int) ([]domain.Survey, int, error)
	MarkViewed(ctx context.Context, id string, viewed bool) error
	Delete(ctx context.Context, id string) error
}
