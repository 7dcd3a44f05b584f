package repositories

import (
	"context"
	"errors"

	"github.com/lumenlearn/attempt-service/internal/models"
)

// ErrNotFound is returned by every repository when the requested record does
// not exist in the caller's tenant. Implementations map their backend's miss
// (gorm.ErrRecordNotFound, a casdoor nil user) to this sentinel.
var ErrNotFound = errors.New("record not found")

// The engine consumes these contracts synchronously; implementations are
// supplied by the surrounding service (postgres, casdoor).

type AssessmentRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*models.Assessment, error)
}

type ItemRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*models.Item, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*models.User, error)
}

type CohortRepository interface {
	ListByLearner(ctx context.Context, tenantID, userID string) ([]*models.Cohort, error)
}

type AttemptRepository interface {
	Save(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, tenantID, id string) (*models.Attempt, error)
	ListByLearner(ctx context.Context, tenantID, assessmentID, userID string) ([]*models.Attempt, error)
	ListByAssessment(ctx context.Context, tenantID, assessmentID string, filters AttemptFilters) ([]*models.Attempt, error)
	ListByUser(ctx context.Context, tenantID, userID string, filters AttemptFilters) ([]*models.Attempt, error)
}

// ===== SHARED FILTER STRUCTS =====

type AttemptFilters struct {
	Status *models.AttemptStatus `json:"status"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}
