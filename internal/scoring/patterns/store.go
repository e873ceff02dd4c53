// Package patterns persists scoring patterns and exposes the administrative
// operations on them.
package patterns

import (
	"context"
	"time"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
)

const resourceName = "scoring pattern"

// Store is the persistence boundary for scoring patterns. Implementations
// return a NOT_FOUND StandardError for unknown ids and must apply
// IncrementUsage and ToggleActive atomically.
type Store interface {
	Create(ctx context.Context, p *models.ScoringPattern) (*models.ScoringPattern, error)
	GetByID(ctx context.Context, id string) (*models.ScoringPattern, error)
	// ListByCategory returns patterns newest first. An empty category lists all.
	ListByCategory(ctx context.Context, category models.PatternCategory) ([]*models.ScoringPattern, error)
	Update(ctx context.Context, id string, upd models.PatternUpdate, at time.Time) (*models.ScoringPattern, error)
	ToggleActive(ctx context.Context, id string, at time.Time) (*models.ScoringPattern, error)
	Delete(ctx context.Context, id string) error
	IncrementUsage(ctx context.Context, id string, at time.Time) error
}

func notFound(id string) error {
	return errors.NewNotFoundError(resourceName, id)
}
