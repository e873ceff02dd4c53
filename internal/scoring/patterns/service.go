package patterns

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/validator"

	"github.com/google/uuid"
)

// DependencyChecker reports how many active test bindings reference a
// pattern. A pattern with active bindings cannot be deleted.
type DependencyChecker interface {
	ActiveBindings(ctx context.Context, patternID string) (int, error)
}

// CreateRequest is the payload for a new pattern. IsActive defaults to true.
type CreateRequest struct {
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Type          models.PatternType `json:"type"`
	Configuration json.RawMessage    `json:"configuration"`
	IsActive      *bool              `json:"isActive,omitempty"`
}

type Service struct {
	store  Store
	deps   DependencyChecker
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

// NewService builds the pattern service. deps may be nil, in which case
// deletes are never blocked.
func NewService(store Store, deps DependencyChecker, log logger.Logger) *Service {
	return &Service{
		store:  store,
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"component": "pattern-service"}),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
}

// ValidateConfiguration checks a configuration without storing anything.
func (s *Service) ValidateConfiguration(patternType models.PatternType, configuration json.RawMessage) validator.Result {
	return validator.Validate(patternType, configuration)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.ScoringPattern, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.NewInvalidInputError("name is required")
	}
	category, ok := req.Type.Category()
	if !ok {
		return nil, errors.NewInvalidConfigurationError(string(req.Type),
			[]string{fmt.Sprintf("unknown pattern type %q", req.Type)})
	}
	if res := validator.Validate(req.Type, req.Configuration); !res.IsValid {
		return nil, errors.NewInvalidConfigurationError(string(req.Type), res.Errors)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	now := s.now()
	p, err := s.store.Create(ctx, &models.ScoringPattern{
		ID:            s.newID(),
		Name:          name,
		Description:   req.Description,
		Category:      category,
		Type:          req.Type,
		Configuration: append(json.RawMessage(nil), req.Configuration...),
		IsActive:      active,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("scoring pattern created", map[string]interface{}{
		"patternId": p.ID,
		"type":      p.Type,
	})
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.ScoringPattern, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, category models.PatternCategory) ([]*models.ScoringPattern, error) {
	if category != "" && !category.Valid() {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("unknown category %q", category))
	}
	return s.store.ListByCategory(ctx, category)
}

// Update validates the merged pattern before writing. Changing the type
// without a new configuration is rejected when the stored configuration does
// not satisfy the new type.
func (s *Service) Update(ctx context.Context, id string, upd models.PatternUpdate) (*models.ScoringPattern, error) {
	if upd.Empty() {
		return nil, errors.NewInvalidInputError("update contains no fields")
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, errors.NewInvalidInputError("name must not be blank")
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := upd.Apply(*current)
	if upd.Type != nil || len(upd.Configuration) > 0 {
		if res := validator.Validate(merged.Type, merged.Configuration); !res.IsValid {
			return nil, errors.NewInvalidConfigurationError(string(merged.Type), res.Errors)
		}
	}

	p, err := s.store.Update(ctx, id, upd, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("scoring pattern updated", map[string]interface{}{"patternId": id})
	return p, nil
}

func (s *Service) ToggleActive(ctx context.Context, id string) (*models.ScoringPattern, error) {
	p, err := s.store.ToggleActive(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("scoring pattern toggled", map[string]interface{}{
		"patternId": id,
		"isActive":  p.IsActive,
	})
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if s.deps != nil {
		n, err := s.deps.ActiveBindings(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return errors.NewConflictError(resourceName, id,
				fmt.Sprintf("pattern is bound to %d active test(s)", n))
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("scoring pattern deleted", map[string]interface{}{"patternId": id})
	return nil
}

// Duplicate copies a pattern under a fresh id. The configuration bytes and
// the active flag are copied; usage statistics start from zero. An empty
// name becomes "<source name> (Copy)".
func (s *Service) Duplicate(ctx context.Context, id, newName string) (*models.ScoringPattern, error) {
	src, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(newName)
	if name == "" {
		name = src.Name + " (Copy)"
	}

	now := s.now()
	p, err := s.store.Create(ctx, &models.ScoringPattern{
		ID:            s.newID(),
		Name:          name,
		Description:   src.Description,
		Category:      src.Category,
		Type:          src.Type,
		Configuration: append(json.RawMessage(nil), src.Configuration...),
		IsActive:      src.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("scoring pattern duplicated", map[string]interface{}{
		"sourceId":  id,
		"patternId": p.ID,
	})
	return p, nil
}

// RecordUsage bumps the pattern's usage counter.
func (s *Service) RecordUsage(ctx context.Context, id string) error {
	return s.store.IncrementUsage(ctx, id, s.now())
}
