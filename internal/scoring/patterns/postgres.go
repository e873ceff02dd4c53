package patterns

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
)

const patternColumns = `id, name, description, category, pattern_type, configuration,
	is_active, usage_count, last_used_at, created_at, updated_at`

// PostgresStore keeps patterns in the scoring_patterns table. Configuration
// is written as the submitted JSON text so it reads back unchanged.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "pattern-store"}),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPattern(row rowScanner) (*models.ScoringPattern, error) {
	var (
		p        models.ScoringPattern
		category string
		ptype    string
		config   []byte
		lastUsed sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &category, &ptype, &config,
		&p.IsActive, &p.UsageCount, &lastUsed, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Category = models.PatternCategory(category)
	p.Type = models.PatternType(ptype)
	p.Configuration = config
	if lastUsed.Valid {
		t := lastUsed.Time
		p.LastUsedAt = &t
	}
	return &p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *models.ScoringPattern) (*models.ScoringPattern, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO scoring_patterns (
			id, name, description, category, pattern_type, configuration,
			is_active, usage_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $8)
		RETURNING `+patternColumns,
		p.ID, p.Name, p.Description, string(p.Category), string(p.Type), string(p.Configuration),
		p.IsActive, p.CreatedAt,
	)
	created, err := scanPattern(row)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}
	return created, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*models.ScoringPattern, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+patternColumns+` FROM scoring_patterns WHERE id = $1`, id)
	p, err := scanPattern(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, errors.NewQueryExecutionFailedError("get_pattern", err)
	}
	return p, nil
}

func (s *PostgresStore) ListByCategory(ctx context.Context, category models.PatternCategory) ([]*models.ScoringPattern, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+patternColumns+`
		FROM scoring_patterns
		WHERE ($1 = '' OR category = $1)
		ORDER BY created_at DESC`, string(category))
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_patterns", err)
	}
	defer rows.Close()

	patterns := make([]*models.ScoringPattern, 0)
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("list_patterns", err)
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_patterns", err)
	}
	return patterns, nil
}

// Update writes only the fields set on upd. The category follows the type.
func (s *PostgresStore) Update(ctx context.Context, id string, upd models.PatternUpdate, at time.Time) (*models.ScoringPattern, error) {
	var ptype, category interface{}
	if upd.Type != nil {
		ptype = string(*upd.Type)
		if c, ok := upd.Type.Category(); ok {
			category = string(c)
		}
	}
	var config interface{}
	if len(upd.Configuration) > 0 {
		config = string(upd.Configuration)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE scoring_patterns SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			pattern_type = COALESCE($4, pattern_type),
			category = COALESCE($5, category),
			configuration = COALESCE($6::jsonb, configuration),
			is_active = COALESCE($7, is_active),
			updated_at = $8
		WHERE id = $1
		RETURNING `+patternColumns,
		id, optString(upd.Name), optString(upd.Description), ptype, category, config, optBool(upd.IsActive), at,
	)
	p, err := scanPattern(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, errors.NewQueryExecutionFailedError("update_pattern", err)
	}
	return p, nil
}

func (s *PostgresStore) ToggleActive(ctx context.Context, id string, at time.Time) (*models.ScoringPattern, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE scoring_patterns
		SET is_active = NOT is_active, updated_at = $2
		WHERE id = $1
		RETURNING `+patternColumns, id, at)
	p, err := scanPattern(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, errors.NewQueryExecutionFailedError("toggle_pattern", err)
	}
	return p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scoring_patterns WHERE id = $1`, id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("delete_pattern", err)
	}
	return expectOneRow(res, id)
}

// IncrementUsage bumps the counter in a single statement so concurrent
// assignments never lose an update.
func (s *PostgresStore) IncrementUsage(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE scoring_patterns
		SET usage_count = usage_count + 1, last_used_at = $2
		WHERE id = $1`, id, at)
	if err != nil {
		return errors.NewQueryExecutionFailedError("increment_usage", err)
	}
	return expectOneRow(res, id)
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionFailedError("rows_affected", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func optString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func optBool(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return *b
}
