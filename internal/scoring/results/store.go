// Package results stores final user test results and reads the result
// catalog they are matched against.
package results

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
)

const resultColumns = `id, test_attempt_id, test_id, user_id, result_id, pattern_id,
	generated_result_code, title, description, final_score, generation_method,
	component_combination, calculation_details, is_final, view_count, download_count, created_at`

// AccessCounts are the analytics counters of a result.
type AccessCounts struct {
	ViewCount     int64 `json:"viewCount"`
	DownloadCount int64 `json:"downloadCount"`
}

// Store persists user test results. A result is immutable once written
// apart from its access counters.
type Store interface {
	// Create inserts r unless a result already exists for its attempt, in
	// which case the existing result is returned and created is false.
	Create(ctx context.Context, r *models.UserTestResult) (stored *models.UserTestResult, created bool, err error)
	GetByAttempt(ctx context.Context, attemptID string) (*models.UserTestResult, error)
	RecordView(ctx context.Context, id string) (*AccessCounts, error)
	RecordDownload(ctx context.Context, id string) (*AccessCounts, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row rowScanner) (*models.UserTestResult, error) {
	var (
		r        models.UserTestResult
		resultID sql.NullString
		method   string
		combo    []byte
		details  []byte
	)
	err := row.Scan(&r.ID, &r.TestAttemptID, &r.TestID, &r.UserID, &resultID, &r.PatternID,
		&r.GeneratedResultCode, &r.Title, &r.Description, &r.FinalScore, &method,
		&combo, &details, &r.IsFinal, &r.ViewCount, &r.DownloadCount, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if resultID.Valid {
		id := resultID.String
		r.ResultID = &id
	}
	r.GenerationMethod = models.GenerationMethod(method)
	r.ComponentCombination = combo
	r.CalculationDetails = details
	return &r, nil
}

func (s *PostgresStore) Create(ctx context.Context, r *models.UserTestResult) (*models.UserTestResult, bool, error) {
	var resultID interface{}
	if r.ResultID != nil {
		resultID = *r.ResultID
	}
	combo := string(r.ComponentCombination)
	if combo == "" {
		combo = "[]"
	}
	details := string(r.CalculationDetails)
	if details == "" {
		details = "{}"
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO user_test_results (
			id, test_attempt_id, test_id, user_id, result_id, pattern_id,
			generated_result_code, title, description, final_score, generation_method,
			component_combination, calculation_details, is_final, view_count, download_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 0, 0, $15)
		ON CONFLICT (test_attempt_id) DO NOTHING
		RETURNING `+resultColumns,
		r.ID, r.TestAttemptID, r.TestID, r.UserID, resultID, r.PatternID,
		r.GeneratedResultCode, r.Title, r.Description, r.FinalScore, string(r.GenerationMethod),
		combo, details, r.IsFinal, r.CreatedAt,
	)
	stored, err := scanResult(row)
	if err == nil {
		return stored, true, nil
	}
	if !stderrors.Is(err, sql.ErrNoRows) {
		return nil, false, errors.NewDatabaseInsertFailedError(err)
	}

	// Lost a race with another assignment of the same attempt.
	existing, err := s.GetByAttempt(ctx, r.TestAttemptID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *PostgresStore) GetByAttempt(ctx context.Context, attemptID string) (*models.UserTestResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM user_test_results WHERE test_attempt_id = $1`, attemptID)
	r, err := scanResult(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("user test result", attemptID)
		}
		return nil, errors.NewQueryExecutionFailedError("get_result", err)
	}
	return r, nil
}

func (s *PostgresStore) RecordView(ctx context.Context, id string) (*AccessCounts, error) {
	return s.bump(ctx, id, `
		UPDATE user_test_results SET view_count = view_count + 1
		WHERE id = $1
		RETURNING view_count, download_count`)
}

func (s *PostgresStore) RecordDownload(ctx context.Context, id string) (*AccessCounts, error) {
	return s.bump(ctx, id, `
		UPDATE user_test_results SET download_count = download_count + 1
		WHERE id = $1
		RETURNING view_count, download_count`)
}

func (s *PostgresStore) bump(ctx context.Context, id, query string) (*AccessCounts, error) {
	var c AccessCounts
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ViewCount, &c.DownloadCount); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("user test result", id)
		}
		return nil, errors.NewQueryExecutionFailedError("record_access", err)
	}
	return &c, nil
}
