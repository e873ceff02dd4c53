package results

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"

	"github.com/lib/pq"
)

// Catalog looks up predefined results and component descriptions.
type Catalog interface {
	FindByCode(ctx context.Context, testID, code string) (*models.TestResult, error)
	ComponentsByCodes(ctx context.Context, testID string, codes []string) ([]models.ResultComponent, error)
}

type PostgresCatalog struct {
	db *sql.DB
}

func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// FindByCode returns the active catalog entry for code, or NOT_FOUND.
func (c *PostgresCatalog) FindByCode(ctx context.Context, testID, code string) (*models.TestResult, error) {
	var r models.TestResult
	err := c.db.QueryRowContext(ctx, `
		SELECT id, test_id, result_code, title, description, is_active
		FROM test_results
		WHERE test_id = $1 AND result_code = $2 AND is_active`, testID, code).
		Scan(&r.ID, &r.TestID, &r.ResultCode, &r.Title, &r.Description, &r.IsActive)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("test result", code)
		}
		return nil, errors.NewQueryExecutionFailedError("find_result", err)
	}
	return &r, nil
}

// ComponentsByCodes returns the components for codes in the order the codes
// were given. Unknown codes are skipped.
func (c *PostgresCatalog) ComponentsByCodes(ctx context.Context, testID string, codes []string) ([]models.ResultComponent, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, test_id, component_code, title, description
		FROM result_components
		WHERE test_id = $1 AND component_code = ANY($2)`, testID, pq.Array(codes))
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("find_components", err)
	}
	defer rows.Close()

	byCode := make(map[string]models.ResultComponent, len(codes))
	for rows.Next() {
		var rc models.ResultComponent
		if err := rows.Scan(&rc.ID, &rc.TestID, &rc.ComponentCode, &rc.Title, &rc.Description); err != nil {
			return nil, errors.NewQueryExecutionFailedError("find_components", err)
		}
		byCode[rc.ComponentCode] = rc
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("find_components", err)
	}

	out := make([]models.ResultComponent, 0, len(byCode))
	for _, code := range codes {
		if rc, ok := byCode[code]; ok {
			out = append(out, rc)
		}
	}
	return out, nil
}
