package patterns

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
)

// BindingChecker reads test_pattern_bindings.
type BindingChecker struct {
	db *sql.DB
}

func NewBindingChecker(db *sql.DB) *BindingChecker {
	return &BindingChecker{db: db}
}

func (b *BindingChecker) ActiveBindings(ctx context.Context, patternID string) (int, error) {
	var n int
	err := b.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM test_pattern_bindings
		WHERE pattern_id = $1 AND is_active`, patternID).Scan(&n)
	if err != nil {
		return 0, errors.NewQueryExecutionFailedError("count_bindings", err)
	}
	return n, nil
}

// ActivePatternForTest returns the id of the active pattern bound to a test.
// When several are bound the most recent binding wins.
func (b *BindingChecker) ActivePatternForTest(ctx context.Context, testID string) (string, error) {
	var id string
	err := b.db.QueryRowContext(ctx, `
		SELECT pattern_id FROM test_pattern_bindings
		WHERE test_id = $1 AND is_active
		ORDER BY created_at DESC
		LIMIT 1`, testID).Scan(&id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return "", errors.NewNotFoundError("test pattern binding", testID)
		}
		return "", errors.NewQueryExecutionFailedError("find_binding", err)
	}
	return id, nil
}
