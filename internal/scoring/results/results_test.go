package results

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var createdAt = time.Date(2024, 6, 11, 10, 0, 0, 0, time.UTC)

func resultRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "test_attempt_id", "test_id", "user_id", "result_id", "pattern_id",
		"generated_result_code", "title", "description", "final_score", "generation_method",
		"component_combination", "calculation_details", "is_final", "view_count", "download_count", "created_at",
	})
}

func sampleResult() *models.UserTestResult {
	resultID := "res-rie"
	return &models.UserTestResult{
		ID:                   "utr-1",
		TestAttemptID:        "attempt-1",
		TestID:               "test-1",
		UserID:               "user-1",
		ResultID:             &resultID,
		PatternID:            "p-1",
		GeneratedResultCode:  "RIE",
		Title:                "Realistic Investigative Enterprising",
		FinalScore:           129,
		GenerationMethod:     models.GenerationFlagBased,
		ComponentCombination: json.RawMessage(`[{"code":"R","score":45,"rank":1},{"code":"I","score":45,"rank":2},{"code":"E","score":39,"rank":3}]`),
		CalculationDetails:   json.RawMessage(`{"outcome":{}}`),
		IsFinal:              true,
		CreatedAt:            createdAt,
	}
}

func addSample(rows *sqlmock.Rows, r *models.UserTestResult) *sqlmock.Rows {
	return rows.AddRow(r.ID, r.TestAttemptID, r.TestID, r.UserID, *r.ResultID, r.PatternID,
		r.GeneratedResultCode, r.Title, r.Description, r.FinalScore, string(r.GenerationMethod),
		[]byte(r.ComponentCombination), []byte(r.CalculationDetails), r.IsFinal, int64(0), int64(0), r.CreatedAt)
}

// ==========================
// Result Store Tests
// ==========================

func TestPostgresStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := sampleResult()
	mock.ExpectQuery(`INSERT INTO user_test_results(.+)ON CONFLICT \(test_attempt_id\) DO NOTHING`).
		WithArgs("utr-1", "attempt-1", "test-1", "user-1", "res-rie", "p-1",
			"RIE", r.Title, "", 129.0, "flag_based",
			string(r.ComponentCombination), string(r.CalculationDetails), true, createdAt).
		WillReturnRows(addSample(resultRows(), r))

	stored, created, err := NewPostgresStore(db).Create(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "RIE", stored.GeneratedResultCode)
	require.NotNil(t, stored.ResultID)
	assert.Equal(t, "res-rie", *stored.ResultID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create_ExistingAttemptReturnsStoredResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	existing := sampleResult()
	existing.ID = "utr-original"

	mock.ExpectQuery(`INSERT INTO user_test_results`).WillReturnRows(resultRows())
	mock.ExpectQuery(`SELECT (.+) FROM user_test_results WHERE test_attempt_id = \$1`).
		WithArgs("attempt-1").
		WillReturnRows(addSample(resultRows(), existing))

	stored, created, err := NewPostgresStore(db).Create(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "utr-original", stored.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create_InsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO user_test_results`).WillReturnError(errors.New("disk full"))

	_, _, err = NewPostgresStore(db).Create(context.Background(), sampleResult())
	assert.Equal(t, apperrors.ErrCodeDatabaseInsertFailed, apperrors.CodeOf(err))
}

func TestPostgresStore_GetByAttempt_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM user_test_results`).
		WithArgs("attempt-x").
		WillReturnRows(resultRows())

	_, err = NewPostgresStore(db).GetByAttempt(context.Background(), "attempt-x")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}

func TestPostgresStore_RecordAccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)

	mock.ExpectQuery(`SET view_count = view_count \+ 1`).
		WithArgs("utr-1").
		WillReturnRows(sqlmock.NewRows([]string{"view_count", "download_count"}).AddRow(int64(3), int64(0)))
	mock.ExpectQuery(`SET download_count = download_count \+ 1`).
		WithArgs("utr-1").
		WillReturnRows(sqlmock.NewRows([]string{"view_count", "download_count"}).AddRow(int64(3), int64(1)))
	mock.ExpectQuery(`SET view_count = view_count \+ 1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"view_count", "download_count"}))

	views, err := store.RecordView(context.Background(), "utr-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), views.ViewCount)

	downloads, err := store.RecordDownload(context.Background(), "utr-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), downloads.DownloadCount)

	_, err = store.RecordView(context.Background(), "missing")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Catalog Tests
// ==========================

func TestPostgresCatalog_FindByCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM test_results\s+WHERE test_id = \$1 AND result_code = \$2 AND is_active`).
		WithArgs("test-1", "RIE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "test_id", "result_code", "title", "description", "is_active"}).
			AddRow("res-rie", "test-1", "RIE", "The Builder", "Hands-on problem solver", true))
	mock.ExpectQuery(`FROM test_results`).
		WithArgs("test-1", "XYZ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "test_id", "result_code", "title", "description", "is_active"}))

	catalog := NewPostgresCatalog(db)

	r, err := catalog.FindByCode(context.Background(), "test-1", "RIE")
	require.NoError(t, err)
	assert.Equal(t, "The Builder", r.Title)

	_, err = catalog.FindByCode(context.Background(), "test-1", "XYZ")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_ComponentsByCodes_KeepsRequestedOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM result_components\s+WHERE test_id = \$1 AND component_code = ANY\(\$2\)`).
		WithArgs("test-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "test_id", "component_code", "title", "description"}).
			AddRow("c-e", "test-1", "E", "Enterprising", "").
			AddRow("c-r", "test-1", "R", "Realistic", ""))

	components, err := NewPostgresCatalog(db).ComponentsByCodes(context.Background(), "test-1", []string{"R", "I", "E"})
	require.NoError(t, err)
	require.Len(t, components, 2)
	assert.Equal(t, "R", components[0].ComponentCode)
	assert.Equal(t, "E", components[1].ComponentCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_ComponentsByCodes_Empty(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	components, err := NewPostgresCatalog(db).ComponentsByCodes(context.Background(), "test-1", nil)
	assert.NoError(t, err)
	assert.Empty(t, components)
}

// ==========================
// Indexer Tests
// ==========================

func newElasticsearch(t *testing.T, status int, captured *map[string]interface{}, path *string) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, captured)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearchIndexer_Index(t *testing.T) {
	var (
		doc  map[string]interface{}
		path string
	)
	client := newElasticsearch(t, http.StatusCreated, &doc, &path)

	err := NewElasticsearchIndexer(client, "user-test-results").Index(context.Background(), sampleResult())
	require.NoError(t, err)

	assert.Equal(t, "/user-test-results/_doc/utr-1", path)
	assert.Equal(t, "RIE", doc["generatedResultCode"])
	assert.Equal(t, []interface{}{"R", "I", "E"}, doc["indexedCodes"])
}

func TestElasticsearchIndexer_ErrorStatus(t *testing.T) {
	var (
		doc  map[string]interface{}
		path string
	)
	client := newElasticsearch(t, http.StatusBadRequest, &doc, &path)

	err := NewElasticsearchIndexer(client, "user-test-results").Index(context.Background(), sampleResult())
	assert.Equal(t, apperrors.ErrCodeIndexingFailed, apperrors.CodeOf(err))
}
