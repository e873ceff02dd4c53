package patterns

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indentedConfig = `{
  "ranges": [
    {"min": 0,  "max": 49,  "label": "Low"},
    {"min": 50, "max": 100, "label": "High"}
  ]
}`

func seedMemory(t *testing.T) (*MemoryStore, *models.ScoringPattern) {
	t.Helper()
	store := NewMemoryStore()
	p, err := store.Create(context.Background(), &models.ScoringPattern{
		ID: "p-1", Name: "Norms", Category: models.CategoryRangeBased, Type: models.TypeCustomRangePattern,
		Configuration: json.RawMessage(indentedConfig), IsActive: true, CreatedAt: fixedTime,
	})
	require.NoError(t, err)
	return store, p
}

// ==========================
// redismock expectations
// ==========================

func TestCachedStore_MissPopulatesCache(t *testing.T) {
	inner, seeded := seedMemory(t)
	client, mock := redismock.NewClientMock()
	cached := NewCachedStore(inner, client, 5*time.Minute, logger.NewTestLogger(t))

	data, err := encodeEntry(seeded)
	require.NoError(t, err)

	mock.ExpectGet("scoring:pattern:p-1").RedisNil()
	mock.ExpectSet("scoring:pattern:p-1", data, 5*time.Minute).SetVal("OK")

	p, err := cached.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Norms", p.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStore_HitSkipsStore(t *testing.T) {
	_, seeded := seedMemory(t)
	client, mock := redismock.NewClientMock()
	cached := NewCachedStore(NewMemoryStore(), client, time.Minute, logger.NewTestLogger(t))

	data, err := encodeEntry(seeded)
	require.NoError(t, err)
	mock.ExpectGet("scoring:pattern:p-1").SetVal(string(data))

	p, err := cached.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, indentedConfig, string(p.Configuration))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStore_RedisErrorFallsBackToStore(t *testing.T) {
	inner, _ := seedMemory(t)
	client, mock := redismock.NewClientMock()
	cached := NewCachedStore(inner, client, time.Minute, logger.NewTestLogger(t))

	mock.ExpectGet("scoring:pattern:p-1").SetErr(errors.New("connection refused"))

	p, err := cached.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)
}

func TestCachedStore_MutationsInvalidate(t *testing.T) {
	inner, _ := seedMemory(t)
	client, mock := redismock.NewClientMock()
	cached := NewCachedStore(inner, client, time.Minute, logger.NewTestLogger(t))

	name := "Renamed"
	mock.ExpectDel("scoring:pattern:p-1").SetVal(1)
	mock.ExpectDel("scoring:pattern:p-1").SetVal(0)
	mock.ExpectDel("scoring:pattern:p-1").SetVal(0)

	_, err := cached.Update(context.Background(), "p-1", models.PatternUpdate{Name: &name}, fixedTime)
	require.NoError(t, err)
	_, err = cached.ToggleActive(context.Background(), "p-1", fixedTime)
	require.NoError(t, err)
	require.NoError(t, cached.Delete(context.Background(), "p-1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// miniredis round trip
// ==========================

func TestCachedStore_RoundTripPreservesConfigurationBytes(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	inner, _ := seedMemory(t)
	cached := NewCachedStore(inner, client, time.Minute, logger.NewTestLogger(t))

	_, err = cached.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("scoring:pattern:p-1"))

	// Remove from the backing store; the cached copy must still answer.
	require.NoError(t, inner.Delete(context.Background(), "p-1"))
	p, err := cached.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, indentedConfig, string(p.Configuration))
	assert.True(t, p.IsActive)

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("scoring:pattern:p-1"))
}

func TestCachedStore_UpdateDropsEntry(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner, _ := seedMemory(t)
	cached := NewCachedStore(inner, client, time.Minute, logger.NewTestLogger(t))

	_, err = cached.GetByID(context.Background(), "p-1")
	require.NoError(t, err)

	off := false
	_, err = cached.Update(context.Background(), "p-1", models.PatternUpdate{IsActive: &off}, fixedTime)
	require.NoError(t, err)
	assert.False(t, mr.Exists("scoring:pattern:p-1"))

	p, err := cached.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.False(t, p.IsActive)
}
