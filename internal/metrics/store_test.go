package metrics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-travel-planner/internal/database"
	"ai-travel-planner/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestRecordAndDailyUsage(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Record(ExecutionMetric{
		Provider:         "openrouter",
		Model:            "openai/gpt-4o-mini",
		PromptTokens:     120,
		CompletionTokens: 800,
		LatencyMS:        1500,
	}))
	require.NoError(t, store.Record(ExecutionMetric{
		Provider:         "openrouter",
		Model:            "openai/gpt-4o-mini",
		PromptTokens:     80,
		CompletionTokens: 400,
		LatencyMS:        900,
	}))

	usage, err := store.GetDailyUsage(7)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 200, usage[0].TotalPrompt)
	assert.Equal(t, 1200, usage[0].TotalCompletion)
	assert.Equal(t, 2, usage[0].TotalExecution)
}

func TestRecordMetaSkipsEmptyUsage(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordMeta(shared.ExecutionMeta{Provider: "openrouter"}))

	usage, err := store.GetDailyUsage(7)
	require.NoError(t, err)
	assert.Empty(t, usage)
}

func TestCleanup(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Record(ExecutionMetric{
		Provider:         "openrouter",
		Model:            "openai/gpt-4o-mini",
		PromptTokens:     10,
		CompletionTokens: 20,
		LatencyMS:        100,
		Timestamp:        time.Now().UTC().AddDate(0, 0, -60),
	}))
	require.NoError(t, store.Record(ExecutionMetric{
		Provider:         "openrouter",
		Model:            "openai/gpt-4o-mini",
		PromptTokens:     10,
		CompletionTokens: 20,
		LatencyMS:        100,
	}))

	affected, err := store.Cleanup(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}
