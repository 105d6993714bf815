package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.KV().Set(ctx, "history:attempts", []byte(`[]`)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.KV().Get(ctx, "history:attempts")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v))
}

// kvContract runs the shared KV behaviour against any implementation.
func kvContract(t *testing.T, kv KV) {
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "checkpoint:a", []byte("one")))
	require.NoError(t, kv.Set(ctx, "checkpoint:b", []byte("two")))
	require.NoError(t, kv.Set(ctx, "history:attempts", []byte("three")))

	v, err := kv.Get(ctx, "checkpoint:a")
	require.NoError(t, err)
	assert.Equal(t, "one", string(v))

	require.NoError(t, kv.Set(ctx, "checkpoint:a", []byte("uno")))
	v, err = kv.Get(ctx, "checkpoint:a")
	require.NoError(t, err)
	assert.Equal(t, "uno", string(v))

	keys, err := kv.Keys(ctx, "checkpoint:")
	require.NoError(t, err)
	assert.Equal(t, []string{"checkpoint:a", "checkpoint:b"}, keys)

	require.NoError(t, kv.Delete(ctx, "checkpoint:a"))
	_, err = kv.Get(ctx, "checkpoint:a")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, kv.Delete(ctx, "checkpoint:a"))
}

func TestSQLiteKV(t *testing.T) {
	kvContract(t, openTestStore(t).KV())
}

func TestMemoryKV(t *testing.T) {
	kvContract(t, NewMemory())
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	buf := []byte("abc")
	require.NoError(t, kv.Set(ctx, "k", buf))
	buf[0] = 'z'

	v, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}

func TestEventRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o", Purpose: "question-generation",
		InputTokens: 900, OutputTokens: 400, LatencyMs: 2100, Success: true,
		RequestBody: "[user]\npassage", ResponseBody: `{"questions":[]}`,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o", Purpose: "answer-grading",
		Success: false, ErrorMessage: "LLM provider unavailable",
	}))

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "answer-grading", all[0].Purpose, "newest first")
	assert.False(t, all[0].Success)

	grading, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "question-generation", Limit: 10})
	require.NoError(t, err)
	require.Len(t, grading, 1)
	assert.Equal(t, 900, grading[0].InputTokens)

	e, err := repo.GetLLMEvent(ctx, grading[0].ID)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, `{"questions":[]}`, e.ResponseBody)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEventRepo_UsageByPurpose(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	usage, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	assert.Empty(t, usage)

	for _, d := range []LLMRequestEventData{
		{Purpose: "answer-grading", InputTokens: 100, OutputTokens: 10, LatencyMs: 300, Success: true},
		{Purpose: "answer-grading", InputTokens: 120, OutputTokens: 20, LatencyMs: 500, Success: true},
		{Purpose: "answer-grading", LatencyMs: 100, Success: false},
		{Purpose: "question-generation", InputTokens: 900, OutputTokens: 400, LatencyMs: 2000, Success: true},
	} {
		d.Provider, d.Model = "openai", "gpt-4o"
		require.NoError(t, repo.AppendLLMRequest(ctx, d))
	}

	usage, err = repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	assert.Equal(t, PurposeUsage{
		Purpose: "answer-grading", Calls: 3, Failures: 1,
		InputTokens: 220, OutputTokens: 30, AvgLatencyMs: 300,
	}, usage[0])
	assert.Equal(t, "question-generation", usage[1].Purpose)
	assert.Equal(t, 1, usage[1].Calls)
	assert.Equal(t, 0, usage[1].Failures)
}

func TestDefaultDBPath_Env(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "x.db")
	t.Setenv("COMPREHEND_DB", p)
	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.DirExists(t, filepath.Dir(p))
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COMPREHEND_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "comprehend", "comprehend.db"), got)
}
