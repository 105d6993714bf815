package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/checkpoint"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/history"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/passage"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/questiongen"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/store"
)

// testEnv points every path the CLI touches into a temp dir and returns
// the database path.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("COMPREHEND_CONFIG", filepath.Join(dir, "config.yaml"))
	t.Setenv("COMPREHEND_LOG_PATH", filepath.Join(dir, "comprehend.log"))
	t.Setenv("COMPREHEND_STORE", "")
	t.Setenv("COMPREHEND_PASSAGE", "")
	return filepath.Join(dir, "comprehend.db")
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores flag defaults, since the command tree is shared
// between tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// withStore opens the test database for seeding and closes it after fn.
func withStore(t *testing.T, dbPath string, fn func(kv store.KV, events store.EventRepo)) {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	fn(st.KV(), st.EventRepo())
}

func TestVersion(t *testing.T) {
	testEnv(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "comprehend (devel)\n", out)
}

func TestCheck(t *testing.T) {
	testEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"key terms present", []string{"check", "they dance to share where food is", "Bees dance to share food locations"}, "✓ match\n"},
		{"unrelated", []string{"check", "they sleep", "Bees dance to share food locations"}, "✗ no match\n"},
		{"empty answer", []string{"check", "   ", "nectar"}, "✗ no match\n"},
		{"longer threshold skips short words", []string{"check", "--min-term-length", "3", "the hive", "the hive and the bee"}, "✓ match\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	_, err := execute(t, "check", "only-one")
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	db := testEnv(t)

	out, err := execute(t, "--db", db, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No attempts yet.")

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	withStore(t, db, func(kv store.KV, _ store.EventRepo) {
		h := history.New(kv, nil)
		require.NoError(t, h.Append(context.Background(), history.NewSummary(3, 6, base)))
		require.NoError(t, h.Append(context.Background(), history.NewSummary(5, 6, base.Add(time.Hour))))
	})

	out, err = execute(t, "--db", db, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Attempts: 2   Best: 83%   Average: 67%")
	assert.Contains(t, out, "5/6")
	assert.Contains(t, out, "Excellent Work!")
	assert.Contains(t, out, "Keep Practicing!")

	out, err = execute(t, "--db", db, "history", "--json", "--limit", "1")
	require.NoError(t, err)
	var report historyReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, history.Stats{Count: 2, Best: 83, Average: 67}, report.Stats)
	require.Len(t, report.Attempts, 1)
	assert.Equal(t, 5, report.Attempts[0].Score, "most recent first")
}

func TestReset(t *testing.T) {
	db := testEnv(t)
	ctx := context.Background()

	p, err := passage.Default()
	require.NoError(t, err)
	bank, err := questiongen.Bank(p.ID)
	require.NoError(t, err)

	withStore(t, db, func(kv store.KV, _ store.EventRepo) {
		require.NoError(t, history.New(kv, nil).Append(ctx, history.NewSummary(4, 6, time.Now())))
		checkpoint.New(kv, nil).Save(ctx, bank.Identity(), checkpoint.Record{Phase: "answering"})
		_, err := questiongen.NewCached(&questiongen.StaticGenerator{Set: bank}, kv, nil).Generate(ctx, p)
		require.NoError(t, err)
	})

	out, err := execute(t, "--db", db, "reset", "--history")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 attempt(s) from history.")
	assert.NotContains(t, out, "saved session")

	withStore(t, db, func(kv store.KV, _ store.EventRepo) {
		assert.Empty(t, history.New(kv, nil).List(ctx))
		_, ok := checkpoint.New(kv, nil).Load(ctx, bank.Identity())
		assert.True(t, ok, "progress kept")
	})

	out, err = execute(t, "--db", db, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 saved session(s)")

	withStore(t, db, func(kv store.KV, _ store.EventRepo) {
		_, ok := checkpoint.New(kv, nil).Load(ctx, bank.Identity())
		assert.False(t, ok)
		_, ok = questiongen.NewCached(nil, kv, nil).Cached(ctx, p.ID)
		assert.False(t, ok, "question set dropped")
	})
}

func TestLLMCommands(t *testing.T) {
	db := testEnv(t)

	out, err := execute(t, "--db", db, "llm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No LLM events found.")

	out, err = execute(t, "--db", db, "llm", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "No LLM usage recorded yet.")

	withStore(t, db, func(_ store.KV, events store.EventRepo) {
		ctx := context.Background()
		require.NoError(t, events.AppendLLMRequest(ctx, store.LLMRequestEventData{
			Provider: "openai", Model: "gpt-4o-mini", Purpose: "question-generation",
			InputTokens: 900, OutputTokens: 400, LatencyMs: 2000, Success: true,
			RequestBody: "[user]\nRead the passage", ResponseBody: `{"questions":[]}`,
		}))
		require.NoError(t, events.AppendLLMRequest(ctx, store.LLMRequestEventData{
			Provider: "openai", Model: "gpt-4o-mini", Purpose: "answer-grading",
			InputTokens: 100, OutputTokens: 20, LatencyMs: 400, Success: false,
			ErrorMessage: "LLM provider unavailable",
		}))
	})

	out, err = execute(t, "--db", db, "llm", "list", "--purpose", "answer-grading")
	require.NoError(t, err)
	assert.Contains(t, out, "answer-grading")
	assert.NotContains(t, out, "question-generation")
	assert.Contains(t, out, "✗")

	out, err = execute(t, "--db", db, "llm", "view", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Purpose:   question-generation")
	assert.Contains(t, out, `{"questions":[]}`)
	assert.Contains(t, out, "REQUEST")

	out, err = execute(t, "--db", db, "llm", "view", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Error:     LLM provider unavailable")
	assert.Contains(t, out, "(not captured)")

	_, err = execute(t, "--db", db, "llm", "view", "99")
	assert.ErrorContains(t, err, "event 99 not found")

	_, err = execute(t, "--db", db, "llm", "view", "abc")
	assert.ErrorContains(t, err, "invalid ID")

	out, err = execute(t, "--db", db, "llm", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "1420")
}

func TestConfigInit(t *testing.T) {
	testEnv(t)
	p := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(t, "--config", p, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, p+"\n", out)

	out, err = execute(t, "--config", p, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "policy: accept-answer")

	_, err = execute(t, "--config", p, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "--config", p, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
