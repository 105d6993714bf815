package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/store"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, total, want int
	}{
		{4, 6, 67},
		{6, 6, 100},
		{0, 6, 0},
		{1, 3, 33},
		{1, 8, 13},
		{3, 0, 0},
	}
	for _, tc := range tests {
		if got := Percentage(tc.score, tc.total); got != tc.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tc.score, tc.total, got, tc.want)
		}
	}
}

func TestNewSummary(t *testing.T) {
	at := time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC)
	s := NewSummary(4, 6, at)
	assert.Equal(t, AttemptSummary{CompletedAt: at, Score: 4, Total: 6, Percentage: 67}, s)

	assert.Equal(t, 6, NewSummary(9, 6, at).Score)
	assert.Equal(t, 0, NewSummary(-1, 6, at).Score)
}

func TestAppendListRecent(t *testing.T) {
	ctx := context.Background()
	h := New(store.NewMemory(), nil)

	base := time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC)
	for i, score := range []int{2, 6, 4} {
		require.NoError(t, h.Append(ctx, NewSummary(score, 6, base.Add(time.Duration(i)*time.Hour))))
	}

	list := h.List(ctx)
	require.Len(t, list, 3)
	assert.Equal(t, []int{33, 100, 67}, percentages(list))
	assert.Equal(t, []int{67, 100, 33}, percentages(h.Recent(ctx)))

	// Recent must not reorder what List returns next time.
	assert.Equal(t, []int{33, 100, 67}, percentages(h.List(ctx)))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	h := New(store.NewMemory(), nil)

	assert.Equal(t, Stats{}, h.Stats(ctx))

	for _, score := range []int{4, 6, 3} {
		require.NoError(t, h.Append(ctx, NewSummary(score, 6, time.Now())))
	}
	// 67, 100, 50 -> mean 72.33
	assert.Equal(t, Stats{Count: 3, Best: 100, Average: 72}, h.Stats(ctx))
}

func TestSummarize_RoundsHalfUp(t *testing.T) {
	st := Summarize([]AttemptSummary{{Percentage: 50}, {Percentage: 67}})
	assert.Equal(t, 59, st.Average) // 58.5
}

func TestCorruptHistory(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, attemptsKey, []byte(`{not a list`)))
	h := New(kv, nil)

	assert.Empty(t, h.List(ctx))
	assert.Equal(t, Stats{}, h.Stats(ctx))

	require.NoError(t, h.Append(ctx, NewSummary(5, 6, time.Now())))
	assert.Len(t, h.List(ctx), 1, "corrupt payload is overwritten on append")
}

// flakyKV fails the next Get when failGet is set.
type flakyKV struct {
	*store.MemoryKV
	failGet bool
}

func (k *flakyKV) Get(ctx context.Context, key string) ([]byte, error) {
	if k.failGet {
		k.failGet = false
		return nil, errors.New("database is locked")
	}
	return k.MemoryKV.Get(ctx, key)
}

func TestAppend_ReadFailureKeepsHistory(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{MemoryKV: store.NewMemory()}
	h := New(kv, nil)
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		require.NoError(t, h.Append(ctx, NewSummary(i, 6, base.Add(time.Duration(i)*time.Hour))))
	}

	kv.failGet = true
	err := h.Append(ctx, NewSummary(6, 6, base.Add(4*time.Hour)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read history")
	assert.Contains(t, err.Error(), "database is locked")

	assert.Equal(t, []int{17, 33, 50}, percentages(h.List(ctx)), "earlier attempts survive")

	require.NoError(t, h.Append(ctx, NewSummary(6, 6, base.Add(5*time.Hour))))
	assert.Len(t, h.List(ctx), 4)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	h := New(store.NewMemory(), nil)
	require.NoError(t, h.Append(ctx, NewSummary(1, 6, time.Now())))

	require.NoError(t, h.Clear(ctx))
	assert.Empty(t, h.List(ctx))
}

func percentages(list []AttemptSummary) []int {
	out := make([]int, len(list))
	for i, a := range list {
		out[i] = a.Percentage
	}
	return out
}
