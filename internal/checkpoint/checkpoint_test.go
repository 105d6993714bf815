package checkpoint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/store"
)

const setKey = "q1-aaaaaa|q2-bbbbbb|q3-cccccc"

func newTestStore(kv store.KV) *Store {
	s := New(kv, nil)
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(store.NewMemory())

	rec := Record{
		AnswerLog: []Answer{{
			QuestionID:    "q1-aaaaaa",
			SubmittedText: "drones",
			Correct:       true,
			Feedback:      "Right.",
			SubmittedAt:   time.Date(2025, 3, 1, 11, 59, 0, 0, time.UTC),
		}},
		ActiveIndex: 0,
		Phase:       "feedback",
	}
	s.Save(ctx, setKey, rec)

	got, ok := s.Load(ctx, setKey)
	require.True(t, ok)
	assert.Equal(t, setKey, got.Key)
	assert.Equal(t, Version, got.Version)
	assert.Equal(t, "feedback", got.Phase)
	assert.Equal(t, rec.AnswerLog, got.AnswerLog)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), got.SavedAt)
}

func TestLoad_Missing(t *testing.T) {
	_, ok := newTestStore(store.NewMemory()).Load(context.Background(), setKey)
	assert.False(t, ok)
}

func TestLoad_CorruptTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, keyPrefix+setKey, []byte(`{"answerLog": [`)))

	_, ok := newTestStore(kv).Load(ctx, setKey)
	assert.False(t, ok)
}

func TestLoad_RejectsForeignRecords(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	cases := map[string]string{
		"old version":    `{"key":"` + setKey + `","version":0,"phase":"answering"}`,
		"other identity": `{"key":"q1-zzzzzz","version":1,"phase":"answering"}`,
		"negative index": `{"key":"` + setKey + `","version":1,"activeIndex":-1}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, kv.Set(ctx, keyPrefix+setKey, []byte(payload)))
			_, ok := newTestStore(kv).Load(ctx, setKey)
			assert.False(t, ok)
		})
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(store.NewMemory())
	s.Save(ctx, setKey, Record{Phase: "answering"})

	s.Clear(ctx, setKey)
	_, ok := s.Load(ctx, setKey)
	assert.False(t, ok)

	// clearing twice is harmless
	s.Clear(ctx, setKey)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := newTestStore(kv)
	s.Save(ctx, "a", Record{Phase: "answering"})
	s.Save(ctx, "b", Record{Phase: "answering"})
	require.NoError(t, kv.Set(ctx, "history:attempts", []byte(`[]`)))

	n, err := s.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = kv.Get(ctx, "history:attempts")
	assert.NoError(t, err, "non-checkpoint keys survive")
}

type failingKV struct{ store.KV }

func (failingKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk on fire") }
func (failingKV) Set(context.Context, string, []byte) error  { return errors.New("disk on fire") }

func TestBackendFailuresAreAbsorbed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(failingKV{store.NewMemory()})

	s.Save(ctx, setKey, Record{Phase: "answering"})
	_, ok := s.Load(ctx, setKey)
	assert.False(t, ok)
}
