// Package checkpoint persists in-flight session progress keyed by the
// identity of the active question set. Persistence is best-effort: any
// read, write or decode failure is logged and behaves like an absent
// checkpoint.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/logger"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/store"
)

// Version is the current record format.
const Version = 1

const keyPrefix = "checkpoint:"

// Answer is one persisted answer record.
type Answer struct {
	QuestionID    string    `json:"questionId"`
	SubmittedText string    `json:"submittedText"`
	Correct       bool      `json:"verdict"`
	Feedback      string    `json:"feedback,omitempty"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// Record is the persisted session state.
type Record struct {
	Key         string    `json:"key"`
	AnswerLog   []Answer  `json:"answerLog"`
	ActiveIndex int       `json:"activeIndex"`
	Phase       string    `json:"phase"`
	Complete    bool      `json:"isComplete"`
	SavedAt     time.Time `json:"savedAt"`
	Version     int       `json:"version"`
}

// Store saves and restores Records through a KV store.
type Store struct {
	kv  store.KV
	log *logger.Logger
	now func() time.Time
}

// New creates a checkpoint store. A nil logger discards output.
func New(kv store.KV, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{kv: kv, log: log, now: time.Now}
}

// Save writes rec under key, stamping Key, SavedAt and Version. Failures
// are logged and swallowed.
func (s *Store) Save(ctx context.Context, key string, rec Record) {
	rec.Key = key
	rec.SavedAt = s.now().UTC()
	rec.Version = Version
	if rec.AnswerLog == nil {
		rec.AnswerLog = []Answer{}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		s.log.Warn("encode checkpoint", "key", key, "error", err)
		return
	}
	if err := s.kv.Set(ctx, keyPrefix+key, data); err != nil {
		s.log.Warn("write checkpoint", "key", key, "error", err)
	}
}

// Load returns the checkpoint for key. The second result is false when
// nothing usable is stored: missing, unreadable, from another format
// version, or saved under a different key.
func (s *Store) Load(ctx context.Context, key string) (Record, bool) {
	data, err := s.kv.Get(ctx, keyPrefix+key)
	if errors.Is(err, store.ErrNotFound) {
		return Record{}, false
	}
	if err != nil {
		s.log.Warn("read checkpoint", "key", key, "error", err)
		return Record{}, false
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.log.Warn("discarding corrupt checkpoint", "key", key, "error", err)
		return Record{}, false
	}
	if err := rec.check(key); err != nil {
		s.log.Warn("discarding checkpoint", "key", key, "error", err)
		return Record{}, false
	}
	return rec, true
}

// Clear removes the checkpoint for key.
func (s *Store) Clear(ctx context.Context, key string) {
	if err := s.kv.Delete(ctx, keyPrefix+key); err != nil {
		s.log.Warn("clear checkpoint", "key", key, "error", err)
	}
}

// ClearAll removes every checkpoint and reports how many were removed.
func (s *Store) ClearAll(ctx context.Context) (int, error) {
	keys, err := s.kv.Keys(ctx, keyPrefix)
	if err != nil {
		return 0, fmt.Errorf("list checkpoints: %w", err)
	}
	n := 0
	for _, k := range keys {
		if err := s.kv.Delete(ctx, k); err != nil {
			return n, fmt.Errorf("delete %s: %w", k, err)
		}
		n++
	}
	return n, nil
}

func (r Record) check(key string) error {
	switch {
	case r.Version != Version:
		return fmt.Errorf("unsupported version %d", r.Version)
	case r.Key != key:
		return fmt.Errorf("identity mismatch")
	case r.ActiveIndex < 0:
		return fmt.Errorf("negative active index %d", r.ActiveIndex)
	}
	return nil
}
