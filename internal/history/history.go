// Package history keeps the append-only record of completed attempts and
// derives aggregate statistics from it on read.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/logger"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/store"
)

const attemptsKey = "history:attempts"

// AttemptSummary is the result of one completed session. It is never
// modified after it is appended.
type AttemptSummary struct {
	CompletedAt time.Time `json:"completedAt"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percentage  int       `json:"percentage"`
	SessionID   string    `json:"sessionId,omitempty"`
}

// NewSummary builds a summary with the rounded percentage filled in.
// Score is clamped into [0, total].
func NewSummary(score, total int, completedAt time.Time) AttemptSummary {
	if score < 0 {
		score = 0
	}
	if score > total {
		score = total
	}
	return AttemptSummary{
		CompletedAt: completedAt,
		Score:       score,
		Total:       total,
		Percentage:  Percentage(score, total),
	}
}

// Percentage is round(100 * score / total), or 0 for an empty total.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}

// Stats aggregates the history.
type Stats struct {
	Count   int `json:"count"`
	Best    int `json:"best"`
	Average int `json:"average"`
}

// Store appends to and reads the attempt history.
type Store struct {
	kv  store.KV
	log *logger.Logger
}

// New creates a history store. A nil logger discards output.
func New(kv store.KV, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{kv: kv, log: log}
}

// Append adds s to the end of the history. A corrupt stored history is
// replaced; a failed read returns an error and writes nothing.
func (h *Store) Append(ctx context.Context, s AttemptSummary) error {
	var list []AttemptSummary
	data, err := h.kv.Get(ctx, attemptsKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return fmt.Errorf("read history: %w", err)
	default:
		if err := json.Unmarshal(data, &list); err != nil {
			h.log.Warn("replacing corrupt history", "error", err)
			list = nil
		}
	}
	list = append(list, s)

	data, err = json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := h.kv.Set(ctx, attemptsKey, data); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// List returns the history oldest first.
func (h *Store) List(ctx context.Context) []AttemptSummary {
	return h.read(ctx)
}

// Recent returns the history most recent first.
func (h *Store) Recent(ctx context.Context) []AttemptSummary {
	list := h.read(ctx)
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list
}

// Clear deletes the whole history.
func (h *Store) Clear(ctx context.Context) error {
	if err := h.kv.Delete(ctx, attemptsKey); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Stats computes count, best and rounded average percentage.
func (h *Store) Stats(ctx context.Context) Stats {
	return Summarize(h.read(ctx))
}

// Summarize computes Stats over list.
func Summarize(list []AttemptSummary) Stats {
	if len(list) == 0 {
		return Stats{}
	}
	st := Stats{Count: len(list)}
	sum := 0
	for _, a := range list {
		if a.Percentage > st.Best {
			st.Best = a.Percentage
		}
		sum += a.Percentage
	}
	st.Average = int(math.Round(float64(sum) / float64(len(list))))
	return st
}

func (h *Store) read(ctx context.Context) []AttemptSummary {
	data, err := h.kv.Get(ctx, attemptsKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		h.log.Warn("read history", "error", err)
		return nil
	}

	var list []AttemptSummary
	if err := json.Unmarshal(data, &list); err != nil {
		h.log.Warn("discarding corrupt history", "error", err)
		return nil
	}
	return list
}
