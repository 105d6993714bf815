package questiongen

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/logger"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/passage"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/store"
)

const setKeyPrefix = "questionset:"

// CachedGenerator keeps the active set for each passage in the KV store,
// so relaunching the app returns the same questions and an in-flight
// checkpoint can be resumed.
type CachedGenerator struct {
	inner Generator
	kv    store.KV
	log   *logger.Logger
}

// NewCached wraps inner with a KV-backed cache.
func NewCached(inner Generator, kv store.KV, log *logger.Logger) *CachedGenerator {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedGenerator{inner: inner, kv: kv, log: log}
}

// Generate returns the cached set for p, generating and caching one when
// none is stored or the stored copy is unreadable.
func (c *CachedGenerator) Generate(ctx context.Context, p *passage.Passage) (Set, error) {
	if set, ok := c.load(ctx, p.ID); ok {
		return set, nil
	}

	set, err := c.inner.Generate(ctx, p)
	if err != nil {
		return Set{}, err
	}

	if data, err := json.Marshal(set); err != nil {
		c.log.Warn("encode question set", "passage", p.ID, "error", err)
	} else if err := c.kv.Set(ctx, setKeyPrefix+p.ID, data); err != nil {
		c.log.Warn("cache question set", "passage", p.ID, "error", err)
	}
	return set, nil
}

// Forget drops the cached set so the next Generate asks for new questions.
func (c *CachedGenerator) Forget(ctx context.Context, passageID string) error {
	return c.kv.Delete(ctx, setKeyPrefix+passageID)
}

// Cached returns the stored set for passageID without generating one.
func (c *CachedGenerator) Cached(ctx context.Context, passageID string) (Set, bool) {
	return c.load(ctx, passageID)
}

func (c *CachedGenerator) load(ctx context.Context, passageID string) (Set, bool) {
	data, err := c.kv.Get(ctx, setKeyPrefix+passageID)
	if errors.Is(err, store.ErrNotFound) {
		return Set{}, false
	}
	if err != nil {
		c.log.Warn("read cached question set", "passage", passageID, "error", err)
		return Set{}, false
	}

	var set Set
	if err := json.Unmarshal(data, &set); err != nil || set.Len() == 0 {
		c.log.Warn("discarding unreadable question set", "passage", passageID, "error", err)
		return Set{}, false
	}
	return set, true
}
