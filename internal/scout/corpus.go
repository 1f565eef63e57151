package scout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/theme-scout/internal/core/domain"
	apperrors "github.com/lueurxax/theme-scout/internal/core/errors"
	"github.com/lueurxax/theme-scout/internal/core/ports"
)

const corpusKeyPrefix = "scout:corpus:"

// CorpusCache serves the candidate theme corpus per asset kind from an
// injected TTL cache in front of the template catalog. Keys are scoped per
// kind so different kinds never share entries.
type CorpusCache struct {
	cache   ports.CacheStore
	catalog ports.TemplateCatalog
	ttl     time.Duration
	logger  *zerolog.Logger
}

// NewCorpusCache creates a corpus cache with the given TTL.
func NewCorpusCache(cache ports.CacheStore, catalog ports.TemplateCatalog, ttl time.Duration, logger *zerolog.Logger) *CorpusCache {
	return &CorpusCache{cache: cache, catalog: catalog, ttl: ttl, logger: logger}
}

// Corpus returns the candidate list for an asset kind, hitting the catalog
// only on cache miss. Cache write failures degrade to catalog reads rather
// than failing the job.
func (c *CorpusCache) Corpus(ctx context.Context, assetKind string) ([]domain.CorpusEntry, error) {
	key := corpusKeyPrefix + assetKind

	cached, err := c.cache.Get(ctx, key)
	if err == nil {
		var entries []domain.CorpusEntry
		if err := json.Unmarshal(cached, &entries); err == nil {
			return entries, nil
		}

		c.logger.Warn().Str("key", key).Msg("discarding undecodable corpus cache entry")
	} else if !errors.Is(err, apperrors.ErrCacheNotFound) {
		c.logger.Warn().Err(err).Str("key", key).Msg("corpus cache read failed")
	}

	entries, err := c.catalog.ListTemplates(ctx, assetKind)
	if err != nil {
		return nil, fmt.Errorf("list templates for kind %q: %w", assetKind, err)
	}

	if entries == nil {
		entries = []domain.CorpusEntry{}
	}

	payload, err := json.Marshal(entries)
	if err == nil {
		if err := c.cache.Set(ctx, key, payload, c.ttl); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("corpus cache write failed")
		}
	}

	return entries, nil
}
