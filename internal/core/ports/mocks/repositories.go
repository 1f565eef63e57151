package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/lueurxax/theme-scout/internal/core/domain"
)

// AssetRepository is a thread-safe in-memory implementation of ports.AssetRepository.
type AssetRepository struct {
	mu     sync.RWMutex
	assets map[string]*domain.Asset
	calls  int

	// GetFn allows overriding GetAssetWithContentTree behavior.
	GetFn func(ctx context.Context, assetID string) (*domain.Asset, error)
}

// NewAssetRepository creates a new mock asset repository.
func NewAssetRepository() *AssetRepository {
	return &AssetRepository{assets: make(map[string]*domain.Asset)}
}

// Put stores an asset for later retrieval.
func (r *AssetRepository) Put(a *domain.Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.assets[a.ID] = a
}

// GetAssetWithContentTree returns the stored asset or nil.
func (r *AssetRepository) GetAssetWithContentTree(ctx context.Context, assetID string) (*domain.Asset, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	if r.GetFn != nil {
		return r.GetFn(ctx, assetID)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.assets[assetID], nil
}

// Calls returns how many times GetAssetWithContentTree was invoked.
func (r *AssetRepository) Calls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.calls
}

// TemplateCatalog is a thread-safe in-memory implementation of ports.TemplateCatalog.
type TemplateCatalog struct {
	mu      sync.RWMutex
	byKind  map[string][]domain.CorpusEntry
	calls   int
	listErr error
}

// NewTemplateCatalog creates a new mock template catalog.
func NewTemplateCatalog() *TemplateCatalog {
	return &TemplateCatalog{byKind: make(map[string][]domain.CorpusEntry)}
}

// SetTemplates sets the catalog entries for an asset kind.
func (c *TemplateCatalog) SetTemplates(kind string, entries []domain.CorpusEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byKind[kind] = entries
}

// SetError makes ListTemplates fail with err.
func (c *TemplateCatalog) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listErr = err
}

// ListTemplates returns the entries registered for the kind.
func (c *TemplateCatalog) ListTemplates(_ context.Context, assetKind string) ([]domain.CorpusEntry, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.listErr != nil {
		return nil, c.listErr
	}

	return c.byKind[assetKind], nil
}

// Calls returns how many times ListTemplates was invoked.
func (c *TemplateCatalog) Calls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.calls
}

// SuggestionRepository is a thread-safe in-memory implementation of ports.SuggestionRepository.
type SuggestionRepository struct {
	mu        sync.RWMutex
	created   []*domain.SuggestedTheme
	createErr error
	nextID    int
}

// NewSuggestionRepository creates a new mock suggestion repository.
func NewSuggestionRepository() *SuggestionRepository {
	return &SuggestionRepository{}
}

// SetError makes CreateSuggestion fail with err.
func (r *SuggestionRepository) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.createErr = err
}

// CreateSuggestion records the suggestion and returns a generated ID.
func (r *SuggestionRepository) CreateSuggestion(_ context.Context, s *domain.SuggestedTheme) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return "", r.createErr
	}

	r.nextID++
	id := fmt.Sprintf("suggestion-%d", r.nextID)

	stored := *s
	stored.ID = id
	r.created = append(r.created, &stored)

	return id, nil
}

// Created returns all suggestions written so far, in insertion order.
func (r *SuggestionRepository) Created() []*domain.SuggestedTheme {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.SuggestedTheme, len(r.created))
	copy(out, r.created)

	return out
}
