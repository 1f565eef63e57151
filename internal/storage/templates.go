package db

import (
	"context"
	"fmt"

	"github.com/lueurxax/theme-scout/internal/core/domain"
)

// ListTemplates returns all theme templates for an asset kind, with their
// keyword lists. Templates without keyword metadata come back with an empty
// list and are still scoreable via the title match.
func (db *DB) ListTemplates(ctx context.Context, assetKind string) ([]domain.CorpusEntry, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT ON (name) name, keywords
		FROM theme_templates
		WHERE asset_kind = $1
		ORDER BY name
	`, assetKind)
	if err != nil {
		return nil, fmt.Errorf("list theme templates: %w", err)
	}
	defer rows.Close()

	var entries []domain.CorpusEntry

	for rows.Next() {
		var entry domain.CorpusEntry

		if err := rows.Scan(&entry.Title, &entry.Keywords); err != nil {
			return nil, fmt.Errorf("scan theme template: %w", err)
		}

		if entry.Keywords == nil {
			entry.Keywords = []string{}
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate theme templates: %w", err)
	}

	return entries, nil
}

// UpsertTemplate inserts or updates a catalog entry. Used by operator tooling.
func (db *DB) UpsertTemplate(ctx context.Context, assetKind, name string, keywords []string) error {
	if keywords == nil {
		keywords = []string{}
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO theme_templates (asset_kind, name, keywords)
		VALUES ($1, $2, $3)
		ON CONFLICT (asset_kind, name) DO UPDATE SET keywords = EXCLUDED.keywords
	`, assetKind, SanitizeUTF8(name), keywords)
	if err != nil {
		return fmt.Errorf("upsert theme template: %w", err)
	}

	return nil
}
