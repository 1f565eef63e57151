package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/theme-scout/internal/core/domain"
)

// CreateSuggestion inserts one draft suggestion and returns the generated ID.
func (db *DB) CreateSuggestion(ctx context.Context, s *domain.SuggestedTheme) (string, error) {
	evidence := s.Evidence
	if evidence == nil {
		evidence = []string{}
	}

	var id pgtype.UUID

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO suggested_themes (asset_id, name, evidence, relevance_score, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, toUUID(s.AssetID), SanitizeUTF8(s.Name), evidence, s.RelevanceScore, domain.SuggestionStatusDraft).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create suggestion: %w", err)
	}

	return fromUUID(id), nil
}

// ListSuggestionsByAsset returns suggestions for an asset, newest first.
// Read path for the review side; the scout pipeline only inserts.
func (db *DB) ListSuggestionsByAsset(ctx context.Context, assetID string) ([]domain.SuggestedTheme, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, asset_id, name, evidence, relevance_score, status, created_at, updated_at
		FROM suggested_themes
		WHERE asset_id = $1
		ORDER BY created_at DESC
	`, toUUID(assetID))
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []domain.SuggestedTheme

	for rows.Next() {
		var (
			s         domain.SuggestedTheme
			id        pgtype.UUID
			aid       pgtype.UUID
			createdAt pgtype.Timestamptz
			updatedAt pgtype.Timestamptz
		)

		if err := rows.Scan(&id, &aid, &s.Name, &s.Evidence, &s.RelevanceScore, &s.Status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}

		s.ID = fromUUID(id)
		s.AssetID = fromUUID(aid)
		s.CreatedAt = fromTimestamptz(createdAt)
		s.UpdatedAt = fromTimestamptz(updatedAt)

		suggestions = append(suggestions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}

	return suggestions, nil
}
