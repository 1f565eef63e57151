package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/theme-scout/internal/core/domain"
)

// GetAssetWithContentTree loads an asset and its full research tree
// (themes, cards, chunks) in stored order. Returns nil when the asset
// does not exist.
func (db *DB) GetAssetWithContentTree(ctx context.Context, assetID string) (*domain.Asset, error) {
	asset, err := db.getAsset(ctx, assetID)
	if err != nil || asset == nil {
		return asset, err
	}

	if err := db.loadThemes(ctx, asset); err != nil {
		return nil, err
	}

	return asset, nil
}

func (db *DB) getAsset(ctx context.Context, assetID string) (*domain.Asset, error) {
	var (
		id   pgtype.UUID
		kind string
		name string
		desc pgtype.Text
	)

	err := db.Pool.QueryRow(ctx, `
		SELECT id, kind, name, description
		FROM assets
		WHERE id = $1
	`, toUUID(assetID)).Scan(&id, &kind, &name, &desc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // nil,nil indicates asset absent
		}

		return nil, fmt.Errorf("get asset: %w", err)
	}

	return &domain.Asset{
		ID:          fromUUID(id),
		Kind:        kind,
		Name:        name,
		Description: fromText(desc),
	}, nil
}

func (db *DB) loadThemes(ctx context.Context, asset *domain.Asset) error {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name
		FROM asset_themes
		WHERE asset_id = $1
		ORDER BY position, created_at
	`, toUUID(asset.ID))
	if err != nil {
		return fmt.Errorf("load asset themes: %w", err)
	}
	defer rows.Close()

	themeIdx := make(map[string]int)

	for rows.Next() {
		var (
			id   pgtype.UUID
			name string
		)

		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("scan asset theme: %w", err)
		}

		themeIdx[fromUUID(id)] = len(asset.Themes)
		asset.Themes = append(asset.Themes, domain.ResearchTheme{ID: fromUUID(id), Name: name})
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate asset themes: %w", err)
	}

	if len(asset.Themes) == 0 {
		return nil
	}

	cardIdx, err := db.loadCards(ctx, asset, themeIdx)
	if err != nil {
		return err
	}

	return db.loadChunks(ctx, asset, themeIdx, cardIdx)
}

// cardRef locates a card inside the asset tree by theme and card position.
type cardRef struct {
	theme int
	card  int
}

func (db *DB) loadCards(ctx context.Context, asset *domain.Asset, themeIdx map[string]int) (map[string]cardRef, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT c.id, c.theme_id, c.title
		FROM theme_cards c
		JOIN asset_themes t ON t.id = c.theme_id
		WHERE t.asset_id = $1
		ORDER BY t.position, t.created_at, c.position, c.created_at
	`, toUUID(asset.ID))
	if err != nil {
		return nil, fmt.Errorf("load theme cards: %w", err)
	}
	defer rows.Close()

	cardIdx := make(map[string]cardRef)

	for rows.Next() {
		var (
			id      pgtype.UUID
			themeID pgtype.UUID
			title   pgtype.Text
		)

		if err := rows.Scan(&id, &themeID, &title); err != nil {
			return nil, fmt.Errorf("scan theme card: %w", err)
		}

		ti, ok := themeIdx[fromUUID(themeID)]
		if !ok {
			continue
		}

		theme := &asset.Themes[ti]
		cardIdx[fromUUID(id)] = cardRef{theme: ti, card: len(theme.Cards)}
		theme.Cards = append(theme.Cards, domain.ResearchCard{ID: fromUUID(id), Title: fromText(title)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate theme cards: %w", err)
	}

	return cardIdx, nil
}

func (db *DB) loadChunks(ctx context.Context, asset *domain.Asset, themeIdx map[string]int, cardIdx map[string]cardRef) error {
	rows, err := db.Pool.Query(ctx, `
		SELECT ch.id, ch.card_id, ch.text
		FROM card_chunks ch
		JOIN theme_cards c ON c.id = ch.card_id
		JOIN asset_themes t ON t.id = c.theme_id
		WHERE t.asset_id = $1
		ORDER BY t.position, t.created_at, c.position, c.created_at, ch.position, ch.created_at
	`, toUUID(asset.ID))
	if err != nil {
		return fmt.Errorf("load card chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     pgtype.UUID
			cardID pgtype.UUID
			text   string
		)

		if err := rows.Scan(&id, &cardID, &text); err != nil {
			return fmt.Errorf("scan card chunk: %w", err)
		}

		ref, ok := cardIdx[fromUUID(cardID)]
		if !ok {
			continue
		}

		card := &asset.Themes[ref.theme].Cards[ref.card]
		card.Chunks = append(card.Chunks, domain.ResearchChunk{ID: fromUUID(id), Text: text})
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate card chunks: %w", err)
	}

	return nil
}
