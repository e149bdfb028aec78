package tree

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mediaplanhq/campaignstore/internal/dbx"
	"github.com/mediaplanhq/campaignstore/internal/server/models"
)

// PostgresRepository implements subtree reads over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListDays(ctx context.Context, campaignID string) ([]*models.Day, error) {
	query := `SELECT day, date FROM campaign_days WHERE campaign_id = $1 ORDER BY day`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Day
	for rows.Next() {
		var d models.Day
		if err := rows.Scan(&d.Day, &d.Date); err != nil {
			return nil, err
		}
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ListBlocks(ctx context.Context, campaignID string, day int) ([]*models.ContentBlock, error) {
	query := `
		SELECT id, content_type, fields, media_ref
		FROM content_blocks WHERE campaign_id = $1 AND day = $2
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, campaignID, day)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ContentBlock
	for rows.Next() {
		var b models.ContentBlock
		var fields string
		if err := rows.Scan(&b.ID, &b.ContentType, &fields, &b.MediaRef); err != nil {
			return nil, err
		}
		if fields != "" {
			if err := json.Unmarshal([]byte(fields), &b.Fields); err != nil {
				return nil, fmt.Errorf("parse block %s fields: %w", b.ID, err)
			}
		}
		result = append(result, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
