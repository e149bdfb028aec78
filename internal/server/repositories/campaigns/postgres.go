package campaigns

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mediaplanhq/campaignstore/internal/common"
	"github.com/mediaplanhq/campaignstore/internal/dbx"
	"github.com/mediaplanhq/campaignstore/internal/server/models"
)

// timeLayout is how timestamps are stored in their TEXT columns.
const timeLayout = time.RFC3339Nano

// PostgresRepository implements campaign scalar storage over a dbx.DBTX
// (*sql.DB or *sql.Tx). The SQL sticks to the dialect subset shared by
// PostgreSQL and SQLite so the same repository backs tests.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Campaign, error) {
	query := `
		SELECT id, tenant_id, name, original_prompt, character_config,
		       created_at, created_by, updated_at, updated_by
		FROM campaigns WHERE id = $1
	`
	var c models.Campaign
	var config, createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.TenantID, &c.Name, &c.OriginalPrompt, &config,
		&createdAt, &c.CreatedBy, &updatedAt, &c.UpdatedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if c.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if c.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if config != "" {
		if err := json.Unmarshal([]byte(config), &c.CharacterConfig); err != nil {
			return nil, fmt.Errorf("parse character_config: %w", err)
		}
	}
	return &c, nil
}

func (r *PostgresRepository) ListRefsByTenant(ctx context.Context, tenantID string) ([]Ref, error) {
	query := `SELECT id, name FROM campaigns WHERE tenant_id = $1`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []Ref
	for rows.Next() {
		var ref Ref
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		result = append(result, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, c *models.Campaign) error {
	config := ""
	if c.CharacterConfig != nil {
		raw, err := json.Marshal(c.CharacterConfig)
		if err != nil {
			return fmt.Errorf("marshal character_config: %w", err)
		}
		config = string(raw)
	}

	// Merge semantics: created_at/created_by stick once written.
	query := `
		INSERT INTO campaigns (id, tenant_id, name, original_prompt, character_config,
		                       created_at, created_by, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			original_prompt = EXCLUDED.original_prompt,
			character_config = EXCLUDED.character_config,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.TenantID, c.Name, c.OriginalPrompt, config,
		c.CreatedAt.UTC().Format(timeLayout), c.CreatedBy,
		c.UpdatedAt.UTC().Format(timeLayout), c.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
