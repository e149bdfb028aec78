package namelocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mediaplanhq/campaignstore/internal/common"
	"github.com/mediaplanhq/campaignstore/internal/dbx"
	"github.com/mediaplanhq/campaignstore/internal/server/models"
)

const timeLayout = time.RFC3339Nano

// PostgresRepository implements lock storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, tenantID, slug string) (*models.NameLock, error) {
	query := `
		SELECT tenant_id, slug, campaign_id, name, locked_at
		FROM campaign_name_locks WHERE tenant_id = $1 AND slug = $2
	`
	var lock models.NameLock
	var lockedAt string
	err := r.db.QueryRowContext(ctx, query, tenantID, slug).Scan(
		&lock.TenantID, &lock.Slug, &lock.CampaignID, &lock.Name, &lockedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if lock.LockedAt, err = time.Parse(timeLayout, lockedAt); err != nil {
		return nil, fmt.Errorf("parse locked_at: %w", err)
	}
	return &lock, nil
}

// Acquire inserts the lock row, or refreshes it when the row already belongs
// to the same campaign. If the slug is held by another campaign no row is
// touched and ErrDuplicateName is returned, so two racing saves for the same
// new name resolve to exactly one winner at commit time.
func (r *PostgresRepository) Acquire(ctx context.Context, lock *models.NameLock) error {
	query := `
		INSERT INTO campaign_name_locks (tenant_id, slug, campaign_id, name, locked_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, slug)
		DO UPDATE SET
			name = EXCLUDED.name,
			locked_at = EXCLUDED.locked_at
			WHERE campaign_name_locks.campaign_id = EXCLUDED.campaign_id
	`
	res, err := r.db.ExecContext(ctx, query,
		lock.TenantID, lock.Slug, lock.CampaignID, lock.Name,
		lock.LockedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrDuplicateName
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) Release(ctx context.Context, tenantID, slug string) error {
	query := `DELETE FROM campaign_name_locks WHERE tenant_id = $1 AND slug = $2`
	if _, err := r.db.ExecContext(ctx, query, tenantID, slug); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ReleaseByCampaign(ctx context.Context, campaignID string) error {
	query := `DELETE FROM campaign_name_locks WHERE campaign_id = $1`
	if _, err := r.db.ExecContext(ctx, query, campaignID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
