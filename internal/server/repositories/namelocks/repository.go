// Package namelocks persists the per-(tenant, slug) uniqueness records that
// act as distributed locks on campaign names. All three operations are meant
// to run inside the same transaction as the campaign scalar write; the
// transaction's read-then-write isolation is what makes the lock effective.
package namelocks

import (
	"context"

	"github.com/mediaplanhq/campaignstore/internal/server/models"
)

type Repository interface {
	// Get returns the lock for (tenantID, slug) or common.ErrNotFound.
	Get(ctx context.Context, tenantID, slug string) (*models.NameLock, error)
	// Acquire writes the lock, or refreshes it when lock.CampaignID already
	// owns the slug. Returns common.ErrDuplicateName when another campaign
	// holds it.
	Acquire(ctx context.Context, lock *models.NameLock) error
	// Release removes the lock row. Releasing a missing lock is not an error.
	Release(ctx context.Context, tenantID, slug string) error
	// ReleaseByCampaign removes every lock owned by the campaign; used by
	// campaign delete, where the stored name may no longer match the slug.
	ReleaseByCampaign(ctx context.Context, campaignID string) error
}
