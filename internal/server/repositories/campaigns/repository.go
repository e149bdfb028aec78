// Package campaigns persists the scalar fields of campaign documents.
package campaigns

import (
	"context"

	"github.com/mediaplanhq/campaignstore/internal/server/models"
)

// Ref is a lightweight (id, name) projection used by the legacy duplicate
// scan for campaigns that predate the name-lock table.
type Ref struct {
	ID   string
	Name string
}

// Repository is the campaign scalar store. Implementations are bound to a
// dbx.DBTX, so the same repository code runs standalone or inside WithTx.
type Repository interface {
	// Get returns the campaign or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Campaign, error)
	// ListRefsByTenant returns (id, name) pairs for every campaign in the tenant.
	ListRefsByTenant(ctx context.Context, tenantID string) ([]Ref, error)
	// Upsert writes the campaign with merge semantics: on conflict the
	// created_at/created_by columns keep their original values.
	Upsert(ctx context.Context, c *models.Campaign) error
	// Delete removes the campaign row. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error
}
