// Package tree reads the day/content-block subtree beneath a campaign and
// builds the batch operations that rewrite it. Writes never go through this
// package directly: the subtree is only ever mutated via batch.Writer, so
// every rewrite honors the per-transaction operation ceiling.
package tree

import (
	"context"

	"github.com/mediaplanhq/campaignstore/internal/server/models"
)

type Repository interface {
	// ListDays returns the campaign's days ordered by day number, without
	// their blocks.
	ListDays(ctx context.Context, campaignID string) ([]*models.Day, error)
	// ListBlocks returns one day's blocks ordered by their position column,
	// a stable secondary key assigned at write time.
	ListBlocks(ctx context.Context, campaignID string, day int) ([]*models.ContentBlock, error)
}
