// Package services implements the campaign persistence engine: save, load,
// and delete of hierarchical campaign documents with per-tenant name
// uniqueness and optimistic-concurrency conflict detection.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mediaplanhq/campaignstore/internal/common"
	"github.com/mediaplanhq/campaignstore/internal/dbx"
	"github.com/mediaplanhq/campaignstore/internal/logging"
	"github.com/mediaplanhq/campaignstore/internal/server/batch"
	"github.com/mediaplanhq/campaignstore/internal/server/media"
	"github.com/mediaplanhq/campaignstore/internal/server/models"
	"github.com/mediaplanhq/campaignstore/internal/server/repositories/campaigns"
	"github.com/mediaplanhq/campaignstore/internal/server/repositories/namelocks"
	"github.com/mediaplanhq/campaignstore/internal/server/repositories/tree"
	"github.com/mediaplanhq/campaignstore/internal/server/storage"
	"github.com/mediaplanhq/campaignstore/internal/slugx"
)

// SaveInput carries one save request. An empty CampaignID creates a new
// campaign; ClientObservedUpdatedAt, when set, is the version the caller
// last loaded and arms conflict detection.
type SaveInput struct {
	TenantID                string
	ActorID                 string
	CampaignID              string
	Name                    string
	Days                    []*models.Day
	ClientObservedUpdatedAt *time.Time
	OriginalPrompt          string
	CharacterConfig         map[string]any
}

// SaveResult is returned on a successful save. UpdatedAt is the committed
// version the caller should present on its next save.
type SaveResult struct {
	CampaignID string
	UpdatedAt  time.Time
}

// LoadResult is the fully assembled campaign tree plus audit metadata.
type LoadResult struct {
	Campaign *models.Campaign
	Days     []*models.Day
}

// CampaignService composes the uniqueness/version guard transaction, the
// asset materializer, and the batched subtree rewrite into the public
// Save/Load/Delete operations.
type CampaignService struct {
	db           *sql.DB
	store        storage.ObjectStore
	materializer *media.Materializer
	batch        *batch.Writer
	log          logging.Logger

	now   func() time.Time
	newID func() string
}

func NewCampaignService(db *sql.DB, store storage.ObjectStore, log logging.Logger, uploadGroupSize, batchChunkSize int) *CampaignService {
	return &CampaignService{
		db:           db,
		store:        store,
		materializer: media.NewMaterializer(store, uploadGroupSize),
		batch:        batch.NewWriter(db, batchChunkSize),
		log:          log,
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
	}
}

// Save persists the campaign scalars and replaces its day/block subtree.
//
// The uniqueness and version checks run inside a single transaction, which
// is the only serialization point of the protocol: of two racing saves
// competing for the same name or campaign, at most one commits. Everything
// after that transaction (uploads, subtree rewrite) runs unserialized.
// A failure during upload leaves the previously persisted subtree untouched;
// a failure between rewrite chunks can leave the subtree partially applied
// and is surfaced to the caller for retry.
func (s *CampaignService) Save(ctx context.Context, in SaveInput) (*SaveResult, error) {
	name := strings.TrimSpace(in.Name)
	slug := slugx.Make(name)
	if slug == "" {
		return nil, fmt.Errorf("campaign name is required")
	}

	campaignID := in.CampaignID
	if campaignID == "" {
		campaignID = s.newID()
	}

	now := s.now().UTC()
	existed := false

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		campaignRepo := campaigns.NewPostgresRepository(tx)
		lockRepo := namelocks.NewPostgresRepository(tx)

		lock, err := lockRepo.Get(ctx, in.TenantID, slug)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		if lock != nil && lock.CampaignID != campaignID {
			return common.ErrDuplicateName
		}
		// Fallback scan for campaigns that predate lock records.
		refs, err := campaignRepo.ListRefsByTenant(ctx, in.TenantID)
		if err != nil {
			return err
		}
		for _, ref := range refs {
			if ref.ID != campaignID && slugx.Make(ref.Name) == slug {
				return common.ErrDuplicateName
			}
		}

		c := &models.Campaign{
			ID:              campaignID,
			TenantID:        in.TenantID,
			Name:            name,
			OriginalPrompt:  in.OriginalPrompt,
			CharacterConfig: in.CharacterConfig,
			CreatedAt:       now,
			CreatedBy:       in.ActorID,
			UpdatedAt:       now,
			UpdatedBy:       in.ActorID,
		}

		oldSlug := ""
		if in.CampaignID != "" {
			existing, err := campaignRepo.Get(ctx, campaignID)
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}
			if existing != nil {
				existed = true
				if existing.TenantID != in.TenantID {
					return common.ErrAccessDenied
				}
				// Same-actor re-saves never conflict; this tolerates rapid
				// auto-save retries from one session.
				if in.ClientObservedUpdatedAt != nil &&
					existing.UpdatedBy != in.ActorID &&
					existing.UpdatedAt.After(*in.ClientObservedUpdatedAt) {
					return &common.ConflictError{UpdatedBy: existing.UpdatedBy, UpdatedAt: existing.UpdatedAt}
				}
				if prev := slugx.Make(existing.Name); prev != slug {
					oldSlug = prev
				}
				c.CreatedAt = existing.CreatedAt
				c.CreatedBy = existing.CreatedBy
				if c.OriginalPrompt == "" {
					c.OriginalPrompt = existing.OriginalPrompt
				}
				if c.CharacterConfig == nil {
					c.CharacterConfig = existing.CharacterConfig
				}
			}
		}

		if err := lockRepo.Acquire(ctx, &models.NameLock{
			TenantID:   in.TenantID,
			Slug:       slug,
			CampaignID: campaignID,
			Name:       name,
			LockedAt:   now,
		}); err != nil {
			return err
		}
		if oldSlug != "" {
			if err := lockRepo.Release(ctx, in.TenantID, oldSlug); err != nil {
				return err
			}
		}

		return campaignRepo.Upsert(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	if err := s.materializer.Resolve(ctx, campaignID, in.Days); err != nil {
		return nil, err
	}

	if err := s.syncTree(ctx, campaignID, in.Days, existed); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "campaign saved", "campaignId", campaignID, "tenantId", in.TenantID, "days", len(in.Days))
	return &SaveResult{CampaignID: campaignID, UpdatedAt: now}, nil
}

// syncTree replaces the persisted subtree with days: delete worklist first,
// then write worklist, each committed through the batch writer. New
// campaigns skip the delete phase.
func (s *CampaignService) syncTree(ctx context.Context, campaignID string, days []*models.Day, existed bool) error {
	treeRepo := tree.NewPostgresRepository(s.db)

	if existed {
		existingDays, blocksByDay, err := s.readSubtree(ctx, treeRepo, campaignID)
		if err != nil {
			return err
		}
		var deletes []batch.Op
		for i, d := range existingDays {
			for _, b := range blocksByDay[i] {
				deletes = append(deletes, tree.DeleteBlockOp(campaignID, d.Day, b.ID))
			}
			deletes = append(deletes, tree.DeleteDayOp(campaignID, d.Day))
		}
		if err := s.batch.Apply(ctx, deletes); err != nil {
			return fmt.Errorf("delete existing subtree: %w", err)
		}
	}

	var writes []batch.Op
	for _, d := range days {
		writes = append(writes, tree.InsertDayOp(campaignID, d))
		for i, b := range d.Blocks {
			if b.ID == "" {
				b.ID = s.newID()
			}
			op, err := tree.InsertBlockOp(campaignID, d.Day, i, b)
			if err != nil {
				return err
			}
			writes = append(writes, op)
		}
	}
	if err := s.batch.Apply(ctx, writes); err != nil {
		return fmt.Errorf("write subtree: %w", err)
	}
	return nil
}

// readSubtree lists the campaign's days and, in parallel, each day's blocks.
func (s *CampaignService) readSubtree(ctx context.Context, treeRepo tree.Repository, campaignID string) ([]*models.Day, [][]*models.ContentBlock, error) {
	days, err := treeRepo.ListDays(ctx, campaignID)
	if err != nil {
		return nil, nil, err
	}

	blocksByDay := make([][]*models.ContentBlock, len(days))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range days {
		g.Go(func() error {
			blocks, err := treeRepo.ListBlocks(gctx, campaignID, d.Day)
			if err != nil {
				return err
			}
			blocksByDay[i] = blocks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return days, blocksByDay, nil
}

// Load reads the campaign scalars and assembles its full tree. Days come
// back sorted by day number regardless of read order.
func (s *CampaignService) Load(ctx context.Context, campaignID string) (*LoadResult, error) {
	campaignRepo := campaigns.NewPostgresRepository(s.db)
	c, err := campaignRepo.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	treeRepo := tree.NewPostgresRepository(s.db)
	days, blocksByDay, err := s.readSubtree(ctx, treeRepo, campaignID)
	if err != nil {
		return nil, err
	}
	for i, d := range days {
		d.Blocks = blocksByDay[i]
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })

	return &LoadResult{Campaign: c, Days: days}, nil
}

// Delete removes the subtree, the name lock, the campaign row, and,
// best-effort, every media object stored under the campaign's namespace.
// Lock and media cleanup failures are logged, not returned: they are
// secondary to the primary document state.
func (s *CampaignService) Delete(ctx context.Context, campaignID string) error {
	campaignRepo := campaigns.NewPostgresRepository(s.db)
	if _, err := campaignRepo.Get(ctx, campaignID); err != nil {
		return err
	}

	treeRepo := tree.NewPostgresRepository(s.db)
	days, blocksByDay, err := s.readSubtree(ctx, treeRepo, campaignID)
	if err != nil {
		return err
	}
	var deletes []batch.Op
	for i, d := range days {
		for _, b := range blocksByDay[i] {
			deletes = append(deletes, tree.DeleteBlockOp(campaignID, d.Day, b.ID))
		}
		deletes = append(deletes, tree.DeleteDayOp(campaignID, d.Day))
	}
	if err := s.batch.Apply(ctx, deletes); err != nil {
		return fmt.Errorf("delete subtree: %w", err)
	}

	lockRepo := namelocks.NewPostgresRepository(s.db)
	if err := lockRepo.ReleaseByCampaign(ctx, campaignID); err != nil {
		s.log.Warn(ctx, "failed to release name lock", "campaignId", campaignID, "error", err)
	}

	if err := campaignRepo.Delete(ctx, campaignID); err != nil {
		return err
	}

	keys, err := s.store.List(ctx, media.KeyPrefix(campaignID))
	if err != nil {
		s.log.Warn(ctx, "failed to list campaign media for cleanup", "campaignId", campaignID, "error", err)
		return nil
	}
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn(ctx, "failed to delete media object", "key", key, "error", err)
		}
	}

	s.log.Info(ctx, "campaign deleted", "campaignId", campaignID)
	return nil
}
