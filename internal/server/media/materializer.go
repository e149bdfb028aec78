// Package media converts inline media payloads embedded in a campaign tree
// into durable object-storage references before the tree is persisted.
package media

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mediaplanhq/campaignstore/internal/common"
	"github.com/mediaplanhq/campaignstore/internal/server/models"
	"github.com/mediaplanhq/campaignstore/internal/server/storage"
)

// DefaultGroupSize bounds how many uploads run concurrently. The limit
// exists to cap open connections and buffered payload memory, not for
// correctness.
const DefaultGroupSize = 10

// Materializer uploads inline payloads found in a content tree and rewrites
// the tree to reference the resulting durable URLs. Blocks that already hold
// durable references are left untouched.
type Materializer struct {
	store     storage.ObjectStore
	groupSize int
	now       func() time.Time
}

func NewMaterializer(store storage.ObjectStore, groupSize int) *Materializer {
	if groupSize <= 0 {
		groupSize = DefaultGroupSize
	}
	return &Materializer{store: store, groupSize: groupSize, now: time.Now}
}

type uploadTask struct {
	day     int
	index   int
	block   *models.ContentBlock
	payload string
}

// Resolve scans days for inline payloads, uploads them in fully-awaited
// groups of at most groupSize, and substitutes the resulting URLs in place.
// Any single failed upload fails the whole call with *common.UploadError and
// leaves the tree unmodified, so no partially materialized tree is ever
// persisted.
func (m *Materializer) Resolve(ctx context.Context, campaignID string, days []*models.Day) error {
	var tasks []uploadTask
	for _, d := range days {
		for i, b := range d.Blocks {
			if IsInline(b.MediaRef) {
				tasks = append(tasks, uploadTask{day: d.Day, index: i, block: b, payload: b.MediaRef})
			}
		}
	}
	if len(tasks) == 0 {
		return nil
	}

	stamp := m.now().UnixMilli()
	urls := make([]string, len(tasks))

	for start := 0; start < len(tasks); start += m.groupSize {
		end := start + m.groupSize
		if end > len(tasks) {
			end = len(tasks)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				t := tasks[i]
				contentType, data, err := decodeDataURI(t.payload)
				key := ObjectKey(campaignID, t.day, stamp, t.index)
				if err != nil {
					return &common.UploadError{Key: key, Err: err}
				}
				url, err := m.store.Put(gctx, key, contentType, data)
				if err != nil {
					return &common.UploadError{Key: key, Err: err}
				}
				urls[i] = url
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	for i, t := range tasks {
		t.block.MediaRef = urls[i]
	}
	return nil
}

// ObjectKey derives the storage path for one uploaded payload. The key is
// namespaced under the campaign so delete can sweep all of a campaign's
// media by prefix, and includes the save timestamp plus the block's index
// within its day to avoid collisions.
func ObjectKey(campaignID string, day int, stamp int64, blockIndex int) string {
	return fmt.Sprintf("%sday_%d/%d_%d", KeyPrefix(campaignID), day, stamp, blockIndex)
}

// KeyPrefix is the storage namespace holding every media object of the
// campaign.
func KeyPrefix(campaignID string) string {
	return "campaigns/" + campaignID + "/"
}
