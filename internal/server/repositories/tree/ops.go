package tree

import (
	"encoding/json"
	"fmt"

	"github.com/mediaplanhq/campaignstore/internal/server/batch"
	"github.com/mediaplanhq/campaignstore/internal/server/models"
)

// InsertDayOp builds the batch op writing one day row.
func InsertDayOp(campaignID string, d *models.Day) batch.Op {
	return batch.Op{
		Query: `INSERT INTO campaign_days (campaign_id, day, date) VALUES ($1, $2, $3)`,
		Args:  []any{campaignID, d.Day, d.Date},
	}
}

// DeleteDayOp builds the batch op deleting one day row.
func DeleteDayOp(campaignID string, day int) batch.Op {
	return batch.Op{
		Query: `DELETE FROM campaign_days WHERE campaign_id = $1 AND day = $2`,
		Args:  []any{campaignID, day},
	}
}

// InsertBlockOp builds the batch op writing one content-block row. The
// position is the block's index within its day and provides the stable
// ordering key used on load.
func InsertBlockOp(campaignID string, day, position int, b *models.ContentBlock) (batch.Op, error) {
	fields := ""
	if b.Fields != nil {
		raw, err := json.Marshal(b.Fields)
		if err != nil {
			return batch.Op{}, fmt.Errorf("marshal block %s fields: %w", b.ID, err)
		}
		fields = string(raw)
	}
	return batch.Op{
		Query: `
			INSERT INTO content_blocks (campaign_id, day, id, position, content_type, fields, media_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
		Args: []any{campaignID, day, b.ID, position, b.ContentType, fields, b.MediaRef},
	}, nil
}

// DeleteBlockOp builds the batch op deleting one content-block row.
func DeleteBlockOp(campaignID string, day int, blockID string) batch.Op {
	return batch.Op{
		Query: `DELETE FROM content_blocks WHERE campaign_id = $1 AND day = $2 AND id = $3`,
		Args:  []any{campaignID, day, blockID},
	}
}
