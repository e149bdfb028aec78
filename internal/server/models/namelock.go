package models

import "time"

// NameLock is the per-(tenant, slug) uniqueness record. At most one campaign
// in a tenant may hold a given slug; the lock row is read and written in the
// same transaction as the campaign scalars, which makes it an effective
// distributed lock for the uniqueness invariant.
type NameLock struct {
	TenantID   string
	Slug       string
	CampaignID string
	Name       string
	LockedAt   time.Time
}
