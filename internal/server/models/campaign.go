// Package models defines server-side data models persisted in the database.
package models

import "time"

// Campaign holds the scalar fields of a campaign document. The day/block
// subtree is stored separately and replaced wholesale on every save.
type Campaign struct {
	ID       string
	TenantID string
	// Name is human-chosen and unique per tenant after slug normalization.
	Name string

	OriginalPrompt  string
	CharacterConfig map[string]any

	CreatedAt time.Time
	CreatedBy string
	UpdatedAt time.Time
	UpdatedBy string
}

// Day is a child of a campaign, keyed by a caller-supplied 1-based ordinal.
// Ordinals need not be contiguous. Days carry no identity of their own and
// are recreated on every save.
type Day struct {
	Day    int
	Date   string
	Blocks []*ContentBlock
}

// ContentBlock is a child of a Day.
//
// A caller-supplied ID is load-bearing: external systems (comment threads,
// schedulers) reference blocks by it, so it is never regenerated on re-save.
// A fresh ID is minted only when the caller supplies none.
type ContentBlock struct {
	ID          string
	ContentType string
	// Fields carries the free-form content payload: ad copy, image prompt,
	// tone, schedule, asset references.
	Fields map[string]any
	// MediaRef is either a durable object-storage URL or, before a save is
	// materialized, an inline data: payload. Persisted rows only ever hold
	// durable URLs.
	MediaRef string
}
