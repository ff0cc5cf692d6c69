package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile is an affiliate: one per registered user, keyed by the user id.
type Profile struct {
	ID             uuid.UUID
	Name           string
	ReferralCode   string
	SponsorID      *uuid.UUID
	Rank           Rank
	CurrentPoints  int64
	LifetimePoints int64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasSponsor reports whether the profile is attached to an upline.
func (p *Profile) HasSponsor() bool {
	return p.SponsorID != nil && *p.SponsorID != uuid.Nil
}

// SponsorLink is the minimal node of the sponsor graph: an id, its parent and
// whether it still counts as active. Nodes are always addressed by id, never by pointer.
type SponsorLink struct {
	ID        uuid.UUID
	SponsorID *uuid.UUID
	IsActive  bool
}

// GenealogyEntry is one (user, ancestor) row of the denormalized genealogy index.
// Level 1 is the direct sponsor.
type GenealogyEntry struct {
	UserID     uuid.UUID
	AncestorID uuid.UUID
	Level      int
}
