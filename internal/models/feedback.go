package models

import (
	"time"

	"gorm.io/gorm"
)

// Feedback is one anonymous free-text response to a post. At most one
// feedback exists per (post, anonymous actor) pair; the submission gate
// enforces this before insert. The raw network address is never stored,
// only its bcrypt hash.
type Feedback struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	PostID  uint   `gorm:"not null;index" json:"post_id"`
	Content string `gorm:"type:text;not null" json:"content"`
	// AddrHash and ActorToken identify the anonymous author for duplicate
	// detection and edit/delete authorization. Neither is exposed over the API.
	AddrHash   string         `gorm:"not null" json:"-"`
	ActorToken string         `gorm:"not null;index" json:"-"`
	Upvotes    int            `gorm:"not null;default:0" json:"upvotes"`
	Downvotes  int            `gorm:"not null;default:0" json:"downvotes"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Token returns the stored actor token for identity matching.
func (f Feedback) Token() string { return f.ActorToken }

// AddressHash returns the stored address hash for identity matching.
func (f Feedback) AddressHash() string { return f.AddrHash }
