package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a feedback prompt created by an authenticated user and shared via
// a public link. Likes and Dislikes are denormalized counters that must
// always equal the number of PostVote rows with the matching vote type;
// they are only ever mutated together with the owning vote row.
type Post struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	User        *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	// Link is the public share URL, derived from the post ID after creation.
	Link                string         `json:"link"`
	Likes               int            `gorm:"not null;default:0" json:"likes"`
	Dislikes            int            `gorm:"not null;default:0" json:"dislikes"`
	IsAcceptingFeedback bool           `gorm:"not null;default:true" json:"is_accepting_feedback"`
	Feedbacks           []Feedback     `gorm:"foreignKey:PostID" json:"feedbacks,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}
