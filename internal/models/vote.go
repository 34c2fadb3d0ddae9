package models

import "time"

// Vote type values for posts and feedback items. They are distinct enums on
// the wire even though the state machine treats them identically.
const (
	VoteTypeLike    = "like"
	VoteTypeDislike = "dislike"

	VoteTypeUpvote   = "upvote"
	VoteTypeDownvote = "downvote"
)

// PostVote is the single logically-active vote an anonymous actor holds on a
// post. A later vote of a different type from the same actor flips VoteType
// in place; a second row is never inserted for the same actor. The composite
// unique index is the storage-level backstop against two concurrent
// first-vote requests from the same actor both inserting.
// The index is keyed on (post, actor token) rather than including the address
// hash: bcrypt salts make every stored hash distinct, so a hash column can
// never participate in a meaningful uniqueness constraint.
type PostVote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index;uniqueIndex:idx_post_actor" json:"post_id"`
	AddrHash   string    `gorm:"not null" json:"-"`
	ActorToken string    `gorm:"not null;uniqueIndex:idx_post_actor" json:"-"`
	VoteType   string    `gorm:"not null" json:"vote_type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Token returns the stored actor token for identity matching.
func (v PostVote) Token() string { return v.ActorToken }

// AddressHash returns the stored address hash for identity matching.
func (v PostVote) AddressHash() string { return v.AddrHash }

// FeedbackVote mirrors PostVote for votes cast on feedback items, with
// upvote/downvote semantics and the same uniqueness and flip discipline.
type FeedbackVote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FeedbackID uint      `gorm:"not null;index;uniqueIndex:idx_feedback_actor" json:"feedback_id"`
	AddrHash   string    `gorm:"not null" json:"-"`
	ActorToken string    `gorm:"not null;uniqueIndex:idx_feedback_actor" json:"-"`
	VoteType   string    `gorm:"not null" json:"vote_type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Token returns the stored actor token for identity matching.
func (v FeedbackVote) Token() string { return v.ActorToken }

// AddressHash returns the stored address hash for identity matching.
func (v FeedbackVote) AddressHash() string { return v.AddrHash }
