package service

import (
	"context"
	"errors"
	"fmt"

	"candor/internal/cache"
	"candor/internal/identity"
	"candor/internal/middleware"
	"candor/internal/models"

	"gorm.io/gorm"
)

// VoteOutcome describes what a vote request did to stored state.
type VoteOutcome string

const (
	// VoteCreated means the actor had no prior vote and a new row was inserted.
	VoteCreated VoteOutcome = "created"
	// VoteChanged means the actor's existing vote flipped to the other type.
	VoteChanged VoteOutcome = "changed"
	// VoteUnchanged means the request repeated the actor's current vote; a no-op.
	VoteUnchanged VoteOutcome = "unchanged"
)

// VoteResult carries the outcome of a vote request plus the actor token the
// client must hold onto for subsequent requests. Token is the stored row's
// token when an existing vote was matched, so a client that lost its token
// but matched by address converges back onto its original identity.
type VoteResult struct {
	Outcome  VoteOutcome      `json:"outcome"`
	Token    string           `json:"anonymous_user_id"`
	Post     *models.Post     `json:"post,omitempty"`
	Feedback *models.Feedback `json:"feedback,omitempty"`
}

// VoteService applies the anonymous vote state machine to posts and feedback:
// no prior vote inserts a row, a repeat of the current vote is a no-op, and a
// vote of the other type flips the row in place. The denormalized counters on
// the target are adjusted in the same transaction as the vote row so they
// always equal the count of matching rows.
type VoteService struct {
	db     *gorm.DB
	hasher *identity.Hasher
}

// NewVoteService creates a new vote service
func NewVoteService(db *gorm.DB, hasher *identity.Hasher) *VoteService {
	return &VoteService{db: db, hasher: hasher}
}

// postCounterColumn maps a post vote type to the counter column it drives.
func postCounterColumn(voteType string) string {
	if voteType == models.VoteTypeLike {
		return "likes"
	}
	return "dislikes"
}

// feedbackCounterColumn maps a feedback vote type to the counter column it drives.
func feedbackCounterColumn(voteType string) string {
	if voteType == models.VoteTypeUpvote {
		return "upvotes"
	}
	return "downvotes"
}

// VoteOnPost records, flips, or no-ops a like/dislike on a post for the
// anonymous actor identified by token and addr.
func (s *VoteService) VoteOnPost(ctx context.Context, postID uint, voteType, token, addr string) (*VoteResult, error) {
	if voteType != models.VoteTypeLike && voteType != models.VoteTypeDislike {
		return nil, models.NewValidationError(fmt.Sprintf("invalid vote type %q: must be %q or %q", voteType, models.VoteTypeLike, models.VoteTypeDislike))
	}

	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}

	var votes []models.PostVote
	if err := s.db.WithContext(ctx).Where("post_id = ?", postID).Find(&votes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	claims := make([]identity.Claim, len(votes))
	for i := range votes {
		claims[i] = votes[i]
	}

	outcome := VoteCreated
	actorToken := token

	if idx := s.hasher.Match(claims, token, addr); idx >= 0 {
		existing := &votes[idx]
		actorToken = existing.ActorToken
		if existing.VoteType == voteType {
			outcome = VoteUnchanged
		} else {
			outcome = VoteChanged
			err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				prev := existing.VoteType
				if err := tx.Model(&models.PostVote{}).Where("id = ?", existing.ID).Update("vote_type", voteType).Error; err != nil {
					return err
				}
				return tx.Model(&models.Post{}).Where("id = ?", postID).Updates(map[string]interface{}{
					postCounterColumn(voteType): gorm.Expr(postCounterColumn(voteType) + " + 1"),
					postCounterColumn(prev):     gorm.Expr(postCounterColumn(prev) + " - 1"),
				}).Error
			})
			if err != nil {
				return nil, models.NewInternalError(err)
			}
		}
	} else {
		actorToken, _ = identity.Resolve(token)
		hash, err := s.hasher.HashAddress(addr)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		vote := models.PostVote{
			PostID:     postID,
			AddrHash:   hash,
			ActorToken: actorToken,
			VoteType:   voteType,
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			col := postCounterColumn(voteType)
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				Update(col, gorm.Expr(col+" + 1")).Error
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a first-vote race against another request holding the same
			// token. The winner's row stands; report a no-op.
			outcome = VoteUnchanged
		} else if err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	if outcome != VoteUnchanged {
		cache.Invalidate(ctx, cache.PublicPostKey(postID))
	}
	middleware.VoteTransitions.WithLabelValues("post", string(outcome)).Inc()

	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &VoteResult{Outcome: outcome, Token: actorToken, Post: &post}, nil
}

// VoteOnFeedback records, flips, or no-ops an upvote/downvote on a feedback
// entry for the anonymous actor identified by token and addr.
func (s *VoteService) VoteOnFeedback(ctx context.Context, feedbackID uint, voteType, token, addr string) (*VoteResult, error) {
	if voteType != models.VoteTypeUpvote && voteType != models.VoteTypeDownvote {
		return nil, models.NewValidationError(fmt.Sprintf("invalid vote type %q: must be %q or %q", voteType, models.VoteTypeUpvote, models.VoteTypeDownvote))
	}

	var feedback models.Feedback
	if err := s.db.WithContext(ctx).First(&feedback, feedbackID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Feedback", feedbackID)
		}
		return nil, models.NewInternalError(err)
	}

	var votes []models.FeedbackVote
	if err := s.db.WithContext(ctx).Where("feedback_id = ?", feedbackID).Find(&votes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	claims := make([]identity.Claim, len(votes))
	for i := range votes {
		claims[i] = votes[i]
	}

	outcome := VoteCreated
	actorToken := token

	if idx := s.hasher.Match(claims, token, addr); idx >= 0 {
		existing := &votes[idx]
		actorToken = existing.ActorToken
		if existing.VoteType == voteType {
			outcome = VoteUnchanged
		} else {
			outcome = VoteChanged
			err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				prev := existing.VoteType
				if err := tx.Model(&models.FeedbackVote{}).Where("id = ?", existing.ID).Update("vote_type", voteType).Error; err != nil {
					return err
				}
				return tx.Model(&models.Feedback{}).Where("id = ?", feedbackID).Updates(map[string]interface{}{
					feedbackCounterColumn(voteType): gorm.Expr(feedbackCounterColumn(voteType) + " + 1"),
					feedbackCounterColumn(prev):     gorm.Expr(feedbackCounterColumn(prev) + " - 1"),
				}).Error
			})
			if err != nil {
				return nil, models.NewInternalError(err)
			}
		}
	} else {
		actorToken, _ = identity.Resolve(token)
		hash, err := s.hasher.HashAddress(addr)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		vote := models.FeedbackVote{
			FeedbackID: feedbackID,
			AddrHash:   hash,
			ActorToken: actorToken,
			VoteType:   voteType,
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			col := feedbackCounterColumn(voteType)
			return tx.Model(&models.Feedback{}).Where("id = ?", feedbackID).
				Update(col, gorm.Expr(col+" + 1")).Error
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			outcome = VoteUnchanged
		} else if err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	if outcome != VoteUnchanged {
		cache.Invalidate(ctx, cache.PublicPostKey(feedback.PostID))
	}
	middleware.VoteTransitions.WithLabelValues("feedback", string(outcome)).Inc()

	if err := s.db.WithContext(ctx).First(&feedback, feedbackID).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &VoteResult{Outcome: outcome, Token: actorToken, Feedback: &feedback}, nil
}
