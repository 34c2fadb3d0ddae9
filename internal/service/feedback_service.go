package service

import (
	"context"
	"errors"
	"strings"

	"candor/internal/cache"
	"candor/internal/identity"
	"candor/internal/middleware"
	"candor/internal/models"
	"candor/internal/repository"

	"gorm.io/gorm"
)

// FeedbackResult pairs a feedback entry with the actor token the anonymous
// author must present on later edit and delete requests.
type FeedbackResult struct {
	Token    string           `json:"anonymous_user_id"`
	Feedback *models.Feedback `json:"feedback"`
}

// FeedbackService handles anonymous feedback submission and the author-only
// edit and delete operations. Submission is gated to one entry per anonymous
// actor per post; authorship on edit and delete is established by the same
// token-then-address identity match used by the gate.
type FeedbackService struct {
	db     *gorm.DB
	repo   repository.FeedbackRepository
	hasher *identity.Hasher
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(db *gorm.DB, hasher *identity.Hasher) *FeedbackService {
	return &FeedbackService{
		db:     db,
		repo:   repository.NewFeedbackRepository(db),
		hasher: hasher,
	}
}

// Submit creates a feedback entry on a post for the anonymous actor
// identified by token and addr. A second submission from the same actor on
// the same post is rejected with a conflict.
func (s *FeedbackService) Submit(ctx context.Context, postID uint, content, token, addr string) (*FeedbackResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Feedback content is required")
	}

	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}
	if !post.IsAcceptingFeedback {
		return nil, models.NewConflictError("This post is not accepting feedback")
	}

	existing, err := s.repo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	claims := make([]identity.Claim, len(existing))
	for i := range existing {
		claims[i] = *existing[i]
	}
	if s.hasher.Match(claims, token, addr) >= 0 {
		middleware.FeedbackRejected.Inc()
		return nil, models.NewConflictError("You have already submitted feedback for this post")
	}

	actorToken, _ := identity.Resolve(token)
	hash, err := s.hasher.HashAddress(addr)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	feedback := &models.Feedback{
		PostID:     postID,
		Content:    content,
		AddrHash:   hash,
		ActorToken: actorToken,
	}
	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, cache.PublicPostKey(postID))
	return &FeedbackResult{Token: actorToken, Feedback: feedback}, nil
}

// Edit replaces the content of a feedback entry. Only the original anonymous
// author, identified by token or address, may edit.
func (s *FeedbackService) Edit(ctx context.Context, feedbackID uint, content, token, addr string) (*FeedbackResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Feedback content is required")
	}

	feedback, err := s.repo.GetByID(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	if s.hasher.Match([]identity.Claim{*feedback}, token, addr) < 0 {
		return nil, models.NewUnauthorizedError("You can only edit your own feedback")
	}

	if err := s.repo.UpdateContent(ctx, feedbackID, content); err != nil {
		return nil, err
	}
	feedback.Content = content

	cache.Invalidate(ctx, cache.PublicPostKey(feedback.PostID))
	return &FeedbackResult{Token: feedback.ActorToken, Feedback: feedback}, nil
}

// Delete removes a feedback entry and its votes. Only the original anonymous
// author, identified by token or address, may delete.
func (s *FeedbackService) Delete(ctx context.Context, feedbackID uint, token, addr string) error {
	feedback, err := s.repo.GetByID(ctx, feedbackID)
	if err != nil {
		return err
	}
	if s.hasher.Match([]identity.Claim{*feedback}, token, addr) < 0 {
		return models.NewUnauthorizedError("You can only delete your own feedback")
	}

	if err := s.repo.Delete(ctx, feedbackID); err != nil {
		return err
	}

	cache.Invalidate(ctx, cache.PublicPostKey(feedback.PostID))
	return nil
}
