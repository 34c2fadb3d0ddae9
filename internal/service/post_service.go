package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"candor/internal/cache"
	"candor/internal/models"
	"candor/internal/repository"

	"gorm.io/gorm"
)

// PostListResult is one page of an owner's posts.
type PostListResult struct {
	Posts  []*models.Post `json:"posts"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// DashboardStats summarizes an owner's posts and the feedback they gathered.
type DashboardStats struct {
	TotalPosts        int64   `json:"total_posts"`
	TotalFeedback     int64   `json:"total_feedback"`
	AverageEngagement float64 `json:"average_engagement"`
	WeeklyGrowth      int64   `json:"weekly_growth"`
}

// PostService handles the owner-facing post lifecycle and the public
// read path for anonymous visitors.
type PostService struct {
	posts     repository.PostRepository
	feedbacks repository.FeedbackRepository
	appURL    string
}

// NewPostService creates a new post service. appURL is the public base URL
// share links are derived from.
func NewPostService(db *gorm.DB, appURL string) *PostService {
	return &PostService{
		posts:     repository.NewPostRepository(db),
		feedbacks: repository.NewFeedbackRepository(db),
		appURL:    strings.TrimRight(appURL, "/"),
	}
}

// CreatePost creates a post for the owner and derives its public share link
// from the assigned ID.
func (s *PostService) CreatePost(ctx context.Context, ownerID uint, title, description string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}

	post := &models.Post{
		UserID:              ownerID,
		Title:               title,
		Description:         strings.TrimSpace(description),
		IsAcceptingFeedback: true,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	// The share link needs the generated ID, so it is written in a second step.
	post.Link = fmt.Sprintf("%s/feedbacks/%d", s.appURL, post.ID)
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts returns one page of the owner's posts, optionally filtered by a
// title/description search term.
func (s *PostService) ListPosts(ctx context.Context, ownerID uint, search string, limit, offset int) (*PostListResult, error) {
	posts, total, err := s.posts.ListByOwner(ctx, ownerID, search, limit, offset)
	if err != nil {
		return nil, err
	}
	return &PostListResult{Posts: posts, Total: total, Limit: limit, Offset: offset}, nil
}

// GetOwnerPost returns a post with its feedback for its owner's dashboard.
func (s *PostService) GetOwnerPost(ctx context.Context, ownerID, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByIDWithFeedback(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != ownerID {
		return nil, models.NewUnauthorizedError("You can only view your own posts")
	}
	return post, nil
}

// GetPublicPost returns a post with its feedback for the anonymous public
// page, served cache-aside with a short TTL.
func (s *PostService) GetPublicPost(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PublicPostKey(postID), &post, cache.PostTTL, func() error {
		fetched, err := s.posts.GetByIDWithFeedback(ctx, postID)
		if err != nil {
			return err
		}
		post = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// SetAcceptingFeedback toggles whether a post accepts new feedback.
func (s *PostService) SetAcceptingFeedback(ctx context.Context, ownerID, postID uint, accepting bool) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != ownerID {
		return nil, models.NewUnauthorizedError("You can only modify your own posts")
	}
	if err := s.posts.SetAcceptingFeedback(ctx, postID, accepting); err != nil {
		return nil, err
	}
	post.IsAcceptingFeedback = accepting

	cache.Invalidate(ctx, cache.PublicPostKey(postID))
	return post, nil
}

// DeletePost removes an owner's post together with its feedback and votes.
func (s *PostService) DeletePost(ctx context.Context, ownerID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != ownerID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}

	cache.Invalidate(ctx, cache.PublicPostKey(postID))
	return nil
}

// Stats computes the owner's dashboard summary. Average engagement is
// feedback per post; weekly growth is posts created in the last seven days.
func (s *PostService) Stats(ctx context.Context, ownerID uint) (*DashboardStats, error) {
	totalPosts, err := s.posts.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	totalFeedback, err := s.feedbacks.CountForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	weekly, err := s.posts.CountByOwnerSince(ctx, ownerID, time.Now().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalPosts:    totalPosts,
		TotalFeedback: totalFeedback,
		WeeklyGrowth:  weekly,
	}
	if totalPosts > 0 {
		stats.AverageEngagement = float64(totalFeedback) / float64(totalPosts)
	}
	return stats, nil
}

// TopPosts returns the owner's posts ranked by likes.
func (s *PostService) TopPosts(ctx context.Context, ownerID uint, limit int) ([]*models.Post, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}
	return s.posts.TopByLikes(ctx, ownerID, limit)
}
