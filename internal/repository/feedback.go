package repository

import (
	"context"
	"errors"

	"candor/internal/models"

	"gorm.io/gorm"
)

// FeedbackRepository defines persistence operations for feedback entries.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	GetByID(ctx context.Context, id uint) (*models.Feedback, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Feedback, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
	CountForOwner(ctx context.Context, ownerID uint) (int64, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	if err := r.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *feedbackRepository) GetByID(ctx context.Context, id uint) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := r.db.WithContext(ctx).First(&feedback, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Feedback", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &feedback, nil
}

func (r *feedbackRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Feedback, error) {
	var feedbacks []*models.Feedback
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&feedbacks).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return feedbacks, nil
}

// UpdateContent writes only the content column. The vote counters are
// mutated by concurrent vote requests, so a full-row write from a stale
// read could silently undo a committed increment.
func (r *feedbackRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("id = ?", id).
		Update("content", content)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Feedback", id)
	}
	return nil
}

// Delete removes a feedback entry along with its vote rows.
func (r *feedbackRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("feedback_id = ?", id).Delete(&models.FeedbackVote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Feedback{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CountForOwner counts feedback across every post belonging to the owner.
func (r *feedbackRepository) CountForOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Joins("JOIN posts ON posts.id = feedbacks.post_id").
		Where("posts.user_id = ? AND posts.deleted_at IS NULL", ownerID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
