package repository

import (
	"errors"
	"testing"

	"candor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Two concurrent first-vote requests from the same actor race past the
// application-level match; the unique index must reject the loser's insert
// as a translated duplicate-key error.
func TestPostVoteUniquePerActor(t *testing.T) {
	db := setupSQLiteDB(t)
	_, posts := seedOwnerWithPosts(t, db, "Contested post")
	post := posts[0]

	require.NoError(t, db.Create(&models.PostVote{
		PostID: post.ID, AddrHash: "h1", ActorToken: "actor-a", VoteType: models.VoteTypeLike,
	}).Error)

	err := db.Create(&models.PostVote{
		PostID: post.ID, AddrHash: "h2", ActorToken: "actor-a", VoteType: models.VoteTypeDislike,
	}).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey),
		"second row for the same (post, actor) must surface gorm.ErrDuplicatedKey, got %v", err)

	// Other actors on the same post and the same actor on another post are fine.
	require.NoError(t, db.Create(&models.PostVote{
		PostID: post.ID, AddrHash: "h3", ActorToken: "actor-b", VoteType: models.VoteTypeLike,
	}).Error)
	other := &models.Post{UserID: post.UserID, Title: "Another post", IsAcceptingFeedback: true}
	require.NoError(t, db.Create(other).Error)
	require.NoError(t, db.Create(&models.PostVote{
		PostID: other.ID, AddrHash: "h1", ActorToken: "actor-a", VoteType: models.VoteTypeLike,
	}).Error)

	var count int64
	require.NoError(t, db.Model(&models.PostVote{}).
		Where("post_id = ? AND actor_token = ?", post.ID, "actor-a").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFeedbackVoteUniquePerActor(t *testing.T) {
	db := setupSQLiteDB(t)
	_, posts := seedOwnerWithPosts(t, db, "Post")
	feedback := &models.Feedback{PostID: posts[0].ID, Content: "c", AddrHash: "h", ActorToken: "author"}
	require.NoError(t, db.Create(feedback).Error)

	require.NoError(t, db.Create(&models.FeedbackVote{
		FeedbackID: feedback.ID, AddrHash: "h1", ActorToken: "actor-a", VoteType: models.VoteTypeUpvote,
	}).Error)

	err := db.Create(&models.FeedbackVote{
		FeedbackID: feedback.ID, AddrHash: "h2", ActorToken: "actor-a", VoteType: models.VoteTypeDownvote,
	}).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey),
		"second row for the same (feedback, actor) must surface gorm.ErrDuplicatedKey, got %v", err)

	require.NoError(t, db.Create(&models.FeedbackVote{
		FeedbackID: feedback.ID, AddrHash: "h3", ActorToken: "actor-b", VoteType: models.VoteTypeUpvote,
	}).Error)
}
