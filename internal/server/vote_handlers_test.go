package server

import (
	"fmt"
	"net/http"
	"testing"

	"candor/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteOnPostHandler(t *testing.T) {
	s, db := newTestServer(t)
	app := fiber.New()
	app.Post("/posts/:id/vote", s.VoteOnPost)

	user := seedUser(t, db, "owner", "owner@example.com")
	post := seedPost(t, db, user.ID)

	tests := []struct {
		name           string
		target         string
		body           map[string]string
		expectedStatus int
	}{
		{
			name:           "First Vote Created",
			target:         fmt.Sprintf("/posts/%d/vote", post.ID),
			body:           map[string]string{"vote_type": models.VoteTypeLike, "anonymous_user_id": "actor-a"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Repeat Vote Is No-Op",
			target:         fmt.Sprintf("/posts/%d/vote", post.ID),
			body:           map[string]string{"vote_type": models.VoteTypeLike, "anonymous_user_id": "actor-a"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Flip Vote",
			target:         fmt.Sprintf("/posts/%d/vote", post.ID),
			body:           map[string]string{"vote_type": models.VoteTypeDislike, "anonymous_user_id": "actor-a"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid Vote Type",
			target:         fmt.Sprintf("/posts/%d/vote", post.ID),
			body:           map[string]string{"vote_type": "love", "anonymous_user_id": "actor-a"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing Post",
			target:         "/posts/99999/vote",
			body:           map[string]string{"vote_type": models.VoteTypeLike, "anonymous_user_id": "actor-a"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Invalid ID",
			target:         "/posts/abc/vote",
			body:           map[string]string{"vote_type": models.VoteTypeLike},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(t, http.MethodPost, tt.target, tt.body))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, 0, stored.Likes)
	assert.Equal(t, 1, stored.Dislikes)
}

func TestVoteOnPostIssuesCookie(t *testing.T) {
	s, db := newTestServer(t)
	app := fiber.New()
	app.Post("/posts/:id/vote", s.VoteOnPost)

	user := seedUser(t, db, "owner", "owner@example.com")
	post := seedPost(t, db, user.ID)

	resp, err := app.Test(jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/posts/%d/vote", post.ID),
		map[string]string{"vote_type": models.VoteTypeLike}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Outcome string `json:"outcome"`
		Token   string `json:"anonymous_user_id"`
	}
	decodeBody(t, resp, &result)
	assert.NotEmpty(t, result.Token)

	cookies := resp.Header.Values("Set-Cookie")
	require.NotEmpty(t, cookies)
	assert.Contains(t, cookies[0], actorCookieName+"=")

	// A follow-up request carrying only the cookie is recognized as the same actor.
	req := jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/posts/%d/vote", post.ID),
		map[string]string{"vote_type": models.VoteTypeLike})
	req.AddCookie(&http.Cookie{Name: actorCookieName, Value: result.Token})
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.PostVote{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestVoteOnFeedbackHandler(t *testing.T) {
	s, db := newTestServer(t)
	app := fiber.New()
	app.Post("/feedback/:id/vote", s.VoteOnFeedback)

	user := seedUser(t, db, "owner", "owner@example.com")
	post := seedPost(t, db, user.ID)
	feedback := &models.Feedback{
		PostID:     post.ID,
		Content:    "Slide 3 is unclear.",
		AddrHash:   "unused",
		ActorToken: "author",
	}
	require.NoError(t, db.Create(feedback).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/feedback/%d/vote", feedback.ID),
		map[string]string{"vote_type": models.VoteTypeUpvote, "anonymous_user_id": "voter"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Outcome  string           `json:"outcome"`
		Feedback *models.Feedback `json:"feedback"`
	}
	decodeBody(t, resp, &result)
	require.NotNil(t, result.Feedback)
	assert.Equal(t, 1, result.Feedback.Upvotes)

	resp, err = app.Test(jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/feedback/%d/vote", feedback.ID),
		map[string]string{"vote_type": models.VoteTypeDownvote, "anonymous_user_id": "voter"}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
