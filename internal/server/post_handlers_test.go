package server

import (
	"fmt"
	"net/http"
	"testing"

	"candor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostHandler(t *testing.T) {
	s, db := newTestServer(t)
	user := seedUser(t, db, "owner", "owner@example.com")
	app := authedApp(user.ID)
	app.Post("/me/posts", s.CreatePost)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           map[string]string{"title": "Rate my resume", "description": "Be brutal."},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing Title",
			body:           map[string]string{"description": "No title."},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/me/posts", tt.body))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	var post models.Post
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&post).Error)
	assert.Equal(t, fmt.Sprintf("%s/feedbacks/%d", testAppURL, post.ID), post.Link)
}

func TestGetMyPostsHandler(t *testing.T) {
	s, db := newTestServer(t)
	user := seedUser(t, db, "owner", "owner@example.com")
	other := seedUser(t, db, "other", "other@example.com")
	seedPost(t, db, user.ID)
	seedPost(t, db, user.ID)
	seedPost(t, db, other.ID)

	app := authedApp(user.ID)
	app.Get("/me/posts", s.GetMyPosts)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/me/posts", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Posts []*models.Post `json:"posts"`
		Total int64          `json:"total"`
	}
	decodeBody(t, resp, &result)
	assert.EqualValues(t, 2, result.Total)
	assert.Len(t, result.Posts, 2)
}

func TestGetMyPostHandler(t *testing.T) {
	s, db := newTestServer(t)
	user := seedUser(t, db, "owner", "owner@example.com")
	other := seedUser(t, db, "other", "other@example.com")
	post := seedPost(t, db, other.ID)

	app := authedApp(user.ID)
	app.Get("/me/posts/:id", s.GetMyPost)

	// Another owner's post is not visible.
	resp, err := app.Test(jsonRequest(t, http.MethodGet, fmt.Sprintf("/me/posts/%d", post.ID), nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetPublicPostHandler(t *testing.T) {
	s, db := newTestServer(t)
	user := seedUser(t, db, "owner", "owner@example.com")
	post := seedPost(t, db, user.ID)

	app := testApp()
	app.Get("/posts/:id", s.GetPublicPost)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]any
	decodeBody(t, resp, &got)
	assert.EqualValues(t, post.ID, got["id"])
	// The owner association is never loaded on the public page, so the
	// payload must not carry an empty user object.
	assert.NotContains(t, got, "user")

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/posts/99999", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetAcceptingFeedbackHandler(t *testing.T) {
	s, db := newTestServer(t)
	user := seedUser(t, db, "owner", "owner@example.com")
	post := seedPost(t, db, user.ID)

	app := authedApp(user.ID)
	app.Patch("/me/posts/:id/accepting", s.SetAcceptingFeedback)

	resp, err := app.Test(jsonRequest(t, http.MethodPatch,
		fmt.Sprintf("/me/posts/%d/accepting", post.ID),
		map[string]bool{"is_accepting_feedback": false}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.False(t, stored.IsAcceptingFeedback)

	// Missing flag in body is rejected.
	resp, err = app.Test(jsonRequest(t, http.MethodPatch,
		fmt.Sprintf("/me/posts/%d/accepting", post.ID),
		map[string]string{}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeletePostHandler(t *testing.T) {
	s, db := newTestServer(t)
	user := seedUser(t, db, "owner", "owner@example.com")
	post := seedPost(t, db, user.ID)

	app := authedApp(user.ID)
	app.Delete("/me/posts/:id", s.DeletePost)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, fmt.Sprintf("/me/posts/%d", post.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDashboardHandlers(t *testing.T) {
	s, db := newTestServer(t)
	user := seedUser(t, db, "owner", "owner@example.com")
	p1 := seedPost(t, db, user.ID)
	seedPost(t, db, user.ID)
	require.NoError(t, db.Model(p1).Update("likes", 3).Error)
	require.NoError(t, db.Create(&models.Feedback{
		PostID: p1.ID, Content: "Nice.", AddrHash: "h", ActorToken: "a",
	}).Error)

	app := authedApp(user.ID)
	app.Get("/dashboard/stats", s.GetDashboardStats)
	app.Get("/dashboard/top-posts", s.GetTopPosts)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/dashboard/stats", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats struct {
		TotalPosts        int64   `json:"total_posts"`
		TotalFeedback     int64   `json:"total_feedback"`
		AverageEngagement float64 `json:"average_engagement"`
	}
	decodeBody(t, resp, &stats)
	assert.EqualValues(t, 2, stats.TotalPosts)
	assert.EqualValues(t, 1, stats.TotalFeedback)
	assert.InDelta(t, 0.5, stats.AverageEngagement, 0.001)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/dashboard/top-posts?limit=1", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var top struct {
		Posts []*models.Post `json:"posts"`
	}
	decodeBody(t, resp, &top)
	require.Len(t, top.Posts, 1)
	assert.Equal(t, p1.ID, top.Posts[0].ID)
}
