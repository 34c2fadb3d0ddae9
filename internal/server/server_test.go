package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"candor/internal/config"
	"candor/internal/database"
	"candor/internal/identity"
	"candor/internal/models"
	"candor/internal/repository"
	"candor/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAppURL = "http://localhost:8480"

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Port:         "8480",
		AppURL:       testAppURL,
		JWTSecret:    "test-secret-key-that-is-long-enough",
		Env:          "test",
		AnonHashCost: bcrypt.MinCost,
	}
	hasher := identity.NewHasher(cfg.AnonHashCost)

	s := &Server{
		config:          cfg,
		db:              db,
		userRepo:        repository.NewUserRepository(db),
		postService:     service.NewPostService(db, cfg.AppURL),
		feedbackService: service.NewFeedbackService(db, hasher),
		voteService:     service.NewVoteService(db, hasher),
	}
	return s, db
}

// testApp returns a Fiber app that trusts X-Forwarded-For so tests can
// simulate requests from distinct client addresses.
func testApp() *fiber.App {
	return fiber.New(fiber.Config{ProxyHeader: "X-Forwarded-For"})
}

func withIP(req *http.Request, ip string) *http.Request {
	req.Header.Set("X-Forwarded-For", ip)
	return req
}

// authedApp returns a Fiber app where every request runs as the given user.
func authedApp(userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	return app
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func seedUser(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: email, Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPost(t *testing.T, db *gorm.DB, ownerID uint) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:              ownerID,
		Title:               "Review my pitch deck",
		IsAcceptingFeedback: true,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
