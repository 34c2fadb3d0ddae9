package service

import (
	"testing"

	"candor/internal/database"
	"candor/internal/identity"
	"candor/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestHasher() *identity.Hasher {
	return identity.NewHasher(bcrypt.MinCost)
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Username: "owner",
		Email:    "owner@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, ownerID uint) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:              ownerID,
		Title:               "How is my landing page?",
		Description:         "Be honest.",
		IsAcceptingFeedback: true,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func createTestFeedback(t *testing.T, db *gorm.DB, postID uint, token string) *models.Feedback {
	t.Helper()
	hasher := newTestHasher()
	hash, err := hasher.HashAddress("198.51.100.7")
	require.NoError(t, err)
	feedback := &models.Feedback{
		PostID:     postID,
		Content:    "The hero section is confusing.",
		AddrHash:   hash,
		ActorToken: token,
	}
	require.NoError(t, db.Create(feedback).Error)
	return feedback
}
