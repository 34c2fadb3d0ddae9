// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"candor/internal/identity"
	"candor/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	PostsPerUser    int
	FeedbackPerPost int
	ShouldClean     bool
	AppURL          string
}

// Seeder populates the database with generated owners, posts, anonymous
// feedback, and votes. All generated users share the password "password123".
type Seeder struct {
	db     *gorm.DB
	hasher *identity.Hasher
	rng    *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB. Seed data uses
// the cheapest bcrypt cost; it protects nothing real.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:     db,
		hasher: identity.NewHasher(bcrypt.MinCost),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Vote and feedback rows go first so no
// foreign keys dangle mid-way.
func (s *Seeder) ClearAll() error {
	tables := []any{
		&models.FeedbackVote{},
		&models.PostVote{},
		&models.Feedback{},
		&models.Post{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("clearing %T: %w", table, err)
		}
	}
	log.Println("✓ Existing data cleared")
	return nil
}

// Run seeds the database according to opts.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.createUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	var totalPosts, totalFeedback int
	for _, user := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			post, err := s.createPost(user, opts.AppURL)
			if err != nil {
				return fmt.Errorf("seeding posts: %w", err)
			}
			totalPosts++

			n := s.rng.Intn(opts.FeedbackPerPost + 1)
			for j := 0; j < n; j++ {
				if err := s.createFeedbackWithVotes(post); err != nil {
					return fmt.Errorf("seeding feedback: %w", err)
				}
				totalFeedback++
			}
		}
	}
	log.Printf("✓ %d posts and %d feedback entries created", totalPosts, totalFeedback)
	return nil
}

func (s *Seeder) createUsers(n int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			Email:    gofakeit.Email(),
			Password: string(hashed),
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createPost(user *models.User, appURL string) (*models.Post, error) {
	post := &models.Post{
		UserID:              user.ID,
		Title:               gofakeit.Sentence(4),
		Description:         gofakeit.Paragraph(1, 2, 8, " "),
		IsAcceptingFeedback: s.rng.Intn(10) > 0,
		CreatedAt:           time.Now().Add(-time.Duration(s.rng.Intn(60*24)) * time.Hour),
	}
	if err := s.db.Create(post).Error; err != nil {
		return nil, err
	}
	post.Link = fmt.Sprintf("%s/feedbacks/%d", appURL, post.ID)
	if err := s.db.Model(post).Update("link", post.Link).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// createFeedbackWithVotes creates one anonymous feedback entry and sometimes
// a few votes on it and on its post, keeping the denormalized counters in
// step with the vote rows it writes.
func (s *Seeder) createFeedbackWithVotes(post *models.Post) error {
	addrHash, err := s.hasher.HashAddress(gofakeit.IPv4Address())
	if err != nil {
		return err
	}
	feedback := &models.Feedback{
		PostID:     post.ID,
		Content:    gofakeit.Paragraph(1, 2, 10, " "),
		AddrHash:   addrHash,
		ActorToken: uuid.NewString(),
	}
	if err := s.db.Create(feedback).Error; err != nil {
		return err
	}

	for i := s.rng.Intn(4); i > 0; i-- {
		voteType := models.VoteTypeUpvote
		column := "upvotes"
		if s.rng.Intn(3) == 0 {
			voteType = models.VoteTypeDownvote
			column = "downvotes"
		}
		hash, err := s.hasher.HashAddress(gofakeit.IPv4Address())
		if err != nil {
			return err
		}
		vote := &models.FeedbackVote{
			FeedbackID: feedback.ID,
			AddrHash:   hash,
			ActorToken: uuid.NewString(),
			VoteType:   voteType,
		}
		if err := s.db.Create(vote).Error; err != nil {
			return err
		}
		if err := s.db.Model(feedback).Update(column, gorm.Expr(column+" + 1")).Error; err != nil {
			return err
		}
	}

	for i := s.rng.Intn(3); i > 0; i-- {
		voteType := models.VoteTypeLike
		column := "likes"
		if s.rng.Intn(4) == 0 {
			voteType = models.VoteTypeDislike
			column = "dislikes"
		}
		hash, err := s.hasher.HashAddress(gofakeit.IPv4Address())
		if err != nil {
			return err
		}
		vote := &models.PostVote{
			PostID:     post.ID,
			AddrHash:   hash,
			ActorToken: uuid.NewString(),
			VoteType:   voteType,
		}
		if err := s.db.Create(vote).Error; err != nil {
			return err
		}
		if err := s.db.Model(post).Update(column, gorm.Expr(column+" + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}
