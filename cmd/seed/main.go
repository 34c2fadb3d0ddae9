// Command main runs the database seeder for Candor.
package main

import (
	"flag"
	"log"

	"candor/internal/config"
	"candor/internal/database"
	"candor/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	postsPerUser := flag.Int("posts", 5, "Number of posts per user")
	feedbackPerPost := flag.Int("feedback", 4, "Maximum feedback entries per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Printf("Target: %d users, %d posts each, up to %d feedback per post, clean=%v\n",
		*numUsers, *postsPerUser, *feedbackPerPost, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(database.DB)
	if err := s.Run(seed.Options{
		NumUsers:        *numUsers,
		PostsPerUser:    *postsPerUser,
		FeedbackPerPost: *feedbackPerPost,
		ShouldClean:     *shouldClean,
		AppURL:          cfg.AppURL,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Println("📧 All test users have the password: password123")
}
