// Command seed fills the forum database with demo users, communities, posts, comments and votes.
package main

import (
	"context"
	"flag"
	"log"

	"forum/internal/cache"
	"forum/internal/config"
	"forum/internal/database"
	"forum/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numCommunities := flag.Int("communities", 30, "Number of communities to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	numComments := flag.Int("comments", 300, "Number of comments to create")
	numVotes := flag.Int("votes", 500, "Number of post votes to cast")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fakerSeed := flag.Int64("seed", 0, "Faker seed for reproducible data (0 = random)")
	flag.Parse()

	log.Printf("Target: %d users, %d communities, %d posts, %d comments, %d votes, clean=%v",
		*numUsers, *numCommunities, *numPosts, *numComments, *numVotes, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Seeding rewrites communities; cached listings must not outlive it.
	cache.InitRedis(cfg.RedisURL)

	res, err := seed.Run(context.Background(), db, seed.Options{
		NumUsers:       *numUsers,
		NumCommunities: *numCommunities,
		NumPosts:       *numPosts,
		NumComments:    *numComments,
		NumVotes:       *numVotes,
		ShouldClean:    *shouldClean,
		Seed:           *fakerSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d communities, %d posts, %d comments and %d votes",
		len(res.Users), len(res.Communities), len(res.Posts), len(res.Comments), len(res.Votes))
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
