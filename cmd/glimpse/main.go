// Command glimpse is a development harness for the feed engine: it
// seeds a document store with demo data, opens a live feed
// subscription, and logs every snapshot until interrupted.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"glimpse/internal/config"
	"glimpse/internal/docstore"
	"glimpse/internal/docstore/memstore"
	"glimpse/internal/docstore/redisstore"
	"glimpse/internal/models"
	"glimpse/internal/observability"
	"glimpse/internal/repository"
	"glimpse/internal/seed"
	"glimpse/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "glimpse-engine",
		ServiceVersion: "1.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		SamplerRatio:   cfg.SamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	var store docstore.Store
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		client, err := redisstore.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer func() { _ = client.Close() }()
		store = redisstore.New(client)
	default:
		store = memstore.New()
	}

	userRepo := repository.NewUserRepository(store)
	postRepo := repository.NewPostRepository(store)
	commentRepo := repository.NewCommentRepository(store)
	followRepo := repository.NewFollowRepository(store)

	users := service.NewUserService(userRepo)
	posts := service.NewPostService(postRepo, userRepo)
	comments := service.NewCommentService(commentRepo, postRepo, userRepo)
	follows := service.NewFollowService(followRepo, userRepo)
	feed := service.NewFeedService(postRepo, commentRepo, userRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seeder := seed.NewSeeder(users, posts, comments, follows)
	userIDs, err := seeder.Run(ctx, seed.DefaultOptions())
	if err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}
	observability.GlobalLogger.Info("seeded demo data", "users", len(userIDs))

	unsubscribe, err := feed.Subscribe(ctx, service.FeedQuery{Limit: cfg.FeedLimit}, func(items []*models.Post) {
		observability.GlobalLogger.Info("feed snapshot", "posts", len(items))
		for _, p := range items {
			observability.GlobalLogger.Info("feed item",
				"post_id", p.ID,
				"author", p.AuthorName,
				"likes", p.LikesCount,
				"dislikes", p.DislikesCount,
				"comments", p.CommentsCount,
			)
		}
	})
	if err != nil {
		log.Fatalf("Failed to subscribe to feed: %v", err)
	}
	defer unsubscribe()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	unsubscribe()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("Tracing shutdown error: %v", err)
	}
}
