package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/blog-realtime-demo/modules/activity"
	"github.com/example/blog-realtime-demo/modules/api"
	"github.com/example/blog-realtime-demo/modules/auth"
	"github.com/example/blog-realtime-demo/modules/blog"
	"github.com/example/blog-realtime-demo/modules/live"
	"github.com/example/blog-realtime-demo/modules/presence"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Blog Realtime Demo - Fiber WebSocket + EventBus ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Create modules
	authModule := auth.NewModule(logger)
	blogModule := blog.NewModule(logger)
	presenceModule := presence.NewModule(logger)
	liveModule := live.NewModule(logger)
	activityModule := activity.NewModule(logger)
	apiModule := api.NewModule(logger)

	// Wire collaborators that are not exposed via ServiceContainer
	liveModule.SetPresence(presenceModule)
	apiModule.SetLive(liveModule)
	apiModule.SetActivity(activityModule)

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - auth: users and tokens (ServiceProviderModule)
	// - blog: posts, comments and like sets (ServiceProviderModule)
	// - presence: per-identity connection counts (memory or Redis)
	// - live: rooms, mutations and broadcasts (depends on auth, blog; EventEmitterModule)
	// - activity: per-post counters (EventConsumerModule)
	// - api: Fiber HTTP/WebSocket transport (depends on auth, blog)
	app.Register(authModule)
	app.Register(blogModule)
	app.Register(presenceModule)
	app.Register(liveModule)
	app.Register(activityModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	presenceBackend := "memory"
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		presenceBackend = "redis (" + addr + ")"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Storage: SQLite via GORM")
	log.Printf("  - Presence: %s", presenceBackend)
	log.Println("  - Event Bus: live -> activity (CommentAdded, PostLikesUpdated, ...)")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                      - Health check")
	log.Println("  POST   /api/v1/auth/register        - Create an account")
	log.Println("  POST   /api/v1/auth/login           - Obtain tokens")
	log.Println("  POST   /api/v1/auth/refresh         - Refresh tokens")
	log.Println("  POST   /api/v1/posts                - Create a post (auth)")
	log.Println("  POST   /api/v1/posts/:id/publish    - Publish a post (author/admin)")
	log.Println("  GET    /api/v1/posts/:id            - Get a post with comments")
	log.Println("  GET    /api/v1/posts/:id/activity   - Live activity counters")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", port)
	log.Printf("  Connect with: ws://localhost:%s/ws?token=<access_token>", port)
	log.Println("  Frames: {\"event\": \"join-post\", \"data\": {\"postId\": \"...\"}}")
	log.Println("  Events: join-post, leave-post, new-comment, update-comment, delete-comment,")
	log.Println("          post-like, comment-like, typing-start, typing-stop, user-online, private-message")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
