package api

import (
	"context"
	"fmt"
	"os"
	"time"

	user "github.com/example/blog-realtime-demo/domain/user"
	"github.com/example/blog-realtime-demo/modules/activity"
	"github.com/example/blog-realtime-demo/modules/auth"
	"github.com/example/blog-realtime-demo/modules/blog"
	"github.com/example/blog-realtime-demo/modules/live"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const defaultCORSOrigins = "http://localhost:3000,http://localhost:5173"

// LiveGateway is the part of the live module the transport drives.
type LiveGateway interface {
	Handshake(ctx context.Context, credential string) (user.Identity, error)
	Connect(ctx context.Context, identity user.Identity) *live.Client
	Dispatch(ctx context.Context, c *live.Client, raw []byte)
	Disconnect(ctx context.Context, c *live.Client)
	ClientCount() int
	RoomSize(postID string) int
}

// ActivityReader exposes per-post activity counters.
type ActivityReader interface {
	Stats(postID string) (activity.PostStats, bool)
}

// APIModule is the HTTP API module with WebSocket support.
type APIModule struct {
	app         *fiber.App
	authAdapter auth.AuthPort
	blogAdapter blog.BlogPort
	live        LiveGateway
	activity    ActivityReader
	port        string
	corsOrigins string
	logger      types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
	_ LiveGateway                = (*live.LiveModule)(nil)
	_ ActivityReader             = (*activity.ActivityModule)(nil)
)

// NewModule creates a new APIModule.
func NewModule(logger types.Logger) *APIModule {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if origins == "" {
		origins = defaultCORSOrigins
	}
	return &APIModule{
		port:        port,
		corsOrigins: origins,
		logger:      logger,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "blog"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authAdapter = auth.NewAuthAdapter(container)
	case "blog":
		m.blogAdapter = blog.NewBlogAdapter(container)
	}
}

// SetLive sets the live gateway (called from main.go).
func (m *APIModule) SetLive(gateway LiveGateway) {
	m.live = gateway
}

// SetActivity sets the activity reader (called from main.go).
func (m *APIModule) SetActivity(reader ActivityReader) {
	m.activity = reader
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authAdapter == nil {
		return fmt.Errorf("auth adapter dependency not set")
	}
	if m.blogAdapter == nil {
		return fmt.Errorf("blog adapter dependency not set")
	}
	if m.live == nil {
		return fmt.Errorf("live gateway not set")
	}
	if m.activity == nil {
		return fmt.Errorf("activity reader not set")
	}

	m.app = m.newApp()

	// Start server in goroutine
	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "port", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	details := map[string]any{
		"port": m.port,
	}
	if m.live != nil {
		details["connected_clients"] = m.live.ClientCount()
	}
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: details,
	}
}

// newApp builds the Fiber application with middleware and routes.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderUpgrade) == "websocket"
		},
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: m.corsOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	m.setupRoutes(app)
	return app
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
