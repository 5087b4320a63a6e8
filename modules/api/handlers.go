package api

import (
	"errors"
	"slices"

	blogdomain "github.com/example/blog-realtime-demo/domain/blog"
	user "github.com/example/blog-realtime-demo/domain/user"
	"github.com/example/blog-realtime-demo/modules/auth"
	"github.com/example/blog-realtime-demo/modules/blog"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	// Health check
	app.Get("/health", m.healthHandler)

	// Live channel: authenticate before upgrading
	app.Use("/ws", m.wsHandshake)
	app.Get("/ws", websocket.New(m.handleWebSocket))

	// REST API v1
	v1 := app.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", m.register)
	authRoutes.Post("/login", m.login)
	authRoutes.Post("/refresh", m.refresh)

	posts := v1.Group("/posts")
	posts.Post("/", AuthMiddleware(m.authAdapter), m.createPost)
	posts.Post("/:id/publish", AuthMiddleware(m.authAdapter), m.publishPost)
	posts.Get("/:id", OptionalAuthMiddleware(m.authAdapter), m.getPost)
	posts.Get("/:id/activity", OptionalAuthMiddleware(m.authAdapter), m.getActivity)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.live.ClientCount(),
		},
	})
}

// register handles POST /api/v1/auth/register.
func (m *APIModule) register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return badRequest(c, "Username, email and password are required")
	}

	resp, err := m.authAdapter.Register(c.UserContext(), auth.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return m.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		ID:        resp.ID,
		Username:  resp.Username,
		Email:     resp.Email,
		CreatedAt: resp.CreatedAt,
	})
}

// login handles POST /api/v1/auth/login.
func (m *APIModule) login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	tokens, err := m.authAdapter.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return m.handleAuthError(c, err)
	}
	return c.JSON(tokenResponse(tokens))
}

// refresh handles POST /api/v1/auth/refresh.
func (m *APIModule) refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	tokens, err := m.authAdapter.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired refresh token",
		})
	}
	return c.JSON(tokenResponse(tokens))
}

// createPost handles POST /api/v1/posts.
func (m *APIModule) createPost(c *fiber.Ctx) error {
	identity := identityFrom(c)

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := m.blogAdapter.CreatePost(c.UserContext(), blog.CreatePostRequest{
		Title:      req.Title,
		Content:    req.Content,
		AuthorID:   identity.ID,
		AuthorName: identity.Username,
		Publish:    req.Publish,
	})
	if err != nil {
		return m.handleBlogError(c, err)
	}

	m.logger.Info("Post created", "postID", post.ID, "authorID", identity.ID, "status", post.Status)
	return c.Status(fiber.StatusCreated).JSON(m.postView(post, nil, identity))
}

// publishPost handles POST /api/v1/posts/:id/publish.
func (m *APIModule) publishPost(c *fiber.Ctx) error {
	identity := identityFrom(c)
	postID := c.Params("id")

	post, err := m.blogAdapter.GetPost(c.UserContext(), postID)
	if err != nil {
		return m.handleBlogError(c, err)
	}
	if post.AuthorID != identity.ID && !identity.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error:   "forbidden",
			Message: "Only the author can publish this post",
		})
	}

	post, err = m.blogAdapter.PublishPost(c.UserContext(), postID)
	if err != nil {
		return m.handleBlogError(c, err)
	}
	return c.JSON(m.postView(post, nil, identity))
}

// getPost handles GET /api/v1/posts/:id.
func (m *APIModule) getPost(c *fiber.Ctx) error {
	identity := identityFrom(c)
	postID := c.Params("id")

	post, err := m.blogAdapter.GetPost(c.UserContext(), postID)
	if err != nil {
		return m.handleBlogError(c, err)
	}
	if !visibleTo(post, identity) {
		return notFound(c, "Post not found")
	}

	comments, err := m.blogAdapter.ListComments(c.UserContext(), postID)
	if err != nil {
		return m.handleBlogError(c, err)
	}
	return c.JSON(m.postView(post, comments, identity))
}

// getActivity handles GET /api/v1/posts/:id/activity.
func (m *APIModule) getActivity(c *fiber.Ctx) error {
	identity := identityFrom(c)
	postID := c.Params("id")

	post, err := m.blogAdapter.GetPost(c.UserContext(), postID)
	if err != nil {
		return m.handleBlogError(c, err)
	}
	if !visibleTo(post, identity) {
		return notFound(c, "Post not found")
	}
	stats, _ := m.activity.Stats(postID)
	return c.JSON(stats)
}

// visibleTo hides drafts from everyone but their author and admins.
func visibleTo(post *blogdomain.Post, identity user.Identity) bool {
	return post.Published() || post.AuthorID == identity.ID || identity.IsAdmin()
}

func (m *APIModule) postView(post *blogdomain.Post, comments []*blogdomain.Comment, identity user.Identity) PostView {
	view := PostView{
		Post:      post,
		LikeCount: len(post.Likes),
		Liked:     likedBy(post.Likes, identity),
		Watchers:  m.live.RoomSize(post.ID),
		Comments:  make([]CommentView, 0, len(comments)),
	}
	for _, comment := range comments {
		view.Comments = append(view.Comments, CommentView{
			Comment:   comment,
			LikeCount: len(comment.Likes),
			Liked:     likedBy(comment.Likes, identity),
		})
	}
	return view
}

func likedBy(likes []string, identity user.Identity) bool {
	return !identity.Anonymous() && slices.Contains(likes, identity.ID)
}

func tokenResponse(tokens *user.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	}
}

// handleAuthError maps auth failures to responses without exposing internals.
func (m *APIModule) handleAuthError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid email or password",
		})
	case errors.Is(err, auth.ErrUserExists):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "User with this email or username already exists",
		})
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidUsername),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong):
		return badRequest(c, err.Error())
	default:
		m.logger.Error("Auth request failed", "path", c.Path(), "error", err)
		return internalError(c)
	}
}

// handleBlogError maps blog failures to responses without exposing internals.
func (m *APIModule) handleBlogError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, blogdomain.ErrPostNotFound):
		return notFound(c, "Post not found")
	case errors.Is(err, blogdomain.ErrInvalidPost):
		return badRequest(c, "Post title and content are required")
	default:
		m.logger.Error("Blog request failed", "path", c.Path(), "error", err)
		return internalError(c)
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Error:   "not_found",
		Message: message,
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
