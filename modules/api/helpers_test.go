package api

import (
	"context"
	"errors"
	"sync"

	blogdomain "github.com/example/blog-realtime-demo/domain/blog"
	user "github.com/example/blog-realtime-demo/domain/user"
	"github.com/example/blog-realtime-demo/modules/activity"
	"github.com/example/blog-realtime-demo/modules/auth"
	"github.com/example/blog-realtime-demo/modules/blog"
	"github.com/example/blog-realtime-demo/modules/live"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

var errNotImplemented = errors.New("not implemented")

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)          {}
func (m *mockLogger) Info(msg string, args ...any)           {}
func (m *mockLogger) Warn(msg string, args ...any)           {}
func (m *mockLogger) Error(msg string, args ...any)          {}
func (m *mockLogger) With(args ...any) types.Logger          { return m }
func (m *mockLogger) WithError(err error) types.Logger       { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// mockAuthPort implements auth.AuthPort for testing
type mockAuthPort struct {
	authenticateFunc func(ctx context.Context, token string) (user.Identity, error)
	registerFunc     func(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error)
	loginFunc        func(ctx context.Context, email, password string) (*user.TokenPair, error)
}

func (m *mockAuthPort) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) Login(ctx context.Context, email, password string) (*user.TokenPair, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) Refresh(context.Context, string) (*user.TokenPair, error) {
	return nil, auth.ErrInvalidToken
}

func (m *mockAuthPort) Authenticate(ctx context.Context, token string) (user.Identity, error) {
	if m.authenticateFunc != nil {
		return m.authenticateFunc(ctx, token)
	}
	return user.Identity{}, errNotImplemented
}

func (m *mockAuthPort) LookupUser(context.Context, string) (user.Identity, error) {
	return user.Identity{}, user.ErrUserNotFound
}

// tokenAuth accepts tokens of the form "token-<id>" for the given identities.
func tokenAuth(identities ...user.Identity) *mockAuthPort {
	return &mockAuthPort{
		authenticateFunc: func(_ context.Context, token string) (user.Identity, error) {
			for _, identity := range identities {
				if token == "token-"+identity.ID {
					return identity, nil
				}
			}
			return user.Identity{}, auth.ErrInvalidToken
		},
	}
}

// fakeBlog implements blog.BlogPort over a map of posts.
type fakeBlog struct {
	mu       sync.Mutex
	posts    map[string]*blogdomain.Post
	comments map[string][]*blogdomain.Comment
}

var _ blog.BlogPort = (*fakeBlog)(nil)

func newFakeBlog() *fakeBlog {
	return &fakeBlog{
		posts:    make(map[string]*blogdomain.Post),
		comments: make(map[string][]*blogdomain.Comment),
	}
}

func (b *fakeBlog) CreatePost(_ context.Context, req blog.CreatePostRequest) (*blogdomain.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if req.Title == "" || req.Content == "" {
		return nil, blogdomain.ErrInvalidPost
	}
	status := blogdomain.StatusDraft
	if req.Publish {
		status = blogdomain.StatusPublished
	}
	post := &blogdomain.Post{
		ID:         "new-post",
		Title:      req.Title,
		Content:    req.Content,
		AuthorID:   req.AuthorID,
		AuthorName: req.AuthorName,
		Status:     status,
		Likes:      []string{},
	}
	b.posts[post.ID] = post
	return post, nil
}

func (b *fakeBlog) PublishPost(_ context.Context, postID string) (*blogdomain.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	post, ok := b.posts[postID]
	if !ok {
		return nil, blogdomain.ErrPostNotFound
	}
	post.Status = blogdomain.StatusPublished
	return post, nil
}

func (b *fakeBlog) GetPost(_ context.Context, postID string) (*blogdomain.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	post, ok := b.posts[postID]
	if !ok {
		return nil, blogdomain.ErrPostNotFound
	}
	return post, nil
}

func (b *fakeBlog) ListComments(_ context.Context, postID string) ([]*blogdomain.Comment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.comments[postID], nil
}

func (b *fakeBlog) CreateComment(context.Context, blogdomain.Comment) (*blogdomain.Comment, error) {
	return nil, errNotImplemented
}

func (b *fakeBlog) GetComment(context.Context, string) (*blogdomain.Comment, error) {
	return nil, errNotImplemented
}

func (b *fakeBlog) UpdateComment(context.Context, string, string) (*blogdomain.Comment, error) {
	return nil, errNotImplemented
}

func (b *fakeBlog) DeleteComment(context.Context, string) (*blogdomain.Comment, error) {
	return nil, errNotImplemented
}

func (b *fakeBlog) SetPostLike(context.Context, string, string, blogdomain.LikeMode) (blogdomain.LikeResult, error) {
	return blogdomain.LikeResult{}, errNotImplemented
}

func (b *fakeBlog) SetCommentLike(context.Context, string, string, blogdomain.LikeMode) (blogdomain.LikeResult, error) {
	return blogdomain.LikeResult{}, errNotImplemented
}

// fakeLive implements LiveGateway without a live service.
type fakeLive struct {
	authenticator *mockAuthPort
	watchers      map[string]int
}

func (l *fakeLive) Handshake(ctx context.Context, credential string) (user.Identity, error) {
	if credential == "" {
		return user.Identity{}, live.ErrUnauthenticated
	}
	identity, err := l.authenticator.Authenticate(ctx, credential)
	if err != nil {
		return user.Identity{}, live.ErrUnauthenticated
	}
	return identity, nil
}

func (l *fakeLive) Connect(context.Context, user.Identity) *live.Client { return nil }

func (l *fakeLive) Dispatch(context.Context, *live.Client, []byte) {}

func (l *fakeLive) Disconnect(context.Context, *live.Client) {}

func (l *fakeLive) ClientCount() int { return 0 }

func (l *fakeLive) RoomSize(postID string) int { return l.watchers[postID] }

// fakeActivity implements ActivityReader over fixed stats.
type fakeActivity map[string]activity.PostStats

func (a fakeActivity) Stats(postID string) (activity.PostStats, bool) {
	stats, ok := a[postID]
	if !ok {
		return activity.PostStats{PostID: postID}, false
	}
	return stats, true
}

// newTestApp builds the API's Fiber app over fakes.
func newTestApp(authPort *mockAuthPort, blogPort *fakeBlog, stats fakeActivity) *fiber.App {
	m := &APIModule{
		authAdapter: authPort,
		blogAdapter: blogPort,
		live:        &fakeLive{authenticator: authPort, watchers: map[string]int{"p1": 2}},
		activity:    stats,
		corsOrigins: defaultCORSOrigins,
		logger:      &mockLogger{},
	}
	return m.newApp()
}
