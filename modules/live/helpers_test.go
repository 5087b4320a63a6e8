package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	blog "github.com/example/blog-realtime-demo/domain/blog"
	user "github.com/example/blog-realtime-demo/domain/user"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)          {}
func (m *mockLogger) Info(msg string, args ...any)           {}
func (m *mockLogger) Warn(msg string, args ...any)           {}
func (m *mockLogger) Error(msg string, args ...any)          {}
func (m *mockLogger) With(args ...any) types.Logger          { return m }
func (m *mockLogger) WithError(err error) types.Logger       { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// memStore is an in-memory Store. Every operation holds the lock for its
// whole duration, so like mutations are atomic.
type memStore struct {
	mu       sync.Mutex
	seq      int
	posts    map[string]*blog.Post
	comments map[string]*blog.Comment
	likes    map[string]map[string]struct{}

	// gate, when set, blocks CreateComment until it is closed.
	gate chan struct{}
	// failWith, when set, is returned by every mutation.
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		posts:    make(map[string]*blog.Post),
		comments: make(map[string]*blog.Comment),
		likes:    make(map[string]map[string]struct{}),
	}
}

func (s *memStore) addPost(id, authorID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[id] = &blog.Post{ID: id, Title: id, Content: id, AuthorID: authorID, Status: status}
}

func (s *memStore) commentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comments)
}

func (s *memStore) GetPost(_ context.Context, postID string) (*blog.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return nil, blog.ErrPostNotFound
	}
	cp := *p
	cp.Likes = s.likeList("post:" + postID)
	return &cp, nil
}

func (s *memStore) GetComment(_ context.Context, commentID string) (*blog.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[commentID]
	if !ok {
		return nil, blog.ErrCommentNotFound
	}
	cp := *c
	cp.Likes = s.likeList("comment:" + commentID)
	return &cp, nil
}

func (s *memStore) CreateComment(_ context.Context, draft blog.Comment) (*blog.Comment, error) {
	if s.gate != nil {
		<-s.gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	if !blog.ValidCommentContent(draft.Content) {
		return nil, blog.ErrInvalidContent
	}
	draft.Content = blog.NormalizeCommentContent(draft.Content)
	post, ok := s.posts[draft.PostID]
	if !ok {
		return nil, blog.ErrPostNotFound
	}
	if !post.Published() {
		return nil, blog.ErrPostNotPublished
	}
	if draft.ParentID != nil {
		parent, ok := s.comments[*draft.ParentID]
		if !ok {
			return nil, blog.ErrCommentNotFound
		}
		if parent.PostID != draft.PostID || parent.ParentID != nil {
			return nil, blog.ErrInvalidParent
		}
	}

	s.seq++
	draft.ID = fmt.Sprintf("c%04d", s.seq)
	draft.Likes = []string{}
	s.comments[draft.ID] = &draft
	cp := draft
	return &cp, nil
}

func (s *memStore) UpdateComment(_ context.Context, commentID, content string) (*blog.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	c, ok := s.comments[commentID]
	if !ok {
		return nil, blog.ErrCommentNotFound
	}
	c.Content = blog.NormalizeCommentContent(content)
	c.IsEdited = true
	cp := *c
	cp.Likes = s.likeList("comment:" + commentID)
	return &cp, nil
}

func (s *memStore) DeleteComment(_ context.Context, commentID string) (*blog.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	c, ok := s.comments[commentID]
	if !ok {
		return nil, blog.ErrCommentNotFound
	}
	delete(s.comments, commentID)
	delete(s.likes, "comment:"+commentID)
	return c, nil
}

func (s *memStore) SetPostLike(_ context.Context, postID, userID string, mode blog.LikeMode) (blog.LikeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return blog.LikeResult{}, blog.ErrPostNotFound
	}
	return s.applyLike("post:"+postID, userID, mode)
}

func (s *memStore) SetCommentLike(_ context.Context, commentID, userID string, mode blog.LikeMode) (blog.LikeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[commentID]; !ok {
		return blog.LikeResult{}, blog.ErrCommentNotFound
	}
	return s.applyLike("comment:"+commentID, userID, mode)
}

func (s *memStore) applyLike(key, userID string, mode blog.LikeMode) (blog.LikeResult, error) {
	if s.failWith != nil {
		return blog.LikeResult{}, s.failWith
	}
	set := s.likes[key]
	if set == nil {
		set = make(map[string]struct{})
		s.likes[key] = set
	}
	_, liked := set[userID]
	switch mode {
	case blog.LikeModeLike:
		liked = true
	case blog.LikeModeUnlike:
		liked = false
	default:
		liked = !liked
	}
	if liked {
		set[userID] = struct{}{}
	} else {
		delete(set, userID)
	}
	return blog.LikeResult{Liked: liked, Count: len(set)}, nil
}

func (s *memStore) likeList(key string) []string {
	ids := []string{}
	for id := range s.likes[key] {
		ids = append(ids, id)
	}
	return ids
}

// fakeAuth resolves tokens of the form "token-<id>" for known users.
type fakeAuth struct {
	users map[string]user.Identity
}

func (a *fakeAuth) Authenticate(_ context.Context, token string) (user.Identity, error) {
	for _, u := range a.users {
		if token == "token-"+u.ID {
			return u, nil
		}
	}
	return user.Identity{}, errors.New("invalid token")
}

func (a *fakeAuth) LookupUser(_ context.Context, userID string) (user.Identity, error) {
	u, ok := a.users[userID]
	if !ok {
		return user.Identity{}, user.ErrUserNotFound
	}
	return u, nil
}

type harness struct {
	svc   *Service
	store *memStore
	auth  *fakeAuth
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithConfig(t, Config{EventsPerSecond: 1000, EventBurst: 1000, SendBuffer: 256})
}

func newHarnessWithConfig(t *testing.T, cfg Config) *harness {
	t.Helper()

	store := newMemStore()
	store.addPost("post-42", "author", blog.StatusPublished)
	store.addPost("p1", "author", blog.StatusPublished)
	store.addPost("p2", "author", blog.StatusPublished)
	store.addPost("draft", "author", blog.StatusDraft)

	auth := &fakeAuth{users: map[string]user.Identity{
		"author": {ID: "author", Username: "author"},
		"admin":  {ID: "admin", Username: "admin", Role: user.RoleAdmin},
	}}
	svc := NewService(store, auth, auth, nil, &mockLogger{}, cfg)
	t.Cleanup(svc.Wait)

	return &harness{svc: svc, store: store, auth: auth}
}

// connect opens a connection for id and discards the greeting.
func (h *harness) connect(t *testing.T, id string) *Client {
	t.Helper()

	identity, ok := h.auth.users[id]
	if !ok {
		identity = user.Identity{ID: id, Username: "user-" + id}
		h.auth.users[id] = identity
	}
	c := h.svc.Connect(context.Background(), identity)
	frames := drain(c)
	require.Len(t, frames, 1)
	require.Equal(t, EventConnected, frames[0].Event)
	return c
}

// emit dispatches one event from c.
func (h *harness) emit(t *testing.T, c *Client, event string, data any) {
	t.Helper()

	raw, err := json.Marshal(map[string]any{"event": event, "data": data})
	require.NoError(t, err)
	h.svc.Dispatch(context.Background(), c, raw)
}

// drain returns the frames queued for c without blocking.
func drain(c *Client) []Envelope {
	var frames []Envelope
	for {
		select {
		case raw, ok := <-c.send:
			if !ok {
				return frames
			}
			var env Envelope
			if err := json.Unmarshal(raw, &env); err == nil {
				frames = append(frames, env)
			}
		default:
			return frames
		}
	}
}

// only returns the frames named event.
func only(frames []Envelope, event string) []Envelope {
	var out []Envelope
	for _, f := range frames {
		if f.Event == event {
			out = append(out, f)
		}
	}
	return out
}

func decode[T any](t *testing.T, env Envelope) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}
