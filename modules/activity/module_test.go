package activity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/example/blog-realtime-demo/events"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
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

func TestActivityModule_TalliesEvents(t *testing.T) {
	m := NewModule(&mockLogger{})
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, m.handleCommentAdded(ctx, events.CommentAddedEvent{
		CommentID: "c1", PostID: "p1", AuthorID: "alice", Timestamp: base,
	}, nil))
	require.NoError(t, m.handleCommentAdded(ctx, events.CommentAddedEvent{
		CommentID: "c2", PostID: "p1", ParentID: "c1", AuthorID: "bob", Timestamp: base.Add(time.Minute),
	}, nil))
	require.NoError(t, m.handleCommentUpdated(ctx, events.CommentUpdatedEvent{
		CommentID: "c1", PostID: "p1", EditorID: "alice", Timestamp: base.Add(2 * time.Minute),
	}, nil))
	require.NoError(t, m.handlePostLikesUpdated(ctx, events.LikesUpdatedEvent{
		PostID: "p1", UserID: "carol", Action: "like", Likes: 3, Timestamp: base.Add(3 * time.Minute),
	}, nil))
	require.NoError(t, m.handleCommentLikesUpdated(ctx, events.LikesUpdatedEvent{
		PostID: "p1", CommentID: "c1", UserID: "bob", Action: "like", Likes: 1, Timestamp: base.Add(4 * time.Minute),
	}, nil))
	require.NoError(t, m.handleCommentDeleted(ctx, events.CommentDeletedEvent{
		CommentID: "c2", PostID: "p1", DeletedBy: "bob", Timestamp: base.Add(30 * time.Second),
	}, nil))

	stats, ok := m.Stats("p1")
	require.True(t, ok)
	assert.Equal(t, PostStats{
		PostID:          "p1",
		CommentsAdded:   2,
		CommentsUpdated: 1,
		CommentsDeleted: 1,
		Replies:         1,
		PostLikes:       3,
		LikeChanges:     2,
		Participants:    3,
		LastActivity:    base.Add(4 * time.Minute),
	}, stats)
}

func TestActivityModule_UnknownPost(t *testing.T) {
	m := NewModule(&mockLogger{})

	stats, ok := m.Stats("nope")
	assert.False(t, ok)
	assert.Equal(t, PostStats{PostID: "nope"}, stats)
}

func TestActivityModule_Recent(t *testing.T) {
	m := NewModule(&mockLogger{})
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, postID := range []string{"old", "newest", "middle"} {
		at := map[string]time.Time{
			"old":    base,
			"middle": base.Add(time.Hour),
			"newest": base.Add(2 * time.Hour),
		}[postID]
		require.NoError(t, m.handleCommentAdded(ctx, events.CommentAddedEvent{
			CommentID: string(rune('a' + i)), PostID: postID, AuthorID: "u", Timestamp: at,
		}, nil))
	}

	recent := m.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "newest", recent[0].PostID)
	assert.Equal(t, "middle", recent[1].PostID)
	assert.Len(t, m.Recent(0), 3)
}

func TestActivityModule_ConcurrentEvents(t *testing.T) {
	m := NewModule(&mockLogger{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.handleCommentAdded(ctx, events.CommentAddedEvent{PostID: "p1", AuthorID: "u", Timestamp: time.Now()}, nil)
			_ = m.handleCommentLikesUpdated(ctx, events.LikesUpdatedEvent{PostID: "p1", UserID: "u", Timestamp: time.Now()}, nil)
		}()
	}
	wg.Wait()

	stats, _ := m.Stats("p1")
	assert.Equal(t, 50, stats.CommentsAdded)
	assert.Equal(t, 50, stats.LikeChanges)
	assert.Equal(t, 1, stats.Participants)
}

func TestActivityModule_Health(t *testing.T) {
	m := NewModule(&mockLogger{})
	require.NoError(t, m.Start(context.Background()))

	health := m.Health(context.Background())
	assert.True(t, health.Healthy)
	assert.Equal(t, 0, health.Details["tracked_posts"])
}
