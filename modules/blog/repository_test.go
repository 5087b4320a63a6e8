package blog

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/example/blog-realtime-demo/database"
	domain "github.com/example/blog-realtime-demo/domain/blog"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a repository over an in-memory SQLite database.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.OpenSQLite(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	repo := NewRepository(db)
	require.NoError(t, repo.Migrate())
	return repo
}

func createPost(t *testing.T, repo *Repository, status string) *domain.Post {
	t.Helper()

	post := &domain.Post{
		ID:         uuid.New().String(),
		Title:      "Hello",
		Content:    "First post",
		AuthorID:   "author-1",
		AuthorName: "author",
		Status:     status,
	}
	require.NoError(t, repo.CreatePost(context.Background(), post))
	return post
}

func createComment(t *testing.T, repo *Repository, postID string, parentID *string) *domain.Comment {
	t.Helper()

	comment := &domain.Comment{
		ID:         uuid.New().String(),
		Content:    "hello world, this is a test comment body",
		AuthorID:   "user-1",
		AuthorName: "alice",
		PostID:     postID,
		ParentID:   parentID,
	}
	require.NoError(t, repo.CreateComment(context.Background(), comment))
	return comment
}

func TestRepository_CreatePost(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	post := createPost(t, repo, domain.StatusDraft)

	found, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", found.Title)
	assert.False(t, found.Published())
	assert.Empty(t, found.Likes)
	assert.NotNil(t, found.Likes)

	err = repo.CreatePost(ctx, &domain.Post{ID: uuid.New().String(), Title: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidPost)
}

func TestRepository_PublishPost(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	post := createPost(t, repo, domain.StatusDraft)

	published, err := repo.PublishPost(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, published.Published())

	_, err = repo.PublishPost(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestRepository_CreateComment(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	published := createPost(t, repo, domain.StatusPublished)
	draft := createPost(t, repo, domain.StatusDraft)
	other := createPost(t, repo, domain.StatusPublished)
	parent := createComment(t, repo, published.ID, nil)
	nested := createComment(t, repo, published.ID, &parent.ID)
	foreign := createComment(t, repo, other.ID, nil)
	padded := strings.Repeat(" ", 5000) + "x" + strings.Repeat("\n", 5000)

	missing := "missing"

	tests := []struct {
		name     string
		postID   string
		parentID *string
		content  string
		want     string
		wantErr  error
	}{
		{name: "top level", postID: published.ID, content: "nice post", want: "nice post"},
		{name: "surrounding whitespace trimmed", postID: published.ID, content: "  nice post \n", want: "nice post"},
		{name: "padding over the limit", postID: published.ID, content: padded, wantErr: domain.ErrInvalidContent},
		{name: "too long", postID: published.ID, content: strings.Repeat("x", 1001), wantErr: domain.ErrInvalidContent},
		{name: "reply", postID: published.ID, parentID: &parent.ID, content: "agreed", want: "agreed"},
		{name: "reply to a reply", postID: published.ID, parentID: &nested.ID, content: "agreed", wantErr: domain.ErrInvalidParent},
		{name: "empty content", postID: published.ID, content: "   ", wantErr: domain.ErrInvalidContent},
		{name: "missing post", postID: "missing", content: "nice post", wantErr: domain.ErrPostNotFound},
		{name: "draft post", postID: draft.ID, content: "nice post", wantErr: domain.ErrPostNotPublished},
		{name: "missing parent", postID: published.ID, parentID: &missing, content: "agreed", wantErr: domain.ErrCommentNotFound},
		{name: "parent on other post", postID: published.ID, parentID: &foreign.ID, content: "agreed", wantErr: domain.ErrInvalidParent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comment := &domain.Comment{
				ID:       uuid.New().String(),
				Content:  tt.content,
				AuthorID: "user-2",
				PostID:   tt.postID,
				ParentID: tt.parentID,
			}
			err := repo.CreateComment(ctx, comment)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				_, getErr := repo.GetComment(ctx, comment.ID)
				assert.ErrorIs(t, getErr, domain.ErrCommentNotFound)
				return
			}
			require.NoError(t, err)

			found, err := repo.GetComment(ctx, comment.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, found.Content)
			assert.Equal(t, tt.want, comment.Content)
			assert.False(t, found.IsEdited)
		})
	}
}

func TestRepository_UpdateComment(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	post := createPost(t, repo, domain.StatusPublished)
	comment := createComment(t, repo, post.ID, nil)

	updated, err := repo.UpdateComment(ctx, comment.ID, "edited body")
	require.NoError(t, err)
	assert.Equal(t, "edited body", updated.Content)
	assert.True(t, updated.IsEdited)

	_, err = repo.UpdateComment(ctx, "missing", "edited body")
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)

	_, err = repo.UpdateComment(ctx, comment.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidContent)

	_, err = repo.UpdateComment(ctx, comment.ID, strings.Repeat(" ", 1000)+"x")
	assert.ErrorIs(t, err, domain.ErrInvalidContent)

	updated, err = repo.UpdateComment(ctx, comment.ID, "\t trimmed body  ")
	require.NoError(t, err)
	assert.Equal(t, "trimmed body", updated.Content)

	found, err := repo.GetComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "trimmed body", found.Content)
}

func TestRepository_DeleteComment(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	post := createPost(t, repo, domain.StatusPublished)
	root := createComment(t, repo, post.ID, nil)
	reply := createComment(t, repo, post.ID, &root.ID)
	sibling := createComment(t, repo, post.ID, nil)

	_, err := repo.SetCommentLike(ctx, reply.ID, "user-9", domain.LikeModeLike)
	require.NoError(t, err)

	deleted, err := repo.DeleteComment(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, deleted.PostID)

	comments, err := repo.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, sibling.ID, comments[0].ID)

	var orphanLikes int64
	require.NoError(t, repo.db.Model(&domain.CommentLike{}).Where("comment_id = ?", reply.ID).Count(&orphanLikes).Error)
	assert.Zero(t, orphanLikes)

	_, err = repo.DeleteComment(ctx, root.ID)
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)
}

func TestRepository_ListCommentsLoadsLikes(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	post := createPost(t, repo, domain.StatusPublished)
	first := createComment(t, repo, post.ID, nil)
	second := createComment(t, repo, post.ID, nil)

	for _, user := range []string{"u1", "u2"} {
		_, err := repo.SetCommentLike(ctx, first.ID, user, domain.LikeModeLike)
		require.NoError(t, err)
	}

	comments, err := repo.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.ElementsMatch(t, []string{"u1", "u2"}, comments[0].Likes)
	assert.Equal(t, second.ID, comments[1].ID)
	assert.Empty(t, comments[1].Likes)
}

func TestRepository_SetPostLike(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	post := createPost(t, repo, domain.StatusPublished)

	steps := []struct {
		user      string
		mode      domain.LikeMode
		wantLiked bool
		wantCount int
	}{
		{user: "a", mode: domain.LikeModeLike, wantLiked: true, wantCount: 1},
		{user: "a", mode: domain.LikeModeLike, wantLiked: true, wantCount: 1},
		{user: "b", mode: domain.LikeModeToggle, wantLiked: true, wantCount: 2},
		{user: "a", mode: domain.LikeModeUnlike, wantLiked: false, wantCount: 1},
		{user: "a", mode: domain.LikeModeUnlike, wantLiked: false, wantCount: 1},
		{user: "b", mode: domain.LikeModeToggle, wantLiked: false, wantCount: 0},
	}

	for i, step := range steps {
		result, err := repo.SetPostLike(ctx, post.ID, step.user, step.mode)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.wantLiked, result.Liked, "step %d", i)
		assert.Equal(t, step.wantCount, result.Count, "step %d", i)
	}

	_, err := repo.SetPostLike(ctx, "missing", "a", domain.LikeModeLike)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	_, err = repo.SetPostLike(ctx, post.ID, "a", domain.LikeMode("love"))
	assert.ErrorIs(t, err, domain.ErrInvalidLikeMode)
}

func TestRepository_ToggleTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	post := createPost(t, repo, domain.StatusPublished)
	comment := createComment(t, repo, post.ID, nil)

	_, err := repo.SetCommentLike(ctx, comment.ID, "other", domain.LikeModeLike)
	require.NoError(t, err)

	before, err := repo.GetComment(ctx, comment.ID)
	require.NoError(t, err)

	_, err = repo.SetCommentLike(ctx, comment.ID, "me", domain.LikeModeToggle)
	require.NoError(t, err)
	result, err := repo.SetCommentLike(ctx, comment.ID, "me", domain.LikeModeToggle)
	require.NoError(t, err)

	after, err := repo.GetComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Equal(t, len(before.Likes), result.Count)
	assert.Equal(t, before.Likes, after.Likes)
}

func TestRepository_ConcurrentTogglers(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	post := createPost(t, repo, domain.StatusPublished)

	const users = 24
	want := 0
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		toggles := i%3 + 1
		if toggles%2 == 1 {
			want++
		}
		wg.Add(1)
		go func(user string, toggles int) {
			defer wg.Done()
			for j := 0; j < toggles; j++ {
				_, err := repo.SetPostLike(ctx, post.ID, user, domain.LikeModeToggle)
				assert.NoError(t, err)
			}
		}(uuid.New().String(), toggles)
	}
	wg.Wait()

	found, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, found.Likes, want)

	result, err := repo.SetPostLike(ctx, post.ID, "late", domain.LikeModeUnlike)
	require.NoError(t, err)
	assert.Equal(t, want, result.Count)
}
