package activity

import (
	"sort"
	"sync"
	"time"
)

// PostStats summarises the live activity seen for one post since startup.
type PostStats struct {
	PostID          string    `json:"post_id"`
	CommentsAdded   int       `json:"comments_added"`
	CommentsUpdated int       `json:"comments_updated"`
	CommentsDeleted int       `json:"comments_deleted"`
	Replies         int       `json:"replies"`
	PostLikes       int       `json:"post_likes"`
	LikeChanges     int       `json:"like_changes"`
	Participants    int       `json:"participants"`
	LastActivity    time.Time `json:"last_activity"`
}

// tally accumulates PostStats for every post.
type tally struct {
	mu    sync.RWMutex
	posts map[string]*postTally
}

type postTally struct {
	stats        PostStats
	participants map[string]struct{}
}

func newTally() *tally {
	return &tally{posts: make(map[string]*postTally)}
}

// record applies fn to postID's counters and marks userID as a participant.
func (t *tally) record(postID, userID string, at time.Time, fn func(s *PostStats)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.posts[postID]
	if !ok {
		p = &postTally{
			stats:        PostStats{PostID: postID},
			participants: make(map[string]struct{}),
		}
		t.posts[postID] = p
	}

	fn(&p.stats)
	if userID != "" {
		p.participants[userID] = struct{}{}
		p.stats.Participants = len(p.participants)
	}
	if at.After(p.stats.LastActivity) {
		p.stats.LastActivity = at
	}
}

func (t *tally) get(postID string) (PostStats, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.posts[postID]
	if !ok {
		return PostStats{PostID: postID}, false
	}
	return p.stats, true
}

// top returns up to n posts ordered by most recent activity.
func (t *tally) top(n int) []PostStats {
	t.mu.RLock()
	out := make([]PostStats, 0, len(t.posts))
	for _, p := range t.posts {
		out = append(out, p.stats)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].LastActivity.Equal(out[j].LastActivity) {
			return out[i].PostID < out[j].PostID
		}
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func (t *tally) size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.posts)
}
