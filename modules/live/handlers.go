package live

import (
	"context"
	"time"

	blog "github.com/example/blog-realtime-demo/domain/blog"
	user "github.com/example/blog-realtime-demo/domain/user"
)

func (s *Service) joinPost(_ context.Context, c *Client, p *RoomPayload) error {
	if !s.registry.Join(c, p.PostID) {
		return invalid("connection is closed")
	}
	s.logger.Debug("Joined post", "clientID", c.ID, "postID", p.PostID)
	return nil
}

func (s *Service) leavePost(_ context.Context, c *Client, p *RoomPayload) error {
	s.registry.Leave(c, p.PostID)
	s.logger.Debug("Left post", "clientID", c.ID, "postID", p.PostID)
	return nil
}

func (s *Service) newComment(ctx context.Context, c *Client, p *NewCommentPayload) error {
	draft := blog.Comment{
		Content:    blog.NormalizeCommentContent(p.Content),
		AuthorID:   c.Identity.ID,
		AuthorName: c.Identity.Username,
		PostID:     p.PostID,
		ParentID:   p.ParentComment,
	}

	s.inRoom(ctx, c, p.PostID, EventCommentError, func(ctx context.Context) error {
		comment, err := s.store.CreateComment(ctx, draft)
		if err != nil {
			return classify(err)
		}

		s.broadcast(p.PostID, EventCommentAdded, CommentData{Comment: comment, PostID: p.PostID}, nil)
		s.notifier.CommentAdded(ctx, comment)
		return nil
	})
	return nil
}

func (s *Service) updateComment(ctx context.Context, c *Client, p *UpdateCommentPayload) error {
	s.inRoom(ctx, c, p.PostID, EventCommentError, func(ctx context.Context) error {
		existing, err := s.commentInPost(ctx, p.CommentID, p.PostID)
		if err != nil {
			return err
		}
		if existing.AuthorID != c.Identity.ID && !c.Identity.IsAdmin() {
			return unauthorized("only the author can edit this comment")
		}

		comment, err := s.store.UpdateComment(ctx, p.CommentID, blog.NormalizeCommentContent(p.Content))
		if err != nil {
			return classify(err)
		}

		s.broadcast(p.PostID, EventCommentUpdated, CommentData{Comment: comment, PostID: p.PostID}, nil)
		s.notifier.CommentUpdated(ctx, comment, c.Identity.ID)
		return nil
	})
	return nil
}

func (s *Service) deleteComment(ctx context.Context, c *Client, p *DeleteCommentPayload) error {
	s.inRoom(ctx, c, p.PostID, EventCommentError, func(ctx context.Context) error {
		existing, err := s.commentInPost(ctx, p.CommentID, p.PostID)
		if err != nil {
			return err
		}
		if err := s.canDelete(ctx, c.Identity, existing); err != nil {
			return err
		}

		deleted, err := s.store.DeleteComment(ctx, p.CommentID)
		if err != nil {
			return classify(err)
		}

		s.broadcast(p.PostID, EventCommentDeleted, CommentDeletedData{CommentID: p.CommentID, PostID: p.PostID}, nil)
		s.notifier.CommentDeleted(ctx, deleted, c.Identity.ID)
		return nil
	})
	return nil
}

func (s *Service) postLike(ctx context.Context, c *Client, p *PostLikePayload) error {
	mode := likeMode(p.Action)

	s.inRoom(ctx, c, p.PostID, EventPostError, func(ctx context.Context) error {
		result, err := s.store.SetPostLike(ctx, p.PostID, c.Identity.ID, mode)
		if err != nil {
			return classify(err)
		}

		s.broadcast(p.PostID, EventPostLikesUpdated, PostLikesData{
			PostID: p.PostID,
			Likes:  result.Count,
			Action: result.Action(),
			UserID: c.Identity.ID,
		}, nil)
		s.notifier.PostLikesUpdated(ctx, p.PostID, c.Identity.ID, result)
		return nil
	})
	return nil
}

func (s *Service) commentLike(ctx context.Context, c *Client, p *CommentLikePayload) error {
	mode := likeMode(p.Action)

	s.inRoom(ctx, c, p.PostID, EventCommentError, func(ctx context.Context) error {
		if _, err := s.commentInPost(ctx, p.CommentID, p.PostID); err != nil {
			return err
		}

		result, err := s.store.SetCommentLike(ctx, p.CommentID, c.Identity.ID, mode)
		if err != nil {
			return classify(err)
		}

		s.broadcast(p.PostID, EventCommentLikesUpdated, CommentLikesData{
			CommentID: p.CommentID,
			PostID:    p.PostID,
			Likes:     result.Count,
			Action:    result.Action(),
			UserID:    c.Identity.ID,
		}, nil)
		s.notifier.CommentLikesUpdated(ctx, p.PostID, p.CommentID, c.Identity.ID, result)
		return nil
	})
	return nil
}

func (s *Service) typingStart(_ context.Context, c *Client, p *TypingStartPayload) error {
	s.broadcast(p.PostID, EventUserTyping, TypingData{
		UserID:   c.Identity.ID,
		Username: c.Identity.Username,
		PostID:   p.PostID,
		Type:     p.Type,
	}, c)
	return nil
}

func (s *Service) typingStop(_ context.Context, c *Client, p *RoomPayload) error {
	s.broadcast(p.PostID, EventUserStoppedTyping, TypingData{
		UserID:   c.Identity.ID,
		Username: c.Identity.Username,
		PostID:   p.PostID,
	}, c)
	return nil
}

// userOnline tells every connection sharing a room with c that its user is online.
func (s *Service) userOnline(_ context.Context, c *Client, _ *UserOnlinePayload) error {
	frame, err := s.encode(EventUserStatus, UserStatusData{
		UserID:   c.Identity.ID,
		Username: c.Identity.Username,
		Status:   StatusOnline,
	})
	if err != nil {
		return nil
	}
	s.registry.Fanout(s.registry.Rooms(c), frame, c)
	return nil
}

// privateMessage delivers to the recipient's connections and echoes to the
// sender's. It is not persisted.
func (s *Service) privateMessage(ctx context.Context, c *Client, p *PrivateMessagePayload) error {
	if s.directory != nil {
		if _, err := s.directory.LookupUser(ctx, p.ToUserID); err != nil {
			return classify(err)
		}
	}

	frame, err := s.encode(EventPrivateMessage, PrivateMessageData{
		From:         c.Identity.ID,
		FromUsername: c.Identity.Username,
		To:           p.ToUserID,
		Message:      p.Message,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		return nil
	}
	s.registry.SendToUsers(frame, p.ToUserID, c.Identity.ID)
	return nil
}

// commentInPost loads a comment and checks it belongs to postID.
func (s *Service) commentInPost(ctx context.Context, commentID, postID string) (*blog.Comment, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, classify(err)
	}
	if comment.PostID != postID {
		return nil, invalid("comment does not belong to this post")
	}
	return comment, nil
}

// canDelete allows the comment author, the post author and admins.
func (s *Service) canDelete(ctx context.Context, identity user.Identity, comment *blog.Comment) error {
	if comment.AuthorID == identity.ID || identity.IsAdmin() {
		return nil
	}
	post, err := s.store.GetPost(ctx, comment.PostID)
	if err != nil {
		return classify(err)
	}
	if post.AuthorID == identity.ID {
		return nil
	}
	return unauthorized("only the author can delete this comment")
}
