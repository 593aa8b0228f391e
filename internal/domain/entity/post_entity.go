package entity

import (
	"time"

	"github.com/google/uuid"
)

// Comment lives only inside a Post's comment list, newest first.
// Username is a snapshot of the author at creation time and is never re-synced.
type Comment struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Like marks one user's like on a post. The like set holds at most one entry
// per username.
type Like struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is the aggregate root for the posting domain: the post body together
// with its embedded comments and likes, treated as one consistency unit.
// Username is a snapshot of the owner at creation time.
// Version backs optimistic concurrency on aggregate mutations.
type Post struct {
	ID        string
	Body      string
	UserID    string
	Username  string
	Comments  []Comment
	Likes     []Like
	Version   int64
	CreatedAt time.Time
}

// AddComment inserts a new comment at the front so the list stays
// newest-first, and returns it.
func (p *Post) AddComment(username, body string, at time.Time) Comment {
	c := Comment{
		ID:        uuid.NewString(),
		Username:  username,
		Body:      body,
		CreatedAt: at,
	}
	p.Comments = append([]Comment{c}, p.Comments...)
	return c
}

// CommentByID returns the comment with the given id, if present.
func (p *Post) CommentByID(id string) (Comment, bool) {
	for _, c := range p.Comments {
		if c.ID == id {
			return c, true
		}
	}
	return Comment{}, false
}

// RemoveComment deletes the comment with the given id, reporting whether it
// was present.
func (p *Post) RemoveComment(id string) bool {
	for i, c := range p.Comments {
		if c.ID == id {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}

// HasLike reports whether username already likes the post.
func (p *Post) HasLike(username string) bool {
	for _, l := range p.Likes {
		if l.Username == username {
			return true
		}
	}
	return false
}

// ToggleLike removes the user's like when present, otherwise appends one.
// It reports whether the post is liked by the user afterwards.
func (p *Post) ToggleLike(username string, at time.Time) bool {
	for i, l := range p.Likes {
		if l.Username == username {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return false
		}
	}
	p.Likes = append(p.Likes, Like{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: at,
	})
	return true
}

// LikeCount is derived from the like set size.
func (p *Post) LikeCount() int { return len(p.Likes) }

// CommentCount is derived from the comment list length.
func (p *Post) CommentCount() int { return len(p.Comments) }
