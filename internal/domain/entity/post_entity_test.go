package entity

import (
	"testing"
	"time"
)

func TestAddCommentFrontInsert(t *testing.T) {
	p := &Post{}
	now := time.Now().UTC()
	p.AddComment("alice", "first", now)
	c2 := p.AddComment("bob", "second", now.Add(time.Second))

	if p.CommentCount() != 2 {
		t.Fatalf("expected 2 comments, got %d", p.CommentCount())
	}
	if p.Comments[0].ID != c2.ID {
		t.Fatal("newest comment must be at index 0")
	}
	if p.Comments[0].Username != "bob" || p.Comments[1].Username != "alice" {
		t.Fatalf("unexpected ordering: %+v", p.Comments)
	}
}

func TestRemoveComment(t *testing.T) {
	p := &Post{}
	c := p.AddComment("alice", "hello", time.Now().UTC())

	if !p.RemoveComment(c.ID) {
		t.Fatal("expected removal of existing comment")
	}
	if p.CommentCount() != 0 {
		t.Fatalf("expected 0 comments, got %d", p.CommentCount())
	}
	if p.RemoveComment("missing") {
		t.Fatal("removal of unknown comment must report false")
	}
}

func TestToggleLikeCycle(t *testing.T) {
	p := &Post{}
	now := time.Now().UTC()

	if liked := p.ToggleLike("alice", now); !liked {
		t.Fatal("first toggle must like")
	}
	if !p.HasLike("alice") || p.LikeCount() != 1 {
		t.Fatalf("expected one like by alice, got %+v", p.Likes)
	}

	if liked := p.ToggleLike("alice", now); liked {
		t.Fatal("second toggle must unlike")
	}
	if p.HasLike("alice") || p.LikeCount() != 0 {
		t.Fatalf("expected no likes, got %+v", p.Likes)
	}

	if liked := p.ToggleLike("alice", now); !liked {
		t.Fatal("third toggle must like again")
	}
	if p.LikeCount() != 1 {
		t.Fatalf("likeCount must match like-set size, got %d", p.LikeCount())
	}
}

func TestLikeSetOneEntryPerUsername(t *testing.T) {
	p := &Post{}
	now := time.Now().UTC()
	p.ToggleLike("alice", now)
	p.ToggleLike("bob", now)
	p.ToggleLike("alice", now) // alice unlikes

	if p.LikeCount() != 1 || !p.HasLike("bob") || p.HasLike("alice") {
		t.Fatalf("unexpected like set: %+v", p.Likes)
	}
}
