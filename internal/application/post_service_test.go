package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"socialite/internal/domain/entity"
	"socialite/internal/domain/repository"
	"socialite/internal/notify"
	"socialite/pkg/apperr"
)

// memPostRepo mimics the conditional-write behavior of the Postgres
// implementation: Update succeeds only when the caller holds the stored
// version.
type memPostRepo struct {
	mu    sync.Mutex
	posts map[string]*entity.Post
	seq   map[string]int // insertion order for newest-first listing
	next  int
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[string]*entity.Post), seq: make(map[string]int)}
}

func clonePost(p *entity.Post) *entity.Post {
	cp := *p
	cp.Comments = append([]entity.Comment(nil), p.Comments...)
	cp.Likes = append([]entity.Like(nil), p.Likes...)
	return &cp
}

func (r *memPostRepo) Create(_ context.Context, p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	p.ID = fmt.Sprintf("p-%d", r.next)
	p.Version = 1
	p.CreatedAt = time.Now().UTC()
	r.posts[p.ID] = clonePost(p)
	r.seq[p.ID] = r.next
	return nil
}

func (r *memPostRepo) GetByID(_ context.Context, id string) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePost(p), nil
}

func (r *memPostRepo) List(_ context.Context) ([]*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	return out, nil
}

func (r *memPostRepo) Update(_ context.Context, p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != p.Version {
		return repository.ErrVersionConflict
	}
	p.Version++
	r.posts[p.ID] = clonePost(p)
	return nil
}

func (r *memPostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

var (
	alice = Identity{ID: "u-1", Username: "alice", Email: "alice@example.com"}
	bob   = Identity{ID: "u-2", Username: "bob", Email: "bob@example.com"}
)

func newPostService(repo repository.PostRepository, broker notify.Broker) *PostService {
	return NewPostService(repo, broker, nil, "", nil)
}

func TestCreatePostRejectsBlankBody(t *testing.T) {
	repo := newMemPostRepo()
	svc := newPostService(repo, notify.NewMemory())
	ctx := context.Background()

	for _, body := range []string{"", "   ", "\n\t "} {
		_, err := svc.Create(ctx, body, alice)
		if !apperr.IsKind(err, apperr.InvalidInput) {
			t.Fatalf("body %q: expected InvalidInput, got %v", body, err)
		}
	}
	if len(repo.posts) != 0 {
		t.Fatal("rejected posts must not be persisted")
	}
}

func TestCreatePostStampsActorAndPublishes(t *testing.T) {
	repo := newMemPostRepo()
	broker := notify.NewMemory()
	svc := newPostService(repo, broker)
	ctx := context.Background()

	ch, cancel, err := broker.Subscribe(ctx, notify.TopicNewPost)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	p, err := svc.Create(ctx, "hello world", alice)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" || p.Username != "alice" || p.UserID != "u-1" {
		t.Fatalf("post missing identity snapshot: %+v", p)
	}
	if p.Comments == nil || p.Likes == nil {
		t.Fatal("new posts must start with empty, non-nil lists")
	}

	select {
	case got := <-ch:
		if got.ID != p.ID {
			t.Fatalf("published post %q, want %q", got.ID, p.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("create must fan the post out to subscribers")
	}
}

func TestListNewestFirst(t *testing.T) {
	svc := newPostService(newMemPostRepo(), notify.NewMemory())
	ctx := context.Background()

	first, _ := svc.Create(ctx, "first", alice)
	second, _ := svc.Create(ctx, "second", bob)

	posts, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].ID != second.ID || posts[1].ID != first.ID {
		t.Fatalf("expected newest first, got %q then %q", posts[0].ID, posts[1].ID)
	}
}

func TestGetUnknownPost(t *testing.T) {
	svc := newPostService(newMemPostRepo(), notify.NewMemory())
	if _, err := svc.Get(context.Background(), "missing"); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDeletePostOwnerOnly(t *testing.T) {
	repo := newMemPostRepo()
	svc := newPostService(repo, notify.NewMemory())
	ctx := context.Background()

	p, err := svc.Create(ctx, "mine", alice)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, p.ID, bob); !apperr.IsKind(err, apperr.Forbidden) {
		t.Fatalf("expected Forbidden for non-owner, got %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); err != nil {
		t.Fatalf("post must survive a forbidden delete: %v", err)
	}

	if err := svc.Delete(ctx, p.ID, alice); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}

func TestAddCommentFrontInsertAndCount(t *testing.T) {
	svc := newPostService(newMemPostRepo(), notify.NewMemory())
	ctx := context.Background()

	p, err := svc.Create(ctx, "post", alice)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.AddComment(ctx, p.ID, "  ", bob); !apperr.IsKind(err, apperr.InvalidInput) {
		t.Fatalf("expected InvalidInput for blank comment, got %v", err)
	}

	if _, err := svc.AddComment(ctx, p.ID, "first", alice); err != nil {
		t.Fatalf("add comment: %v", err)
	}
	updated, err := svc.AddComment(ctx, p.ID, "second", bob)
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if updated.CommentCount() != 2 {
		t.Fatalf("expected 2 comments, got %d", updated.CommentCount())
	}
	if updated.Comments[0].Body != "second" || updated.Comments[1].Body != "first" {
		t.Fatalf("newest comment must come first: %+v", updated.Comments)
	}
}

func TestDeleteCommentAuthorOnly(t *testing.T) {
	svc := newPostService(newMemPostRepo(), notify.NewMemory())
	ctx := context.Background()

	p, _ := svc.Create(ctx, "post", alice)
	withComment, err := svc.AddComment(ctx, p.ID, "bob was here", bob)
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	commentID := withComment.Comments[0].ID

	// Not even the post owner may delete someone else's comment.
	if _, err := svc.DeleteComment(ctx, p.ID, commentID, alice); !apperr.IsKind(err, apperr.Forbidden) {
		t.Fatalf("expected Forbidden for non-author, got %v", err)
	}
	if _, err := svc.DeleteComment(ctx, p.ID, "missing", bob); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected NotFound for unknown comment, got %v", err)
	}

	updated, err := svc.DeleteComment(ctx, p.ID, commentID, bob)
	if err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if updated.CommentCount() != 0 {
		t.Fatalf("expected 0 comments, got %d", updated.CommentCount())
	}
}

func TestToggleLikeCycleThroughService(t *testing.T) {
	svc := newPostService(newMemPostRepo(), notify.NewMemory())
	ctx := context.Background()

	p, _ := svc.Create(ctx, "post", alice)

	liked, err := svc.ToggleLike(ctx, p.ID, bob)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !liked.HasLike("bob") || liked.LikeCount() != 1 {
		t.Fatalf("expected bob's like, got %+v", liked.Likes)
	}

	unliked, err := svc.ToggleLike(ctx, p.ID, bob)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if unliked.HasLike("bob") || unliked.LikeCount() != 0 {
		t.Fatalf("expected like removed, got %+v", unliked.Likes)
	}
}

func TestConcurrentLikesBothSurvive(t *testing.T) {
	svc := newPostService(newMemPostRepo(), notify.NewMemory())
	ctx := context.Background()

	p, _ := svc.Create(ctx, "post", alice)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, actor := range []Identity{alice, bob} {
		wg.Add(1)
		go func(a Identity) {
			defer wg.Done()
			if _, err := svc.ToggleLike(ctx, p.ID, a); err != nil {
				errs <- err
			}
		}(actor)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("toggle like: %v", err)
	}

	final, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if final.LikeCount() != 2 || !final.HasLike("alice") || !final.HasLike("bob") {
		t.Fatalf("a concurrent like was lost: %+v", final.Likes)
	}
}

func TestMutationsOnUnknownPost(t *testing.T) {
	svc := newPostService(newMemPostRepo(), notify.NewMemory())
	ctx := context.Background()

	if _, err := svc.AddComment(ctx, "missing", "hi", alice); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("add comment: expected NotFound, got %v", err)
	}
	if _, err := svc.ToggleLike(ctx, "missing", alice); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("toggle like: expected NotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "missing", alice); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("delete: expected NotFound, got %v", err)
	}
}

func TestSearchWithoutElasticsearchReturnsEmpty(t *testing.T) {
	svc := newPostService(newMemPostRepo(), notify.NewMemory())

	hits, err := svc.Search(context.Background(), "anything", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits without a search backend, got %d", len(hits))
	}
}
