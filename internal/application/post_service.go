package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"socialite/internal/domain/entity"
	"socialite/internal/domain/repository"
	"socialite/internal/notify"
	"socialite/pkg/apperr"
)

// mutateRetries bounds re-fetch attempts when a conditional write loses a
// race with another mutation on the same aggregate.
const mutateRetries = 3

// PostService implements the post aggregate operations: create, delete,
// list, get, and the comment/like mutations with their ownership rules.
type PostService struct {
	Repo    repository.PostRepository
	Broker  notify.Broker
	ES      *elasticsearch.Client // optional
	ESIndex string
	Logger  *logrus.Logger // optional
}

func NewPostService(repo repository.PostRepository, broker notify.Broker, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *PostService {
	return &PostService{Repo: repo, Broker: broker, ES: es, ESIndex: esIndex, Logger: logger}
}

// List returns all posts, newest first. No auth required.
func (s *PostService) List(ctx context.Context) ([]*entity.Post, error) {
	posts, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, "listing posts")
	}
	return posts, nil
}

// Get returns one post by id.
func (s *PostService) Get(ctx context.Context, postID string) (*entity.Post, error) {
	return s.fetch(ctx, postID)
}

// Create persists a new post stamped with the actor's identity snapshot,
// then fans the post out to subscribers and indexes it for search.
func (s *PostService) Create(ctx context.Context, body string, actor Identity) (*entity.Post, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperr.WithDetails(apperr.InvalidInput, "empty post", map[string]string{
			"body": "post body must not be empty",
		})
	}

	p := &entity.Post{
		Body:     body,
		UserID:   actor.ID,
		Username: actor.Username,
		Comments: []entity.Comment{},
		Likes:    []entity.Like{},
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, apperr.Wrap(err, "creating post")
	}

	// Fan-out and indexing are best-effort; the post is already persisted.
	if s.Broker != nil {
		if err := s.Broker.Publish(ctx, notify.TopicNewPost, p); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", p.ID).Warn("new post publish failed")
		}
	}
	s.indexPost(ctx, p)

	return p, nil
}

// Delete removes a post. Only the owning user may delete it.
func (s *PostService) Delete(ctx context.Context, postID string, actor Identity) error {
	p, err := s.fetch(ctx, postID)
	if err != nil {
		return err
	}
	if p.Username != actor.Username {
		return apperr.New(apperr.Forbidden, "action not allowed")
	}
	if err := s.Repo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.NotFound, "post not found")
		}
		return apperr.Wrap(err, "deleting post")
	}
	s.removeFromIndex(ctx, postID)
	return nil
}

// AddComment inserts a comment at the front of the post's comment list and
// returns the updated post.
func (s *PostService) AddComment(ctx context.Context, postID, body string, actor Identity) (*entity.Post, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperr.WithDetails(apperr.InvalidInput, "empty comment", map[string]string{
			"body": "comment body must not be empty",
		})
	}
	return s.mutate(ctx, postID, func(p *entity.Post) error {
		p.AddComment(actor.Username, body, time.Now().UTC())
		return nil
	})
}

// DeleteComment removes a comment by id. Only the comment's author may delete
// it; an unknown comment id is NotFound.
func (s *PostService) DeleteComment(ctx context.Context, postID, commentID string, actor Identity) (*entity.Post, error) {
	return s.mutate(ctx, postID, func(p *entity.Post) error {
		c, ok := p.CommentByID(commentID)
		if !ok {
			return apperr.New(apperr.NotFound, "comment not found")
		}
		if c.Username != actor.Username {
			return apperr.New(apperr.Forbidden, "action not allowed")
		}
		p.RemoveComment(commentID)
		return nil
	})
}

// ToggleLike likes the post when the actor has no like on it yet, otherwise
// removes the existing like. Any authenticated user may like any post.
func (s *PostService) ToggleLike(ctx context.Context, postID string, actor Identity) (*entity.Post, error) {
	return s.mutate(ctx, postID, func(p *entity.Post) error {
		p.ToggleLike(actor.Username, time.Now().UTC())
		return nil
	})
}

// Search queries the Elasticsearch posts index over body and username.
// Returns empty results when search is not configured.
func (s *PostService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"body^2", "username"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, apperr.Wrap(err, "searching posts")
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.Wrap(err, "decoding search response")
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

// mutate runs a fetch-mutate-conditional-write cycle, retrying when another
// writer bumped the aggregate version in between. This is what keeps two
// concurrent likes from losing one another.
func (s *PostService) mutate(ctx context.Context, postID string, fn func(*entity.Post) error) (*entity.Post, error) {
	var lastErr error
	for attempt := 0; attempt < mutateRetries; attempt++ {
		p, err := s.fetch(ctx, postID)
		if err != nil {
			return nil, err
		}
		if err := fn(p); err != nil {
			return nil, err
		}
		err = s.Repo.Update(ctx, p)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "post not found")
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperr.Wrap(err, "updating post")
		}
		lastErr = err
	}
	return nil, apperr.Wrap(lastErr, "updating post: too much contention")
}

func (s *PostService) fetch(ctx context.Context, postID string) (*entity.Post, error) {
	p, err := s.Repo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "post not found")
		}
		return nil, apperr.Wrap(err, "fetching post")
	}
	return p, nil
}

func (s *PostService) indexPost(ctx context.Context, p *entity.Post) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         p.ID,
		"body":       p.Body,
		"username":   p.Username,
		"created_at": p.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("post_id", p.ID).Warn("es index response error")
	}
}

func (s *PostService) removeFromIndex(ctx context.Context, postID string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: postID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", postID).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}
