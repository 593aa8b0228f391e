package notify

import (
	"context"
	"testing"
	"time"

	"socialite/internal/domain/entity"
)

func recv(t *testing.T, ch <-chan *entity.Post) *entity.Post {
	t.Helper()
	select {
	case p, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		return p
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestMemoryPublishReachesSubscriber(t *testing.T) {
	b := NewMemory()
	ctx := context.Background()

	ch, cancel, err := b.Subscribe(ctx, TopicNewPost)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	want := &entity.Post{ID: "p1", Body: "hello"}
	if err := b.Publish(ctx, TopicNewPost, want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got := recv(t, ch)
	if got.ID != want.ID {
		t.Fatalf("got post %q, want %q", got.ID, want.ID)
	}
}

func TestMemoryNoReplay(t *testing.T) {
	b := NewMemory()
	ctx := context.Background()

	if err := b.Publish(ctx, TopicNewPost, &entity.Post{ID: "before"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ch, cancel, err := b.Subscribe(ctx, TopicNewPost)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	select {
	case p := <-ch:
		t.Fatalf("subscriber must not see history, got %q", p.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryTopicsAreIndependent(t *testing.T) {
	b := NewMemory()
	ctx := context.Background()

	ch, cancel, err := b.Subscribe(ctx, "OTHER")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if err := b.Publish(ctx, TopicNewPost, &entity.Post{ID: "p1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case p := <-ch:
		t.Fatalf("event leaked across topics: %q", p.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemorySlowSubscriberNeverBlocksPublish(t *testing.T) {
	b := NewMemory()
	ctx := context.Background()

	_, cancel, err := b.Subscribe(ctx, TopicNewPost)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Nobody drains the subscriber; publishing must still return.
		for i := 0; i < subscriberBuffer*4; i++ {
			_ = b.Publish(ctx, TopicNewPost, &entity.Post{ID: "p"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestMemoryCancelClosesChannel(t *testing.T) {
	b := NewMemory()
	ctx := context.Background()

	ch, cancel, err := b.Subscribe(ctx, TopicNewPost)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancel()
	cancel() // idempotent

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after cancel")
	}

	// Publishing after cancel must not panic or deliver.
	if err := b.Publish(ctx, TopicNewPost, &entity.Post{ID: "p1"}); err != nil {
		t.Fatalf("publish after cancel: %v", err)
	}
}
