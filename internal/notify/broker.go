package notify

import (
	"context"
	"sync"

	"socialite/internal/domain/entity"
)

// TopicNewPost carries every freshly created post to active subscribers.
const TopicNewPost = "NEW_POST"

// subscriberBuffer bounds per-subscriber queues; events beyond it are dropped
// rather than blocking the publisher.
const subscriberBuffer = 16

// Broker fans published posts out to all currently active subscribers.
// Delivery is best-effort: no replay of history, slow subscribers lose
// events, and Publish never blocks the publishing request.
type Broker interface {
	Publish(ctx context.Context, topic string, post *entity.Post) error
	// Subscribe returns a channel of posts published after the call, plus a
	// cancel function that must be invoked to release the subscription.
	Subscribe(ctx context.Context, topic string) (<-chan *entity.Post, func(), error)
}

// Memory is the in-process Broker used by single-process deployments and
// tests.
type Memory struct {
	mu   sync.Mutex
	subs map[string]map[int]chan *entity.Post
	next int
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[int]chan *entity.Post)}
}

func (m *Memory) Publish(_ context.Context, topic string, post *entity.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs[topic] {
		select {
		case ch <- post:
		default: // subscriber too slow, drop
		}
	}
	return nil
}

func (m *Memory) Subscribe(_ context.Context, topic string) (<-chan *entity.Post, func(), error) {
	ch := make(chan *entity.Post, subscriberBuffer)

	m.mu.Lock()
	id := m.next
	m.next++
	if m.subs[topic] == nil {
		m.subs[topic] = make(map[int]chan *entity.Post)
	}
	m.subs[topic][id] = ch
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs[topic], id)
			m.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
