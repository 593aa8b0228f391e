package notify

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"socialite/internal/domain/entity"
)

// Redis is a Broker backed by Redis pub/sub so fan-out reaches subscribers
// on every process. Payloads are JSON-encoded posts; messages that fail to
// decode are dropped with a warning.
type Redis struct {
	rdb    *redis.Client
	prefix string
	logger *logrus.Logger
}

func NewRedis(rdb *redis.Client, prefix string, logger *logrus.Logger) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, logger: logger}
}

func (r *Redis) channel(topic string) string {
	return r.prefix + ":" + topic
}

func (r *Redis) Publish(ctx context.Context, topic string, post *entity.Post) error {
	b, err := json.Marshal(post)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.channel(topic), b).Err()
}

func (r *Redis) Subscribe(ctx context.Context, topic string) (<-chan *entity.Post, func(), error) {
	ps := r.rdb.Subscribe(ctx, r.channel(topic))
	// Force the subscription to be established before returning so events
	// published immediately after are not missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, err
	}

	out := make(chan *entity.Post, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			post := &entity.Post{}
			if err := json.Unmarshal([]byte(msg.Payload), post); err != nil {
				if r.logger != nil {
					r.logger.WithError(err).Warn("dropping undecodable pubsub message")
				}
				continue
			}
			select {
			case out <- post:
			default: // subscriber too slow, drop
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() { _ = ps.Close() })
	}
	return out, cancel, nil
}
