// Package redis fans notifications out to Redis pub/sub subscribers.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/factory"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/notify"
)

// DefaultChannel receives notification records when none is configured.
const DefaultChannel = "omnibot:alerts"

// Config selects the Redis server and channel.
type Config struct {
	URL     string `json:"url"`
	Channel string `json:"channel"`
	// LatestTTL keeps the last record per asset under alerts:latest:<id>
	// when positive.
	LatestTTL time.Duration `json:"latest_ttl"`
}

// Client is the subset of the go-redis client used by the sink.
type Client interface {
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// Sink publishes notification records as JSON on a Redis channel.
type Sink struct {
	client  Client
	channel string
	ttl     time.Duration
}

// NewSink wraps an existing client.
func NewSink(client Client, cfg Config) *Sink {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	return &Sink{client: client, channel: cfg.Channel, ttl: cfg.LatestTTL}
}

func (s *Sink) Notify(ctx context.Context, rec notify.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", rec.AssetID, err)
	}
	if s.ttl > 0 {
		if err := s.client.Set(ctx, "alerts:latest:"+rec.AssetID, data, s.ttl).Err(); err != nil {
			return fmt.Errorf("redis set %s: %w", rec.AssetID, err)
		}
	}
	return nil
}

// Factory builds a Sink from a module configuration and pings the server.
func Factory(conf map[string]any) (notify.Sink, error) {
	var cfg Config
	if err := factory.Decode(conf, &cfg); err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis notify sink requires url")
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewSink(client, cfg), nil
}
