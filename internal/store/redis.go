package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"admatch/internal/models"
)

// RedisOptions is the subset of connection settings the stores need.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient opens a go-redis client and checks it answers PING.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Address, err)
	}
	return client, nil
}

// --- Audit reports ---

const auditKeyPrefix = "admatch:audit:"

func auditKey(id string) string { return auditKeyPrefix + id }

var _ ReportStore = (*RedisReportStore)(nil)

// RedisReportStore keeps coverage audit reports as JSON strings that expire
// after ttl.
type RedisReportStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReportStore(client *redis.Client, ttl time.Duration) *RedisReportStore {
	return &RedisReportStore{client: client, ttl: ttl}
}

func (s *RedisReportStore) SaveAudit(ctx context.Context, audit *models.CoverageAudit) error {
	b, err := encodeAudit(audit)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, auditKey(audit.ID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save audit %s: %w", audit.ID, err)
	}
	return nil
}

func (s *RedisReportStore) GetAudit(ctx context.Context, id string) (*models.CoverageAudit, error) {
	b, err := s.client.Get(ctx, auditKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get audit %s: %w", id, err)
	}
	return decodeAudit(b)
}

func encodeAudit(audit *models.CoverageAudit) ([]byte, error) {
	if audit == nil || audit.ID == "" {
		return nil, errors.New("audit report requires an id")
	}
	b, err := json.Marshal(audit)
	if err != nil {
		return nil, fmt.Errorf("marshal audit %s: %w", audit.ID, err)
	}
	return b, nil
}

func decodeAudit(b []byte) (*models.CoverageAudit, error) {
	audit := &models.CoverageAudit{}
	if err := json.Unmarshal(b, audit); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return audit, nil
}

// --- Reload broadcast ---

var _ ReloadBus = (*RedisReloadBus)(nil)

// RedisReloadBus publishes reload notices on a Redis pub/sub channel.
type RedisReloadBus struct {
	client  *redis.Client
	channel string
}

func NewRedisReloadBus(client *redis.Client, channel string) *RedisReloadBus {
	return &RedisReloadBus{client: client, channel: channel}
}

func (b *RedisReloadBus) Publish(ctx context.Context, notice ReloadNotice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("marshal reload notice: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish reload notice on %s: %w", b.channel, err)
	}
	return nil
}

func (b *RedisReloadBus) Subscribe(ctx context.Context, handle func(ReloadNotice)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}
	log.WithField("channel", b.channel).Info("listening for taxonomy reload notices")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			notice, err := decodeNotice(msg.Payload)
			if err != nil {
				log.WithField("channel", b.channel).WithError(err).Warn("ignoring malformed reload notice")
				continue
			}
			handle(notice)
		}
	}
}

// Close is a no-op; the shared client is closed by its owner.
func (b *RedisReloadBus) Close() error { return nil }

func decodeNotice(payload string) (ReloadNotice, error) {
	var n ReloadNotice
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return n, err
	}
	if n.Origin == "" {
		return n, errors.New("reload notice has no origin")
	}
	return n, nil
}
