// Package redis keeps order idempotency keys in Redis so several API replicas share them.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/agizo/agizo-api/internal/domains/orders/ports"
)

const (
	DefaultTTL = 24 * time.Hour

	keyPrefix = "agizo"
	operation = "idempotency"
)

var _ ports.IdempotencyStore = (*Store)(nil)

// Store implements the idempotency port with SET NX so the first request to reserve a key wins.
type Store struct {
	client goredis.UniversalClient
	ttl    time.Duration
	now    func() time.Time
}

func NewStore(client goredis.UniversalClient, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl, now: time.Now}
}

type storedRecord struct {
	RequestHash string    `json:"request_hash"`
	OrderID     int64     `json:"order_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Store) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, generateKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode idempotency record %q: %w", key, err)
	}
	return stored.toPort(key), nil
}

// Reserve claims the key with SET NX holding a pending record.
func (s *Store) Reserve(ctx context.Context, key, requestHash string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(storedRecord{RequestHash: requestHash, CreatedAt: s.now().UTC()})
	if err != nil {
		return nil, err
	}
	created, err := s.client.SetNX(ctx, generateKey(key), payload, s.ttl).Result()
	if err != nil {
		return nil, err
	}
	if created {
		return nil, nil
	}
	existing, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// Expired between SETNX and GET; the caller may retry.
		return nil, fmt.Errorf("idempotency key %q vanished", key)
	}
	return existing, nil
}

// Complete rewrites a pending record with the order id inside a WATCH transaction.
func (s *Store) Complete(ctx context.Context, key string, orderID int64) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	redisKey := generateKey(key)
	return s.client.Watch(ctx, func(tx *goredis.Tx) error {
		stored, err := load(ctx, tx, redisKey)
		if err != nil {
			return err
		}
		if stored == nil || stored.OrderID != 0 {
			return fmt.Errorf("idempotency key %q is not reserved", key)
		}
		stored.OrderID = orderID
		payload, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, redisKey, payload, s.ttl)
			return nil
		})
		return err
	}, redisKey)
}

// Release deletes the key only while it is still pending.
func (s *Store) Release(ctx context.Context, key string) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	redisKey := generateKey(key)
	return s.client.Watch(ctx, func(tx *goredis.Tx) error {
		stored, err := load(ctx, tx, redisKey)
		if err != nil || stored == nil || stored.OrderID != 0 {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Del(ctx, redisKey)
			return nil
		})
		return err
	}, redisKey)
}

func load(ctx context.Context, tx *goredis.Tx, redisKey string) (*storedRecord, error) {
	raw, err := tx.Get(ctx, redisKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode idempotency record %q: %w", redisKey, err)
	}
	return &stored, nil
}

func (s *Store) ensureClient() error {
	if s == nil || s.client == nil {
		return errors.New("redis idempotency store not configured")
	}
	return nil
}

func generateKey(key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, operation, key)
}

func (r storedRecord) toPort(key string) *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         key,
		RequestHash: r.RequestHash,
		OrderID:     r.OrderID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.CreatedAt,
	}
}
