// Package persistence - журнал решений о коррекции в Redis.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shiwa/timecard-mini/tc-devsync/pkg/model"
)

const (
	keyPrefix = "devsync:"
	keyLatest = keyPrefix + "latest"
)

// DecisionStore - список последних решений сессии и последнее решение вообще.
type DecisionStore struct {
	client   *redis.Client
	session  string
	maxItems int64
	ttl      time.Duration
}

// NewDecisionStore создаёт журнал; maxItems <= 0 - 1000, ttl <= 0 - без истечения latest
func NewDecisionStore(addr, password string, db int, session string, maxItems int, ttl time.Duration) *DecisionStore {
	if maxItems <= 0 {
		maxItems = 1000
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &DecisionStore{client: client, session: session, maxItems: int64(maxItems), ttl: ttl}
}

// DecisionsKey - ключ списка решений сессии
func DecisionsKey(session string) string {
	return keyPrefix + session + ":decisions"
}

// Check проверяет соединение
func (s *DecisionStore) Check(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Save пишет решение: LPUSH в список сессии с LTRIM и SET latest
func (s *DecisionStore) Save(ctx context.Context, d model.Decision) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}
	key := DecisionsKey(s.session)
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, s.maxItems-1)
	pipe.Set(ctx, keyLatest, payload, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis exec: %w", err)
	}
	return nil
}

// Recent возвращает до limit последних решений сессии, новые первыми
func (s *DecisionStore) Recent(ctx context.Context, limit int) ([]model.Decision, error) {
	if limit <= 0 {
		return nil, nil
	}
	raw, err := s.client.LRange(ctx, DecisionsKey(s.session), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	return decodeAll(raw)
}

// Latest возвращает последнее решение любой сессии; nil, если его нет или истёк ttl
func (s *DecisionStore) Latest(ctx context.Context) (*model.Decision, error) {
	data, err := s.client.Get(ctx, keyLatest).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var d model.Decision
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal decision: %w", err)
	}
	return &d, nil
}

// Close закрывает клиент
func (s *DecisionStore) Close() error {
	return s.client.Close()
}

func decodeAll(raw []string) ([]model.Decision, error) {
	out := make([]model.Decision, 0, len(raw))
	for _, r := range raw {
		var d model.Decision
		if err := json.Unmarshal([]byte(r), &d); err != nil {
			return nil, fmt.Errorf("unmarshal decision: %w", err)
		}
		out = append(out, d)
	}
	return out, nil
}
