// Package rediscache кэширует сохраненные снапшоты рейтинга в redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/go-redis/redis/v8"
)

const keyPrefix = "ranking:"

type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect создает клиента и проверяет соединение.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[rediscache] ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

type RankingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRankingCache(client *redis.Client, ttl time.Duration) *RankingCache {
	return &RankingCache{client: client, ttl: ttl}
}

type cachedEntry struct {
	RankPosition int32  `json:"rank_position"`
	GameID       int64  `json:"game_id"`
	GameName     string `json:"game_name"`
	Price        string `json:"price"`
	TotalSales   int64  `json:"total_sales"`
}

// Get возвращает снапшот за дату. Отсутствие ключа - промах без ошибки.
func (c *RankingCache) Get(ctx context.Context, date time.Time) ([]domain.RankingEntry, bool, error) {
	raw, err := c.client.Get(ctx, key(date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("[rediscache] get %s: %w", key(date), err)
	}

	var cached []cachedEntry
	if err = json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("[rediscache] decode %s: %w", key(date), err)
	}

	entries := make([]domain.RankingEntry, len(cached))
	for i, e := range cached {
		entries[i] = domain.RankingEntry{
			RankDate:     date,
			RankPosition: e.RankPosition,
			GameID:       e.GameID,
			GameName:     e.GameName,
			TotalSales:   e.TotalSales,
		}
		if err = entries[i].Price.UnmarshalText([]byte(e.Price)); err != nil {
			return nil, false, fmt.Errorf("[rediscache] decode price of game %d: %w", e.GameID, err)
		}
	}
	return entries, true, nil
}

// Set перезаписывает снапшот за дату.
func (c *RankingCache) Set(ctx context.Context, date time.Time, entries []domain.RankingEntry) error {
	raw, err := encode(entries)
	if err != nil {
		return fmt.Errorf("[rediscache] encode %s: %w", key(date), err)
	}
	if err = c.client.Set(ctx, key(date), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("[rediscache] set %s: %w", key(date), err)
	}
	return nil
}

// SetIfAbsent записывает снапшот, только если ключа еще нет. Занятый ключ ошибкой не считается.
func (c *RankingCache) SetIfAbsent(ctx context.Context, date time.Time, entries []domain.RankingEntry) error {
	raw, err := encode(entries)
	if err != nil {
		return fmt.Errorf("[rediscache] encode %s: %w", key(date), err)
	}
	if err = c.client.SetNX(ctx, key(date), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("[rediscache] setnx %s: %w", key(date), err)
	}
	return nil
}

func (c *RankingCache) Invalidate(ctx context.Context, date time.Time) error {
	if err := c.client.Del(ctx, key(date)).Err(); err != nil {
		return fmt.Errorf("[rediscache] del %s: %w", key(date), err)
	}
	return nil
}

func encode(entries []domain.RankingEntry) ([]byte, error) {
	cached := make([]cachedEntry, len(entries))
	for i, e := range entries {
		cached[i] = cachedEntry{
			RankPosition: e.RankPosition,
			GameID:       e.GameID,
			GameName:     e.GameName,
			Price:        e.Price.String(),
			TotalSales:   e.TotalSales,
		}
	}
	return json.Marshal(cached) //nolint:wrapcheck
}

func key(date time.Time) string {
	return keyPrefix + date.UTC().Format(time.DateOnly)
}
