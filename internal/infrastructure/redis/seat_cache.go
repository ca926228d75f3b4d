package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// SeatCache は上映ごとの空席数キャッシュを管理する
type SeatCache struct {
	client *redis.Client
}

// NewSeatCache は新しいSeatCacheインスタンスを作成する
func NewSeatCache(client *redis.Client) *SeatCache {
	return &SeatCache{client: client}
}

// GetFreeCount は上映の空席数をキャッシュから取得する
func (c *SeatCache) GetFreeCount(ctx context.Context, showingID string) (int, error) {
	val, err := c.client.Get(ctx, freeCountKey(showingID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetFreeCount は上映の空席数をキャッシュに保存する
func (c *SeatCache) SetFreeCount(ctx context.Context, showingID string, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, freeCountKey(showingID), count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は上映のキャッシュを無効化する
func (c *SeatCache) Invalidate(ctx context.Context, showingID string) error {
	if err := c.client.Del(ctx, freeCountKey(showingID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func freeCountKey(showingID string) string {
	return fmt.Sprintf("showings:%s:seats:free", showingID)
}
