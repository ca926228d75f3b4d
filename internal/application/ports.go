package application

import (
	"context"
	"errors"
	"time"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/apperr"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/events"
)

// EventPublisher はドメインイベントを発行する
// 発行は fire-and-forget で、購読側の失敗は返さない
type EventPublisher interface {
	Publish(ctx context.Context, e events.Event)
}

// SeatCountCache は上映ごとの空席数キャッシュ
// キャッシュに無い場合、GetFreeCount はエラーを返す
type SeatCountCache interface {
	GetFreeCount(ctx context.Context, showingID string) (int, error)
	SetFreeCount(ctx context.Context, showingID string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, showingID string) error
}

// EventRelay はドメインイベントを外部のブローカーへ転送する
type EventRelay interface {
	Relay(ctx context.Context, e events.Event) error
}

// outcome はメトリクス用に結果を分類する
func outcome(err error) string {
	switch kind := apperr.KindOf(err); {
	case err == nil:
		return "success"
	case errors.Is(kind, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(kind, apperr.ErrConflict):
		return "conflict"
	case errors.Is(kind, apperr.ErrInvalidArgument):
		return "invalid"
	}
	return "error"
}
