// Package eventbus はプロセス内の同期 publish/subscribe を提供する
//
// Publish は呼び出し元の goroutine で購読順にハンドラを実行する。
// ハンドラのエラーやパニックはログとメトリクスに記録するだけで、
// 後続のハンドラや発行元には伝播しない。永続化や再配送は行わない。
package eventbus

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/events"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/metrics"
)

// Handler はイベントハンドラ
type Handler func(ctx context.Context, e events.Event) error

type subscription struct {
	event   string // 空文字は全イベント
	name    string
	handler Handler
}

// Bus はプロセス内イベントバス
type Bus struct {
	mu      sync.RWMutex
	subs    []subscription
	metrics *metrics.Metrics
	log     *zap.Logger
}

// Option は Bus の設定
type Option func(*Bus)

// WithMetrics はメトリクスを設定する
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bus) { b.metrics = m }
}

// WithLogger はロガーを設定する
func WithLogger(l *zap.Logger) Option {
	return func(b *Bus) { b.log = l }
}

// New は新しい Bus を作成する
func New(opts ...Option) *Bus {
	b := &Bus{log: logger.Named("eventbus")}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe は型 E のイベントにハンドラを登録する
func Subscribe[E events.Event](b *Bus, name string, fn func(ctx context.Context, e E) error) {
	var zero E
	b.add(subscription{
		event: zero.EventName(),
		name:  name,
		handler: func(ctx context.Context, e events.Event) error {
			ev, ok := e.(E)
			if !ok {
				return nil
			}
			return fn(ctx, ev)
		},
	})
}

// SubscribeAll は全てのイベントにハンドラを登録する
func (b *Bus) SubscribeAll(name string, fn Handler) {
	b.add(subscription{name: name, handler: fn})
}

func (b *Bus) add(s subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, s)
}

// Handlers は登録済みハンドラ名を購読順に返す
func (b *Bus) Handlers() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, len(b.subs))
	for i, s := range b.subs {
		names[i] = s.name
	}
	return names
}

// Publish はイベントを購読中のハンドラへ配信する
func (b *Bus) Publish(ctx context.Context, e events.Event) {
	name := e.EventName()

	b.mu.RLock()
	targets := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.event == "" || s.event == name {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	b.metrics.ObserveEventPublished(name)
	b.log.Debug("イベント発行", zap.String("event", name), zap.Int("handlers", len(targets)))

	for _, s := range targets {
		if err := b.dispatch(ctx, s, e); err != nil {
			b.metrics.ObserveHandlerFailure(name, s.name)
			b.log.Error("イベントハンドラの実行に失敗",
				zap.String("event", name),
				zap.String("handler", s.name),
				zap.Error(err),
			)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, s subscription, e events.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ハンドラがパニックしました: %v", r)
		}
	}()
	return s.handler(ctx, e)
}
