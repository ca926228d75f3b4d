package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/events"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
)

const exchangeKind = "topic"

var ErrRelayClosed = errors.New("イベント中継は停止しています")

// channel は amqp.Channel のうち中継で使う操作
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// envelope は中継するメッセージの本文
type envelope struct {
	Event      string       `json:"event"`
	OccurredAt time.Time    `json:"occurred_at"`
	Payload    events.Event `json:"payload"`
}

// amqpChannel は接続ごと閉じる amqp.Channel
type amqpChannel struct {
	*amqp.Channel
	conn *amqp.Connection
}

func (c *amqpChannel) Close() error {
	_ = c.Channel.Close()
	return c.conn.Close()
}

// dialFunc は新しいチャネルを開く
type dialFunc func() (channel, error)

// EventRelay はドメインイベントを RabbitMQ の topic exchange に転送する
// ルーティングキーはイベント名（例: seat.reserved）
// 接続が切れていた場合は次の発行時に再接続し、1回だけ再送する
type EventRelay struct {
	mu       sync.Mutex
	dial     dialFunc
	ch       channel
	closed   bool
	exchange string
	log      *zap.Logger
}

// NewEventRelay は RabbitMQ に接続し exchange を宣言する
func NewEventRelay(url, exchange string) (*EventRelay, error) {
	return newEventRelay(func() (channel, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq dial: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("rabbitmq channel: %w", err)
		}
		return &amqpChannel{Channel: ch, conn: conn}, nil
	}, exchange)
}

func newEventRelay(dial dialFunc, exchange string) (*EventRelay, error) {
	r := &EventRelay{dial: dial, exchange: exchange, log: logger.Named("rabbitmq")}
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r, nil
}

// connect はチャネルを開いて exchange を宣言する。呼び出し側で mu を保持すること
func (r *EventRelay) connect() error {
	ch, err := r.dial()
	if err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(r.exchange, exchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("rabbitmq exchange declare: %w", err)
	}
	r.ch = ch
	return nil
}

// disconnect は現在のチャネルを破棄する。呼び出し側で mu を保持すること
func (r *EventRelay) disconnect() {
	if r.ch != nil {
		r.ch.Close()
		r.ch = nil
	}
}

// Relay はイベントを exchange に発行する
func (r *EventRelay) Relay(ctx context.Context, e events.Event) error {
	body, err := json.Marshal(envelope{Event: e.EventName(), OccurredAt: e.OccurredAt(), Payload: e})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         e.EventName(),
		Body:         body,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRelayClosed
	}

	err = r.publish(ctx, e.EventName(), msg)
	if errors.Is(err, amqp.ErrClosed) {
		r.log.Warn("RabbitMQ の接続が切れたため再接続します", zap.Error(err))
		r.disconnect()
		if cerr := r.connect(); cerr != nil {
			return fmt.Errorf("publish %s: %w", e.EventName(), errors.Join(err, cerr))
		}
		err = r.publish(ctx, e.EventName(), msg)
	}
	if err != nil {
		if errors.Is(err, amqp.ErrClosed) {
			r.disconnect()
		}
		return fmt.Errorf("publish %s: %w", e.EventName(), err)
	}
	r.log.Debug("イベントを中継", zap.String("exchange", r.exchange), zap.String("routing_key", e.EventName()))
	return nil
}

func (r *EventRelay) publish(ctx context.Context, key string, msg amqp.Publishing) error {
	if r.ch == nil {
		return amqp.ErrClosed
	}
	return r.ch.PublishWithContext(ctx, r.exchange, key, false, false, msg)
}

// Close はチャネルと接続を閉じる。以降の Relay は ErrRelayClosed を返す
func (r *EventRelay) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.disconnect()
}
