package application

import (
	"context"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/events"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/eventbus"
)

// Listeners はイベントバスに登録するサービス群
// Relay は RabbitMQ を使わない場合 nil
type Listeners struct {
	Seats    *SeatService
	Showings *ShowingService
	History  *HistoryService
	Relay    EventRelay
}

// RegisterListeners はサービス間のイベント連携を登録する
//
//	SeatReserved     → 空席数 -1
//	SeatCancelled    → 空席数 +1
//	ShowingCancelled → 座席の一括キャンセル
//	座席・上映のイベント → 空席数キャッシュの無効化
//	全イベント         → 履歴の記録、RabbitMQ への転送
func RegisterListeners(bus *eventbus.Bus, l Listeners) {
	eventbus.Subscribe(bus, "showing.decrement_available", func(ctx context.Context, e events.SeatReserved) error {
		return l.Showings.AdjustAvailability(ctx, e.ShowingID, -1)
	})
	eventbus.Subscribe(bus, "showing.increment_available", func(ctx context.Context, e events.SeatCancelled) error {
		return l.Showings.AdjustAvailability(ctx, e.ShowingID, +1)
	})
	eventbus.Subscribe(bus, "seat.bulk_cancel", func(ctx context.Context, e events.ShowingCancelled) error {
		_, err := l.Seats.BulkCancel(ctx, e.ShowingID)
		return err
	})

	bus.SubscribeAll("seat.cache_invalidation", func(ctx context.Context, e events.Event) error {
		switch e.(type) {
		case events.SeatReserved, events.SeatCancelled, events.SeatsGenerated,
			events.ShowingCancelled, events.ReservationsExpired:
			l.Seats.InvalidateCache(ctx, events.ShowingIDOf(e))
		}
		return nil
	})

	bus.SubscribeAll("history.recorder", func(ctx context.Context, e events.Event) error {
		l.History.Record(ctx, e)
		return nil
	})

	if l.Relay != nil {
		bus.SubscribeAll("rabbitmq.relay", l.Relay.Relay)
	}
}
