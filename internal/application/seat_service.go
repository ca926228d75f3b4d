package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/events"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showing"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-cinema-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/metrics"
)

const (
	seatCacheTTL = 30 * time.Second
)

// SeatService は座席の状態遷移を管理する
type SeatService struct {
	seatRepo    seat.Repository
	showingRepo showing.Repository
	publisher   EventPublisher
	cache       SeatCountCache
	metrics     *metrics.Metrics
	log         *zap.Logger
}

// NewSeatService は SeatService を作成する。cache と m は nil でもよい
func NewSeatService(sr seat.Repository, shr showing.Repository, pub EventPublisher, cache SeatCountCache, m *metrics.Metrics) *SeatService {
	return &SeatService{
		seatRepo:    sr,
		showingRepo: shr,
		publisher:   pub,
		cache:       cache,
		metrics:     m,
		log:         logger.Named("seat"),
	}
}

// GenerateSeats は上映の座席を行優先で生成し、新規作成した座席を返す
// 既に存在するラベルは作成しないため、再実行しても重複しない
func (s *SeatService) GenerateSeats(ctx context.Context, showingID string, total int) ([]*seat.Seat, error) {
	if total <= 0 {
		return nil, seat.ErrInvalidSeatCount
	}
	sh, err := s.showingRepo.GetByID(ctx, showingID)
	if err != nil {
		return nil, err
	}
	if !sh.IsListed() {
		return nil, showing.ErrShowingAlreadyCancelled
	}
	if total > sh.TotalSeats {
		return nil, seat.ErrSeatCountExceeded
	}

	seats, err := seat.Generate(showingID, total)
	if err != nil {
		return nil, err
	}
	created, err := s.seatRepo.CreateBulk(ctx, seats)
	if err != nil {
		return nil, err
	}
	// 総座席数より少なく生成した場合も空席数を FREE の座席数に合わせる
	if err := s.syncAvailable(ctx, sh); err != nil {
		return nil, err
	}

	result := make([]*seat.Seat, 0, created)
	for _, se := range seats {
		if se.ID != "" {
			result = append(result, se)
		}
	}

	s.log.Info("座席を生成",
		zap.String("showing_id", showingID),
		zap.Int("requested", total),
		zap.Int("created", created),
	)
	s.publisher.Publish(ctx, events.SeatsGenerated{
		Meta:      events.Now(),
		ShowingID: showingID,
		Requested: total,
		Created:   created,
	})
	return result, nil
}

// Reserve は上映の座席をラベル指定で予約する
// 状態確認の後に条件付き更新を行い、その間に他の予約が入った場合も Conflict を返す
func (s *SeatService) Reserve(ctx context.Context, showingID, label, occupant string) (se *seat.Seat, err error) {
	defer func() { s.metrics.ObserveSeatOperation("reserve", outcome(err)) }()

	occupant = strings.TrimSpace(occupant)
	if occupant == "" {
		return nil, seat.ErrOccupantRequired
	}
	if strings.TrimSpace(label) == "" {
		return nil, seat.ErrLabelRequired
	}

	se, err = s.seatRepo.GetByShowingAndLabel(ctx, showingID, label)
	if err != nil {
		return nil, err
	}
	if err := se.Reserve(occupant); err != nil {
		return nil, err
	}
	if err := s.seatRepo.Reserve(ctx, se.ID, occupant); err != nil {
		return nil, err
	}

	s.log.Info("座席を予約",
		zap.String("showing_id", showingID),
		zap.String("seat_label", se.Label),
		zap.String("occupant", occupant),
	)
	s.publisher.Publish(ctx, events.SeatReserved{
		Meta:      events.Now(),
		SeatID:    se.ID,
		ShowingID: se.ShowingID,
		SeatLabel: se.Label,
		Occupant:  occupant,
	})
	return se, nil
}

// Cancel は予約済みの座席を空席に戻す
func (s *SeatService) Cancel(ctx context.Context, seatID string) (se *seat.Seat, err error) {
	defer func() { s.metrics.ObserveSeatOperation("cancel", outcome(err)) }()

	se, err = s.seatRepo.GetByID(ctx, seatID)
	if err != nil {
		return nil, err
	}
	var previous string
	if se.Occupant != nil {
		previous = *se.Occupant
	}
	if err := se.Release(); err != nil {
		return nil, err
	}
	if err := s.seatRepo.Release(ctx, se.ID); err != nil {
		return nil, err
	}

	s.log.Info("座席の予約を取消",
		zap.String("showing_id", se.ShowingID),
		zap.String("seat_label", se.Label),
	)
	s.publisher.Publish(ctx, events.SeatCancelled{
		Meta:             events.Now(),
		SeatID:           se.ID,
		ShowingID:        se.ShowingID,
		SeatLabel:        se.Label,
		PreviousOccupant: previous,
	})
	return se, nil
}

// BulkCancel は上映のキャンセル済みでない座席を全てキャンセル状態にする
// 上映のキャンセルに伴って呼ばれ、座席ごとのイベントは発行しない
func (s *SeatService) BulkCancel(ctx context.Context, showingID string) (int, error) {
	n, err := s.seatRepo.CancelByShowing(ctx, showingID)
	if err != nil {
		return 0, fmt.Errorf("座席の一括キャンセルに失敗: %w", err)
	}
	s.log.Info("座席を一括キャンセル", zap.String("showing_id", showingID), zap.Int("count", n))
	return n, nil
}

// ExpireReservations は開始済み上映に残った予約をキャンセル状態にする
// 空席はそのまま残す
func (s *SeatService) ExpireReservations(ctx context.Context, tx transaction.Tx, showingID string) (int, error) {
	return s.seatRepo.ExpireReserved(ctx, tx, showingID)
}

// syncAvailable は上映の空席数を FREE の座席数に設定する
func (s *SeatService) syncAvailable(ctx context.Context, sh *showing.Showing) error {
	free, err := s.seatRepo.CountFreeByShowing(ctx, sh.ID)
	if err != nil {
		return err
	}
	if free == sh.AvailableSeats {
		return nil
	}
	if err := s.showingRepo.SetAvailable(ctx, sh.ID, free); err != nil {
		return err
	}
	s.log.Info("空席数を座席数に合わせました",
		zap.String("showing_id", sh.ID),
		zap.Int("before", sh.AvailableSeats),
		zap.Int("after", free),
	)
	sh.AvailableSeats = free
	return nil
}

func (s *SeatService) GetSeat(ctx context.Context, id string) (*seat.Seat, error) {
	return s.seatRepo.GetByID(ctx, id)
}

func (s *SeatService) ListSeats(ctx context.Context, showingID string) ([]*seat.Seat, error) {
	if _, err := s.showingRepo.GetByID(ctx, showingID); err != nil {
		return nil, err
	}
	return s.seatRepo.ListByShowing(ctx, showingID)
}

func (s *SeatService) ListFreeSeats(ctx context.Context, showingID string) ([]*seat.Seat, error) {
	if _, err := s.showingRepo.GetByID(ctx, showingID); err != nil {
		return nil, err
	}
	return s.seatRepo.ListFreeByShowing(ctx, showingID)
}

// SeatRow は座席表の1行
type SeatRow struct {
	Row   string
	Seats []*seat.Seat
}

// SeatMap は上映の座席を行ごとにまとめて返す
func (s *SeatService) SeatMap(ctx context.Context, showingID string) ([]SeatRow, error) {
	seats, err := s.ListSeats(ctx, showingID)
	if err != nil {
		return nil, err
	}
	rows, byRow := seat.GroupByRow(seats)
	result := make([]SeatRow, 0, len(rows))
	for _, r := range rows {
		result = append(result, SeatRow{Row: r, Seats: byRow[r]})
	}
	return result, nil
}

// CountReservedSeats は上映の予約済み座席数を返す
func (s *SeatService) CountReservedSeats(ctx context.Context, showingID string) (int, error) {
	return s.seatRepo.CountReservedByShowing(ctx, showingID)
}

// CountFreeSeats は上映の空席数を返す。キャッシュがあればキャッシュを優先する
func (s *SeatService) CountFreeSeats(ctx context.Context, showingID string) (int, error) {
	// キャッシュから取得を試みる
	if s.cache != nil {
		count, err := s.cache.GetFreeCount(ctx, showingID)
		if err == nil {
			s.log.Debug("キャッシュヒット", zap.String("showing_id", showingID), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			s.log.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	if _, err := s.showingRepo.GetByID(ctx, showingID); err != nil {
		return 0, err
	}
	count, err := s.seatRepo.CountFreeByShowing(ctx, showingID)
	if err != nil {
		return 0, err
	}

	// キャッシュに保存
	if s.cache != nil {
		if cacheErr := s.cache.SetFreeCount(ctx, showingID, count, seatCacheTTL); cacheErr != nil {
			s.log.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return count, nil
}

// InvalidateCache は上映の空席数キャッシュを無効化する
func (s *SeatService) InvalidateCache(ctx context.Context, showingID string) {
	if s.cache == nil || showingID == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, showingID); err != nil {
		s.log.Warn("キャッシュ無効化エラー", zap.String("showing_id", showingID), zap.Error(err))
	}
}
