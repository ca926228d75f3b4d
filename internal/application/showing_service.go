package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/events"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showing"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/metrics"
)

// ShowingService は上映のライフサイクルと空席数を管理する
type ShowingService struct {
	repo      showing.Repository
	seatRepo  seat.Repository
	publisher EventPublisher
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewShowingService(repo showing.Repository, sr seat.Repository, pub EventPublisher, m *metrics.Metrics) *ShowingService {
	return &ShowingService{
		repo:      repo,
		seatRepo:  sr,
		publisher: pub,
		metrics:   m,
		log:       logger.Named("showing"),
	}
}

type CreateShowingInput struct {
	Title      string
	StartAt    time.Time
	Room       string
	TotalSeats int
	Price      float64
}

// CreateShowing は空席数 = 総座席数 の上映を登録する。座席の生成は行わない
func (s *ShowingService) CreateShowing(ctx context.Context, input CreateShowingInput) (*showing.Showing, error) {
	sh := showing.NewShowing(input.Title, input.StartAt, input.Room, input.TotalSeats, input.Price)
	if err := sh.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sh); err != nil {
		return nil, err
	}

	s.log.Info("上映を登録", zap.String("showing_id", sh.ID), zap.String("title", sh.Title))
	s.publisher.Publish(ctx, events.ShowingCreated{
		Meta:       events.Now(),
		ShowingID:  sh.ID,
		Title:      sh.Title,
		Room:       sh.Room,
		StartAt:    sh.StartAt,
		TotalSeats: sh.TotalSeats,
		Price:      sh.Price,
	})
	return sh, nil
}

// CancelShowing は上映をキャンセルし空席数を0にする
// 座席のキャンセルは ShowingCancelled を購読する側で行う
func (s *ShowingService) CancelShowing(ctx context.Context, id string) (*showing.Showing, error) {
	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sh.Cancel(); err != nil {
		return nil, err
	}
	if err := s.repo.Cancel(ctx, id); err != nil {
		return nil, err
	}

	s.log.Info("上映をキャンセル", zap.String("showing_id", id))
	s.publisher.Publish(ctx, events.ShowingCancelled{
		Meta:      events.Now(),
		ShowingID: sh.ID,
		Title:     sh.Title,
		Room:      sh.Room,
	})
	return sh, nil
}

// AdjustAvailability は空席数を delta だけ増減する
// 範囲外になる場合やキャンセル済みの場合は何もせず警告ログのみ出す
func (s *ShowingService) AdjustAvailability(ctx context.Context, id string, delta int) error {
	err := s.repo.AdjustAvailable(ctx, id, delta)
	switch {
	case err == nil:
		s.metrics.ObserveAvailabilityAdjustment("applied")
		return nil
	case errors.Is(err, showing.ErrAvailabilityOutOfRange):
		s.metrics.ObserveAvailabilityAdjustment("skipped")
		s.log.Warn("空席数の調整をスキップ",
			zap.String("showing_id", id),
			zap.Int("delta", delta),
		)
		return nil
	default:
		s.metrics.ObserveAvailabilityAdjustment("error")
		return err
	}
}

// ReconcileAvailability は空席数を座席の状態から再計算する
// キャンセル済みの上映と座席未生成の上映は対象外
func (s *ShowingService) ReconcileAvailability(ctx context.Context, id string) (*showing.Showing, error) {
	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sh.IsListed() {
		return sh, nil
	}
	total, err := s.seatRepo.CountByShowing(ctx, id)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return sh, nil
	}
	free, err := s.seatRepo.CountFreeByShowing(ctx, id)
	if err != nil {
		return nil, err
	}
	if free == sh.AvailableSeats {
		return sh, nil
	}

	if err := s.repo.SetAvailable(ctx, id, free); err != nil {
		return nil, err
	}
	s.log.Warn("空席数のずれを補正",
		zap.String("showing_id", id),
		zap.Int("before", sh.AvailableSeats),
		zap.Int("after", free),
	)
	sh.AvailableSeats = free
	return sh, nil
}

// ReconcileAll は上映中の全上映の空席数を再計算し、補正した件数を返す
func (s *ShowingService) ReconcileAll(ctx context.Context) (int, error) {
	listed, err := s.repo.ListByStatus(ctx, showing.StatusListed)
	if err != nil {
		return 0, err
	}
	corrected := 0
	for _, sh := range listed {
		after, err := s.ReconcileAvailability(ctx, sh.ID)
		if err != nil {
			s.log.Error("空席数の再計算に失敗", zap.String("showing_id", sh.ID), zap.Error(err))
			continue
		}
		if after.AvailableSeats != sh.AvailableSeats {
			corrected++
		}
	}
	return corrected, nil
}

func (s *ShowingService) GetShowing(ctx context.Context, id string) (*showing.Showing, error) {
	return s.repo.GetByID(ctx, id)
}

// ListShowings は上映一覧を登録順に返す
func (s *ShowingService) ListShowings(ctx context.Context, limit, offset int) ([]*showing.Showing, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *ShowingService) ListListed(ctx context.Context) ([]*showing.Showing, error) {
	return s.repo.ListByStatus(ctx, showing.StatusListed)
}

func (s *ShowingService) SearchByTitle(ctx context.Context, query string) ([]*showing.Showing, error) {
	return s.repo.SearchByTitle(ctx, query)
}

func (s *ShowingService) ListWithAvailability(ctx context.Context) ([]*showing.Showing, error) {
	return s.repo.ListWithAvailability(ctx)
}
