package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/events"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/history"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
)

const defaultRecentLimit = 10

// HistoryService は履歴の記録と参照を行う
type HistoryService struct {
	repo history.Repository
	log  *zap.Logger
}

func NewHistoryService(repo history.Repository) *HistoryService {
	return &HistoryService{repo: repo, log: logger.Named("history")}
}

// Record はイベントを履歴として記録する
// 失敗はログに残すだけで呼び出し元には返さない
func (s *HistoryService) Record(ctx context.Context, e events.Event) {
	entry, err := history.FromEvent(e)
	if err != nil {
		s.log.Warn("履歴に変換できないイベント", zap.String("event", e.EventName()))
		return
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.log.Warn("履歴の記録に失敗",
			zap.String("event", e.EventName()),
			zap.String("showing_id", entry.ShowingID),
			zap.Error(err),
		)
	}
}

func (s *HistoryService) ListByShowing(ctx context.Context, showingID string) ([]*history.Entry, error) {
	return s.repo.ListByShowing(ctx, showingID)
}

func (s *HistoryService) ListByClientEmail(ctx context.Context, email string) ([]*history.Entry, error) {
	return s.repo.ListByClientEmail(ctx, email)
}

func (s *HistoryService) ListByOperation(ctx context.Context, op string) ([]*history.Entry, error) {
	operation, err := history.ParseOperation(op)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByOperation(ctx, operation)
}

// ListBetween は期間内の履歴を古い順に返す
func (s *HistoryService) ListBetween(ctx context.Context, from, to time.Time) ([]*history.Entry, error) {
	if !from.Before(to) {
		return nil, history.ErrInvalidRange
	}
	return s.repo.ListBetween(ctx, from, to)
}

// Recent は最新の履歴を返す。limit が0以下なら10件
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]*history.Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.repo.Recent(ctx, limit)
}

func (s *HistoryService) Stats(ctx context.Context) (*history.Stats, error) {
	counts, err := s.repo.CountByOperation(ctx)
	if err != nil {
		return nil, err
	}
	stats := &history.Stats{ByOperation: make(map[history.Operation]int64, len(history.Operations))}
	for _, op := range history.Operations {
		stats.ByOperation[op] = counts[op]
		stats.Total += counts[op]
	}
	return stats, nil
}
