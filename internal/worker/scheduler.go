package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
)

// Reconciler は空席数を座席の状態から再計算する
type Reconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// Sweeper は Scheduler から起動されるスイープ
type Sweeper interface {
	Run(ctx context.Context, trigger string) (*Result, error)
}

// Scheduler は cron 式に従ってスイープと空席数の再計算を実行する
type Scheduler struct {
	cron       *cron.Cron
	sweeper    Sweeper
	reconciler Reconciler
	spec       string
	entryID    cron.EntryID
	log        *zap.Logger
}

// NewScheduler はスケジューラーを作成する。reconciler は nil でもよい
// 前回の実行が終わっていない場合、その回はスキップする
func NewScheduler(sw Sweeper, rec Reconciler, spec, timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("タイムゾーンが不正です: %w", err)
	}

	log := logger.Named("scheduler")
	cl := cronLogger{log: log.Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		sweeper:    sw,
		reconciler: rec,
		spec:       spec,
		log:        log,
	}

	s.entryID, err = s.cron.AddFunc(spec, s.runScheduled)
	if err != nil {
		return nil, fmt.Errorf("cron 式が不正です %q: %w", spec, err)
	}
	return s, nil
}

// Start はスケジューラーを開始する
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("スイープのスケジュールを開始", zap.String("cron", s.spec), zap.Time("next", s.Next()))
}

// Stop はスケジューラーを停止し、実行中のジョブの終了を待つ
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("スイープのスケジュールを停止")
	case <-ctx.Done():
		s.log.Warn("実行中のスイープの終了を待たずに停止")
	}
}

// Next は次回の実行予定時刻を返す
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) runScheduled() {
	ctx := context.Background()

	_, err := s.sweeper.Run(ctx, TriggerSchedule)
	if errors.Is(err, ErrSweepInProgress) {
		return
	}
	if err != nil {
		s.log.Error("定期スイープに失敗", zap.Error(err))
	}

	if s.reconciler == nil {
		return
	}
	corrected, err := s.reconciler.ReconcileAll(ctx)
	if err != nil {
		s.log.Error("空席数の再計算に失敗", zap.Error(err))
		return
	}
	if corrected > 0 {
		s.log.Info("空席数を補正", zap.Int("showings", corrected))
	}
}

// cronLogger は zap を cron.Logger として使う
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
