package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/apperr"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/events"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showing"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-cinema-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/metrics"
)

// スイープの起動契機
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

const sweepLockKey = "sweeper:stale-reservations"

var ErrSweepInProgress = apperr.Conflict("期限切れ予約のスイープは実行中です")

// ShowingReader は上映をページ単位で読み出す
type ShowingReader interface {
	ListShowings(ctx context.Context, limit, offset int) ([]*showing.Showing, error)
}

// ReservationExpirer は上映に残った予約を扱う
type ReservationExpirer interface {
	CountReservedSeats(ctx context.Context, showingID string) (int, error)
	ExpireReservations(ctx context.Context, tx transaction.Tx, showingID string) (int, error)
}

// EventPublisher はドメインイベントを発行する
type EventPublisher interface {
	Publish(ctx context.Context, e events.Event)
}

// Lease は取得済みのロック
type Lease interface {
	Release(ctx context.Context) error
	Extend(ctx context.Context, ttl time.Duration) error
}

// Locker はインスタンス間の多重実行を防ぐロック
// 他のインスタンスが保持中なら ErrSweepInProgress を返す
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

type redisLocker struct {
	lm *redisinfra.LockManager
}

// NewRedisLocker は Redis の分散ロックを Locker として使う
func NewRedisLocker(lm *redisinfra.LockManager) Locker {
	return &redisLocker{lm: lm}
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	lock, err := l.lm.AcquireLock(ctx, key, ttl)
	if errors.Is(err, redisinfra.ErrLockNotAcquired) {
		return nil, ErrSweepInProgress
	}
	if err != nil {
		return nil, err
	}
	return lock, nil
}

// SweeperConfig はスイーパーの設定
type SweeperConfig struct {
	PageSize  int
	ChunkSize int
	LockTTL   time.Duration
}

// Result はスイープ1回分の実行結果
type Result struct {
	RunID          string    `json:"run_id"`
	Trigger        string    `json:"trigger"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Read           int       `json:"read"`
	Selected       int       `json:"selected"`
	Swept          int       `json:"swept"`
	SeatsCancelled int       `json:"seats_cancelled"`
	Failed         int       `json:"failed"`
}

func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// StaleReservationSweeper は開始済み上映に残った予約をキャンセルする
//
// 上映をページ単位で読み、開始済みかつ予約済み座席のある上映を選び、
// ChunkSize 件ごとに1トランザクションで書き込む。各上映はセーブポイント内で処理し、
// 失敗した上映だけを巻き戻す。コミット済みのチャンクは後続の失敗で巻き戻らない。
type StaleReservationSweeper struct {
	reader    ShowingReader
	expirer   ReservationExpirer
	txManager transaction.Manager
	publisher EventPublisher
	locker    Locker
	cfg       SweeperConfig
	metrics   *metrics.Metrics
	log       *zap.Logger
	running   atomic.Bool
	now       func() time.Time
}

// NewStaleReservationSweeper はスイーパーを作成する。locker と m は nil でもよい
func NewStaleReservationSweeper(
	reader ShowingReader,
	expirer ReservationExpirer,
	txm transaction.Manager,
	pub EventPublisher,
	locker Locker,
	cfg SweeperConfig,
	m *metrics.Metrics,
) *StaleReservationSweeper {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 10
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &StaleReservationSweeper{
		reader:    reader,
		expirer:   expirer,
		txManager: txm,
		publisher: pub,
		locker:    locker,
		cfg:       cfg,
		metrics:   m,
		log:       logger.Named("sweeper"),
		now:       time.Now,
	}
}

// Run はスイープを1回実行する
// 実行中の場合は ErrSweepInProgress を返す
func (s *StaleReservationSweeper) Run(ctx context.Context, trigger string) (*Result, error) {
	res := &Result{RunID: uuid.New().String(), Trigger: trigger, StartedAt: s.now()}
	log := s.log.With(zap.String("run_id", res.RunID), zap.String("trigger", trigger))

	if !s.running.CompareAndSwap(false, true) {
		s.metrics.ObserveSweep(trigger, "locked", 0, 0)
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)

	var lease Lease
	if s.locker != nil {
		var err error
		lease, err = s.locker.Acquire(ctx, sweepLockKey, s.cfg.LockTTL)
		if err != nil {
			if errors.Is(err, ErrSweepInProgress) {
				s.metrics.ObserveSweep(trigger, "locked", 0, 0)
				log.Info("他のインスタンスがスイープ中のためスキップ")
				return nil, err
			}
			s.metrics.ObserveSweep(trigger, "error", 0, 0)
			return nil, fmt.Errorf("スイープのロック取得に失敗: %w", err)
		}
		defer func() {
			if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("スイープのロック解放に失敗", zap.Error(err))
			}
		}()
	}

	log.Info("期限切れ予約のスイープ開始")
	err := s.sweep(ctx, res, lease, log)
	res.FinishedAt = s.now()

	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveSweep(trigger, status, res.SeatsCancelled, res.Duration())

	fields := []zap.Field{
		zap.Int("read", res.Read),
		zap.Int("selected", res.Selected),
		zap.Int("swept", res.Swept),
		zap.Int("seats_cancelled", res.SeatsCancelled),
		zap.Int("failed", res.Failed),
		zap.Duration("duration", res.Duration()),
	}
	if err != nil {
		log.Error("期限切れ予約のスイープ失敗", append(fields, zap.Error(err))...)
		return res, err
	}
	log.Info("期限切れ予約のスイープ完了", fields...)
	return res, nil
}

func (s *StaleReservationSweeper) sweep(ctx context.Context, res *Result, lease Lease, log *zap.Logger) error {
	now := s.now()
	pending := make([]*showing.Showing, 0, s.cfg.ChunkSize)

	for offset := 0; ; offset += s.cfg.PageSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := s.reader.ListShowings(ctx, s.cfg.PageSize, offset)
		if err != nil {
			return fmt.Errorf("上映の読み出しに失敗: %w", err)
		}
		res.Read += len(page)

		for _, sh := range page {
			if !s.selectShowing(ctx, sh, now, res, log) {
				continue
			}
			res.Selected++
			pending = append(pending, sh)
			if len(pending) == s.cfg.ChunkSize {
				s.writeChunk(ctx, pending, res, log)
				pending = pending[:0]
				s.extendLease(ctx, lease, log)
			}
		}

		if len(page) < s.cfg.PageSize {
			break
		}
	}

	if len(pending) > 0 {
		s.writeChunk(ctx, pending, res, log)
	}
	return nil
}

// selectShowing は開始済みで予約済み座席が残っている上映を選ぶ
// 判定に失敗した上映はスキップする
func (s *StaleReservationSweeper) selectShowing(ctx context.Context, sh *showing.Showing, now time.Time, res *Result, log *zap.Logger) bool {
	if !sh.HasStarted(now) {
		return false
	}
	reserved, err := s.expirer.CountReservedSeats(ctx, sh.ID)
	if err != nil {
		res.Failed++
		log.Warn("予約済み座席数の取得に失敗したため上映をスキップ", zap.String("showing_id", sh.ID), zap.Error(err))
		return false
	}
	return reserved > 0
}

type expired struct {
	showingID string
	count     int
}

// writeChunk はチャンクを1トランザクションで書き込む
func (s *StaleReservationSweeper) writeChunk(ctx context.Context, chunk []*showing.Showing, res *Result, log *zap.Logger) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		res.Failed += len(chunk)
		log.Error("チャンクのトランザクション開始に失敗", zap.Int("size", len(chunk)), zap.Error(err))
		return
	}

	done := make([]expired, 0, len(chunk))
	for i, sh := range chunk {
		n, err := s.expireOne(ctx, tx, fmt.Sprintf("sweep_item_%d", i), sh.ID)
		if err != nil {
			res.Failed++
			log.Warn("上映の予約キャンセルに失敗", zap.String("showing_id", sh.ID), zap.Error(err))
			continue
		}
		done = append(done, expired{showingID: sh.ID, count: n})
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		res.Failed += len(done)
		log.Error("チャンクのコミットに失敗", zap.Int("size", len(chunk)), zap.Error(err))
		return
	}

	for _, d := range done {
		res.Swept++
		res.SeatsCancelled += d.count
		if d.count == 0 {
			continue
		}
		s.publisher.Publish(ctx, events.ReservationsExpired{
			Meta:           events.Now(),
			ShowingID:      d.showingID,
			SeatsCancelled: d.count,
			RunID:          res.RunID,
		})
	}
}

// expireOne は1上映分をセーブポイント内で処理する
func (s *StaleReservationSweeper) expireOne(ctx context.Context, tx transaction.Tx, savepoint, showingID string) (int, error) {
	if err := tx.Savepoint(ctx, savepoint); err != nil {
		return 0, err
	}
	n, err := s.expirer.ExpireReservations(ctx, tx, showingID)
	if err != nil {
		if rbErr := tx.RollbackTo(ctx, savepoint); rbErr != nil {
			return 0, errors.Join(err, rbErr)
		}
		return 0, err
	}
	if err := tx.ReleaseSavepoint(ctx, savepoint); err != nil {
		_ = tx.RollbackTo(ctx, savepoint)
		return 0, err
	}
	return n, nil
}

func (s *StaleReservationSweeper) extendLease(ctx context.Context, lease Lease, log *zap.Logger) {
	if lease == nil {
		return
	}
	if err := lease.Extend(ctx, s.cfg.LockTTL); err != nil {
		log.Warn("スイープのロック延長に失敗", zap.Error(err))
	}
}
