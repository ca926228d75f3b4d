package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/api/handler"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/api/router"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/application"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/config"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/client"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/history"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showing"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/eventbus"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/infrastructure/memory"
	mongoinfra "github.com/sanosuguru/go-cinema-seat-reservation/internal/infrastructure/mongo"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-cinema-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/worker"
)

// repositories はストレージドライバーごとのリポジトリ群
type repositories struct {
	showings showing.Repository
	seats    seat.Repository
	clients  client.Repository
	tx       transaction.Manager
	db       *sqlx.DB
}

func main() {
	// .env があれば読み込む（無くてもよい）
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Set(logger.NewLogger(cfg.App.Env))
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		logger.Fatal("起動に失敗しました", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	m := metrics.Init()

	repos, err := openRepositories(cfg)
	if err != nil {
		return err
	}
	if repos.db != nil {
		defer repos.db.Close()
	}

	// Redis（空席数キャッシュとスイープの分散ロック）
	var (
		cache  application.SeatCountCache
		locker worker.Locker
	)
	if cfg.Redis.Enabled {
		rc, err := redisinfra.NewClient(redisinfra.ConfigFrom(&cfg.Redis))
		if err != nil {
			logger.Warn("Redisに接続できないためキャッシュとロックを無効にします", zap.Error(err))
		} else {
			defer rc.Close()
			cache = redisinfra.NewSeatCache(rc)
			locker = worker.NewRedisLocker(redisinfra.NewLockManager(rc, m))
		}
	}

	// 予約履歴（MongoDB が無ければメモリ）
	var historyRepo history.Repository = memory.NewHistoryRepository(memory.NewStore())
	if cfg.Mongo.URI != "" {
		mc, err := mongoinfra.NewClient(ctx, &cfg.Mongo)
		if err != nil {
			return err
		}
		defer disconnectMongo(mc)
		repo := mongoinfra.NewHistoryRepository(mc.Database(cfg.Mongo.Database), cfg.Mongo.Collection)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("履歴インデックス作成エラー: %w", err)
		}
		historyRepo = repo
	}

	// ドメインイベントの RabbitMQ 中継
	var relay application.EventRelay
	if cfg.RabbitMQ.URL != "" {
		r, err := rabbitmq.NewEventRelay(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return err
		}
		defer r.Close()
		relay = r
	}

	bus := eventbus.New(eventbus.WithMetrics(m))
	seatService := application.NewSeatService(repos.seats, repos.showings, bus, cache, m)
	showingService := application.NewShowingService(repos.showings, repos.seats, bus, m)
	clientService := application.NewClientService(repos.clients, bus)
	historyService := application.NewHistoryService(historyRepo)

	application.RegisterListeners(bus, application.Listeners{
		Seats:    seatService,
		Showings: showingService,
		History:  historyService,
		Relay:    relay,
	})

	sweeper := worker.NewStaleReservationSweeper(
		showingService, seatService, repos.tx, bus, locker,
		worker.SweeperConfig{
			PageSize:  cfg.Sweeper.PageSize,
			ChunkSize: cfg.Sweeper.ChunkSize,
			LockTTL:   cfg.Sweeper.LockTTL,
		},
		m,
	)

	var scheduler *worker.Scheduler
	if cfg.Sweeper.Enabled {
		scheduler, err = worker.NewScheduler(sweeper, showingService, cfg.Sweeper.Cron, cfg.Sweeper.Timezone)
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	var pinger handler.Pinger
	if repos.db != nil {
		pinger = repos.db
	}

	e := router.New(router.Deps{
		Showings:    showingService,
		Seats:       seatService,
		Clients:     clientService,
		History:     historyService,
		Sweeper:     sweeper,
		DB:          pinger,
		Metrics:     m,
		MetricsAuth: middleware.LoadMetricsConfig(),
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("サーバーを起動します",
			zap.String("port", cfg.Server.Port),
			zap.String("storage", cfg.App.StorageDriver),
		)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("サーバー起動エラー: %w", err)
	}

	logger.Info("サーバーをシャットダウンしています...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("サーバーシャットダウンエラー: %w", err)
	}

	logger.Info("サーバーが正常にシャットダウンしました")
	return nil
}

// openRepositories は STORAGE_DRIVER に応じてリポジトリを作成する
func openRepositories(cfg *config.Config) (*repositories, error) {
	switch cfg.App.StorageDriver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		return &repositories{
			showings: memory.NewShowingRepository(store),
			seats:    memory.NewSeatRepository(store),
			clients:  memory.NewClientRepository(store),
			tx:       memory.NewTxManager(store),
		}, nil

	case config.StorageDriverPostgres:
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
			db.Close()
			return nil, err
		}
		return &repositories{
			showings: postgres.NewShowingRepository(db),
			seats:    postgres.NewSeatRepository(db),
			clients:  postgres.NewClientRepository(db),
			tx:       postgres.NewTxManager(db),
			db:       db,
		}, nil
	}
	return nil, fmt.Errorf("未対応のストレージドライバーです: %s", cfg.App.StorageDriver)
}

func disconnectMongo(c *mongodriver.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Disconnect(ctx); err != nil {
		logger.Warn("MongoDB切断エラー", zap.Error(err))
	}
}
