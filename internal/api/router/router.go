// Package router はHTTPルーティングを組み立てる
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/api"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/api/handler"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/metrics"
)

// Deps はルーターが使うサービス群
type Deps struct {
	Showings handler.ShowingServiceInterface
	Seats    handler.SeatServiceInterface
	Clients  handler.ClientServiceInterface
	History  handler.HistoryServiceInterface
	Sweeper  handler.SweeperInterface

	// DB はヘルスチェックでの疎通確認に使う。nil なら省略する
	DB handler.Pinger

	Metrics     *metrics.Metrics
	MetricsAuth middleware.MetricsConfig
	// Gatherer が nil の場合はデフォルトレジストリを公開する
	Gatherer prometheus.Gatherer
}

// New はミドルウェアとルートを設定した Echo を返す
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e, d.Metrics)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	e.GET("/health", handler.NewHealthHandler(d.DB).Check)
	e.GET("/metrics",
		echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
		middleware.MetricsBasicAuth(d.MetricsAuth),
	)

	v1 := e.Group("/api/v1")

	showings := handler.NewShowingHandler(d.Showings, d.Seats)
	v1.POST("/showings", showings.Create)
	v1.GET("/showings", showings.List)
	v1.GET("/showings/:id", showings.GetByID)
	v1.POST("/showings/:id/cancel", showings.Cancel)
	v1.POST("/showings/:id/reconcile", showings.Reconcile)

	seats := handler.NewSeatHandler(d.Seats, d.Showings)
	v1.POST("/showings/:id/seats", seats.Generate)
	v1.GET("/showings/:id/seats", seats.ListByShowing)
	v1.GET("/showings/:id/seats/map", seats.Map)
	v1.GET("/showings/:id/seats/free/count", seats.CountFree)
	v1.POST("/showings/:id/seats/:label/reserve", seats.Reserve)
	v1.GET("/seats/:id", seats.GetByID)
	v1.POST("/seats/:id/cancel", seats.Cancel)

	clients := handler.NewClientHandler(d.Clients)
	v1.POST("/clients", clients.Register)
	v1.GET("/clients", clients.List)
	v1.GET("/clients/:id", clients.GetByID)
	v1.PUT("/clients/:id", clients.Update)
	v1.DELETE("/clients/:id", clients.Delete)
	v1.POST("/clients/:id/activate", clients.Activate)
	v1.POST("/clients/:id/deactivate", clients.Deactivate)

	hist := handler.NewHistoryHandler(d.History)
	v1.GET("/history", hist.Between)
	v1.GET("/history/showings/:id", hist.ByShowing)
	v1.GET("/history/clients/:email", hist.ByClient)
	v1.GET("/history/operations/:op", hist.ByOperation)
	v1.GET("/history/recent", hist.Recent)
	v1.GET("/history/stats", hist.Stats)

	if d.Sweeper != nil {
		v1.POST("/admin/sweeps", handler.NewAdminHandler(d.Sweeper).Sweep)
	}

	return e
}
