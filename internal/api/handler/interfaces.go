package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/application"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/client"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/history"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showing"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/worker"
)

// ShowingServiceInterface は上映サービスのインターフェース
type ShowingServiceInterface interface {
	CreateShowing(ctx context.Context, input application.CreateShowingInput) (*showing.Showing, error)
	CancelShowing(ctx context.Context, id string) (*showing.Showing, error)
	ReconcileAvailability(ctx context.Context, id string) (*showing.Showing, error)
	GetShowing(ctx context.Context, id string) (*showing.Showing, error)
	ListShowings(ctx context.Context, limit, offset int) ([]*showing.Showing, error)
	ListListed(ctx context.Context) ([]*showing.Showing, error)
	SearchByTitle(ctx context.Context, query string) ([]*showing.Showing, error)
	ListWithAvailability(ctx context.Context) ([]*showing.Showing, error)
}

// SeatServiceInterface は座席サービスのインターフェース
type SeatServiceInterface interface {
	GenerateSeats(ctx context.Context, showingID string, total int) ([]*seat.Seat, error)
	Reserve(ctx context.Context, showingID, label, occupant string) (*seat.Seat, error)
	Cancel(ctx context.Context, seatID string) (*seat.Seat, error)
	GetSeat(ctx context.Context, id string) (*seat.Seat, error)
	ListSeats(ctx context.Context, showingID string) ([]*seat.Seat, error)
	ListFreeSeats(ctx context.Context, showingID string) ([]*seat.Seat, error)
	SeatMap(ctx context.Context, showingID string) ([]application.SeatRow, error)
	CountFreeSeats(ctx context.Context, showingID string) (int, error)
}

// ClientServiceInterface は顧客サービスのインターフェース
type ClientServiceInterface interface {
	Register(ctx context.Context, input application.RegisterClientInput) (*client.Client, error)
	Update(ctx context.Context, id string, patch client.Patch) (*client.Client, error)
	Activate(ctx context.Context, id string) (*client.Client, error)
	Deactivate(ctx context.Context, id string) (*client.Client, error)
	GetClient(ctx context.Context, id string) (*client.Client, error)
	ListClients(ctx context.Context, limit, offset int) ([]*client.Client, error)
	ListActiveClients(ctx context.Context) ([]*client.Client, error)
	SearchClients(ctx context.Context, query string) ([]*client.Client, error)
}

// HistoryServiceInterface は予約履歴サービスのインターフェース
type HistoryServiceInterface interface {
	ListByShowing(ctx context.Context, showingID string) ([]*history.Entry, error)
	ListByClientEmail(ctx context.Context, email string) ([]*history.Entry, error)
	ListByOperation(ctx context.Context, op string) ([]*history.Entry, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*history.Entry, error)
	Recent(ctx context.Context, limit int) ([]*history.Entry, error)
	Stats(ctx context.Context) (*history.Stats, error)
}

// SweeperInterface は期限切れ予約スイーパーのインターフェース
type SweeperInterface interface {
	Run(ctx context.Context, trigger string) (*worker.Result, error)
}
