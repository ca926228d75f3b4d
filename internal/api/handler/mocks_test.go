package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/application"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/client"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/history"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showing"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/worker"
)

// MockShowingService はShowingServiceInterfaceのモック
type MockShowingService struct {
	mock.Mock
}

func (m *MockShowingService) one(args mock.Arguments) (*showing.Showing, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*showing.Showing), args.Error(1)
}

func (m *MockShowingService) many(args mock.Arguments) ([]*showing.Showing, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*showing.Showing), args.Error(1)
}

func (m *MockShowingService) CreateShowing(ctx context.Context, input application.CreateShowingInput) (*showing.Showing, error) {
	return m.one(m.Called(ctx, input))
}

func (m *MockShowingService) CancelShowing(ctx context.Context, id string) (*showing.Showing, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockShowingService) ReconcileAvailability(ctx context.Context, id string) (*showing.Showing, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockShowingService) GetShowing(ctx context.Context, id string) (*showing.Showing, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockShowingService) ListShowings(ctx context.Context, limit, offset int) ([]*showing.Showing, error) {
	return m.many(m.Called(ctx, limit, offset))
}

func (m *MockShowingService) ListListed(ctx context.Context) ([]*showing.Showing, error) {
	return m.many(m.Called(ctx))
}

func (m *MockShowingService) SearchByTitle(ctx context.Context, query string) ([]*showing.Showing, error) {
	return m.many(m.Called(ctx, query))
}

func (m *MockShowingService) ListWithAvailability(ctx context.Context) ([]*showing.Showing, error) {
	return m.many(m.Called(ctx))
}

// MockSeatService はSeatServiceInterfaceのモック
type MockSeatService struct {
	mock.Mock
}

func (m *MockSeatService) one(args mock.Arguments) (*seat.Seat, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatService) many(args mock.Arguments) ([]*seat.Seat, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatService) GenerateSeats(ctx context.Context, showingID string, total int) ([]*seat.Seat, error) {
	return m.many(m.Called(ctx, showingID, total))
}

func (m *MockSeatService) Reserve(ctx context.Context, showingID, label, occupant string) (*seat.Seat, error) {
	return m.one(m.Called(ctx, showingID, label, occupant))
}

func (m *MockSeatService) Cancel(ctx context.Context, seatID string) (*seat.Seat, error) {
	return m.one(m.Called(ctx, seatID))
}

func (m *MockSeatService) GetSeat(ctx context.Context, id string) (*seat.Seat, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockSeatService) ListSeats(ctx context.Context, showingID string) ([]*seat.Seat, error) {
	return m.many(m.Called(ctx, showingID))
}

func (m *MockSeatService) ListFreeSeats(ctx context.Context, showingID string) ([]*seat.Seat, error) {
	return m.many(m.Called(ctx, showingID))
}

func (m *MockSeatService) SeatMap(ctx context.Context, showingID string) ([]application.SeatRow, error) {
	args := m.Called(ctx, showingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.SeatRow), args.Error(1)
}

func (m *MockSeatService) CountFreeSeats(ctx context.Context, showingID string) (int, error) {
	args := m.Called(ctx, showingID)
	return args.Int(0), args.Error(1)
}

// MockClientService はClientServiceInterfaceのモック
type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) one(args mock.Arguments) (*client.Client, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientService) many(args mock.Arguments) ([]*client.Client, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*client.Client), args.Error(1)
}

func (m *MockClientService) Register(ctx context.Context, input application.RegisterClientInput) (*client.Client, error) {
	return m.one(m.Called(ctx, input))
}

func (m *MockClientService) Update(ctx context.Context, id string, patch client.Patch) (*client.Client, error) {
	return m.one(m.Called(ctx, id, patch))
}

func (m *MockClientService) Activate(ctx context.Context, id string) (*client.Client, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockClientService) Deactivate(ctx context.Context, id string) (*client.Client, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockClientService) GetClient(ctx context.Context, id string) (*client.Client, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockClientService) ListClients(ctx context.Context, limit, offset int) ([]*client.Client, error) {
	return m.many(m.Called(ctx, limit, offset))
}

func (m *MockClientService) ListActiveClients(ctx context.Context) ([]*client.Client, error) {
	return m.many(m.Called(ctx))
}

func (m *MockClientService) SearchClients(ctx context.Context, query string) ([]*client.Client, error) {
	return m.many(m.Called(ctx, query))
}

// MockHistoryService はHistoryServiceInterfaceのモック
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) many(args mock.Arguments) ([]*history.Entry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*history.Entry), args.Error(1)
}

func (m *MockHistoryService) ListByShowing(ctx context.Context, showingID string) ([]*history.Entry, error) {
	return m.many(m.Called(ctx, showingID))
}

func (m *MockHistoryService) ListByClientEmail(ctx context.Context, email string) ([]*history.Entry, error) {
	return m.many(m.Called(ctx, email))
}

func (m *MockHistoryService) ListByOperation(ctx context.Context, op string) ([]*history.Entry, error) {
	return m.many(m.Called(ctx, op))
}

func (m *MockHistoryService) ListBetween(ctx context.Context, from, to time.Time) ([]*history.Entry, error) {
	return m.many(m.Called(ctx, from, to))
}

func (m *MockHistoryService) Recent(ctx context.Context, limit int) ([]*history.Entry, error) {
	return m.many(m.Called(ctx, limit))
}

func (m *MockHistoryService) Stats(ctx context.Context) (*history.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*history.Stats), args.Error(1)
}

// MockSweeper はSweeperInterfaceのモック
type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) Run(ctx context.Context, trigger string) (*worker.Result, error) {
	args := m.Called(ctx, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worker.Result), args.Error(1)
}
