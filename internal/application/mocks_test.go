package application

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/events"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showing"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
)

// === Mock implementations ===

// MockSeatRepository implements seat.Repository
type MockSeatRepository struct {
	mock.Mock
}

func (m *MockSeatRepository) CreateBulk(ctx context.Context, seats []*seat.Seat) (int, error) {
	args := m.Called(ctx, seats)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) GetByShowingAndLabel(ctx context.Context, showingID, label string) (*seat.Seat, error) {
	args := m.Called(ctx, showingID, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) ListByShowing(ctx context.Context, showingID string) ([]*seat.Seat, error) {
	args := m.Called(ctx, showingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) ListFreeByShowing(ctx context.Context, showingID string) ([]*seat.Seat, error) {
	args := m.Called(ctx, showingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) CountByShowing(ctx context.Context, showingID string) (int, error) {
	args := m.Called(ctx, showingID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatRepository) CountFreeByShowing(ctx context.Context, showingID string) (int, error) {
	args := m.Called(ctx, showingID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatRepository) CountReservedByShowing(ctx context.Context, showingID string) (int, error) {
	args := m.Called(ctx, showingID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatRepository) Reserve(ctx context.Context, id, occupant string) error {
	return m.Called(ctx, id, occupant).Error(0)
}

func (m *MockSeatRepository) Release(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSeatRepository) CancelByShowing(ctx context.Context, showingID string) (int, error) {
	args := m.Called(ctx, showingID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatRepository) ExpireReserved(ctx context.Context, tx transaction.Tx, showingID string) (int, error) {
	args := m.Called(ctx, tx, showingID)
	return args.Int(0), args.Error(1)
}

// MockShowingRepository implements showing.Repository
type MockShowingRepository struct {
	mock.Mock
}

func (m *MockShowingRepository) Create(ctx context.Context, s *showing.Showing) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockShowingRepository) GetByID(ctx context.Context, id string) (*showing.Showing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*showing.Showing), args.Error(1)
}

func (m *MockShowingRepository) List(ctx context.Context, limit, offset int) ([]*showing.Showing, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*showing.Showing), args.Error(1)
}

func (m *MockShowingRepository) ListByStatus(ctx context.Context, status showing.Status) ([]*showing.Showing, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*showing.Showing), args.Error(1)
}

func (m *MockShowingRepository) SearchByTitle(ctx context.Context, query string) ([]*showing.Showing, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*showing.Showing), args.Error(1)
}

func (m *MockShowingRepository) ListWithAvailability(ctx context.Context) ([]*showing.Showing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*showing.Showing), args.Error(1)
}

func (m *MockShowingRepository) Cancel(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockShowingRepository) AdjustAvailable(ctx context.Context, id string, delta int) error {
	return m.Called(ctx, id, delta).Error(0)
}

func (m *MockShowingRepository) SetAvailable(ctx context.Context, id string, available int) error {
	return m.Called(ctx, id, available).Error(0)
}

// MockSeatCountCache implements SeatCountCache
type MockSeatCountCache struct {
	mock.Mock
}

func (m *MockSeatCountCache) GetFreeCount(ctx context.Context, showingID string) (int, error) {
	args := m.Called(ctx, showingID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatCountCache) SetFreeCount(ctx context.Context, showingID string, count int, ttl time.Duration) error {
	return m.Called(ctx, showingID, count, ttl).Error(0)
}

func (m *MockSeatCountCache) Invalidate(ctx context.Context, showingID string) error {
	return m.Called(ctx, showingID).Error(0)
}

// recordingPublisher は発行されたイベントを記録する
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.events))
	for i, e := range p.events {
		names[i] = e.EventName()
	}
	return names
}
