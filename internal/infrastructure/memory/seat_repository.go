package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
)

type SeatRepository struct{ store *Store }

func NewSeatRepository(store *Store) *SeatRepository { return &SeatRepository{store: store} }

func (r *SeatRepository) CreateBulk(ctx context.Context, seats []*seat.Seat) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing := make(map[string]bool)
	for _, s := range r.store.seats {
		existing[s.ShowingID+"/"+s.Label] = true
	}

	created := 0
	for _, s := range seats {
		key := s.ShowingID + "/" + s.Label
		if existing[key] {
			continue
		}
		s.ID = uuid.New().String()
		r.store.seats[s.ID] = cloneSeat(s)
		existing[key] = true
		created++
	}
	return created, nil
}

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.seats[id]
	if !ok {
		return nil, seat.ErrSeatNotFound
	}
	return cloneSeat(s), nil
}

func (r *SeatRepository) GetByShowingAndLabel(ctx context.Context, showingID, label string) (*seat.Seat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	label = strings.ToUpper(label)
	for _, s := range r.store.seats {
		if s.ShowingID == showingID && s.Label == label {
			return cloneSeat(s), nil
		}
	}
	return nil, seat.ErrSeatNotFound
}

func (r *SeatRepository) ListByShowing(ctx context.Context, showingID string) ([]*seat.Seat, error) {
	return r.list(showingID, func(*seat.Seat) bool { return true }), nil
}

func (r *SeatRepository) ListFreeByShowing(ctx context.Context, showingID string) ([]*seat.Seat, error) {
	return r.list(showingID, (*seat.Seat).IsFree), nil
}

func (r *SeatRepository) list(showingID string, match func(*seat.Seat) bool) []*seat.Seat {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	seats := make([]*seat.Seat, 0)
	for _, s := range r.store.seats {
		if s.ShowingID == showingID && match(s) {
			seats = append(seats, cloneSeat(s))
		}
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Column < seats[j].Column
	})
	return seats
}

func (r *SeatRepository) CountByShowing(ctx context.Context, showingID string) (int, error) {
	return len(r.list(showingID, func(*seat.Seat) bool { return true })), nil
}

func (r *SeatRepository) CountFreeByShowing(ctx context.Context, showingID string) (int, error) {
	return len(r.list(showingID, (*seat.Seat).IsFree)), nil
}

func (r *SeatRepository) CountReservedByShowing(ctx context.Context, showingID string) (int, error) {
	return len(r.list(showingID, (*seat.Seat).IsReserved)), nil
}

func (r *SeatRepository) Reserve(ctx context.Context, id, occupant string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.seats[id]
	if !ok {
		return seat.ErrSeatNotAvailable
	}
	return s.Reserve(occupant)
}

func (r *SeatRepository) Release(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.seats[id]
	if !ok {
		return seat.ErrSeatNotReserved
	}
	return s.Release()
}

func (r *SeatRepository) CancelByShowing(ctx context.Context, showingID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n := 0
	for _, s := range r.store.seats {
		if s.ShowingID == showingID && s.Void() {
			n++
		}
	}
	return n, nil
}

func (r *SeatRepository) ExpireReserved(ctx context.Context, tx transaction.Tx, showingID string) (int, error) {
	memTx, ok := tx.(*Tx)
	if !ok || memTx == nil {
		return 0, errors.New("トランザクションが必要です")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if memTx.done {
		return 0, ErrTxDone
	}

	n := 0
	for _, s := range r.store.seats {
		if s.ShowingID != showingID || !s.IsReserved() {
			continue
		}
		before := cloneSeat(s)
		if err := s.Expire(); err != nil {
			return n, err
		}
		memTx.record(func() { r.store.seats[before.ID] = before })
		n++
	}
	return n, nil
}

var _ seat.Repository = (*SeatRepository)(nil)
