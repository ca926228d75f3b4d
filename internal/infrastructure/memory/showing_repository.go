package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showing"
)

type ShowingRepository struct{ store *Store }

func NewShowingRepository(store *Store) *ShowingRepository {
	return &ShowingRepository{store: store}
}

func (r *ShowingRepository) Create(ctx context.Context, s *showing.Showing) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s.ID = uuid.New().String()
	r.store.showings[s.ID] = cloneShowing(s)
	return nil
}

func (r *ShowingRepository) GetByID(ctx context.Context, id string) (*showing.Showing, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.showings[id]
	if !ok {
		return nil, showing.ErrShowingNotFound
	}
	return cloneShowing(s), nil
}

func (r *ShowingRepository) List(ctx context.Context, limit, offset int) ([]*showing.Showing, error) {
	all := r.filter(func(*showing.Showing) bool { return true })
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return page(all, limit, offset), nil
}

func (r *ShowingRepository) ListByStatus(ctx context.Context, status showing.Status) ([]*showing.Showing, error) {
	return byStartAt(r.filter(func(s *showing.Showing) bool { return s.Status == status })), nil
}

func (r *ShowingRepository) SearchByTitle(ctx context.Context, query string) ([]*showing.Showing, error) {
	q := strings.ToLower(query)
	return byStartAt(r.filter(func(s *showing.Showing) bool {
		return strings.Contains(strings.ToLower(s.Title), q)
	})), nil
}

func (r *ShowingRepository) ListWithAvailability(ctx context.Context) ([]*showing.Showing, error) {
	return byStartAt(r.filter(func(s *showing.Showing) bool {
		return s.IsListed() && s.AvailableSeats > 0
	})), nil
}

func (r *ShowingRepository) Cancel(ctx context.Context, id string) error {
	return r.update(id, (*showing.Showing).Cancel)
}

func (r *ShowingRepository) AdjustAvailable(ctx context.Context, id string, delta int) error {
	return r.update(id, func(s *showing.Showing) error {
		if err := s.ApplyDelta(delta); err != nil {
			return showing.ErrAvailabilityOutOfRange
		}
		return nil
	})
}

func (r *ShowingRepository) SetAvailable(ctx context.Context, id string, available int) error {
	return r.update(id, func(s *showing.Showing) error {
		if !s.IsListed() || available < 0 || available > s.TotalSeats {
			return showing.ErrAvailabilityOutOfRange
		}
		return s.ApplyDelta(available - s.AvailableSeats)
	})
}

// update は保存中の上映に変更を適用する。変更関数がエラーを返した場合は何も変更しない
func (r *ShowingRepository) update(id string, fn func(*showing.Showing) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.showings[id]
	if !ok {
		return showing.ErrShowingNotFound
	}
	next := cloneShowing(s)
	if err := fn(next); err != nil {
		return err
	}
	r.store.showings[id] = next
	return nil
}

func (r *ShowingRepository) filter(match func(*showing.Showing) bool) []*showing.Showing {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*showing.Showing, 0)
	for _, s := range r.store.showings {
		if match(s) {
			out = append(out, cloneShowing(s))
		}
	}
	return out
}

func byStartAt(showings []*showing.Showing) []*showing.Showing {
	sort.Slice(showings, func(i, j int) bool {
		if !showings[i].StartAt.Equal(showings[j].StartAt) {
			return showings[i].StartAt.Before(showings[j].StartAt)
		}
		return showings[i].ID < showings[j].ID
	})
	return showings
}

var _ showing.Repository = (*ShowingRepository)(nil)
