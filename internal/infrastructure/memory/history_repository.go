package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/client"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/history"
)

// HistoryRepository は追記専用の履歴を保持する
type HistoryRepository struct{ store *Store }

func NewHistoryRepository(store *Store) *HistoryRepository {
	return &HistoryRepository{store: store}
}

func (r *HistoryRepository) Append(ctx context.Context, e *history.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.store.history = append(r.store.history, cloneEntry(e))
	return nil
}

func (r *HistoryRepository) ListByShowing(ctx context.Context, showingID string) ([]*history.Entry, error) {
	return newestFirst(r.filter(func(e *history.Entry) bool { return e.ShowingID == showingID })), nil
}

func (r *HistoryRepository) ListByClientEmail(ctx context.Context, email string) ([]*history.Entry, error) {
	email = client.NormalizeEmail(email)
	return newestFirst(r.filter(func(e *history.Entry) bool {
		return client.NormalizeEmail(e.ClientEmail) == email
	})), nil
}

func (r *HistoryRepository) ListByOperation(ctx context.Context, op history.Operation) ([]*history.Entry, error) {
	return newestFirst(r.filter(func(e *history.Entry) bool { return e.Operation == op })), nil
}

func (r *HistoryRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*history.Entry, error) {
	out := r.filter(func(e *history.Entry) bool {
		return !e.Timestamp.Before(from) && !e.Timestamp.After(to)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]*history.Entry, error) {
	out := newestFirst(r.filter(func(*history.Entry) bool { return true }))
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *HistoryRepository) CountByOperation(ctx context.Context) (map[history.Operation]int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	counts := make(map[history.Operation]int64)
	for _, e := range r.store.history {
		counts[e.Operation]++
	}
	return counts, nil
}

func (r *HistoryRepository) filter(match func(*history.Entry) bool) []*history.Entry {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*history.Entry, 0)
	for _, e := range r.store.history {
		if match(e) {
			out = append(out, cloneEntry(e))
		}
	}
	return out
}

// newestFirst は追記順を保ったまま新しい順に並べ替える
func newestFirst(entries []*history.Entry) []*history.Entry {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	return entries
}

var _ history.Repository = (*HistoryRepository)(nil)
