// Package memory はプロセス内メモリに保持するリポジトリ実装を提供する
//
// STORAGE_DRIVER=memory のときと、アプリケーション層のテストで使用する。
// 全てのリポジトリは一つの Store を共有し、Store のロックで直列化される。
package memory

import (
	"sync"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/client"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/history"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showing"
)

// Store はリポジトリが共有するデータ
type Store struct {
	mu       sync.Mutex
	showings map[string]*showing.Showing
	seats    map[string]*seat.Seat
	clients  map[string]*client.Client
	history  []*history.Entry
}

func NewStore() *Store {
	return &Store{
		showings: make(map[string]*showing.Showing),
		seats:    make(map[string]*seat.Seat),
		clients:  make(map[string]*client.Client),
	}
}

func cloneSeat(s *seat.Seat) *seat.Seat {
	c := *s
	if s.Occupant != nil {
		occupant := *s.Occupant
		c.Occupant = &occupant
	}
	return &c
}

func cloneShowing(s *showing.Showing) *showing.Showing {
	c := *s
	return &c
}

func cloneClient(c *client.Client) *client.Client {
	cc := *c
	return &cc
}

func cloneEntry(e *history.Entry) *history.Entry {
	c := *e
	c.Details = make(map[string]any, len(e.Details))
	for k, v := range e.Details {
		c.Details[k] = v
	}
	return &c
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
