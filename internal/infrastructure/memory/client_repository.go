package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/client"
)

type ClientRepository struct{ store *Store }

func NewClientRepository(store *Store) *ClientRepository {
	return &ClientRepository{store: store}
}

func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.emailTaken(c.Email, "") {
		return client.ErrEmailAlreadyRegistered
	}
	c.ID = uuid.New().String()
	r.store.clients[c.ID] = cloneClient(c)
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*client.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.clients[id]
	if !ok {
		return nil, client.ErrClientNotFound
	}
	return cloneClient(c), nil
}

func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (*client.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	email = client.NormalizeEmail(email)
	for _, c := range r.store.clients {
		if c.Email == email {
			return cloneClient(c), nil
		}
	}
	return nil, client.ErrClientNotFound
}

func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]*client.Client, error) {
	all := r.filter(func(*client.Client) bool { return true })
	sortByRegistration(all)
	return page(all, limit, offset), nil
}

func (r *ClientRepository) ListByStatus(ctx context.Context, status client.Status) ([]*client.Client, error) {
	out := r.filter(func(c *client.Client) bool { return c.Status == status })
	sortByRegistration(out)
	return out, nil
}

func (r *ClientRepository) SearchByName(ctx context.Context, query string) ([]*client.Client, error) {
	q := strings.ToLower(query)
	out := r.filter(func(c *client.Client) bool {
		return strings.Contains(strings.ToLower(c.FirstName+" "+c.LastName), q)
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.clients[c.ID]; !ok {
		return client.ErrClientNotFound
	}
	if r.emailTaken(c.Email, c.ID) {
		return client.ErrEmailAlreadyRegistered
	}
	r.store.clients[c.ID] = cloneClient(c)
	return nil
}

// emailTaken は Store のロックを保持した状態で呼び出す
func (r *ClientRepository) emailTaken(email, exceptID string) bool {
	for id, c := range r.store.clients {
		if id != exceptID && c.Email == email {
			return true
		}
	}
	return false
}

func (r *ClientRepository) filter(match func(*client.Client) bool) []*client.Client {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*client.Client, 0)
	for _, c := range r.store.clients {
		if match(c) {
			out = append(out, cloneClient(c))
		}
	}
	return out
}

func sortByRegistration(clients []*client.Client) {
	sort.Slice(clients, func(i, j int) bool {
		if !clients[i].RegisteredAt.Equal(clients[j].RegisteredAt) {
			return clients[i].RegisteredAt.Before(clients[j].RegisteredAt)
		}
		return clients[i].ID < clients[j].ID
	})
}

var _ client.Repository = (*ClientRepository)(nil)
