package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/client"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/events"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
)

// ClientService は顧客の登録と状態を管理する
type ClientService struct {
	repo      client.Repository
	publisher EventPublisher
	log       *zap.Logger
}

func NewClientService(repo client.Repository, pub EventPublisher) *ClientService {
	return &ClientService{repo: repo, publisher: pub, log: logger.Named("client")}
}

type RegisterClientInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func (s *ClientService) Register(ctx context.Context, input RegisterClientInput) (*client.Client, error) {
	c := client.NewClient(input.FirstName, input.LastName, input.Email, input.Phone)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, c.Email, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("顧客を登録", zap.String("client_id", c.ID))
	s.publisher.Publish(ctx, events.ClientRegistered{
		Meta:     events.Now(),
		ClientID: c.ID,
		FullName: c.FullName(),
		Email:    c.Email,
	})
	return c, nil
}

// Update は顧客を部分更新する
func (s *ClientService) Update(ctx context.Context, id string, patch client.Patch) (*client.Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Apply(patch)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if patch.Email != nil {
		if err := s.ensureEmailFree(ctx, c.Email, c.ID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClientService) Activate(ctx context.Context, id string) (*client.Client, error) {
	return s.transition(ctx, id, (*client.Client).Activate)
}

// Deactivate は顧客を無効にする（論理削除）
func (s *ClientService) Deactivate(ctx context.Context, id string) (*client.Client, error) {
	return s.transition(ctx, id, (*client.Client).Deactivate)
}

func (s *ClientService) transition(ctx context.Context, id string, fn func(*client.Client) error) (*client.Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("顧客の状態を変更", zap.String("client_id", c.ID), zap.String("status", string(c.Status)))
	return c, nil
}

func (s *ClientService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil && existing.ID != selfID {
		return client.ErrEmailAlreadyRegistered
	}
	if err != nil && !errors.Is(err, client.ErrClientNotFound) {
		return err
	}
	return nil
}

func (s *ClientService) GetClient(ctx context.Context, id string) (*client.Client, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ClientService) GetClientByEmail(ctx context.Context, email string) (*client.Client, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *ClientService) ListClients(ctx context.Context, limit, offset int) ([]*client.Client, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *ClientService) ListActiveClients(ctx context.Context) ([]*client.Client, error) {
	return s.repo.ListByStatus(ctx, client.StatusActive)
}

func (s *ClientService) SearchClients(ctx context.Context, query string) ([]*client.Client, error) {
	return s.repo.SearchByName(ctx, query)
}
