package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/client"
)

const clientColumns = `id, first_name, last_name, email, phone, status, registered_at, updated_at`

type clientRow struct {
	ID           string    `db:"id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	Status       string    `db:"status"`
	RegisteredAt time.Time `db:"registered_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *clientRow) toEntity() *client.Client {
	return &client.Client{
		ID: r.ID, FirstName: r.FirstName, LastName: r.LastName,
		Email: r.Email, Phone: r.Phone, Status: client.Status(r.Status),
		RegisteredAt: r.RegisteredAt, UpdatedAt: r.UpdatedAt,
	}
}

type ClientRepository struct{ db *sqlx.DB }

func NewClientRepository(db *sqlx.DB) *ClientRepository { return &ClientRepository{db: db} }

func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	query := `INSERT INTO clients (first_name, last_name, email, phone, status, registered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		c.FirstName, c.LastName, c.Email, c.Phone, string(c.Status), c.RegisteredAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err, "clients_email_unique") {
			return client.ErrEmailAlreadyRegistered
		}
		return fmt.Errorf("顧客作成に失敗: %w", err)
	}
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*client.Client, error) {
	if !isUUID(id) {
		return nil, client.ErrClientNotFound
	}
	return r.get(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
}

func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (*client.Client, error) {
	return r.get(ctx, `SELECT `+clientColumns+` FROM clients WHERE email = $1`, client.NormalizeEmail(email))
}

func (r *ClientRepository) get(ctx context.Context, query, arg string) (*client.Client, error) {
	var row clientRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, client.ErrClientNotFound
		}
		return nil, fmt.Errorf("顧客取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]*client.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY registered_at, id LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *ClientRepository) ListByStatus(ctx context.Context, status client.Status) ([]*client.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE status = $1 ORDER BY registered_at, id`
	return r.list(ctx, query, string(status))
}

func (r *ClientRepository) SearchByName(ctx context.Context, q string) ([]*client.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients
		WHERE (first_name || ' ' || last_name) ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY first_name, last_name, id`
	return r.list(ctx, query, escapeLike(q))
}

func (r *ClientRepository) list(ctx context.Context, query string, args ...interface{}) ([]*client.Client, error) {
	var rows []clientRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("顧客一覧取得に失敗: %w", err)
	}
	clients := make([]*client.Client, len(rows))
	for i := range rows {
		clients[i] = rows[i].toEntity()
	}
	return clients, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	query := `UPDATE clients SET first_name = $2, last_name = $3, email = $4, phone = $5, status = $6, updated_at = $7 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, c.ID, c.FirstName, c.LastName, c.Email, c.Phone, string(c.Status), c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "clients_email_unique") {
			return client.ErrEmailAlreadyRegistered
		}
		return fmt.Errorf("顧客更新に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("顧客更新に失敗: %w", err)
	}
	if rows == 0 {
		return client.ErrClientNotFound
	}
	return nil
}

var _ client.Repository = (*ClientRepository)(nil)
