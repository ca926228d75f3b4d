package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showing"
)

const showingColumns = `id, title, start_at, room, total_seats, available_seats, price, status, created_at, updated_at, version`

type showingRow struct {
	ID             string    `db:"id"`
	Title          string    `db:"title"`
	StartAt        time.Time `db:"start_at"`
	Room           string    `db:"room"`
	TotalSeats     int       `db:"total_seats"`
	AvailableSeats int       `db:"available_seats"`
	Price          float64   `db:"price"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	Version        int       `db:"version"`
}

func (r *showingRow) toEntity() *showing.Showing {
	return &showing.Showing{
		ID: r.ID, Title: r.Title, StartAt: r.StartAt, Room: r.Room,
		TotalSeats: r.TotalSeats, AvailableSeats: r.AvailableSeats, Price: r.Price,
		Status:    showing.Status(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

type ShowingRepository struct{ db *sqlx.DB }

func NewShowingRepository(db *sqlx.DB) *ShowingRepository { return &ShowingRepository{db: db} }

func (r *ShowingRepository) Create(ctx context.Context, s *showing.Showing) error {
	query := `INSERT INTO showings (title, start_at, room, total_seats, available_seats, price, status, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		s.Title, s.StartAt, s.Room, s.TotalSeats, s.AvailableSeats, s.Price, string(s.Status),
		s.CreatedAt, s.UpdatedAt, s.Version,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("上映作成に失敗: %w", err)
	}
	return nil
}

func (r *ShowingRepository) GetByID(ctx context.Context, id string) (*showing.Showing, error) {
	if !isUUID(id) {
		return nil, showing.ErrShowingNotFound
	}
	query := `SELECT ` + showingColumns + ` FROM showings WHERE id = $1`
	var row showingRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, showing.ErrShowingNotFound
		}
		return nil, fmt.Errorf("上映取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ShowingRepository) List(ctx context.Context, limit, offset int) ([]*showing.Showing, error) {
	query := `SELECT ` + showingColumns + ` FROM showings ORDER BY created_at, id LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *ShowingRepository) ListByStatus(ctx context.Context, status showing.Status) ([]*showing.Showing, error) {
	query := `SELECT ` + showingColumns + ` FROM showings WHERE status = $1 ORDER BY start_at, id`
	return r.list(ctx, query, string(status))
}

func (r *ShowingRepository) SearchByTitle(ctx context.Context, q string) ([]*showing.Showing, error) {
	query := `SELECT ` + showingColumns + ` FROM showings WHERE title ILIKE '%' || $1 || '%' ESCAPE '\' ORDER BY start_at, id`
	return r.list(ctx, query, escapeLike(q))
}

func (r *ShowingRepository) ListWithAvailability(ctx context.Context) ([]*showing.Showing, error) {
	query := `SELECT ` + showingColumns + ` FROM showings WHERE status = 'LISTED' AND available_seats > 0 ORDER BY start_at, id`
	return r.list(ctx, query)
}

func (r *ShowingRepository) list(ctx context.Context, query string, args ...interface{}) ([]*showing.Showing, error) {
	var rows []showingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("上映一覧取得に失敗: %w", err)
	}
	showings := make([]*showing.Showing, len(rows))
	for i := range rows {
		showings[i] = rows[i].toEntity()
	}
	return showings, nil
}

func (r *ShowingRepository) Cancel(ctx context.Context, id string) error {
	query := `UPDATE showings SET status = 'CANCELLED', available_seats = 0, updated_at = NOW(), version = version + 1 WHERE id = $1 AND status = 'LISTED'`
	return r.conditionalUpdate(ctx, id, showing.ErrShowingAlreadyCancelled, query, id)
}

func (r *ShowingRepository) AdjustAvailable(ctx context.Context, id string, delta int) error {
	query := `UPDATE showings SET available_seats = available_seats + $2, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND status = 'LISTED' AND available_seats + $2 BETWEEN 0 AND total_seats`
	return r.conditionalUpdate(ctx, id, showing.ErrAvailabilityOutOfRange, query, id, delta)
}

func (r *ShowingRepository) SetAvailable(ctx context.Context, id string, available int) error {
	query := `UPDATE showings SET available_seats = $2, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND status = 'LISTED' AND $2 BETWEEN 0 AND total_seats`
	return r.conditionalUpdate(ctx, id, showing.ErrAvailabilityOutOfRange, query, id, available)
}

// conditionalUpdate は条件付きUPDATEを実行し、0件更新なら
// 上映が存在しない場合は ErrShowingNotFound、存在する場合は onMiss を返す
func (r *ShowingRepository) conditionalUpdate(ctx context.Context, id string, onMiss error, query string, args ...interface{}) error {
	if !isUUID(id) {
		return showing.ErrShowingNotFound
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("上映更新に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("上映更新に失敗: %w", err)
	}
	if rows > 0 {
		return nil
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM showings WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("上映取得に失敗: %w", err)
	}
	if !exists {
		return showing.ErrShowingNotFound
	}
	return onMiss
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ showing.Repository = (*ShowingRepository)(nil)
