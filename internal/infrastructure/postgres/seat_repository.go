package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
)

const seatColumns = `id, showing_id, label, seat_row, seat_col, status, occupant, created_at, updated_at, version`

type seatRow struct {
	ID        string    `db:"id"`
	ShowingID string    `db:"showing_id"`
	Label     string    `db:"label"`
	Row       int       `db:"seat_row"`
	Column    int       `db:"seat_col"`
	Status    string    `db:"status"`
	Occupant  *string   `db:"occupant"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Version   int       `db:"version"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID: r.ID, ShowingID: r.ShowingID, Label: r.Label,
		Row: r.Row, Column: r.Column,
		Status: seat.Status(r.Status), Occupant: r.Occupant,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) CreateBulk(ctx context.Context, seats []*seat.Seat) (int, error) {
	if len(seats) == 0 {
		return 0, nil
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 1000
	created := 0
	for i := 0; i < len(seats); i += batchSize {
		end := i + batchSize
		if end > len(seats) {
			end = len(seats)
		}
		n, err := r.createBulkBatch(ctx, seats[i:end])
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

// createBulkBatch はバッチ単位でマルチバリューINSERTを実行
// 既存ラベルは ON CONFLICT でスキップし、作成した座席にだけIDを設定する
func (r *SeatRepository) createBulkBatch(ctx context.Context, seats []*seat.Seat) (int, error) {
	const cols = 8
	query := `INSERT INTO seats (showing_id, label, seat_row, seat_col, status, created_at, updated_at, version) VALUES `
	args := make([]interface{}, 0, len(seats)*cols)
	placeholders := make([]string, 0, len(seats))
	byLabel := make(map[string]*seat.Seat, len(seats))

	for i, s := range seats {
		base := i * cols
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, s.ShowingID, s.Label, s.Row, s.Column, string(s.Status), s.CreatedAt, s.UpdatedAt, s.Version)
		byLabel[s.ShowingID+"/"+s.Label] = s
	}

	query += strings.Join(placeholders, ", ")
	query += ` ON CONFLICT ON CONSTRAINT seats_showing_label_unique DO NOTHING RETURNING id, showing_id, label`

	var inserted []struct {
		ID        string `db:"id"`
		ShowingID string `db:"showing_id"`
		Label     string `db:"label"`
	}
	if err := r.db.SelectContext(ctx, &inserted, query, args...); err != nil {
		return 0, fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	for _, row := range inserted {
		if s, ok := byLabel[row.ShowingID+"/"+row.Label]; ok {
			s.ID = row.ID
		}
	}
	return len(inserted), nil
}

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	if !isUUID(id) {
		return nil, seat.ErrSeatNotFound
	}
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1`
	var row seatRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) GetByShowingAndLabel(ctx context.Context, showingID, label string) (*seat.Seat, error) {
	if !isUUID(showingID) {
		return nil, seat.ErrSeatNotFound
	}
	query := `SELECT ` + seatColumns + ` FROM seats WHERE showing_id = $1 AND label = $2`
	var row seatRow
	if err := r.db.GetContext(ctx, &row, query, showingID, strings.ToUpper(label)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) ListByShowing(ctx context.Context, showingID string) ([]*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE showing_id = $1 ORDER BY seat_row, seat_col`
	return r.list(ctx, query, showingID)
}

func (r *SeatRepository) ListFreeByShowing(ctx context.Context, showingID string) ([]*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE showing_id = $1 AND status = 'FREE' ORDER BY seat_row, seat_col`
	return r.list(ctx, query, showingID)
}

func (r *SeatRepository) list(ctx context.Context, query string, args ...interface{}) ([]*seat.Seat, error) {
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i := range rows {
		seats[i] = rows[i].toEntity()
	}
	return seats, nil
}

func (r *SeatRepository) CountByShowing(ctx context.Context, showingID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM seats WHERE showing_id = $1`, showingID)
}

func (r *SeatRepository) CountFreeByShowing(ctx context.Context, showingID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM seats WHERE showing_id = $1 AND status = 'FREE'`, showingID)
}

func (r *SeatRepository) CountReservedByShowing(ctx context.Context, showingID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM seats WHERE showing_id = $1 AND status = 'RESERVED'`, showingID)
}

func (r *SeatRepository) count(ctx context.Context, query, showingID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, query, showingID); err != nil {
		return 0, fmt.Errorf("座席数取得に失敗: %w", err)
	}
	return count, nil
}

// Reserve は条件付きUPDATEで予約する。読み取りと書き込みの間に他のリクエストが
// 予約した場合は0件更新となり ErrSeatNotAvailable を返す
func (r *SeatRepository) Reserve(ctx context.Context, id, occupant string) error {
	query := `UPDATE seats SET status = 'RESERVED', occupant = $2, updated_at = NOW(), version = version + 1 WHERE id = $1 AND status = 'FREE'`
	result, err := r.db.ExecContext(ctx, query, id, occupant)
	if err != nil {
		return fmt.Errorf("座席予約に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("座席予約に失敗: %w", err)
	}
	if rows == 0 {
		return seat.ErrSeatNotAvailable
	}
	return nil
}

func (r *SeatRepository) Release(ctx context.Context, id string) error {
	query := `UPDATE seats SET status = 'FREE', occupant = NULL, updated_at = NOW(), version = version + 1 WHERE id = $1 AND status = 'RESERVED'`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("座席予約取消に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("座席予約取消に失敗: %w", err)
	}
	if rows == 0 {
		return seat.ErrSeatNotReserved
	}
	return nil
}

func (r *SeatRepository) CancelByShowing(ctx context.Context, showingID string) (int, error) {
	query := `UPDATE seats SET status = 'CANCELLED', occupant = NULL, updated_at = NOW(), version = version + 1 WHERE showing_id = $1 AND status <> 'CANCELLED'`
	result, err := r.db.ExecContext(ctx, query, showingID)
	if err != nil {
		return 0, fmt.Errorf("座席一括キャンセルに失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("座席一括キャンセルに失敗: %w", err)
	}
	return int(rows), nil
}

func (r *SeatRepository) ExpireReserved(ctx context.Context, tx transaction.Tx, showingID string) (int, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return 0, errors.New("トランザクションが必要です")
	}
	query := `UPDATE seats SET status = 'CANCELLED', occupant = NULL, updated_at = NOW(), version = version + 1 WHERE showing_id = $1 AND status = 'RESERVED'`
	result, err := sqlxTx.ExecContext(ctx, query, showingID)
	if err != nil {
		return 0, fmt.Errorf("期限切れ予約のキャンセルに失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("期限切れ予約のキャンセルに失敗: %w", err)
	}
	return int(rows), nil
}

var _ seat.Repository = (*SeatRepository)(nil)
