package seat

import (
	"context"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
)

// Repository は座席リポジトリのインターフェース
type Repository interface {
	// CreateBulk は座席を一括作成する
	// 同じ上映に同じラベルの座席が既にあればスキップし、新規作成した件数を返す
	CreateBulk(ctx context.Context, seats []*Seat) (int, error)

	// GetByID はIDから座席を取得する
	GetByID(ctx context.Context, id string) (*Seat, error)

	// GetByShowingAndLabel は上映IDと座席ラベルから座席を取得する
	GetByShowingAndLabel(ctx context.Context, showingID, label string) (*Seat, error)

	// ListByShowing は上映の座席一覧を行・列の順で取得する
	ListByShowing(ctx context.Context, showingID string) ([]*Seat, error)

	// ListFreeByShowing は上映の空席一覧を取得する
	ListFreeByShowing(ctx context.Context, showingID string) ([]*Seat, error)

	// CountByShowing は上映の座席数を取得する
	CountByShowing(ctx context.Context, showingID string) (int, error)

	// CountFreeByShowing は上映の空席数を取得する
	CountFreeByShowing(ctx context.Context, showingID string) (int, error)

	// CountReservedByShowing は上映の予約済み座席数を取得する
	CountReservedByShowing(ctx context.Context, showingID string) (int, error)

	// Reserve は空席の場合に限り座席を予約状態に更新する
	// 更新できなかった場合は ErrSeatNotAvailable を返す
	Reserve(ctx context.Context, id, occupant string) error

	// Release は予約済みの場合に限り座席を空席に戻す
	// 更新できなかった場合は ErrSeatNotReserved を返す
	Release(ctx context.Context, id string) error

	// CancelByShowing は上映のキャンセル済みでない座席をすべてキャンセル状態にし、件数を返す
	CancelByShowing(ctx context.Context, showingID string) (int, error)

	// ExpireReserved は上映の予約済み座席をキャンセル状態にし、件数を返す（トランザクション必須）
	ExpireReserved(ctx context.Context, tx transaction.Tx, showingID string) (int, error)
}
