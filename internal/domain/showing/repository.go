package showing

import "context"

// Repository は上映リポジトリのインターフェース
type Repository interface {
	// Create は新しい上映を作成する
	Create(ctx context.Context, s *Showing) error

	// GetByID はIDから上映を取得する
	GetByID(ctx context.Context, id string) (*Showing, error)

	// List は上映一覧を作成順に取得する
	List(ctx context.Context, limit, offset int) ([]*Showing, error)

	// ListByStatus は指定状態の上映一覧を開始日時順に取得する
	ListByStatus(ctx context.Context, status Status) ([]*Showing, error)

	// SearchByTitle は作品名の部分一致（大文字小文字を区別しない）で上映を検索する
	SearchByTitle(ctx context.Context, query string) ([]*Showing, error)

	// ListWithAvailability は空席のある上映中の上映一覧を取得する
	ListWithAvailability(ctx context.Context) ([]*Showing, error)

	// Cancel は上映中の場合に限り上映をキャンセルし空席数を0にする
	// 更新できなかった場合は ErrShowingAlreadyCancelled を返す
	Cancel(ctx context.Context, id string) error

	// AdjustAvailable は空席数を delta だけ増減する
	// 結果が 0..総座席数 に収まらない場合、または上映中でない場合は ErrAvailabilityOutOfRange を返す
	AdjustAvailable(ctx context.Context, id string, delta int) error

	// SetAvailable は空席数を上書きする（上映中の場合のみ）
	SetAvailable(ctx context.Context, id string, available int) error
}
