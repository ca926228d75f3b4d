package history

import (
	"context"
	"time"
)

// Repository は履歴リポジトリのインターフェース
// 追記と参照のみを提供し、更新・削除は行わない
type Repository interface {
	// Append は履歴を追記する
	Append(ctx context.Context, e *Entry) error

	// ListByShowing は上映の履歴を新しい順に取得する
	ListByShowing(ctx context.Context, showingID string) ([]*Entry, error)

	// ListByClientEmail は顧客メールアドレスの履歴を新しい順に取得する
	ListByClientEmail(ctx context.Context, email string) ([]*Entry, error)

	// ListByOperation は操作種別の履歴を新しい順に取得する
	ListByOperation(ctx context.Context, op Operation) ([]*Entry, error)

	// ListBetween は期間内の履歴を古い順に取得する
	ListBetween(ctx context.Context, from, to time.Time) ([]*Entry, error)

	// Recent は最新の履歴を limit 件取得する
	Recent(ctx context.Context, limit int) ([]*Entry, error)

	// CountByOperation は操作種別ごとの件数を取得する
	CountByOperation(ctx context.Context) (map[Operation]int64, error)
}
