package transaction

import "context"

// Tx はトランザクションを表すインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Tx interface {
	// Commit はトランザクションをコミットする
	Commit() error
	// Rollback はトランザクションをロールバックする
	Rollback() error
	// Savepoint はセーブポイントを作成する
	Savepoint(ctx context.Context, name string) error
	// RollbackTo はセーブポイントまでロールバックする
	RollbackTo(ctx context.Context, name string) error
	// ReleaseSavepoint はセーブポイントを破棄する
	ReleaseSavepoint(ctx context.Context, name string) error
}

// Manager はトランザクションを管理するインターフェース
type Manager interface {
	// Begin は新しいトランザクションを開始する
	Begin(ctx context.Context) (Tx, error)
}
