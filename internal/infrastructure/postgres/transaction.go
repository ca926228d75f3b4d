package postgres

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
)

var savepointName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// TxWrapper は sqlx.Tx を transaction.Tx インターフェースでラップする
type TxWrapper struct {
	*sqlx.Tx
}

// Commit はトランザクションをコミットする
func (t *TxWrapper) Commit() error {
	return t.Tx.Commit()
}

// Rollback はトランザクションをロールバックする
func (t *TxWrapper) Rollback() error {
	return t.Tx.Rollback()
}

// Savepoint はセーブポイントを作成する
func (t *TxWrapper) Savepoint(ctx context.Context, name string) error {
	return t.execSavepoint(ctx, "SAVEPOINT", name)
}

// RollbackTo はセーブポイントまでロールバックする
func (t *TxWrapper) RollbackTo(ctx context.Context, name string) error {
	return t.execSavepoint(ctx, "ROLLBACK TO SAVEPOINT", name)
}

// ReleaseSavepoint はセーブポイントを破棄する
func (t *TxWrapper) ReleaseSavepoint(ctx context.Context, name string) error {
	return t.execSavepoint(ctx, "RELEASE SAVEPOINT", name)
}

// SAVEPOINT は識別子をバインドできないため名前を検証してから埋め込む
func (t *TxWrapper) execSavepoint(ctx context.Context, stmt, name string) error {
	if !savepointName.MatchString(name) {
		return fmt.Errorf("不正なセーブポイント名: %q", name)
	}
	if _, err := t.Tx.ExecContext(ctx, stmt+" "+name); err != nil {
		return fmt.Errorf("%s に失敗: %w", stmt, err)
	}
	return nil
}

// TxManager は sqlx.DB を使用したトランザクションマネージャー
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager は新しい TxManager を作成する
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin は新しいトランザクションを開始する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &TxWrapper{Tx: tx}, nil
}

// UnwrapTx は transaction.Tx から sqlx.Tx を取り出す
// リポジトリ実装で使用する
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if wrapper, ok := tx.(*TxWrapper); ok {
		return wrapper.Tx
	}
	return nil
}

var _ transaction.Manager = (*TxManager)(nil)
