package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
)

var (
	ErrTxDone           = errors.New("トランザクションは終了しています")
	ErrSavepointUnknown = errors.New("セーブポイントが存在しません")
)

// Tx は変更の取り消し処理を記録するトランザクション
// ロールバック時は記録した逆順に取り消す
type Tx struct {
	store      *Store
	undo       []func()
	savepoints map[string]int
	done       bool
}

// record は Store のロックを保持した状態で呼び出す
func (t *Tx) record(fn func()) {
	t.undo = append(t.undo, fn)
}

func (t *Tx) Commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.undo = nil
	return nil
}

func (t *Tx) Rollback() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.rollbackTo(0)
	t.done = true
	return nil
}

func (t *Tx) Savepoint(ctx context.Context, name string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.savepoints[name] = len(t.undo)
	return nil
}

func (t *Tx) RollbackTo(ctx context.Context, name string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	mark, ok := t.savepoints[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSavepointUnknown, name)
	}
	t.rollbackTo(mark)
	return nil
}

func (t *Tx) ReleaseSavepoint(ctx context.Context, name string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	if _, ok := t.savepoints[name]; !ok {
		return fmt.Errorf("%w: %s", ErrSavepointUnknown, name)
	}
	delete(t.savepoints, name)
	return nil
}

func (t *Tx) rollbackTo(mark int) {
	for i := len(t.undo) - 1; i >= mark; i-- {
		t.undo[i]()
	}
	t.undo = t.undo[:mark]
	for name, m := range t.savepoints {
		if m > mark {
			delete(t.savepoints, name)
		}
	}
}

// TxManager はメモリストア用のトランザクションマネージャー
type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	return &Tx{store: m.store, savepoints: make(map[string]int)}, nil
}

var _ transaction.Manager = (*TxManager)(nil)
