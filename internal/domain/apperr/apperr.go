// Package apperr はドメイン層のエラー分類を定義する
//
// 各ドメインパッケージのセンチネルエラーはここで定義した分類のいずれかに属する。
// 呼び出し側は errors.Is で個別のエラーと分類の両方を判定できる。
package apperr

import "errors"

// エラー分類
var (
	// ErrNotFound は対象のレコードが存在しないことを表す
	ErrNotFound = errors.New("not found")
	// ErrConflict は対象が要求された状態遷移を許さない状態にあることを表す
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument は入力値が不正であることを表す
	ErrInvalidArgument = errors.New("invalid argument")
)

type domainError struct {
	kind error
	msg  string
}

func (e *domainError) Error() string { return e.msg }

func (e *domainError) Unwrap() error { return e.kind }

// NotFound は ErrNotFound に分類されるエラーを作成する
func NotFound(msg string) error {
	return &domainError{kind: ErrNotFound, msg: msg}
}

// Conflict は ErrConflict に分類されるエラーを作成する
func Conflict(msg string) error {
	return &domainError{kind: ErrConflict, msg: msg}
}

// InvalidArgument は ErrInvalidArgument に分類されるエラーを作成する
func InvalidArgument(msg string) error {
	return &domainError{kind: ErrInvalidArgument, msg: msg}
}

// KindOf はエラーの分類を返す。分類できない場合は nil
func KindOf(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrConflict):
		return ErrConflict
	case errors.Is(err, ErrInvalidArgument):
		return ErrInvalidArgument
	}
	return nil
}
