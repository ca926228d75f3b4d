package client

import "github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/apperr"

// Client ドメインのエラー定義
var (
	ErrClientNotFound         = apperr.NotFound("顧客が見つかりません")
	ErrEmailAlreadyRegistered = apperr.Conflict("メールアドレスは既に登録されています")
	ErrClientAlreadyActive    = apperr.Conflict("顧客は既に有効です")
	ErrClientAlreadyInactive  = apperr.Conflict("顧客は既に無効です")
	ErrNameRequired           = apperr.InvalidArgument("氏名は必須です")
	ErrEmailRequired          = apperr.InvalidArgument("メールアドレスは必須です")
	ErrInvalidEmail           = apperr.InvalidArgument("メールアドレスの形式が不正です")
)
