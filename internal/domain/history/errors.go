package history

import "github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/apperr"

// History ドメインのエラー定義
var (
	ErrUnknownOperation = apperr.InvalidArgument("不明な操作種別です")
	ErrInvalidRange     = apperr.InvalidArgument("期間の開始は終了より前である必要があります")
)
