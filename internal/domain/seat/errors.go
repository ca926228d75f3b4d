package seat

import "github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/apperr"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound      = apperr.NotFound("座席が見つかりません")
	ErrSeatNotAvailable  = apperr.Conflict("座席は予約できません")
	ErrSeatNotReserved   = apperr.Conflict("座席は予約されていません")
	ErrShowingIDRequired = apperr.InvalidArgument("上映IDは必須です")
	ErrLabelRequired     = apperr.InvalidArgument("座席ラベルは必須です")
	ErrOccupantRequired  = apperr.InvalidArgument("予約者は必須です")
	ErrInvalidSeatCount  = apperr.InvalidArgument("座席数は1以上である必要があります")
	ErrSeatCountExceeded = apperr.InvalidArgument("座席数が上映の総座席数を超えています")
	ErrInvalidPosition   = apperr.InvalidArgument("座席の位置が不正です")
	ErrOccupantMismatch  = apperr.InvalidArgument("予約者は予約済みの座席にのみ設定できます")
)
