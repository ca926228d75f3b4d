package showing

import "github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/apperr"

// Showing ドメインのエラー定義
var (
	ErrShowingNotFound         = apperr.NotFound("上映が見つかりません")
	ErrShowingAlreadyCancelled = apperr.Conflict("上映は既にキャンセルされています")
	ErrAvailabilityOutOfRange  = apperr.Conflict("空席数が範囲外になります")
	ErrTitleRequired           = apperr.InvalidArgument("作品名は必須です")
	ErrRoomRequired            = apperr.InvalidArgument("スクリーンは必須です")
	ErrStartAtRequired         = apperr.InvalidArgument("開始日時は必須です")
	ErrInvalidTotalSeats       = apperr.InvalidArgument("総座席数は1以上である必要があります")
	ErrInvalidPrice            = apperr.InvalidArgument("料金は0以上である必要があります")
)
