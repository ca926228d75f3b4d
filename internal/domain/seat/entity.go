package seat

import "time"

// Status は座席の状態を表す
type Status string

const (
	StatusFree      Status = "FREE"
	StatusReserved  Status = "RESERVED"
	StatusCancelled Status = "CANCELLED"
)

// Seat は上映ごとの座席エンティティを表す
type Seat struct {
	ID        string
	ShowingID string
	Label     string // 行文字 + 列番号 (例: "A1")
	Row       int    // 1始まり
	Column    int    // 1始まり
	Status    Status
	Occupant  *string // RESERVED のときだけ非nil
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int // 楽観的ロック用
}

// NewSeat は空席状態の座席を作成する
func NewSeat(showingID string, row, column int) *Seat {
	now := time.Now()
	return &Seat{
		ShowingID: showingID,
		Label:     Label(row, column),
		Row:       row,
		Column:    column,
		Status:    StatusFree,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   0,
	}
}

// IsFree は座席が予約可能かを返す
func (s *Seat) IsFree() bool {
	return s.Status == StatusFree
}

// IsReserved は座席が予約済みかを返す
func (s *Seat) IsReserved() bool {
	return s.Status == StatusReserved
}

// RowName は座席の行文字を返す
func (s *Seat) RowName() string {
	return RowName(s.Row)
}

// Reserve は座席を予約状態にする
func (s *Seat) Reserve(occupant string) error {
	if occupant == "" {
		return ErrOccupantRequired
	}
	if s.Status != StatusFree {
		return ErrSeatNotAvailable
	}
	s.Status = StatusReserved
	s.Occupant = &occupant
	s.touch()
	return nil
}

// Release は予約を取り消して空席に戻す
func (s *Seat) Release() error {
	if s.Status != StatusReserved {
		return ErrSeatNotReserved
	}
	s.Status = StatusFree
	s.Occupant = nil
	s.touch()
	return nil
}

// Void は上映中止に伴い座席をキャンセル状態にする
// 既にキャンセル済みなら false を返す
func (s *Seat) Void() bool {
	if s.Status == StatusCancelled {
		return false
	}
	s.Status = StatusCancelled
	s.Occupant = nil
	s.touch()
	return true
}

// Expire は上映開始後も残った予約をキャンセル状態にする
func (s *Seat) Expire() error {
	if s.Status != StatusReserved {
		return ErrSeatNotReserved
	}
	s.Status = StatusCancelled
	s.Occupant = nil
	s.touch()
	return nil
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.ShowingID == "" {
		return ErrShowingIDRequired
	}
	if s.Label == "" {
		return ErrLabelRequired
	}
	if s.Row < 1 || s.Column < 1 || s.Column > SeatsPerRow {
		return ErrInvalidPosition
	}
	if (s.Status == StatusReserved) != (s.Occupant != nil) {
		return ErrOccupantMismatch
	}
	return nil
}

func (s *Seat) touch() {
	s.UpdatedAt = time.Now()
	s.Version++
}
