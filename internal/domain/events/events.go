// Package events は各ドメインが発行するドメインイベントを定義する
//
// イベントは不変の値として扱い、発行後に変更しない。
// イベント名は RabbitMQ のルーティングキーとしても使用する。
package events

import "time"

// イベント名
const (
	NameSeatReserved        = "seat.reserved"
	NameSeatCancelled       = "seat.cancelled"
	NameSeatsGenerated      = "seat.generated"
	NameReservationsExpired = "seat.reservations_expired"
	NameShowingCreated      = "showing.created"
	NameShowingCancelled    = "showing.cancelled"
	NameClientRegistered    = "client.registered"
)

// Event はドメインイベントを表す
// 実装はこのパッケージ内の型に限られる
type Event interface {
	EventName() string
	OccurredAt() time.Time
	sealed()
}

// Meta はイベント共通の属性
type Meta struct {
	At time.Time `json:"occurred_at"`
}

// OccurredAt はイベントの発生日時を返す
func (m Meta) OccurredAt() time.Time { return m.At }

func (Meta) sealed() {}

// Now は現在時刻の Meta を返す
func Now() Meta { return Meta{At: time.Now()} }

// SeatReserved は座席が予約されたことを表す
type SeatReserved struct {
	Meta
	SeatID    string `json:"seat_id"`
	ShowingID string `json:"showing_id"`
	SeatLabel string `json:"seat_label"`
	Occupant  string `json:"occupant"`
}

func (SeatReserved) EventName() string { return NameSeatReserved }

// SeatCancelled は座席の予約が取り消され空席に戻ったことを表す
type SeatCancelled struct {
	Meta
	SeatID           string `json:"seat_id"`
	ShowingID        string `json:"showing_id"`
	SeatLabel        string `json:"seat_label"`
	PreviousOccupant string `json:"previous_occupant"`
}

func (SeatCancelled) EventName() string { return NameSeatCancelled }

// SeatsGenerated は上映の座席が生成されたことを表す
type SeatsGenerated struct {
	Meta
	ShowingID string `json:"showing_id"`
	Requested int    `json:"requested"`
	Created   int    `json:"created"`
}

func (SeatsGenerated) EventName() string { return NameSeatsGenerated }

// ReservationsExpired は開始済み上映の残存予約がキャンセルされたことを表す
type ReservationsExpired struct {
	Meta
	ShowingID      string `json:"showing_id"`
	SeatsCancelled int    `json:"seats_cancelled"`
	RunID          string `json:"run_id"`
}

func (ReservationsExpired) EventName() string { return NameReservationsExpired }

// ShowingCreated は上映が登録されたことを表す
type ShowingCreated struct {
	Meta
	ShowingID  string    `json:"showing_id"`
	Title      string    `json:"title"`
	Room       string    `json:"room"`
	StartAt    time.Time `json:"start_at"`
	TotalSeats int       `json:"total_seats"`
	Price      float64   `json:"price"`
}

func (ShowingCreated) EventName() string { return NameShowingCreated }

// ShowingCancelled は上映がキャンセルされたことを表す
type ShowingCancelled struct {
	Meta
	ShowingID string `json:"showing_id"`
	Title     string `json:"title"`
	Room      string `json:"room"`
}

func (ShowingCancelled) EventName() string { return NameShowingCancelled }

// ClientRegistered は顧客が登録されたことを表す
type ClientRegistered struct {
	Meta
	ClientID string `json:"client_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func (ClientRegistered) EventName() string { return NameClientRegistered }

// ShowingIDOf はイベントが対象とする上映IDを返す。上映に紐付かない場合は空文字
func ShowingIDOf(e Event) string {
	switch ev := e.(type) {
	case SeatReserved:
		return ev.ShowingID
	case SeatCancelled:
		return ev.ShowingID
	case SeatsGenerated:
		return ev.ShowingID
	case ReservationsExpired:
		return ev.ShowingID
	case ShowingCreated:
		return ev.ShowingID
	case ShowingCancelled:
		return ev.ShowingID
	}
	return ""
}
