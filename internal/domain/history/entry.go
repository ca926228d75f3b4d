package history

import (
	"fmt"
	"time"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/client"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/events"
)

// Operation は履歴の操作種別を表す
type Operation string

const (
	OperationShowingCreated      Operation = "SHOWING_CREATED"
	OperationShowingCancelled    Operation = "SHOWING_CANCELLED"
	OperationSeatReserved        Operation = "SEAT_RESERVED"
	OperationSeatCancelled       Operation = "SEAT_CANCELLED"
	OperationSeatsGenerated      Operation = "SEATS_GENERATED"
	OperationReservationsExpired Operation = "RESERVATIONS_EXPIRED"
	OperationClientRegistered    Operation = "CLIENT_REGISTERED"
)

// Operations は全ての操作種別
var Operations = []Operation{
	OperationShowingCreated,
	OperationShowingCancelled,
	OperationSeatReserved,
	OperationSeatCancelled,
	OperationSeatsGenerated,
	OperationReservationsExpired,
	OperationClientRegistered,
}

// ParseOperation は文字列を操作種別に変換する
func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == s {
			return op, nil
		}
	}
	return "", ErrUnknownOperation
}

// Entry は追記専用の履歴エントリを表す
type Entry struct {
	ID          string
	Operation   Operation
	Timestamp   time.Time
	ShowingID   string
	SeatID      string
	ClientID    string
	ClientEmail string
	Description string
	Details     map[string]any
}

// Stats は操作種別ごとの件数を表す
type Stats struct {
	Total       int64
	ByOperation map[Operation]int64
}

// FromEvent はドメインイベントを履歴エントリに変換する
func FromEvent(e events.Event) (*Entry, error) {
	entry := &Entry{Timestamp: e.OccurredAt(), Details: map[string]any{}}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	switch ev := e.(type) {
	case events.SeatReserved:
		entry.Operation = OperationSeatReserved
		entry.ShowingID = ev.ShowingID
		entry.SeatID = ev.SeatID
		entry.ClientEmail = client.NormalizeEmail(ev.Occupant)
		entry.Description = fmt.Sprintf("座席 %s を %s が予約", ev.SeatLabel, ev.Occupant)
		entry.Details["seat_label"] = ev.SeatLabel
	case events.SeatCancelled:
		entry.Operation = OperationSeatCancelled
		entry.ShowingID = ev.ShowingID
		entry.SeatID = ev.SeatID
		entry.ClientEmail = client.NormalizeEmail(ev.PreviousOccupant)
		entry.Description = fmt.Sprintf("座席 %s の予約を取り消し", ev.SeatLabel)
		entry.Details["seat_label"] = ev.SeatLabel
	case events.SeatsGenerated:
		entry.Operation = OperationSeatsGenerated
		entry.ShowingID = ev.ShowingID
		entry.Description = fmt.Sprintf("座席を %d 件生成", ev.Created)
		entry.Details["requested"] = ev.Requested
		entry.Details["created"] = ev.Created
	case events.ReservationsExpired:
		entry.Operation = OperationReservationsExpired
		entry.ShowingID = ev.ShowingID
		entry.Description = fmt.Sprintf("開始済み上映の予約 %d 件をキャンセル", ev.SeatsCancelled)
		entry.Details["seats_cancelled"] = ev.SeatsCancelled
		entry.Details["run_id"] = ev.RunID
	case events.ShowingCreated:
		entry.Operation = OperationShowingCreated
		entry.ShowingID = ev.ShowingID
		entry.Description = fmt.Sprintf("上映「%s」を %s に登録", ev.Title, ev.Room)
		entry.Details["title"] = ev.Title
		entry.Details["room"] = ev.Room
		entry.Details["start_at"] = ev.StartAt
		entry.Details["total_seats"] = ev.TotalSeats
		entry.Details["price"] = ev.Price
	case events.ShowingCancelled:
		entry.Operation = OperationShowingCancelled
		entry.ShowingID = ev.ShowingID
		entry.Description = fmt.Sprintf("上映「%s」(%s) をキャンセル", ev.Title, ev.Room)
		entry.Details["title"] = ev.Title
		entry.Details["room"] = ev.Room
	case events.ClientRegistered:
		entry.Operation = OperationClientRegistered
		entry.ClientID = ev.ClientID
		entry.ClientEmail = client.NormalizeEmail(ev.Email)
		entry.Description = fmt.Sprintf("顧客 %s を登録", ev.FullName)
		entry.Details["full_name"] = ev.FullName
	default:
		return nil, ErrUnknownOperation
	}
	return entry, nil
}
