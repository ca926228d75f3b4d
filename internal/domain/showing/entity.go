package showing

import (
	"strings"
	"time"
)

// Status は上映の状態を表す
type Status string

const (
	StatusListed    Status = "LISTED"
	StatusCancelled Status = "CANCELLED"
)

// Showing は上映エンティティを表す
type Showing struct {
	ID             string
	Title          string
	StartAt        time.Time
	Room           string
	TotalSeats     int
	AvailableSeats int
	Price          float64
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int // 楽観的ロック用
}

// NewShowing は新しい上映を作成する（空席数 = 総座席数）
func NewShowing(title string, startAt time.Time, room string, totalSeats int, price float64) *Showing {
	now := time.Now()
	return &Showing{
		Title:          strings.TrimSpace(title),
		StartAt:        startAt,
		Room:           strings.TrimSpace(room),
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		Price:          price,
		Status:         StatusListed,
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        0,
	}
}

// IsListed は上映中かを返す
func (s *Showing) IsListed() bool {
	return s.Status == StatusListed
}

// HasStarted は指定時刻の時点で上映が開始済みかを返す
func (s *Showing) HasStarted(now time.Time) bool {
	return s.StartAt.Before(now)
}

// Cancel は上映をキャンセルし、空席数を0にする
func (s *Showing) Cancel() error {
	if s.Status == StatusCancelled {
		return ErrShowingAlreadyCancelled
	}
	s.Status = StatusCancelled
	s.AvailableSeats = 0
	s.touch()
	return nil
}

// ApplyDelta は空席数を delta だけ増減する
// 0 <= 空席数 <= 総座席数 を満たさない場合は変更しない
func (s *Showing) ApplyDelta(delta int) error {
	if s.Status != StatusListed {
		return ErrShowingAlreadyCancelled
	}
	next := s.AvailableSeats + delta
	if next < 0 || next > s.TotalSeats {
		return ErrAvailabilityOutOfRange
	}
	s.AvailableSeats = next
	s.touch()
	return nil
}

// Validate は上映の検証を行う
func (s *Showing) Validate() error {
	if s.Title == "" {
		return ErrTitleRequired
	}
	if s.Room == "" {
		return ErrRoomRequired
	}
	if s.StartAt.IsZero() {
		return ErrStartAtRequired
	}
	if s.TotalSeats <= 0 {
		return ErrInvalidTotalSeats
	}
	if s.Price < 0 {
		return ErrInvalidPrice
	}
	if s.AvailableSeats < 0 || s.AvailableSeats > s.TotalSeats {
		return ErrAvailabilityOutOfRange
	}
	return nil
}

func (s *Showing) touch() {
	s.UpdatedAt = time.Now()
	s.Version++
}
