package seat

import (
	"sort"
	"strconv"
)

// SeatsPerRow は1行あたりの座席数
const SeatsPerRow = 10

// RowName は1始まりの行番号を行文字に変換する
// A..Z の次は AA, AB, ... と続く
func RowName(row int) string {
	if row < 1 {
		return ""
	}
	var buf []byte
	for row > 0 {
		row--
		buf = append([]byte{byte('A' + row%26)}, buf...)
		row /= 26
	}
	return string(buf)
}

// Label は行番号と列番号から座席ラベルを作る
func Label(row, column int) string {
	return RowName(row) + strconv.Itoa(column)
}

// Position は0始まりの通し番号から行番号と列番号を求める（行優先）
func Position(index int) (row, column int) {
	return index/SeatsPerRow + 1, index%SeatsPerRow + 1
}

// Generate は上映の座席を total 件、行優先で作成する
func Generate(showingID string, total int) ([]*Seat, error) {
	if total <= 0 {
		return nil, ErrInvalidSeatCount
	}
	if showingID == "" {
		return nil, ErrShowingIDRequired
	}
	seats := make([]*Seat, 0, total)
	for i := 0; i < total; i++ {
		row, column := Position(i)
		seats = append(seats, NewSeat(showingID, row, column))
	}
	return seats, nil
}

// GroupByRow は座席を行文字ごとにまとめる
// 返す行文字は行番号順
func GroupByRow(seats []*Seat) ([]string, map[string][]*Seat) {
	byRow := make(map[string][]*Seat)
	rowNums := make([]int, 0)
	for _, s := range seats {
		name := s.RowName()
		if _, ok := byRow[name]; !ok {
			rowNums = append(rowNums, s.Row)
		}
		byRow[name] = append(byRow[name], s)
	}
	sort.Ints(rowNums)
	rows := make([]string, len(rowNums))
	for i, r := range rowNums {
		rows[i] = RowName(r)
	}
	return rows, byRow
}
