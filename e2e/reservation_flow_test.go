package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/api/handler"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/worker"
)

func (s *TestServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// createShowing は座席付きの上映を作成する
func (s *TestServer) createShowing(t *testing.T, title string, total int, startAt time.Time) handler.ShowingResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/showings", map[string]any{
		"title":          title,
		"start_at":       startAt.Format(time.RFC3339),
		"room":           "Room 1",
		"total_seats":    total,
		"price":          150,
		"generate_seats": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[handler.ShowingResponse](t, rec)
}

func (s *TestServer) reserve(t *testing.T, showingID, label, occupant string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/showings/%s/seats/%s/reserve", showingID, label),
		map[string]string{"occupant": occupant})
}

func (s *TestServer) showing(t *testing.T, id string) handler.ShowingResponse {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/v1/showings/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return decode[handler.ShowingResponse](t, rec)
}

// TestE2E_ReservationFlow は予約から取り消しまでの流れを確認する
// 上映作成 → 予約 → 二重予約 → 取り消し → 履歴
func TestE2E_ReservationFlow(t *testing.T) {
	s := NewTestServer(t)
	sh := s.createShowing(t, "Inception", 50, time.Now().Add(24*time.Hour))
	require.NotNil(t, sh.SeatsGenerated)
	assert.Equal(t, 50, *sh.SeatsGenerated)
	assert.Equal(t, 50, sh.AvailableSeats)

	var reservedID string
	t.Run("1. 座席を予約", func(t *testing.T) {
		rec := s.reserve(t, sh.ID, "A1", "a@x.com")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		seat := decode[handler.SeatResponse](t, rec)
		assert.Equal(t, "RESERVED", seat.Status)
		reservedID = seat.ID

		assert.Equal(t, 49, s.showing(t, sh.ID).AvailableSeats)
	})

	t.Run("2. 同じ座席の二重予約は409", func(t *testing.T) {
		rec := s.reserve(t, sh.ID, "A1", "b@x.com")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, 49, s.showing(t, sh.ID).AvailableSeats)
	})

	t.Run("3. 存在しない座席は404", func(t *testing.T) {
		rec := s.reserve(t, sh.ID, "Z99", "b@x.com")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("4. 空席数と空席一覧", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/showings/"+sh.ID+"/seats/free/count", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 49, decode[handler.FreeCountResponse](t, rec).Count)

		rec = s.do(t, http.MethodGet, "/api/v1/showings/"+sh.ID+"/seats?free=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]handler.SeatResponse](t, rec), 49)
	})

	t.Run("5. 座席表は行ごと", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/showings/"+sh.ID+"/seats/map", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rows := decode[[]handler.SeatRowResponse](t, rec)
		require.Len(t, rows, 5)
		assert.Equal(t, "A", rows[0].Row)
		assert.Equal(t, "E", rows[4].Row)
	})

	t.Run("6. 予約を取り消す", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/seats/"+reservedID+"/cancel", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "FREE", decode[handler.SeatResponse](t, rec).Status)
		assert.Equal(t, 50, s.showing(t, sh.ID).AvailableSeats)

		rec = s.do(t, http.MethodPost, "/api/v1/seats/"+reservedID+"/cancel", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("7. 履歴が記録されている", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/history/showings/"+sh.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		ops := []string{}
		for _, e := range decode[[]handler.HistoryEntryResponse](t, rec) {
			ops = append(ops, e.Operation)
		}
		assert.ElementsMatch(t, []string{"SHOWING_CREATED", "SEATS_GENERATED", "SEAT_RESERVED", "SEAT_CANCELLED"}, ops)

		rec = s.do(t, http.MethodGet, "/api/v1/history/clients/a@x.com", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]handler.HistoryEntryResponse](t, rec), 2)

		rec = s.do(t, http.MethodGet, "/api/v1/history/stats", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		stats := decode[handler.HistoryStatsResponse](t, rec)
		assert.Equal(t, int64(4), stats.Total)
	})

	t.Run("8. イベントが中継されている", func(t *testing.T) {
		assert.Equal(t, []string{
			"showing.created", "seat.generated", "seat.reserved", "seat.cancelled",
		}, s.Relay.Names())
	})
}

// TestE2E_ConcurrentReservation は同じ座席への同時予約で1件だけ成功することを確認する
func TestE2E_ConcurrentReservation(t *testing.T) {
	s := NewTestServer(t)
	sh := s.createShowing(t, "Inception", 10, time.Now().Add(24*time.Hour))

	const workers = 20
	codes := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = s.reserve(t, sh.ID, "A1", fmt.Sprintf("user%d@x.com", i)).Code
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, c := range codes {
		switch c {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflict)
	assert.Equal(t, 9, s.showing(t, sh.ID).AvailableSeats)
}

// TestE2E_CancelShowing は上映キャンセルで全座席がキャンセルされることを確認する
func TestE2E_CancelShowing(t *testing.T) {
	s := NewTestServer(t)
	sh := s.createShowing(t, "Inception", 10, time.Now().Add(24*time.Hour))
	require.Equal(t, http.StatusOK, s.reserve(t, sh.ID, "A1", "a@x.com").Code)

	rec := s.do(t, http.MethodPost, "/api/v1/showings/"+sh.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cancelled := decode[handler.ShowingResponse](t, rec)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.Equal(t, 0, cancelled.AvailableSeats)

	rec = s.do(t, http.MethodGet, "/api/v1/showings/"+sh.ID+"/seats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, seat := range decode[[]handler.SeatResponse](t, rec) {
		assert.Equal(t, "CANCELLED", seat.Status)
		assert.Nil(t, seat.Occupant)
	}

	t.Run("キャンセル済みの上映は再キャンセルできない", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/showings/"+sh.ID+"/cancel", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("キャンセル済みの上映の座席は予約できない", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, s.reserve(t, sh.ID, "A2", "b@x.com").Code)
	})

	t.Run("上映中の一覧に含まれない", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/showings", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[[]handler.ShowingResponse](t, rec))
	})
}

// TestE2E_ManualSweep は開始済み上映の予約だけが手動スイープでキャンセルされることを確認する
func TestE2E_ManualSweep(t *testing.T) {
	s := NewTestServer(t)
	past := s.createShowing(t, "Memento", 5, time.Now().Add(-time.Hour))
	future := s.createShowing(t, "Tenet", 5, time.Now().Add(time.Hour))
	for _, label := range []string{"A1", "A2", "A3"} {
		require.Equal(t, http.StatusOK, s.reserve(t, past.ID, label, "a@x.com").Code)
	}
	require.Equal(t, http.StatusOK, s.reserve(t, future.ID, "A1", "a@x.com").Code)

	rec := s.do(t, http.MethodPost, "/api/v1/admin/sweeps", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[worker.Result](t, rec)
	assert.Equal(t, worker.TriggerManual, result.Trigger)
	assert.Equal(t, 1, result.Swept)
	assert.Equal(t, 3, result.SeatsCancelled)

	rec = s.do(t, http.MethodGet, "/api/v1/showings/"+past.ID+"/seats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	statuses := map[string]int{}
	for _, seat := range decode[[]handler.SeatResponse](t, rec) {
		statuses[seat.Status]++
	}
	assert.Equal(t, map[string]int{"CANCELLED": 3, "FREE": 2}, statuses)

	// 期限切れのキャンセルは空席数を変えない
	assert.Equal(t, 2, s.showing(t, past.ID).AvailableSeats)

	rec = s.do(t, http.MethodGet, "/api/v1/showings/"+future.ID+"/seats?free=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]handler.SeatResponse](t, rec), 4)

	rec = s.do(t, http.MethodGet, "/api/v1/history/operations/RESERVATIONS_EXPIRED", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]handler.HistoryEntryResponse](t, rec), 1)
}

// TestE2E_Clients は顧客の登録から論理削除までを確認する
func TestE2E_Clients(t *testing.T) {
	s := NewTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/clients", map[string]string{
		"first_name": "Ada", "last_name": "Lovelace", "email": "Ada@Example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cl := decode[handler.ClientResponse](t, rec)
	assert.Equal(t, "ada@example.com", cl.Email)

	t.Run("同じメールアドレスは409", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/clients", map[string]string{
			"first_name": "Other", "email": "ada@example.com",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("部分更新", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, "/api/v1/clients/"+cl.ID, map[string]string{"phone": "555-0100"})
		require.Equal(t, http.StatusOK, rec.Code)
		updated := decode[handler.ClientResponse](t, rec)
		assert.Equal(t, "555-0100", updated.Phone)
		assert.Equal(t, "Ada", updated.FirstName)
	})

	t.Run("氏名で検索", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/clients?q=love", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]handler.ClientResponse](t, rec), 1)
	})

	t.Run("論理削除後は有効な顧客に含まれない", func(t *testing.T) {
		rec := s.do(t, http.MethodDelete, "/api/v1/clients/"+cl.ID, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.do(t, http.MethodGet, "/api/v1/clients?active=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[[]handler.ClientResponse](t, rec))

		rec = s.do(t, http.MethodGet, "/api/v1/clients/"+cl.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "INACTIVE", decode[handler.ClientResponse](t, rec).Status)
	})

	t.Run("再有効化", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/clients/"+cl.ID+"/activate", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ACTIVE", decode[handler.ClientResponse](t, rec).Status)
	})
}

// TestE2E_HealthAndMetrics はヘルスチェックとメトリクスの公開を確認する
func TestE2E_HealthAndMetrics(t *testing.T) {
	s := NewTestServer(t)
	s.createShowing(t, "Inception", 5, time.Now().Add(time.Hour))

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), `path="/api/v1/showings"`)
}
