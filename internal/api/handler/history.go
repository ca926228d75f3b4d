package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/history"
)

type HistoryHandler struct {
	history HistoryServiceInterface
}

func NewHistoryHandler(h HistoryServiceInterface) *HistoryHandler {
	return &HistoryHandler{history: h}
}

type HistoryEntryResponse struct {
	ID          string         `json:"id"`
	Operation   string         `json:"operation" example:"SEAT_RESERVED"`
	Timestamp   string         `json:"timestamp"`
	ShowingID   string         `json:"showing_id,omitempty"`
	SeatID      string         `json:"seat_id,omitempty"`
	ClientID    string         `json:"client_id,omitempty"`
	ClientEmail string         `json:"client_email,omitempty"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
}

type HistoryStatsResponse struct {
	Total       int64            `json:"total"`
	ByOperation map[string]int64 `json:"by_operation"`
}

func toHistoryResponses(entries []*history.Entry) []HistoryEntryResponse {
	resp := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = HistoryEntryResponse{
			ID:          e.ID,
			Operation:   string(e.Operation),
			Timestamp:   e.Timestamp.Format(time.RFC3339Nano),
			ShowingID:   e.ShowingID,
			SeatID:      e.SeatID,
			ClientID:    e.ClientID,
			ClientEmail: e.ClientEmail,
			Description: e.Description,
			Details:     e.Details,
		}
	}
	return resp
}

func (h *HistoryHandler) respond(c echo.Context, entries []*history.Entry, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toHistoryResponses(entries))
}

// ByShowing godoc
// @Summary 上映の予約履歴を取得
// @Tags history
// @Produce json
// @Param id path string true "上映ID"
// @Success 200 {array} HistoryEntryResponse
// @Router /history/showings/{id} [get]
func (h *HistoryHandler) ByShowing(c echo.Context) error {
	entries, err := h.history.ListByShowing(c.Request().Context(), c.Param("id"))
	return h.respond(c, entries, err)
}

// ByClient godoc
// @Summary 顧客の予約履歴を取得
// @Tags history
// @Produce json
// @Param email path string true "メールアドレス"
// @Success 200 {array} HistoryEntryResponse
// @Router /history/clients/{email} [get]
func (h *HistoryHandler) ByClient(c echo.Context) error {
	entries, err := h.history.ListByClientEmail(c.Request().Context(), c.Param("email"))
	return h.respond(c, entries, err)
}

// ByOperation godoc
// @Summary 操作種別で予約履歴を取得
// @Tags history
// @Produce json
// @Param op path string true "操作種別" Enums(SHOWING_CREATED, SHOWING_CANCELLED, SEAT_RESERVED, SEAT_CANCELLED, SEATS_GENERATED, RESERVATIONS_EXPIRED, CLIENT_REGISTERED)
// @Success 200 {array} HistoryEntryResponse
// @Failure 400 {object} map[string]string
// @Router /history/operations/{op} [get]
func (h *HistoryHandler) ByOperation(c echo.Context) error {
	entries, err := h.history.ListByOperation(c.Request().Context(), c.Param("op"))
	return h.respond(c, entries, err)
}

// Recent godoc
// @Summary 最近の予約履歴を取得
// @Tags history
// @Produce json
// @Param limit query int false "取得件数" default(10)
// @Success 200 {array} HistoryEntryResponse
// @Router /history/recent [get]
func (h *HistoryHandler) Recent(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := h.history.Recent(c.Request().Context(), limit)
	return h.respond(c, entries, err)
}

// Between godoc
// @Summary 期間で予約履歴を取得
// @Tags history
// @Produce json
// @Param from query string true "開始日時 (RFC3339)"
// @Param to query string true "終了日時 (RFC3339)"
// @Success 200 {array} HistoryEntryResponse
// @Failure 400 {object} map[string]string
// @Router /history [get]
func (h *HistoryHandler) Between(c echo.Context) error {
	from, err := time.Parse(time.RFC3339, c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "from の形式が不正です"})
	}
	to, err := time.Parse(time.RFC3339, c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "to の形式が不正です"})
	}
	entries, err := h.history.ListBetween(c.Request().Context(), from, to)
	return h.respond(c, entries, err)
}

// Stats godoc
// @Summary 操作種別ごとの件数を取得
// @Tags history
// @Produce json
// @Success 200 {object} HistoryStatsResponse
// @Router /history/stats [get]
func (h *HistoryHandler) Stats(c echo.Context) error {
	stats, err := h.history.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	resp := HistoryStatsResponse{Total: stats.Total, ByOperation: make(map[string]int64, len(stats.ByOperation))}
	for op, n := range stats.ByOperation {
		resp.ByOperation[string(op)] = n
	}
	return c.JSON(http.StatusOK, resp)
}
