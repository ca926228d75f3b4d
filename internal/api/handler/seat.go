package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
)

type SeatHandler struct {
	seats    SeatServiceInterface
	showings ShowingServiceInterface
}

func NewSeatHandler(seats SeatServiceInterface, showings ShowingServiceInterface) *SeatHandler {
	return &SeatHandler{seats: seats, showings: showings}
}

type GenerateSeatsRequest struct {
	// 0 または省略時は上映の総座席数
	Total int `json:"total" validate:"gte=0" example:"50"`
}

type ReserveSeatRequest struct {
	Occupant string `json:"occupant" validate:"required" example:"alice@example.com"`
}

type SeatResponse struct {
	ID        string  `json:"id"`
	ShowingID string  `json:"showing_id"`
	Label     string  `json:"label" example:"A1"`
	Row       int     `json:"row" example:"1"`
	Column    int     `json:"column" example:"1"`
	Status    string  `json:"status" example:"FREE"`
	Occupant  *string `json:"occupant,omitempty"`
	UpdatedAt string  `json:"updated_at"`
}

type GenerateSeatsResponse struct {
	Created int            `json:"created"`
	Seats   []SeatResponse `json:"seats"`
}

type SeatRowResponse struct {
	Row   string         `json:"row" example:"A"`
	Seats []SeatResponse `json:"seats"`
}

type FreeCountResponse struct {
	ShowingID string `json:"showing_id"`
	Count     int    `json:"count"`
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	return SeatResponse{
		ID: s.ID, ShowingID: s.ShowingID, Label: s.Label,
		Row: s.Row, Column: s.Column, Status: string(s.Status),
		Occupant: s.Occupant, UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}

func toSeatResponses(seats []*seat.Seat) []SeatResponse {
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return resp
}

// Generate godoc
// @Summary 座席を生成
// @Description 上映の座席を行ごとに生成します。既存の座席はそのまま残し、新しく作成した座席だけを返します
// @Tags seats
// @Accept json
// @Produce json
// @Param id path string true "上映ID"
// @Param request body GenerateSeatsRequest false "生成数"
// @Success 201 {object} GenerateSeatsResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /showings/{id}/seats [post]
func (h *SeatHandler) Generate(c echo.Context) error {
	showingID := c.Param("id")
	var req GenerateSeatsRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return respondError(c, err)
		}
	}

	ctx := c.Request().Context()
	total := req.Total
	if total == 0 {
		s, err := h.showings.GetShowing(ctx, showingID)
		if err != nil {
			return respondError(c, err)
		}
		total = s.TotalSeats
	}

	seats, err := h.seats.GenerateSeats(ctx, showingID, total)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, GenerateSeatsResponse{
		Created: len(seats),
		Seats:   toSeatResponses(seats),
	})
}

// ListByShowing godoc
// @Summary 上映の座席一覧を取得
// @Tags seats
// @Produce json
// @Param id path string true "上映ID"
// @Param free query bool false "空席のみ"
// @Success 200 {array} SeatResponse
// @Failure 404 {object} map[string]string
// @Router /showings/{id}/seats [get]
func (h *SeatHandler) ListByShowing(c echo.Context) error {
	showingID := c.Param("id")
	var (
		seats []*seat.Seat
		err   error
	)
	if c.QueryParam("free") == "true" {
		seats, err = h.seats.ListFreeSeats(c.Request().Context(), showingID)
	} else {
		seats, err = h.seats.ListSeats(c.Request().Context(), showingID)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toSeatResponses(seats))
}

// Map godoc
// @Summary 座席表を取得
// @Description 座席を行ごとにまとめて返します
// @Tags seats
// @Produce json
// @Param id path string true "上映ID"
// @Success 200 {array} SeatRowResponse
// @Failure 404 {object} map[string]string
// @Router /showings/{id}/seats/map [get]
func (h *SeatHandler) Map(c echo.Context) error {
	rows, err := h.seats.SeatMap(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]SeatRowResponse, len(rows))
	for i, r := range rows {
		resp[i] = SeatRowResponse{Row: r.Row, Seats: toSeatResponses(r.Seats)}
	}
	return c.JSON(http.StatusOK, resp)
}

// CountFree godoc
// @Summary 空席数を取得
// @Tags seats
// @Produce json
// @Param id path string true "上映ID"
// @Success 200 {object} FreeCountResponse
// @Router /showings/{id}/seats/free/count [get]
func (h *SeatHandler) CountFree(c echo.Context) error {
	showingID := c.Param("id")
	count, err := h.seats.CountFreeSeats(c.Request().Context(), showingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, FreeCountResponse{ShowingID: showingID, Count: count})
}

// Reserve godoc
// @Summary 座席を予約
// @Description 上映とラベルで指定した座席を予約します。同じ座席を同時に予約した場合は1件だけ成功します
// @Tags seats
// @Accept json
// @Produce json
// @Param id path string true "上映ID"
// @Param label path string true "座席ラベル"
// @Param request body ReserveSeatRequest true "予約者"
// @Success 200 {object} SeatResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /showings/{id}/seats/{label}/reserve [post]
func (h *SeatHandler) Reserve(c echo.Context) error {
	var req ReserveSeatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	s, err := h.seats.Reserve(c.Request().Context(), c.Param("id"), c.Param("label"), req.Occupant)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

// GetByID godoc
// @Summary 座席を取得
// @Tags seats
// @Produce json
// @Param id path string true "座席ID"
// @Success 200 {object} SeatResponse
// @Failure 404 {object} map[string]string
// @Router /seats/{id} [get]
func (h *SeatHandler) GetByID(c echo.Context) error {
	s, err := h.seats.GetSeat(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

// Cancel godoc
// @Summary 座席の予約を取り消す
// @Tags seats
// @Produce json
// @Param id path string true "座席ID"
// @Success 200 {object} SeatResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /seats/{id}/cancel [post]
func (h *SeatHandler) Cancel(c echo.Context) error {
	s, err := h.seats.Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}
