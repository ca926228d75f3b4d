package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/application"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showing"
)

type ShowingHandler struct {
	showings ShowingServiceInterface
	seats    SeatServiceInterface
}

func NewShowingHandler(showings ShowingServiceInterface, seats SeatServiceInterface) *ShowingHandler {
	return &ShowingHandler{showings: showings, seats: seats}
}

type CreateShowingRequest struct {
	Title         string  `json:"title" validate:"required" example:"インセプション"`
	StartAt       string  `json:"start_at" validate:"required" example:"2025-12-31T18:00:00+09:00"`
	Room          string  `json:"room" validate:"required" example:"スクリーン1"`
	TotalSeats    int     `json:"total_seats" validate:"required,gt=0" example:"50"`
	Price         float64 `json:"price" validate:"gte=0" example:"1800"`
	GenerateSeats bool    `json:"generate_seats" example:"true"`
}

type ShowingResponse struct {
	ID             string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Title          string  `json:"title" example:"インセプション"`
	StartAt        string  `json:"start_at" example:"2025-12-31T18:00:00+09:00"`
	Room           string  `json:"room" example:"スクリーン1"`
	TotalSeats     int     `json:"total_seats" example:"50"`
	AvailableSeats int     `json:"available_seats" example:"50"`
	Price          float64 `json:"price" example:"1800"`
	Status         string  `json:"status" example:"LISTED"`
	SeatsGenerated *int    `json:"seats_generated,omitempty" example:"50"`
	CreatedAt      string  `json:"created_at" example:"2025-12-06T10:00:00+09:00"`
	UpdatedAt      string  `json:"updated_at" example:"2025-12-06T10:00:00+09:00"`
}

func toShowingResponse(s *showing.Showing) *ShowingResponse {
	return &ShowingResponse{
		ID:             s.ID,
		Title:          s.Title,
		StartAt:        s.StartAt.Format(time.RFC3339),
		Room:           s.Room,
		TotalSeats:     s.TotalSeats,
		AvailableSeats: s.AvailableSeats,
		Price:          s.Price,
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      s.UpdatedAt.Format(time.RFC3339),
	}
}

func toShowingResponses(list []*showing.Showing) []*ShowingResponse {
	resp := make([]*ShowingResponse, len(list))
	for i, s := range list {
		resp[i] = toShowingResponse(s)
	}
	return resp
}

// Create godoc
// @Summary 上映を登録
// @Description 上映を登録します。generate_seats が true なら総座席数分の座席も生成します
// @Tags showings
// @Accept json
// @Produce json
// @Param request body CreateShowingRequest true "上映情報"
// @Success 201 {object} ShowingResponse
// @Failure 400 {object} map[string]string
// @Router /showings [post]
func (h *ShowingHandler) Create(c echo.Context) error {
	var req CreateShowingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "開始日時の形式が不正です"})
	}

	ctx := c.Request().Context()
	s, err := h.showings.CreateShowing(ctx, application.CreateShowingInput{
		Title:      req.Title,
		StartAt:    startAt,
		Room:       req.Room,
		TotalSeats: req.TotalSeats,
		Price:      req.Price,
	})
	if err != nil {
		return respondError(c, err)
	}

	resp := toShowingResponse(s)
	if req.GenerateSeats {
		seats, err := h.seats.GenerateSeats(ctx, s.ID, s.TotalSeats)
		if err != nil {
			return respondError(c, err)
		}
		n := len(seats)
		resp.SeatsGenerated = &n
	}
	return c.JSON(http.StatusCreated, resp)
}

// GetByID godoc
// @Summary 上映を取得
// @Tags showings
// @Produce json
// @Param id path string true "上映ID"
// @Success 200 {object} ShowingResponse
// @Failure 404 {object} map[string]string
// @Router /showings/{id} [get]
func (h *ShowingHandler) GetByID(c echo.Context) error {
	s, err := h.showings.GetShowing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toShowingResponse(s))
}

// List godoc
// @Summary 上映一覧を取得
// @Description 既定では上映中の一覧を開始日時順に返します。
// @Description title で作品名検索、available=true で空席のある上映に絞り込み、limit/offset で全件を登録順にページングします
// @Tags showings
// @Produce json
// @Param title query string false "作品名（部分一致）"
// @Param available query bool false "空席のある上映のみ"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ShowingResponse
// @Router /showings [get]
func (h *ShowingHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		list []*showing.Showing
		err  error
	)
	switch {
	case c.QueryParam("title") != "":
		list, err = h.showings.SearchByTitle(ctx, c.QueryParam("title"))
	case c.QueryParam("available") == "true":
		list, err = h.showings.ListWithAvailability(ctx)
	case c.QueryParam("limit") != "" || c.QueryParam("offset") != "":
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		offset, _ := strconv.Atoi(c.QueryParam("offset"))
		list, err = h.showings.ListShowings(ctx, limit, offset)
	default:
		list, err = h.showings.ListListed(ctx)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toShowingResponses(list))
}

// Cancel godoc
// @Summary 上映をキャンセル
// @Description 上映をキャンセルします。全座席はキャンセル状態になります
// @Tags showings
// @Produce json
// @Param id path string true "上映ID"
// @Success 200 {object} ShowingResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /showings/{id}/cancel [post]
func (h *ShowingHandler) Cancel(c echo.Context) error {
	s, err := h.showings.CancelShowing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toShowingResponse(s))
}

// Reconcile godoc
// @Summary 空席数を再計算
// @Description 座席の状態から空席数を数え直して保存します
// @Tags showings
// @Produce json
// @Param id path string true "上映ID"
// @Success 200 {object} ShowingResponse
// @Failure 404 {object} map[string]string
// @Router /showings/{id}/reconcile [post]
func (h *ShowingHandler) Reconcile(c echo.Context) error {
	s, err := h.showings.ReconcileAvailability(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toShowingResponse(s))
}
