package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/worker"
)

type AdminHandler struct {
	sweeper SweeperInterface
}

func NewAdminHandler(sweeper SweeperInterface) *AdminHandler {
	return &AdminHandler{sweeper: sweeper}
}

// Sweep godoc
// @Summary 期限切れ予約のスイープを手動実行
// @Description 開始済みの上映に残った予約をキャンセルします。実行中の場合は 409 を返します
// @Tags admin
// @Produce json
// @Success 200 {object} worker.Result
// @Failure 409 {object} map[string]string
// @Router /admin/sweeps [post]
func (h *AdminHandler) Sweep(c echo.Context) error {
	// クライアントが切断してもスイープは最後まで実行する
	ctx := context.WithoutCancel(c.Request().Context())
	result, err := h.sweeper.Run(ctx, worker.TriggerManual)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
