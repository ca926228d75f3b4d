package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/api"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
)

// respondError はサービスのエラーを {"error": 理由} のJSONで返す
// 分類できないエラーは内部エラーとして詳細を返さない
func respondError(c echo.Context, err error) error {
	code := api.StatusOf(err)
	if code >= http.StatusInternalServerError {
		logger.Named("http").Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.JSON(code, map[string]string{"error": "内部サーバーエラー"})
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return c.JSON(code, map[string]string{"error": msg})
}

// bindAndValidate はリクエストを読み込み検証する
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	return c.Validate(req)
}
