package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/application"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/client"
)

type ClientHandler struct {
	clients ClientServiceInterface
}

func NewClientHandler(clients ClientServiceInterface) *ClientHandler {
	return &ClientHandler{clients: clients}
}

type RegisterClientRequest struct {
	FirstName string `json:"first_name" validate:"required" example:"太郎"`
	LastName  string `json:"last_name" example:"山田"`
	Email     string `json:"email" validate:"required,email" example:"taro@example.com"`
	Phone     string `json:"phone" example:"090-1234-5678"`
}

// UpdateClientRequest は部分更新のリクエスト。省略した項目は変更しない
type UpdateClientRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
}

type ClientResponse struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Status       string `json:"status" example:"ACTIVE"`
	RegisteredAt string `json:"registered_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toClientResponse(cl *client.Client) *ClientResponse {
	return &ClientResponse{
		ID:           cl.ID,
		FirstName:    cl.FirstName,
		LastName:     cl.LastName,
		Email:        cl.Email,
		Phone:        cl.Phone,
		Status:       string(cl.Status),
		RegisteredAt: cl.RegisteredAt.Format(time.RFC3339),
		UpdatedAt:    cl.UpdatedAt.Format(time.RFC3339),
	}
}

// Register godoc
// @Summary 顧客を登録
// @Tags clients
// @Accept json
// @Produce json
// @Param request body RegisterClientRequest true "顧客情報"
// @Success 201 {object} ClientResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /clients [post]
func (h *ClientHandler) Register(c echo.Context) error {
	var req RegisterClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	cl, err := h.clients.Register(c.Request().Context(), application.RegisterClientInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toClientResponse(cl))
}

// List godoc
// @Summary 顧客一覧を取得
// @Tags clients
// @Produce json
// @Param q query string false "氏名検索（部分一致）"
// @Param active query bool false "有効な顧客のみ"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ClientResponse
// @Router /clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		list []*client.Client
		err  error
	)
	switch {
	case c.QueryParam("q") != "":
		list, err = h.clients.SearchClients(ctx, c.QueryParam("q"))
	case c.QueryParam("active") == "true":
		list, err = h.clients.ListActiveClients(ctx)
	default:
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		offset, _ := strconv.Atoi(c.QueryParam("offset"))
		list, err = h.clients.ListClients(ctx, limit, offset)
	}
	if err != nil {
		return respondError(c, err)
	}

	resp := make([]*ClientResponse, len(list))
	for i, cl := range list {
		resp[i] = toClientResponse(cl)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary 顧客を取得
// @Tags clients
// @Produce json
// @Param id path string true "顧客ID"
// @Success 200 {object} ClientResponse
// @Failure 404 {object} map[string]string
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(c echo.Context) error {
	cl, err := h.clients.GetClient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toClientResponse(cl))
}

// Update godoc
// @Summary 顧客情報を更新
// @Tags clients
// @Accept json
// @Produce json
// @Param id path string true "顧客ID"
// @Param request body UpdateClientRequest true "更新内容"
// @Success 200 {object} ClientResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	var req UpdateClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	cl, err := h.clients.Update(c.Request().Context(), c.Param("id"), client.Patch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toClientResponse(cl))
}

// Activate godoc
// @Summary 顧客を有効にする
// @Tags clients
// @Produce json
// @Param id path string true "顧客ID"
// @Success 200 {object} ClientResponse
// @Failure 409 {object} map[string]string
// @Router /clients/{id}/activate [post]
func (h *ClientHandler) Activate(c echo.Context) error {
	cl, err := h.clients.Activate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toClientResponse(cl))
}

// Deactivate godoc
// @Summary 顧客を無効にする
// @Tags clients
// @Produce json
// @Param id path string true "顧客ID"
// @Success 200 {object} ClientResponse
// @Failure 409 {object} map[string]string
// @Router /clients/{id}/deactivate [post]
func (h *ClientHandler) Deactivate(c echo.Context) error {
	cl, err := h.clients.Deactivate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toClientResponse(cl))
}

// Delete godoc
// @Summary 顧客を削除
// @Description 顧客を無効にします（論理削除）。無効な顧客に対しても成功します
// @Tags clients
// @Param id path string true "顧客ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	_, err := h.clients.Deactivate(c.Request().Context(), c.Param("id"))
	if err != nil && !errors.Is(err, client.ErrClientAlreadyInactive) {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
