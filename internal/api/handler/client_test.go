package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/application"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/client"
)

func newClientEcho(m *MockClientService) *echo.Echo {
	e := NewTestEcho()
	h := NewClientHandler(m)
	e.POST("/clients", h.Register)
	e.GET("/clients", h.List)
	e.GET("/clients/:id", h.GetByID)
	e.PUT("/clients/:id", h.Update)
	e.POST("/clients/:id/activate", h.Activate)
	e.POST("/clients/:id/deactivate", h.Deactivate)
	e.DELETE("/clients/:id", h.Delete)
	return e
}

func testClient(id string) *client.Client {
	cl := client.NewClient("太郎", "山田", "taro@example.com", "090-1234-5678")
	cl.ID = id
	return cl
}

func TestClientHandler_Register(t *testing.T) {
	t.Run("登録できる", func(t *testing.T) {
		m := new(MockClientService)
		m.On("Register", mock.Anything, application.RegisterClientInput{
			FirstName: "太郎", LastName: "山田", Email: "taro@example.com", Phone: "090-1234-5678",
		}).Return(testClient("cl-1"), nil)

		rec := serve(newClientEcho(m), http.MethodPost, "/clients",
			`{"first_name":"太郎","last_name":"山田","email":"taro@example.com","phone":"090-1234-5678"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		resp := decode[ClientResponse](t, rec)
		assert.Equal(t, "cl-1", resp.ID)
		assert.Equal(t, "ACTIVE", resp.Status)
	})

	t.Run("メールアドレスの形式が不正なら400", func(t *testing.T) {
		m := new(MockClientService)

		rec := serve(newClientEcho(m), http.MethodPost, "/clients", `{"first_name":"太郎","email":"not-an-email"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "email")
		m.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("登録済みのメールアドレスは409", func(t *testing.T) {
		m := new(MockClientService)
		m.On("Register", mock.Anything, mock.Anything).Return(nil, client.ErrEmailAlreadyRegistered)

		rec := serve(newClientEcho(m), http.MethodPost, "/clients", `{"first_name":"太郎","email":"taro@example.com"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestClientHandler_List(t *testing.T) {
	list := []*client.Client{testClient("cl-1")}

	tests := []struct {
		name  string
		query string
		setup func(m *MockClientService)
	}{
		{
			name:  "既定はページング",
			query: "",
			setup: func(m *MockClientService) { m.On("ListClients", mock.Anything, 0, 0).Return(list, nil) },
		},
		{
			name:  "氏名で検索",
			query: "?q=taro",
			setup: func(m *MockClientService) { m.On("SearchClients", mock.Anything, "taro").Return(list, nil) },
		},
		{
			name:  "有効な顧客のみ",
			query: "?active=true",
			setup: func(m *MockClientService) { m.On("ListActiveClients", mock.Anything).Return(list, nil) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockClientService)
			tt.setup(m)

			rec := serve(newClientEcho(m), http.MethodGet, "/clients"+tt.query, "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Len(t, decode[[]ClientResponse](t, rec), 1)
			m.AssertExpectations(t)
		})
	}
}

func TestClientHandler_GetByID(t *testing.T) {
	m := new(MockClientService)
	m.On("GetClient", mock.Anything, "missing").Return(nil, client.ErrClientNotFound)

	rec := serve(newClientEcho(m), http.MethodGet, "/clients/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClientHandler_Update(t *testing.T) {
	t.Run("指定した項目だけ更新する", func(t *testing.T) {
		m := new(MockClientService)
		updated := testClient("cl-1")
		updated.Phone = "080-0000-0000"
		m.On("Update", mock.Anything, "cl-1", mock.MatchedBy(func(p client.Patch) bool {
			return p.Phone != nil && *p.Phone == "080-0000-0000" &&
				p.FirstName == nil && p.LastName == nil && p.Email == nil
		})).Return(updated, nil)

		rec := serve(newClientEcho(m), http.MethodPut, "/clients/cl-1", `{"phone":"080-0000-0000"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "080-0000-0000", decode[ClientResponse](t, rec).Phone)
	})

	t.Run("メールアドレスの形式が不正なら400", func(t *testing.T) {
		m := new(MockClientService)

		rec := serve(newClientEcho(m), http.MethodPut, "/clients/cl-1", `{"email":"broken"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestClientHandler_ActivateDeactivate(t *testing.T) {
	t.Run("無効にできる", func(t *testing.T) {
		m := new(MockClientService)
		cl := testClient("cl-1")
		_ = cl.Deactivate()
		m.On("Deactivate", mock.Anything, "cl-1").Return(cl, nil)

		rec := serve(newClientEcho(m), http.MethodPost, "/clients/cl-1/deactivate", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "INACTIVE", decode[ClientResponse](t, rec).Status)
	})

	t.Run("有効な顧客の有効化は409", func(t *testing.T) {
		m := new(MockClientService)
		m.On("Activate", mock.Anything, "cl-1").Return(nil, client.ErrClientAlreadyActive)

		rec := serve(newClientEcho(m), http.MethodPost, "/clients/cl-1/activate", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestClientHandler_Delete(t *testing.T) {
	t.Run("論理削除できる", func(t *testing.T) {
		m := new(MockClientService)
		m.On("Deactivate", mock.Anything, "cl-1").Return(testClient("cl-1"), nil)

		rec := serve(newClientEcho(m), http.MethodDelete, "/clients/cl-1", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("無効な顧客の削除も成功する", func(t *testing.T) {
		m := new(MockClientService)
		m.On("Deactivate", mock.Anything, "cl-1").Return(nil, client.ErrClientAlreadyInactive)

		rec := serve(newClientEcho(m), http.MethodDelete, "/clients/cl-1", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("存在しなければ404", func(t *testing.T) {
		m := new(MockClientService)
		m.On("Deactivate", mock.Anything, "missing").Return(nil, client.ErrClientNotFound)

		rec := serve(newClientEcho(m), http.MethodDelete, "/clients/missing", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
