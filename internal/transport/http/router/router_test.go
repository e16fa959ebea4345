package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"menus-api/internal/app"
	"menus-api/internal/core/config"
	"menus-api/internal/domain"
	"menus-api/internal/dto"
	"menus-api/internal/testutil"
	resp "menus-api/internal/transport/http/response"
	"menus-api/internal/transport/http/router"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type menuOut struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
	Created     string  `json:"created"`
	Modified    *string `json:"modified"`
	Deleted     *string `json:"deleted"`
}

type userOut struct {
	ID      uint     `json:"id"`
	Email   string   `json:"email"`
	Roles   []string `json:"roles"`
	Deleted *string  `json:"deleted"`
}

type testServer struct {
	t     *testing.T
	app   *app.App
	api   *gin.Engine
	admin *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		JWT:      config.JWT{Secret: "test-secret", Issuer: "menus-api", AccessTokenTTLMin: 60},
		Security: config.Security{BcryptCost: 4},
	}
	a := app.Wire(cfg, zap.NewNop(), testutil.NewDB(t))
	d := a.Deps()
	return &testServer{t: t, app: a, api: router.NewAPIEngine(d), admin: router.NewAdminEngine(d)}
}

func (s *testServer) do(h http.Handler, method, path, token string, body any) envelope {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	env := s.do(s.api, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, resp.CodeOK, env.Code, env.Msg)
	out := decode[struct {
		Token string `json:"token"`
	}](s.t, env)
	require.NotEmpty(s.t, out.Token)
	return out.Token
}

func (s *testServer) createAdmin(email string) string {
	s.t.Helper()
	_, err := s.app.Users.Create(context.Background(), dto.UserInput{
		Email: email, Password: "secret1", Roles: []string{domain.RoleAdmin},
	}, true)
	require.NoError(s.t, err)
	return s.login(email, "secret1")
}

func TestMenusCRUD(t *testing.T) {
	s := newTestServer(t)

	env := s.do(s.api, http.MethodPost, "/api/v1/menus", "", gin.H{"name": " Pizza ", "description": "Hot", "order": 1})
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	pizza := decode[menuOut](t, env)
	require.NotZero(t, pizza.ID)
	require.Equal(t, "Pizza", pizza.Name)
	require.NotEmpty(t, pizza.Created)
	require.Nil(t, pizza.Modified)

	env = s.do(s.api, http.MethodPost, "/api/v1/menus", "", gin.H{"name": "Pasta", "order": 1})
	require.Equal(t, resp.CodeConflict, env.Code)

	env = s.do(s.api, http.MethodPost, "/api/v1/menus", "", gin.H{"name": "", "order": -1})
	require.Equal(t, resp.CodeBadRequest, env.Code)
	errs := decode[struct {
		Errors map[string]string `json:"errors"`
	}](t, env)
	require.Equal(t, "Name cannot be blank", errs.Errors["name"])
	require.Equal(t, "Order must be a positive integer or zero", errs.Errors["order"])

	env = s.do(s.api, http.MethodPost, "/api/v1/menus", "", "not an object")
	require.Equal(t, resp.CodeBadRequest, env.Code)

	env = s.do(s.api, http.MethodGet, "/api/v1/menus", "", nil)
	require.Equal(t, resp.CodeOK, env.Code)
	require.Len(t, decode[[]menuOut](t, env), 1)

	env = s.do(s.api, http.MethodGet, "/api/v1/menus/99", "", nil)
	require.Equal(t, resp.CodeNotFound, env.Code)
	require.Equal(t, `Menu item "99" not found`, env.Msg)

	env = s.do(s.api, http.MethodGet, "/api/v1/menus/abc", "", nil)
	require.Equal(t, resp.CodeBadRequest, env.Code)

	// PUT 全量覆盖，没传的 order / description 被清空
	path := fmt.Sprintf("/api/v1/menus/%d", pizza.ID)
	env = s.do(s.api, http.MethodPut, path, "", gin.H{"name": "Pizza Margherita"})
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	updated := decode[menuOut](t, env)
	require.Equal(t, "Pizza Margherita", updated.Name)
	require.Nil(t, updated.Order)
	require.Nil(t, updated.Description)
	require.NotNil(t, updated.Modified)
	require.Equal(t, pizza.Created, updated.Created)

	env = s.do(s.api, http.MethodDelete, path, "", nil)
	require.Equal(t, resp.CodeOK, env.Code)
	require.JSONEq(t, `{"message":"Menu item deleted"}`, string(env.Data))

	env = s.do(s.api, http.MethodGet, path, "", nil)
	require.Equal(t, resp.CodeNotFound, env.Code)
	env = s.do(s.api, http.MethodDelete, path, "", nil)
	require.Equal(t, resp.CodeNotFound, env.Code)
}

func TestDeletedMenuFreesOrder(t *testing.T) {
	s := newTestServer(t)

	env := s.do(s.api, http.MethodPost, "/api/v1/menus", "", gin.H{"name": "Pizza", "order": 1})
	require.Equal(t, resp.CodeOK, env.Code)
	pizza := decode[menuOut](t, env)

	env = s.do(s.api, http.MethodDelete, fmt.Sprintf("/api/v1/menus/%d", pizza.ID), "", nil)
	require.Equal(t, resp.CodeOK, env.Code)

	env = s.do(s.api, http.MethodPost, "/api/v1/menus", "", gin.H{"name": "Pasta", "order": 1})
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)

	// 回收站里的菜单 order 已被占用，不能恢复
	token := s.createAdmin("root@example.com")
	env = s.do(s.admin, http.MethodPost, fmt.Sprintf("/admin/v1/menus/%d/restore", pizza.ID), token, nil)
	require.Equal(t, resp.CodeConflict, env.Code)
}

func TestAccountFlow(t *testing.T) {
	s := newTestServer(t)

	env := s.do(s.api, http.MethodPost, "/api/v1/registration", "", gin.H{
		"email": " Jane@Example.com", "password": "secret1", "roles": []string{domain.RoleAdmin},
	})
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	jane := decode[userOut](t, env)
	require.Equal(t, "jane@example.com", jane.Email)
	require.Equal(t, []string{domain.RoleUser}, jane.Roles)
	require.NotContains(t, string(env.Data), "password")

	env = s.do(s.api, http.MethodPost, "/api/v1/registration", "", gin.H{"email": "jane@example.com", "password": "secret1"})
	require.Equal(t, resp.CodeConflict, env.Code)

	env = s.do(s.api, http.MethodPost, "/api/v1/registration", "", gin.H{"email": "nope", "password": "1"})
	require.Equal(t, resp.CodeBadRequest, env.Code)

	env = s.do(s.api, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "jane@example.com", "password": "wrong"})
	require.Equal(t, resp.CodeUnauthorized, env.Code)

	env = s.do(s.api, http.MethodGet, "/api/v1/me", "", nil)
	require.Equal(t, resp.CodeUnauthorized, env.Code)

	token := s.login("jane@example.com", "secret1")
	env = s.do(s.api, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	require.Equal(t, jane.ID, decode[userOut](t, env).ID)

	// 普通用户拿不到管理端
	env = s.do(s.admin, http.MethodGet, "/admin/v1/users", token, nil)
	require.Equal(t, resp.CodeForbidden, env.Code)

	env = s.do(s.api, http.MethodPut, "/api/v1/me", token, gin.H{"email": "jane.doe@example.com", "password": "secret2"})
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	require.Equal(t, "jane.doe@example.com", decode[userOut](t, env).Email)
	s.login("jane.doe@example.com", "secret2")

	env = s.do(s.api, http.MethodDelete, "/api/v1/me", token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	require.JSONEq(t, `{"message":"Account deleted"}`, string(env.Data))

	// token 还没过期，但账号已经软删
	env = s.do(s.api, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, resp.CodeUnauthorized, env.Code)
	require.Equal(t, "account disabled", env.Msg)

	env = s.do(s.api, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "jane.doe@example.com", "password": "secret2"})
	require.Equal(t, resp.CodeUnauthorized, env.Code)
}

func TestAdminTrashAndUsers(t *testing.T) {
	s := newTestServer(t)
	token := s.createAdmin("root@example.com")

	env := s.do(s.admin, http.MethodGet, "/admin/v1/menus/trash", "", nil)
	require.Equal(t, resp.CodeUnauthorized, env.Code)

	env = s.do(s.api, http.MethodPost, "/api/v1/menus", "", gin.H{"name": "Pizza", "order": 1})
	require.Equal(t, resp.CodeOK, env.Code)
	pizza := decode[menuOut](t, env)
	env = s.do(s.api, http.MethodDelete, fmt.Sprintf("/api/v1/menus/%d", pizza.ID), "", nil)
	require.Equal(t, resp.CodeOK, env.Code)

	env = s.do(s.admin, http.MethodGet, "/admin/v1/menus/trash", token, nil)
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	trash := decode[[]menuOut](t, env)
	require.Len(t, trash, 1)
	require.NotNil(t, trash[0].Deleted)

	env = s.do(s.admin, http.MethodPost, fmt.Sprintf("/admin/v1/menus/%d/restore", pizza.ID), token, nil)
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	require.Nil(t, decode[menuOut](t, env).Deleted)

	env = s.do(s.api, http.MethodGet, fmt.Sprintf("/api/v1/menus/%d", pizza.ID), "", nil)
	require.Equal(t, resp.CodeOK, env.Code)

	env = s.do(s.admin, http.MethodDelete, fmt.Sprintf("/admin/v1/menus/%d/purge", pizza.ID), token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	env = s.do(s.admin, http.MethodDelete, fmt.Sprintf("/admin/v1/menus/%d/purge", pizza.ID), token, nil)
	require.Equal(t, resp.CodeNotFound, env.Code)

	// 用户管理
	env = s.do(s.api, http.MethodPost, "/api/v1/registration", "", gin.H{"email": "jane@example.com", "password": "secret1"})
	require.Equal(t, resp.CodeOK, env.Code)
	jane := decode[userOut](t, env)

	env = s.do(s.admin, http.MethodPost, fmt.Sprintf("/admin/v1/users/%d/ban", jane.ID), token, nil)
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	require.NotNil(t, decode[userOut](t, env).Deleted)

	type page struct {
		Total int64     `json:"total"`
		Items []userOut `json:"items"`
	}
	env = s.do(s.admin, http.MethodGet, "/admin/v1/users", token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	require.EqualValues(t, 1, decode[page](t, env).Total)

	env = s.do(s.admin, http.MethodGet, "/admin/v1/users?with_deleted=true&q=jane", token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	p := decode[page](t, env)
	require.EqualValues(t, 1, p.Total)
	require.Equal(t, "jane@example.com", p.Items[0].Email)

	env = s.do(s.admin, http.MethodPost, fmt.Sprintf("/admin/v1/users/%d/restore", jane.ID), token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	env = s.do(s.admin, http.MethodDelete, fmt.Sprintf("/admin/v1/users/%d", jane.ID), token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	env = s.do(s.admin, http.MethodPost, fmt.Sprintf("/admin/v1/users/%d/restore", jane.ID), token, nil)
	require.Equal(t, resp.CodeNotFound, env.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"ok":1}`, w.Body.String())

	s.do(s.api, http.MethodGet, "/api/v1/menus", "", nil)
	w = httptest.NewRecorder()
	s.api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), `menus_api_http_requests_total{method="GET",path="/api/v1/menus",server="api"`))
}

func TestBannedAdminLosesAccess(t *testing.T) {
	s := newTestServer(t)
	alice := s.createAdmin("alice@example.com")
	bob := s.createAdmin("bob@example.com")

	env := s.do(s.api, http.MethodGet, "/api/v1/me", alice, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	aliceID := decode[userOut](t, env).ID

	env = s.do(s.admin, http.MethodGet, "/admin/v1/users", alice, nil)
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)

	env = s.do(s.admin, http.MethodPost, fmt.Sprintf("/admin/v1/users/%d/ban", aliceID), bob, nil)
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)

	env = s.do(s.admin, http.MethodGet, "/admin/v1/users", alice, nil)
	require.Equal(t, resp.CodeUnauthorized, env.Code)
	env = s.do(s.admin, http.MethodPost, fmt.Sprintf("/admin/v1/users/%d/restore", aliceID), alice, nil)
	require.Equal(t, resp.CodeUnauthorized, env.Code)

	// 恢复后旧 token 重新可用
	env = s.do(s.admin, http.MethodPost, fmt.Sprintf("/admin/v1/users/%d/restore", aliceID), bob, nil)
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	env = s.do(s.admin, http.MethodGet, "/admin/v1/users", alice, nil)
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)

	// 彻底删除后同样失效
	env = s.do(s.admin, http.MethodDelete, fmt.Sprintf("/admin/v1/users/%d", aliceID), bob, nil)
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	env = s.do(s.admin, http.MethodGet, "/admin/v1/menus/trash", alice, nil)
	require.Equal(t, resp.CodeUnauthorized, env.Code)
}

func TestDemotedAdminIsForbidden(t *testing.T) {
	s := newTestServer(t)
	token := s.createAdmin("root@example.com")

	ctx := context.Background()
	u, err := s.app.Users.Authenticate(ctx, "root@example.com", "secret1")
	require.NoError(t, err)
	_, err = s.app.Users.Update(ctx, u, dto.UserInput{
		Email: "root@example.com", Password: "secret1", Roles: []string{domain.RoleUser},
	})
	require.NoError(t, err)

	// token 里仍带 ROLE_ADMIN，以库里为准
	env := s.do(s.admin, http.MethodGet, "/admin/v1/users", token, nil)
	require.Equal(t, resp.CodeForbidden, env.Code)
	env = s.do(s.api, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, resp.CodeOK, env.Code)
	require.Equal(t, []string{domain.RoleUser}, decode[userOut](t, env).Roles)
}
