package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authsvc "ecocommute-backend/internal/application/auth"
	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/infrastructure/cache"
	"ecocommute-backend/internal/middleware"
	"ecocommute-backend/internal/pkg/constants"
	"ecocommute-backend/internal/pkg/testdb"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := authsvc.NewTokens("handler-secret", time.Hour, &cache.TokenDenylist{Rdb: rdb})
	h := &Handlers{Service: &authsvc.Service{DB: db, Tokens: tokens}}

	app := fiber.New()
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	secured := app.Group("", middleware.RequireAuth(tokens))
	secured.Post("/logout", h.Logout)
	secured.Get("/me", h.Me)
	secured.Get("/employee/status", h.Status)
	secured.Get("/users", h.Users)
	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func authed(t *testing.T, app *fiber.App, method, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRegister_Validation(t *testing.T) {
	app, _ := setupAuthApp(t)

	resp, out := postJSON(t, app, "/register", map[string]string{"username": "boss", "password": "secret123", "role": constants.Employer})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "company is required", out["error"].(map[string]interface{})["message"])

	resp, _ = postJSON(t, app, "/register", map[string]string{"company": "Acme", "username": "root", "password": "secret123", "role": constants.Admin})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = postJSON(t, app, "/register", map[string]string{"company": "Acme", "username": "x", "password": "secret123", "role": constants.Employer})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRegisterLoginLogout(t *testing.T) {
	app, db := setupAuthApp(t)

	resp, _ := postJSON(t, app, "/register", map[string]string{"company": "Acme", "username": "boss", "password": "secret123", "role": constants.Employer})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = postJSON(t, app, "/register", map[string]string{"company": "Acme", "username": "boss", "password": "secret123", "role": constants.Employer})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	login := map[string]string{"company": "Acme", "username": "boss", "password": "secret123", "role": constants.Employer}
	resp, out := postJSON(t, app, "/login", login)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Your account is not approved yet", out["error"].(map[string]interface{})["message"])

	require.NoError(t, db.Model(&domain.User{}).Where("username = ?", "boss").Update("status", domain.UserStatusApproved).Error)
	require.NoError(t, db.Model(&domain.Company{}).Where("name = ?", "Acme").Update("approved", true).Error)

	resp, _ = postJSON(t, app, "/login", map[string]string{"company": "Acme", "username": "boss", "password": "wrong-pass1", "role": constants.Employer})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, out = postJSON(t, app, "/login", login)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := out["data"].(map[string]interface{})["token"].(string)
	require.NotEmpty(t, token)

	resp = authed(t, app, "GET", "/me", token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = authed(t, app, "GET", "/employee/status", token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = authed(t, app, "GET", "/users", token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = authed(t, app, "POST", "/logout", token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = authed(t, app, "GET", "/me", token)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_MissingFields(t *testing.T) {
	app, _ := setupAuthApp(t)
	resp, out := postJSON(t, app, "/login", map[string]string{"username": "boss"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username, password, and role required", out["error"].(map[string]interface{})["message"])
}
