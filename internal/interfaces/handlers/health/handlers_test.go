package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	healthsvc "ecocommute-backend/internal/application/health"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHealth(t *testing.T) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	h := &Handlers{Service: &healthsvc.Service{Rdb: rdb}, HealthAdminKey: "admin-key"}
	app := fiber.New()
	app.Get("/health/json", h.JSON)
	app.Get("/health/errors", h.Errors)
	app.Get("/health/reset", h.Reset)
	return app, mr
}

func TestJSON_ReportsRedis(t *testing.T) {
	app, mr := setupHealth(t)
	mr.Set(healthsvc.KeyReqTotal, "4")
	mr.Set(healthsvc.KeyReqErrors, "1")

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "issue", out["status"])
	deps := out["dependencies"].(map[string]interface{})
	assert.Equal(t, "connected", deps["redis"].(map[string]interface{})["status"])
	assert.Equal(t, "disconnected", deps["database"].(map[string]interface{})["status"])
	traffic := out["traffic"].(map[string]interface{})
	assert.Equal(t, float64(3), traffic["successCount"])
}

func TestErrorsAndReset(t *testing.T) {
	app, mr := setupHealth(t)
	_, err := mr.Lpush(healthsvc.KeyErrorLog, `{"path":"/api/x","status":500,"message":"boom"}`)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/errors", nil))
	require.NoError(t, err)
	var entries []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0]["message"])

	resp, err = app.Test(httptest.NewRequest("GET", "/health/reset?key=wrong", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/health/reset?key=admin-key", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, mr.Exists(healthsvc.KeyErrorLog))
	assert.True(t, mr.Exists(healthsvc.KeyStartTime))
}
