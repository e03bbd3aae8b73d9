package employer

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	companysvc "ecocommute-backend/internal/application/companies"
	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/middleware"
	"ecocommute-backend/internal/pkg/constants"
	"ecocommute-backend/internal/pkg/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployerConsole(t *testing.T) {
	db := testdb.Open(t)
	company := &domain.Company{Name: "Acme", Approved: true}
	require.NoError(t, db.Create(company).Error)
	boss := &domain.User{Username: "boss", PasswordHash: "x", Role: constants.Employer, CompanyID: &company.CompanyID, Status: domain.UserStatusPending}
	worker := &domain.User{Username: "worker", PasswordHash: "x", Role: constants.Employee, CompanyID: &company.CompanyID, Status: domain.UserStatusPending}
	require.NoError(t, db.Create(boss).Error)
	require.NoError(t, db.Create(worker).Error)

	h := &Handlers{Companies: &companysvc.Service{DB: db}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		middleware.SetUser(c, &middleware.Principal{UserID: boss.UserID, Role: constants.Employer, CompanyID: &company.CompanyID})
		return c.Next()
	})
	app.Get("/employees/pending", h.PendingEmployees)
	app.Get("/employees/my-company", h.AllEmployees)
	app.Patch("/employees/:id/approve", h.ApproveEmployee)
	app.Get("/status", h.Status)
	app.Get("/dashboard", h.Dashboard)

	get := func(method, path string) (int, map[string]interface{}) {
		resp, err := app.Test(httptest.NewRequest(method, path, nil))
		require.NoError(t, err)
		var out map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp.StatusCode, out
	}

	code, out := get("GET", "/employees/pending")
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"], 1)

	code, _ = get("PATCH", "/employees/"+worker.UserID.String()+"/approve")
	assert.Equal(t, fiber.StatusOK, code)
	code, out = get("PATCH", "/employees/"+worker.UserID.String()+"/approve")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Employee not found or already approved", out["error"].(map[string]interface{})["message"])
	code, _ = get("PATCH", "/employees/"+uuid.NewString()+"/approve")
	assert.Equal(t, fiber.StatusNotFound, code)

	code, out = get("GET", "/employees/pending")
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, out["data"])
	code, out = get("GET", "/employees/my-company")
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"], 1)

	code, out = get("GET", "/status")
	require.Equal(t, fiber.StatusOK, code)
	st := out["data"].(map[string]interface{})
	assert.Equal(t, "approved", st["employer_status"])
	assert.Equal(t, "Acme", st["company_name"])

	code, out = get("GET", "/dashboard")
	require.Equal(t, fiber.StatusOK, code)
	d := out["data"].(map[string]interface{})
	assert.Len(t, d["leaderboard"], 1)
	assert.Equal(t, float64(0), d["total_credits"])
}
