package companies

import (
	"bytes"
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
	"gorm.io/gorm"
)

func setupCompanies(t *testing.T, p *middleware.Principal) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t)
	h := &Handlers{Service: &companysvc.Service{DB: db}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		middleware.SetUser(c, p)
		return c.Next()
	})
	app.Post("/approve/company", h.Create)
	app.Post("/approve/companies", h.BulkCreate)
	app.Patch("/approve/company/:id", h.Approve)
	app.Patch("/approve/user/:id/approve", h.ApproveEmployer)
	app.Get("/approve", h.ListByApproval)
	app.Get("/company/all", h.All)
	app.Get("/company/me", h.Mine)
	app.Get("/company/contributions", h.Contributions)
	app.Get("/company/logs", h.Logs)
	app.Get("/company/leaderboard/top", h.TopEmployees)
	return app, db
}

func send(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var req = httptest.NewRequest(method, path, nil)
	if body != nil {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestAdminOnboarding(t *testing.T) {
	app, db := setupCompanies(t, &middleware.Principal{UserID: uuid.New(), Role: constants.Admin})

	code, _ := send(t, app, "POST", "/approve/company", map[string]interface{}{"name": "Acme", "credits": 100})
	require.Equal(t, fiber.StatusCreated, code)

	code, out := send(t, app, "POST", "/approve/company", map[string]interface{}{"name": "Acme"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Company already exists", out["error"].(map[string]interface{})["message"])

	code, _ = send(t, app, "POST", "/approve/company", map[string]interface{}{"credits": 5})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = send(t, app, "POST", "/approve/companies", map[string]interface{}{"companies": []interface{}{}})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, out = send(t, app, "POST", "/approve/companies", map[string]interface{}{
		"companies": []map[string]interface{}{{"name": "Acme"}, {"name": "Beta", "credits": 20}, {"name": ""}},
	})
	require.Equal(t, fiber.StatusOK, code)
	results := out["data"].(map[string]interface{})["results"].([]interface{})
	require.Len(t, results, 2)
	assert.Equal(t, "already exists", results[0].(map[string]interface{})["status"])
	assert.Equal(t, "created", results[1].(map[string]interface{})["status"])

	code, out = send(t, app, "GET", "/approve?approved=false", nil)
	require.Equal(t, fiber.StatusOK, code)
	pending := out["data"].([]interface{})
	require.Len(t, pending, 1)
	acmeID := pending[0].(map[string]interface{})["company_id"].(string)

	code, _ = send(t, app, "PATCH", "/approve/company/"+acmeID, nil)
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = send(t, app, "PATCH", "/approve/company/"+uuid.NewString(), nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, out = send(t, app, "GET", "/company/all", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(2), out["data"].(map[string]interface{})["total"])

	employer := &domain.User{Username: "boss", PasswordHash: "x", Role: constants.Employer, Status: domain.UserStatusPending}
	require.NoError(t, db.Create(employer).Error)
	code, _ = send(t, app, "PATCH", "/approve/user/"+employer.UserID.String()+"/approve", nil)
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = send(t, app, "PATCH", "/approve/user/"+uuid.NewString()+"/approve", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = send(t, app, "GET", "/company/me", nil)
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestEmployerLeaderboards(t *testing.T) {
	companyID := uuid.New()
	app, db := setupCompanies(t, &middleware.Principal{UserID: uuid.New(), Role: constants.Employer, CompanyID: &companyID})
	require.NoError(t, db.Create(&domain.Company{CompanyID: companyID, Name: "Acme", Approved: true}).Error)

	code, out := send(t, app, "GET", "/company/me", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Acme", out["data"].(map[string]interface{})["name"])

	for _, path := range []string{"/company/contributions", "/company/logs", "/company/leaderboard/top"} {
		code, out = send(t, app, "GET", path, nil)
		assert.Equal(t, fiber.StatusOK, code, path)
		assert.Empty(t, out["data"], path)
	}
}
