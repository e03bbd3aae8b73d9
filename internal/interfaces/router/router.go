package router

import (
	"errors"
	"net/http"
	"time"

	authsvc "ecocommute-backend/internal/application/auth"
	companysvc "ecocommute-backend/internal/application/companies"
	healthsvc "ecocommute-backend/internal/application/health"
	"ecocommute-backend/internal/application/settlement"
	reqsvc "ecocommute-backend/internal/application/traderequests"
	tradesvc "ecocommute-backend/internal/application/trades"
	travelsvc "ecocommute-backend/internal/application/travel"
	"ecocommute-backend/internal/config"
	"ecocommute-backend/internal/infrastructure/cache"
	"ecocommute-backend/internal/infrastructure/database"
	"ecocommute-backend/internal/infrastructure/metrics"
	"ecocommute-backend/internal/infrastructure/routing"
	adminhandler "ecocommute-backend/internal/interfaces/handlers/admin"
	authhandler "ecocommute-backend/internal/interfaces/handlers/auth"
	companyhandler "ecocommute-backend/internal/interfaces/handlers/companies"
	employerhandler "ecocommute-backend/internal/interfaces/handlers/employer"
	healthhandler "ecocommute-backend/internal/interfaces/handlers/health"
	reqhandler "ecocommute-backend/internal/interfaces/handlers/traderequests"
	tradehandler "ecocommute-backend/internal/interfaces/handlers/trades"
	travelhandler "ecocommute-backend/internal/interfaces/handlers/travel"
	"ecocommute-backend/internal/middleware"
	"ecocommute-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the long-lived connections the app is built on. Rdb and Metrics may be nil.
type Deps struct {
	DB      *gorm.DB
	Rdb     *redis.Client
	Metrics *metrics.Metrics
}

// CreateApp builds the Fiber app with all global middleware and route registration.
func CreateApp(cfg *config.Config, deps Deps) (*fiber.App, error) {
	if deps.DB == nil {
		return nil, errors.New("router: database is required")
	}
	db := deps.DB

	health := &healthsvc.Service{Rdb: deps.Rdb, DB: &database.Pinger{DB: db}, Upstreams: map[string]string{}}
	var distancer travelsvc.Distancer
	if cfg.RoutingAPIKey != "" {
		distancer = routing.New(cfg.RoutingBaseURL, cfg.RoutingAPIKey, cfg.RoutingRatePerSec)
		health.Upstreams["routing"] = cfg.RoutingBaseURL
		health.HTTP = &http.Client{Timeout: 3 * time.Second}
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.NewErrorHandler(health),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
		AllowLocalhost: !cfg.IsProduction(),
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger(deps.Metrics))
	app.Use(middleware.HealthMarker(health))

	hh := &healthhandler.Handlers{Service: health, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/health/reset", hh.Reset)
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.Handler())
	}

	var revoked authsvc.Revoker
	if deps.Rdb != nil {
		revoked = &cache.TokenDenylist{Rdb: deps.Rdb}
	}
	tokens := authsvc.NewTokens(cfg.JWTSecret, cfg.JWTTTL, revoked)

	authService := &authsvc.Service{DB: db, Tokens: tokens}
	companyService := &companysvc.Service{DB: db}
	tradeService := &tradesvc.Service{DB: db, Metrics: deps.Metrics}
	requestService := &reqsvc.Service{DB: db, Metrics: deps.Metrics}
	settlementService := &settlement.Service{DB: db, Metrics: deps.Metrics}
	travelService := &travelsvc.Service{DB: db, Distancer: distancer, Destination: cfg.CommuteDestination}

	requireAuth := middleware.RequireAuth(tokens)
	admin := middleware.RequireRole(constants.Admin)
	employer := middleware.RequireRole(constants.Employer)
	approved := middleware.RequireApprovedCompany(companyService)

	api := app.Group("/api")

	// Auth
	ah := &authhandler.Handlers{Service: authService}
	authGroup := api.Group("/auth")
	authGroup.Post("/register", ah.Register)
	authGroup.Post("/login", ah.Login)
	authGroup.Post("/logout", requireAuth, ah.Logout)
	authGroup.Get("/me", requireAuth, ah.Me)
	authGroup.Get("/users", requireAuth, ah.Users)
	authGroup.Get("/employee/status", requireAuth, ah.Status)

	// Company onboarding and approval
	ch := &companyhandler.Handlers{Service: companyService}
	eh := &employerhandler.Handlers{Companies: companyService}
	approveGroup := api.Group("/approve", requireAuth)
	approveGroup.Get("/", admin, ch.ListByApproval)
	approveGroup.Post("/company", admin, ch.Create)
	approveGroup.Post("/companies", admin, ch.BulkCreate)
	approveGroup.Patch("/company/:id", admin, ch.Approve)
	approveGroup.Patch("/user/:id/approve", admin, ch.ApproveEmployer)
	approveGroup.Patch("/employee/:id/approve", employer, eh.ApproveEmployee)
	approveGroup.Get("/employees/my-company", employer, eh.AllEmployees)

	companyGroup := api.Group("/company", requireAuth)
	companyGroup.Get("/me", ch.Mine)
	companyGroup.Get("/all", admin, ch.All)
	companyGroup.Get("/contributions", employer, ch.Contributions)
	companyGroup.Get("/logs", employer, ch.Logs)
	companyGroup.Get("/leaderboard/top", ch.TopEmployees)
	companyGroup.Get("/my/leaderboard", ch.Contributions)

	// Trade Advertisement Store
	th := &tradehandler.Handlers{Service: tradeService}
	rh := &reqhandler.Handlers{Service: requestService, Settlement: settlementService}
	tradeGroup := api.Group("/trades", requireAuth)
	tradeGroup.Post("/create", employer, approved, th.Create)
	tradeGroup.Get("/", admin, th.Audit)
	tradeGroup.Get("/ads/other", employer, th.OtherAds)
	tradeGroup.Get("/:tradeId/events", employer, th.Events)
	tradeGroup.Patch("/:tradeId/requests/:requestId/accept", employer, rh.Accept)

	// Trade Request Queue + Settlement Engine
	// Any company user may request and track requests; deciding on them is the employer's.
	requestGroup := api.Group("/trade-requests", requireAuth)
	requestGroup.Get("/mine", rh.Mine)
	requestGroup.Post("/:tradeId/request", approved, rh.Submit)
	requestGroup.Get("/:tradeId/requests", employer, rh.ForTrade)
	requestGroup.Patch("/:tradeId/requests/:requestId/accept", employer, rh.Accept)

	// Employer console
	employerGroup := api.Group("/employer", requireAuth, employer)
	employerGroup.Get("/employees/pending", eh.PendingEmployees)
	employerGroup.Patch("/employees/:id/approve", eh.ApproveEmployee)
	employerGroup.Get("/trades/history", th.History)
	employerGroup.Get("/status", eh.Status)
	employerGroup.Get("/dashboard", eh.Dashboard)

	// Travel
	trh := &travelhandler.Handlers{Service: travelService}
	travelGroup := api.Group("/travel", requireAuth)
	travelGroup.Post("/calculate", trh.Calculate)
	travelGroup.Post("/log", middleware.RequireRole(constants.Employee), trh.Log)
	travelGroup.Get("/user/:id", trh.UserLogs)

	// Admin
	adh := &adminhandler.Handlers{Companies: companyService}
	api.Get("/admin/stats", requireAuth, admin, adh.Stats)

	return app, nil
}
