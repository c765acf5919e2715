package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/branch-pos-api/internal/application/auth"
	"github.com/jhoicas/branch-pos-api/internal/application/checkout"
	"github.com/jhoicas/branch-pos-api/internal/application/lowstock"
	"github.com/jhoicas/branch-pos-api/internal/application/report"
	"github.com/jhoicas/branch-pos-api/internal/application/usecase"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
	"github.com/jhoicas/branch-pos-api/pkg/metrics"
)

// HealthCheck verifica una dependencia (base de datos, redis) para /health.
type HealthCheck func(ctx context.Context) error

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Resolver    SessionResolver
	AuthSvc     *auth.Service
	BranchUC    *usecase.BranchUseCase
	ProductUC   *usecase.ProductUseCase
	UserUC      *usecase.UserUseCase
	DashboardUC *usecase.DashboardUseCase
	Checkout    *checkout.Engine
	Monitor     *lowstock.Monitor
	Reports     *report.Service

	ServiceName string
	CORSOrigins string
	Health      map[string]HealthCheck
	Gatherer    prometheus.Gatherer // nil = sin /metrics
	Log         *logger.Logger
	Metrics     *metrics.Metrics
}

// Router registra middlewares y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(requestid.New())
	app.Use(RequestLogger(deps.Log, deps.Metrics))
	if deps.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: deps.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))
	}

	app.Get("/health", healthHandler(deps.ServiceName, deps.Health))
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	authMW := AuthMiddleware(deps.Resolver)
	adminOnly := RequireRole(entity.RoleAdmin)
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleUser)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthSvc, deps.Log)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/password-reset", authHandler.RequestPasswordReset)
	authGroup.Post("/password-reset/confirm", authHandler.ConfirmPasswordReset)
	authGroup.Post("/logout", authMW, authHandler.Logout)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", authMW, anyRole)

	protected.Get("/me", authHandler.Me)
	protected.Get("/me/menu", authHandler.Menu)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.Log)
	protected.Get("/dashboard/stats", dashboardHandler.Stats)

	branchHandler := NewBranchHandler(deps.BranchUC, deps.Log)
	branches := protected.Group("/branches")
	branches.Get("/", branchHandler.List)
	branches.Get("/:id", branchHandler.GetByID)
	branches.Post("/", adminOnly, branchHandler.Create)
	branches.Put("/:id", adminOnly, branchHandler.Update)
	branches.Delete("/:id", adminOnly, branchHandler.Delete)

	productHandler := NewProductHandler(deps.ProductUC, deps.Log)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	cartHandler := NewCartHandler(deps.Checkout, deps.Log)
	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.Get)
	cart.Delete("/", cartHandler.Discard)
	cart.Put("/branch", cartHandler.SelectBranch)
	cart.Post("/lines", cartHandler.AddLine)
	cart.Patch("/lines/:productId", cartHandler.UpdateLine)
	cart.Delete("/lines/:productId", cartHandler.RemoveLine)
	cart.Post("/checkout", cartHandler.Checkout)

	stockHandler := NewStockAlertHandler(deps.Monitor, deps.Log)
	protected.Get("/stock-alerts", adminOnly, stockHandler.List)

	reportHandler := NewReportHandler(deps.Reports, deps.Log)
	protected.Get("/reports/sales", reportHandler.Sales)
	protected.Get("/reports/sales/export", reportHandler.Export)

	userHandler := NewUserHandler(deps.UserUC, deps.Log)
	users := protected.Group("/users", adminOnly)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Post("/", userHandler.Create)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)
}

// healthHandler responde 200 si todas las dependencias responden y 503 si alguna falla.
func healthHandler(service string, checks map[string]HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		status := fiber.StatusOK
		deps := fiber.Map{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = fiber.StatusServiceUnavailable
				deps[name] = "down"
				continue
			}
			deps[name] = "ok"
		}
		state := "ok"
		if status != fiber.StatusOK {
			state = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{"status": state, "service": service, "dependencies": deps})
	}
}
