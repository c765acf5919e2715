package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	_ "github.com/jhoicas/branch-pos-api/docs"
	"github.com/jhoicas/branch-pos-api/internal/application/auth"
	"github.com/jhoicas/branch-pos-api/internal/application/checkout"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/application/lowstock"
	"github.com/jhoicas/branch-pos-api/internal/application/report"
	"github.com/jhoicas/branch-pos-api/internal/application/usecase"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/mail"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/migrations"
	infrapdf "github.com/jhoicas/branch-pos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/branch-pos-api/internal/infrastructure/redis"
	infraxlsx "github.com/jhoicas/branch-pos-api/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/branch-pos-api/internal/interfaces/http"
	"github.com/jhoicas/branch-pos-api/pkg/config"
	"github.com/jhoicas/branch-pos-api/pkg/logger"
	"github.com/jhoicas/branch-pos-api/pkg/metrics"
)

// @title			Branch POS API
// @version		1.0
// @description	Punto de venta por sucursal: catálogo, carrito, stock bajo y reportes de ventas.
// @BasePath		/api
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if err := migrations.AutoRun(ctx, cfg.DB.AutoMigrate, pool, log.Named("migrations")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	branchRepo := postgres.NewBranchRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	dashboardRepo := postgres.NewDashboardRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	health := map[string]httpRouter.HealthCheck{
		"database": func(ctx context.Context) error { return pool.Ping(ctx) },
	}

	// Redis comparte carritos, revocaciones y contadores de login entre instancias;
	// sin Redis cada instancia los guarda en memoria.
	var (
		cartStore   checkout.CartStore     = checkout.NewMemoryStore()
		revoker     identity.TokenRevoker  = identity.NewMemoryRevoker()
		throttle    auth.Throttle          = auth.NewMemoryThrottle(cfg.Auth.MaxFailedLogins, cfg.Auth.LockoutWindow)
		redisClient *infraredis.Client
	)
	if cfg.Redis.Enabled() {
		redisClient, err = infraredis.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		cartStore = infraredis.NewCartStore(redisClient, cfg.Redis.CartTTL, log.Named("cart_store"))
		revoker = infraredis.NewTokenRevoker(redisClient)
		throttle = infraredis.NewLoginThrottle(redisClient, cfg.Auth.MaxFailedLogins, cfg.Auth.LockoutWindow)
		health["redis"] = redisClient.Ping
	} else {
		log.Warn().Msg("Redis no configurado: carritos y sesiones revocadas quedan en memoria")
	}

	var mailer auth.Mailer
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTPMailer(cfg.SMTP)
	} else {
		log.Warn().Msg("SMTP no configurado: los enlaces de restablecimiento solo se registran en el log")
	}

	authSvc := auth.NewService(userRepo, revoker, throttle, mailer, auth.Config{
		Secret:          cfg.JWT.Secret,
		Issuer:          cfg.JWT.Issuer,
		ExpMinutes:      cfg.JWT.Expiration,
		ResetExpMinutes: cfg.JWT.ResetExpiration,
		PublicURL:       cfg.App.PublicURL,
	}, log.Named("auth"))

	listener := postgres.NewProductListener(pool, log.Named("product_listener"))
	monitor := lowstock.NewMonitor(productRepo, listener, cfg.Monitor.RefreshInterval, log.Named("lowstock"), m)
	engine := checkout.NewEngine(cartStore, productRepo, txRunner, log.Named("checkout"), m)
	reports := report.NewService(
		report.NewAggregator(orderRepo, cfg.App.Location()),
		map[string]report.Exporter{
			"pdf":  infrapdf.NewSalesReportPDF(),
			"xlsx": infraxlsx.NewSalesReportXLSX(),
		},
	)

	go listener.Run(ctx)
	go monitor.Run(ctx)

	bodyLimit := cfg.HTTP.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 4
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Branch POS API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Resolver:    identity.NewResolver(userRepo, revoker, cfg.JWT.Secret),
		AuthSvc:     authSvc,
		BranchUC:    usecase.NewBranchUseCase(branchRepo),
		ProductUC:   usecase.NewProductUseCase(productRepo),
		UserUC:      usecase.NewUserUseCase(userRepo),
		DashboardUC: usecase.NewDashboardUseCase(dashboardRepo),
		Checkout:    engine,
		Monitor:     monitor,
		Reports:     reports,
		ServiceName: cfg.App.Name,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Health:      health,
		Gatherer:    reg,
		Log:         log.Named("http"),
		Metrics:     m,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = app.ShutdownWithContext(shutdownCtx)
	stop()
	err = multierr.Append(err, redisClient.Close())
	pool.Close()
	if err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
