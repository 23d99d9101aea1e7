package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"github.com/vidora/vidora-web/app/controllers"
	"github.com/vidora/vidora-web/app/repository"
	"github.com/vidora/vidora-web/internal/pkg/apiclient"
	"github.com/vidora/vidora-web/internal/pkg/billing"
	"github.com/vidora/vidora-web/internal/pkg/cache"
	"github.com/vidora/vidora-web/internal/pkg/config"
	"github.com/vidora/vidora-web/internal/pkg/env"
	"github.com/vidora/vidora-web/internal/pkg/hcaptcha"
	"github.com/vidora/vidora-web/internal/pkg/jobqueue"
	"github.com/vidora/vidora-web/internal/pkg/metrics/counter"
	"github.com/vidora/vidora-web/internal/pkg/paysession"
	"github.com/vidora/vidora-web/internal/pkg/reconcile"
	"github.com/vidora/vidora-web/internal/pkg/router"
	"github.com/vidora/vidora-web/internal/pkg/telemetry"
)

func main() {
	app, shutdown := NewApplication()

	go func() {
		if err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
	}
	shutdown()
}

// NewApplication builds the fiber app and starts the background workers.
// The returned func stops them again.
func NewApplication() (*fiber.App, func()) {
	env.SetupEnvFile()
	cache.SetupCache()

	shutdownTracing, err := telemetry.Setup(context.Background())
	if err != nil {
		log.Printf("Warning: tracing disabled: %v", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/vidora to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "views"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	engine := html.New(basePath+"views", ".html")
	engine.Reload(env.IsDev())

	// init fiber app
	app := fiber.New(fiber.Config{
		Views:     engine,
		BodyLimit: 1 << 20,
	})

	// ignore and cache favicon
	app.Use(favicon.New(favicon.Config{
		File:         basePath + "public/assets/icons/favicon.ico",
		URL:          "/favicon.ico",
		CacheControl: "public, max-age=604800",
	}))

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// static files
	app.Static("/", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
		Title:    "Vidora web API",
	}
	app.Use(swagger.New(openAPICfg))

	// backend + payment flow
	paymentCfg := config.GetPayment()
	client := apiclient.NewFromEnv()
	billingSvc := billing.NewService(client)
	repository.InitializeFactory(client)
	repos := repository.GetGlobalRepositories()

	jobs := jobqueue.GetManager()
	queue := jobs.GetQueue()
	queue.Register(jobqueue.JobTypeAttributionTrack, jobqueue.AttributionHandler(jobqueue.SinkFromEnv(client)))
	queue.Register(jobqueue.JobTypeUpgradeComplete, jobqueue.UpgradeCompleteHandler(billingSvc))
	jobs.Start()

	reconciler := reconcile.NewReconciler(
		billingSvc,
		jobqueue.RetryingCompleter{Upgrades: billingSvc, Queue: queue},
		reconcile.PolicyFrom(paymentCfg),
	)
	paySessions := paysession.NewRedisStore(cache.GetClient(), paymentCfg.SnapshotTTL)
	outcomes := counter.Default()
	monitor := reconcile.NewMonitor(reconciler, reconcile.NewRedisSnapshots(cache.GetClient(), paymentCfg.SnapshotTTL), outcomes)
	monitor.SetResolver(paysession.Resolver{Store: paySessions})
	monitor.Start()

	captcha := hcaptcha.NewFromEnv()

	// ROUTER
	router.InstallRouter(app, router.Controllers{
		Public:    controllers.NewPublicController(client, client),
		Signup:    controllers.NewSignupController(client, client, captcha, captcha.SiteKey, queue),
		Checkout:  controllers.NewCheckoutController(client, billingSvc, billingSvc, paySessions, monitor, env.GetEnvBool("PAYMENT_TEST_MODE", false)),
		Payment:   controllers.NewPaymentReturnController(monitor, paySessions, paymentCfg),
		Dashboard: controllers.NewDashboardController(client, client),
		Admin:     controllers.NewAdminController(outcomes, jobs, monitor, repos.Contacts),
		Resources: controllers.NewAdminResources(repos),
	})

	return app, func() {
		monitor.Stop()
		jobs.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Warning: tracing shutdown: %v", err)
		}
	}
}
