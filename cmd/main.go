package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/redis/go-redis/v9"

	"volunteerhub/internal/config"
	"volunteerhub/internal/database"
	"volunteerhub/internal/i18n"
	"volunteerhub/internal/logger"
	"volunteerhub/internal/middleware"
	"volunteerhub/internal/repository"
	"volunteerhub/internal/service"
	"volunteerhub/internal/session"
	"volunteerhub/internal/storage"
	"volunteerhub/internal/telemetry"
	"volunteerhub/internal/validator"
	"volunteerhub/internal/web"
)

func main() {
	if err := run(context.Background()); err != nil {
		panic(err)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := config.NewConfig()

	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		return err
	}

	log := logger.New(cfg)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shut down telemetry", "error", err)
		}
	}()

	translator, err := i18n.NewTranslator(i18n.AR)
	if err != nil {
		log.Error("Failed to load translations", "error", err)
		return err
	}

	db, err := database.Connect(ctx, cfg.Database.ConnString())
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		return err
	}
	defer db.Close()

	repo := repository.NewPostgresRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		log.Error("Failed to run migrations", "error", err)
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	sessionStorage := fiberpostgres.New(fiberpostgres.Config{
		ConnectionURI: cfg.Database.ConnString(),
		Table:         "sessions",
	})
	sessions := session.NewManager(sessionStorage, cfg.Session)

	certificates, err := storage.NewFromEnv()
	if err != nil {
		log.Error("Failed to initialize certificate storage", "error", err)
		return err
	}

	v := validator.New()
	eventService := service.NewEventService(repo, v)
	registrationService := service.NewRegistrationService(repo)
	limiterService := service.NewRateLimiter(redisClient)

	handler := web.NewHandler(log, repo, eventService, registrationService, limiterService, sessions, certificates)

	app := fiber.New(fiber.Config{
		AppName:      cfg.Telemetry.ServiceName,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(recover.New())
	app.Use(telemetry.FiberMiddleware(cfg.Telemetry.ServiceName))
	app.Use(middleware.Logger())
	app.Use(middleware.I18n(translator, sessions))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf_token",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     time.Hour,
	}))

	// Public pages
	app.Get("/", handler.ShowHomePage)
	app.Get("/events", handler.ShowEventsPage)
	app.Get("/events/:id", handler.ShowEventPage)
	app.Get("/lang/:lang", handler.SetLanguage)

	// Auth
	app.Get("/register", handler.ShowRegisterPage)
	app.Post("/register", limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Hour,
	}), handler.Register)
	app.Get("/login", handler.ShowLoginPage)
	app.Post("/login", handler.Login)
	app.Post("/logout", handler.Logout)

	// Volunteer actions
	volunteer := app.Group("", middleware.RequireUser(sessions))
	volunteer.Post("/events/:id/register", handler.RegisterForEvent)
	volunteer.Post("/events/:id/cancel", handler.CancelRegistration)
	volunteer.Post("/events/:id/submit-hours", handler.SubmitHours)
	volunteer.Get("/events/:id/calendar.ics", handler.EventICS)
	volunteer.Get("/dashboard", handler.ShowDashboardPage)
	volunteer.Get("/certificates/:id", handler.CertificatePDF)

	// Admin
	admin := app.Group("/admin", middleware.RequireAdmin(sessions))
	admin.Get("", handler.ShowAdminPage)
	admin.Post("/events", handler.CreateEvent)
	admin.Get("/events/:id/edit", handler.ShowEditEventPage)
	admin.Post("/events/:id/edit", handler.UpdateEvent)
	admin.Post("/events/:id/delete", handler.DeleteEvent)
	admin.Post("/registrations/:id/approve", handler.ApproveHours)
	admin.Post("/registrations/:id/reject", handler.RejectHours)
	admin.Post("/registrations/:id/mark", handler.MarkAttendance)
	admin.Get("/export.csv", handler.ExportRegistrationsCSV)
	admin.Get("/export-hours.csv", handler.ExportApprovedHoursCSV)

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		log.Info("Starting HTTP server...", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Error("HTTP server stopped", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("Failed to shut down server cleanly", "error", err)
	}

	log.Info("Shutdown complete")
	return nil
}
