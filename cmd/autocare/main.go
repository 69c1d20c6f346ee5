package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"autocare/internal/api"
	"autocare/internal/booking"
	"autocare/internal/cache"
	"autocare/internal/config"
	"autocare/internal/domain"
	"autocare/internal/events"
	"autocare/internal/http/handlers"
	applog "autocare/internal/log"
	"autocare/internal/kv"
	"autocare/internal/notify"
	"autocare/internal/session"
	"autocare/internal/store"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	kvs, err := kv.Open(cfg.KVDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = kvs.Close() }()

	// Background tasks stop with this context.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := api.New(cfg.BackendURL)
	catalog := cache.New(cfg.RedisAddr)
	publisher := events.NewPublisher(cfg.AMQPURL)
	data := store.New(client, catalog, publisher)
	sessions := session.NewManager(kvs, client)
	feeds := notify.NewRegistry(ctx)

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.AddFunc("icon", domain.IconGlyph)
	engine.AddFunc("cardfmt", booking.FormatCard)
	engine.AddFunc("money", func(v float64) string {
		return fmt.Sprintf("$%.2f", v)
	})

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(handlers.AttachSessions(sessions, cfg.SessionSecret))
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return len(c.Path()) >= 8 && c.Path()[:8] == "/static/"
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"form": c.FormValue("csrf")})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	app.Static("/static", "./web/static")

	// ---------- App handlers ----------
	deps := handlers.NewDeps(cfg, kvs, client, sessions, data, feeds)

	// Public pages
	app.Get("/", deps.Pages.Home)
	app.Get("/services", deps.Pages.Services)

	// Auth (sign-in throttled)
	app.Get("/signin", deps.Auth.SignInForm)
	app.Post("/signin", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.signin.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("signin", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), deps.Auth.SignIn)
	app.Get("/signup", deps.Auth.SignUpForm)
	app.Post("/signup", deps.Auth.SignUp)
	app.Post("/signout", deps.Auth.SignOut)
	app.Get("/admin/signin", deps.Auth.AdminSignInForm)
	app.Post("/admin/signin", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.admin.signin.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("admin_signin", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), deps.Auth.AdminSignIn)
	app.Post("/admin/signout", deps.Auth.AdminSignOut)

	// Booking wizard
	app.Get("/book/:id", deps.Wizard.Start)
	app.Get("/quick-book/:id", deps.Wizard.QuickStart)
	app.Get("/book", deps.Wizard.Current)
	app.Post("/book/schedule", deps.Wizard.Schedule)
	app.Post("/book/details", deps.Wizard.Details)
	app.Post("/book/back", deps.Wizard.Back)
	app.Post("/book/confirm", deps.Wizard.Confirm)
	app.Post("/book/dismiss", deps.Wizard.Dismiss)

	// Customer area
	user := handlers.RequireUser(sessions, cfg.SessionSecret)
	app.Get("/my-bookings", user, deps.Bookings.MyBookings)
	app.Post("/bookings/:id/pay", user, deps.Bookings.Pay)
	app.Post("/reviews", user, deps.Bookings.SubmitReview)
	app.Get("/notifications", user, deps.Notifications.List)
	app.Get("/notifications/poll", user, deps.Notifications.Poll)
	app.Post("/notifications/:id/read", user, deps.Notifications.MarkRead)

	// Admin area
	admin := app.Group("/admin", handlers.RequireAdmin(sessions, cfg.SessionSecret))
	admin.Get("/", deps.Admin.Dashboard)
	admin.Post("/bookings/:id/status", deps.Admin.UpdateBookingStatus)
	admin.Post("/bookings/:id/progress", deps.Admin.UpdateBookingProgress)
	admin.Post("/services", deps.Admin.CreateService)
	admin.Post("/services/:id/delete", deps.Admin.DeleteService)
	admin.Post("/reviews/:id/approve", deps.Admin.ApproveReview)
	admin.Get("/notifications", deps.Notifications.AdminList)
	admin.Post("/notifications/:id/read", deps.Notifications.AdminMarkRead)

	// Health & catch-all: unknown paths go home
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error { return c.Redirect("/") })

	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
