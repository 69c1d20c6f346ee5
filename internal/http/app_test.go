package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	html "github.com/gofiber/template/html/v2"

	"autocare/internal/api"
	"autocare/internal/booking"
	"autocare/internal/cache"
	"autocare/internal/config"
	"autocare/internal/domain"
	"autocare/internal/events"
	"autocare/internal/http/handlers"
	"autocare/internal/kv"
	"autocare/internal/notify"
	"autocare/internal/session"
	"autocare/internal/store"
)

const (
	testSecret = "test-secret"
	aliceID    = "u:alice@example.com"
)

// env is a full app wired like production, with an in-memory kv store
// and a cookie jar so multi-step flows read naturally.
type env struct {
	t    *testing.T
	app  *fiber.App
	kv   *kv.Store
	data *store.Store
	jar  map[string]string
}

// newEnv builds the app against the given fake backend; nil means the
// backend is unreachable and every remote call fails.
func newEnv(t *testing.T, backend http.Handler) *env {
	t.Helper()

	kvs, err := kv.Open(":memory:")
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	t.Cleanup(func() { _ = kvs.Close() })

	backendURL := func() string {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		return srv.URL
	}()
	if backend != nil {
		srv := httptest.NewServer(backend)
		t.Cleanup(srv.Close)
		backendURL = srv.URL
	}

	client := api.New(backendURL)
	data := store.New(client, cache.New(""), events.NewPublisher(""))
	sessions := session.NewManager(kvs, client)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	feeds := notify.NewRegistry(ctx)

	engine := html.New("../../web/templates", ".html")
	engine.AddFunc("icon", domain.IconGlyph)
	engine.AddFunc("cardfmt", booking.FormatCard)
	engine.AddFunc("money", func(v float64) string { return fmt.Sprintf("$%.2f", v) })

	app := fiber.New(fiber.Config{Views: engine})
	app.Use(handlers.AttachSessions(sessions, testSecret))
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	cfg := config.Config{SessionSecret: testSecret}
	deps := handlers.NewDeps(cfg, kvs, client, sessions, data, feeds)

	app.Get("/", deps.Pages.Home)
	app.Get("/services", deps.Pages.Services)

	app.Get("/signin", deps.Auth.SignInForm)
	app.Post("/signin", limiter.New(limiter.Config{Max: 5, Expiration: 10 * time.Minute}), deps.Auth.SignIn)
	app.Get("/signup", deps.Auth.SignUpForm)
	app.Post("/signup", deps.Auth.SignUp)
	app.Post("/signout", deps.Auth.SignOut)
	app.Get("/admin/signin", deps.Auth.AdminSignInForm)
	app.Post("/admin/signin", deps.Auth.AdminSignIn)
	app.Post("/admin/signout", deps.Auth.AdminSignOut)

	app.Get("/book/:id", deps.Wizard.Start)
	app.Get("/quick-book/:id", deps.Wizard.QuickStart)
	app.Get("/book", deps.Wizard.Current)
	app.Post("/book/schedule", deps.Wizard.Schedule)
	app.Post("/book/details", deps.Wizard.Details)
	app.Post("/book/back", deps.Wizard.Back)
	app.Post("/book/confirm", deps.Wizard.Confirm)
	app.Post("/book/dismiss", deps.Wizard.Dismiss)

	user := handlers.RequireUser(sessions, testSecret)
	app.Get("/my-bookings", user, deps.Bookings.MyBookings)
	app.Post("/bookings/:id/pay", user, deps.Bookings.Pay)
	app.Post("/reviews", user, deps.Bookings.SubmitReview)
	app.Get("/notifications", user, deps.Notifications.List)
	app.Get("/notifications/poll", user, deps.Notifications.Poll)
	app.Post("/notifications/:id/read", user, deps.Notifications.MarkRead)

	admin := app.Group("/admin", handlers.RequireAdmin(sessions, testSecret))
	admin.Get("/", deps.Admin.Dashboard)
	admin.Post("/bookings/:id/status", deps.Admin.UpdateBookingStatus)
	admin.Post("/bookings/:id/progress", deps.Admin.UpdateBookingProgress)
	admin.Post("/services", deps.Admin.CreateService)
	admin.Post("/services/:id/delete", deps.Admin.DeleteService)
	admin.Post("/reviews/:id/approve", deps.Admin.ApproveReview)
	admin.Get("/notifications", deps.Notifications.AdminList)
	admin.Post("/notifications/:id/read", deps.Notifications.AdminMarkRead)

	app.Use(func(c *fiber.Ctx) error { return c.Redirect("/") })

	return &env{t: t, app: app, kv: kvs, data: data, jar: map[string]string{}}
}

func (e *env) do(method, path string, form url.Values) *http.Response {
	e.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, v := range e.jar {
		req.AddCookie(&http.Cookie{Name: name, Value: v})
	}
	resp, err := e.app.Test(req)
	if err != nil {
		e.t.Fatal(err)
	}
	for _, c := range resp.Cookies() {
		if c.Value == "" || c.MaxAge < 0 {
			delete(e.jar, c.Name)
			continue
		}
		e.jar[c.Name] = c.Value
	}
	return resp
}

func (e *env) get(path string) *http.Response { return e.do("GET", path, nil) }

// post attaches the csrf token, fetching one first when needed.
func (e *env) post(path string, form url.Values) *http.Response {
	e.t.Helper()
	if _, ok := e.jar["csrf_"]; !ok {
		e.get("/signin")
	}
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", e.jar["csrf_"])
	return e.do("POST", path, form)
}

func (e *env) signIn() { e.signInAs("alice@example.com") }

func (e *env) signInAs(email string) {
	e.t.Helper()
	resp := e.post("/signin", url.Values{"email": {email}, "password": {"hunter22"}})
	if resp.StatusCode != http.StatusFound {
		e.t.Fatalf("sign-in failed: %d", resp.StatusCode)
	}
}

// freshClient drops all cookies, simulating a second visitor on a
// different browser.
func (e *env) freshClient() { e.jar = map[string]string{} }

func (e *env) adminSignIn() {
	e.t.Helper()
	resp := e.post("/admin/signin", url.Values{"email": {"boss@example.com"}, "password": {"hunter22"}})
	if resp.StatusCode != http.StatusFound {
		e.t.Fatalf("admin sign-in failed: %d", resp.StatusCode)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	return string(b)
}

func location(resp *http.Response) string { return resp.Header.Get("Location") }

func reviewInput(comment string) api.ReviewInput {
	return api.ReviewInput{Author: "Alice", ServiceType: "Oil Change", Rating: 5, Comment: comment}
}

// fakeBackend serves auth plus one unread customer notification;
// services, bookings and reviews stay unreachable so the handlers run
// their fallback paths.
func fakeBackend(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/signin", func(w http.ResponseWriter, r *http.Request) {
		var creds api.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "hunter22" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		local := strings.SplitN(creds.Email, "@", 2)[0]
		name := strings.ToUpper(local[:1]) + local[1:]
		_ = json.NewEncoder(w).Encode(domain.User{
			ID: "u:" + creds.Email, Name: name, Email: creds.Email, Phone: "5550001111", Token: "tok:" + creds.Email,
		})
	})
	mux.HandleFunc("POST /auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var in api.SignUpInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(domain.User{
			ID: "u2", Name: in.Name, Email: in.Email, Phone: in.Phone, Token: "tok-new",
		})
	})
	mux.HandleFunc("POST /auth/admin/signin", func(w http.ResponseWriter, r *http.Request) {
		var creds api.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "hunter22" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.AdminProfile{Name: "Boss", Token: "admin-tok"})
	})
	mux.HandleFunc("GET /notifications", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]domain.Notification{
			{ID: "n1", Type: domain.NotifPayment, Title: "Payment due", Message: "Your booking is confirmed"},
		})
	})
	return mux
}
