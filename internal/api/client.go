// Package api wraps the remote booking backend. Every call returns an
// error instead of failing hard; degradation policy belongs to callers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"autocare/internal/domain"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type ReviewInput struct {
	Author      string `json:"author"`
	ServiceType string `json:"serviceType"`
	BookingID   string `json:"bookingId,omitempty"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend %s %s: %d %s", method, path, resp.StatusCode, bytes.TrimSpace(b))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ---------- Auth ----------

func (c *Client) SignIn(ctx context.Context, creds Credentials) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodPost, "/auth/signin", "", creds, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) SignUp(ctx context.Context, in SignUpInput) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) AdminSignIn(ctx context.Context, creds Credentials) (*domain.AdminProfile, error) {
	var a domain.AdminProfile
	if err := c.do(ctx, http.MethodPost, "/auth/admin/signin", "", creds, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ---------- Services ----------

func (c *Client) ListServices(ctx context.Context) ([]domain.Service, error) {
	var out []domain.Service
	err := c.do(ctx, http.MethodGet, "/services", "", nil, &out)
	return out, err
}

func (c *Client) CreateService(ctx context.Context, token string, s domain.Service) (*domain.Service, error) {
	var out domain.Service
	if err := c.do(ctx, http.MethodPost, "/services", token, s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteService(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/services/"+id, token, nil, nil)
}

// ---------- Bookings ----------

func (c *Client) ListBookings(ctx context.Context, adminToken string) ([]domain.Booking, error) {
	var out []domain.Booking
	err := c.do(ctx, http.MethodGet, "/bookings", adminToken, nil, &out)
	return out, err
}

func (c *Client) ListMyBookings(ctx context.Context, token string) ([]domain.Booking, error) {
	var out []domain.Booking
	err := c.do(ctx, http.MethodGet, "/bookings/mine", token, nil, &out)
	return out, err
}

func (c *Client) CreateBooking(ctx context.Context, token string, b domain.Booking) (*domain.Booking, error) {
	var out domain.Booking
	if err := c.do(ctx, http.MethodPost, "/bookings", token, b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBookingStatus(ctx context.Context, adminToken, id, status string) (*domain.Booking, error) {
	var out domain.Booking
	in := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPatch, "/bookings/"+id+"/status", adminToken, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBookingProgress(ctx context.Context, adminToken, id string, progress int, stage string) (*domain.Booking, error) {
	var out domain.Booking
	in := map[string]any{"progress": progress, "stage": stage}
	if err := c.do(ctx, http.MethodPatch, "/bookings/"+id+"/progress", adminToken, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePaymentStatus(ctx context.Context, token, id, paymentStatus string) (*domain.Booking, error) {
	var out domain.Booking
	in := map[string]string{"paymentStatus": paymentStatus}
	if err := c.do(ctx, http.MethodPatch, "/bookings/"+id+"/payment", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------- Reviews ----------

func (c *Client) ListReviews(ctx context.Context) ([]domain.Review, error) {
	var out []domain.Review
	err := c.do(ctx, http.MethodGet, "/reviews", "", nil, &out)
	return out, err
}

func (c *Client) CreateReview(ctx context.Context, token string, in ReviewInput) (*domain.Review, error) {
	var out domain.Review
	if err := c.do(ctx, http.MethodPost, "/reviews", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApproveReview(ctx context.Context, adminToken, id string) (*domain.Review, error) {
	var out domain.Review
	if err := c.do(ctx, http.MethodPatch, "/reviews/"+id+"/approve", adminToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------- Notifications ----------

func (c *Client) ListNotifications(ctx context.Context, token string) ([]domain.Notification, error) {
	var out []domain.Notification
	err := c.do(ctx, http.MethodGet, "/notifications", token, nil, &out)
	return out, err
}

func (c *Client) ListAdminNotifications(ctx context.Context, adminToken string) ([]domain.Notification, error) {
	var out []domain.Notification
	err := c.do(ctx, http.MethodGet, "/notifications/admin", adminToken, nil, &out)
	return out, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodPost, "/notifications/"+id+"/read", token, nil, nil)
}
