// Package store holds the in-memory booking, service and review lists and
// applies every mutation remote-first: on success the local copy is patched
// from the server representation, on failure the same mutation is applied
// locally with a synthesized id so the UI never blocks on the backend.
// Records carry a sync state so locally applied data is never presented as
// server-confirmed. Last write wins; there is no conflict detection.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"autocare/internal/api"
	"autocare/internal/cache"
	"autocare/internal/domain"
	"autocare/internal/events"
	applog "autocare/internal/log"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrNotPayable = errors.New("booking is not payable in its current state")
)

type Store struct {
	mu       sync.Mutex
	services []domain.Service
	bookings []domain.Booking
	reviews  []domain.Review

	nextBooking int
	nextService int
	nextReview  int

	api     *api.Client
	catalog *cache.Catalog
	events  *events.Publisher
}

func New(client *api.Client, catalog *cache.Catalog, pub *events.Publisher) *Store {
	return &Store{
		api:         client,
		catalog:     catalog,
		events:      pub,
		nextBooking: 1,
		nextService: 1,
		nextReview:  1,
	}
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// ---------- Services ----------

// ListServices returns the catalog: redis cache, then backend, then
// whatever is already in memory, then the built-in fallback catalog.
// Rendering never blocks on the backend.
func (s *Store) ListServices(ctx context.Context) []domain.Service {
	if cached, ok := s.catalog.GetServices(ctx); ok {
		return s.mergeServices(cached)
	}
	remote, err := s.api.ListServices(ctx)
	if err != nil {
		applog.Degrade("services.list.fallback", err, nil)
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.services) == 0 {
			s.services = fallbackCatalog()
		}
		return cloneServices(s.services)
	}
	for i := range remote {
		remote[i].Sync = domain.SyncSynced
	}
	s.catalog.SetServices(ctx, remote)
	return s.mergeServices(remote)
}

// mergeServices replaces the synced portion of the in-memory list while
// keeping local-only records the backend does not know about.
func (s *Store) mergeServices(remote []domain.Service) []domain.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	var local []domain.Service
	for _, sv := range s.services {
		if sv.Sync == domain.SyncLocal {
			local = append(local, sv)
		}
	}
	s.services = append(remote, local...)
	return cloneServices(s.services)
}

func (s *Store) CreateService(ctx context.Context, adminToken string, in domain.Service) domain.Service {
	in.Icon = domain.NormalizeIcon(in.Icon)
	in.Active = true
	created, err := s.api.CreateService(ctx, adminToken, in)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		applog.Degrade("services.create.fallback", err, map[string]any{"name": in.Name})
		in.ID = fmt.Sprintf("SV%03d", s.nextService)
		in.Sync = domain.SyncLocal
	} else {
		in = *created
		in.Sync = domain.SyncSynced
	}
	s.nextService++
	s.services = append(s.services, in)
	s.catalog.Invalidate(ctx)
	return in
}

func (s *Store) DeleteService(ctx context.Context, adminToken, id string) error {
	err := s.api.DeleteService(ctx, adminToken, id)
	if err != nil {
		applog.Degrade("services.delete.fallback", err, map[string]any{"service_id": id})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sv := range s.services {
		if sv.ID == id {
			s.services = append(s.services[:i], s.services[i+1:]...)
			s.catalog.Invalidate(ctx)
			return nil
		}
	}
	// The backend confirmed the delete even though this process never
	// loaded the service; that is still a successful delete.
	if err == nil {
		s.catalog.Invalidate(ctx)
		return nil
	}
	return ErrNotFound
}

// ServiceByID looks up the in-memory catalog, loading it first if needed.
func (s *Store) ServiceByID(ctx context.Context, id string) (domain.Service, bool) {
	for _, sv := range s.ListServices(ctx) {
		if sv.ID == id {
			return sv, true
		}
	}
	return domain.Service{}, false
}

// ---------- Bookings ----------

// ListBookings returns every booking (admin view): backend list merged
// with local-only records, or the local list alone when the backend is
// unreachable.
func (s *Store) ListBookings(ctx context.Context, adminToken string) []domain.Booking {
	remote, err := s.api.ListBookings(ctx, adminToken)
	if err != nil {
		applog.Degrade("bookings.list.fallback", err, nil)
		s.mu.Lock()
		defer s.mu.Unlock()
		return cloneBookings(s.bookings)
	}
	for i := range remote {
		remote[i].Sync = domain.SyncSynced
	}
	return s.mergeBookings(remote)
}

// MyBookings is the customer view of the same policy, scoped to one
// owner: the shared list holds every visitor's local records, but a
// customer only ever sees their own.
func (s *Store) MyBookings(ctx context.Context, token, owner string) []domain.Booking {
	remote, err := s.api.ListMyBookings(ctx, token)
	if err != nil {
		applog.Degrade("bookings.mine.fallback", err, nil)
		s.mu.Lock()
		defer s.mu.Unlock()
		return filterOwner(s.bookings, owner)
	}
	for i := range remote {
		remote[i].Sync = domain.SyncSynced
		remote[i].Owner = owner
	}
	return filterOwner(s.mergeBookings(remote), owner)
}

// filterOwner keeps the records belonging to owner.
func filterOwner(list []domain.Booking, owner string) []domain.Booking {
	var out []domain.Booking
	for _, b := range list {
		if b.Owner == owner {
			out = append(out, b)
		}
	}
	return out
}

func (s *Store) mergeBookings(remote []domain.Booking) []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var local []domain.Booking
	for _, b := range s.bookings {
		if b.Sync == domain.SyncLocal {
			local = append(local, b)
		}
	}
	s.bookings = append(remote, local...)
	return cloneBookings(s.bookings)
}

// CreateBooking submits remote-first. On failure the booking is applied
// locally with a BK-prefixed sequence id and Pending status, so the
// wizard still reaches its Success step. The record is stamped with its
// owner so it only ever surfaces in that visitor's own list.
func (s *Store) CreateBooking(ctx context.Context, token, owner string, b domain.Booking) domain.Booking {
	b.Status = domain.StatusPending
	b.PaymentState = domain.PaymentPending
	b.CreatedAt = now()
	b.Owner = owner

	created, err := s.api.CreateBooking(ctx, token, b)
	s.mu.Lock()
	if err != nil {
		applog.Degrade("bookings.create.fallback", err, map[string]any{"service": b.ServiceType})
		b.ID = fmt.Sprintf("BK%03d", s.nextBooking)
		b.Sync = domain.SyncLocal
	} else {
		b = *created
		b.Sync = domain.SyncSynced
		b.Owner = owner
	}
	s.nextBooking++
	s.bookings = append(s.bookings, b)
	s.mu.Unlock()

	s.events.BookingCreated(ctx, b)
	return b
}

func (s *Store) SetBookingStatus(ctx context.Context, adminToken, id, status string) (domain.Booking, error) {
	switch status {
	case domain.StatusPending, domain.StatusApproved, domain.StatusCompleted, domain.StatusRejected:
	default:
		return domain.Booking{}, fmt.Errorf("unknown status %q", status)
	}
	updated, err := s.api.UpdateBookingStatus(ctx, adminToken, id, status)
	if err != nil {
		applog.Degrade("bookings.status.fallback", err, map[string]any{"booking_id": id})
	}
	return s.patchBooking(id, func(b *domain.Booking) {
		if updated != nil {
			*b = *updated
			b.Sync = domain.SyncSynced
			return
		}
		b.Status = status
		if status != domain.StatusApproved {
			b.Progress = 0
			b.Stage = ""
		}
		b.Sync = domain.SyncLocal
	})
}

// SetBookingProgress records workshop progress; meaningful only while
// the booking is Approved.
func (s *Store) SetBookingProgress(ctx context.Context, adminToken, id string, progress int, stage string) (domain.Booking, error) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	updated, err := s.api.UpdateBookingProgress(ctx, adminToken, id, progress, stage)
	if err != nil {
		applog.Degrade("bookings.progress.fallback", err, map[string]any{"booking_id": id})
	}
	return s.patchBooking(id, func(b *domain.Booking) {
		if b.Status != domain.StatusApproved {
			return
		}
		if updated != nil {
			*b = *updated
			b.Sync = domain.SyncSynced
			return
		}
		b.Progress = progress
		b.Stage = stage
		b.Sync = domain.SyncLocal
	})
}

// SetPaymentPaid marks a booking paid, enforcing the payment invariant:
// allowed only while Pending or after Completed.
func (s *Store) SetPaymentPaid(ctx context.Context, token, id string) (domain.Booking, error) {
	s.mu.Lock()
	cur, ok := findBooking(s.bookings, id)
	s.mu.Unlock()
	if !ok {
		return domain.Booking{}, ErrNotFound
	}
	if !cur.Payable() {
		return domain.Booking{}, ErrNotPayable
	}
	updated, err := s.api.UpdatePaymentStatus(ctx, token, id, domain.PaymentPaid)
	if err != nil {
		applog.Degrade("bookings.payment.fallback", err, map[string]any{"booking_id": id})
	}
	return s.patchBooking(id, func(b *domain.Booking) {
		if updated != nil {
			*b = *updated
			b.Sync = domain.SyncSynced
			return
		}
		b.PaymentState = domain.PaymentPaid
		b.Sync = domain.SyncLocal
	})
}

func (s *Store) BookingByID(id string) (domain.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findBooking(s.bookings, id)
}

func (s *Store) patchBooking(id string, patch func(*domain.Booking)) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			owner := s.bookings[i].Owner
			patch(&s.bookings[i])
			s.bookings[i].Owner = owner
			return s.bookings[i], nil
		}
	}
	return domain.Booking{}, ErrNotFound
}

func findBooking(list []domain.Booking, id string) (domain.Booking, bool) {
	for _, b := range list {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Booking{}, false
}

// ---------- Reviews ----------

func (s *Store) ListReviews(ctx context.Context) []domain.Review {
	remote, err := s.api.ListReviews(ctx)
	if err != nil {
		applog.Degrade("reviews.list.fallback", err, nil)
		s.mu.Lock()
		defer s.mu.Unlock()
		return append([]domain.Review(nil), s.reviews...)
	}
	for i := range remote {
		remote[i].Sync = domain.SyncSynced
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var local []domain.Review
	for _, r := range s.reviews {
		if r.Sync == domain.SyncLocal {
			local = append(local, r)
		}
	}
	s.reviews = append(remote, local...)
	return append([]domain.Review(nil), s.reviews...)
}

// ApprovedReviews filters for the public pages; a review is pending
// until an admin approves it.
func (s *Store) ApprovedReviews(ctx context.Context) []domain.Review {
	var out []domain.Review
	for _, r := range s.ListReviews(ctx) {
		if r.Approved {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) CreateReview(ctx context.Context, token string, in api.ReviewInput) domain.Review {
	created, err := s.api.CreateReview(ctx, token, in)
	s.mu.Lock()
	defer s.mu.Unlock()
	var r domain.Review
	if err != nil {
		applog.Degrade("reviews.create.fallback", err, map[string]any{"service": in.ServiceType})
		r = domain.Review{
			ID:          fmt.Sprintf("RV%03d", s.nextReview),
			Author:      in.Author,
			ServiceType: in.ServiceType,
			BookingID:   in.BookingID,
			Rating:      in.Rating,
			Comment:     in.Comment,
			CreatedAt:   now(),
			Sync:        domain.SyncLocal,
		}
	} else {
		r = *created
		r.Sync = domain.SyncSynced
	}
	s.nextReview++
	s.reviews = append(s.reviews, r)
	return r
}

func (s *Store) ApproveReview(ctx context.Context, adminToken, id string) (domain.Review, error) {
	updated, err := s.api.ApproveReview(ctx, adminToken, id)
	if err != nil {
		applog.Degrade("reviews.approve.fallback", err, map[string]any{"review_id": id})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reviews {
		if s.reviews[i].ID == id {
			if updated != nil {
				s.reviews[i] = *updated
				s.reviews[i].Sync = domain.SyncSynced
			} else {
				s.reviews[i].Approved = true
				s.reviews[i].Sync = domain.SyncLocal
			}
			return s.reviews[i], nil
		}
	}
	return domain.Review{}, ErrNotFound
}

// ---------- Dashboard stats ----------

type Stats struct {
	Total     int
	Pending   int
	Approved  int
	Completed int
	Revenue   float64
}

// StatsSnapshot summarizes the in-memory booking list; the dashboard
// poller refreshes the list itself.
func (s *Store) StatsSnapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st Stats
	for _, b := range s.bookings {
		st.Total++
		switch b.Status {
		case domain.StatusPending:
			st.Pending++
		case domain.StatusApproved:
			st.Approved++
		case domain.StatusCompleted:
			st.Completed++
		}
		if b.PaymentState == domain.PaymentPaid {
			st.Revenue += b.ServicePrice
		}
	}
	return st
}

func cloneServices(in []domain.Service) []domain.Service {
	return append([]domain.Service(nil), in...)
}

func cloneBookings(in []domain.Booking) []domain.Booking {
	return append([]domain.Booking(nil), in...)
}
