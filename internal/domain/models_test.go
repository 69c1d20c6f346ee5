package domain_test

import (
	"testing"

	"autocare/internal/domain"
)

func TestEffectivePrice(t *testing.T) {
	cases := []struct {
		price, discount, want float64
	}{
		{100, 0, 100},
		{100, 25, 75},
		{50, 10, 45},
		{100, 100, 0},
		{100, 150, 0}, // over-discount floors at zero
	}
	for _, c := range cases {
		s := domain.Service{Price: c.price, Discount: c.discount}
		if got := s.EffectivePrice(); got != c.want {
			t.Errorf("price=%v discount=%v: got %v want %v", c.price, c.discount, got, c.want)
		}
	}
}

func TestPayable(t *testing.T) {
	cases := []struct {
		status, payment string
		want            bool
	}{
		{domain.StatusPending, domain.PaymentPending, true},
		{domain.StatusCompleted, domain.PaymentPending, true},
		{domain.StatusApproved, domain.PaymentPending, false},
		{domain.StatusRejected, domain.PaymentPending, false},
		{domain.StatusPending, domain.PaymentPaid, false},
		{domain.StatusCompleted, domain.PaymentPaid, false},
	}
	for _, c := range cases {
		b := domain.Booking{Status: c.status, PaymentState: c.payment}
		if got := b.Payable(); got != c.want {
			t.Errorf("%s/%s: payable=%v want %v", c.status, c.payment, got, c.want)
		}
	}
}

func TestAwaitingReview(t *testing.T) {
	b := domain.Booking{Status: domain.StatusPending, PaymentState: domain.PaymentPaid}
	if !b.AwaitingReview() {
		t.Fatal("Pending+paid is awaiting review")
	}
	b.Status = domain.StatusApproved
	if b.AwaitingReview() {
		t.Fatal("only Pending+paid is awaiting review")
	}
}

func TestIconLookupDefaults(t *testing.T) {
	if domain.IconGlyph("oil") == domain.IconGlyph("no-such-icon") {
		t.Fatal("known key should differ from the default glyph")
	}
	if domain.IconGlyph("") != domain.IconGlyph(domain.IconDefault) {
		t.Fatal("empty key falls back to the default icon")
	}
	if domain.NormalizeIcon("bogus") != domain.IconDefault {
		t.Fatal("unknown keys normalize to the default")
	}
	if domain.NormalizeIcon("TIRE") != "tire" {
		t.Fatal("keys are case-insensitive")
	}
}
