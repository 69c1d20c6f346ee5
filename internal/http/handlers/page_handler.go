package handlers

import (
	"github.com/gofiber/fiber/v2"

	"autocare/internal/domain"
	"autocare/internal/store"
)

type PageHandler struct {
	Data *store.Store
}

func (h *PageHandler) Home(c *fiber.Ctx) error {
	services := h.Data.ListServices(c.Context())
	var featured []domain.Service
	for _, s := range services {
		if s.Featured && s.Active {
			featured = append(featured, s)
		}
	}
	if len(featured) == 0 && len(services) > 0 {
		n := len(services)
		if n > 3 {
			n = 3
		}
		featured = services[:n]
	}
	reviews := h.Data.ApprovedReviews(c.Context())
	if len(reviews) > 6 {
		reviews = reviews[:6]
	}
	return render(c, "home", fiber.Map{
		"Featured": featured,
		"Reviews":  reviews,
		"Stats":    h.Data.StatsSnapshot(),
	})
}

func (h *PageHandler) Services(c *fiber.Ctx) error {
	services := h.Data.ListServices(c.Context())
	var active []domain.Service
	for _, s := range services {
		if s.Active {
			active = append(active, s)
		}
	}
	return render(c, "services", fiber.Map{"Services": active})
}
