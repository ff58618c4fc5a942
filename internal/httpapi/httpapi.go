// Package httpapi exposes the catalogue's stat_request operations as a
// fiber HTTP surface, for deployments that want long-lived service instead
// of catalogue-cli's one-shot batch. Handler shape and the health endpoint
// are adapted from the teacher's internal/api package; the route table
// is narrower since this is a single-region routing API, not PassBi's
// multi-endpoint schedule/partner surface.
package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/routewise/transitcore/internal/catalogue"
	"github.com/routewise/transitcore/internal/router"
	"github.com/routewise/transitcore/internal/routecache"
	"github.com/routewise/transitcore/internal/svgmap"
)

// Server bundles the dependencies handlers need: a frozen catalogue and
// router built once at startup, plus an optional redis client for
// route-result caching (nil disables caching, falling back to direct
// router.FindRoute calls).
type Server struct {
	Catalogue   *catalogue.Catalogue
	Router      *router.Router
	RouteCache  *redis.Client
	Settings    router.Settings
	MapSettings svgmap.Settings
}

// RegisterRoutes wires the routing endpoints onto app.
func (s *Server) RegisterRoutes(app *fiber.App) {
	app.Get("/health", s.Health)
	app.Get("/v1/bus/:name", s.BusStats)
	app.Get("/v1/stop/:name", s.StopStats)
	app.Get("/v1/route", s.FindRoute)
	app.Get("/v1/map", s.Map)
}

// Health reports catalogue and redis availability.
func (s *Server) Health(c *fiber.Ctx) error {
	status := fiber.Map{
		"status": "ok",
		"stops":  len(s.Catalogue.AllStopNamesWithBuses()),
		"buses":  len(s.Catalogue.AllBusNames()),
		"cache":  "disabled",
	}

	if s.RouteCache != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := routecache.HealthCheck(ctx, s.RouteCache); err != nil {
			status["cache"] = "unavailable"
			status["status"] = "degraded"
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		status["cache"] = "ok"
	}

	return c.JSON(status)
}

// BusStats answers GET /v1/bus/:name.
func (s *Server) BusStats(c *fiber.Ctx) error {
	stats, ok := s.Catalogue.BusStatistics(c.Params("name"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	return c.JSON(fiber.Map{
		"stop_count":        stats.StopsNum,
		"unique_stop_count": stats.UniqStopsNum,
		"road_route_length": stats.RoadLength,
		"curvature":         stats.Curvature,
	})
}

// StopStats answers GET /v1/stop/:name.
func (s *Server) StopStats(c *fiber.Ctx) error {
	found, buses := s.Catalogue.StopListing(c.Params("name"))
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	if buses == nil {
		buses = []string{}
	}
	return c.JSON(fiber.Map{"buses": buses})
}

// FindRoute answers GET /v1/route?from=&to=, serving from the redis
// itinerary cache when one is configured.
func (s *Server) FindRoute(c *fiber.Ctx) error {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from and to are required"})
	}

	var (
		it    router.Itinerary
		found bool
		err   error
	)

	if s.RouteCache != nil {
		it, found, err = routecache.FindRoute(c.Context(), s.RouteCache, s.Router, from, to, s.Settings)
	} else {
		it, found = s.Router.FindRoute(from, to)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}

	items := make([]fiber.Map, 0, len(it.Items))
	for _, item := range it.Items {
		if item.Kind == router.Wait {
			items = append(items, fiber.Map{"type": "Wait", "stop_name": item.Stop, "time": item.Time})
		} else {
			items = append(items, fiber.Map{"type": "Bus", "bus": item.Bus, "span_count": item.SpanCount, "time": item.Time})
		}
	}
	return c.JSON(fiber.Map{"total_time": it.TotalTime, "items": items})
}

// Map answers GET /v1/map with a freshly rendered SVG document.
func (s *Server) Map(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.SendString(svgmap.Render(s.Catalogue, s.MapSettings))
}
