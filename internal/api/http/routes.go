package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/air-quality-etl/internal/airquality"
	"github.com/i474232898/air-quality-etl/internal/analytics"
)

var validate = validator.New()

// RegisterRoutes wires the analytics endpoints into the Fiber app. Every
// request recomputes from the persisted dataset; the tables are cheap and
// the store is the single source of truth.
func RegisterRoutes(app *fiber.App, engine *analytics.Engine) {
	v1 := app.Group("/api/v1")

	v1.Get("/summary", func(c *fiber.Ctx) error {
		report, err := engine.Analyze(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute summary")
		}
		if report.Summary == nil {
			return fiber.NewError(fiber.StatusNotFound, "no air quality data available")
		}
		return c.JSON(report.Summary)
	})

	v1.Get("/risk", func(c *fiber.Ctx) error {
		var q cityQuery
		q.City = c.Query("city")

		report, err := engine.Analyze(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute risk distribution")
		}

		dist := report.Risk
		if q.City != "" {
			dist = filterRisk(dist, q.City)
			if len(dist) == 0 {
				return fiber.NewError(fiber.StatusNotFound, "no data for requested city")
			}
		}

		return c.JSON(fiber.Map{"distribution": dist})
	})

	v1.Get("/trends", func(c *fiber.Ctx) error {
		var q trendQuery
		q.City = c.Query("city")
		q.Limit = c.QueryInt("limit", 0)

		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := engine.Analyze(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute trends")
		}

		trends := report.Trends
		if q.City != "" {
			trends = filterTrends(trends, q.City)
		}
		if q.Limit > 0 && len(trends) > q.Limit {
			trends = trends[:q.Limit]
		}

		return c.JSON(fiber.Map{"trends": trends})
	})
}

type cityQuery struct {
	City string
}

type trendQuery struct {
	City  string
	Limit int `validate:"gte=0,lte=10000"`
}

func filterRisk(dist []airquality.RiskDistribution, city string) []airquality.RiskDistribution {
	var out []airquality.RiskDistribution
	for _, d := range dist {
		if d.City == city {
			out = append(out, d)
		}
	}
	return out
}

func filterTrends(trends []airquality.TrendRow, city string) []airquality.TrendRow {
	var out []airquality.TrendRow
	for _, t := range trends {
		if t.City == city {
			out = append(out, t)
		}
	}
	return out
}
