package httpapi

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/hingham-practice/city-explorer/internal/explore"
)

var validate = validator.New()

// Static failure bodies. Internal detail never leaks to callers.
const (
	msgNoResult = "no results for that search"
	msgFailure  = "sorry no peanuts"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app. Every endpoint
// takes a single "data" query parameter: the raw search text for /location
// and /explore, a JSON-encoded location record for the dependent categories.
func RegisterRoutes(app *fiber.App, service *explore.Service) {
	app.Get("/location", func(c *fiber.Ctx) error {
		query := c.Query("data")
		if query == "" {
			return fiber.NewError(fiber.StatusBadRequest, "data query parameter is required")
		}

		loc, err := service.Locate(c.UserContext(), query)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(loc)
	})

	app.Get("/weather", func(c *fiber.Ctx) error {
		loc, err := parseLocationData(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		days, err := service.Forecast(c.UserContext(), loc)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(days)
	})

	app.Get("/yelp", func(c *fiber.Ctx) error {
		loc, err := parseLocationData(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		listings, err := service.Nearby(c.UserContext(), loc)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(listings)
	})

	app.Get("/movies", func(c *fiber.Ctx) error {
		loc, err := parseLocationData(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if loc.FormattedQuery == "" {
			return fiber.NewError(fiber.StatusBadRequest, "location record needs formatted_query")
		}

		items, err := service.Movies(c.UserContext(), loc)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(items)
	})

	app.Get("/explore", func(c *fiber.Ctx) error {
		query := c.Query("data")
		if query == "" {
			return fiber.NewError(fiber.StatusBadRequest, "data query parameter is required")
		}

		res, err := service.Explore(c.UserContext(), query)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(res)
	})
}

// locationData is the inbound shape of a previously resolved location.
type locationData struct {
	ID             string  `json:"id" validate:"required"`
	SearchQuery    string  `json:"search_query"`
	FormattedQuery string  `json:"formatted_query"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

func parseLocationData(c *fiber.Ctx) (explore.Location, error) {
	raw := c.Query("data")
	if raw == "" {
		return explore.Location{}, errors.New("data query parameter is required")
	}

	var d locationData
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return explore.Location{}, errors.New("data must be a JSON location record")
	}
	if err := validate.Struct(d); err != nil {
		return explore.Location{}, err
	}

	return explore.Location{
		ID:             d.ID,
		SearchQuery:    d.SearchQuery,
		FormattedQuery: d.FormattedQuery,
		Latitude:       d.Latitude,
		Longitude:      d.Longitude,
	}, nil
}

// mapServiceError converts internal failures to fixed-status static
// responses: 404 for an empty geocoder result, 500 for everything else.
func mapServiceError(err error) error {
	if errors.Is(err, explore.ErrNoResult) {
		return fiber.NewError(fiber.StatusNotFound, msgNoResult)
	}
	return fiber.NewError(fiber.StatusInternalServerError, msgFailure)
}
