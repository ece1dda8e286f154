package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
	"github.com/sirahabazaar/dispatch-system/internal/core/ports"
)

// QuoteHandler handles the read-only fee quote and nearby discovery endpoints.
type QuoteHandler struct {
	service ports.QuoteService
	stores  ports.StoreDirectory
}

func NewQuoteHandler(service ports.QuoteService, stores ports.StoreDirectory) *QuoteHandler {
	return &QuoteHandler{service: service, stores: stores}
}

type feeQuoteResponse struct {
	DistanceKm float64 `json:"distance_km"`
	Fee        float64 `json:"fee"`
	Priced     bool    `json:"priced"`
	ZoneName   string  `json:"zone_name,omitempty"`
}

// Fee handles GET /v1/quotes/fee?distance_km=.
//
// @Summary      Quote a delivery fee for a distance
// @Tags         quotes
// @Produce      json
// @Param        distance_km  query     number  true  "Distance in kilometers"
// @Success      200          {object}  feeQuoteResponse
// @Failure      400          {object}  map[string]string
// @Router       /v1/quotes/fee [get]
func (h *QuoteHandler) Fee(c echo.Context) error {
	distance, err := strconv.ParseFloat(c.QueryParam("distance_km"), 64)
	if err != nil || distance < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "distance_km must be a non-negative number")
	}

	quote, err := h.service.FeeForDistance(c.Request().Context(), distance)
	if err != nil {
		return err
	}

	resp := feeQuoteResponse{DistanceKm: distance, Fee: quote.Fee, Priced: quote.Priced()}
	if quote.Zone != nil {
		resp.ZoneName = quote.Zone.Name
	}
	return c.JSON(http.StatusOK, resp)
}

// OrderFee handles GET /v1/quotes/orders/:order_id/fee.
//
// @Summary      Quote the delivery fee for an order's store-to-customer leg
// @Tags         quotes
// @Produce      json
// @Param        order_id  path      string  true  "Order id"
// @Success      200       {object}  feeQuoteResponse
// @Failure      404       {object}  map[string]string
// @Router       /v1/quotes/orders/{order_id}/fee [get]
func (h *QuoteHandler) OrderFee(c echo.Context) error {
	quote, distance, err := h.service.FeeForOrder(c.Request().Context(), c.Param("order_id"))
	if err != nil {
		return err
	}

	resp := feeQuoteResponse{DistanceKm: distance, Fee: quote.Fee, Priced: quote.Priced()}
	if quote.Zone != nil {
		resp.ZoneName = quote.Zone.Name
	}
	return c.JSON(http.StatusOK, resp)
}

// Nearby handles GET /v1/quotes/nearby?lat=&lng=&radius_km=.
//
// @Summary      Discover stores within a radius of a point
// @Tags         quotes
// @Produce      json
// @Param        lat        query     number  true   "Origin latitude"
// @Param        lng        query     number  true   "Origin longitude"
// @Param        radius_km  query     number  false  "Radius in kilometers (default 10)"
// @Success      200        {array}   ports.Discovery
// @Failure      400        {object}  map[string]string
// @Router       /v1/quotes/nearby [get]
func (h *QuoteHandler) Nearby(c echo.Context) error {
	lat, latErr := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if latErr != nil || lngErr != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lat and lng must be numbers")
	}

	radius := 10.0
	if raw := c.QueryParam("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "radius_km must be a positive number")
		}
		radius = parsed
	}

	origin := domain.Coordinate{Lat: lat, Lng: lng}
	if !origin.Locatable() {
		return echo.NewHTTPError(http.StatusBadRequest, "origin coordinates are not locatable")
	}

	candidates, err := h.stores.ListStoreCandidates(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.service.DiscoverWithinRadius(origin, candidates, radius))
}
