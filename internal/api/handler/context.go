package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
)

// ctxStoreScope extracts the caller's store scope from the auth claims.
// Admins get an empty scope (no filtering); store owners must carry a
// non-empty store_id — a JWT without one is structurally valid but
// operationally unusable, so reject with 401.
func ctxStoreScope(c echo.Context) (string, error) {
	role, _ := c.Get("role").(string)
	if role == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	if role == domain.RoleAdmin {
		return "", nil
	}

	storeID, _ := c.Get("store_id").(string)
	if storeID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "token missing store identity")
	}
	return storeID, nil
}

// ctxPartnerID extracts the partner identity required by the claim endpoint.
func ctxPartnerID(c echo.Context) (string, error) {
	role, _ := c.Get("role").(string)
	if role == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	partnerID, _ := c.Get("partner_id").(string)
	if partnerID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "token missing partner identity")
	}
	return partnerID, nil
}
