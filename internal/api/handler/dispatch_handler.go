package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
	"github.com/sirahabazaar/dispatch-system/internal/core/ports"
)

// DispatchHandler handles HTTP requests for dispatch round operations.
type DispatchHandler struct {
	service ports.DispatchService
}

func NewDispatchHandler(service ports.DispatchService) *DispatchHandler {
	return &DispatchHandler{service: service}
}

// Notify handles POST /v1/dispatch/orders/:order_id/notify.
//
// @Summary      Open a dispatch round for an order and broadcast it
// @Tags         dispatch
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        order_id  path      string         true  "Order id"
// @Param        body      body      notifyRequest  true  "Broadcast message"
// @Success      201       {object}  notifyResponse
// @Failure      400       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Failure      422       {object}  map[string]string
// @Router       /v1/dispatch/orders/{order_id}/notify [post]
func (h *DispatchHandler) Notify(c echo.Context) error {
	var req notifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	storeID, err := ctxStoreScope(c)
	if err != nil {
		return err
	}

	result, err := h.service.NotifyForOrder(c.Request().Context(), ports.NotifyInput{
		OrderID: c.Param("order_id"),
		Message: req.Message,
		Urgent:  req.Urgent,
		StoreID: storeID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, notifyResponse{
		RoundID:   result.Round.ID,
		OrderID:   result.Round.OrderID,
		Status:    string(result.Round.Status),
		Urgent:    result.Round.Urgent,
		ExpiresAt: result.Round.ExpiresAt.UTC().Format(time.RFC3339),
		Eligible:  result.Eligible,
		Broadcast: broadcastSummary{
			Attempted: result.Broadcast.Attempted,
			Delivered: result.Broadcast.Delivered,
			Failed:    result.Broadcast.Failed,
		},
	})
}

// Claim handles POST /v1/dispatch/rounds/:round_id/claim — a delivery
// partner's attempt to win the round. Losing is the expected outcome for all
// but one caller, so it is rendered as an unambiguous result, not an error.
//
// @Summary      Claim an open dispatch round (first accept, first serve)
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Param        round_id  path      string  true  "Round id"
// @Success      200       {object}  claimResponse
// @Failure      404       {object}  map[string]string
// @Failure      409       {object}  claimResponse
// @Failure      410       {object}  claimResponse
// @Router       /v1/dispatch/rounds/{round_id}/claim [post]
func (h *DispatchHandler) Claim(c echo.Context) error {
	partnerID, err := ctxPartnerID(c)
	if err != nil {
		return err
	}

	roundID := c.Param("round_id")
	result, err := h.service.Claim(c.Request().Context(), ports.ClaimInput{
		RoundID:   roundID,
		PartnerID: partnerID,
	})
	if err != nil {
		return err
	}

	resp := claimResponse{Result: string(result), RoundID: roundID}
	switch result {
	case domain.ClaimWon:
		return c.JSON(http.StatusOK, resp)
	case domain.ClaimLost:
		return c.JSON(http.StatusConflict, resp)
	default:
		return c.JSON(http.StatusGone, resp)
	}
}

// Cancel handles POST /v1/dispatch/rounds/:round_id/cancel.
//
// @Summary      Cancel an open dispatch round
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Param        round_id  path      string  true  "Round id"
// @Success      200       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /v1/dispatch/rounds/{round_id}/cancel [post]
func (h *DispatchHandler) Cancel(c echo.Context) error {
	if err := h.service.CancelRound(c.Request().Context(), c.Param("round_id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

// Attempts handles GET /v1/dispatch/rounds/:round_id/attempts — the audit
// view answering "did this partner actually get notified".
//
// @Summary      List delivery attempts for a round
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Param        round_id  path      string  true  "Round id"
// @Success      200       {array}   attemptResponse
// @Failure      404       {object}  map[string]string
// @Router       /v1/dispatch/rounds/{round_id}/attempts [get]
func (h *DispatchHandler) Attempts(c echo.Context) error {
	attempts, err := h.service.ListAttempts(c.Request().Context(), c.Param("round_id"))
	if err != nil {
		return err
	}

	resp := make([]attemptResponse, 0, len(attempts))
	for _, a := range attempts {
		resp = append(resp, attemptResponse{
			PartnerID:   a.PartnerID,
			Channel:     string(a.Channel),
			TargetToken: a.TargetToken,
			SentAt:      a.SentAt.UTC().Format(time.RFC3339),
			Delivered:   a.Delivered,
			Error:       a.Error,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// BroadcastReady handles POST /v1/dispatch/stores/:store_id/broadcast-ready.
//
// @Summary      Broadcast every ready-for-pickup order of a store
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Param        store_id  path      string  true  "Store id"
// @Success      202       {object}  bulkBroadcastResponse
// @Failure      403       {object}  map[string]string
// @Router       /v1/dispatch/stores/{store_id}/broadcast-ready [post]
func (h *DispatchHandler) BroadcastReady(c echo.Context) error {
	return h.bulkBroadcast(c, h.service.BroadcastAllReady)
}

// BroadcastProcessing handles POST /v1/dispatch/stores/:store_id/broadcast-processing.
//
// @Summary      Broadcast every processing order of a store
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Param        store_id  path      string  true  "Store id"
// @Success      202       {object}  bulkBroadcastResponse
// @Failure      403       {object}  map[string]string
// @Router       /v1/dispatch/stores/{store_id}/broadcast-processing [post]
func (h *DispatchHandler) BroadcastProcessing(c echo.Context) error {
	return h.bulkBroadcast(c, h.service.BroadcastProcessing)
}

func (h *DispatchHandler) bulkBroadcast(c echo.Context, op func(ctx context.Context, storeID string) (ports.BulkBroadcastResult, error)) error {
	storeID := c.Param("store_id")

	// Store owners may only broadcast their own store.
	scope, err := ctxStoreScope(c)
	if err != nil {
		return err
	}
	if scope != "" && scope != storeID {
		return domain.ErrForbidden
	}

	result, err := op(c.Request().Context(), storeID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, bulkBroadcastResponse{
		StoreID:  result.StoreID,
		Enqueued: result.Enqueued,
		Message:  "broadcasts accepted",
	})
}
