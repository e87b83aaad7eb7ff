package handler

import (
	"net/http"

	"checkout-engine/internal/dto"
	"checkout-engine/internal/service"

	"github.com/labstack/echo/v4"
)

type ShippingHandler struct {
	shippingService service.ShippingService
	cartHandler     *CartHandler
}

func NewShippingHandler(shippingService service.ShippingService, cartHandler *CartHandler) *ShippingHandler {
	return &ShippingHandler{
		shippingService: shippingService,
		cartHandler:     cartHandler,
	}
}

func (h *ShippingHandler) SetShipping(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ShippingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	cart, err := h.cartHandler.resolveCart(c)
	if err != nil {
		return err
	}

	resp, err := h.shippingService.Set(ctx, cart.ID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *ShippingHandler) GetShipping(c echo.Context) error {
	ctx := c.Request().Context()

	cart, err := h.cartHandler.resolveCart(c)
	if err != nil {
		return err
	}

	resp, err := h.shippingService.Get(ctx, cart.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}
