package handler

import (
	"fmt"
	"io"
	"net/http"

	mw "checkout-engine/internal/middleware"
	"checkout-engine/internal/service"

	"github.com/labstack/echo/v4"
)

// SignatureHeader carries the gateway's HMAC over the webhook body.
const SignatureHeader = "X-Gateway-Signature"

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) InitiatePayment(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.checkoutService.InitiatePayment(ctx, mw.UserID(c), mw.Email(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	reference := c.QueryParam("reference")
	if reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing payment reference")
	}

	summary, err := h.checkoutService.VerifyPayment(ctx, mw.UserID(c), reference)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *CheckoutHandler) GatewayWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	signature := c.Request().Header.Get(SignatureHeader)
	if err := h.checkoutService.HandleWebhook(ctx, signature, body); err != nil {
		return fmt.Errorf("handle webhook: %w", err)
	}

	return c.NoContent(http.StatusOK)
}
