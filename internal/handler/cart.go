package handler

import (
	"net/http"
	"strconv"
	"time"

	"checkout-engine/internal/dto"
	mw "checkout-engine/internal/middleware"
	"checkout-engine/internal/model"
	"checkout-engine/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService     service.CartService
	guestCookieName string
	guestCookieTTL  time.Duration
}

func NewCartHandler(cartService service.CartService, guestCookieName string, guestCookieTTL time.Duration) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		guestCookieName: guestCookieName,
		guestCookieTTL:  guestCookieTTL,
	}
}

// resolveCart finds the caller's cart by verified user id or guest cookie,
// minting and persisting a new token when neither matches.
func (h *CartHandler) resolveCart(c echo.Context) (*model.Cart, error) {
	identity := service.CartIdentity{UserID: mw.UserID(c)}
	if cookie, err := c.Cookie(h.guestCookieName); err == nil {
		identity.GuestToken = cookie.Value
	}

	cart, minted, err := h.cartService.Resolve(c.Request().Context(), identity)
	if err != nil {
		return nil, err
	}
	if minted != "" {
		c.SetCookie(&http.Cookie{
			Name:     h.guestCookieName,
			Value:    minted,
			Path:     "/",
			Expires:  time.Now().Add(h.guestCookieTTL),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return cart, nil
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	summary, err := h.cartService.GetSummary(ctx, cart.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	if err := h.cartService.AddItem(ctx, cart.ID, req.ProductID, req.Quantity); err != nil {
		return err
	}

	summary, err := h.cartService.GetSummary(ctx, cart.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *CartHandler) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	var req dto.SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	if err := h.cartService.SetQuantity(ctx, cart.ID, productID, req.Quantity); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	if err := h.cartService.RemoveItem(ctx, cart.ID, productID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func productIDParam(c echo.Context) (uint, error) {
	raw, err := strconv.ParseUint(c.Param("productID"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	return uint(raw), nil
}
