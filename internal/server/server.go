package server

import (
	"context"
	"errors"

	"checkout-engine/internal/apperr"
	"checkout-engine/internal/config"
	"checkout-engine/internal/handler"
	mw "checkout-engine/internal/middleware"
	"checkout-engine/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	echo            *echo.Echo
	cartHandler     *handler.CartHandler
	shippingHandler *handler.ShippingHandler
	checkoutHandler *handler.CheckoutHandler
	jwtSecret       string
}

func NewServer(
	cfg *config.Config,
	cartService service.CartService,
	shippingService service.ShippingService,
	checkoutService service.CheckoutService,
	logger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Error(v.Error))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.HTTPErrorHandler = errorHandler(logger)

	cartHandler := handler.NewCartHandler(cartService, cfg.Cart.GuestCookieName, cfg.Cart.GuestCookieTTL)
	shippingHandler := handler.NewShippingHandler(shippingService, cartHandler)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)

	s := &Server{
		echo:            e,
		cartHandler:     cartHandler,
		shippingHandler: shippingHandler,
		checkoutHandler: checkoutHandler,
		jwtSecret:       cfg.Auth.JWTSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- cart & shipping (guests allowed) --------
	browse := api.Group("", mw.OptionalAuth(s.jwtSecret))
	browse.GET("/cart", s.cartHandler.GetCart)
	browse.POST("/cart/items", s.cartHandler.AddItem)
	browse.PATCH("/cart/items/:productID", s.cartHandler.SetQuantity)
	browse.DELETE("/cart/items/:productID", s.cartHandler.RemoveItem)
	browse.POST("/shipping", s.shippingHandler.SetShipping)
	browse.PATCH("/shipping", s.shippingHandler.SetShipping)
	browse.GET("/shipping", s.shippingHandler.GetShipping)

	// -------- checkout (authenticated) --------
	payment := api.Group("/payment", mw.Auth(s.jwtSecret))
	payment.POST("", s.checkoutHandler.InitiatePayment)
	payment.GET("/verify", s.checkoutHandler.VerifyPayment)

	// -------- gateway callbacks --------
	api.POST("/payment/webhook", s.checkoutHandler.GatewayWebhook)
}

// errorHandler maps the error taxonomy to HTTP statuses. User-actionable
// kinds keep their message; everything else is logged in full and surfaced
// as a generic message.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			_ = c.JSON(httpErr.Code, map[string]interface{}{"error": httpErr.Message})
			return
		}

		kind := apperr.KindOf(err)
		if kind == apperr.KindSystem {
			logger.Error("unhandled error",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err))
		}

		_ = c.JSON(apperr.HTTPStatus(kind), map[string]interface{}{
			"error": apperr.UserMessage(err),
		})
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
