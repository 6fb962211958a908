package server

import (
	"net/http"

	"pos/internal/config"
	"pos/internal/handler"
	"pos/internal/infra/logger"
	"pos/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	Sale          *handler.SaleHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	Adjustment    *handler.AdjustmentHandler
	Vendor        *handler.VendorHandler
}

// New は全ルートを登録したechoインスタンスを返す。
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(logger.Middleware())

	m := metrics.NewHTTPMetrics()
	e.Use(m.Middleware())
	e.GET("/metrics", m.Handler())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Auth.RegisterRoutes(e, cfg)
	h.Product.RegisterRoutes(e, cfg)
	h.Sale.RegisterRoutes(e, cfg)
	h.PurchaseOrder.RegisterRoutes(e, cfg)
	h.Adjustment.RegisterRoutes(e, cfg)
	h.Vendor.RegisterRoutes(e, cfg)

	return e
}

func Start(cfg config.Config, h Handlers) error {
	e := New(cfg, h)
	return e.Start(":" + cfg.Port)
}
