package handler

import (
	"context"
	"net/http"
	"strconv"

	"pos/internal/config"
	"pos/internal/middleware"
	"pos/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PurchaseOrderItemRequest struct {
	ProductID       int64 `json:"product_id"`
	QuantityOrdered int64 `json:"quantity_ordered"`
	UnitCost        int64 `json:"unit_cost"`
}

type CreatePurchaseOrderRequest struct {
	VendorID     int64                      `json:"vendor_id"`
	ShippingCost int64                      `json:"shipping_cost"`
	Notes        string                     `json:"notes"`
	Items        []PurchaseOrderItemRequest `json:"items"`
}

type ReceiveLineRequest struct {
	ItemID   int64  `json:"item_id"`
	Quantity int64  `json:"quantity"`
	Notes    string `json:"notes"`
}

type ReceiveRequest struct {
	Lines []ReceiveLineRequest `json:"lines"`
}

type PurchaseOrderHandler struct {
	uc *usecase.PurchaseOrderUsecase
}

// DI
func NewPurchaseOrderHandler(uc *usecase.PurchaseOrderUsecase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc}
}

// 発注の作成と状態遷移はADMIN専用。閲覧と入荷記録はログインユーザーなら誰でも。
func (h *PurchaseOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/purchase-orders")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.POST("/:id/receive", h.receive)

	admin := g.Group("")
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("", h.create)
	admin.POST("/:id/submit", h.submit)
	admin.POST("/:id/approve", h.approve)
	admin.POST("/:id/close", h.close)
	admin.POST("/:id/cancel", h.cancel)
}

func (h *PurchaseOrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CreatePurchaseOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.PurchaseOrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.PurchaseOrderItemInput{
			ProductID:       it.ProductID,
			QuantityOrdered: it.QuantityOrdered,
			UnitCost:        it.UnitCost,
		})
	}

	out, err := h.uc.CreatePurchaseOrder(c.Request().Context(), usecase.CreatePurchaseOrderInput{
		VendorID:        req.VendorID,
		CreatedByUserID: userID,
		ShippingCost:    req.ShippingCost,
		Notes:           req.Notes,
		Items:           items,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *PurchaseOrderHandler) submit(c echo.Context) error {
	return h.transition(c, h.uc.SubmitPurchaseOrder)
}

func (h *PurchaseOrderHandler) approve(c echo.Context) error {
	return h.transition(c, h.uc.ApprovePurchaseOrder)
}

func (h *PurchaseOrderHandler) close(c echo.Context) error {
	return h.transition(c, h.uc.ClosePurchaseOrder)
}

func (h *PurchaseOrderHandler) cancel(c echo.Context) error {
	return h.transition(c, h.uc.CancelPurchaseOrder)
}

func (h *PurchaseOrderHandler) transition(c echo.Context, fn func(context.Context, int64) (usecase.PurchaseOrderOutput, error)) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := fn(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PurchaseOrderHandler) receive(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ReceiveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	lines := make([]usecase.ReceiveLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, usecase.ReceiveLineInput{ItemID: l.ItemID, Quantity: l.Quantity, Notes: l.Notes})
	}

	out, err := h.uc.ReceivePurchaseOrder(c.Request().Context(), id, lines)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PurchaseOrderHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetPurchaseOrder(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PurchaseOrderHandler) list(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.ListPurchaseOrders(c.Request().Context(), page, limit, c.QueryParam("status"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
