package handler

import (
	"net/http"
	"strconv"

	"pos/internal/config"
	"pos/internal/domain/model"
	"pos/internal/middleware"
	"pos/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdjustRequest struct {
	ProductID int64  `json:"product_id"`
	Type      string `json:"type"`
	Delta     int64  `json:"delta"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
}

type AdjustmentHandler struct {
	uc *usecase.AdjustmentUsecase
}

// DI
func NewAdjustmentHandler(uc *usecase.AdjustmentUsecase) *AdjustmentHandler {
	return &AdjustmentHandler{uc: uc}
}

// 在庫調整はADMIN専用。
func (h *AdjustmentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/adjustments")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("", h.adjust)
	g.GET("", h.list)
}

func (h *AdjustmentHandler) adjust(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AdjustRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Adjust(c.Request().Context(), usecase.AdjustInput{
		ProductID:       req.ProductID,
		Type:            model.AdjustmentType(req.Type),
		Delta:           req.Delta,
		Reason:          req.Reason,
		Notes:           req.Notes,
		CreatedByUserID: userID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AdjustmentHandler) list(c echo.Context) error {
	productID, err := strconv.ParseInt(c.QueryParam("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

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

	out, err := h.uc.ListAdjustments(c.Request().Context(), productID, page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
