package handler

import (
	"net/http"

	"github.com/Ignaci05/Area51Bazar/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 作成・編集の入力。作成時のstorefrontは無視される（店頭は0から）
type ProductRequest struct {
	Barcode    string          `json:"barcode"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Price      decimal.Decimal `json:"price"`
	Cost       decimal.Decimal `json:"cost"`
	Warehouse  int64           `json:"warehouse"`
	Storefront int64           `json:"storefront"`
}

func (r ProductRequest) input() usecase.ProductInput {
	return usecase.ProductInput{
		Barcode:    r.Barcode,
		Name:       r.Name,
		Category:   r.Category,
		Price:      r.Price,
		Cost:       r.Cost,
		Warehouse:  r.Warehouse,
		Storefront: r.Storefront,
	}
}

// 倉庫→店頭の移動
type TransferRequest struct {
	Quantity int64 `json:"quantity"`
}

// /admin/products
type AdminProductHandler struct {
	uc *usecase.InventoryUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.InventoryUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminグループに登録
func (h *AdminProductHandler) RegisterRoutes(admin *echo.Group) {
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.POST("/products/:id/transfer", h.transfer)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), adminID, req.input())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	p, err := h.uc.UpdateProduct(c.Request().Context(), adminID, c.Param("id"), req.input())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), adminID, c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminProductHandler) transfer(c echo.Context) error {
	var req TransferRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	p, err := h.uc.Transfer(c.Request().Context(), adminID, c.Param("id"), req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}
