package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Ignaci05/Area51Bazar/internal/middleware"
	"github.com/Ignaci05/Area51Bazar/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AddItemRequest struct {
	ProductID string `json:"product_id"`
}

type ScanRequest struct {
	Barcode string `json:"barcode"`
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// /register レジ画面のカート
type RegisterHandler struct {
	uc *usecase.RegisterUsecase
}

// DI
func NewRegisterHandler(uc *usecase.RegisterUsecase) *RegisterHandler {
	return &RegisterHandler{uc: uc}
}

func (h *RegisterHandler) RegisterRoutes(g *echo.Group) {
	r := g.Group("/register")

	r.GET("/cart", h.getCart)
	r.DELETE("/cart", h.cancel)
	r.POST("/cart/items", h.addItem)
	r.POST("/cart/scan", h.scan)
	r.POST("/cart/items/:index/increment", h.increment)
	r.POST("/cart/items/:index/decrement", h.decrement)
	r.DELETE("/cart/items/:index", h.remove)
	r.POST("/checkout", h.checkout)
}

func (h *RegisterHandler) getCart(c echo.Context) error {
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	v, err := h.uc.GetCart(c.Request().Context(), sellerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *RegisterHandler) cancel(c echo.Context) error {
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.uc.Cancel(c.Request().Context(), sellerID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "cart cleared"})
}

func (h *RegisterHandler) addItem(c echo.Context) error {
	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	v, err := h.uc.AddProduct(c.Request().Context(), sellerID, req.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *RegisterHandler) scan(c echo.Context) error {
	var req ScanRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	v, err := h.uc.Scan(c.Request().Context(), sellerID, req.Barcode)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *RegisterHandler) increment(c echo.Context) error {
	return h.adjust(c, h.uc.Increment)
}

func (h *RegisterHandler) decrement(c echo.Context) error {
	return h.adjust(c, h.uc.Decrement)
}

func (h *RegisterHandler) remove(c echo.Context) error {
	return h.adjust(c, h.uc.Remove)
}

type lineOp func(ctx context.Context, sellerID string, index int) (usecase.CartView, error)

// 明細の位置を指定する操作
func (h *RegisterHandler) adjust(c echo.Context, op lineOp) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return badRequest(c, "invalid index")
	}
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	v, err := op(c.Request().Context(), sellerID, index)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *RegisterHandler) checkout(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	sale, err := h.uc.Checkout(c.Request().Context(), usecase.Seller{
		ID:   sellerID,
		Name: middleware.UserName(c),
	}, req.PaymentMethod)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, sale)
}
