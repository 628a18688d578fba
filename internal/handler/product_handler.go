package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Ignaci05/Area51Bazar/internal/infra/feed"
	"github.com/Ignaci05/Area51Bazar/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products の参照API（ログイン済みなら誰でも）
type ProductHandler struct {
	uc   *usecase.InventoryUsecase
	feed feed.Subscriber
}

// DI
func NewProductHandler(uc *usecase.InventoryUsecase, sub feed.Subscriber) *ProductHandler {
	return &ProductHandler{uc: uc, feed: sub}
}

// 商品のルートを登録
func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products", h.list)
	g.GET("/products/stream", h.stream)
	g.GET("/products/barcode/:code", h.byBarcode)
	g.GET("/products/:id", h.detail)
}

func listInput(c echo.Context) (usecase.ListProductsInput, error) {
	in := usecase.ListProductsInput{
		Q:        c.QueryParam("q"),
		Category: c.QueryParam("category"),
		// レジの商品グリッドは店頭にあるものだけ
		InStorefront: c.QueryParam("in_stock") == "storefront",
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return in, err
		}
		in.Limit = l
	}
	return in, nil
}

func (h *ProductHandler) list(c echo.Context) error {
	in, err := listInput(c)
	if err != nil {
		return badRequest(c, "invalid limit")
	}

	items, err := h.uc.ListProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.uc.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) byBarcode(c echo.Context) error {
	p, err := h.uc.FindByBarcode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// 一覧のライブ表示（SSE）
func (h *ProductHandler) stream(c echo.Context) error {
	in, err := listInput(c)
	if err != nil {
		return badRequest(c, "invalid limit")
	}
	return streamSnapshots(c, h.feed, feed.TopicProducts, func(ctx context.Context) (interface{}, error) {
		return h.uc.ListProducts(ctx, in)
	})
}
