package handler

import (
	"context"
	"net/http"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/infra/feed"
	"github.com/Ignaci05/Area51Bazar/internal/middleware"
	"github.com/Ignaci05/Area51Bazar/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type SaleLineRequest struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

// POST /sales。totalは省略可（あれば明細の合計と一致すること）
type CommitSaleRequest struct {
	Lines         []SaleLineRequest `json:"lines"`
	Total         *decimal.Decimal  `json:"total"`
	PaymentMethod string            `json:"payment_method"`
}

// /sales
type SaleHandler struct {
	sales *usecase.SaleUsecase
	stats *usecase.StatsUsecase
	feed  feed.Subscriber
}

// DI
func NewSaleHandler(sales *usecase.SaleUsecase, stats *usecase.StatsUsecase, sub feed.Subscriber) *SaleHandler {
	return &SaleHandler{sales: sales, stats: stats, feed: sub}
}

func (h *SaleHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/sales", h.commit)
	g.GET("/sales", h.list, middleware.AdminRoleGuard())
	g.GET("/sales/mine", h.mine)
	g.GET("/sales/stream", h.stream)
	g.GET("/sales/:id", h.detail)
}

func (h *SaleHandler) commit(c echo.Context) error {
	var req CommitSaleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	lines := make([]usecase.SaleLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, usecase.SaleLineInput{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	sale, err := h.sales.CommitSale(c.Request().Context(), usecase.CommitSaleInput{
		Lines:         lines,
		Total:         req.Total,
		SellerID:      sellerID,
		SellerName:    middleware.UserName(c),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, sale)
}

// ?date=YYYY-MM-DD&seller_id=
func (h *SaleHandler) list(c echo.Context) error {
	day, err := h.stats.ParseDay(c.QueryParam("date"))
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.stats.Day(c.Request().Context(), day, c.QueryParam("seller_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 販売員の今日の履歴と合計
func (h *SaleHandler) mine(c echo.Context) error {
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.stats.MySales(c.Request().Context(), sellerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SaleHandler) detail(c echo.Context) error {
	viewer, ok := viewerFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	sale, err := h.sales.GetSale(c.Request().Context(), viewer, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sale)
}

// 今日の販売のライブ表示（販売員は自分の分だけ）
func (h *SaleHandler) stream(c echo.Context) error {
	viewer, ok := viewerFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	return streamSnapshots(c, h.feed, feed.TopicSales, func(ctx context.Context) (interface{}, error) {
		switch viewer.Role {
		case model.RoleAdmin:
			return h.stats.Today(ctx)
		case model.RoleSeller:
			return h.stats.MySales(ctx, viewer.UserID)
		default:
			return nil, usecase.Unauthorized("unauthorized")
		}
	})
}
