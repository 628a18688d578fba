package handler

import (
	"net/http"

	"github.com/Ignaci05/Area51Bazar/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/stats 管理画面の集計
type AdminStatsHandler struct {
	uc *usecase.StatsUsecase
}

func NewAdminStatsHandler(uc *usecase.StatsUsecase) *AdminStatsHandler {
	return &AdminStatsHandler{uc: uc}
}

func (h *AdminStatsHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/stats/today", h.today)
	admin.GET("/stats/low-stock", h.lowStock)
}

func (h *AdminStatsHandler) today(c echo.Context) error {
	out, err := h.uc.Today(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 店頭在庫が5未満
func (h *AdminStatsHandler) lowStock(c echo.Context) error {
	items, err := h.uc.LowStock(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}
