package handler

import (
	"net/http"

	"github.com/Ignaci05/Area51Bazar/internal/usecase"

	"github.com/labstack/echo/v4"
)

type EmployeeCreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type EmployeeRenameRequest struct {
	Name string `json:"name"`
}

// /admin/employees 販売員アカウントの管理
type AdminEmployeeHandler struct {
	uc *usecase.EmployeeUsecase
}

func NewAdminEmployeeHandler(uc *usecase.EmployeeUsecase) *AdminEmployeeHandler {
	return &AdminEmployeeHandler{uc: uc}
}

func (h *AdminEmployeeHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/employees", h.list)
	admin.POST("/employees", h.create)
	admin.PUT("/employees/:id", h.rename)
	admin.DELETE("/employees/:id", h.delete)
	admin.POST("/employees/:id/toggle", h.toggle)
}

func (h *AdminEmployeeHandler) list(c echo.Context) error {
	users, err := h.uc.ListSellers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// 管理者のセッションはそのまま（トークンは発行しない）
func (h *AdminEmployeeHandler) create(c echo.Context) error {
	var req EmployeeCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	u, err := h.uc.Create(c.Request().Context(), adminID, usecase.CreateEmployeeInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *AdminEmployeeHandler) rename(c echo.Context) error {
	var req EmployeeRenameRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	u, err := h.uc.Rename(c.Request().Context(), adminID, c.Param("id"), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AdminEmployeeHandler) toggle(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	u, err := h.uc.ToggleActive(c.Request().Context(), adminID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AdminEmployeeHandler) delete(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.Delete(c.Request().Context(), adminID, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
