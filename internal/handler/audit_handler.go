package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/audit-logs
type AuditHandler struct {
	uc *usecase.AuditUsecase
}

func NewAuditHandler(uc *usecase.AuditUsecase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

func (h *AuditHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/audit-logs", h.list)
}

// ?actor_user_id=&action=&resource_type=&resource_id=&from=&to=(RFC3339)&limit=&offset=
func (h *AuditHandler) list(c echo.Context) error {
	in := usecase.ListAuditLogsInput{
		ActorUserID:  c.QueryParam("actor_user_id"),
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
	}

	var err error
	if in.From, err = parseTimeParam(c, "from"); err != nil {
		return badRequest(c, "invalid from")
	}
	if in.To, err = parseTimeParam(c, "to"); err != nil {
		return badRequest(c, "invalid to")
	}
	if v := c.QueryParam("limit"); v != "" {
		if in.Limit, err = strconv.Atoi(v); err != nil {
			return badRequest(c, "invalid limit")
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if in.Offset, err = strconv.Atoi(v); err != nil {
			return badRequest(c, "invalid offset")
		}
	}

	logs, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func parseTimeParam(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
