package handler

import (
	"net/http"

	"github.com/Ignaci05/Area51Bazar/internal/logger"
	"github.com/Ignaci05/Area51Bazar/internal/middleware"
	"github.com/Ignaci05/Area51Bazar/internal/usecase"

	"github.com/labstack/echo/v4"
)

// UIは文言ではなくkindで分岐する
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	ProductID string `json:"product_id,omitempty"`
	Available *int64 `json:"available,omitempty"`
}

// SuccessResponse は { message: string }
type SuccessResponse struct {
	Message string `json:"message"`
}

func statusOf(kind usecase.ErrorKind) int {
	switch kind {
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindInsufficientStock, usecase.KindStockCeiling, usecase.KindConflict:
		return http.StatusConflict
	case usecase.KindValidation:
		return http.StatusBadRequest
	case usecase.KindUnauthorized:
		return http.StatusUnauthorized
	case usecase.KindForbidden:
		return http.StatusForbidden
	case usecase.KindConflictRetryExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) (int, ErrorResponse) {
	if ue, ok := usecase.AsError(err); ok {
		return statusOf(ue.Kind), ErrorResponse{
			Error:     ue.Message,
			Kind:      string(ue.Kind),
			ProductID: ue.ProductID,
			Available: ue.Available,
		}
	}
	//500
	return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Kind: string(usecase.KindInternal)}
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request().Context(), nil).ErrorContext(c.Request().Context(), "request failed", "err", err)
	}
	return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Kind: string(usecase.KindValidation)})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Kind: string(usecase.KindUnauthorized)})
}

//middleware.AuthJWT が c.Set("user_id", string) した値を取り出す
func getUserIDFromContext(c echo.Context) (string, bool) {
	return middleware.UserID(c)
}

func viewerFromContext(c echo.Context) (usecase.Viewer, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		return usecase.Viewer{}, false
	}
	role, ok := middleware.UserRole(c)
	if !ok {
		return usecase.Viewer{}, false
	}
	return usecase.Viewer{UserID: id, Role: role}, true
}
