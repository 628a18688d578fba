package middleware

import (
	"net/http"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleがadminかどうかを確認します。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := UserRole(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//sellerは拒否、adminだけ許可
			switch role {
			case model.RoleAdmin:
				return next(c)
			case model.RoleSeller:
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			default:
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
		}
	}
}
