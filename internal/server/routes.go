package server

import (
	"github.com/Ignaci05/Area51Bazar/internal/config"
	"github.com/Ignaci05/Area51Bazar/internal/handler"
	"github.com/Ignaci05/Area51Bazar/internal/middleware"
	"github.com/Ignaci05/Area51Bazar/internal/repository"

	"github.com/labstack/echo/v4"
)

// mainで組み立てたhandler
type Handlers struct {
	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	AdminProduct  *handler.AdminProductHandler
	Sale          *handler.SaleHandler
	Register      *handler.RegisterHandler
	AdminStats    *handler.AdminStatsHandler
	AdminEmployee *handler.AdminEmployeeHandler
	Audit         *handler.AuditHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	public := e.Group("")

	// ログイン必須 + token_version一致 + 有効なアカウント
	authed := e.Group("",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	)

	// /admin 配下は全部 admin限定
	admin := e.Group("/admin",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
		middleware.AdminRoleGuard(),
	)

	h.Auth.RegisterRoutes(public, authed)
	h.Product.RegisterRoutes(authed)
	h.Sale.RegisterRoutes(authed)
	h.Register.RegisterRoutes(authed)

	h.AdminProduct.RegisterRoutes(admin)
	h.AdminStats.RegisterRoutes(admin)
	h.AdminEmployee.RegisterRoutes(admin)
	h.Audit.RegisterRoutes(admin)
}
