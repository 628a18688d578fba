package handler

import (
	"net/http"

	"github.com/Ignaci05/Area51Bazar/internal/usecase"
	auth "github.com/Ignaci05/Area51Bazar/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthHandler struct {
	loginUC *auth.LoginUsecase // ログインusecase
	meUC    *auth.MeUsecase
}

// DIコンストラクタ
func NewAuthHandler(loginUC *auth.LoginUsecase, meUC *auth.MeUsecase) *AuthHandler {
	return &AuthHandler{loginUC: loginUC, meUC: meUC}
}

// loginは公開、meはログイン必須
func (h *AuthHandler) RegisterRoutes(public *echo.Group, authed *echo.Group) {
	public.POST("/auth/login", h.Login)
	authed.GET("/auth/me", h.Me)
}

// LoginはPOST /auth/loginのハンドラ
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, usecase.FromAuth(err))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	u, err := h.meUC.Execute(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, usecase.FromAuth(err))
	}
	return c.JSON(http.StatusOK, u)
}
