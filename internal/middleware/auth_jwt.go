package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ignaci05/Area51Bazar/internal/config"
	"github.com/Ignaci05/Area51Bazar/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // string
	CtxUserRoleKey     = "user_role"     // model.Role
	CtxTokenVersionKey = "token_version" // int
	CtxUserNameKey     = "user_name"     // string（TokenVersionGuardが入れる）
)

// bearerAuth用のJWT検証ミドルウェア。
// EventSourceはヘッダを付けられないので、ヘッダがなければ ?access_token= を見る
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//JWTをパースして検証する
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//claimsを取り出す
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//user_idを取り出す
			userID, err := parseString(claims["sub"])
			if err != nil || strings.TrimSpace(userID) == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//roleを取り出す（admin/seller以外は拒否）
			rawRole, err := parseString(claims["role"])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			role, err := model.ParseRole(rawRole)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//token_versionを取り出す
			tv, err := parseInt(claims["tv"])
			if err != nil || tv < 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, userID)
			c.Set(CtxUserRoleKey, role)
			c.Set(CtxTokenVersionKey, tv)

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		if c.Request().Method != http.MethodGet {
			return "", false
		}
		t := strings.TrimSpace(c.QueryParam("access_token"))
		return t, t != ""
	}

	//Bearer形式か確認してtokenを抜く
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	t := strings.TrimSpace(parts[1])
	return t, t != ""
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func errorJSON(msg string) errorResponse {
	switch msg {
	case "forbidden", "admin only":
		return errorResponse{Error: msg, Kind: "FORBIDDEN"}
	default:
		return errorResponse{Error: msg, Kind: "UNAUTHORIZED"}
	}
}

func parseString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("invalid string")
	}
	return s, nil
}

func parseInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case int:
		return t, nil
	case string:
		i64, err := strconv.ParseInt(t, 10, 32)
		if err != nil {
			return 0, err
		}
		return int(i64), nil
	default:
		return 0, errors.New("invalid int")
	}
}

// handlerから使う
func UserID(c echo.Context) (string, bool) {
	id, ok := c.Get(CtxUserIDKey).(string)
	return id, ok && id != ""
}

func UserRole(c echo.Context) (model.Role, bool) {
	r, ok := c.Get(CtxUserRoleKey).(model.Role)
	return r, ok
}

func UserName(c echo.Context) string {
	n, _ := c.Get(CtxUserNameKey).(string)
	return n
}
