package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/repository"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email    string
	Password string
}

// token 形
type JwtAccessToken struct {
	AccessToken  string    `json:"access_token"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenVersion int       `json:"token_version"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  model.User     `json:"user"`
	Token JwtAccessToken `json:"token"`
	// ロールごとの最初の画面
	Home string `json:"home"`
}

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID string, role model.Role, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// 入力チェック（validatorパッケージが実装）
type CredentialValidator interface {
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidateRegister(ctx context.Context, name string, email string, password string) error
}

type LoginUsecase struct {
	userRepo  repository.UserRepository
	validator CredentialValidator
	verifier  PasswordVerifier
	issuer    AccessTokenIssuer
	clock     Clock
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	validator CredentialValidator,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo:  userRepo,
		validator: validator,
		verifier:  verifier,
		issuer:    issuer,
		clock:     clock,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if u.validator != nil {
		if err := u.validator.ValidateLogin(ctx, email, in.Password); err != nil {
			return out, err
		}
	}

	//emailでユーザー取得
	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, ErrInvalidCredentials
		}
		return out, err
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, ErrInvalidCredentials
	}

	//停止ユーザーはログイン不可
	if !user.Active {
		return out, ErrUserInactive
	}

	//知らないロールは通さない
	role, err := model.ParseRole(string(user.Role))
	if err != nil {
		return out, err
	}

	//AccessToken発行
	now := u.clock.Now()
	accessToken, accessExp, err := u.issuer.Issue(user.ID, role, user.TokenVersion, now)
	if err != nil {
		return out, err
	}

	//最終ログイン時刻更新
	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		return out, err
	}

	out.User = *user
	out.Token = JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		ExpiresAt:    accessExp,
		TokenVersion: user.TokenVersion,
	}
	out.Home = role.HomePath()
	return out, nil
}
