package validator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Ignaci05/Area51Bazar/internal/repository"
	auth "github.com/Ignaci05/Area51Bazar/internal/usecase/auth_usecase"
)

// 簡易メール形式
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) auth.CredentialValidator {
	return &authValidator{users: users}
}

// アカウント作成の入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, name string, email string, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	// 必須チェック
	if name == "" || email == "" || password == "" {
		return fmt.Errorf("%w: name, email and password are required", auth.ErrInvalidInput)
	}
	if len(name) > 255 {
		return fmt.Errorf("%w: name too long", auth.ErrInvalidInput)
	}

	// email形式
	if !isEmailLike(email) {
		return auth.ErrInvalidEmailFormat
	}

	// email重複チェック（DBが必要）
	u, err := v.users.FindByEmail(ctx, email)
	if err == nil && u != nil {
		return auth.ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", auth.ErrInvalidInput)
	}

	// email形式
	if !isEmailLike(email) {
		return auth.ErrInvalidEmailFormat
	}

	return nil
}

func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
