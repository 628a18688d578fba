package auth

import (
	"context"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/repository"
)

// 管理者が1人もいなければ作る（初回起動用）。作ったらtrue
func EnsureAdmin(ctx context.Context, users repository.UserRepository, register *RegisterUserUsecase, name string, email string, password string) (bool, error) {
	n, err := users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	if _, err := register.Execute(ctx, RegisterUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     model.RoleAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}
