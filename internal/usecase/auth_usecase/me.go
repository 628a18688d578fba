package auth

import (
	"context"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/repository"
)

// ログイン中のユーザー
type MeUsecase struct {
	userRepo repository.UserRepository
}

func NewMeUsecase(userRepo repository.UserRepository) *MeUsecase {
	return &MeUsecase{userRepo: userRepo}
}

func (u *MeUsecase) Execute(ctx context.Context, userID string) (model.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if !user.Active {
		return model.User{}, ErrUserInactive
	}
	return *user, nil
}
