package repository

import (
	"context"
	"errors"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（email重複はErrDuplicate）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//名前順
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	CountByRole(ctx context.Context, role model.Role) (int64, error)
	// 名前・アクティブかどうか・最後のログインなど
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, userID string) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID string) error
}
