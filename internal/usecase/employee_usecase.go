package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"
	auth "github.com/Ignaci05/Area51Bazar/internal/usecase/auth_usecase"
)

// 管理者による販売員アカウントの管理
type EmployeeUsecase struct {
	users    repo.UserRepository
	audit    repo.AuditLogRepository
	register *auth.RegisterUserUsecase
	deps     Deps
}

// DI
func NewEmployeeUsecase(users repo.UserRepository, audit repo.AuditLogRepository, register *auth.RegisterUserUsecase, deps Deps) *EmployeeUsecase {
	return &EmployeeUsecase{
		users:    users,
		audit:    audit,
		register: register,
		deps:     deps.withDefaults(),
	}
}

func (u *EmployeeUsecase) ListSellers(ctx context.Context) ([]model.User, error) {
	users, err := u.users.ListByRole(ctx, model.RoleSeller)
	if err != nil {
		return nil, fromRepo(err, "not found")
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

type CreateEmployeeInput struct {
	Name     string
	Email    string
	Password string
}

// 新しい販売員（有効な状態で作る）。管理者のセッションには触れない
func (u *EmployeeUsecase) Create(ctx context.Context, actorID string, in CreateEmployeeInput) (model.User, error) {
	out, err := u.register.Execute(ctx, auth.RegisterUserInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     model.RoleSeller,
	})
	if err != nil {
		return model.User{}, fromAuth(err)
	}

	u.writeAudit(ctx, actorID, model.AuditActionCreateEmployee, out.User.ID, nil, &out.User)
	return out.User, nil
}

func (u *EmployeeUsecase) Rename(ctx context.Context, actorID string, userID string, name string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, Validation("name required")
	}
	if len(name) > 255 {
		return model.User{}, Validation("name too long")
	}

	user, err := u.findSeller(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	before := *user

	user.Name = name
	user.UpdatedAt = u.deps.Clock.Now()
	if err := u.users.Update(ctx, user); err != nil {
		return model.User{}, fromRepo(err, "employee not found")
	}

	u.writeAudit(ctx, actorID, model.AuditActionUpdateEmployee, user.ID, &before, user)
	return *user, nil
}

// 有効/無効を切り替える。無効にしたら発行済みトークンも失効させる
func (u *EmployeeUsecase) ToggleActive(ctx context.Context, actorID string, userID string) (model.User, error) {
	user, err := u.findSeller(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	before := *user

	user.Active = !user.Active
	user.UpdatedAt = u.deps.Clock.Now()
	if err := u.users.Update(ctx, user); err != nil {
		return model.User{}, fromRepo(err, "employee not found")
	}
	if !user.Active {
		if err := u.users.IncrementTokenVersion(ctx, user.ID); err != nil {
			return model.User{}, fromRepo(err, "employee not found")
		}
		user.TokenVersion++
	}

	u.writeAudit(ctx, actorID, model.AuditActionToggleEmployee, user.ID, &before, user)
	return *user, nil
}

func (u *EmployeeUsecase) Delete(ctx context.Context, actorID string, userID string) error {
	user, err := u.findSeller(ctx, userID)
	if err != nil {
		return err
	}
	if err := u.users.Delete(ctx, user.ID); err != nil {
		return fromRepo(err, "employee not found")
	}

	u.writeAudit(ctx, actorID, model.AuditActionDeleteEmployee, user.ID, user, nil)
	return nil
}

// 管理者はここからは触れない
func (u *EmployeeUsecase) findSeller(ctx context.Context, userID string) (*model.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, Validation("invalid employee id")
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fromRepo(err, "employee not found")
	}
	if user.Role != model.RoleSeller {
		return nil, NotFound("employee not found")
	}
	return user, nil
}

// 監査ログ用（パスワードハッシュは含まない）
type employeeSnapshot struct {
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
	Active bool       `json:"active"`
}

func employeeJSON(u *model.User) string {
	if u == nil {
		return ""
	}
	b, err := json.Marshal(employeeSnapshot{Name: u.Name, Email: u.Email, Role: u.Role, Active: u.Active})
	if err != nil {
		return "{}"
	}
	return string(b)
}

// 操作自体は終わっているので失敗してもログだけ
func (u *EmployeeUsecase) writeAudit(ctx context.Context, actorID string, action model.AuditAction, resourceID string, before *model.User, after *model.User) {
	err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceUser,
		ResourceID:   resourceID,
		BeforeJSON:   employeeJSON(before),
		AfterJSON:    employeeJSON(after),
		CreatedAt:    u.deps.Clock.Now(),
	})
	if err != nil {
		u.deps.Log.WarnContext(ctx, "audit log write failed",
			slog.String("action", string(action)),
			slog.String("resource_id", resourceID),
			slog.Any("err", err),
		)
	}
}

// auth側のエラーを種類に寄せる
func fromAuth(err error) error {
	switch {
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return Conflict("email already exists")
	case errors.Is(err, auth.ErrInvalidEmailFormat):
		return Validation("invalid email format")
	case errors.Is(err, auth.ErrPasswordTooShort):
		return Validation("password too short")
	case errors.Is(err, auth.ErrWeakPassword):
		return Validation("weak password")
	case errors.Is(err, auth.ErrInvalidInput):
		return Validation(err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return Unauthorized("invalid credentials")
	case errors.Is(err, auth.ErrUserInactive):
		return Unauthorized("user is inactive")
	case errors.Is(err, model.ErrUnknownRole):
		return Unauthorized("unknown role")
	default:
		return fromRepo(err, "user not found")
	}
}

// FromAuthはhandlerから使う
func FromAuth(err error) error {
	return fromAuth(err)
}
