package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// アカウント作成の入力。Roleが空なら販売員
type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// アカウント作成の出力
type RegisterUserOutput struct {
	User model.User
}

// パスワードの最小文字数
const MinPasswordLength = 8

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// RegisterUserUsecaseはアカウントを作るだけ。トークンは発行しないので
// 作った管理者のセッションはそのまま
type RegisterUserUsecase struct {
	userRepo  repository.UserRepository
	validator CredentialValidator
	hasher    PasswordHasher
	idGen     IDGenerator
	clock     Clock
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	validator CredentialValidator,
	hasher PasswordHasher,
	idGen IDGenerator,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo:  userRepo,
		validator: validator,
		hasher:    hasher,
		idGen:     idGen,
		clock:     clock,
	}
}

// アカウント作成実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	//形式・重複チェック
	if u.validator != nil {
		if err := u.validator.ValidateRegister(ctx, name, email, in.Password); err != nil {
			return out, err
		}
	}

	// password の長さチェック
	if len(in.Password) < MinPasswordLength {
		return out, ErrPasswordTooShort
	}

	// よくある弱いパスワードの拒否
	if isWeakPassword(in.Password) {
		return out, ErrWeakPassword
	}

	role := in.Role
	if role == "" {
		role = model.RoleSeller
	}
	if _, err := model.ParseRole(string(role)); err != nil {
		return out, ErrInvalidInput
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.idGen.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed, // ハッシュを保存（平文は保存しない）
		Role:         role,
		Active:       true,
		TokenVersion: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// DBへ保存
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return out, ErrEmailAlreadyExists
		}
		return out, err
	}

	out.User = *user
	return out, nil
}

// パスワードのよくある弱いパスワード
func isWeakPassword(password string) bool {
	normalized := strings.ToLower(strings.TrimSpace(password))

	weak := map[string]struct{}{
		"password":     {},
		"password123":  {},
		"123456789012": {},
		"1234567890":   {},
		"12345678":     {},
		"qwertyuiop":   {},
		"admin123":     {},
		"contrasena":   {},
	}

	_, ok := weak[normalized]
	return ok
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// 平文(plain)をbcryptで比較
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
