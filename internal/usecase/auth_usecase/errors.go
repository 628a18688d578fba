package auth

import "errors"

var (
	// メールまたはパスワードが違う
	ErrInvalidCredentials = errors.New("invalid credentials")

	// 停止済みユーザー
	ErrUserInactive = errors.New("user is inactive")

	// 入力が不正
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrWeakPassword       = errors.New("weak password")

	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")
)
