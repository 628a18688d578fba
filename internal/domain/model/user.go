package model

import (
	"errors"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
)

var ErrUnknownRole = errors.New("unknown role")

// 閉じた列挙。知らない値は拒否する
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSeller:
		return RoleSeller, nil
	default:
		return "", ErrUnknownRole
	}
}

// ログイン後の遷移先
func (r Role) HomePath() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleSeller:
		return "/register"
	default:
		return ""
	}
}

type User struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Role         Role       `gorm:"type:varchar(20);not null;index" json:"role"`
	Active       bool       `gorm:"not null" json:"active"`
	TokenVersion int        `gorm:"not null;default:0" json:"token_version"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
