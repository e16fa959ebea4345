package dto

import (
	"strings"

	"menus-api/internal/domain"
)

// MenuInput 创建/更新菜单的入参
type MenuInput struct {
	Name        string  `json:"name" validate:"required,max=128"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	Order       *int    `json:"order" validate:"omitempty,min=0,max=32767"`
}

// Normalize 去掉首尾空白；空描述当作没有
func (in *MenuInput) Normalize() *MenuInput {
	in.Name = strings.TrimSpace(in.Name)
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			in.Description = nil
		} else {
			in.Description = &d
		}
	}
	return in
}

func (in *MenuInput) Validate() FieldErrors { return validateStruct(in) }

// FromMenu 用实体当前值填充，PATCH 式合并时作为底稿
func FromMenu(m *domain.Menu) MenuInput {
	return MenuInput{Name: m.Name, Description: m.Description, Order: m.Order}
}

// UserInput 注册/修改用户。Roles 只有管理端和 menusctl 会传
type UserInput struct {
	Email    string   `json:"email" validate:"required,max=180,email"`
	Password string   `json:"password" validate:"required,min=6,max=4096"`
	Roles    []string `json:"roles" validate:"omitempty,dive,startswith=ROLE_"`
}

func (in *UserInput) Normalize() *UserInput {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return in
}

func (in *UserInput) Validate() FieldErrors { return validateStruct(in) }

// LoginInput 登录
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (in *LoginInput) Validate() FieldErrors { return validateStruct(in) }
