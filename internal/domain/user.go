package domain

import "gorm.io/datatypes"

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User 注册用户。Password 只存哈希
type User struct {
	ID       uint                        `gorm:"primaryKey;autoIncrement"`
	Email    string                      `gorm:"size:180;not null;uniqueIndex"`
	Password string                      `gorm:"size:255;not null"`
	Roles    datatypes.JSONSlice[string] `gorm:"not null"`
	Lifecycle
}

func (User) TableName() string { return "users" }

func (u *User) GetID() uint { return u.ID }

func (u *User) SetEmail(email string) *User {
	u.Email = email
	return u
}

// SetPassword 传入的必须是哈希
func (u *User) SetPassword(hash string) *User {
	u.Password = hash
	return u
}

func (u *User) SetRoles(roles []string) *User {
	if roles == nil {
		roles = []string{}
	}
	u.Roles = datatypes.JSONSlice[string](roles)
	return u
}

// GetRoles 去重，并且总是包含 ROLE_USER
func (u *User) GetRoles() []string {
	out := make([]string, 0, len(u.Roles)+1)
	seen := make(map[string]struct{}, len(u.Roles)+1)
	add := func(r string) {
		if r == "" {
			return
		}
		if _, ok := seen[r]; ok {
			return
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	for _, r := range u.Roles {
		add(r)
	}
	add(RoleUser)
	return out
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.GetRoles() {
		if r == role {
			return true
		}
	}
	return false
}
