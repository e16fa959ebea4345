package dto

import (
	"strconv"
	"strings"
	"time"

	"menus-api/internal/domain"
)

// Group 序列化分组
type Group string

const (
	GroupMenu      Group = "menu"
	GroupUser      Group = "user"
	GroupLifecycle Group = "lifecycle"
	GroupDeleted   Group = "deleted"
)

const Version1 = "1.0"

// Context 输出哪些分组、哪个版本、是否输出 null
type Context struct {
	Groups        []Group
	Version       string
	SerializeNull bool
}

func (c Context) has(g Group) bool {
	for _, x := range c.Groups {
		if x == g {
			return true
		}
	}
	return false
}

var (
	MenuContext  = Context{Groups: []Group{GroupMenu, GroupLifecycle}, Version: Version1, SerializeNull: true}
	UserContext  = Context{Groups: []Group{GroupUser, GroupLifecycle}, Version: Version1, SerializeNull: true}
	TrashContext = Context{Groups: []Group{GroupMenu, GroupUser, GroupLifecycle, GroupDeleted}, Version: Version1, SerializeNull: true}
)

type field struct {
	name  string
	group Group
	since string
	value func() any
}

func SerializeMenu(m *domain.Menu, ctx Context) map[string]any {
	fields := []field{
		{"id", GroupMenu, Version1, func() any { return m.ID }},
		{"name", GroupMenu, Version1, func() any { return m.Name }},
		{"description", GroupMenu, Version1, func() any { return strOrNil(m.Description) }},
		{"order", GroupMenu, Version1, func() any { return intOrNil(m.Order) }},
	}
	return project(append(fields, lifecycleFields(&m.Lifecycle)...), ctx)
}

func SerializeMenus(ms []domain.Menu, ctx Context) []map[string]any {
	out := make([]map[string]any, 0, len(ms))
	for i := range ms {
		out = append(out, SerializeMenu(&ms[i], ctx))
	}
	return out
}

// SerializeUser 密码哈希不输出
func SerializeUser(u *domain.User, ctx Context) map[string]any {
	fields := []field{
		{"id", GroupUser, Version1, func() any { return u.ID }},
		{"email", GroupUser, Version1, func() any { return u.Email }},
		{"roles", GroupUser, Version1, func() any { return u.GetRoles() }},
	}
	return project(append(fields, lifecycleFields(&u.Lifecycle)...), ctx)
}

func SerializeUsers(us []domain.User, ctx Context) []map[string]any {
	out := make([]map[string]any, 0, len(us))
	for i := range us {
		out = append(out, SerializeUser(&us[i], ctx))
	}
	return out
}

func lifecycleFields(l *domain.Lifecycle) []field {
	return []field{
		{"created", GroupLifecycle, Version1, func() any { return timeOrNil(&l.Created) }},
		{"modified", GroupLifecycle, Version1, func() any { return timeOrNil(l.Modified) }},
		{"deleted", GroupDeleted, Version1, func() any { return timeOrNil(l.Deleted) }},
	}
}

func project(fields []field, ctx Context) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if !ctx.has(f.group) || !sinceOK(ctx.Version, f.since) {
			continue
		}
		v := f.value()
		if v == nil && !ctx.SerializeNull {
			continue
		}
		out[f.name] = v
	}
	return out
}

// sinceOK version >= since；version 为空不做版本过滤
func sinceOK(version, since string) bool {
	if version == "" || since == "" {
		return true
	}
	a, b := strings.Split(version, "."), strings.Split(since, ".")
	for i := 0; i < len(a) || i < len(b); i++ {
		x, y := part(a, i), part(b, i)
		if x != y {
			return x > y
		}
	}
	return true
}

func part(p []string, i int) int {
	if i >= len(p) {
		return 0
	}
	n, _ := strconv.Atoi(p[i])
	return n
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intOrNil(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func timeOrNil(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
