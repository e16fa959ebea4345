package domain

// Menu 菜单
type Menu struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"size:128;not null"`
	Description *string `gorm:"size:255"`
	Order       *int    `gorm:"column:order;type:smallint"` // 活跃菜单内唯一，由 service 保证
	Lifecycle
}

func (Menu) TableName() string { return "menus" }

func (m *Menu) GetID() uint { return m.ID }

func (m *Menu) SetName(name string) *Menu {
	m.Name = name
	return m
}

func (m *Menu) SetDescription(d *string) *Menu {
	m.Description = d
	return m
}

func (m *Menu) SetOrder(o *int) *Menu {
	m.Order = o
	return m
}
