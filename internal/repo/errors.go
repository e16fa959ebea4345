package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotTracked 实体没有入库（或已被物理删除）就做了 remove/restore/update
var ErrNotTracked = errors.New("entity is not tracked by the store")

// ErrStagingDisabled 在 WithAutocommit 的 Session 上用 commit=false
var ErrStagingDisabled = errors.New("staging is disabled on this session")

// IsDuplicate 唯一约束冲突。TranslateError 打开时走 gorm.ErrDuplicatedKey，
// 个别驱动不翻译，再按消息兜底
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
