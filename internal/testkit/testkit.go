// Package testkit 测试辅助：内存数据库与固定身份。
package testkit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/blues/launchpad/internal/auth"
	"github.com/blues/launchpad/internal/config"
	"github.com/blues/launchpad/internal/repository"
)

// NewDB 打开已迁移的内存 sqlite
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.Init(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Principal 生成第 n 个测试地址
func Principal(t *testing.T, n int) auth.Principal {
	t.Helper()
	p, err := auth.ParsePrincipal(fmt.Sprintf("0x%040x", n))
	require.NoError(t, err)
	return p
}
