package app

import (
	"context"
	"os"
	"testing"

	"gitvault/pkg/repo"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is t.Chdir for toolchains older than Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
}

func TestNewApp_Disk(t *testing.T) {
	// 1. 准备一个真实仓库 + Mock 配置
	worktree := t.TempDir()
	gvDir, err := repo.Init(worktree, false)
	require.NoError(t, err)

	viper.Reset()
	viper.Set("storage.type", "disk")
	viper.Set("storage.path", gvDir)

	// 2. 组装
	application, err := NewApp(context.Background())

	// 3. 验证
	require.NoError(t, err)
	assert.NotNil(t, application.Store)
	assert.NotNil(t, application.Refs)
	assert.Equal(t, gvDir, application.RepoPath)
}

func TestNewBackend_S3_MissingBucket(t *testing.T) {
	viper.Reset()
	viper.Set("storage.type", "s3")
	// 故意不设置 bucket

	backend, err := newBackend(context.Background(), ".")
	assert.Error(t, err)
	assert.Nil(t, backend)
	assert.Contains(t, err.Error(), "bucket is required")
}

func TestNewBackend_UnknownType(t *testing.T) {
	viper.Reset()
	viper.Set("storage.type", "ftp") // 不支持的类型

	backend, err := newBackend(context.Background(), ".")
	assert.Error(t, err)
	assert.Nil(t, backend)
	assert.Contains(t, err.Error(), "unknown storage.type")
}

func TestNewApp_NoRepository(t *testing.T) {
	viper.Reset()
	viper.Set("storage.type", "disk")
	viper.Set("storage.path", "")

	chdir(t, t.TempDir())

	_, err := NewApp(context.Background())
	assert.ErrorIs(t, err, repo.ErrNotARepository)
}
