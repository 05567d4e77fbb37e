package config

import (
	"os"
	"path/filepath"
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

func TestLoad_ReadsRepoIniConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	worktree := t.TempDir()
	gvDir, err := repo.Init(worktree, false)
	require.NoError(t, err)

	// 在仓库配置后面追加一段自定义配置
	f, err := os.OpenFile(filepath.Join(gvDir, "config"), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("\n[compression]\nlevel = 5\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	chdir(t, worktree)
	require.NoError(t, Load(""))

	// ini 里的 section.key 能通过点号路径查到
	assert.Equal(t, "0", viper.GetString("core.repositoryformatversion"))
	// 配置文件覆盖默认值 (默认 9)
	assert.Equal(t, 5, viper.GetInt("compression.level"))
	// 发现的仓库路径被填进 storage.path
	assert.Equal(t, repo.DirName, filepath.Base(viper.GetString("storage.path")))
}

func TestLoad_MissingConfigIsFine(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// 没有仓库、没有配置文件：纯默认值驱动
	chdir(t, t.TempDir())
	require.NoError(t, Load(""))

	assert.Equal(t, "disk", viper.GetString("storage.type"))
	assert.Equal(t, 9, viper.GetInt("compression.level"))
}

func TestLoad_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// GV_STORAGE_TYPE 必须映射到 storage.type
	t.Setenv("GV_STORAGE_TYPE", "s3")
	chdir(t, t.TempDir())
	require.NoError(t, Load(""))

	assert.Equal(t, "s3", viper.GetString("storage.type"))
}
