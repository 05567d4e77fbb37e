// Package repo 负责仓库目录的引导 (bootstrap) 和发现 (discovery)。
// 对象库本身只关心 <repo>/objects 之下的世界；这里搭的是外面的架子。
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// DirName 仓库元数据目录名 (git 的 ".git" 同位体)
const DirName = ".gv"

// FormatVersion 我们唯一认识的仓库格式版本
const FormatVersion = "0"

var (
	ErrAlreadyExists      = errors.New("repository already exists")
	ErrNotARepository     = errors.New("not a gitvault repository")
	ErrUnsupportedVersion = errors.New("unsupported repository format version")
)

// Init 在 worktree 下创建一个新仓库，返回仓库目录 (<worktree>/.gv) 的路径
// force=true 时允许对已存在的仓库重新初始化 (不碰已有的对象)
func Init(worktree string, force bool) (string, error) {
	if err := os.MkdirAll(worktree, 0755); err != nil {
		return "", fmt.Errorf("failed to create worktree: %w", err)
	}

	gvDir := filepath.Join(worktree, DirName)
	if _, err := os.Stat(gvDir); err == nil && !force {
		return "", fmt.Errorf("%w: %s", ErrAlreadyExists, gvDir)
	}

	// 目录骨架: objects 归对象库，refs 归引用管理
	for _, dir := range []string{"objects", filepath.Join("refs", "heads"), filepath.Join("refs", "tags")} {
		if err := os.MkdirAll(filepath.Join(gvDir, dir), 0755); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	// HEAD 指向还没出生的 master 分支
	headPath := filepath.Join(gvDir, "HEAD")
	if _, err := os.Stat(headPath); os.IsNotExist(err) || !force {
		if err := os.WriteFile(headPath, []byte("ref: refs/heads/master\n"), 0644); err != nil {
			return "", fmt.Errorf("failed to write HEAD: %w", err)
		}
	}

	descPath := filepath.Join(gvDir, "description")
	if _, err := os.Stat(descPath); os.IsNotExist(err) {
		desc := "Unnamed repository; edit this file to name the repository.\n"
		if err := os.WriteFile(descPath, []byte(desc), 0644); err != nil {
			return "", fmt.Errorf("failed to write description: %w", err)
		}
	}

	if err := writeDefaultConfig(gvDir); err != nil {
		return "", err
	}

	return gvDir, nil
}

// writeDefaultConfig 生成仓库级 ini 配置 (和原始布局一致，文件名就叫 config)
// viper v1.21 把内置的 ini 编解码拿掉了，所以这里直接用 go-ini 读写
func writeDefaultConfig(gvDir string) error {
	cfgPath := filepath.Join(gvDir, "config")
	if _, err := os.Stat(cfgPath); err == nil {
		return nil // 已有配置不要覆盖
	}

	cfg := ini.Empty()
	core, err := cfg.NewSection("core")
	if err != nil {
		return fmt.Errorf("failed to build repo config: %w", err)
	}
	for _, kv := range [][2]string{
		{"repositoryformatversion", FormatVersion},
		{"filemode", "false"},
		{"bare", "false"},
	} {
		if _, err := core.NewKey(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to build repo config: %w", err)
		}
	}

	if err := cfg.SaveTo(cfgPath); err != nil {
		return fmt.Errorf("failed to write repo config: %w", err)
	}
	return nil
}

// Discover 从 start 出发逐级向上找 .gv 目录，返回仓库目录路径
func Discover(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: searched from %s upward", ErrNotARepository, start)
		}
		dir = parent
	}
}

// CheckFormat 校验仓库配置里的格式版本
// 不认识的版本直接拒绝，绝不猜着处理
func CheckFormat(gvDir string) error {
	cfgPath := filepath.Join(gvDir, "config")

	cfg, err := ini.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read repo config: %w", err)
	}

	version := cfg.Section("core").Key("repositoryformatversion").String()
	if version != FormatVersion {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}
	return nil
}
