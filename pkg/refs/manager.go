package refs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gitvault/pkg/types"
)

var (
	ErrNoHead      = errors.New("HEAD not found or pointing at unborn branch")
	ErrRefNotFound = errors.New("reference not found")
	ErrBadRef      = errors.New("malformed reference")
)

// symbolicPrefix HEAD 间接引用的前缀: "ref: refs/heads/master"
const symbolicPrefix = "ref: "

// Manager 负责管理引用 (HEAD 和 refs/heads/*, refs/tags/*)
// 引用就是仓库目录下的小文本文件，一个文件一行 Hash (或一行间接引用)。
type Manager struct {
	rootPath string
}

func NewManager(rootPath string) *Manager {
	return &Manager{rootPath: rootPath}
}

func (m *Manager) headPath() string {
	return filepath.Join(m.rootPath, "HEAD")
}

func (m *Manager) refPath(name string) string {
	return filepath.Join(m.rootPath, filepath.FromSlash(name))
}

// Head 解析 HEAD 当前指向的 Commit Hash
// HEAD 要么直接是一个 Hash (detached)，要么是 "ref: refs/heads/<branch>"。
// 新仓库的 HEAD 指向还没出生的分支，返回 ErrNoHead。
func (m *Manager) Head() (types.Hash, error) {
	data, err := os.ReadFile(m.headPath())
	if os.IsNotExist(err) {
		return "", ErrNoHead
	}
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	// 清理换行符 (编辑器可能自动加 \n)
	content := strings.TrimSpace(string(data))

	if target, ok := strings.CutPrefix(content, symbolicPrefix); ok {
		hash, err := m.readRef(target)
		if errors.Is(err, ErrRefNotFound) {
			// 分支文件还不存在 = unborn branch
			return "", ErrNoHead
		}
		return hash, err
	}

	hash := types.Hash(content)
	if !hash.IsValid() {
		return "", fmt.Errorf("%w: HEAD contains %q", ErrBadRef, content)
	}
	return hash, nil
}

// Resolve 把一个名字解析成 Hash，按优先级：
//  1. 本来就是 Hash 形状 -> 恒等返回
//  2. "HEAD"
//  3. 完整引用路径 ("refs/heads/xxx")
//  4. 裸分支名 ("master" -> "refs/heads/master")
func (m *Manager) Resolve(name string) (types.Hash, error) {
	if hash := types.Hash(name); hash.IsValid() {
		return hash, nil
	}

	if name == "HEAD" {
		return m.Head()
	}

	if strings.HasPrefix(name, "refs/") {
		return m.readRef(name)
	}
	return m.readRef("refs/heads/" + name)
}

// readRef 读取单个引用文件
func (m *Manager) readRef(name string) (types.Hash, error) {
	data, err := os.ReadFile(m.refPath(name))
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrRefNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read ref %s: %w", name, err)
	}

	hash := types.Hash(strings.TrimSpace(string(data)))
	if !hash.IsValid() {
		return "", fmt.Errorf("%w: %s contains %q", ErrBadRef, name, hash)
	}
	return hash, nil
}

// SetRef 把引用指到新的 Hash 上
// 单写者模型：直接覆盖，不做文件锁
func (m *Manager) SetRef(name string, hash types.Hash) error {
	if !hash.IsValid() {
		return fmt.Errorf("%w: refusing to write %q", ErrBadRef, hash)
	}
	path := m.refPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(hash.String()+"\n"), 0644)
}

// UpdateHead 更新 HEAD 指向
// HEAD 是间接引用时更新它指向的分支文件，detached 时直接改写 HEAD
func (m *Manager) UpdateHead(hash types.Hash) error {
	if !hash.IsValid() {
		return fmt.Errorf("%w: refusing to write %q", ErrBadRef, hash)
	}

	data, err := os.ReadFile(m.headPath())
	if err == nil {
		content := strings.TrimSpace(string(data))
		if target, ok := strings.CutPrefix(content, symbolicPrefix); ok {
			return m.SetRef(target, hash)
		}
	}
	return os.WriteFile(m.headPath(), []byte(hash.String()+"\n"), 0644)
}
