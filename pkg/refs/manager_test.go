package refs

import (
	"os"
	"path/filepath"
	"testing"

	"gitvault/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hash1 = types.Hash("1111111111111111111111111111111111111111")
	hash2 = types.Hash("2222222222222222222222222222222222222222")
)

// newTestManager 在临时目录里摆好一个刚 init 完的引用布局
func newTestManager(t *testing.T) *Manager {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "refs", "heads"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "HEAD"), []byte("ref: refs/heads/master\n"), 0644))
	return NewManager(root)
}

func TestManager_UnbornBranch(t *testing.T) {
	mgr := newTestManager(t)

	// HEAD 指向 refs/heads/master，但分支文件还不存在
	_, err := mgr.Head()
	assert.ErrorIs(t, err, ErrNoHead, "空仓库应该返回 ErrNoHead")
}

func TestManager_HeadLifecycle(t *testing.T) {
	mgr := newTestManager(t)

	// 第一次更新：通过 HEAD 的间接引用写到分支文件
	require.NoError(t, mgr.UpdateHead(hash1))

	got, err := mgr.Head()
	require.NoError(t, err)
	assert.Equal(t, hash1, got)

	// HEAD 文件本身应该保持间接引用形态
	raw, err := os.ReadFile(mgr.headPath())
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/master\n", string(raw))

	// 第二次更新覆盖分支文件
	require.NoError(t, mgr.UpdateHead(hash2))
	got, err = mgr.Head()
	require.NoError(t, err)
	assert.Equal(t, hash2, got)
}

func TestManager_Resolve(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.SetRef("refs/heads/master", hash1))
	require.NoError(t, mgr.SetRef("refs/tags/v1.0", hash2))

	tests := []struct {
		name  string
		input string
		want  types.Hash
	}{
		{"Hash passthrough", hash2.String(), hash2},
		{"HEAD", "HEAD", hash1},
		{"Full ref path", "refs/heads/master", hash1},
		{"Bare branch name", "master", hash1},
		{"Tag ref", "refs/tags/v1.0", hash2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mgr.Resolve(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := mgr.Resolve("no-such-branch")
	assert.ErrorIs(t, err, ErrRefNotFound)
}

func TestManager_RejectsBadHash(t *testing.T) {
	mgr := newTestManager(t)

	assert.ErrorIs(t, mgr.UpdateHead("short"), ErrBadRef)
	assert.ErrorIs(t, mgr.SetRef("refs/heads/master", "also bad"), ErrBadRef)
}

func TestManager_BadRefContents(t *testing.T) {
	mgr := newTestManager(t)

	// 分支文件里塞了不是 Hash 的东西
	path := filepath.Join(mgr.rootPath, "refs", "heads", "master")
	require.NoError(t, os.WriteFile(path, []byte("garbage\n"), 0644))

	_, err := mgr.Head()
	assert.ErrorIs(t, err, ErrBadRef)
}

func TestManager_DetachedHead(t *testing.T) {
	mgr := newTestManager(t)

	// 直接把 Hash 写进 HEAD (detached)
	require.NoError(t, os.WriteFile(mgr.headPath(), []byte(hash1.String()+"\n"), 0644))

	got, err := mgr.Head()
	require.NoError(t, err)
	assert.Equal(t, hash1, got)

	// detached 状态下 UpdateHead 直接改写 HEAD 本身
	require.NoError(t, mgr.UpdateHead(hash2))
	got, err = mgr.Head()
	require.NoError(t, err)
	assert.Equal(t, hash2, got)
}
