package store

import (
	"context"
	"os"
	"testing"

	"gitvault/pkg/compress"
	"gitvault/pkg/layout"
	"gitvault/pkg/object"
	"gitvault/pkg/storage/disk"
	"gitvault/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_CleanStore(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, data := range []string{"one", "two", "three", ""} {
		_, err := s.Put(ctx, mustBlob(t, data), true)
		require.NoError(t, err)
	}

	report, err := s.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), report.Checked)
	assert.Empty(t, report.Issues)
}

func TestVerify_FindsEveryKindOfDamage(t *testing.T) {
	root := t.TempDir()
	backend, err := disk.NewAdapter(root)
	require.NoError(t, err)
	s := New(backend)
	ctx := context.Background()

	// 完好的对象
	goodHash, err := s.Put(ctx, mustBlob(t, "intact"), true)
	require.NoError(t, err)

	// 1. 截断的压缩流
	truncHash, err := s.Put(ctx, mustBlob(t, "truncate me"), true)
	require.NoError(t, err)
	truncPath, err := layout.ObjectPath(root, truncHash)
	require.NoError(t, err)
	raw, err := os.ReadFile(truncPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(truncPath, raw[:len(raw)-2], 0644))

	// 2. zlib 完好但帧头类型标签不认识
	badFrame, err := compress.Compress([]byte("blobby 4\x00data"), compress.DefaultLevel)
	require.NoError(t, err)
	badFrameHash := types.Hash("1111111111111111111111111111111111111111")
	require.NoError(t, backend.Put(ctx, badFrameHash, badFrame))

	// 3. 内容完好但放错了位置 (路径 Hash 和内容 Hash 对不上)
	misplaced, err := compress.Compress(object.Frame(object.TypeBlob, []byte("misplaced")), compress.DefaultLevel)
	require.NoError(t, err)
	misplacedHash := types.Hash("2222222222222222222222222222222222222222")
	require.NoError(t, backend.Put(ctx, misplacedHash, misplaced))

	report, err := s.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), report.Checked)
	require.Len(t, report.Issues, 3)

	// 把问题按 Hash 归类再断言错误类型
	byHash := map[types.Hash]error{}
	for _, issue := range report.Issues {
		byHash[issue.Hash] = issue.Err
	}
	assert.NotContains(t, byHash, goodHash)
	assert.ErrorIs(t, byHash[truncHash], compress.ErrCorruptStream)
	assert.ErrorIs(t, byHash[badFrameHash], object.ErrUnknownType)
	assert.ErrorIs(t, byHash[misplacedHash], ErrHashMismatch)
}
