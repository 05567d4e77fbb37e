package e2e

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gitvault/pkg/meta"
	"gitvault/pkg/object"
	"gitvault/pkg/refs"
	"gitvault/pkg/repo"
	"gitvault/pkg/storage/cache"
	"gitvault/pkg/storage/disk"
	"gitvault/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWorkflow 验证完整的对象生命周期：
// init -> dry-run 哈希 -> 真实写入 -> 按短前缀读回 -> 引用解析 -> fsck -> 统计
func TestWorkflow(t *testing.T) {
	ctx := context.Background()

	// 1. 初始化仓库骨架
	// -------------------------------------------------------------
	worktree := t.TempDir()
	gvDir, err := repo.Init(worktree, false)
	require.NoError(t, err)
	require.NoError(t, repo.CheckFormat(gvDir))

	backend, err := disk.NewAdapter(gvDir)
	require.NoError(t, err)

	// 元数据库直接落在仓库目录里
	db, err := meta.NewDB(ctx, meta.Config{Driver: "sqlite", DSN: filepath.Join(gvDir, "meta.db")})
	require.NoError(t, err)
	inv := meta.NewRepository(db)

	st := store.New(backend, store.WithInventory(inv))
	refMgr := refs.NewManager(gvDir)

	// 2. dry-run：算哈希但不落盘
	// -------------------------------------------------------------
	blob, err := object.New(object.TypeBlob, []byte("hello world"))
	require.NoError(t, err)

	dryHash, err := st.Put(ctx, blob, false)
	require.NoError(t, err)
	assert.Equal(t, "95d09f2b10159347eece71399a7e2e907ea3df4f", dryHash.String())

	ok, err := st.Has(ctx, dryHash)
	require.NoError(t, err)
	assert.False(t, ok, "dry-run must not persist anything")

	// 3. 真实写入
	// -------------------------------------------------------------
	hash, err := st.Put(ctx, blob, true)
	require.NoError(t, err)
	assert.Equal(t, dryHash, hash, "persist flag must not change the hash")

	// 磁盘上应该恰好出现一个分片文件
	shard := filepath.Join(gvDir, "objects", "95")
	entries, err := os.ReadDir(shard)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// 4. 短前缀读回 (走 sqlite 库存)
	// -------------------------------------------------------------
	full, err := st.ExpandHash(ctx, "95d09f")
	require.NoError(t, err)
	assert.Equal(t, hash, full)

	got, err := st.Get(ctx, full)
	require.NoError(t, err)
	assert.Equal(t, object.TypeBlob, got.Kind())
	assert.Equal(t, []byte("hello world"), got.Data())

	// 5. 引用：建分支并让 HEAD 跟上
	// -------------------------------------------------------------
	require.NoError(t, refMgr.SetRef("refs/heads/master", hash))

	headHash, err := refMgr.Head()
	require.NoError(t, err)
	assert.Equal(t, hash, headHash)

	viaBranch, err := refMgr.Resolve("master")
	require.NoError(t, err)
	assert.Equal(t, hash, viaBranch)

	// 6. fsck：刚写的库必须是干净的
	// -------------------------------------------------------------
	report, err := st.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Checked)
	assert.Empty(t, report.Issues)

	// 7. 统计
	// -------------------------------------------------------------
	counts, err := st.CountObjects(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, "blob", counts[0].Kind)
	assert.Equal(t, int64(1), counts[0].Count)
	assert.Equal(t, int64(11), counts[0].Bytes)

	t.Log("✅ Full workflow passed")
}

// TestWorkflow_WithRedisCache 在磁盘后端外面套 Redis 缓存，
// 验证装饰器不改变任何读写语义
func TestWorkflow_WithRedisCache(t *testing.T) {
	redisAddr := "localhost:6379"
	if conn, err := net.DialTimeout("tcp", redisAddr, 1*time.Second); err != nil {
		t.Skip("Skipping E2E test: Redis not available")
	} else {
		conn.Close()
	}

	ctx := context.Background()

	worktree := t.TempDir()
	gvDir, err := repo.Init(worktree, false)
	require.NoError(t, err)

	backend, err := disk.NewAdapter(gvDir)
	require.NoError(t, err)

	cached, err := cache.NewCachedStore(backend, cache.Config{
		RedisURL: fmt.Sprintf("redis://%s/0", redisAddr),
		TTL:      1 * time.Hour,
	})
	require.NoError(t, err)

	st := store.New(cached)

	blob, err := object.New(object.TypeBlob, []byte("cached payload"))
	require.NoError(t, err)

	hash, err := st.Put(ctx, blob, true)
	require.NoError(t, err)

	// 第二次写入应该被去重 (不报错即可，去重细节在 cache 包的测试里盯着)
	again, err := st.Put(ctx, blob, true)
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	// Stat 走缓存快路径
	kind, size, err := st.Stat(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, object.TypeBlob, kind)
	assert.Equal(t, int64(14), size)

	got, err := st.Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, []byte("cached payload"), got.Data())
}
