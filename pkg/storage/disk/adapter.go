package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gitvault/pkg/layout"
	"gitvault/pkg/storage"
	"gitvault/pkg/types"
)

// Adapter 实现了 storage.Backend 接口
// root 是仓库根目录 (比如 /home/user/project/.gv)，
// 对象统一放在 <root>/objects/<前2字符>/<剩余字符> 下。
// 路径计算全部委托给 pkg/layout，这里只做 I/O。
type Adapter struct {
	root string
}

// NewAdapter 创建一个新的磁盘存储适配器
// objects 目录不存在时当场创建 (分片目录则推迟到第一次写入)
func NewAdapter(root string) (*Adapter, error) {
	if err := os.MkdirAll(layout.ObjectsDir(root), 0755); err != nil {
		return nil, fmt.Errorf("failed to create objects dir: %w", err)
	}
	return &Adapter{root: root}, nil
}

func (s *Adapter) Put(ctx context.Context, hash types.Hash, data []byte) error {
	targetPath, err := layout.ObjectPath(s.root, hash)
	if err != nil {
		return err
	}

	// 1. 检查是否存在 (幂等性)
	// 内容寻址保证同 hash 同内容，已存在就没必要重写
	if _, err := os.Stat(targetPath); err == nil {
		return nil
	}

	// 2. 准备分片目录 (并发创建不算错，MkdirAll 天然幂等)
	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// 3. 原子写入 (Atomic Write)
	// 先写临时文件再 Rename：读取方永远看不到写了一半的压缩流
	tempFile, err := os.CreateTemp(dir, "temp-*")
	if err != nil {
		return err
	}
	// Rename 成功后这个 Remove 会失效，无害
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return err
	}
	// 必须先关闭才能 Rename
	if err := tempFile.Close(); err != nil {
		return err
	}

	// 4. 移动到最终位置
	return os.Rename(tempFile.Name(), targetPath)
}

func (s *Adapter) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	targetPath, err := layout.ObjectPath(s.root, hash)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(targetPath)
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Adapter) Has(ctx context.Context, hash types.Hash) (bool, error) {
	targetPath, err := layout.ObjectPath(s.root, hash)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(targetPath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Walk 遍历 objects 下所有分片目录，把 目录名+文件名 还原成完整 Hash
// 跳过名字不合法的目录项 (比如残留的 temp-* 文件)
func (s *Adapter) Walk(ctx context.Context, fn func(types.Hash) error) error {
	objectsDir := layout.ObjectsDir(s.root)

	shards, err := os.ReadDir(objectsDir)
	if err != nil {
		return fmt.Errorf("failed to read objects dir: %w", err)
	}

	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}

		entries, err := os.ReadDir(filepath.Join(objectsDir, shard.Name()))
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			hash := types.Hash(shard.Name() + entry.Name())
			if !hash.IsValid() {
				continue // 临时文件或者外来垃圾
			}

			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(hash); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExpandHash 扫描分片目录，把短前缀展开成唯一 Hash
func (s *Adapter) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	if !short.IsValid() {
		return "", fmt.Errorf("%w: prefix too short or not hex: %q", layout.ErrInvalidHash, short)
	}

	prefix := short.String()
	shardDir := filepath.Join(layout.ObjectsDir(s.root), prefix[:2])

	entries, err := os.ReadDir(shardDir)
	if os.IsNotExist(err) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", err
	}

	var found types.Hash
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix[2:]) {
			continue
		}
		candidate := types.Hash(prefix[:2] + entry.Name())
		if !candidate.IsValid() {
			continue
		}
		if !found.IsZero() {
			return "", storage.ErrAmbiguousHash
		}
		found = candidate
	}

	if found.IsZero() {
		return "", storage.ErrNotFound
	}
	return found, nil
}
