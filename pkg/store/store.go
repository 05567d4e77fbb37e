// Package store 是对象库的编排层：封帧、哈希、压缩、落盘的唯一入口。
// 下层的 storage.Backend 只见过压缩字节；上层的 CLI 只见过 Object 和 Hash。
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"gitvault/pkg/compress"
	"gitvault/pkg/layout"
	"gitvault/pkg/meta"
	"gitvault/pkg/object"
	"gitvault/pkg/storage"
	"gitvault/pkg/storage/cache"
	"gitvault/pkg/types"
)

// Store 组合后端、压缩级别和可选的对象清单
// 单写者、同步阻塞模型：内部没有任何锁，也不做重试。
type Store struct {
	backend   storage.Backend
	level     int
	inventory *meta.Repository // 可选，nil 表示不登记
}

type Option func(*Store)

// WithCompressionLevel 覆盖默认压缩级别
// 级别只影响体积，不影响正确性 (解压结果永远一致)
func WithCompressionLevel(level int) Option {
	return func(s *Store) { s.level = level }
}

// WithInventory 挂上 gorm 对象清单 (count-objects / 短哈希加速)
func WithInventory(inv *meta.Repository) Option {
	return func(s *Store) { s.inventory = inv }
}

func New(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		level:   compress.DefaultLevel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put 写入一个对象，返回它的内容 Hash
//
// persist=false 是 dry-run：Hash 照常计算返回 (去重预检用)，但不碰存储。
// persist=true 时：压缩规范帧 -> 交给后端原子写入 -> 登记清单。
// 同 Hash 重复写入由后端幂等短路，这里不报 "已存在" 之类的错。
func (s *Store) Put(ctx context.Context, obj *object.Object, persist bool) (types.Hash, error) {
	hash := obj.ID()
	if !persist {
		return hash, nil
	}

	compressed, err := compress.Compress(obj.Framed(), s.level)
	if err != nil {
		return "", err
	}

	if err := s.backend.Put(ctx, hash, compressed); err != nil {
		return "", fmt.Errorf("failed to persist object %s: %w", hash, err)
	}

	// 清单是旁路：登记失败打警告，不能让已经落盘的写入对外表现为失败
	if s.inventory != nil {
		if err := s.inventory.RecordObject(ctx, hash, obj.Kind(), obj.Size()); err != nil {
			fmt.Printf("WARN: inventory record failed for %s: %v\n", hash, err)
		}
	}

	return hash, nil
}

// Get 按 Hash 读回对象
// 读路径的每一步都带校验：zlib 校验和 -> 帧头格式 -> 长度不变式。
// 任何一步失败都原样上抛对应的哨兵错误，绝不降级成警告。
func (s *Store) Get(ctx context.Context, hash types.Hash) (*object.Object, error) {
	if !hash.IsValid() {
		return nil, fmt.Errorf("%w: %q", layout.ErrInvalidHash, hash)
	}

	rc, err := s.backend.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	compressed, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", hash, err)
	}

	framed, err := compress.Decompress(compressed)
	if err != nil {
		return nil, err
	}

	return object.Unframe(framed)
}

// Stat 返回对象的类型和大小，不返回 payload
// 后端带缓存时走 Redis 快路径 (cat-file -t/-s 不必解压整个对象)，
// 否则退化为完整的 Get。
func (s *Store) Stat(ctx context.Context, hash types.Hash) (object.Type, int64, error) {
	if cached, ok := s.backend.(*cache.CachedStore); ok {
		if stat, hit := cached.Stat(ctx, hash); hit {
			kind, err := object.ParseType(stat.Kind)
			if err == nil {
				return kind, stat.Size, nil
			}
			// 缓存条目损坏就走慢路径，不报错
		}
	}

	obj, err := s.Get(ctx, hash)
	if err != nil {
		return "", 0, err
	}
	return obj.Kind(), obj.Size(), nil
}

// Has 检查对象是否存在
func (s *Store) Has(ctx context.Context, hash types.Hash) (bool, error) {
	if !hash.IsValid() {
		return false, fmt.Errorf("%w: %q", layout.ErrInvalidHash, hash)
	}
	return s.backend.Has(ctx, hash)
}

// ResolveReference 在本层只是 Hash 形状字符串上的恒等函数
// 分支名 / HEAD / 短哈希的完整解析属于上层协作者 (pkg/refs)。
func (s *Store) ResolveReference(name string) (types.Hash, error) {
	hash := types.Hash(name)
	if !hash.IsValid() {
		return "", fmt.Errorf("%w: %q", layout.ErrInvalidHash, name)
	}
	return hash, nil
}

// ExpandHash 短哈希展开：清单可用就先问清单 (一条 SQL)，
// 清单没有或没挂清单，再让后端扫目录/列对象。
func (s *Store) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	// 先把关：清单走的是 LIKE，不能让非法前缀 (非 hex、带 % 通配) 漏进 SQL
	if !short.IsValid() {
		return "", fmt.Errorf("%w: %q", layout.ErrInvalidHash, short)
	}
	if s.inventory != nil {
		hash, err := s.inventory.ExpandHash(ctx, short)
		if err == nil || errors.Is(err, storage.ErrAmbiguousHash) {
			return hash, err
		}
		// 清单里没有不等于对象库里没有 (清单可能落后)，继续问后端
	}
	return s.backend.ExpandHash(ctx, short)
}

// CountObjects 按类型统计仓库里的对象
// 挂了清单就是一条 SQL；没挂就老老实实遍历后端，逐个 Stat
func (s *Store) CountObjects(ctx context.Context) ([]meta.KindCount, error) {
	if s.inventory != nil {
		return s.inventory.CountObjects(ctx)
	}

	totals := map[object.Type]*meta.KindCount{}
	err := s.backend.Walk(ctx, func(hash types.Hash) error {
		kind, size, err := s.Stat(ctx, hash)
		if err != nil {
			return fmt.Errorf("stat %s: %w", hash, err)
		}
		row, ok := totals[kind]
		if !ok {
			row = &meta.KindCount{Kind: string(kind)}
			totals[kind] = row
		}
		row.Count++
		row.Bytes += size
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows := make([]meta.KindCount, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Kind < rows[j].Kind })
	return rows, nil
}

// Backend 暴露底层后端 (fsck 的 Walk 需要)
func (s *Store) Backend() storage.Backend {
	return s.backend
}
