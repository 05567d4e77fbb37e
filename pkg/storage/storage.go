package storage

import (
	"context"
	"errors"
	"io"

	"gitvault/pkg/types"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrAmbiguousHash = errors.New("ambiguous hash prefix")
)

// Backend defines the interface for a storage backend.
// Implementations can be local disk, cloud storage, or in-memory storage.
// Backend 只负责搬运压缩后的帧字节，对对象语义一无所知；
// 封帧、哈希、压缩都发生在它的上层 (pkg/store)。
type Backend interface {
	// Put 持久化一个对象的压缩字节
	// 约定：同一个 hash 永远对应同一份内容 (CAS)，重复写入是幂等的
	Put(ctx context.Context, hash types.Hash, data []byte) error

	// Get 根据 Hash 读取压缩字节
	// 注意：返回 io.ReadCloser 而不是 []byte，支持大对象流式读取
	Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error)

	// Has 检查对象是否存在 (用于去重逻辑)
	Has(ctx context.Context, hash types.Hash) (bool, error)

	// Walk 遍历仓库里所有对象的 Hash (fsck 用)
	// fn 返回错误则中止遍历并向上传播
	Walk(ctx context.Context, fn func(types.Hash) error) error

	// ExpandHash 把短 Hash 前缀展开成唯一的完整 Hash
	// 0 个匹配 -> ErrNotFound；多个匹配 -> ErrAmbiguousHash
	ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error)
}
