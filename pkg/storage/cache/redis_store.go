package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"gitvault/pkg/compress"
	"gitvault/pkg/object"
	"gitvault/pkg/storage"
	"gitvault/pkg/types"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"
)

// Stat 是缓存在 Redis 里的对象元数据
// cat-file -t / -s 只需要这两个字段，不必把整个对象读回来解压
type Stat struct {
	Kind string `cbor:"k"`
	Size int64  `cbor:"s"`
}

// 缓存条目使用规范化 CBOR 编码 (Canonical)
// 保证同一个 Stat 永远编码成同一串字节，方便排查
var encOptions = cbor.EncOptions{
	Sort:        cbor.SortCanonical,
	IndefLength: cbor.IndefLengthForbidden,
}

var em, _ = encOptions.EncMode()

// 解码端同样从严：缓存里出现奇怪的条目宁可当 miss 处理
var decOptions = cbor.DecOptions{
	IndefLength: cbor.IndefLengthForbidden,
	DupMapKey:   cbor.DupMapKeyEnforcedAPF,
}

var dm, _ = decOptions.DecMode()

// CachedStore 是一个装饰器，它为底层的 storage.Backend 添加 Redis 缓存层
// 缓存的是"存在性 + 元数据"，不缓存对象本体 (对象可能很大，Redis 内存宝贵)
type CachedStore struct {
	backend storage.Backend
	client  *redis.Client
	ttl     time.Duration
}

type Config struct {
	RedisURL string        // 标准连接字符串: redis://<user>:<password>@<host>:<port>/<db>
	TTL      time.Duration // 过期时间
}

func NewCachedStore(backend storage.Backend, cfg Config) (*CachedStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Fail-fast 连接检查
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CachedStore{
		backend: backend,
		client:  client,
		ttl:     cfg.TTL,
	}, nil
}

// cacheKey 生成 Redis Key，添加前缀防止冲突
func (s *CachedStore) cacheKey(hash types.Hash) string {
	return "gv:obj:" + string(hash)
}

// statFromCompressed 从压缩字节里还原元数据
// 解不开就算了 (返回 nil)，缓存层绝不因为元数据失败而拒绝写入
func statFromCompressed(data []byte) *Stat {
	framed, err := compress.Decompress(data)
	if err != nil {
		return nil
	}
	obj, err := object.Unframe(framed)
	if err != nil {
		return nil
	}
	return &Stat{Kind: string(obj.Kind()), Size: obj.Size()}
}

// Has 优先查 Redis，实现毫秒级去重
func (s *CachedStore) Has(ctx context.Context, hash types.Hash) (bool, error) {
	key := s.cacheKey(hash)

	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		// 架构决策：缓存故障降级 (Cache Failure Fallback)
		// Redis 挂了就退化为无缓存模式，直接查底层存储，不让程序崩溃
		fmt.Printf("WARN: Redis error: %v\n", err)
	} else if val > 0 {
		// Cache Hit! 无需碰底层存储
		return true, nil
	}

	// 缓存未命中 (Cache Miss)，查底层存储
	found, err := s.backend.Has(ctx, hash)
	if err != nil {
		return false, err
	}

	// 缓存回填 (Cache Fill)：异步写入，不阻塞主流程
	if found {
		go func() {
			fillCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			s.client.Set(fillCtx, key, "1", s.ttl)
		}()
	}

	return found, nil
}

// Put 写入对象。利用 Has 的缓存能力进行预检。
func (s *CachedStore) Put(ctx context.Context, hash types.Hash, data []byte) error {
	// 1. 预检：Redis 里有就直接跳过 (< 1ms)
	exists, err := s.Has(ctx, hash)
	if err != nil {
		return err
	}
	if exists {
		return nil // 幂等性：已存在
	}

	// 2. 穿透到底层存储
	if err := s.backend.Put(ctx, hash, data); err != nil {
		return err
	}

	// 3. 底层写成功了才写缓存；Set 失败可以忽略，不影响主流程
	entry := []byte("1")
	if stat := statFromCompressed(data); stat != nil {
		if encoded, err := em.Marshal(stat); err == nil {
			entry = encoded
		}
	}
	s.client.Set(ctx, s.cacheKey(hash), entry, s.ttl)

	return nil
}

// Get 透传 - 不缓存对象本体
func (s *CachedStore) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	return s.backend.Get(ctx, hash)
}

// Stat 尝试从缓存里取元数据；缓存没有就返回 false，由调用方走慢路径
func (s *CachedStore) Stat(ctx context.Context, hash types.Hash) (*Stat, bool) {
	raw, err := s.client.Get(ctx, s.cacheKey(hash)).Bytes()
	if err != nil {
		return nil, false
	}

	var stat Stat
	if err := dm.Unmarshal(raw, &stat); err != nil {
		// 纯存在性标记 ("1") 或者损坏条目，都当 miss
		return nil, false
	}
	return &stat, true
}

// Walk 透传 (遍历必须看到底层的真实全集，缓存帮不上忙)
func (s *CachedStore) Walk(ctx context.Context, fn func(types.Hash) error) error {
	return s.backend.Walk(ctx, fn)
}

// ExpandHash 透传
func (s *CachedStore) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	return s.backend.ExpandHash(ctx, short)
}
