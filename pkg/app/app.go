// pkg/app/app.go
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gitvault/pkg/meta"
	"gitvault/pkg/refs"
	"gitvault/pkg/repo"
	"gitvault/pkg/storage"
	"gitvault/pkg/storage/cache"
	"gitvault/pkg/storage/disk"
	"gitvault/pkg/storage/s3"
	"gitvault/pkg/store"

	"github.com/spf13/viper"
)

// App 是整个应用程序的依赖容器 (Dependency Container)
// 它持有所有“单例”服务
type App struct {
	Store    *store.Store
	Refs     *refs.Manager
	RepoPath string
}

// NewApp 是工厂函数，负责按 Viper 配置组装这一台机器
// 它不知道具体的 CLI 命令，只管把依赖接对
func NewApp(ctx context.Context) (*App, error) {
	// 1. 定位仓库根路径 (Single Source of Truth)
	repoPath := viper.GetString("storage.path")
	if repoPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		repoPath, err = repo.Discover(wd)
		if err != nil {
			return nil, err
		}
	}

	// 2. 有仓库配置就校验格式版本 (裸 objects 目录没有 config，跳过)
	if _, err := os.Stat(filepath.Join(repoPath, "config")); err == nil {
		if err := repo.CheckFormat(repoPath); err != nil {
			return nil, err
		}
	}

	// 3. 初始化存储后端 (Dependency Injection)
	backend, err := newBackend(ctx, repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	// 4. 可选的 Redis 缓存层 (装饰器)
	if viper.GetBool("cache.enabled") {
		ttl, err := time.ParseDuration(viper.GetString("cache.ttl"))
		if err != nil {
			return nil, fmt.Errorf("invalid cache.ttl: %w", err)
		}
		backend, err = cache.NewCachedStore(backend, cache.Config{
			RedisURL: viper.GetString("cache.redis_url"),
			TTL:      ttl,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init redis cache: %w", err)
		}
	}

	// 5. 可选的对象清单 (gorm)
	opts := []store.Option{
		store.WithCompressionLevel(viper.GetInt("compression.level")),
	}
	if viper.GetBool("meta.enabled") {
		dsn := viper.GetString("meta.dsn")
		if dsn == "" {
			dsn = filepath.Join(repoPath, "meta.db")
		}
		db, err := meta.NewDB(ctx, meta.Config{
			Driver: viper.GetString("meta.driver"),
			DSN:    dsn,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init meta db: %w", err)
		}
		opts = append(opts, store.WithInventory(meta.NewRepository(db)))
	}

	return &App{
		Store:    store.New(backend, opts...),
		Refs:     refs.NewManager(repoPath),
		RepoPath: repoPath,
	}, nil
}

// newBackend 按 storage.type 选择后端实现
func newBackend(ctx context.Context, repoPath string) (storage.Backend, error) {
	switch backendType := viper.GetString("storage.type"); backendType {
	case "disk":
		return disk.NewAdapter(repoPath)
	case "s3":
		if viper.GetString("s3.bucket") == "" {
			return nil, fmt.Errorf("s3 bucket is required")
		}
		return s3.NewAdapter(ctx, s3.Config{
			Endpoint:        viper.GetString("s3.endpoint"),
			Region:          viper.GetString("s3.region"),
			Bucket:          viper.GetString("s3.bucket"),
			AccessKeyID:     viper.GetString("s3.access_key_id"),
			SecretAccessKey: viper.GetString("s3.secret_access_key"),
		})
	default:
		return nil, fmt.Errorf("unknown storage.type: %q", backendType)
	}
}
