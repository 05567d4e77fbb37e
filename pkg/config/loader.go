package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gitvault/pkg/repo"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
// 没指定时尝试发现当前仓库，用它的 .gv/config (ini，和原始布局同格式)
func Load(cfgFile string) error {
	// 1. 设置默认值 (Defaults)
	setDefaults()

	// 2. 定位配置文件
	path := cfgFile
	if path == "" {
		if gvDir, err := repo.Discover("."); err == nil {
			path = filepath.Join(gvDir, "config")
			// 发现的仓库路径顺手填进默认值，app 层不用再找一次
			viper.SetDefault("storage.path", gvDir)
		}
	}

	// 3. 读取环境变量 (GV_STORAGE_TYPE -> storage.type)
	viper.SetEnvPrefix("GV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 4. 读取配置文件
	// 没找到配置文件不算错 (可能还没 init，或纯环境变量驱动)
	if path == "" {
		return nil
	}
	return mergeIniFile(path)
}

// mergeIniFile 把 ini 配置并入 viper
// viper v1.21 没有内置 ini 编解码，所以用 go-ini 解析，
// 摊平成 "section.key" 再 MergeConfigMap (优先级: flag > env > 配置 > 默认值)
func mergeIniFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("fatal error config file: %w", err)
	}

	settings := make(map[string]any)
	for _, section := range cfg.Sections() {
		for _, key := range section.Keys() {
			name := strings.ToLower(key.Name())
			if section.Name() != ini.DefaultSection {
				name = strings.ToLower(section.Name()) + "." + name
			}
			settings[name] = key.Value()
		}
	}
	return viper.MergeConfigMap(settings)
}

func setDefaults() {
	// 存储默认值
	viper.SetDefault("storage.type", "disk")
	viper.SetDefault("storage.path", "")

	// 压缩默认值 (zlib level 9，和原始实现一致)
	viper.SetDefault("compression.level", 9)

	// Redis 缓存默认值
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	viper.SetDefault("cache.ttl", "24h")

	// S3 后端默认值
	viper.SetDefault("s3.endpoint", "")
	viper.SetDefault("s3.region", "us-east-1")
	viper.SetDefault("s3.bucket", "gitvault-objects")
	viper.SetDefault("s3.access_key_id", "")
	viper.SetDefault("s3.secret_access_key", "")

	// 对象清单默认值
	viper.SetDefault("meta.enabled", false)
	viper.SetDefault("meta.driver", "sqlite")
	viper.SetDefault("meta.dsn", "")
}
