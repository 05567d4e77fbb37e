// Package layout 负责 Hash 到物理路径的纯映射，自身不做任何 I/O。
// 策略和 git 一致：前 2 个 hex 字符做分片目录，剩余部分做文件名
// Example: "a1b2c3..." -> <root>/objects/a1/b2c3...
package layout

import (
	"errors"
	"fmt"
	"path/filepath"

	"gitvault/pkg/types"
)

// ObjectsDirName 对象库在仓库根目录下的子目录名
const ObjectsDirName = "objects"

// ErrInvalidHash Hash 太短 (不足 3 个字符) 或含有 hex 之外的字符
var ErrInvalidHash = errors.New("layout: invalid object hash")

// ObjectPath 返回对象文件的完整路径
// root 必须是调用方已经校验过的仓库根目录，这里不做任何规范化
func ObjectPath(root string, hash types.Hash) (string, error) {
	if err := checkHash(hash); err != nil {
		return "", err
	}
	h := hash.String()
	return filepath.Join(root, ObjectsDirName, h[:2], h[2:]), nil
}

// ShardDir 返回分片目录 (<root>/objects/<前2字符>)
// 第一次向该分片写入之前，调用方需要先创建这个目录
func ShardDir(root string, hash types.Hash) (string, error) {
	if err := checkHash(hash); err != nil {
		return "", err
	}
	return filepath.Join(root, ObjectsDirName, hash.String()[:2]), nil
}

// ObjectsDir 返回对象库根目录
func ObjectsDir(root string) string {
	return filepath.Join(root, ObjectsDirName)
}

// checkHash 最低要求：2 个字符做目录 + 至少 1 个字符做文件名
// 这里不强制完整的 40 字符，前缀路径也会用到同样的分片逻辑
func checkHash(hash types.Hash) error {
	if !types.HashPrefix(hash).IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	return nil
}
