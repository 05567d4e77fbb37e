// pkg/types/common.go
package types

// Hash 代表对象的唯一标识符 (SHA-1 Hex String, 40 字符小写)
// 这是一个“值对象”，应当是不可变的。
type Hash string

// HashHexLen 是完整 Hash 的字符数 (SHA-1 = 20 bytes = 40 hex chars)
const HashHexLen = 40

func (h Hash) String() string { return string(h) }

// 验证 Hash 合法性
func (h Hash) IsZero() bool { return h == "" }

// IsValid 检查长度和字符集 (只允许小写 hex)
// 大写 hex 也拒绝：对象路径是大小写敏感的，规范化是调用方的责任
func (h Hash) IsValid() bool {
	if len(h) != HashHexLen {
		return false
	}
	return isHex(string(h))
}

// HashPrefix 是 Hash 的前缀 (用于短 Hash 展开)
type HashPrefix string

func (p HashPrefix) String() string { return string(p) }

// IsValid 前缀至少要有 3 个字符：2 个做分片目录，剩下的才能定位文件
func (p HashPrefix) IsValid() bool {
	if len(p) < 3 || len(p) > HashHexLen {
		return false
	}
	return isHex(string(p))
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

type RepoPath string
