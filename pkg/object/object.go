package object

import (
	"fmt"

	"gitvault/pkg/types"
)

// Type 定义了对象类型 (Git 的四种对象)
type Type string

const (
	TypeBlob   Type = "blob"   // 文件内容
	TypeTree   Type = "tree"   // 目录快照 (本层只当作不透明字节)
	TypeCommit Type = "commit" // 版本快照 (同上)
	TypeTag    Type = "tag"    // 附注标签 (同上)
)

// ParseType 把 CLI / 磁盘上的标签转成封闭枚举
// 不认识的标签返回 ErrUnknownType，绝不放行
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeBlob, TypeTree, TypeCommit, TypeTag:
		return Type(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Object 是存储层交换的基本单元 (TypedPayload)
// 只有 blob 的内容在本层有语义；tree/commit/tag 的内部结构
// 留给上层的解释器去解析 (扩展点)，这里只负责封帧和哈希。
//
// Object 是值对象：构造之后 kind/data/hash 都不再变化。
// 调用方不应该修改 Data() 返回的切片。
type Object struct {
	kind Type
	data []byte
	hash types.Hash
}

// New 构造一个对象并立刻计算它的 Hash
// Hash 覆盖的是完整帧 (header + payload)，不是裸 payload。
// 这样截断、类型混淆都会改变 Hash，读取时天然自带完整性校验。
func New(kind Type, data []byte) (*Object, error) {
	if _, err := ParseType(string(kind)); err != nil {
		return nil, err
	}
	return &Object{
		kind: kind,
		data: data,
		hash: Sum(Frame(kind, data)),
	}, nil
}

func (o *Object) Kind() Type     { return o.kind }
func (o *Object) ID() types.Hash { return o.hash }
func (o *Object) Data() []byte   { return o.data }
func (o *Object) Size() int64    { return int64(len(o.data)) }

// Framed 返回规范化的帧字节 (写入压缩器之前的形态)
func (o *Object) Framed() []byte { return Frame(o.kind, o.data) }
