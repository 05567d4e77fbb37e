package object

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"gitvault/pkg/types"
)

// 帧格式: "<kind> <decimal-size>\x00<payload>"
// 这是和外部读取者互操作的硬约束，一个字节都不能差。
const headerSep byte = 0x00

var (
	// ErrMalformedHeader 帧头解析失败 (缺空格 / 缺 NUL / size 不是十进制)
	ErrMalformedHeader = errors.New("object: malformed header")

	// ErrSizeMismatch 帧头声明的 size 和实际长度不一致
	// 这是磁盘损坏或截断的强信号
	ErrSizeMismatch = errors.New("object: size mismatch")

	// ErrUnknownType 帧头里的类型标签不在四种之内
	ErrUnknownType = errors.New("object: unknown type")
)

// Frame 构造规范帧。对任意 payload (包括空) 都不会失败。
func Frame(kind Type, data []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(kind) + 1 + 20 + 1 + len(data))
	buf.WriteString(string(kind))
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(len(data)))
	buf.WriteByte(headerSep)
	buf.Write(data)
	return buf.Bytes()
}

// Sum 对完整帧做 SHA-1，返回 40 字符小写 hex
// 注意：算法是协议常量 (和磁盘格式绑定)，不做成可插拔的
func Sum(framed []byte) types.Hash {
	sum := sha1.Sum(framed)
	return types.Hash(hex.EncodeToString(sum[:]))
}

// Unframe 解析帧并验证三件事：帧头格式、类型标签、长度不变式
//
//	len(framed) == len(label) + 1 + len(decimal(size)) + 1 + size
//
// 任何一条不满足都是损坏，返回对应的哨兵错误，绝不静默容忍。
func Unframe(framed []byte) (*Object, error) {
	// 1. 找类型标签的边界 (第一个空格)
	sp := bytes.IndexByte(framed, ' ')
	if sp < 0 {
		return nil, fmt.Errorf("%w: no space separator", ErrMalformedHeader)
	}

	// 2. 找 size 字段的边界 (空格之后的第一个 NUL)
	nul := bytes.IndexByte(framed[sp:], headerSep)
	if nul < 0 {
		return nil, fmt.Errorf("%w: no NUL terminator", ErrMalformedHeader)
	}
	nul += sp

	// 3. 解析 size (无符号十进制；ParseUint 会拒绝 "+"/"-"/空串)
	size, err := strconv.ParseUint(string(framed[sp+1:nul]), 10, 63)
	if err != nil {
		return nil, fmt.Errorf("%w: bad size field %q", ErrMalformedHeader, framed[sp+1:nul])
	}

	// 4. 验证长度不变式 (每次读取都重新验证)
	if uint64(len(framed)-nul-1) != size {
		return nil, fmt.Errorf("%w: header declares %d bytes, frame carries %d",
			ErrSizeMismatch, size, len(framed)-nul-1)
	}

	// 5. 验证类型标签
	kind, err := ParseType(string(framed[:sp]))
	if err != nil {
		return nil, err
	}

	return New(kind, framed[nul+1:])
}
