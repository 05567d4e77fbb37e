// Package compress 封装对象的 zlib 流压缩。
// 容器格式是互操作硬约束：任何标准 zlib 读取器都必须能解开我们写的流。
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// DefaultLevel 默认压缩级别
// 级别只是调优参数，不是正确性参数：任何级别都必须能无损还原
const DefaultLevel = zlib.BestCompression

// ErrCorruptStream 输入不是合法的 zlib 流
// (魔数损坏 / 流被截断 / 压缩格式内部的校验和失败)
var ErrCorruptStream = errors.New("compress: corrupt zlib stream")

// Compress 把字节流压成 zlib 容器格式
// level 超出 [-2, 9] 范围时报错，而不是悄悄回退到默认值
func Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("invalid compression level %d: %w", level, err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib write failed: %w", err)
	}
	// Close 会刷出尾部的 Adler-32 校验和，必须检查错误
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib close failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress 解开 zlib 容器，还原原始字节
// 对任何不合法的输入统一报 ErrCorruptStream (底层原因通过 %w 链保留)
func Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		// 魔数/头部不对，根本不是 zlib 流
		return nil, fmt.Errorf("%w: %v", ErrCorruptStream, err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		// 截断 (unexpected EOF) 或校验和失败都会在读取过程中暴露
		return nil, fmt.Errorf("%w: %v", ErrCorruptStream, err)
	}
	return out, nil
}
