package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"gitvault/pkg/compress"
	"gitvault/pkg/object"
	"gitvault/pkg/types"

	"golang.org/x/sync/errgroup"
)

// ErrHashMismatch 对象重新计算出的 Hash 和它的存储路径对不上
// (帧本身是完好的，但内容被整体替换过，或者文件被挪错了位置)
var ErrHashMismatch = errors.New("store: recomputed hash does not match storage path")

// verifyWorkers 并发校验的上限
// fsck 是 CPU (解压+SHA1) 和 I/O 的混合负载，8 路并发基本吃满单机
const verifyWorkers = 8

// Issue 是一条 fsck 发现的问题
type Issue struct {
	Hash types.Hash
	Err  error
}

// VerifyReport 是一次全库校验的结果
type VerifyReport struct {
	mu      sync.Mutex
	Checked int64
	Issues  []Issue
}

func (r *VerifyReport) record(hash types.Hash, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Issues = append(r.Issues, Issue{Hash: hash, Err: err})
}

func (r *VerifyReport) incr() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Checked++
}

// Verify 遍历仓库里的每一个对象，完整重放读路径：
// 解压 -> 解帧 -> 重新哈希 -> 和路径推导出的 Hash 比对。
// 损坏不会中止遍历 (fsck 要的是完整清单)，全部记进 Report；
// 只有遍历本身失败 (I/O / ctx 取消) 才返回 error。
func (s *Store) Verify(ctx context.Context) (*VerifyReport, error) {
	report := &VerifyReport{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(verifyWorkers)

	walkErr := s.backend.Walk(ctx, func(hash types.Hash) error {
		g.Go(func() error {
			report.incr()
			if err := s.verifyOne(gctx, hash); err != nil {
				report.record(hash, err)
			}
			return nil
		})
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return report, err
	}
	if walkErr != nil {
		return report, fmt.Errorf("object walk failed: %w", walkErr)
	}
	return report, nil
}

// verifyOne 校验单个对象，任何一步失败都返回对应的哨兵错误
func (s *Store) verifyOne(ctx context.Context, hash types.Hash) error {
	rc, err := s.backend.Get(ctx, hash)
	if err != nil {
		return err
	}
	defer rc.Close()

	compressed, err := io.ReadAll(rc)
	if err != nil {
		return err
	}

	framed, err := compress.Decompress(compressed)
	if err != nil {
		return err // ErrCorruptStream
	}

	obj, err := object.Unframe(framed)
	if err != nil {
		return err // ErrMalformedHeader / ErrSizeMismatch / ErrUnknownType
	}

	if obj.ID() != hash {
		return fmt.Errorf("%w: stored as %s, content is %s", ErrHashMismatch, hash, obj.ID())
	}
	return nil
}
