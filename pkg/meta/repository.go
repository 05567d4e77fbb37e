package meta

import (
	"context"
	"errors"

	"gitvault/pkg/object"
	"gitvault/pkg/storage"
	"gitvault/pkg/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotIndexed = errors.New("object not present in inventory")

// Repository 封装所有对 SQL 数据库的操作
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// RecordObject 把一个已持久化的对象登记到清单里
// 对象是不可变的：同一个 Hash 重复登记直接忽略 (DoNothing)，
// 不存在"更新"一说。
func (r *Repository) RecordObject(ctx context.Context, hash types.Hash, kind object.Type, size int64) error {
	row := ObjectModel{
		Hash: hash.String(),
		Kind: string(kind),
		Size: size,
	}
	return r.db.GetConn().WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

// GetObject 查询单个对象的清单记录
func (r *Repository) GetObject(ctx context.Context, hash types.Hash) (*ObjectModel, error) {
	var row ObjectModel
	err := r.db.GetConn().WithContext(ctx).
		Where("hash = ?", hash.String()).
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotIndexed
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// KindCount 按类型统计的结果行
type KindCount struct {
	Kind  string
	Count int64
	Bytes int64
}

// CountObjects 返回按类型分组的对象数和 payload 字节数 (count-objects 用)
func (r *Repository) CountObjects(ctx context.Context) ([]KindCount, error) {
	var rows []KindCount
	err := r.db.GetConn().WithContext(ctx).
		Model(&ObjectModel{}).
		Select("kind, count(*) as count, coalesce(sum(size), 0) as bytes").
		Group("kind").
		Order("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExpandHash 用清单加速短哈希展开 (LIMIT 2 区分唯一/歧义)
func (r *Repository) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	var hashes []string
	err := r.db.GetConn().WithContext(ctx).
		Model(&ObjectModel{}).
		Where("hash LIKE ?", short.String()+"%").
		Limit(2).
		Pluck("hash", &hashes).Error
	if err != nil {
		return "", err
	}

	switch len(hashes) {
	case 0:
		return "", storage.ErrNotFound
	case 1:
		return types.Hash(hashes[0]), nil
	default:
		return "", storage.ErrAmbiguousHash
	}
}

// Forget 从清单里移除一条记录 (对象库本身是只增的，这里只服务于清单重建)
func (r *Repository) Forget(ctx context.Context, hash types.Hash) error {
	return r.db.GetConn().WithContext(ctx).
		Delete(&ObjectModel{}, "hash = ?", hash.String()).Error
}
