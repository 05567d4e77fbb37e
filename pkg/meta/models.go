package meta

import "time"

// ObjectModel 是对象库在关系型数据库中的投影 (清单/索引)
// 真相永远在对象库本身；这张表只是加速 count-objects 和短哈希展开。
// 表和对象库不一致时以对象库为准，重建清单即可。
type ObjectModel struct {
	// Hash 是主键 (SHA-1, 40 hex chars)
	Hash string `gorm:"primaryKey;type:char(40)"`

	// Kind 四种对象类型之一 (B-Tree 索引，按类型统计用)
	Kind string `gorm:"index;type:varchar(16);not null"`

	// Size 是 payload 字节数 (不含帧头)
	Size int64 `gorm:"not null"`

	CreatedAt time.Time
}

// TableName 强制指定表名
func (ObjectModel) TableName() string {
	return "objects"
}
