package db

import "gorm.io/gorm/clause"

// lockForUpdate SELECT ... FOR UPDATE
// 行鎖持有到事務 commit/rollback，同商品的並發結帳在這裡序列化
func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
