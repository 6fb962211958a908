package model

// 採番カウンタ。メモリ上では持たず必ずDBでインクリメントする。
type Sequence struct {
	Name  string `gorm:"primaryKey;type:varchar(32)" json:"name"`
	Value int64  `gorm:"not null" json:"value"`
}
