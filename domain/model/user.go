package model

// ユーザー。表示名は登録時は空欄（管理者が手動入力）
type User struct {
	ID          uint   `gorm:"primary_key"`
	UserID      string `gorm:"type:varchar(50);unique_index"`
	DisplayName string `gorm:"type:varchar(100)"`
}
