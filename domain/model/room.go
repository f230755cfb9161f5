package model

// トークルーム。ルーム名は登録時は空欄（管理者が手動入力）
type Room struct {
	ID       uint   `gorm:"primary_key"`
	RoomID   string `gorm:"type:varchar(50);unique_index"`
	RoomName string `gorm:"type:varchar(100)"`
}
