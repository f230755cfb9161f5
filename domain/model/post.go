package model

import "time"

type Post struct {
	ID          uint   `gorm:"primary_key"`
	PostID      string `gorm:"type:varchar(50);unique_index"` // LINEのメッセージID
	Timestamp   time.Time
	UserID      string `gorm:"type:varchar(50)"`
	RoomID      string `gorm:"type:varchar(50)"` // 個人チャットの場合は空文字
	MessageText string `gorm:"type:text"`
	HasPoll     bool
}
