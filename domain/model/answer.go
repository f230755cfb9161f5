package model

import "time"

const (
	AnswerOK = "OK"
	AnswerNG = "NG"
)

type Answer struct {
	ID          uint   `gorm:"primary_key"`
	AnswerID    string `gorm:"type:varchar(50);unique_index"`
	Timestamp   time.Time
	PollPostID  string `gorm:"type:varchar(50);index"` // アンケートの元投稿ID
	UserID      string `gorm:"type:varchar(50)"`
	AnswerValue string `gorm:"type:varchar(10)"`
}

// 集計結果。answersテーブルからクエリのたびに計算する
type PollResult struct {
	OK int
	NG int
}
