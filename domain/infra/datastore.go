package infra

import (
	"github.com/enqbot/enqbot/domain/model"
)

type Datastore interface {
	// ユーザーが未登録なら登録する
	EnsureUser(string) error
	// トークルームが未登録なら登録する
	EnsureRoom(string) error
	// 投稿を保存する
	SavePost(*model.Post) error
	// アンケートの回答を保存する
	SaveAnswer(*model.Answer) error
	// 投稿を1件取得する。存在しない場合はnil
	GetPost(string) (*model.Post, error)
	// ユーザーを1件取得する。存在しない場合はnil
	GetUser(string) (*model.User, error)
	// トークルームを1件取得する。存在しない場合はnil
	GetRoom(string) (*model.Room, error)
	// 指定した投稿への回答を集計する
	GetPollResult(string) (*model.PollResult, error)
}
