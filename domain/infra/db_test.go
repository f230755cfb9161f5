package infra

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/enqbot/enqbot/domain/model"
	"github.com/stretchr/testify/assert"
)

func newTestDataBase(t *testing.T) *DataBase {
	t.Helper()
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "enqbot_test.db"))

	d, err := NewDataBase()
	assert.NoError(t, err)
	return d
}

func TestDataBase_EnsureUser_Idempotent(t *testing.T) {
	d := newTestDataBase(t)

	assert.NoError(t, d.EnsureUser("U1"))
	assert.NoError(t, d.EnsureUser("U1"))

	var count int
	assert.NoError(t, d.db.Model(&model.User{}).Where("user_id = ?", "U1").Count(&count).Error)
	assert.Equal(t, 1, count)

	var user model.User
	assert.NoError(t, d.db.Where("user_id = ?", "U1").First(&user).Error)
	assert.Equal(t, "", user.DisplayName)
}

func TestDataBase_EnsureUser_EmptyID(t *testing.T) {
	d := newTestDataBase(t)

	assert.NoError(t, d.EnsureUser(""))

	var count int
	assert.NoError(t, d.db.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, 0, count)
}

func TestDataBase_EnsureRoom_Idempotent(t *testing.T) {
	d := newTestDataBase(t)

	assert.NoError(t, d.EnsureRoom("R1"))
	assert.NoError(t, d.EnsureRoom("R1"))
	assert.NoError(t, d.EnsureRoom(""))

	var count int
	assert.NoError(t, d.db.Model(&model.Room{}).Count(&count).Error)
	assert.Equal(t, 1, count)
}

func TestDataBase_SavePost(t *testing.T) {
	d := newTestDataBase(t)

	err := d.SavePost(&model.Post{
		PostID:      "m1",
		Timestamp:   time.Now(),
		UserID:      "U1",
		RoomID:      "",
		MessageText: "vote now [アンケート]",
		HasPoll:     true,
	})
	assert.NoError(t, err)

	var post model.Post
	assert.NoError(t, d.db.Where("post_id = ?", "m1").First(&post).Error)
	assert.Equal(t, "U1", post.UserID)
	assert.Equal(t, "", post.RoomID)
	assert.Equal(t, "vote now [アンケート]", post.MessageText)
	assert.True(t, post.HasPoll)

	// アンケートなしの投稿はhas_poll=falseのまま保存される
	err = d.SavePost(&model.Post{
		PostID:      "m2",
		Timestamp:   time.Now(),
		UserID:      "U1",
		RoomID:      "R1",
		MessageText: "hello",
		HasPoll:     false,
	})
	assert.NoError(t, err)

	plain, err := d.GetPost("m2")
	assert.NoError(t, err)
	if assert.NotNil(t, plain) {
		assert.False(t, plain.HasPoll)
		assert.Equal(t, "R1", plain.RoomID)
	}
}

// 同じpostIdが再配信されても初回の記録が残る
func TestDataBase_SavePost_DuplicatePostID(t *testing.T) {
	d := newTestDataBase(t)

	assert.NoError(t, d.SavePost(&model.Post{
		PostID:      "m1",
		Timestamp:   time.Now(),
		UserID:      "U1",
		MessageText: "first",
	}))
	assert.NoError(t, d.SavePost(&model.Post{
		PostID:      "m1",
		Timestamp:   time.Now(),
		UserID:      "U2",
		MessageText: "second",
	}))

	var count int
	assert.NoError(t, d.db.Model(&model.Post{}).Where("post_id = ?", "m1").Count(&count).Error)
	assert.Equal(t, 1, count)

	post, err := d.GetPost("m1")
	assert.NoError(t, err)
	if assert.NotNil(t, post) {
		assert.Equal(t, "first", post.MessageText)
		assert.Equal(t, "U1", post.UserID)
	}
}

func TestDataBase_Getters_NotFound(t *testing.T) {
	d := newTestDataBase(t)

	post, err := d.GetPost("missing")
	assert.NoError(t, err)
	assert.Nil(t, post)

	user, err := d.GetUser("missing")
	assert.NoError(t, err)
	assert.Nil(t, user)

	room, err := d.GetRoom("missing")
	assert.NoError(t, err)
	assert.Nil(t, room)
}

func TestDataBase_SaveAnswer_GeneratesID(t *testing.T) {
	d := newTestDataBase(t)

	first := &model.Answer{PollPostID: "m1", UserID: "U2", AnswerValue: model.AnswerOK}
	second := &model.Answer{PollPostID: "m1", UserID: "U3", AnswerValue: model.AnswerNG}
	assert.NoError(t, d.SaveAnswer(first))
	assert.NoError(t, d.SaveAnswer(second))

	assert.NotEmpty(t, first.AnswerID)
	assert.NotEmpty(t, second.AnswerID)
	assert.NotEqual(t, first.AnswerID, second.AnswerID)
}

// 同じユーザーが複数回答しても毎回行が増える（上書きしない）
func TestDataBase_SaveAnswer_AllowsRepeatedAnswers(t *testing.T) {
	d := newTestDataBase(t)

	assert.NoError(t, d.SaveAnswer(&model.Answer{PollPostID: "m1", UserID: "U2", AnswerValue: model.AnswerOK}))
	assert.NoError(t, d.SaveAnswer(&model.Answer{PollPostID: "m1", UserID: "U2", AnswerValue: model.AnswerNG}))

	result, err := d.GetPollResult("m1")
	assert.NoError(t, err)
	assert.Equal(t, &model.PollResult{OK: 1, NG: 1}, result)
}

func TestDataBase_GetPollResult(t *testing.T) {
	d := newTestDataBase(t)

	answers := []model.Answer{
		{PollPostID: "m1", UserID: "U2", AnswerValue: model.AnswerOK},
		{PollPostID: "m1", UserID: "U3", AnswerValue: model.AnswerNG},
		{PollPostID: "m2", UserID: "U2", AnswerValue: model.AnswerOK},
		{PollPostID: "m1", UserID: "U4", AnswerValue: "MAYBE"},
	}
	for i := range answers {
		assert.NoError(t, d.SaveAnswer(&answers[i]))
	}

	// OK/NG以外の値はどちらにも数えない
	result, err := d.GetPollResult("m1")
	assert.NoError(t, err)
	assert.Equal(t, &model.PollResult{OK: 1, NG: 1}, result)

	result, err = d.GetPollResult("m2")
	assert.NoError(t, err)
	assert.Equal(t, &model.PollResult{OK: 1, NG: 0}, result)
}

func TestDataBase_GetPollResult_NoAnswers(t *testing.T) {
	d := newTestDataBase(t)

	result, err := d.GetPollResult("unknown")
	assert.NoError(t, err)
	assert.Equal(t, &model.PollResult{OK: 0, NG: 0}, result)
}
