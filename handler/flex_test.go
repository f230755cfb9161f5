package handler

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPollTrigger(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"hello", false},
		{"アンケートを取りたい", false},
		{"[アンケート]", true},
		{"来週の予定 [アンケート] 回答お願いします", true},
		{"[poll] lunch?", true},
		{"[POLL] lunch?", true},
		{"poll", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsPollTrigger(tt.text), "text=%q", tt.text)
	}
}

// ボタンに埋めたデータをパースすると同じ値が取り出せる
func TestBuildAnswerData_RoundTrip(t *testing.T) {
	data := buildAnswerData("OK", "m1")

	params, err := url.ParseQuery(data)
	assert.NoError(t, err)
	assert.Equal(t, "answer", params.Get("action"))
	assert.Equal(t, "OK", params.Get("value"))
	assert.Equal(t, "m1", params.Get("postId"))
}

func TestBuildAnswerData_EscapesPostID(t *testing.T) {
	data := buildAnswerData("NG", "m 1&x=")

	params, err := url.ParseQuery(data)
	assert.NoError(t, err)
	assert.Equal(t, "NG", params.Get("value"))
	assert.Equal(t, "m 1&x=", params.Get("postId"))
}

// "=値"を省略したペアは空文字になる
func TestParseQuery_MissingValue(t *testing.T) {
	params, err := url.ParseQuery("action=answer&value&postId=m1")
	assert.NoError(t, err)
	assert.Equal(t, "", params.Get("value"))
	assert.Equal(t, "m1", params.Get("postId"))
}
