package infra

import (
	"os"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// 返信に使うLINE Messaging APIの操作
type MessagingAPI interface {
	ReplyMessage(replyToken string, messages ...linebot.SendingMessage) (*linebot.BasicResponse, error)
}

type LineClient struct {
	bot *linebot.Client
}

func NewLineClient() (*LineClient, error) {
	bot, err := linebot.New(
		os.Getenv("LINE_CHANNEL_SECRET"),
		os.Getenv("LINE_CHANNEL_TOKEN"),
	)
	if err != nil {
		return nil, err
	}
	return &LineClient{bot: bot}, nil
}

func (c *LineClient) ReplyMessage(replyToken string, messages ...linebot.SendingMessage) (*linebot.BasicResponse, error) {
	return c.bot.ReplyMessage(replyToken, messages...).Do()
}
