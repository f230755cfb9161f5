package handler

import "time"

// LINEプラットフォームから届くWebhookペイロード
type webhookPayload struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type       string           `json:"type"`
	Timestamp  int64            `json:"timestamp"` // エポックミリ秒
	ReplyToken string           `json:"replyToken"`
	Source     webhookSource    `json:"source"`
	Message    *webhookMessage  `json:"message,omitempty"`
	Postback   *webhookPostback `json:"postback,omitempty"`
}

type webhookSource struct {
	UserID  string `json:"userId"`
	RoomID  string `json:"roomId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
}

// グループまたはルームのID。個人チャットの場合は空文字
func (s webhookSource) chatRoomID() string {
	if s.RoomID != "" {
		return s.RoomID
	}
	return s.GroupID
}

type webhookMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

type webhookPostback struct {
	Data string `json:"data"`
}

func (e *webhookEvent) time() time.Time {
	return time.UnixMilli(e.Timestamp)
}
