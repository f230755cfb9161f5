package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/enqbot/enqbot/domain/infra"
	"github.com/enqbot/enqbot/domain/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jellydator/ttlcache/v3"
	"github.com/line/line-bot-sdk-go/v7/linebot"
)

const (
	eventTypeMessage  = "message"
	eventTypePostback = "postback"
	messageTypeText   = "text"
)

type Handler struct {
	client    infra.MessagingAPI
	ds        infra.Datastore
	userCache *ttlcache.Cache[string, struct{}]
	roomCache *ttlcache.Cache[string, struct{}]
}

func NewHandler() (*Handler, error) {
	var ds infra.Datastore
	var err error
	if os.Getenv("DB_DRIVER") == "dynamodb" {
		ds, err = infra.NewDynamoDB()
		if err != nil {
			return nil, err
		}
	} else {
		ds, err = infra.NewDataBase()
		if err != nil {
			return nil, err
		}
	}

	client, err := infra.NewLineClient()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		client:    client,
		ds:        ds,
		userCache: ttlcache.New(ttlcache.WithTTL[string, struct{}](time.Hour)),
		roomCache: ttlcache.New(ttlcache.WithTTL[string, struct{}](time.Hour)),
	}
	go h.userCache.Start()
	go h.roomCache.Start()
	return h, nil
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Post("/callback", h.HandleWebhook)
	r.Get("/results", h.HandleResults)
	return r
}

func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	// LINEプラットフォームの疎通確認はボディなしで届くので、処理せずOKを返す
	if err != nil || len(body) == 0 {
		fmt.Fprint(w, "OK")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Warn("Failed to parse webhook payload", slog.Any("err", err))
		fmt.Fprint(w, "OK")
		return
	}

	// 1回の配信に複数イベントが載る。1件の失敗で後続のイベントを止めない
	for _, event := range payload.Events {
		if err := h.dispatchEvent(&event); err != nil {
			slog.Error("dispatchEvent failed", slog.Any("err", err), slog.String("type", event.Type))
		}
	}

	fmt.Fprint(w, "OK")
}

func (h *Handler) dispatchEvent(event *webhookEvent) error {
	switch event.Type {
	case eventTypeMessage:
		if event.Message == nil || event.Message.Type != messageTypeText {
			return nil
		}
		return h.handleTextMessage(event)
	case eventTypePostback:
		if event.Postback == nil {
			return nil
		}
		return h.handlePostback(event)
	default:
		// 未対応のイベント種別は黙って捨てる
		return nil
	}
}

func (h *Handler) handleTextMessage(event *webhookEvent) error {
	roomID := event.Source.chatRoomID()

	if err := h.ensureUser(event.Source.UserID); err != nil {
		return fmt.Errorf("ensureUser failed: %w", err)
	}
	if roomID != "" {
		if err := h.ensureRoom(roomID); err != nil {
			return fmt.Errorf("ensureRoom failed: %w", err)
		}
	}

	hasPoll := containsPollTrigger(event.Message.Text)

	if err := h.ds.SavePost(&model.Post{
		PostID:      event.Message.ID,
		Timestamp:   event.time(),
		UserID:      event.Source.UserID,
		RoomID:      roomID,
		MessageText: event.Message.Text,
		HasPoll:     hasPoll,
	}); err != nil {
		return fmt.Errorf("SavePost failed: %w", err)
	}

	if hasPoll {
		// 返信に失敗しても投稿は記録済みなのでエラー扱いにしない
		if _, err := h.client.ReplyMessage(event.ReplyToken, newPollFlexMessage(event.Message.ID)); err != nil {
			slog.Error("ReplyMessage failed", slog.Any("err", err), slog.String("postID", event.Message.ID))
		}
	}

	return nil
}

func (h *Handler) handlePostback(event *webhookEvent) error {
	params, err := url.ParseQuery(event.Postback.Data)
	if err != nil {
		// ボタン以外の壊れたpostbackは対象外
		return nil
	}
	if params.Get("action") != actionAnswer {
		return nil
	}

	answer := &model.Answer{
		Timestamp:   event.time(),
		PollPostID:  params.Get("postId"),
		UserID:      event.Source.UserID,
		AnswerValue: params.Get("value"),
	}
	if err := h.ds.SaveAnswer(answer); err != nil {
		return fmt.Errorf("SaveAnswer failed: %w", err)
	}

	if _, err := h.client.ReplyMessage(
		event.ReplyToken,
		linebot.NewTextMessage("回答を受け付けました: "+answer.AnswerValue),
	); err != nil {
		slog.Error("ReplyMessage failed", slog.Any("err", err), slog.String("postID", answer.PollPostID))
	}

	return nil
}

// 登録済みのIDはキャッシュして、イベントごとのストレージ参照を減らす
func (h *Handler) ensureUser(userID string) error {
	if userID == "" {
		return nil
	}
	if h.userCache.Get(userID) != nil {
		return nil
	}
	if err := h.ds.EnsureUser(userID); err != nil {
		return err
	}
	h.userCache.Set(userID, struct{}{}, ttlcache.DefaultTTL)
	return nil
}

func (h *Handler) ensureRoom(roomID string) error {
	if roomID == "" {
		return nil
	}
	if h.roomCache.Get(roomID) != nil {
		return nil
	}
	if err := h.ds.EnsureRoom(roomID); err != nil {
		return err
	}
	h.roomCache.Set(roomID, struct{}{}, ttlcache.DefaultTTL)
	return nil
}
