package handler

import (
	"net/url"
	"os"
	"strings"

	"github.com/enqbot/enqbot/domain/model"
	"github.com/line/line-bot-sdk-go/v7/linebot"
)

const actionAnswer = "answer"

var pollTriggers = []string{"[アンケート]", "[poll]"}

// 本文にアンケートキーワードが含まれるか。大文字小文字は区別しない
func containsPollTrigger(text string) bool {
	lower := strings.ToLower(text)
	for _, trigger := range pollTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// OK/NGボタンに埋め込むpostbackデータ
func buildAnswerData(value, postID string) string {
	params := url.Values{}
	params.Set("action", actionAnswer)
	params.Set("value", value)
	params.Set("postId", postID)
	return params.Encode()
}

func newAnswerButton(value, postID string, style linebot.FlexButtonStyleType) *linebot.ButtonComponent {
	return &linebot.ButtonComponent{
		Type:   linebot.FlexComponentTypeButton,
		Style:  style,
		Height: linebot.FlexButtonHeightTypeSm,
		Action: &linebot.PostbackAction{
			Label:       value,
			Data:        buildAnswerData(value, postID),
			DisplayText: value,
		},
	}
}

// アンケートのFlex Messageを組み立てる
func newPollFlexMessage(postID string) *linebot.FlexMessage {
	footerContents := []linebot.FlexComponent{
		&linebot.BoxComponent{
			Type:    linebot.FlexComponentTypeBox,
			Layout:  linebot.FlexBoxLayoutTypeHorizontal,
			Spacing: linebot.FlexComponentSpacingTypeSm,
			Contents: []linebot.FlexComponent{
				newAnswerButton(model.AnswerOK, postID, linebot.FlexButtonStyleTypePrimary),
				newAnswerButton(model.AnswerNG, postID, linebot.FlexButtonStyleTypeSecondary),
			},
		},
	}

	// 結果ページのURLが設定されていればリンクボタンを追加
	if base := os.Getenv("WEB_APP_URL"); base != "" {
		footerContents = append(footerContents,
			&linebot.SeparatorComponent{
				Type:   linebot.FlexComponentTypeSeparator,
				Margin: linebot.FlexComponentMarginTypeSm,
			},
			&linebot.ButtonComponent{
				Type:   linebot.FlexComponentTypeButton,
				Style:  linebot.FlexButtonStyleTypeLink,
				Height: linebot.FlexButtonHeightTypeSm,
				Action: &linebot.URIAction{
					Label: "現在の結果を見る",
					URI:   base + "/results?postId=" + url.QueryEscape(postID),
				},
			},
		)
	}

	bubble := &linebot.BubbleContainer{
		Type: linebot.FlexContainerTypeBubble,
		Body: &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   "アンケート",
					Weight: linebot.FlexTextWeightTypeBold,
					Size:   linebot.FlexTextSizeTypeXl,
				},
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   "以下のボタンで回答してください。",
					Margin: linebot.FlexComponentMarginTypeMd,
					Wrap:   true,
				},
			},
		},
		Footer: &linebot.BoxComponent{
			Type:     linebot.FlexComponentTypeBox,
			Layout:   linebot.FlexBoxLayoutTypeVertical,
			Spacing:  linebot.FlexComponentSpacingTypeSm,
			Contents: footerContents,
		},
	}

	return linebot.NewFlexMessage("アンケート: OKですか？NGですか？", bubble)
}
