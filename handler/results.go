package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/enqbot/enqbot/domain/model"
)

var resultsTemplate = template.Must(template.New("results").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>アンケート結果</title>
</head>
<body>
<h1>アンケート結果</h1>
<p>投稿ID: {{.PostID}}</p>
<table border="1">
<tr><th>OK</th><th>NG</th></tr>
<tr><td>{{.Result.OK}}</td><td>{{.Result.NG}}</td></tr>
</table>
</body>
</html>
`))

type resultsPage struct {
	PostID string
	Result *model.PollResult
}

// アンケート結果ページ。postId未指定ならプレースホルダを表示する
func (h *Handler) HandleResults(w http.ResponseWriter, r *http.Request) {
	page := resultsPage{
		PostID: "指定されていません",
		Result: &model.PollResult{},
	}

	if postID := r.URL.Query().Get("postId"); postID != "" {
		result, err := h.ds.GetPollResult(postID)
		if err != nil {
			slog.Error("GetPollResult failed", slog.Any("err", err), slog.String("postID", postID))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		page.PostID = postID
		page.Result = result
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := resultsTemplate.Execute(w, page); err != nil {
		slog.Error("Failed to render results page", slog.Any("err", err))
	}
}
