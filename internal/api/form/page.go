package form

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/futig/lab-assistant/internal/catalog"
)

//go:embed form.html.tmpl
var pageSource string

var pageTemplate = template.Must(template.New("form").Parse(pageSource))

type pageData struct {
	Token      string
	SubmitPath string
	Groups     []catalog.Group
}

const expiredPage = `<!DOCTYPE html>
<html lang="ru"><head><meta charset="utf-8"><title>Ссылка недействительна</title></head>
<body><p>Ссылка на форму устарела или уже использована. Запросите новую в чате с ботом.</p></body></html>`

func renderExpired(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(expiredPage))
}
