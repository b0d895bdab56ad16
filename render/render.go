// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package render turns page data into HTML using the embedded templates.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-polls/models"
)

//go:embed templates/*.html
var files embed.FS

// Page names
const (
	PageIndex   = "index"
	PageDetail  = "detail"
	PageResults = "results"
	PageLogin   = "login"
	PageError   = "error"
)

var funcs = template.FuncMap{
	"ago":   func(t time.Time) string { return humanize.Time(t) },
	"comma": humanize.Comma,
	"percent": func(n, total int64) string {
		if total == 0 {
			return "0%"
		}
		// FtoaWithDigits truncates, so round to one decimal first
		return humanize.FtoaWithDigits(math.Round(float64(n)*1000/float64(total))/10, 1) + "%"
	},
}

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{PageIndex, PageDetail, PageResults, PageLogin, PageError} {
		pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(files,
			"templates/layout.html", "templates/"+name+".html"))
	}
}

// Page carries what every page shows besides its own content
type Page struct {
	User  *models.User
	Flash string
}

type IndexEntry struct {
	ID      string
	Text    string
	PubDate time.Time
	CanVote bool
}

type IndexData struct {
	Page
	Questions []IndexEntry
	Empty     string
}

type DetailData struct {
	Page
	Question models.Question
	Choices  []models.Choice
	Selected string
	Error    string
}

type ResultsData struct {
	Page
	Question   models.Question
	Choices    []models.ChoiceResult
	TotalVotes int64
	CanVote    bool
}

type LoginData struct {
	Page
	Next     string
	Username string
	Error    string
}

type ErrorData struct {
	Page
	Status  string
	Message string
}

// HTML renders a page. The page is executed into a buffer first so a
// template failure becomes a clean 500 instead of a half-written body.
func HTML(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := pages[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

// Error renders the error page with the standard status text as heading
func Error(w http.ResponseWriter, status int, page Page, message string) {
	HTML(w, status, PageError, ErrorData{
		Page:    page,
		Status:  fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Message: message,
	})
}
