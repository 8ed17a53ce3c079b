package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"sentiment-dashboard/internal/sentiment"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

// Page is the data every template receives.
type Page struct {
	Title  string
	Active string
	Data   any
}

// Templates parses every embedded page and partial into one set.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(FuncMap()).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// Static serves the embedded CSS and JS.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Render writes the named page template.
func Render(c *gin.Context, status int, name, title, active string, data any) {
	c.HTML(status, name, Page{Title: title, Active: active, Data: data})
}

// FuncMap holds the template helpers.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"class":      func(l sentiment.Label) sentiment.Class { return l.Class() },
		"classes":    sentiment.Classes,
		"percent":    Percent,
		"percent1":   Percent1,
		"percent2":   Percent2,
		"confidence": func(v float64) string { return Percent1(v * 100) },
		"ratio1":     func(v float64) string { return Percent1(v * 100) },
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"eqLabel":    func(a sentiment.Label, b int) bool { return int(a) == b },
	}
}

// Percent formats a 0-100 value with no decimals, e.g. 30%.
func Percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

// Percent1 formats a 0-100 value with one decimal, e.g. 30.0%.
func Percent1(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Percent2 formats a 0-1 ratio as a percentage with two decimals, e.g. 68.57%.
func Percent2(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}
