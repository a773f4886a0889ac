// Package web holds the server-rendered pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Funcs are the helpers available to every page. blobURL turns a stored
// file key into a link.
func Funcs(blobURL func(string) string) template.FuncMap {
	return template.FuncMap{
		"blobURL": func(key string) string {
			if key == "" {
				return ""
			}
			return blobURL(key)
		},
		"basename": func(key string) string {
			if i := strings.LastIndex(key, "/"); i >= 0 {
				return key[i+1:]
			}
			return key
		},
		"alertClass": func(level any) string {
			switch l := strings.ToLower(strings.TrimSpace(fmt.Sprint(level))); l {
			case "error":
				return "danger"
			case "":
				return "info"
			default:
				return l
			}
		},
	}
}

// Parse returns all page templates.
func Parse(blobURL func(string) string) *template.Template {
	return template.Must(template.New("").Funcs(Funcs(blobURL)).ParseFS(templatesFS, "templates/*.html"))
}

// Load installs the page templates on the engine.
func Load(r *gin.Engine, blobURL func(string) string) {
	r.SetHTMLTemplate(Parse(blobURL))
}
