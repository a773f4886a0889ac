package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData defines standard fields for email templates.
type EmailData struct {
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	CompanyName string `json:"CompanyName"`
	AppName     string `json:"AppName"`
	LogoURL     string `json:"LogoURL"`
	SupportURL  string `json:"SupportURL"`

	// Account the notice is about
	UserID       string    `json:"UserID"`
	Username     string    `json:"Username"`
	Role         string    `json:"Role"`
	RegisteredAt time.Time `json:"RegisteredAt"`
	Time         string    `json:"Time"`
	IP           string    `json:"IP"`
	NeedsReview  bool      `json:"NeedsReview"`
	Documents    []string  `json:"Documents"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		zero := reflect.Zero(rv.Type()).Interface()
		if reflect.DeepEqual(value, zero) {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"now":     func() time.Time { return time.Now().UTC() },
		"upper":   strings.ToUpper,
		"default": defaultFn,
	}
}

const (
	RegistrationNotice = "registration_notice"
	TutorVerified      = "tutor_verified"
)

// ErrUnknownTemplate is returned for a name with no embedded files.
var ErrUnknownTemplate = errors.New("unknown email template")

// Parsed once; html files go through html/template for escaping.
var (
	textSet = texttpl.Must(texttpl.New("").Funcs(texttpl.FuncMap(baseFuncs())).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("").Funcs(htmpl.FuncMap(baseFuncs())).ParseFS(FS, "*.html.tmpl"))
)

type executor interface {
	Execute(w io.Writer, data any) error
}

func execute(t executor, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render produces subject, text and html for the template family name,
// built from <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
func Render(name string, data any) (subject, text, html string, err error) {
	st, tt, ht := textSet.Lookup(name+".subject.tmpl"), textSet.Lookup(name+".text.tmpl"), htmlSet.Lookup(name+".html.tmpl")
	if st == nil || tt == nil || ht == nil {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	if subject, err = execute(st, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(tt, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(ht, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	// subjects are single line
	return strings.Join(strings.Fields(subject), " "), text, html, nil
}
