package template

import (
	"embed"
	"io"
	"strings"

	stdtemplate "html/template"

	"github.com/PuerkitoBio/goquery"
	humanize "github.com/dustin/go-humanize"
	blackfriday "gopkg.in/russross/blackfriday.v2"
)

//go:embed views/*.html
var views embed.FS

type Template struct {
	templates *stdtemplate.Template
}

func NewTemplate() *Template {
	funcMap := stdtemplate.FuncMap{
		"humantime": humanize.Time,
		"humanbytes": func(n int64) string {
			if n < 0 {
				return "unknown size"
			}
			return humanize.IBytes(uint64(n))
		},
		"markdown": MarkdownToHTML,
		"join":     strings.Join,
		"orDash": func(s string) string {
			if strings.TrimSpace(s) == "" {
				return "-"
			}
			return s
		},
	}
	return &Template{
		templates: stdtemplate.Must(stdtemplate.New("stdtmpl").Funcs(funcMap).ParseFS(views, "views/*.html")),
	}
}

func (t *Template) Execute(w io.Writer, name string, data interface{}) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

func MarkdownToHTML(s string) stdtemplate.HTML {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.Safelink |
			blackfriday.NofollowLinks |
			blackfriday.NoreferrerLinks |
			blackfriday.HrefTargetBlank,
	})
	return stdtemplate.HTML(blackfriday.Run([]byte(s), blackfriday.WithRenderer(renderer)))
}

// MarkdownToText renders s and returns the visible text with whitespace
// collapsed to single spaces.
func MarkdownToText(s string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(MarkdownToHTML(s))))
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
