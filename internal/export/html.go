package export

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/bilgisen/aidigest/internal/models"
)

const digestTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{font-family:-apple-system,Segoe UI,Helvetica,Arial,sans-serif;max-width:760px;margin:2rem auto;padding:0 1rem;color:#222;line-height:1.5}
h1{margin-bottom:.25rem}
.period,.meta{color:#777;font-size:.9rem}
article{border-top:1px solid #eee;padding:1rem 0}
article h2{font-size:1.15rem;margin:0 0 .25rem}
.generated{background:#f6f8fa;border-left:3px solid #0366d6;padding:.5rem .75rem;margin:.5rem 0}
footer{color:#999;font-size:.8rem;margin-top:2rem}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{with .Period}}<p class="period">{{.}}</p>{{end}}
<p>{{.Intro}}</p>
{{range .Articles}}
<article>
<h2>{{if .Link}}<a href="{{.Link}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</h2>
<p class="meta">{{.Source}}{{with .Category}} · {{.}}{{end}} · {{.Date}}</p>
{{with .Summary}}<p>{{.}}</p>{{end}}
{{with .Generated}}<div class="generated">{{range .}}<p>{{.}}</p>{{end}}</div>{{end}}
</article>
{{end}}
<footer>Generated {{.GeneratedAt}}</footer>
</body>
</html>
`

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>AI digest archive</title>
</head>
<body>
<h1>AI digest archive</h1>
<ul>
{{range .}}<li><a href="{{.Href}}">{{.Name}}</a></li>
{{end}}</ul>
</body>
</html>
`

var (
	digestTmpl = template.Must(template.New("digest").Parse(digestTemplate))
	indexTmpl  = template.Must(template.New("index").Parse(indexTemplate))
)

type htmlArticle struct {
	Title     string
	Link      string
	Source    string
	Category  string
	Date      string
	Summary   string
	Generated []string
}

type htmlDigest struct {
	Title       string
	Period      string
	Intro       string
	GeneratedAt string
	Articles    []htmlArticle
}

// IndexEntry is one link on the archive index page.
type IndexEntry struct {
	Name string
	Href string
}

// RenderHTML writes doc as a standalone HTML page.
func RenderHTML(w io.Writer, doc Document) error {
	view := htmlDigest{
		Title:       doc.Title,
		Period:      doc.Period(),
		Intro:       doc.Intro,
		GeneratedAt: doc.GeneratedAt.In(doc.location()).Format("2006-01-02 15:04 MST"),
		Articles:    make([]htmlArticle, 0, doc.Articles.Len()),
	}
	for _, a := range doc.Articles.Items() {
		view.Articles = append(view.Articles, htmlArticle{
			Title:     a.Title,
			Link:      safeLink(a.Link),
			Source:    a.SourceName,
			Category:  a.Category,
			Date:      doc.DisplayDate(a),
			Summary:   a.Summary,
			Generated: generatedLines(a),
		})
	}

	if err := digestTmpl.Execute(w, view); err != nil {
		return fmt.Errorf("render digest HTML: %w", err)
	}
	return nil
}

// RenderIndex writes an archive page linking to each entry.
func RenderIndex(w io.Writer, entries []IndexEntry) error {
	if err := indexTmpl.Execute(w, entries); err != nil {
		return fmt.Errorf("render index HTML: %w", err)
	}
	return nil
}

func generatedLines(a models.Article) []string {
	var out []string
	for _, line := range strings.Split(a.GeneratedText(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// safeLink keeps only http(s) links; anything else renders as plain text.
func safeLink(link string) string {
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}
	return ""
}
