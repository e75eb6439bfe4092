package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"zenreader/internal/catalog"
	"zenreader/internal/contextutil"
)

// ChapterRenderer turns chapter text into HTML. Markdown books are rendered
// as Markdown; plain-text books get one paragraph per non-empty line. Raw
// HTML in the source is not passed through.
type ChapterRenderer struct {
	markdown goldmark.Markdown
}

// NewChapterRenderer creates a ChapterRenderer.
func NewChapterRenderer() *ChapterRenderer {
	return &ChapterRenderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// Render converts content taken from the file fileName.
func (c *ChapterRenderer) Render(fileName, content string) (template.HTML, error) {
	source := content
	if !isMarkdown(fileName) {
		source = paragraphs(content)
	}

	var buf bytes.Buffer
	if err := c.markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func isMarkdown(fileName string) bool {
	lower := strings.ToLower(fileName)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// paragraphs escapes Markdown syntax in plain text and separates lines into
// paragraphs.
func paragraphs(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, escapeMarkdown(line))
	}
	return strings.Join(out, "\n\n")
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", `\<`, ">", `\>`, "&", `\&`, "#", `\#`, "|", `\|`, "~", `\~`,
)

func escapeMarkdown(line string) string {
	line = markdownEscaper.Replace(line)
	// A leading "1.", "1)" or "-" would start a list.
	if i := strings.IndexFunc(line, func(r rune) bool { return r < '0' || r > '9' }); i > 0 && (line[i] == '.' || line[i] == ')') {
		line = line[:i] + `\` + line[i:]
	}
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "+") || strings.HasPrefix(line, "=") {
		line = `\` + line
	}
	return line
}

// ChapterPageHandler serves a chapter as a standalone HTML page.
type ChapterPageHandler struct {
	catalog  *catalog.Catalog
	renderer *ChapterRenderer
	template *template.Template
}

type chapterPageData struct {
	BookTitle string
	Title     string
	Index     int
	Total     int
	Progress  int
	Prev      string
	Next      string
	Content   template.HTML
}

// NewChapterPageHandler creates a new handler for chapter pages.
func NewChapterPageHandler(c *catalog.Catalog, renderer *ChapterRenderer) *ChapterPageHandler {
	tmpl := template.Must(template.New("chapter").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} · {{.BookTitle}}</title>
  <style>
    body {
      font-family: "Noto Serif SC", "Songti SC", Georgia, serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 760px;
      line-height: 1.9;
      background: #f7f3ea;
      color: #2b2620;
    }
    header {
      border-bottom: 1px solid #e0d8c8;
      margin-bottom: 2rem;
    }
    .meta {
      color: #8a7f6e;
      font-size: 0.9rem;
    }
    nav {
      display: flex;
      justify-content: space-between;
      margin-top: 3rem;
    }
    a {
      color: #7a5c2e;
      text-decoration: none;
    }
    article p {
      text-indent: 2em;
    }
  </style>
</head>
<body>
  <header>
    <p class="meta">{{.BookTitle}} &middot; {{.Progress}}%</p>
    <h1>{{.Title}}</h1>
  </header>
  <article>{{.Content}}</article>
  <nav>
    {{if .Prev}}<a href="{{.Prev}}">&larr; 上一章</a>{{else}}<span></span>{{end}}
    {{if .Next}}<a href="{{.Next}}">下一章 &rarr;</a>{{end}}
  </nav>
</body>
</html>`))

	return &ChapterPageHandler{
		catalog:  c,
		renderer: renderer,
		template: tmpl,
	}
}

// ServeHTTP renders the requested chapter as HTML.
func (h *ChapterPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	b, err := h.catalog.Book(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "book not found", http.StatusNotFound)
		return
	}
	index, ok := chapterIndexParam(w, r)
	if !ok {
		return
	}
	ch, found := b.Chapter(index)
	if !found {
		http.Error(w, "chapter not found", http.StatusNotFound)
		return
	}

	content, err := h.renderer.Render(b.FileName, ch.Content)
	if err != nil {
		logger.ErrorContext(ctx, "failed to render chapter", "book_id", b.ID, "chapter_index", index, "error", err)
		http.Error(w, "failed to render chapter", http.StatusInternalServerError)
		return
	}

	data := chapterPageData{
		BookTitle: b.Title,
		Title:     ch.Title,
		Index:     index,
		Total:     len(b.Chapters),
		Progress:  b.Progress,
		Content:   content,
	}
	if index > 0 {
		data.Prev = strconv.Itoa(index - 1)
	}
	if index+1 < len(b.Chapters) {
		data.Next = strconv.Itoa(index + 1)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, data); err != nil {
		logger.ErrorContext(ctx, "failed to execute chapter template", "book_id", b.ID, "error", err)
	}
}
