package content

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	htmlPolicy = bluemonday.UGCPolicy()
)

// RenderMarkdown converts markdown source into sanitised HTML. Inline HTML is kept until the
// sanitiser runs.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("content: render markdown: %w", err)
	}
	return htmlPolicy.Sanitize(buf.String()), nil
}

// SanitizeHTML strips anything outside the user-generated-content allow list.
func SanitizeHTML(raw string) string {
	return htmlPolicy.Sanitize(raw)
}

// RenderHTML converts blocks into sanitised HTML. Unknown blocks are skipped.
func (b Blocks) RenderHTML() string {
	var sb strings.Builder
	for _, block := range b {
		switch v := block.(type) {
		case Paragraph:
			sb.WriteString("<p>")
			writeInlines(&sb, v.Children)
			sb.WriteString("</p>")
		case Heading:
			fmt.Fprintf(&sb, "<h%d>", v.Level)
			writeInlines(&sb, v.Children)
			fmt.Fprintf(&sb, "</h%d>", v.Level)
		case Quote:
			sb.WriteString("<blockquote>")
			writeInlines(&sb, v.Children)
			sb.WriteString("</blockquote>")
		case List:
			tag := "ul"
			if v.Ordered {
				tag = "ol"
			}
			sb.WriteString("<" + tag + ">")
			for _, item := range v.Items {
				sb.WriteString("<li>")
				writeInlines(&sb, item)
				sb.WriteString("</li>")
			}
			sb.WriteString("</" + tag + ">")
		case Code:
			sb.WriteString("<pre><code")
			if v.Language != "" {
				sb.WriteString(` class="language-` + html.EscapeString(v.Language) + `"`)
			}
			sb.WriteString(">")
			sb.WriteString(html.EscapeString(v.Text))
			sb.WriteString("</code></pre>")
		case Image:
			sb.WriteString(`<figure><img src="` + html.EscapeString(v.URL) + `" alt="` + html.EscapeString(v.Alt) + `">`)
			if v.Caption != "" {
				sb.WriteString("<figcaption>" + html.EscapeString(v.Caption) + "</figcaption>")
			}
			sb.WriteString("</figure>")
		case Markdown:
			rendered, err := RenderMarkdown(v.Source)
			if err == nil {
				sb.WriteString(rendered)
			}
		}
	}
	return htmlPolicy.Sanitize(sb.String())
}

// PlainText returns the text content of all blocks separated by blank lines.
func (b Blocks) PlainText() string {
	parts := make([]string, 0, len(b))
	for _, block := range b {
		switch v := block.(type) {
		case Paragraph:
			parts = append(parts, PlainText(v.Children))
		case Heading:
			parts = append(parts, PlainText(v.Children))
		case Quote:
			parts = append(parts, PlainText(v.Children))
		case List:
			for _, item := range v.Items {
				parts = append(parts, PlainText(item))
			}
		case Code:
			parts = append(parts, v.Text)
		case Markdown:
			parts = append(parts, v.Source)
		}
	}
	return strings.Join(parts, "\n\n")
}

func writeInlines(sb *strings.Builder, runs []Inline) {
	for _, r := range runs {
		if r.URL != "" {
			sb.WriteString(`<a href="` + html.EscapeString(r.URL) + `">`)
			writeInlines(sb, r.Children)
			sb.WriteString(html.EscapeString(r.Text))
			sb.WriteString("</a>")
			continue
		}
		text := html.EscapeString(r.Text)
		if r.Code {
			text = "<code>" + text + "</code>"
		}
		if r.Bold {
			text = "<strong>" + text + "</strong>"
		}
		if r.Italic {
			text = "<em>" + text + "</em>"
		}
		if r.Underline {
			text = "<u>" + text + "</u>"
		}
		if r.Strikethrough {
			text = "<s>" + text + "</s>"
		}
		sb.WriteString(text)
	}
}
