package page

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/puzzo-dev/sitefront/internal/content"
)

//go:embed policies/*.md
var policyFS embed.FS

// Document is an embedded markdown document rendered to sanitised HTML.
type Document struct {
	Slug        string
	Title       string
	Description string
	Updated     string
	HTML        string
}

type documentFrontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Updated     string `yaml:"updated"`
}

// ErrDocumentNotFound is returned when no embedded document exists for a slug.
var ErrDocumentNotFound = errors.New("page: document not found")

// LoadDocument reads and renders the embedded document for slug.
func LoadDocument(slug string) (Document, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" || strings.ContainsAny(slug, "/\\.") {
		return Document{}, ErrDocumentNotFound
	}
	raw, err := policyFS.ReadFile("policies/" + slug + ".md")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, fmt.Errorf("page: read document %s: %w", slug, err)
	}

	var meta documentFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		return Document{}, fmt.Errorf("page: parse front matter %s: %w", slug, err)
	}
	html, err := content.RenderMarkdown(string(body))
	if err != nil {
		return Document{}, err
	}
	return Document{
		Slug:        slug,
		Title:       meta.Title,
		Description: meta.Description,
		Updated:     meta.Updated,
		HTML:        html,
	}, nil
}
