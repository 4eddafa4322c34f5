package content

import (
	"encoding/json"
	"fmt"
)

// Block is one rich-text block. The concrete types are Paragraph, Heading, List, Quote, Code,
// Image, Markdown and Unknown; Unknown preserves blocks this package does not recognise.
type Block interface {
	BlockType() string
}

// Inline is a text run, or a link wrapping further runs.
type Inline struct {
	Text          string   `json:"text,omitempty"`
	Bold          bool     `json:"bold,omitempty"`
	Italic        bool     `json:"italic,omitempty"`
	Underline     bool     `json:"underline,omitempty"`
	Strikethrough bool     `json:"strikethrough,omitempty"`
	Code          bool     `json:"code,omitempty"`
	URL           string   `json:"url,omitempty"`
	Children      []Inline `json:"children,omitempty"`
}

// Paragraph is a run of inline text.
type Paragraph struct {
	Children []Inline
}

// Heading is a titled run of inline text at Level 1..6.
type Heading struct {
	Level    int
	Children []Inline
}

// List is an ordered or unordered list; every item is a run of inline text.
type List struct {
	Ordered bool
	Items   [][]Inline
}

// Quote is a block quotation.
type Quote struct {
	Children []Inline
}

// Code is a preformatted snippet.
type Code struct {
	Language string
	Text     string
}

// Image is an embedded picture.
type Image struct {
	URL     string
	Alt     string
	Caption string
}

// Markdown is a block authored as markdown source.
type Markdown struct {
	Source string
}

// Unknown carries a block whose type is not modelled, with its raw payload.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

func (Paragraph) BlockType() string { return "paragraph" }
func (Heading) BlockType() string   { return "heading" }
func (List) BlockType() string      { return "list" }
func (Quote) BlockType() string     { return "quote" }
func (Code) BlockType() string      { return "code" }
func (Image) BlockType() string     { return "image" }
func (Markdown) BlockType() string  { return "markdown" }
func (u Unknown) BlockType() string { return u.Type }

// Blocks is an ordered rich-text document.
type Blocks []Block

type rawNode struct {
	Type     string          `json:"type"`
	Level    int             `json:"level"`
	Format   string          `json:"format"`
	Language string          `json:"language"`
	Children json.RawMessage `json:"children"`
	Image    *struct {
		URL             string `json:"url"`
		AlternativeText string `json:"alternativeText"`
		Caption         string `json:"caption"`
	} `json:"image"`
	Text string `json:"text"`
	Body string `json:"body"`
}

type rawInline struct {
	Type          string      `json:"type"`
	Text          string      `json:"text"`
	Bold          bool        `json:"bold"`
	Italic        bool        `json:"italic"`
	Underline     bool        `json:"underline"`
	Strikethrough bool        `json:"strikethrough"`
	Code          bool        `json:"code"`
	URL           string      `json:"url"`
	Children      []rawInline `json:"children"`
}

// UnmarshalJSON decodes the CMS block array into typed blocks.
func (b *Blocks) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("content: decode blocks: %w", err)
	}
	out := make(Blocks, 0, len(raws))
	for _, raw := range raws {
		block, err := decodeBlock(raw)
		if err != nil {
			return err
		}
		out = append(out, block)
	}
	*b = out
	return nil
}

func decodeBlock(raw json.RawMessage) (Block, error) {
	var node rawNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("content: decode block: %w", err)
	}
	switch node.Type {
	case "paragraph":
		children, err := decodeInlines(node.Children)
		if err != nil {
			return Unknown{Type: node.Type, Raw: raw}, nil
		}
		return Paragraph{Children: children}, nil
	case "heading":
		children, err := decodeInlines(node.Children)
		if err != nil {
			return Unknown{Type: node.Type, Raw: raw}, nil
		}
		level := node.Level
		if level < 1 || level > 6 {
			level = 2
		}
		return Heading{Level: level, Children: children}, nil
	case "quote":
		children, err := decodeInlines(node.Children)
		if err != nil {
			return Unknown{Type: node.Type, Raw: raw}, nil
		}
		return Quote{Children: children}, nil
	case "list":
		var items []struct {
			Children []rawInline `json:"children"`
		}
		if len(node.Children) > 0 {
			if err := json.Unmarshal(node.Children, &items); err != nil {
				return Unknown{Type: node.Type, Raw: raw}, nil
			}
		}
		list := List{Ordered: node.Format == "ordered", Items: make([][]Inline, 0, len(items))}
		for _, item := range items {
			list.Items = append(list.Items, convertInlines(item.Children))
		}
		return list, nil
	case "code":
		children, err := decodeInlines(node.Children)
		if err != nil {
			return Unknown{Type: node.Type, Raw: raw}, nil
		}
		return Code{Language: node.Language, Text: PlainText(children)}, nil
	case "image":
		if node.Image == nil || node.Image.URL == "" {
			return Unknown{Type: node.Type, Raw: raw}, nil
		}
		return Image{URL: node.Image.URL, Alt: node.Image.AlternativeText, Caption: node.Image.Caption}, nil
	case "markdown":
		return Markdown{Source: firstNonEmpty(node.Body, node.Text)}, nil
	default:
		return Unknown{Type: node.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}

func decodeInlines(raw json.RawMessage) ([]Inline, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var nodes []rawInline
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, err
	}
	return convertInlines(nodes), nil
}

func convertInlines(nodes []rawInline) []Inline {
	out := make([]Inline, 0, len(nodes))
	for _, n := range nodes {
		in := Inline{
			Text:          n.Text,
			Bold:          n.Bold,
			Italic:        n.Italic,
			Underline:     n.Underline,
			Strikethrough: n.Strikethrough,
			Code:          n.Code,
		}
		if n.Type == "link" {
			in.URL = n.URL
			in.Children = convertInlines(n.Children)
		}
		out = append(out, in)
	}
	return out
}

// MarshalJSON encodes blocks as tagged objects.
func (b Blocks) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(b))
	for _, block := range b {
		switch v := block.(type) {
		case Paragraph:
			out = append(out, map[string]any{"type": v.BlockType(), "children": v.Children})
		case Heading:
			out = append(out, map[string]any{"type": v.BlockType(), "level": v.Level, "children": v.Children})
		case Quote:
			out = append(out, map[string]any{"type": v.BlockType(), "children": v.Children})
		case List:
			format := "unordered"
			if v.Ordered {
				format = "ordered"
			}
			out = append(out, map[string]any{"type": v.BlockType(), "format": format, "items": v.Items})
		case Code:
			out = append(out, map[string]any{"type": v.BlockType(), "language": v.Language, "text": v.Text})
		case Image:
			out = append(out, map[string]any{"type": v.BlockType(), "url": v.URL, "alt": v.Alt, "caption": v.Caption})
		case Markdown:
			out = append(out, map[string]any{"type": v.BlockType(), "source": v.Source})
		case Unknown:
			out = append(out, map[string]any{"type": "unknown", "originalType": v.Type, "raw": v.Raw})
		}
	}
	return json.Marshal(out)
}

// PlainText flattens inline runs into their text.
func PlainText(runs []Inline) string {
	var out []byte
	for _, r := range runs {
		out = append(out, r.Text...)
		if len(r.Children) > 0 {
			out = append(out, PlainText(r.Children)...)
		}
	}
	return string(out)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
