package cms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/puzzo-dev/sitefront/internal/catalog"
	"github.com/puzzo-dev/sitefront/internal/content"
)

var errMissingData = errors.New("cms: response has no data")

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func decodeData(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("cms: decode envelope: %w", err)
	}
	if isEmptyJSON(env.Data) {
		return nil, errMissingData
	}
	return env.Data, nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// flatten spreads a v4 entry's attributes alongside its id. Entries without an attributes
// object are returned as-is.
func flatten(raw json.RawMessage) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	attrs, ok := fields["attributes"]
	if !ok || isEmptyJSON(attrs) {
		return raw, nil
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(attrs, &merged); err != nil {
		return nil, err
	}
	if id, ok := fields["id"]; ok {
		merged["id"] = id
	}
	return json.Marshal(merged)
}

// entries normalises an array, a single object or a relation wrapper ({"data": ...}) into a
// list of flattened objects.
func entries(raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if isEmptyJSON(raw) {
		return nil, nil
	}
	var list []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		if inner, ok := fields["data"]; ok && len(fields) == 1 {
			return entries(inner)
		}
		list = []json.RawMessage{raw}
	default:
		return nil, fmt.Errorf("cms: unexpected json %q", truncate(string(raw), 32))
	}
	out := make([]json.RawMessage, 0, len(list))
	for _, item := range list {
		flat, err := flatten(item)
		if err != nil {
			return nil, err
		}
		out = append(out, flat)
	}
	return out, nil
}

// mediaURL reads a media field that is either a plain string or an uploaded file object.
func mediaURL(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if isEmptyJSON(raw) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		_ = json.Unmarshal(raw, &s)
		return s
	}
	list, err := entries(raw)
	if err != nil || len(list) == 0 {
		return ""
	}
	var media struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(list[0], &media); err != nil {
		return ""
	}
	return media.URL
}

// stringOrList reads either a comma separated string or an array of strings.
func stringOrList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if isEmptyJSON(raw) {
		return nil
	}
	var list []string
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil
		}
	} else {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		list = strings.Split(s, ",")
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if isEmptyJSON(raw) {
		return ""
	}
	return strings.Trim(string(raw), `"`)
}

type rawSiteConfig struct {
	ID           int                  `json:"id"`
	SiteName     string               `json:"siteName"`
	Tagline      string               `json:"tagline"`
	Logo         json.RawMessage      `json:"logo"`
	ContactEmail string               `json:"contactEmail"`
	ContactPhone string               `json:"contactPhone"`
	Address      string               `json:"address"`
	Social       []content.SocialLink `json:"social"`
	Features     map[string]bool      `json:"features"`
	ERPBaseURL   string               `json:"erpBaseUrl"`
	ERPAPIKey    string               `json:"erpApiKey"`
	ERPAPISecret string               `json:"erpApiSecret"`
}

func mapSiteConfig(data json.RawMessage) (*content.SiteConfig, error) {
	list, err := entries(data)
	if err != nil {
		return nil, fmt.Errorf("cms: decode site config: %w", err)
	}
	if len(list) == 0 {
		return nil, errMissingData
	}
	var raw rawSiteConfig
	if err := json.Unmarshal(list[0], &raw); err != nil {
		return nil, fmt.Errorf("cms: decode site config: %w", err)
	}
	cfg := &content.SiteConfig{
		ID:           raw.ID,
		SiteName:     raw.SiteName,
		Tagline:      raw.Tagline,
		Logo:         mediaURL(raw.Logo),
		ContactEmail: raw.ContactEmail,
		ContactPhone: raw.ContactPhone,
		Address:      raw.Address,
		Social:       raw.Social,
		Features:     raw.Features,
	}
	if raw.ERPBaseURL != "" {
		cfg.ERP = &content.ERPCredentials{
			BaseURL:   raw.ERPBaseURL,
			APIKey:    raw.ERPAPIKey,
			APISecret: raw.ERPAPISecret,
		}
	}
	return cfg, nil
}

type rawNavItem struct {
	ID             int             `json:"id"`
	Label          string          `json:"label"`
	Title          string          `json:"title"`
	TranslationKey string          `json:"translationKey"`
	URL            string          `json:"url"`
	Path           string          `json:"path"`
	Order          int             `json:"order"`
	IsButton       bool            `json:"isButton"`
	Visible        *bool           `json:"visible"`
	Children       json.RawMessage `json:"children"`
}

func mapNavigation(data json.RawMessage) ([]catalog.NavItem, error) {
	list, err := entries(data)
	if err != nil {
		return nil, fmt.Errorf("cms: decode navigation: %w", err)
	}
	items := make([]catalog.NavItem, 0, len(list))
	for _, entry := range list {
		item, err := mapNavItem(entry)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func mapNavItem(entry json.RawMessage) (catalog.NavItem, error) {
	var raw rawNavItem
	if err := json.Unmarshal(entry, &raw); err != nil {
		return catalog.NavItem{}, fmt.Errorf("cms: decode navigation item: %w", err)
	}
	item := catalog.NavItem{
		ID:             raw.ID,
		Label:          firstNonEmpty(raw.Label, raw.Title),
		TranslationKey: raw.TranslationKey,
		URL:            firstNonEmpty(raw.URL, raw.Path),
		Order:          raw.Order,
		IsButton:       raw.IsButton,
		Visible:        raw.Visible,
	}
	children, err := entries(raw.Children)
	if err != nil {
		return catalog.NavItem{}, fmt.Errorf("cms: decode navigation children: %w", err)
	}
	for _, c := range children {
		child, err := mapNavItem(c)
		if err != nil {
			return catalog.NavItem{}, err
		}
		item.Children = append(item.Children, child)
	}
	return item, nil
}

type rawSEO struct {
	MetaTitle       string          `json:"metaTitle"`
	MetaDescription string          `json:"metaDescription"`
	Keywords        json.RawMessage `json:"keywords"`
	MetaImage       json.RawMessage `json:"metaImage"`
}

type rawPage struct {
	ID              int             `json:"id"`
	Slug            string          `json:"slug"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	MetaTitle       string          `json:"metaTitle"`
	MetaDescription string          `json:"metaDescription"`
	Keywords        json.RawMessage `json:"keywords"`
	OGImage         json.RawMessage `json:"ogImage"`
	SEO             *rawSEO         `json:"seo"`
	Content         json.RawMessage `json:"content"`
	Sections        json.RawMessage `json:"sections"`
}

type rawSection struct {
	Component       string                     `json:"__component"`
	Type            string                     `json:"type"`
	ID              json.RawMessage            `json:"id"`
	Title           string                     `json:"title"`
	Subtitle        string                     `json:"subtitle"`
	Content         json.RawMessage            `json:"content"`
	BackgroundColor string                     `json:"backgroundColor"`
	TextColor       string                     `json:"textColor"`
	Settings        map[string]json.RawMessage `json:"settings"`
	Items           json.RawMessage            `json:"items"`
}

type rawItem struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Image       json.RawMessage `json:"image"`
	URL         string          `json:"url"`
	Link        string          `json:"link"`
}

func mapPage(data json.RawMessage) (*content.PageContent, error) {
	list, err := entries(data)
	if err != nil {
		return nil, fmt.Errorf("cms: decode page: %w", err)
	}
	if len(list) == 0 {
		return nil, errMissingData
	}
	var raw rawPage
	if err := json.Unmarshal(list[0], &raw); err != nil {
		return nil, fmt.Errorf("cms: decode page: %w", err)
	}

	page := &content.PageContent{
		ID:              strconv.Itoa(raw.ID),
		Slug:            raw.Slug,
		Title:           raw.Title,
		Description:     raw.Description,
		MetaTitle:       raw.MetaTitle,
		MetaDescription: raw.MetaDescription,
		Keywords:        stringOrList(raw.Keywords),
		OGImage:         mediaURL(raw.OGImage),
		Sections:        []content.PageSection{},
	}
	if raw.SEO != nil {
		page.MetaTitle = firstNonEmpty(page.MetaTitle, raw.SEO.MetaTitle)
		page.MetaDescription = firstNonEmpty(page.MetaDescription, raw.SEO.MetaDescription)
		if len(page.Keywords) == 0 {
			page.Keywords = stringOrList(raw.SEO.Keywords)
		}
		page.OGImage = firstNonEmpty(page.OGImage, mediaURL(raw.SEO.MetaImage))
	}

	sections, err := entries(raw.Sections)
	if err != nil {
		return nil, fmt.Errorf("cms: decode page sections: %w", err)
	}
	for i, s := range sections {
		section, err := mapSection(s, i)
		if err != nil {
			return nil, err
		}
		page.Sections = append(page.Sections, section)
	}

	// Single-body documents carry their text on the page itself.
	if len(page.Sections) == 0 && !isEmptyJSON(raw.Content) {
		section := content.PageSection{ID: "content", Type: content.SectionCustom}
		if err := assignContent(&section, raw.Content); err != nil {
			return nil, err
		}
		page.Sections = append(page.Sections, section)
	}
	return page, nil
}

func mapSection(entry json.RawMessage, index int) (content.PageSection, error) {
	var raw rawSection
	if err := json.Unmarshal(entry, &raw); err != nil {
		return content.PageSection{}, fmt.Errorf("cms: decode section: %w", err)
	}
	typeName := raw.Type
	if raw.Component != "" {
		typeName = raw.Component
		if dot := strings.LastIndex(typeName, "."); dot >= 0 {
			typeName = typeName[dot+1:]
		}
	}
	sectionType := content.ParseSectionType(typeName)

	id := rawID(raw.ID)
	if id == "" {
		id = strconv.Itoa(index + 1)
	}
	section := content.PageSection{
		ID:              string(sectionType) + "-" + id,
		Type:            sectionType,
		Title:           raw.Title,
		Subtitle:        raw.Subtitle,
		BackgroundColor: raw.BackgroundColor,
		TextColor:       raw.TextColor,
	}
	if err := assignContent(&section, raw.Content); err != nil {
		return content.PageSection{}, err
	}
	settings, err := mapSettings(raw.Settings)
	if err != nil {
		return content.PageSection{}, err
	}
	section.Settings = settings

	items, err := entries(raw.Items)
	if err != nil {
		return content.PageSection{}, fmt.Errorf("cms: decode section items: %w", err)
	}
	for i, it := range items {
		var ri rawItem
		if err := json.Unmarshal(it, &ri); err != nil {
			return content.PageSection{}, fmt.Errorf("cms: decode section item: %w", err)
		}
		itemID := rawID(ri.ID)
		if itemID == "" {
			itemID = strconv.Itoa(i + 1)
		}
		section.Items = append(section.Items, content.SectionItem{
			ID:          itemID,
			Title:       firstNonEmpty(ri.Title, ri.Name),
			Description: ri.Description,
			Icon:        ri.Icon,
			Image:       mediaURL(ri.Image),
			URL:         firstNonEmpty(ri.URL, ri.Link),
		})
	}
	return section, nil
}

// assignContent stores a string body as markdown/HTML text and an array as rich-text blocks.
func assignContent(section *content.PageSection, raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if isEmptyJSON(raw) {
		return nil
	}
	switch raw[0] {
	case '"':
		return json.Unmarshal(raw, &section.Content)
	case '[':
		return json.Unmarshal(raw, &section.Blocks)
	default:
		return fmt.Errorf("cms: unsupported section content %q", truncate(string(raw), 32))
	}
}

func mapSettings(raw map[string]json.RawMessage) (content.SectionSettings, error) {
	var settings content.SectionSettings
	for key, value := range raw {
		var err error
		switch key {
		case "animation":
			if !isEmptyJSON(value) {
				settings.Animation = &content.Animation{}
				err = json.Unmarshal(value, settings.Animation)
			}
		case "layout":
			err = json.Unmarshal(value, &settings.Layout)
		case "columns":
			err = json.Unmarshal(value, &settings.Columns)
		case "gap":
			err = json.Unmarshal(value, &settings.Gap)
		case "buttons":
			err = json.Unmarshal(value, &settings.Buttons)
		default:
			var v any
			if err = json.Unmarshal(value, &v); err == nil {
				if settings.Extra == nil {
					settings.Extra = map[string]any{}
				}
				settings.Extra[key] = v
			}
		}
		if err != nil {
			return content.SectionSettings{}, fmt.Errorf("cms: decode setting %q: %w", key, err)
		}
	}
	return settings, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
