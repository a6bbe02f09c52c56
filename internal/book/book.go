package book

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Name is the preprocessor name used in book.toml ([preprocessor.ifdef]).
const Name = "ifdef"

// ============================================================================
// Context
// ============================================================================

// Context is the first element of the array mdBook writes to a
// preprocessor's stdin.
type Context struct {
	Root          string          `json:"root"`
	Config        json.RawMessage `json:"config"`
	Renderer      string          `json:"renderer"`
	MdbookVersion string          `json:"mdbook_version"`
}

// Settings is the [preprocessor.<name>] table of book.toml.
type Settings struct {
	Flags     []string `json:"flags"`
	FlagsFile string   `json:"flags-file"`
}

// Settings returns the preprocessor table for name. A missing table yields
// zero Settings.
func (c *Context) Settings(name string) (Settings, error) {
	if len(c.Config) == 0 {
		return Settings{}, nil
	}
	// Tables of other preprocessors are never decoded.
	var cfg struct {
		Preprocessor map[string]json.RawMessage `json:"preprocessor"`
	}
	if err := json.Unmarshal(c.Config, &cfg); err != nil {
		return Settings{}, fmt.Errorf("decoding book config: %w", err)
	}
	var s Settings
	if raw, ok := cfg.Preprocessor[name]; ok {
		if err := json.Unmarshal(raw, &s); err != nil {
			return Settings{}, fmt.Errorf("decoding [preprocessor.%s]: %w", name, err)
		}
	}
	return s, nil
}

// ============================================================================
// Book
// ============================================================================

// Book is the chapter tree. Fields other than the item list are carried
// through untouched.
type Book struct {
	Sections []Item

	key    string // "sections", or "items" in newer mdBook releases
	fields map[string]json.RawMessage
}

func (b *Book) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &b.fields); err != nil {
		return err
	}
	b.key = "sections"
	if _, ok := b.fields["items"]; ok {
		b.key = "items"
	}
	if raw, ok := b.fields[b.key]; ok {
		if err := json.Unmarshal(raw, &b.Sections); err != nil {
			return fmt.Errorf("decoding %s: %w", b.key, err)
		}
	}
	return nil
}

func (b Book) MarshalJSON() ([]byte, error) {
	key := b.key
	if key == "" {
		key = "sections"
	}
	out := make(map[string]json.RawMessage, len(b.fields)+1)
	for k, v := range b.fields {
		out[k] = v
	}
	sections := b.Sections
	if sections == nil {
		sections = []Item{}
	}
	raw, err := json.Marshal(sections)
	if err != nil {
		return nil, err
	}
	out[key] = raw
	if _, ok := out["__non_exhaustive"]; !ok && key == "sections" {
		out["__non_exhaustive"] = json.RawMessage("null")
	}
	return json.Marshal(out)
}

// Item is one book entry: a chapter, or anything else (separator, part
// title) kept as raw JSON.
type Item struct {
	Chapter *Chapter
	raw     json.RawMessage
}

type chapterItem struct {
	Chapter *Chapter `json:"Chapter"`
}

func (it *Item) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper chapterItem
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return err
		}
		if wrapper.Chapter != nil {
			it.Chapter = wrapper.Chapter
			return nil
		}
	}
	it.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (it Item) MarshalJSON() ([]byte, error) {
	if it.Chapter != nil {
		return json.Marshal(chapterItem{Chapter: it.Chapter})
	}
	if it.raw == nil {
		return []byte("null"), nil
	}
	return it.raw, nil
}

// Chapter is a single page. Name, Content and SubItems are decoded, the
// remaining fields (number, path, source_path, parent_names) round-trip as
// they came in.
type Chapter struct {
	Name     string
	Content  string
	SubItems []Item

	fields map[string]json.RawMessage
}

func (c *Chapter) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &c.fields); err != nil {
		return err
	}
	if err := decodeField(c.fields, "name", &c.Name); err != nil {
		return err
	}
	if err := decodeField(c.fields, "content", &c.Content); err != nil {
		return err
	}
	if err := decodeField(c.fields, "sub_items", &c.SubItems); err != nil {
		return fmt.Errorf("chapter %q: %w", c.Name, err)
	}
	return nil
}

func (c Chapter) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.fields)+3)
	for k, v := range c.fields {
		out[k] = v
	}
	subItems := c.SubItems
	if subItems == nil {
		subItems = []Item{}
	}
	for key, v := range map[string]any{"name": c.Name, "content": c.Content, "sub_items": subItems} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[key] = raw
	}
	return json.Marshal(out)
}

// Path returns the chapter's source path, or "" for draft chapters and for
// a path that is not a string. Diagnostics only.
func (c *Chapter) Path() string {
	var path string
	if err := decodeField(c.fields, "path", &path); err != nil {
		return ""
	}
	return path
}

func decodeField(fields map[string]json.RawMessage, key string, v any) error {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}
