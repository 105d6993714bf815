// Package passage holds the reading material a session is built around.
package passage

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Passage is a reading text split into sections for guided reading.
type Passage struct {
	ID      string  `yaml:"id"`
	Title   string  `yaml:"title"`
	Content string  `yaml:"content"`
	Chunks  []Chunk `yaml:"chunks"`
}

// Chunk is one section of a passage.
type Chunk struct {
	ID      string `yaml:"id"`
	Heading string `yaml:"heading"`
	Text    string `yaml:"text"`
}

//go:embed honeybees.yaml
var defaultPassage []byte

// Default returns the built-in passage.
func Default() (*Passage, error) {
	return Parse(defaultPassage)
}

// Load reads a passage from a YAML file.
func Load(path string) (*Passage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read passage: %w", err)
	}
	return Parse(data)
}

// Parse decodes and normalizes a YAML passage. When Content is omitted it
// is assembled from the chunks; when Chunks are omitted the whole content
// becomes a single chunk.
func Parse(data []byte) (*Passage, error) {
	var p Passage
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse passage: %w", err)
	}

	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)

	for i := range p.Chunks {
		p.Chunks[i].Text = strings.TrimSpace(p.Chunks[i].Text)
		if p.Chunks[i].ID == "" {
			p.Chunks[i].ID = fmt.Sprintf("chunk-%d", i+1)
		}
	}

	switch {
	case p.Content == "" && len(p.Chunks) == 0:
		return nil, fmt.Errorf("parse passage: no content")
	case p.Content == "":
		texts := make([]string, len(p.Chunks))
		for i, c := range p.Chunks {
			texts[i] = c.Text
		}
		p.Content = strings.Join(texts, "\n\n")
	case len(p.Chunks) == 0:
		p.Chunks = []Chunk{{ID: "chunk-1", Heading: p.Title, Text: p.Content}}
	}

	if p.ID == "" {
		p.ID = slug(p.Title)
	}
	return &p, nil
}

// FindChunk returns the index of the first chunk containing excerpt
// (case-insensitive), or -1.
func (p *Passage) FindChunk(excerpt string) int {
	needle := strings.ToLower(strings.TrimSpace(excerpt))
	if needle == "" {
		return -1
	}
	for i, c := range p.Chunks {
		if strings.Contains(strings.ToLower(c.Text), needle) {
			return i
		}
	}
	return -1
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
