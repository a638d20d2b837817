package mailer

import (
	"bytes"
	"errors"
	"fmt"
	texttemplate "text/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

// ErrInvalidFrontmatter is returned for templates with broken frontmatter.
var ErrInvalidFrontmatter = errors.New("mailer: invalid frontmatter")

var (
	markdown = goldmark.New(
		goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type renderResult struct {
	Metadata map[string]any
	HTML     string
	Text     string
}

// render executes the template body against data, converts the markdown to
// sanitized HTML and keeps the rendered markdown as the text alternative.
func render(content []byte, data any) (*renderResult, error) {
	meta, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	tmpl, err := texttemplate.New("email").Parse(body)
	if err != nil {
		return nil, err
	}
	var text bytes.Buffer
	if err := tmpl.Execute(&text, data); err != nil {
		return nil, err
	}

	var html bytes.Buffer
	if err := markdown.Convert(text.Bytes(), &html); err != nil {
		return nil, err
	}

	return &renderResult{
		Metadata: meta,
		HTML:     sanitizer.Sanitize(html.String()),
		Text:     text.String(),
	}, nil
}

// splitFrontmatter separates the YAML frontmatter block from the markdown
// body. Templates without frontmatter are valid.
func splitFrontmatter(content []byte) (map[string]any, string, error) {
	delimiter := []byte("---")
	if !bytes.HasPrefix(content, delimiter) {
		return map[string]any{}, string(content), nil
	}

	rest := bytes.TrimLeft(bytes.TrimPrefix(content, delimiter), "\r\n")
	end := bytes.Index(rest, delimiter)
	if end == -1 {
		return nil, "", fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	meta := make(map[string]any)
	if block := bytes.TrimSpace(rest[:end]); len(block) > 0 {
		if err := yaml.Unmarshal(block, &meta); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	body := bytes.TrimLeft(rest[end+len(delimiter):], "\r\n")
	return meta, string(body), nil
}
