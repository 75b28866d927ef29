package instrument

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/harrison/mchat/internal/models"
)

// MarkdownParser reads instruments authored as Markdown documents:
//
//	---
//	name: Custom follow-up
//	version: "1"
//	---
//
//	## Item 2: Have you ever wondered if your child might be deaf?
//
//	```yaml
//	risk_answer: "yes"
//	groups: [...]
//	"yes": {...}
//	"no": {verdict: pass}
//	```
//
// Each level-2 "Item N: question" heading starts an item; the first fenced
// yaml block under it holds the rest of the definition. Prose between is
// ignored, so the same file doubles as reviewer documentation.
type MarkdownParser struct {
	markdown goldmark.Markdown
}

var itemHeadingRegex = regexp.MustCompile(`^Item\s+(\d+):\s*(.+)$`)

// NewMarkdownParser creates a new Markdown instrument parser.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		markdown: goldmark.New(),
	}
}

// frontmatterConfig is the optional YAML frontmatter of a Markdown instrument.
type frontmatterConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Parse reads a Markdown instrument.
func (p *MarkdownParser) Parse(r io.Reader) (*models.Instrument, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	in := &models.Instrument{}
	content, frontmatter := extractFrontmatter(content)
	if frontmatter != nil {
		var fm frontmatterConfig
		if err := yaml.Unmarshal(frontmatter, &fm); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
		in.Name = fm.Name
		in.Version = fm.Version
	}

	doc := p.markdown.Parser().Parse(text.NewReader(content))
	items, err := extractItems(doc, content)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no \"## Item N: question\" headings found")
	}
	in.Items = items
	return in, nil
}

// extractItems walks the document's top-level blocks pairing item headings
// with the yaml block that follows them.
func extractItems(doc ast.Node, source []byte) ([]*models.ItemDefinition, error) {
	var (
		items   []*models.ItemDefinition
		current *models.ItemDefinition
		hasBody bool
	)

	finish := func() error {
		if current == nil {
			return nil
		}
		if !hasBody {
			return fmt.Errorf("item %d: missing yaml definition block", current.ID)
		}
		items = append(items, current)
		current = nil
		return nil
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level != 2 {
				continue
			}
			if err := finish(); err != nil {
				return nil, err
			}
			matches := itemHeadingRegex.FindStringSubmatch(strings.TrimSpace(extractText(node, source)))
			if matches == nil {
				continue
			}
			id, err := strconv.Atoi(matches[1])
			if err != nil {
				return nil, fmt.Errorf("invalid item number %q: %w", matches[1], err)
			}
			current = &models.ItemDefinition{ID: id, Question: strings.TrimSpace(matches[2])}
			hasBody = false

		case *ast.FencedCodeBlock:
			if current == nil || hasBody || string(node.Language(source)) != "yaml" {
				continue
			}
			if err := decodeItemBlock(current, codeBlockContent(node, source)); err != nil {
				return nil, err
			}
			hasBody = true
		}
	}

	if err := finish(); err != nil {
		return nil, err
	}
	return items, nil
}

// decodeItemBlock fills def from a yaml block. The heading's id and
// question win over anything the block repeats.
func decodeItemBlock(def *models.ItemDefinition, block []byte) error {
	id, question := def.ID, def.Question
	if err := yaml.Unmarshal(block, def); err != nil {
		return fmt.Errorf("item %d: failed to parse yaml block: %w", id, err)
	}
	def.ID = id
	def.Question = question
	return nil
}

func codeBlockContent(node *ast.FencedCodeBlock, source []byte) []byte {
	var buf bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}

// extractText extracts plain text from an AST node
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.String()
}

// extractFrontmatter splits leading "---" delimited YAML from the body.
func extractFrontmatter(content []byte) ([]byte, []byte) {
	lines := bytes.Split(content, []byte("\n"))
	if len(lines) < 3 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return content, nil
	}
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			return bytes.Join(lines[i+1:], []byte("\n")), bytes.Join(lines[1:i], []byte("\n"))
		}
	}
	return content, nil
}
