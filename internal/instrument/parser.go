// Package instrument loads questionnaire item definitions: the built-in
// twenty-item follow-up interview and author-supplied files in YAML or
// Markdown.
package instrument

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/mchat/internal/models"
	"github.com/harrison/mchat/internal/screening"
)

// Format represents the format of an instrument file
type Format int

const (
	// FormatUnknown represents an unknown or unsupported file format
	FormatUnknown Format = iota
	// FormatMarkdown represents a Markdown (.md, .markdown) instrument file
	FormatMarkdown
	// FormatYAML represents a YAML (.yaml, .yml) instrument file
	FormatYAML
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Parser is the interface that all instrument parsers must implement.
// Parsers decode only; validation happens in Load.
type Parser interface {
	Parse(r io.Reader) (*models.Instrument, error)
}

// DetectFormat detects the instrument format from the file extension:
//   - .md, .markdown -> FormatMarkdown
//   - .yaml, .yml -> FormatYAML
//   - all others -> FormatUnknown
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// NewParser creates a parser for the specified format.
func NewParser(format Format) (Parser, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownParser(), nil
	case FormatYAML:
		return NewYAMLParser(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %v", format)
	}
}

// Load parses r in the given format and validates every item.
func Load(r io.Reader, format Format) (*models.Instrument, error) {
	parser, err := NewParser(format)
	if err != nil {
		return nil, err
	}
	in, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse instrument: %w", err)
	}
	if err := screening.ValidateInstrument(in.Items); err != nil {
		return nil, err
	}
	return in, nil
}

// LoadFile detects the format of path, parses it and validates every item.
// A definition that fails validation is never returned.
func LoadFile(path string) (*models.Instrument, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unknown file format: %s (supported: .md, .markdown, .yaml, .yml)", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	in, err := Load(file, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	in.Source = absPath
	return in, nil
}

// Resolve returns the instrument at path, or the built-in one when path is empty.
func Resolve(path string) (*models.Instrument, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}
