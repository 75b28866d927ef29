package instrument

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/harrison/mchat/internal/models"
)

// YAMLParser decodes instruments written as a single YAML document.
type YAMLParser struct{}

// NewYAMLParser creates a new YAML instrument parser.
func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

// yamlInstrument is the document root. Rule sets only exist to hold
// anchors that items alias, so their content is discarded after decoding.
type yamlInstrument struct {
	Instrument struct {
		models.Instrument `yaml:",inline"`
		RuleSets          map[string][]models.Rule `yaml:"rule_sets,omitempty"`
	} `yaml:"instrument"`
}

// Parse reads a YAML instrument.
func (p *YAMLParser) Parse(r io.Reader) (*models.Instrument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	var doc yamlInstrument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	in := doc.Instrument.Instrument
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("no items found under instrument.items")
	}
	for i, def := range in.Items {
		if def == nil {
			return nil, fmt.Errorf("item %d is empty", i+1)
		}
	}
	return &in, nil
}
