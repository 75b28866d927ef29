package instrument

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/harrison/mchat/internal/models"
)

//go:embed mchat-rf.yaml
var builtinYAML []byte

// Default returns a fresh copy of the built-in twenty-item instrument.
// It is decoded and validated on every call, so callers may mutate it.
func Default() (*models.Instrument, error) {
	in, err := Load(bytes.NewReader(builtinYAML), FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("built-in instrument: %w", err)
	}
	return in, nil
}

// MustDefault is Default for callers that treat a broken build as fatal.
func MustDefault() *models.Instrument {
	in, err := Default()
	if err != nil {
		panic(err)
	}
	return in
}
