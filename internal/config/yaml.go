package config

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (1MB).
var MaxInputSize = 1 << 20

var (
	errEmptyYAML     = errors.New("empty YAML document")
	errYAMLTooLarge  = errors.New("YAML input exceeds maximum size")
	errNilYAMLTarget = errors.New("nil YAML destination")
)

// decodeStrict unmarshals YAML and rejects unknown fields, so a typo in a
// config key fails loudly instead of silently using a default.
func decodeStrict(data []byte, v any) error {
	if len(data) == 0 {
		return errEmptyYAML
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", errYAMLTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return errNilYAMLTarget
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return err
	}
	return nil
}
