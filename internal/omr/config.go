package omr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/omr-tools-mcp/internal/detection"
	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// Config holds every tunable of the pipeline. A Config is a value: the
// processor copies it at construction and never changes it afterwards.
type Config struct {
	// ConfidenceThreshold is the fill ratio a bubble must exceed to count as marked.
	ConfidenceThreshold float64 `yaml:"confidence_threshold" json:"confidence_threshold"`

	// MaxFileBytes is the largest accepted sheet file.
	MaxFileBytes int64 `yaml:"max_file_bytes" json:"max_file_bytes"`

	// AllowedExtensions lists accepted file extensions including the dot.
	AllowedExtensions []string `yaml:"allowed_extensions" json:"allowed_extensions"`

	// DefaultChoices is used when a caller does not give number_of_choices.
	DefaultChoices int `yaml:"default_choices" json:"default_choices"`

	// DPI is the resolution PDF pages are rendered at.
	DPI int `yaml:"dpi" json:"dpi"`

	// BatchConcurrency bounds the sheets processed in parallel by ProcessBatch.
	BatchConcurrency int `yaml:"batch_concurrency" json:"batch_concurrency"`

	Preprocess imaging.PreprocessOptions `yaml:"preprocess" json:"preprocess"`
	Filter     detection.FilterOptions   `yaml:"filter" json:"filter"`
	Layout     detection.LayoutOptions   `yaml:"layout" json:"layout"`
	Overlay    imaging.OverlayStyle      `yaml:"overlay" json:"overlay"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.3,
		MaxFileBytes:        DefaultMaxFileBytes,
		AllowedExtensions:   append([]string(nil), DefaultExtensions...),
		DefaultChoices:      4,
		DPI:                 imaging.DefaultDPI,
		BatchConcurrency:    4,
		Preprocess:          imaging.DefaultPreprocessOptions(),
		Filter:              detection.DefaultFilterOptions(),
		Layout:              detection.DefaultLayoutOptions(),
		Overlay:             imaging.DefaultOverlayStyle(),
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Keys missing from the
// file keep their defaults. The result is validated.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML bytes over DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold >= 1 {
		return fmt.Errorf("confidence_threshold must be in [0, 1), got %v", c.ConfidenceThreshold)
	}
	if c.MaxFileBytes <= 0 {
		return fmt.Errorf("max_file_bytes must be positive, got %d", c.MaxFileBytes)
	}
	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("allowed_extensions must not be empty")
	}
	if c.DefaultChoices < 1 || c.DefaultChoices > detection.MaxChoices {
		return fmt.Errorf("default_choices must be between 1 and %d, got %d", detection.MaxChoices, c.DefaultChoices)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("batch_concurrency must be at least 1, got %d", c.BatchConcurrency)
	}

	if c.Preprocess.MaxDimension < 0 {
		return fmt.Errorf("preprocess.max_dimension must not be negative")
	}
	if c.Preprocess.MorphRadius < 0 || c.Preprocess.CloseIterations < 0 || c.Preprocess.OpenIterations < 0 {
		return fmt.Errorf("preprocess morphology settings must not be negative")
	}
	for _, name := range c.Preprocess.Strategies {
		if _, err := imaging.StrategyByName(name, c.Preprocess); err != nil {
			return fmt.Errorf("preprocess.strategies: %w", err)
		}
	}

	if err := c.Filter.Validate(); err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	return nil
}
