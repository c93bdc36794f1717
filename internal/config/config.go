// Package config holds the decoder's read-only run parameters, replacing
// a global StaticData singleton with an explicit value threaded through
// construction.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/neubig/mosesdecoder/pkg/decodeerr"
)

// Config is the full set of feature weights and search-shape parameters
// a Manager needs.
type Config struct {
	MaxStackSize  int     `yaml:"max_stack_size"`
	BeamThreshold float64 `yaml:"beam_threshold"` // log-score, must be <= 0
	MaxDistortion int     `yaml:"max_distortion"` // < 0 disables the reordering limit
	MaxPhraseLen  int     `yaml:"max_phrase_len"`
	NBestEnabled  bool    `yaml:"nbest_enabled"`
	NBestFactor   int     `yaml:"nbest_factor"`
	CubeTopK      int     `yaml:"cube_top_k"`
	CubeSlack     int     `yaml:"cube_slack"`
	DistortionWeight float64 `yaml:"distortion_weight"`

	// StrictStackSize forces PruneToSize to cap a stack at exactly
	// MaxStackSize, breaking ties at the threshold score by hypothesis ID
	// rather than keeping every hypothesis that ties with it. Off by
	// default, matching HypothesisStack::PruneToSize's own tie-inclusive
	// behavior.
	StrictStackSize bool `yaml:"strict_stack_size"`
}

// Default returns sensible defaults: cube-pruning top-k 3, cube slack 0,
// n-best factor 10, distortion reordering disabled.
func Default() Config {
	return Config{
		MaxStackSize:     200,
		BeamThreshold:    -7.0,
		MaxDistortion:    -1,
		MaxPhraseLen:     7,
		NBestEnabled:     false,
		NBestFactor:      10,
		CubeTopK:         3,
		CubeSlack:        0,
		DistortionWeight: -1.0,
	}
}

// Validate rejects impossible parameter combinations (a zero max stack
// size, a positive beam threshold, and similar) with a ConfigError.
func (c Config) Validate() error {
	if c.MaxStackSize <= 0 {
		return &decodeerr.ConfigError{Field: "max_stack_size", Reason: "must be positive"}
	}
	if c.BeamThreshold > 0 {
		return &decodeerr.ConfigError{Field: "beam_threshold", Reason: "must be <= 0"}
	}
	if c.MaxPhraseLen <= 0 {
		return &decodeerr.ConfigError{Field: "max_phrase_len", Reason: "must be positive"}
	}
	if c.NBestFactor <= 0 {
		return &decodeerr.ConfigError{Field: "nbest_factor", Reason: "must be positive"}
	}
	if c.CubeTopK <= 0 {
		return &decodeerr.ConfigError{Field: "cube_top_k", Reason: "must be positive"}
	}
	if c.CubeSlack < 0 {
		return &decodeerr.ConfigError{Field: "cube_slack", Reason: "must be >= 0"}
	}
	return nil
}

// LoadYAML reads a Config from path, starting from Default() so a partial
// file only needs to override the fields it cares about.
func LoadYAML(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &decodeerr.ConfigError{Field: path, Reason: err.Error()}
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, &decodeerr.ConfigError{Field: path, Reason: err.Error()}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
