package rules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
)

// Format is the encoding of a rules file.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath detects the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errs.New(errs.ErrCodeConfig,
			"unsupported rules format %q (supported: .toml, .yaml, .yml, .json)", filepath.Ext(path))
	}
}

// PolicySpec overrides individual policy flags of a category. Unset fields
// keep the default.
type PolicySpec struct {
	CanMoveFrom            *bool `json:"can_move_from,omitempty" toml:"can_move_from" yaml:"can_move_from"`
	CanMoveTo              *bool `json:"can_move_to,omitempty" toml:"can_move_to" yaml:"can_move_to"`
	MergeAllBeforeGrouping *bool `json:"merge_all_before_grouping,omitempty" toml:"merge_all_before_grouping" yaml:"merge_all_before_grouping"`
}

// MergeSpec declares one merge rule. Predicates are CEL expressions; empty
// means "match everything".
type MergeSpec struct {
	Name            string `json:"name,omitempty" toml:"name" yaml:"name"`
	Origin          string `json:"origin" toml:"origin" yaml:"origin"`
	Destination     string `json:"destination" toml:"destination" yaml:"destination"`
	OriginWhen      string `json:"origin_when,omitempty" toml:"origin_when" yaml:"origin_when"`
	DestinationWhen string `json:"destination_when,omitempty" toml:"destination_when" yaml:"destination_when"`
}

// OutputSpec declares one output rule.
type OutputSpec struct {
	Category  string  `json:"category" toml:"category" yaml:"category"`
	Template  string  `json:"template" toml:"template" yaml:"template"`
	When      string  `json:"when,omitempty" toml:"when" yaml:"when"`
	MaxSizeMB float64 `json:"max_size_mb,omitempty" toml:"max_size_mb" yaml:"max_size_mb"`
}

// File is the on-disk rule configuration.
type File struct {
	// MaxSizeMB is the default chunk budget for pooled categories.
	MaxSizeMB  float64               `json:"max_size_mb,omitempty" toml:"max_size_mb" yaml:"max_size_mb"`
	Categories map[string]PolicySpec `json:"categories,omitempty" toml:"categories" yaml:"categories"`
	Merge      []MergeSpec           `json:"merge,omitempty" toml:"merge" yaml:"merge"`
	Output     []OutputSpec          `json:"output,omitempty" toml:"output" yaml:"output"`
}

// Load reads and decodes a rules file. The format follows the extension.
func Load(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfig, err, "read rules file %s", path)
	}
	return Parse(data, format)
}

// Parse decodes rules from data.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatJSON:
		err = json.Unmarshal(data, &f)
	default:
		return nil, errs.New(errs.ErrCodeConfig, "unsupported rules format %q", format)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfig, err, "parse %s rules", format)
	}
	return &f, nil
}

// Canonical returns the JSON encoding of f. Equal rule sets encode
// identically, which makes it suitable for cache keys. Values JSON cannot
// represent, such as a NaN size budget, are a configuration error.
func (f *File) Canonical() ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfig, err, "encode rules")
	}
	return data, nil
}
