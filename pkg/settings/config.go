// SPDX-License-Identifier: MPL-2.0

package settings

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/oreui-customizer/oreui/pkg/cueutil"
	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/semver"
)

const (
	// DefaultConfigVersion is the version given to configs that have none.
	DefaultConfigVersion semver.Version = "1.0.0"
	// ConfigProductType is the product_type of config metadata.
	ConfigProductType = "config"

	wrapperKey        = "oreUICustomizerConfig"
	unnamedConfigName = "Unnamed Config"
)

var (
	//go:embed schema.cue
	settingsSchemaSource string

	schema = cueutil.MustCompileSchema([]byte(string(manifest.SchemaSource) + "\n" + settingsSchemaSource + colorKeySchema()))

	unnamedPattern = regexp.MustCompile(`^` + unnamedConfigName + ` (\d+)$`)

	// ErrInvalidConfig is returned for config files that fail to parse.
	ErrInvalidConfig = errors.New("invalid config file")
)

type (
	// Config is a settings file: the settings plus the version that wrote
	// them and optional package metadata.
	Config struct {
		Settings               Settings                         `json:"oreUICustomizerConfig"`
		Version                semver.Version                   `json:"oreUICustomizerVersion"`
		Metadata               *manifest.ConfigMetadata         `json:"metadata,omitempty"`
		MarketplaceDetails     *manifest.MarketplaceDetails     `json:"marketplaceDetails,omitempty"`
		CheckForUpdatesDetails *manifest.CheckForUpdatesDetails `json:"checkForUpdatesDetails,omitempty"`

		// Migrated is set when the file was a legacy flat settings record.
		Migrated bool `json:"-"`
	}

	// Session carries state shared by the configs loaded in one process run,
	// such as the unnamed config counter.
	Session struct {
		mu             sync.Mutex
		highestUnnamed int
		newUUID        func() manifest.UUID
	}

	// SessionOption configures a Session.
	SessionOption func(*Session)

	legacyDocument struct {
		Settings
		FormatVersion string `json:"format_version,omitempty"`
	}
)

func colorKeySchema() string {
	quoted := make([]string, len(colorKeys))
	for i, k := range colorKeys {
		quoted[i] = strconv.Quote(k)
	}
	return "\n#ColorKey: " + strings.Join(quoted, " | ") + "\n"
}

// WithUUIDSource replaces the random UUID source used for unnamed configs.
func WithUUIDSource(fn func() manifest.UUID) SessionOption {
	return func(s *Session) { s.newUUID = fn }
}

// NewSession returns a Session with a zero unnamed config counter.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{newUUID: manifest.NewUUID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewConfig returns a config with default settings and filled metadata.
func (s *Session) NewConfig() *Config {
	c := &Config{Settings: Defaults(), Version: plugin.EngineVersion, Metadata: &manifest.ConfigMetadata{}}
	s.fillMetadata(c.Metadata)
	return c
}

// Load parses a settings file. A document without the oreUICustomizerConfig
// wrapper is a legacy flat record and is upgraded: its fields map onto the
// current settings and everything unspecified takes its default. Missing
// metadata fields are filled in either case.
func (s *Session) Load(data []byte, filename string) (*Config, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, filename, err)
	}

	cfg := &Config{Settings: Defaults()}
	if _, wrapped := top[wrapperKey]; wrapped {
		if err := cueutil.DecodeJSONInto(schema, data, "#Config", cfg, cueutil.WithFilename(filename)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	} else {
		legacy := legacyDocument{Settings: Defaults()}
		if err := cueutil.DecodeJSONInto(schema, data, "#LegacyConfig", &legacy, cueutil.WithFilename(filename)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		cfg.Settings = legacy.Settings
		cfg.Version = plugin.EngineVersion
		cfg.Migrated = true
	}

	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if _, err := manifest.NewUpdateSource(cfg.MarketplaceDetails, cfg.CheckForUpdatesDetails); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, filename, err)
	}
	if cfg.Metadata == nil {
		cfg.Metadata = &manifest.ConfigMetadata{}
	}
	if ok, errs := cfg.Metadata.IsValid(); !ok {
		return nil, fmt.Errorf("%w: %s: metadata: %w", ErrInvalidConfig, filename, errors.Join(errs...))
	}
	s.fillMetadata(cfg.Metadata)
	return cfg, nil
}

// fillMetadata applies metadata defaults. Names of the form
// "Unnamed Config N" raise the counter so later unnamed configs do not
// collide with loaded ones.
func (s *Session) fillMetadata(m *manifest.ConfigMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if match := unnamedPattern.FindStringSubmatch(m.Name); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil && n > s.highestUnnamed {
			s.highestUnnamed = n
		}
	}
	if m.Name == "" {
		s.highestUnnamed++
		m.Name = fmt.Sprintf("%s %d", unnamedConfigName, s.highestUnnamed)
	}
	if m.UUID == "" {
		m.UUID = s.newUUID()
	}
	if m.Version == "" {
		m.Version = DefaultConfigVersion
	}
	if m.ProductType == "" {
		m.ProductType = ConfigProductType
	}
}

// UpdateSource returns the config's folded update source.
func (c *Config) UpdateSource() manifest.UpdateSource {
	src, err := manifest.NewUpdateSource(c.MarketplaceDetails, c.CheckForUpdatesDetails)
	if err != nil {
		return manifest.NoUpdateSource{}
	}
	return src
}

// Export serializes the config. active lists the details of every active
// plugin, encoded and preloaded. Unless the settings ask to bundle encoded
// plugin data, the payloads are dropped and only the details are written.
func (c *Config) Export(active []manifest.PluginDetails) ([]byte, error) {
	out := *c
	out.Version = plugin.EngineVersion
	out.Settings.ActivePluginsDetails = append([]manifest.PluginDetails(nil), active...)
	if !out.Settings.BundleEncodedPluginDataInConfigFile {
		out.Settings.Plugins = nil
	}
	return json.MarshalIndent(&out, "", "    ")
}
