// SPDX-License-Identifier: MPL-2.0

package customizer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/oreui-customizer/oreui/pkg/builtin"
	"github.com/oreui-customizer/oreui/pkg/decode"
	"github.com/oreui-customizer/oreui/pkg/engine"
	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/resolve"
	"github.com/oreui-customizer/oreui/pkg/settings"
)

// ErrNoSettings is returned for requests without settings.
var ErrNoSettings = errors.New("no settings")

type (
	// Request is everything a customization pass reads.
	Request struct {
		// Archive is the base archive.
		Archive []byte
		// Settings drive the built-in plugins and carry the encoded and
		// preloaded plugins.
		Settings *settings.Settings
		// Encoded are extra encoded plugins, activated after the ones in
		// Settings.
		Encoded []manifest.EncodedPluginData
		// Themes join resolution after the plugins.
		Themes []*manifest.ThemeManifest
		// Configs join resolution last.
		Configs []*manifest.ConfigMetadata
		// Catalog supplies payloads for activePluginsDetails entries that
		// the settings do not bundle.
		Catalog *Catalog
	}

	// Plan is a resolved request.
	Plan struct {
		Resolution *resolve.Resolution
		// Unavailable lists active plugin details no payload was found for.
		Unavailable []manifest.PluginDetails
	}

	// Result is a completed pass.
	Result struct {
		Archive []byte
		Plan    *Plan
		Stats   engine.Stats
	}

	// Customizer runs customization passes.
	Customizer struct {
		decoder  *decode.Decoder
		resolver *resolve.Resolver
		engine   *engine.Engine
		logger   *log.Logger
	}

	// Option configures a Customizer.
	Option func(*Customizer)
)

// WithLogger sets the logger shared by the default decoder, resolver and
// engine.
func WithLogger(l *log.Logger) Option {
	return func(c *Customizer) { c.logger = l }
}

// WithDecoder replaces the plugin decoder.
func WithDecoder(d *decode.Decoder) Option {
	return func(c *Customizer) { c.decoder = d }
}

// WithResolver replaces the resolver.
func WithResolver(r *resolve.Resolver) Option {
	return func(c *Customizer) { c.resolver = r }
}

// New returns a Customizer.
func New(opts ...Option) *Customizer {
	c := &Customizer{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(c)
	}
	if c.decoder == nil {
		c.decoder = decode.New(decode.WithLogger(c.logger))
	}
	if c.resolver == nil {
		c.resolver = resolve.New(resolve.WithLogger(c.logger))
	}
	c.engine = engine.New(engine.WithLogger(c.logger))
	return c
}

// Plan decodes and resolves every package of req without touching the
// archive.
func (c *Customizer) Plan(ctx context.Context, req Request) (*Plan, error) {
	if req.Settings == nil {
		return nil, ErrNoSettings
	}
	s := req.Settings
	plan := &Plan{}

	var rr resolve.Request
	for _, p := range builtin.Plugins(s) {
		rr.BuiltIns = append(rr.BuiltIns, resolve.FromPlugin(p))
	}

	encoded := append(append([]manifest.EncodedPluginData(nil), s.Plugins...), req.Encoded...)
	seen := make(map[manifest.UUID]bool, len(encoded)+len(s.PreloadedPlugins))
	for _, e := range encoded {
		seen[e.UUID.Normalize()] = true
	}
	for _, p := range s.PreloadedPlugins {
		seen[p.UUID.Normalize()] = true
	}
	for _, d := range s.ActivePluginsDetails {
		if seen[d.UUID.Normalize()] {
			continue
		}
		entry, ok := req.Catalog.Lookup(d.UUID)
		if !ok {
			c.logger.Warn("no payload for active plugin", "plugin", string(d.Namespace)+":"+string(d.ID), "uuid", d.UUID)
			plan.Unavailable = append(plan.Unavailable, d)
			continue
		}
		if entry.Encoded.Version != d.Version {
			c.logger.Warn("catalog plugin version differs from settings", "plugin", string(d.Namespace)+":"+string(d.ID), "want", d.Version, "found", entry.Encoded.Version, "path", entry.Path)
		}
		seen[d.UUID.Normalize()] = true
		encoded = append(encoded, *entry.Encoded)
	}

	for _, e := range encoded {
		p, err := c.decoder.Decode(ctx, e)
		if err != nil {
			return nil, err
		}
		rr.Encoded = append(rr.Encoded, resolve.FromPlugin(p))
	}
	for i, p := range s.PreloadedPlugins {
		if p == nil {
			return nil, &plugin.ValidationError{FieldErrors: []error{fmt.Errorf("preloaded plugin %d is nil", i)}}
		}
		// Only the engine registers built-ins.
		user := *p
		user.BuiltIn = false
		if err := user.Validate(); err != nil {
			return nil, err
		}
		rr.Preloaded = append(rr.Preloaded, resolve.FromPlugin(&user))
	}
	for _, t := range req.Themes {
		rr.Themes = append(rr.Themes, resolve.FromTheme(t))
	}
	for _, m := range req.Configs {
		rr.Configs = append(rr.Configs, resolve.FromConfig(m))
	}

	res, err := c.resolver.Resolve(rr)
	if err != nil {
		return nil, err
	}
	plan.Resolution = res
	return plan, nil
}

// Apply plans req and runs the activated plugins over its archive. No
// archive is returned on failure.
func (c *Customizer) Apply(ctx context.Context, req Request) (*Result, error) {
	plan, err := c.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	out, err := c.engine.Apply(ctx, req.Archive, plan.Resolution.Plugins())
	if err != nil {
		return nil, err
	}
	c.logger.Info("customized archive", "packages", len(plan.Resolution.Activated), "bytes", len(out.Archive))
	return &Result{Archive: out.Archive, Plan: plan, Stats: out.Stats}, nil
}

// ActiveDetails returns the details of every activated user plugin, encoded
// and preloaded, in activation order.
func (p *Plan) ActiveDetails() []manifest.PluginDetails {
	var out []manifest.PluginDetails
	for _, pl := range p.Resolution.Plugins() {
		if !pl.BuiltIn {
			out = append(out, pl.PluginDetails)
		}
	}
	return out
}

// Plugins returns the activated plugins in activation order.
func (p *Plan) Plugins() []*plugin.Plugin {
	return p.Resolution.Plugins()
}

// Describe is a one-line summary of an activated package.
func Describe(cand resolve.Candidate) string {
	return fmt.Sprintf("%s %s (%s)", cand.Label(), cand.Version, cand.Kind)
}
