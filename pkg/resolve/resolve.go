// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/semver"
)

type (
	// Request groups the candidates. Activation order is the field order and,
	// within a group, slice order.
	Request struct {
		BuiltIns  []Candidate
		Encoded   []Candidate
		Preloaded []Candidate
		Themes    []Candidate
		Configs   []Candidate
	}

	// Resolution is a successful resolution.
	Resolution struct {
		Activated []Candidate
		Warnings  []Warning
	}

	// Warning is a dependency that was accepted without being checked.
	Warning struct {
		Requester  Candidate
		Dependency manifest.Dependency
		Message    string
	}

	// Resolver checks requests.
	Resolver struct {
		engineVersion semver.Version
		logger        *log.Logger
	}

	// Option configures a Resolver.
	Option func(*Resolver)
)

// WithEngineVersion overrides the engine version min_engine_version is
// checked against.
func WithEngineVersion(v semver.Version) Option {
	return func(r *Resolver) { r.engineVersion = v }
}

// WithLogger sets the resolver logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New returns a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{engineVersion: plugin.EngineVersion, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plugins returns the activated plugins in activation order.
func (res *Resolution) Plugins() []*plugin.Plugin {
	var out []*plugin.Plugin
	for _, c := range res.Activated {
		if c.Plugin != nil {
			out = append(out, c.Plugin)
		}
	}
	return out
}

// Resolve validates every supplied candidate and checks its dependencies
// against the full active set. It returns a *plugin.ValidationError for
// malformed identities and a *DependencyError for the first unsatisfied
// dependency in activation order.
func (r *Resolver) Resolve(req Request) (*Resolution, error) {
	all := make([]Candidate, 0, len(req.BuiltIns)+len(req.Encoded)+len(req.Preloaded)+len(req.Themes)+len(req.Configs))
	for _, c := range req.BuiltIns {
		c.BuiltIn = true
		all = append(all, c)
	}
	for _, group := range [][]Candidate{req.Encoded, req.Preloaded, req.Themes, req.Configs} {
		for _, c := range group {
			c.BuiltIn = false
			all = append(all, c)
		}
	}

	byUUID := make(map[manifest.UUID]Candidate, len(all))
	for _, c := range all {
		if !c.BuiltIn {
			if err := validateCandidate(c); err != nil {
				return nil, err
			}
		}
		key := c.UUID.Normalize()
		if prev, dup := byUUID[key]; dup {
			return nil, &plugin.ValidationError{
				ID:          c.ID,
				Namespace:   c.Namespace,
				FieldErrors: []error{fmt.Errorf("%w: %s shared with %s", ErrDuplicateUUID, c.UUID, prev.Label())},
			}
		}
		byUUID[key] = c
	}

	res := &Resolution{Activated: all}
	for _, c := range all {
		if c.BuiltIn {
			continue
		}
		if err := r.checkEngine(c); err != nil {
			return nil, err
		}
		for _, dep := range c.Dependencies {
			if dep.IsModule() {
				w := Warning{Requester: c, Dependency: dep, Message: "module dependencies are not checked"}
				res.Warnings = append(res.Warnings, w)
				r.logger.Warn("skipping module dependency check", "package", c.Label(), "module", dep.ModuleName, "version", dep.Version)
				continue
			}
			if err := checkDependency(c, dep, byUUID); err != nil {
				return nil, err
			}
		}
	}
	for i, c := range res.Activated {
		r.logger.Debug("activated", "position", i, "package", c.Label(), "version", c.Version, "built_in", c.BuiltIn)
	}
	return res, nil
}

func (r *Resolver) checkEngine(c Candidate) error {
	if c.MinEngineVersion == "" {
		return nil
	}
	cmp, err := semver.Compare(r.engineVersion, c.MinEngineVersion)
	if err != nil {
		return &plugin.ValidationError{ID: c.ID, Namespace: c.Namespace, FieldErrors: []error{err}}
	}
	if cmp < 0 {
		return &DependencyError{
			Reason:     EngineTooOld,
			Requester:  c,
			Dependency: manifest.Dependency{Version: c.MinEngineVersion},
			Found:      r.engineVersion,
		}
	}
	return nil
}

func checkDependency(c Candidate, dep manifest.Dependency, byUUID map[manifest.UUID]Candidate) error {
	target, ok := byUUID[dep.UUID.Normalize()]
	if !ok {
		return &DependencyError{Reason: Missing, Requester: c, Dependency: dep}
	}
	compat, err := semver.Check(target.Version, dep.Version)
	if err != nil {
		return &plugin.ValidationError{ID: c.ID, Namespace: c.Namespace, FieldErrors: []error{err}}
	}
	switch compat {
	case semver.TooLow:
		return &DependencyError{Reason: VersionTooLow, Requester: c, Dependency: dep, Found: target.Version}
	case semver.IncompatibleMajor:
		return &DependencyError{Reason: IncompatibleMajor, Requester: c, Dependency: dep, Found: target.Version}
	default:
		return nil
	}
}

func validateCandidate(c Candidate) error {
	var errs []error
	// Config metadata may omit the id.
	if c.Kind != KindConfig || c.ID != "" {
		if ok, fieldErrs := c.ID.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.Kind == KindPlugin {
		if ok, fieldErrs := c.Namespace.IsUserNamespace(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if ok, fieldErrs := c.UUID.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := c.Version.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if c.MinEngineVersion != "" {
		if ok, fieldErrs := c.MinEngineVersion.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	for _, dep := range c.Dependencies {
		if ok, fieldErrs := dep.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return &plugin.ValidationError{ID: c.ID, Namespace: c.Namespace, FieldErrors: errs}
	}
	return nil
}
