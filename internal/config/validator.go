package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	naverrors "github.com/standardbeagle/navpatch/internal/errors"
	"github.com/standardbeagle/navpatch/internal/patch"
)

// Validator validates configuration and sets defaults for unset fields
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies defaults.
// Every invalid field is reported: one ConfigError on its own, several as a
// MultiError of ConfigErrors.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	v.setDefaults(cfg)

	var errs []error
	if cfg.Project.Root == "" {
		errs = append(errs, naverrors.NewConfigError("project.root", "", errors.New("project root cannot be empty")))
	}
	errs = append(errs, v.validateHostConfig(&cfg.Host)...)
	errs = append(errs, v.validateResolverConfig(&cfg.Resolver)...)
	errs = append(errs, v.validateOutputConfig(&cfg.Output)...)
	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, naverrors.NewConfigError("watch.debounce_ms", fmt.Sprint(cfg.Watch.DebounceMs),
			errors.New("debounce cannot be negative")))
	}
	for _, p := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, naverrors.NewConfigError("include/exclude", p, errors.New("invalid glob pattern")))
		}
	}
	return naverrors.NewMultiError(errs).ErrorOrNil()
}

func (v *Validator) validateHostConfig(host *Host) []error {
	var errs []error
	if host.Profile != "" {
		if _, err := patch.ParseProfileKind(host.Profile); err != nil {
			errs = append(errs, naverrors.NewConfigError("host.profile", host.Profile, err))
		}
	}
	if host.Version != "" {
		if _, err := patch.SelectProfile(host.Version); err != nil {
			errs = append(errs, naverrors.NewConfigError("host.version", host.Version, err))
		}
	}
	return errs
}

func (v *Validator) validateResolverConfig(r *Resolver) []error {
	var errs []error
	switch r.Probe {
	case ProbeAuto, ProbeStatic, ProbeHost:
	default:
		errs = append(errs, naverrors.NewConfigError("resolver.probe", r.Probe,
			fmt.Errorf("want one of %s", strings.Join([]string{ProbeAuto, ProbeStatic, ProbeHost}, ", "))))
	}
	for _, g := range r.Globals {
		if strings.TrimSpace(g) == "" {
			errs = append(errs, naverrors.NewConfigError("resolver.globals", g, errors.New("global name cannot be empty")))
		}
	}
	return errs
}

func (v *Validator) validateOutputConfig(o *Output) []error {
	var errs []error
	switch o.Format {
	case FormatText, FormatJSON, FormatCompact:
	default:
		errs = append(errs, naverrors.NewConfigError("output.format", o.Format,
			fmt.Errorf("want one of %s", strings.Join([]string{FormatText, FormatJSON, FormatCompact}, ", "))))
	}
	if o.MaxDepth < 0 {
		errs = append(errs, naverrors.NewConfigError("output.max_depth", fmt.Sprint(o.MaxDepth),
			errors.New("max depth cannot be negative")))
	}
	return errs
}

func (v *Validator) setDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Resolver.Probe == "" {
		cfg.Resolver.Probe = ProbeAuto
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatText
	}
	cfg.Resolver.Probe = strings.ToLower(cfg.Resolver.Probe)
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
