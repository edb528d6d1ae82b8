package codegen

import (
	"context"
	"io"
)

// Driver regenerates the bindings described by Plan.
type Driver struct {
	Config Config
	Plan   Plan
	// Stdout and Stderr receive compiler output; nil means the process's own.
	Stdout, Stderr io.Writer
}

// NewDriver returns a driver for the built-in Kudu plan.
func NewDriver(cfg Config) *Driver {
	return &Driver{Config: cfg, Plan: DefaultPlan()}
}

// Run validates the configuration and the plan, then runs every step. No
// compiler is started unless both are valid.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	steps, err := d.Steps()
	if err != nil {
		return nil, err
	}
	if err := ensureDir(d.Config.OutDir, d.Config.DryRun); err != nil {
		return nil, err
	}
	return Pipeline{Steps: steps}.Run(ctx)
}

// Steps resolves the compiler and expands the plan without running anything.
func (d *Driver) Steps() ([]Step, error) {
	cfg, lang, err := d.prepare()
	if err != nil {
		return nil, err
	}
	return d.Plan.Steps(Generator{Config: cfg, Language: lang, Stdout: d.Stdout, Stderr: d.Stderr})
}

// PreviewSteps expands the plan as a dry run would, for display. Unlike
// Steps it needs neither the compiler nor the schema tree.
func (d *Driver) PreviewSteps() ([]Step, error) {
	lang, err := LookupLanguage(d.Config.Language)
	if err != nil {
		return nil, err
	}
	cfg := d.Config
	cfg.DryRun = true
	if cfg.Protoc == "" {
		cfg.Protoc = DefaultProtoc
	}
	return d.Plan.Steps(Generator{Config: cfg, Language: lang})
}

// Check inspects the schema tree against the plan. It needs the base
// directory but never the compiler.
func (d *Driver) Check() ([]Finding, error) {
	if err := d.Config.Validate(); err != nil {
		return nil, err
	}
	lang, err := LookupLanguage(d.Config.Language)
	if err != nil {
		return nil, err
	}
	r := DepResolver{ProtoDir: d.Config.ProtoDir, Include: d.Config.Include}
	return r.Check(d.Plan, lang)
}

func (d *Driver) prepare() (Config, Language, error) {
	cfg := d.Config
	if err := cfg.Validate(); err != nil {
		return Config{}, Language{}, err
	}
	lang, err := LookupLanguage(cfg.Language)
	if err != nil {
		return Config{}, Language{}, err
	}
	if !exists(cfg.ProtoDir) {
		return Config{}, Language{}, newError(ErrKindConfig, "", "schema base directory %s does not exist", cfg.ProtoDir)
	}
	if cfg.DryRun {
		if cfg.Protoc == "" {
			cfg.Protoc = DefaultProtoc
		}
		return cfg, lang, nil
	}
	protoc, err := cfg.resolveProtoc()
	if err != nil {
		return Config{}, Language{}, err
	}
	cfg.Protoc = protoc
	return cfg, lang, nil
}
