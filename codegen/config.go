package codegen

import (
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Default values for the optional settings.
const (
	DefaultProtoc   = "protoc"
	DefaultOutDir   = "src"
	DefaultLanguage = "rust"
)

// Config holds everything the driver needs to run; nothing is read from
// the environment after LoadConfig returns.
type Config struct {
	// Protoc is the compiler to run. A bare name is looked up on PATH.
	Protoc string `mapstructure:"protoc" yaml:"protoc"`
	// ProtoDir is the root of the Kudu schema tree. Required.
	ProtoDir string `mapstructure:"proto_dir" yaml:"proto_dir"`
	// Include lists extra import roots, e.g. the protobuf well-known types.
	Include []string `mapstructure:"include" yaml:"include"`
	// Plugin optionally points at protoc-gen-<language>.
	Plugin   string `mapstructure:"plugin" yaml:"plugin"`
	OutDir   string `mapstructure:"out_dir" yaml:"out_dir"`
	Language string `mapstructure:"language" yaml:"language"`
	DryRun   bool   `mapstructure:"dry_run" yaml:"dry_run"`
}

var envBindings = map[string]string{
	"protoc":    "PROTOC",
	"proto_dir": "KUDU_PROTO_DIR",
	"include":   "PROTOC_INCLUDE",
	"plugin":    "PROTOC_GEN_RUST",
	"out_dir":   "PBGEN_OUT_DIR",
	"language":  "PBGEN_LANGUAGE",
}

// LoadConfig merges defaults, an optional config file and the environment.
// An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("protoc", DefaultProtoc)
	v.SetDefault("out_dir", DefaultOutDir)
	v.SetDefault("language", DefaultLanguage)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, wrapError(ErrKindConfig, "", err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, newError(ErrKindConfig, "", "cannot read config %s: %v", path, err)
		}
	}

	cfg := Config{
		Protoc:   strings.TrimSpace(v.GetString("protoc")),
		ProtoDir: strings.TrimSpace(v.GetString("proto_dir")),
		Include:  splitIncludes(v.Get("include")),
		Plugin:   strings.TrimSpace(v.GetString("plugin")),
		OutDir:   strings.TrimSpace(v.GetString("out_dir")),
		Language: strings.TrimSpace(v.GetString("language")),
		DryRun:   v.GetBool("dry_run"),
	}
	return cfg, nil
}

// splitIncludes accepts a path list string (PROTOC_INCLUDE=a:b) or a list
// from a config file.
func splitIncludes(raw any) []string {
	var parts []string
	if s, ok := raw.(string); ok {
		parts = filepath.SplitList(s)
	} else {
		parts = cast.ToStringSlice(raw)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports configuration errors. It must pass before the compiler is
// ever started.
func (c Config) Validate() error {
	if c.ProtoDir == "" {
		return newError(ErrKindConfig, "", "schema base directory is not set (KUDU_PROTO_DIR or --proto-dir)")
	}
	if c.OutDir == "" {
		return newError(ErrKindConfig, "", "output directory is empty")
	}
	if _, err := LookupLanguage(c.Language); err != nil {
		return err
	}
	return nil
}

// resolveProtoc turns Protoc into an executable path. Names without a path
// separator are searched on PATH.
func (c Config) resolveProtoc() (string, error) {
	name := c.Protoc
	if name == "" {
		name = DefaultProtoc
	}
	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		if !exists(name) {
			return "", newError(ErrKindCompiler, "", "compiler %s does not exist", name)
		}
		return name, nil
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", wrapError(ErrKindCompiler, "", err)
	}
	return p, nil
}
