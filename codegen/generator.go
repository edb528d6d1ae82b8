package codegen

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Generator runs protoc for one schema at a time.
type Generator struct {
	Config   Config
	Language Language
	// Stdout and Stderr receive the compiler output; nil means os.Stdout
	// and os.Stderr.
	Stdout, Stderr io.Writer
}

// Generate compiles it into Config.OutDir and returns the artifact name
// protoc is expected to write. A copy left over from an earlier run is
// removed first, so written reports only what this invocation produced.
func (g Generator) Generate(ctx context.Context, it protoItem) (artifact string, written bool, err error) {
	artifact = g.Language.ArtifactFor(it)
	args := buildArgs(g.Config, g.Language, it)
	if g.Config.DryRun {
		logrus.Infof("[dry] $ %s %s", g.Config.Protoc, strings.Join(args, " "))
		return artifact, true, nil
	}
	target := filepath.Join(g.Config.OutDir, artifact)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return "", false, wrapError(ErrKindFilesystem, "", err)
	}
	if err := g.run(ctx, args); err != nil {
		return "", false, err
	}
	if !exists(target) {
		logrus.Warnf("protoc did not write %s for %s", artifact, it.Path)
		return artifact, false, nil
	}
	return artifact, true, nil
}

// buildArgs lists the base directory first so Kudu schemas win over any
// copy found on an include path.
func buildArgs(cfg Config, lang Language, it protoItem) []string {
	args := make([]string, 0, 4+len(cfg.Include))
	args = append(args, "--proto_path="+cfg.ProtoDir)
	for _, inc := range cfg.Include {
		args = append(args, "--proto_path="+inc)
	}
	if cfg.Plugin != "" {
		args = append(args, lang.PluginFlag(cfg.Plugin))
	}
	args = append(args, lang.OutFlag(cfg.OutDir))
	args = append(args, filepath.Join(cfg.ProtoDir, filepath.FromSlash(it.Path)))
	return args
}

// run starts the compiler and waits for it, streaming its output.
func (g Generator) run(ctx context.Context, args []string) error {
	logrus.Debugf("$ %s %s", g.Config.Protoc, strings.Join(args, " "))
	c := exec.CommandContext(ctx, g.Config.Protoc, args...)
	c.Stdout = g.Stdout
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	c.Stderr = g.Stderr
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	if err := c.Run(); err != nil {
		var eerr *exec.ExitError
		if errors.As(err, &eerr) {
			return newError(ErrKindCompiler, "", "%s exited with status %d", filepath.Base(g.Config.Protoc), eerr.ExitCode())
		}
		return wrapError(ErrKindCompiler, "", err)
	}
	return nil
}
