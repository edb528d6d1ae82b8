package codegen

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Step is one unit of the regeneration pipeline.
type Step interface {
	Name() string
	Run(ctx context.Context, st *runState) error
}

// runState is what earlier steps hand to later ones.
type runState struct {
	// produced holds artifacts written (or renamed into place) by this run.
	produced map[string]bool
	// missing holds artifacts the compiler was run for but did not write.
	missing  map[string]bool
	warnings []string
}

func newRunState() *runState {
	return &runState{produced: map[string]bool{}, missing: map[string]bool{}}
}

func (st *runState) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logrus.Warnf("%s; the generated naming may have changed", msg)
	st.warnings = append(st.warnings, msg)
}

// requireProduced rejects steps that would act on an artifact left over
// from a previous run instead of one this run generated.
func (st *runState) requireProduced(step, artifact string) error {
	if st.missing[artifact] {
		return newError(ErrKindFilesystem, step, "expected generated file %s is absent", artifact)
	}
	if !st.produced[artifact] {
		return newError(ErrKindPlan, step, "%s was not produced earlier in this run", artifact)
	}
	return nil
}

type generateStep struct {
	gen  Generator
	item protoItem
}

func (s generateStep) Name() string { return "generate " + s.item.Path }

func (s generateStep) Run(ctx context.Context, st *runState) error {
	artifact, written, err := s.gen.Generate(ctx, s.item)
	if err != nil {
		return err
	}
	if !written {
		delete(st.produced, artifact)
		st.missing[artifact] = true
		return nil
	}
	delete(st.missing, artifact)
	st.produced[artifact] = true
	return nil
}

type renameStep struct {
	cleaner Cleaner
	from    string
	to      string
}

func (s renameStep) Name() string { return fmt.Sprintf("rename %s -> %s", s.from, s.to) }

func (s renameStep) Run(_ context.Context, st *runState) error {
	if err := st.requireProduced(s.Name(), s.from); err != nil {
		return err
	}
	if err := s.cleaner.Rename(s.from, s.to); err != nil {
		return err
	}
	delete(st.produced, s.from)
	st.produced[s.to] = true
	return nil
}

type patchStep struct {
	patcher      Patcher
	artifact     string
	replacements []Replacement
}

func (s patchStep) Name() string { return "patch " + s.artifact }

func (s patchStep) Run(_ context.Context, st *runState) error {
	if err := st.requireProduced(s.Name(), s.artifact); err != nil {
		return err
	}
	counts, err := s.patcher.Apply(s.artifact, s.replacements)
	if err != nil {
		return err
	}
	for i, n := range counts {
		if n == 0 {
			st.warn("%s: no occurrence of %q", s.artifact, s.replacements[i].From)
		}
	}
	return nil
}
