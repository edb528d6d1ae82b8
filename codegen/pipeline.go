package codegen

import (
	"context"
	"sort"

	"github.com/pingcap/errors"
	"github.com/sirupsen/logrus"
)

// Pipeline runs its steps in order and stops at the first failure.
type Pipeline struct {
	Steps []Step
}

// Result summarizes a successful run.
type Result struct {
	// Artifacts this run wrote or renamed into the output directory, sorted.
	// Under dry-run they are the artifacts a real run would write.
	Artifacts []string
	// Warnings are substitutions that matched nothing.
	Warnings []string
}

// Run executes every step. Concurrent runs against one output directory are
// not supported.
func (p Pipeline) Run(ctx context.Context) (*Result, error) {
	st := newRunState()
	for i, s := range p.Steps {
		if err := ctx.Err(); err != nil {
			return nil, errors.Annotatef(err, "before step %d/%d (%s)", i+1, len(p.Steps), s.Name())
		}
		logrus.Infof("[%d/%d] %s", i+1, len(p.Steps), s.Name())
		if err := s.Run(ctx, st); err != nil {
			return nil, errors.Annotatef(err, "step %d/%d (%s)", i+1, len(p.Steps), s.Name())
		}
	}
	res := &Result{Warnings: st.warnings}
	for a := range st.produced {
		res.Artifacts = append(res.Artifacts, a)
	}
	sort.Strings(res.Artifacts)
	return res, nil
}
