package codegen

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Patcher applies literal substitutions to generated artifacts.
type Patcher struct {
	OutDir string
	DryRun bool
}

// Apply rewrites artifact in place, applying reps in order, and returns how
// many occurrences each replacement matched. The file is replaced through a
// temporary sibling so a failed write never leaves a half patched artifact.
func (p Patcher) Apply(artifact string, reps []Replacement) ([]int, error) {
	path := filepath.Join(p.OutDir, artifact)
	counts := make([]int, len(reps))
	if p.DryRun {
		for _, r := range reps {
			logrus.Infof("[dry] %s: %q -> %q", path, r.From, r.To)
		}
		for i := range counts {
			counts[i] = -1
		}
		return counts, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, newError(ErrKindFilesystem, "", "expected artifact %s is missing", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(ErrKindFilesystem, "", err)
	}
	text := string(data)
	for i, r := range reps {
		counts[i] = strings.Count(text, r.From)
		if counts[i] > 0 {
			text = strings.ReplaceAll(text, r.From, r.To)
		}
		logrus.Debugf("%s: %d x %q -> %q", artifact, counts[i], r.From, r.To)
	}
	if text == string(data) {
		return counts, nil
	}
	if err := writeFileAtomic(path, []byte(text), info.Mode().Perm()); err != nil {
		return nil, wrapError(ErrKindFilesystem, "", err)
	}
	return counts, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
