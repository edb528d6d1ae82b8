package codegen

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Cleaner renames artifacts inside the output directory.
type Cleaner struct {
	OutDir string
	DryRun bool
}

// Rename moves from to to, replacing any to left by an earlier run.
func (c Cleaner) Rename(from, to string) error {
	oldPath := filepath.Join(c.OutDir, from)
	newPath := filepath.Join(c.OutDir, to)
	if c.DryRun {
		logrus.Infof("[dry] mv %s %s", oldPath, newPath)
		return nil
	}
	if !exists(oldPath) {
		return newError(ErrKindFilesystem, "", "expected artifact %s is missing", oldPath)
	}
	// case-only renames need a detour on case-insensitive file systems
	if strings.EqualFold(from, to) && from != to {
		tmp := filepath.Join(c.OutDir, ".tmp_"+to)
		if err := os.Rename(oldPath, tmp); err != nil {
			return wrapError(ErrKindFilesystem, "", err)
		}
		oldPath = tmp
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return wrapError(ErrKindFilesystem, "", err)
	}
	return nil
}
