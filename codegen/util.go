package codegen

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// protoItem is a normalized schema reference, always slash separated.
type protoItem struct {
	Path string
	Dir  string
	Base string
}

// Stem is the base name without the .proto extension.
func (it protoItem) Stem() string { return trimExt(it.Base) }

// normalizeItem turns a user supplied schema entry into a protoItem.
func normalizeItem(s string) (protoItem, error) {
	s = filepath.ToSlash(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "./")
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return protoItem{}, newError(ErrKindPlan, "", "empty schema entry")
	}
	if !strings.HasSuffix(strings.ToLower(s), ".proto") {
		s += ".proto"
	}
	s = path.Clean(s)
	if strings.HasPrefix(s, "../") {
		return protoItem{}, newError(ErrKindPlan, "", "schema %q escapes the base directory", s)
	}
	dir := path.Dir(s)
	if dir == "." {
		dir = ""
	}
	return protoItem{Path: s, Dir: dir, Base: path.Base(s)}, nil
}

// ensureDir creates dir unless dry is set.
func ensureDir(dir string, dry bool) error {
	if dry {
		logrus.Infof("[dry] mkdir -p %s", dir)
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return wrapError(ErrKindFilesystem, "", err)
	}
	return nil
}

func exists(p string) bool { _, err := os.Stat(p); return err == nil }

func trimExt(name string) string { return strings.TrimSuffix(name, filepath.Ext(name)) }

var importRe = regexp.MustCompile(`(?m)^\s*import\s+(?:public\s+|weak\s+)?"([^"]+)"\s*;`)
