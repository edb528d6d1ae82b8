package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Severity of a Finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem reported by DepResolver.Check.
type Finding struct {
	Severity Severity
	Schema   string
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Schema, f.Message)
}

// DepResolver reads the import graph of the schema tree.
type DepResolver struct {
	ProtoDir string
	Include  []string
}

// Imports returns the imports declared by the schema at path (relative to
// ProtoDir).
func (r DepResolver) Imports(it protoItem) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(r.ProtoDir, filepath.FromSlash(it.Path)))
	if err != nil {
		return nil, wrapError(ErrKindFilesystem, "", err)
	}
	var out []string
	for _, m := range importRe.FindAllStringSubmatch(string(data), -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out, nil
}

// resolve finds imp on the proto paths, base directory first. When the file
// lives inside the base directory, key is its path relative to it, so
// "kudu/common/common.proto" found through an include root above the base
// directory still maps to "common/common.proto".
func (r DepResolver) resolve(imp string) (key string, inTree bool, ok bool) {
	roots := append([]string{r.ProtoDir}, r.Include...)
	for _, root := range roots {
		p := filepath.Join(root, filepath.FromSlash(imp))
		if !exists(p) {
			continue
		}
		if rel, err := relTo(r.ProtoDir, p); err == nil {
			return rel, true, true
		}
		return imp, false, true
	}
	return imp, false, false
}

func relTo(base, p string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	absP, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absP)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", p, base)
	}
	return filepath.ToSlash(rel), nil
}

// Check verifies the plan against the schema tree without running the
// compiler: every schema exists, every import resolves, every Kudu schema
// that is imported also gets generated, and every schema importing a
// colliding schema has a patch rule.
func (r DepResolver) Check(p Plan, lang Language) ([]Finding, error) {
	if err := p.Validate(lang); err != nil {
		return nil, err
	}
	all := append(append([]string{}, p.Schemas...), collisionSchemas(p)...)
	items, err := (SeedLoader{}).SeedsFromList(all)
	if err != nil {
		return nil, err
	}
	generated := map[string]bool{}
	for _, it := range items {
		generated[it.Path] = true
	}
	colliding := map[string]bool{}
	for _, s := range collisionSchemas(p) {
		it, _ := normalizeItem(s)
		colliding[it.Path] = true
	}
	patched := map[string]bool{}
	for _, pr := range p.Patches {
		it, _ := normalizeItem(pr.Schema)
		patched[it.Path] = true
	}

	var findings []Finding
	for _, it := range items {
		imports, err := r.Imports(it)
		if err != nil {
			findings = append(findings, Finding{SeverityError, it.Path, "schema not found under " + r.ProtoDir})
			continue
		}
		for _, imp := range imports {
			key, inTree, ok := r.resolve(imp)
			switch {
			case !ok:
				findings = append(findings, Finding{SeverityWarning, it.Path, fmt.Sprintf("import %s not found on any proto path", imp)})
			case inTree && !generated[key]:
				findings = append(findings, Finding{SeverityWarning, it.Path, fmt.Sprintf("imports %s which is not generated", imp)})
			}
			if colliding[key] && !patched[it.Path] {
				findings = append(findings, Finding{SeverityError, it.Path, fmt.Sprintf("imports colliding %s but has no patch rule", imp)})
			}
		}
	}
	sort.SliceStable(findings, func(i, j int) bool { return findings[i].Schema < findings[j].Schema })
	return findings, nil
}

func collisionSchemas(p Plan) []string {
	out := make([]string, len(p.Collisions))
	for i, c := range p.Collisions {
		out[i] = c.Schema
	}
	return out
}
