package codegen

import (
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Replacement is one literal substitution.
type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Collision compiles Schema on its own and renames its artifact to Module.
type Collision struct {
	Schema string `yaml:"schema"`
	Module string `yaml:"module,omitempty"`
}

// PatchRule rewrites references inside the artifact generated for Schema.
type PatchRule struct {
	Schema       string        `yaml:"schema"`
	Replacements []Replacement `yaml:"replace"`
}

// Plan is the full description of one regeneration run.
type Plan struct {
	Schemas    []string    `yaml:"schemas"`
	Collisions []Collision `yaml:"collisions"`
	Patches    []PatchRule `yaml:"patches"`
}

// DefaultPlan regenerates the Kudu bindings used by the kudu_pb crate.
// The replacements are written against rust-protobuf output.
func DefaultPlan() Plan {
	return Plan{
		Schemas: []string{
			"client/client.proto",
			"common/common.proto",
			"common/wire_protocol.proto",
			"consensus/opid.proto",
			"fs/fs.proto",
			"master/master.proto",
			"rpc/rpc_header.proto",
			"tablet/tablet.proto",
			"tserver/tserver.proto",
			"tserver/tserver_service.proto",
		},
		Collisions: []Collision{
			{Schema: "consensus/metadata.proto", Module: "consensus_metadata"},
			{Schema: "tablet/metadata.proto", Module: "tablet_metadata"},
		},
		Patches: []PatchRule{
			{Schema: "common/wire_protocol.proto", Replacements: []Replacement{
				{From: "metadata", To: "consensus_metadata"},
			}},
			{Schema: "tablet/tablet.proto", Replacements: []Replacement{
				{From: "metadata", To: "tablet_metadata"},
			}},
			{Schema: "master/master.proto", Replacements: []Replacement{
				{From: "metadata::Tablet", To: "tablet_metadata::Tablet"},
				{From: "metadata::Raft", To: "consensus_metadata::Raft"},
				{From: "metadata::Consensus", To: "consensus_metadata::Consensus"},
			}},
		},
	}
}

// LoadPlan reads a YAML plan file.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, newError(ErrKindConfig, "", "cannot open plan %s: %v", path, err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Plan{}, newError(ErrKindPlan, "", "cannot parse plan %s: %v", path, err)
	}
	if len(p.Schemas) == 0 && len(p.Collisions) == 0 {
		return Plan{}, newError(ErrKindPlan, "", "plan %s lists no schemas", path)
	}
	return p, nil
}

// Dump renders the plan as YAML with every collision module filled in.
func (p Plan) Dump() ([]byte, error) {
	resolved := p
	resolved.Collisions = make([]Collision, len(p.Collisions))
	for i, c := range p.Collisions {
		it, err := normalizeItem(c.Schema)
		if err != nil {
			return nil, err
		}
		resolved.Collisions[i] = Collision{Schema: it.Path, Module: c.module(it)}
	}
	return yaml.Marshal(resolved)
}

func (c Collision) module(it protoItem) string {
	if m := strings.TrimSpace(c.Module); m != "" {
		return m
	}
	return toSnake(strings.ReplaceAll(it.Dir, "/", "_") + "_" + it.Stem())
}

// Validate checks the plan against the artifact naming of lang: schemas are
// unique, no two of them share an artifact, every patch targets a listed
// schema, and no replacement introduces a module that is not produced.
func (p Plan) Validate(lang Language) error {
	seen := map[string]bool{}
	artifacts := map[string]string{}
	claim := func(artifact, owner string) error {
		if prev, ok := artifacts[artifact]; ok {
			return newError(ErrKindPlan, "", "%s and %s both generate %s; add a collision entry", prev, owner, artifact)
		}
		artifacts[artifact] = owner
		return nil
	}
	for _, s := range p.Schemas {
		it, err := normalizeItem(s)
		if err != nil {
			return err
		}
		if seen[it.Path] {
			return newError(ErrKindPlan, "", "schema %s listed twice", it.Path)
		}
		seen[it.Path] = true
		if err := claim(lang.ArtifactFor(it), it.Path); err != nil {
			return err
		}
	}
	modules := map[string]bool{}
	for _, c := range p.Collisions {
		it, err := normalizeItem(c.Schema)
		if err != nil {
			return err
		}
		if seen[it.Path] {
			return newError(ErrKindPlan, "", "schema %s listed twice", it.Path)
		}
		seen[it.Path] = true
		if owner, ok := artifacts[lang.ArtifactFor(it)]; ok {
			return newError(ErrKindPlan, "", "generating %s would overwrite %s from %s", it.Path, lang.ArtifactFor(it), owner)
		}
		m := c.module(it)
		if m == it.Stem() {
			return newError(ErrKindPlan, "", "collision %s renames to its own name %s", it.Path, m)
		}
		if err := claim(lang.Artifact(m), it.Path); err != nil {
			return err
		}
		modules[m] = true
	}
	for _, r := range p.Patches {
		it, err := normalizeItem(r.Schema)
		if err != nil {
			return err
		}
		if !seen[it.Path] {
			return newError(ErrKindPlan, "", "patch targets %s which is not generated", it.Path)
		}
		for _, rep := range r.Replacements {
			if rep.From == "" {
				return newError(ErrKindPlan, "", "patch for %s has an empty search string", it.Path)
			}
			if mod := leadingModule(rep.To); !modules[mod] && looksRenamed(mod, p) {
				return newError(ErrKindPlan, "", "patch for %s references %s before it is produced", it.Path, mod)
			}
		}
	}
	return nil
}

// leadingModule extracts "a" from "a::B" or returns s when it has no path.
func leadingModule(s string) string {
	if i := strings.Index(s, "::"); i >= 0 {
		return s[:i]
	}
	return s
}

// looksRenamed reports whether mod ends with the stem of a collision schema,
// i.e. it is meant to be one of the disambiguated modules.
func looksRenamed(mod string, p Plan) bool {
	for _, c := range p.Collisions {
		it, err := normalizeItem(c.Schema)
		if err != nil {
			continue
		}
		if strings.HasSuffix(mod, "_"+it.Stem()) {
			return true
		}
	}
	return false
}

// Steps expands the plan into the ordered pipeline: every plain schema is
// generated first, then each collision is generated and renamed right away,
// and only then are references patched.
func (p Plan) Steps(gen Generator) ([]Step, error) {
	cfg, lang := gen.Config, gen.Language
	if err := p.Validate(lang); err != nil {
		return nil, err
	}
	cl := Cleaner{OutDir: cfg.OutDir, DryRun: cfg.DryRun}
	pt := Patcher{OutDir: cfg.OutDir, DryRun: cfg.DryRun}

	var steps []Step
	seeds, err := (SeedLoader{}).SeedsFromList(p.Schemas)
	if err != nil {
		return nil, err
	}
	for _, it := range seeds {
		steps = append(steps, generateStep{gen: gen, item: it})
	}
	for _, c := range p.Collisions {
		it, err := normalizeItem(c.Schema)
		if err != nil {
			return nil, err
		}
		steps = append(steps,
			generateStep{gen: gen, item: it},
			renameStep{cleaner: cl, from: lang.ArtifactFor(it), to: lang.Artifact(c.module(it))},
		)
	}
	for _, r := range p.Patches {
		it, err := normalizeItem(r.Schema)
		if err != nil {
			return nil, err
		}
		steps = append(steps, patchStep{
			patcher:      pt,
			artifact:     p.artifactOf(it, lang),
			replacements: r.Replacements,
		})
	}
	return steps, nil
}

// artifactOf is the final artifact name of a schema after renames.
func (p Plan) artifactOf(it protoItem, lang Language) string {
	for _, c := range p.Collisions {
		ci, err := normalizeItem(c.Schema)
		if err == nil && ci.Path == it.Path {
			return lang.Artifact(c.module(ci))
		}
	}
	return lang.ArtifactFor(it)
}

// Artifacts lists the artifact names a successful run leaves behind.
func (p Plan) Artifacts(lang Language) ([]string, error) {
	var out []string
	for _, s := range p.Schemas {
		it, err := normalizeItem(s)
		if err != nil {
			return nil, err
		}
		out = append(out, lang.ArtifactFor(it))
	}
	for _, c := range p.Collisions {
		it, err := normalizeItem(c.Schema)
		if err != nil {
			return nil, err
		}
		out = append(out, lang.Artifact(c.module(it)))
	}
	return out, nil
}
