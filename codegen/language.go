package codegen

import "strings"

// Language describes how protoc names the artifact of one schema.
type Language struct {
	Name   string
	Case   string
	Suffix string
}

var languages = map[string]Language{
	"rust":   {Name: "rust", Case: "module", Suffix: ".rs"},
	"csharp": {Name: "csharp", Case: "camel", Suffix: ".cs"},
}

// LookupLanguage accepts the canonical names and the usual aliases.
func LookupLanguage(name string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rust", "rs":
		return languages["rust"], nil
	case "csharp", "cs", "c#":
		return languages["csharp"], nil
	case "":
		return Language{}, newError(ErrKindConfig, "", "language is required (rust/rs, csharp/cs/c#)")
	}
	return Language{}, newError(ErrKindConfig, "", "unsupported language %q (supported: rust/rs, csharp/cs/c#)", name)
}

// OutFlag is the protoc output flag, e.g. --rust_out=src.
func (l Language) OutFlag(dir string) string {
	return "--" + l.Name + "_out=" + dir
}

// PluginFlag points protoc at an explicit code generator plugin.
func (l Language) PluginFlag(path string) string {
	return "--plugin=protoc-gen-" + l.Name + "=" + path
}

// Artifact is the file name generated for a module name.
func (l Language) Artifact(module string) string {
	return toCase(module, l.Case) + l.Suffix
}

// ArtifactFor is the file name protoc generates for it by default.
func (l Language) ArtifactFor(it protoItem) string {
	return l.Artifact(it.Stem())
}
