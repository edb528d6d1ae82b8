package codegen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rustGen() Generator {
	return Generator{
		Config:   Config{Protoc: "protoc", ProtoDir: "kudu", OutDir: "src", Language: "rust"},
		Language: languages["rust"],
	}
}

func stepNames(steps []Step) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name()
	}
	return names
}

func TestDefaultPlanSteps(t *testing.T) {
	steps, err := DefaultPlan().Steps(rustGen())
	require.NoError(t, err)

	want := []string{
		"generate client/client.proto",
		"generate common/common.proto",
		"generate common/wire_protocol.proto",
		"generate consensus/opid.proto",
		"generate fs/fs.proto",
		"generate master/master.proto",
		"generate rpc/rpc_header.proto",
		"generate tablet/tablet.proto",
		"generate tserver/tserver.proto",
		"generate tserver/tserver_service.proto",
		"generate consensus/metadata.proto",
		"rename metadata.rs -> consensus_metadata.rs",
		"generate tablet/metadata.proto",
		"rename metadata.rs -> tablet_metadata.rs",
		"patch wire_protocol.rs",
		"patch tablet.rs",
		"patch master.rs",
	}
	if diff := cmp.Diff(want, stepNames(steps)); diff != "" {
		t.Errorf("DefaultPlan().Steps() mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultPlanArtifacts(t *testing.T) {
	got, err := DefaultPlan().Artifacts(languages["rust"])
	require.NoError(t, err)
	assert.Len(t, got, 12)
	assert.Contains(t, got, "consensus_metadata.rs")
	assert.Contains(t, got, "tablet_metadata.rs")
	assert.NotContains(t, got, "metadata.rs")

	got, err = DefaultPlan().Artifacts(languages["csharp"])
	require.NoError(t, err)
	assert.Contains(t, got, "ConsensusMetadata.cs")
	assert.Contains(t, got, "WireProtocol.cs")
}

func TestPlanValidate(t *testing.T) {
	rust := languages["rust"]
	tests := []struct {
		name string
		plan Plan
		ok   bool
	}{
		{"default", DefaultPlan(), true},
		{
			"uncovered collision",
			Plan{Schemas: []string{"consensus/metadata.proto", "tablet/metadata.proto"}},
			false,
		},
		{
			"duplicate schema",
			Plan{Schemas: []string{"fs/fs.proto", "fs/fs"}},
			false,
		},
		{
			"collision also listed as schema",
			Plan{
				Schemas:    []string{"tablet/metadata.proto"},
				Collisions: []Collision{{Schema: "tablet/metadata.proto"}},
			},
			false,
		},
		{
			"collision overwrites a plain artifact",
			Plan{
				Schemas:    []string{"tablet/metadata.proto"},
				Collisions: []Collision{{Schema: "consensus/metadata.proto"}},
			},
			false,
		},
		{
			"rename to own name",
			Plan{Collisions: []Collision{{Schema: "tablet/metadata.proto", Module: "metadata"}}},
			false,
		},
		{
			"patch on schema not generated",
			Plan{
				Schemas: []string{"fs/fs.proto"},
				Patches: []PatchRule{{Schema: "master/master.proto", Replacements: []Replacement{{From: "a", To: "b"}}}},
			},
			false,
		},
		{
			"patch references a module no rename produces",
			Plan{
				Schemas:    []string{"tablet/tablet.proto"},
				Collisions: []Collision{{Schema: "tablet/metadata.proto", Module: "tablet_meta"}},
				Patches: []PatchRule{{Schema: "tablet/tablet.proto", Replacements: []Replacement{
					{From: "metadata", To: "tablet_metadata"},
				}}},
			},
			false,
		},
		{
			"empty search string",
			Plan{
				Schemas: []string{"fs/fs.proto"},
				Patches: []PatchRule{{Schema: "fs/fs.proto", Replacements: []Replacement{{To: "x"}}}},
			},
			false,
		},
		{
			"derived module names",
			Plan{
				Schemas: []string{"tablet/tablet.proto"},
				Collisions: []Collision{
					{Schema: "consensus/metadata.proto"},
					{Schema: "tablet/metadata.proto"},
				},
				Patches: []PatchRule{{Schema: "tablet/tablet.proto", Replacements: []Replacement{
					{From: "metadata", To: "tablet_metadata"},
				}}},
			},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate(rust)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, ErrKindPlan, KindOf(err))
		})
	}
}

func TestCollisionDefaultModule(t *testing.T) {
	for _, tt := range []struct {
		schema string
		want   string
	}{
		{"consensus/metadata.proto", "consensus_metadata"},
		{"tablet/metadata.proto", "tablet_metadata"},
		{"a/b/metadata.proto", "a_b_metadata"},
	} {
		it, err := normalizeItem(tt.schema)
		require.NoError(t, err)
		assert.Equal(t, tt.want, Collision{Schema: tt.schema}.module(it))
	}
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schemas:
  - common/wire_protocol.proto
  - master/master
collisions:
  - schema: consensus/metadata.proto
patches:
  - schema: master/master.proto
    replace:
      - from: "metadata::Raft"
        to: "consensus_metadata::Raft"
`), 0o644))

	p, err := LoadPlan(path)
	require.NoError(t, err)
	require.NoError(t, p.Validate(languages["rust"]))

	steps, err := p.Steps(rustGen())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"generate common/wire_protocol.proto",
		"generate master/master.proto",
		"generate consensus/metadata.proto",
		"rename metadata.rs -> consensus_metadata.rs",
		"patch master.rs",
	}, stepNames(steps))

	out, err := p.Dump()
	require.NoError(t, err)
	assert.Contains(t, string(out), "module: consensus_metadata")
}

func TestLoadPlanErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadPlan(filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, ErrKindConfig, KindOf(err))

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("patches: []\n"), 0o644))
	_, err = LoadPlan(empty)
	assert.Equal(t, ErrKindPlan, KindOf(err))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("schemas: {\n"), 0o644))
	_, err = LoadPlan(bad)
	assert.Equal(t, ErrKindPlan, KindOf(err))
}
