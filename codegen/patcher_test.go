package codegen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatcherApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "master.rs")
	src := "a: super::metadata::TabletSuperBlockPB,\nb: super::metadata::RaftConfigPB,\nc: super::metadata::ConsensusStatePB,\nd: super::metadata::TabletSuperBlockPB,\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o640))

	counts, err := Patcher{OutDir: dir}.Apply("master.rs", []Replacement{
		{From: "metadata::Tablet", To: "tablet_metadata::Tablet"},
		{From: "metadata::Raft", To: "consensus_metadata::Raft"},
		{From: "metadata::Consensus", To: "consensus_metadata::Consensus"},
		{From: "metadata::Missing", To: "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 1, 0}, counts)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a: super::tablet_metadata::TabletSuperBlockPB,\nb: super::consensus_metadata::RaftConfigPB,\nc: super::consensus_metadata::ConsensusStatePB,\nd: super::tablet_metadata::TabletSuperBlockPB,\n", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary or backup file may remain")
}

func TestPatcherNoMatchLeavesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fs.rs")
	require.NoError(t, os.WriteFile(path, []byte("pub struct InstanceMetadataPB {}\n"), 0o644))
	before, err := os.Stat(path)
	require.NoError(t, err)

	counts, err := Patcher{OutDir: dir}.Apply("fs.rs", []Replacement{{From: "metadata", To: "fs_metadata"}})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, counts)

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestPatcherMissingArtifact(t *testing.T) {
	_, err := Patcher{OutDir: t.TempDir()}.Apply("tablet.rs", []Replacement{{From: "a", To: "b"}})
	require.Error(t, err)
	assert.Equal(t, ErrKindFilesystem, KindOf(err))
}

func TestPatcherDryRun(t *testing.T) {
	counts, err := Patcher{OutDir: t.TempDir(), DryRun: true}.Apply("tablet.rs", []Replacement{{From: "a", To: "b"}})
	require.NoError(t, err)
	assert.Equal(t, []int{-1}, counts)
}
