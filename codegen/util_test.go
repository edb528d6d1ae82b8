package codegen

import (
	"path/filepath"
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeItem(t *testing.T) {
	tests := []struct {
		in   string
		want protoItem
	}{
		{"client/client.proto", protoItem{Path: "client/client.proto", Dir: "client", Base: "client.proto"}},
		{"./tserver/tserver_service", protoItem{Path: "tserver/tserver_service.proto", Dir: "tserver", Base: "tserver_service.proto"}},
		{" /fs/fs.proto ", protoItem{Path: "fs/fs.proto", Dir: "fs", Base: "fs.proto"}},
		{"top.proto", protoItem{Path: "top.proto", Base: "top.proto"}},
		{"a/../b/c.proto", protoItem{Path: "b/c.proto", Dir: "b", Base: "c.proto"}},
	}
	for _, tt := range tests {
		got, err := normalizeItem(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "  ", "../outside.proto"} {
		_, err := normalizeItem(bad)
		assert.Equal(t, ErrKindPlan, KindOf(err), "%q", bad)
	}
}

func TestSeedsFromListKeepsSameBaseName(t *testing.T) {
	seeds, err := (SeedLoader{}).SeedsFromList([]string{
		"consensus/metadata", "tablet/metadata.proto", "consensus/metadata.proto",
	})
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	assert.Equal(t, "consensus/metadata.proto", seeds[0].Path)
	assert.Equal(t, "tablet/metadata.proto", seeds[1].Path)
	assert.Equal(t, "metadata", seeds[1].Stem())
}

func TestBuildArgs(t *testing.T) {
	cfg := Config{
		ProtoDir: "kudu",
		Include:  []string{"/inc/a", "/inc/b"},
		Plugin:   "/bin/protoc-gen-rust",
		OutDir:   "src",
	}
	it, err := normalizeItem("tablet/tablet.proto")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"--proto_path=kudu",
		"--proto_path=/inc/a",
		"--proto_path=/inc/b",
		"--plugin=protoc-gen-rust=/bin/protoc-gen-rust",
		"--rust_out=src",
		filepath.Join("kudu", "tablet", "tablet.proto"),
	}, buildArgs(cfg, languages["rust"], it))
}

func TestKindOf(t *testing.T) {
	err := newError(ErrKindFilesystem, "rename", "gone")
	assert.Equal(t, ErrKindFilesystem, KindOf(err))
	assert.Equal(t, ErrKindFilesystem, KindOf(errors.Annotatef(err, "step %d", 3)))
	assert.Equal(t, "filesystem error in rename: gone", errors.Cause(err).Error())
	assert.Equal(t, ErrKind(0), KindOf(errors.New("other")))
	assert.Equal(t, ErrKind(0), KindOf(nil))
}
