package version

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name        string
		start       Info
		build       debug.BuildInfo
		wantVersion string
		wantCommit  string
		wantDirty   bool
		wantEsbuild string
	}{
		{
			name:  "module version wins over dev",
			start: Info{Version: "dev", GitCommit: "unknown"},
			build: debug.BuildInfo{
				Main: debug.Module{Version: "v1.2.3"},
				Deps: []*debug.Module{{Path: "github.com/evanw/esbuild", Version: "v0.20.2"}},
			},
			wantVersion: "v1.2.3",
			wantCommit:  "unknown",
			wantEsbuild: "v0.20.2",
		},
		{
			name:  "devel build uses the revision",
			start: Info{Version: "dev", GitCommit: "unknown"},
			build: debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			wantVersion: "dev-0123456",
			wantCommit:  "0123456789abcdef",
			wantDirty:   true,
		},
		{
			name:  "linker values are kept",
			start: Info{Version: "v2.0.0", GitCommit: "fedcba9876"},
			build: debug.BuildInfo{
				Main:     debug.Module{Version: "v1.0.0"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789"}},
			},
			wantVersion: "v2.0.0",
			wantCommit:  "fedcba9876",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.start
			fromBuildInfo(&info, &tt.build)
			assert.Equal(t, tt.wantVersion, info.Version)
			assert.Equal(t, tt.wantCommit, info.GitCommit)
			assert.Equal(t, tt.wantDirty, info.Modified)
			assert.Equal(t, tt.wantEsbuild, info.Esbuild)
		})
	}
}

func TestShortAndString(t *testing.T) {
	release := Info{Version: "v1.0.0", GitCommit: "abcdef0123", GoVersion: "go1.24.4", Platform: "linux/amd64"}
	assert.True(t, release.IsRelease())
	assert.Equal(t, "v1.0.0 (abcdef0)", release.Short())
	assert.True(t, strings.HasPrefix(release.String(), "sitepack v1.0.0 (abcdef0)\n"))
	assert.Contains(t, release.String(), "Platform: linux/amd64")

	dev := Info{Version: "dev-abcdef0", GitCommit: "abcdef0123", Modified: true}
	assert.False(t, dev.IsRelease())
	assert.Equal(t, "dev-abcdef0", dev.Short())
	assert.Contains(t, dev.String(), "(dirty)")
}

func TestGet(t *testing.T) {
	info := Get()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
