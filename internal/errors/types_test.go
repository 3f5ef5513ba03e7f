package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSitepackErrorMessage(t *testing.T) {
	testCases := []struct {
		name     string
		err      *SitepackError
		expected string
	}{
		{
			name:     "code and message",
			err:      NewConfigError(ErrCodeConfigInvalid, "source is empty"),
			expected: "[ERR_CONFIG_INVALID] source is empty",
		},
		{
			name: "with location",
			err: NewBuildError(ErrCodeCompileFailed, "compile failed", nil).
				WithLocation("main.scss", 3, 7),
			expected: "[ERR_COMPILE_FAILED] main.scss:3:7 compile failed",
		},
		{
			name:     "with cause",
			err:      NewIOError(ErrCodeAssetRead, "cannot read asset", errors.New("permission denied")),
			expected: "[ERR_ASSET_READ] cannot read asset: permission denied",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestResolutionErrors(t *testing.T) {
	manifest := NewManifestEntryError("bootstrap")
	assert.Contains(t, manifest.Error(), `"bootstrap" module has no s/css entries`)
	assert.Equal(t, "bootstrap", manifest.Specifier)
	assert.ErrorIs(t, manifest, ErrManifestEntry)
	assert.NotErrorIs(t, manifest, ErrCrossDialect)

	cross := NewCrossDialectError("bulma")
	assert.Contains(t, cross.Error(), `"bulma" cannot import scss into css`)
	assert.ErrorIs(t, cross, ErrCrossDialect)

	wrapped := fmt.Errorf("resolve hook: %w", cross)
	assert.ErrorIs(t, wrapped, ErrCrossDialect)
	assert.True(t, IsResolveError(wrapped))
	assert.False(t, IsConfigError(wrapped))

	failed := NewBuildError(ErrCodeBuildFailed, "build failed with 1 error(s)", wrapped)
	assert.True(t, IsResolveError(failed))
	assert.False(t, IsConfigError(failed))
	assert.False(t, IsResolveError(NewBuildError(ErrCodeBuildFailed, "build failed", errors.New("plain"))))
	assert.False(t, IsResolveError(nil))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewBuildError(ErrCodeMirrorFailed, "mirror failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsConfigError(NewConfigError(ErrCodeConfigInvalid, "bad")))
}
