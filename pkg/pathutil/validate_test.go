package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "relative", path: "licenses.yaml", want: "licenses.yaml"},
		{name: "dots cleaned", path: "./defs/../licenses.yaml", want: "licenses.yaml"},
		{name: "empty", path: "", wantErr: ErrEmptyPath},
		{name: "null byte", path: "lic\x00.txt", wantErr: ErrNullBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePath(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePathInDir(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "mit"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "mit", "header.txt"), []byte("h"), 0o600))

	got, err := ValidatePathInDir(filepath.Join(base, "mit", "header.txt"), base)
	require.NoError(t, err)
	assert.Equal(t, "header.txt", filepath.Base(got))

	_, err = ValidatePathInDir(filepath.Join(base, "new", "license.txt"), base)
	assert.NoError(t, err)

	_, err = ValidatePathInDir(filepath.Join(base, "..", "outside.txt"), base)
	assert.ErrorIs(t, err, ErrPathEscapesBase)
}

func TestIsUNC(t *testing.T) {
	assert.True(t, IsUNC("//server/dir/file.txt"))
	assert.True(t, IsUNC(`\\server\share\file.txt`))
	assert.False(t, IsUNC("/tmp/file.txt"))
	assert.False(t, IsUNC("///tmp/file.txt"))
	assert.False(t, IsUNC("//"))
	assert.False(t, IsUNC("relative/file.txt"))
}

func TestFileURIRoundTrip(t *testing.T) {
	uri, err := ToFileURI("//server/dir/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "file://server/dir/file.txt", uri)

	back, err := FromFileURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "//server/dir/file.txt", back)

	uri, err = ToFileURI(`\\server\share\notice.txt`)
	require.NoError(t, err)
	assert.Equal(t, "file://server/share/notice.txt", uri)

	uri, err = ToFileURI("/tmp/licenses.yaml")
	require.NoError(t, err)
	assert.Equal(t, "file:///tmp/licenses.yaml", uri)

	back, err = FromFileURI(uri)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/tmp/licenses.yaml"), back)

	_, err = FromFileURI("https://example.org/x")
	assert.ErrorIs(t, err, ErrNotFileURI)
	_, err = ToFileURI("")
	assert.ErrorIs(t, err, ErrEmptyPath)
}
