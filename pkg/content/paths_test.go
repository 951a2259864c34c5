package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/xmark/pkg/utils"
)

func TestOutputLocation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		outDir  string
		baseDir string
		want    string
	}{
		{"plain file", "/tmp/x/y.md", "/tmp/x/out", "/tmp/x/", "/tmp/x/out/y/index.html"},
		{"readme", "/tmp/x/z/README.md", "/tmp/x/out", "/tmp/x", "/tmp/x/out/z/index.html"},
		{"sibling of readme dir", "/tmp/x/z.md", "/tmp/x/out", "/tmp/x", "/tmp/x/out/z/index.html"},
		{"out dir elsewhere", "/tmp/zz/foo.md", "/xmark/", "/tmp/zz/", "/xmark/foo/index.html"},
		{"root readme", "/tmp/x/README.md", "/tmp/x/out", "/tmp/x", "/tmp/x/out/index.html"},
		{"nested", "/src/book/a/b/c.md", "/out", "/src", "/out/book/a/b/c/index.html"},
		{"lowercase readme is a page", "/src/readme.md", "/out", "/src", "/out/readme/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OutputLocation(tt.input, tt.outDir, tt.baseDir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputLocation_OutsideBaseDir(t *testing.T) {
	_, err := OutputLocation("/elsewhere/y.md", "/tmp/x/out", "/tmp/x")
	require.Error(t, err)

	var pe *PathError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "/elsewhere/y.md", pe.Path)
	assert.Equal(t, "/tmp/x", pe.Root)
	assert.ErrorIs(t, err, utils.ErrPath)
	assert.Equal(t, "Path_OutsideRoot", utils.CategorizeError(err))
}

func TestOutputLocation_RelativeAgainstAbsolute(t *testing.T) {
	_, err := OutputLocation("book/y.md", "/out", "/src")
	var pe *PathError
	assert.True(t, errors.As(err, &pe))
}

func TestOutputLocation_InvalidUTF8(t *testing.T) {
	_, err := OutputLocation("/src/\xff\xfe.md", "/out", "/src")
	require.Error(t, err)

	var ee *EncodingError
	require.True(t, errors.As(err, &ee))
	assert.ErrorIs(t, err, utils.ErrEncoding)
	assert.Equal(t, "Path_Encoding", utils.CategorizeError(err))
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		name   string
		output string
		dirs   Dirs
		want   string
	}{
		{
			name:   "root base",
			output: "/out/x/y/index.html",
			dirs:   Dirs{BaseURL: "/", OutDir: "/out"},
			want:   "/x/y",
		},
		{
			name:   "prefixed base",
			output: "/usr/src/fx/_out/html/book3/cd/f/index.html",
			dirs:   Dirs{BaseURL: "/books/", OutDir: "/usr/src/fx/_out/html"},
			want:   "/books/book3/cd/f",
		},
		{
			name:   "site root index",
			output: "/out/index.html",
			dirs:   Dirs{BaseURL: "/", OutDir: "/out"},
			want:   "/",
		},
		{
			name:   "empty base defaults to root",
			output: "/out/a/index.html",
			dirs:   Dirs{OutDir: "/out"},
			want:   "/a",
		},
		{
			name:   "absolute base url",
			output: "/out/guide/intro/index.html",
			dirs:   Dirs{BaseURL: "https://docs.example.com/books/", OutDir: "/out"},
			want:   "https://docs.example.com/books/guide/intro",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageURL(tt.output, tt.dirs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageURL_OutsideOutDir(t *testing.T) {
	_, err := PageURL("/other/a/index.html", Dirs{BaseURL: "/", OutDir: "/out"})
	assert.ErrorIs(t, err, utils.ErrPath)
}
