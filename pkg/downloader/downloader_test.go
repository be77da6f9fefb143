package downloader

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 最小合法 PNG 文件头 + IHDR 片段，足够 filetype 嗅探
var pngHeader = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
}

func TestSaveImageSniffsExtension(t *testing.T) {
	path, err := saveImage(pngHeader)
	require.NoError(t, err)
	defer os.Remove(path)

	assert.True(t, strings.HasSuffix(path, ".png"), "expected .png suffix, got %s", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestSaveImageRejectsNonImage(t *testing.T) {
	_, err := saveImage([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestProcessImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngHeader)
	}))
	defer server.Close()

	local, err := os.CreateTemp(t.TempDir(), "local_*.png")
	require.NoError(t, err)
	require.NoError(t, local.Close())

	paths, err := ProcessImages([]string{server.URL + "/cover.png", local.Name()})
	require.NoError(t, err)
	require.Len(t, paths, 2)
	defer os.Remove(paths[0])

	assert.True(t, strings.HasSuffix(paths[0], ".png"))
	assert.Equal(t, local.Name(), paths[1])

	// 本地文件不存在时整个处理失败
	_, err = ProcessImages([]string{"/no/such/file.png"})
	assert.Error(t, err)
}
