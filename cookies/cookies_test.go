package cookies

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCookieRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cookies.json")
	loader := NewLoadCookie(path)

	// 文件不存在时读取应该报错
	_, err := loader.LoadCookies()
	assert.Error(t, err)

	data := []byte(`[{"name":"web_session","value":"abc123","domain":".xiaohongshu.com"}]`)
	require.NoError(t, loader.SaveCookies(data))

	got, err := loader.LoadCookies()
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// 整体覆盖写入
	data2 := []byte(`[]`)
	require.NoError(t, loader.SaveCookies(data2))
	got, err = loader.LoadCookies()
	require.NoError(t, err)
	assert.Equal(t, data2, got)
}

func TestClearCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	loader := NewLoadCookie(path)

	// 不存在时删除不算错误
	require.NoError(t, loader.ClearCookies())

	require.NoError(t, loader.SaveCookies([]byte(`[]`)))
	require.NoError(t, loader.ClearCookies())

	_, err := loader.LoadCookies()
	assert.Error(t, err)
}

func TestGetAccountCookiesFilePath(t *testing.T) {
	base := GetCookiesFilePath()
	assert.Equal(t, base, GetAccountCookiesFilePath(""))

	p := GetAccountCookiesFilePath("account1")
	assert.Equal(t, filepath.Dir(base), filepath.Dir(p))
	assert.Equal(t, "cookies_account1.json", filepath.Base(p))
}
