package cookies

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// 持久化的登录会话：每个账号一份 cookies 文件，整体读、整体写。
// 默认存放在 ~/.rednote-mcp/cookies.json 下。

const (
	dataDirName     = ".rednote-mcp"
	cookiesFileName = "cookies.json"
)

// GetCookiesFilePath 返回默认账号的 cookies 文件路径
func GetCookiesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// 拿不到 home 目录时退回临时目录，保证仍然可用
		logrus.Warnf("failed to get home dir: %v, fallback to temp dir", err)
		return filepath.Join(os.TempDir(), dataDirName, cookiesFileName)
	}
	return filepath.Join(home, dataDirName, cookiesFileName)
}

// GetAccountCookiesFilePath 返回指定账号实例的 cookies 文件路径，
// 例如 account = "account1" 时为 ~/.rednote-mcp/cookies_account1.json。
func GetAccountCookiesFilePath(account string) string {
	if account == "" {
		return GetCookiesFilePath()
	}

	base := GetCookiesFilePath()
	dir := filepath.Dir(base)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(filepath.Base(base), ext)
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", name, account, ext))
}

// LoadCookie 负责单个 cookies 文件的读写
type LoadCookie struct {
	path string
}

func NewLoadCookie(path string) *LoadCookie {
	return &LoadCookie{path: path}
}

func (l *LoadCookie) Path() string {
	return l.path
}

// LoadCookies 读取整个 cookies 文件
func (l *LoadCookie) LoadCookies() ([]byte, error) {
	return os.ReadFile(l.path)
}

// SaveCookies 整体覆盖写入 cookies 文件（最后写入者胜出）
func (l *LoadCookie) SaveCookies(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}

	if err := os.WriteFile(l.path, data, 0o600); err != nil {
		return err
	}

	logrus.WithField("cookies_path", l.path).Debug("cookies 已保存")
	return nil
}

// ClearCookies 删除 cookies 文件，文件不存在不算错误
func (l *LoadCookie) ClearCookies() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
